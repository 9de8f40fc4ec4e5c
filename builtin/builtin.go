// Package builtin holds Carta's closed set of primitive types: the
// fixed-width integers, IEEE-754 floats, and the single-byte ascii type
// that every struct field ultimately bottoms out in.
package builtin

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
)

// Class groups built-in types by the kind of value they decode to.
type Class int

const (
	Integer Class = iota
	Float
	Text
)

type builtinType struct {
	size   int
	class  Class
	decode func(data []byte) string
}

var registry = map[string]builtinType{
	"int8":  {1, Integer, func(d []byte) string { return strconv.FormatInt(int64(int8(d[0])), 10) }},
	"uint8": {1, Integer, func(d []byte) string { return strconv.FormatUint(uint64(d[0]), 10) }},

	"int16_be": {2, Integer, func(d []byte) string {
		return strconv.FormatInt(int64(int16(binary.BigEndian.Uint16(d))), 10)
	}},
	"int16_le": {2, Integer, func(d []byte) string {
		return strconv.FormatInt(int64(int16(binary.LittleEndian.Uint16(d))), 10)
	}},
	"uint16_be": {2, Integer, func(d []byte) string {
		return strconv.FormatUint(uint64(binary.BigEndian.Uint16(d)), 10)
	}},
	"uint16_le": {2, Integer, func(d []byte) string {
		return strconv.FormatUint(uint64(binary.LittleEndian.Uint16(d)), 10)
	}},

	"int32_be": {4, Integer, func(d []byte) string {
		return strconv.FormatInt(int64(int32(binary.BigEndian.Uint32(d))), 10)
	}},
	"int32_le": {4, Integer, func(d []byte) string {
		return strconv.FormatInt(int64(int32(binary.LittleEndian.Uint32(d))), 10)
	}},
	"uint32_be": {4, Integer, func(d []byte) string {
		return strconv.FormatUint(uint64(binary.BigEndian.Uint32(d)), 10)
	}},
	"uint32_le": {4, Integer, func(d []byte) string {
		return strconv.FormatUint(uint64(binary.LittleEndian.Uint32(d)), 10)
	}},

	"int64_be": {8, Integer, func(d []byte) string {
		return strconv.FormatInt(int64(binary.BigEndian.Uint64(d)), 10)
	}},
	"int64_le": {8, Integer, func(d []byte) string {
		return strconv.FormatInt(int64(binary.LittleEndian.Uint64(d)), 10)
	}},
	"uint64_be": {8, Integer, func(d []byte) string {
		return strconv.FormatUint(binary.BigEndian.Uint64(d), 10)
	}},
	"uint64_le": {8, Integer, func(d []byte) string {
		return strconv.FormatUint(binary.LittleEndian.Uint64(d), 10)
	}},

	"f32_be": {4, Float, func(d []byte) string {
		v := math.Float32frombits(binary.BigEndian.Uint32(d))
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	}},
	"f32_le": {4, Float, func(d []byte) string {
		v := math.Float32frombits(binary.LittleEndian.Uint32(d))
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	}},
	"f64_be": {8, Float, func(d []byte) string {
		v := math.Float64frombits(binary.BigEndian.Uint64(d))
		return strconv.FormatFloat(v, 'g', -1, 64)
	}},
	"f64_le": {8, Float, func(d []byte) string {
		v := math.Float64frombits(binary.LittleEndian.Uint64(d))
		return strconv.FormatFloat(v, 'g', -1, 64)
	}},

	// ascii decodes a single byte as its Latin-1 code point: 0x00-0x7F is
	// plain ASCII, 0x80-0xFF is the corresponding Latin-1 character. This
	// resolves the open question in spec §9 without rejecting the high
	// half of the byte range.
	"ascii": {1, Text, func(d []byte) string { return string(rune(d[0])) }},
}

// IsBuiltin reports whether name is one of the closed set of primitive
// types.
func IsBuiltin(name string) bool {
	_, ok := registry[name]
	return ok
}

// IsClass reports whether name is a built-in type of the given class.
// Returns false for unknown names.
func IsClass(name string, class Class) bool {
	t, ok := registry[name]
	return ok && t.class == class
}

// Size returns the byte width of a built-in type. Panics if name is not a
// built-in, since callers are expected to have checked IsBuiltin first.
func Size(name string) int {
	t, ok := registry[name]
	if !ok {
		panic(fmt.Sprintf("builtin.Size: unknown type %q", name))
	}
	return t.size
}

// Decode reads exactly Size(name) bytes from the front of data and
// returns (size, textual value). data must have at least that many
// bytes; callers must bounds-check before calling (the apply package
// does, turning a short read into cartaerr.TruncatedInput).
func Decode(data []byte, name string) (int, string) {
	t, ok := registry[name]
	if !ok {
		panic(fmt.Sprintf("builtin.Decode: unknown type %q", name))
	}
	return t.size, t.decode(data[:t.size])
}
