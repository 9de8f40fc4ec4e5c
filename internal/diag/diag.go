// Package diag provides optional structured tracing of the Carta
// compilation pipeline. No pipeline stage requires a *Tracer: the two
// entry points that take one, token.TokenizeWithTracer and
// carta.CompileSchemaWithTracer, accept nil and treat it as a no-op. The
// tokeniser traces itself; the facade traces the parse, typecheck and
// correctness results. The applier is not traced. This gives structured
// breadcrumbs during development and testing without giving the public
// carta.CompileSchema/ApplySchema API any I/O surface.
package diag

import (
	"io"

	"github.com/rs/zerolog"
)

// Tracer emits structured trace events for one compilation run. The zero
// value is not usable; use NewTracer or Discard.
type Tracer struct {
	log zerolog.Logger
}

// NewTracer returns a Tracer writing structured events to w.
func NewTracer(w io.Writer) *Tracer {
	return &Tracer{log: zerolog.New(w).With().Timestamp().Logger()}
}

// Discard returns a Tracer that drops every event. Safe to call on a nil
// *Tracer too: every method below treats nil as Discard.
func Discard() *Tracer {
	return &Tracer{log: zerolog.Nop()}
}

// Stage logs entry into a named pipeline stage ("tokenize", "parse",
// "typecheck", "correctness") with arbitrary structured detail.
func (t *Tracer) Stage(name string, fields map[string]any) {
	if t == nil {
		return
	}
	ev := t.log.Debug().Str("stage", name)
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg("stage")
}

// Errorf logs a failure observed during a stage.
func (t *Tracer) Errorf(stage string, format string, args ...any) {
	if t == nil {
		return
	}
	t.log.Error().Str("stage", stage).Msgf(format, args...)
}
