// pkg/domain/sink/sink.go

// Package sink adapts arbitrary writers into the append-only destination that
// obfuscated text is written to.
//
// Optional capabilities (flushing, pre-sizing a buffer) are detected once when
// the writer is wrapped, never per call. A Sink never closes the writer it
// wraps; the writer's lifecycle belongs to the caller.
package sink

import (
	"io"
	"unicode/utf8"

	domainerr "github.com/damianoneill/go-obfuscate/pkg/domain/errors"
)

// Flusher is implemented by writers that buffer output, such as *bufio.Writer.
type Flusher interface {
	Flush() error
}

// Grower is implemented by in-memory buffers, such as *strings.Builder and
// *bytes.Buffer, that can reserve capacity ahead of a write of known size.
type Grower interface {
	Grow(n int)
}

// plainFlusher matches writers whose Flush cannot fail, such as http.Flusher.
type plainFlusher interface {
	Flush()
}

type runeWriter interface {
	WriteRune(r rune) (int, error)
}

// Sink is an io.Writer with string and rune appends and detected capabilities.
type Sink struct {
	w     io.Writer
	sw    io.StringWriter
	rw    runeWriter
	flush func() error
	grow  func(int)
}

// Wrap adapts w into a Sink. Wrapping a *Sink returns it unchanged.
func Wrap(w io.Writer) (*Sink, error) {
	if w == nil {
		return nil, domainerr.InvalidArgument("writer must not be nil")
	}
	if s, ok := w.(*Sink); ok {
		return s, nil
	}

	s := &Sink{w: w}
	if sw, ok := w.(io.StringWriter); ok {
		s.sw = sw
	}
	if rw, ok := w.(runeWriter); ok {
		s.rw = rw
	}
	switch f := w.(type) {
	case Flusher:
		s.flush = f.Flush
	case plainFlusher:
		s.flush = func() error {
			f.Flush()
			return nil
		}
	}
	if g, ok := w.(Grower); ok {
		s.grow = g.Grow
	}
	return s, nil
}

// Write implements io.Writer.
func (s *Sink) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

// WriteString implements io.StringWriter.
func (s *Sink) WriteString(str string) (int, error) {
	if s.sw != nil {
		return s.sw.WriteString(str)
	}
	return s.w.Write([]byte(str))
}

// WriteRune writes the UTF-8 encoding of r.
func (s *Sink) WriteRune(r rune) (int, error) {
	if s.rw != nil {
		return s.rw.WriteRune(r)
	}
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], r)
	return s.w.Write(buf[:n])
}

// CanFlush reports whether the wrapped writer supports flushing.
func (s *Sink) CanFlush() bool {
	return s.flush != nil
}

// Flush flushes the wrapped writer if it supports flushing.
func (s *Sink) Flush() error {
	if s.flush == nil {
		return nil
	}
	return s.flush()
}

// Grow reserves room for n more bytes if the wrapped writer is an in-memory
// buffer. It is a no-op otherwise.
func (s *Sink) Grow(n int) {
	if s.grow != nil && n > 0 {
		s.grow(n)
	}
}

// Unwrap returns the wrapped writer.
func (s *Sink) Unwrap() io.Writer {
	return s.w
}
