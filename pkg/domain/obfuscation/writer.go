// pkg/domain/obfuscation/writer.go

package obfuscation

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	domainerr "github.com/damianoneill/go-obfuscate/pkg/domain/errors"
	"github.com/damianoneill/go-obfuscate/pkg/domain/sink"
)

// Writer obfuscates text incrementally.
//
// Output equals what ObfuscateTo produces for the concatenation of all
// writes. Some strategies only write on Close. After Close every write and
// Flush fails with a stream closed error; further calls to Close do nothing.
// Once writing to the underlying writer has failed, every later write and
// Flush fails as well.
type Writer interface {
	io.Writer
	io.StringWriter
	io.Closer

	// WriteRune writes a single character.
	WriteRune(r rune) (int, error)

	// Flush flushes the underlying writer if it supports flushing.
	// Buffered input that still needs the rest of the text is not written.
	Flush() error
}

// streamWriter is a Writer that can also be finished without flushing the
// underlying writer, as when a chain switches strategies mid-stream.
type streamWriter interface {
	Writer
	end() error
}

// writerState is the open/closed state shared by all writers.
type writerState struct {
	dst    *sink.Sink
	closed bool
	err    error
}

func (s *writerState) check() error {
	if s.closed {
		return domainerr.StreamClosed()
	}
	if s.err != nil {
		return fmt.Errorf("earlier write failed: %w", s.err)
	}
	return nil
}

// fail records err, if any, and returns it.
func (s *writerState) fail(err error) error {
	if err != nil {
		s.err = err
	}
	return err
}

// Flush implements Writer.
func (s *writerState) Flush() error {
	if err := s.check(); err != nil {
		return err
	}
	return s.fail(s.dst.Flush())
}

// beginClose moves the writer to the closed state. It reports whether
// finalisation should run.
func (s *writerState) beginClose() bool {
	if s.closed {
		return false
	}
	s.closed = true
	return s.err == nil
}

// closeWith closes the writer, writes pending output with finalize and
// flushes the underlying writer.
func (s *writerState) closeWith(finalize func() error) error {
	if !s.beginClose() {
		return nil
	}
	if err := s.fail(finalize()); err != nil {
		return err
	}
	return s.fail(s.dst.Flush())
}

// endWith is closeWith without the flush.
func (s *writerState) endWith(finalize func() error) error {
	if !s.beginClose() {
		return nil
	}
	return s.fail(finalize())
}

// forwarder transforms output for strategies that never need the whole input.
type forwarder interface {
	forward(dst *sink.Sink, p []byte) error
	forwardString(dst *sink.Sink, s string) error
	finish(dst *sink.Sink) error
}

// forwardingWriter writes through immediately.
type forwardingWriter struct {
	writerState
	f forwarder
}

func newForwardingWriter(dst *sink.Sink, f forwarder) *forwardingWriter {
	return &forwardingWriter{writerState: writerState{dst: dst}, f: f}
}

func (w *forwardingWriter) Write(p []byte) (int, error) {
	if err := w.check(); err != nil {
		return 0, err
	}
	if err := w.fail(w.f.forward(w.dst, p)); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *forwardingWriter) WriteString(s string) (int, error) {
	if err := w.check(); err != nil {
		return 0, err
	}
	if err := w.fail(w.f.forwardString(w.dst, s)); err != nil {
		return 0, err
	}
	return len(s), nil
}

func (w *forwardingWriter) WriteRune(r rune) (int, error) {
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], r)
	return w.Write(buf[:n])
}

func (w *forwardingWriter) Close() error {
	return w.closeWith(w.finalize)
}

func (w *forwardingWriter) end() error {
	return w.endWith(w.finalize)
}

func (w *forwardingWriter) finalize() error {
	return w.f.finish(w.dst)
}

// collectingWriter buffers everything and obfuscates once on Close.
type collectingWriter struct {
	writerState
	s   strategy
	buf strings.Builder
}

func newCollectingWriter(dst *sink.Sink, s strategy) *collectingWriter {
	return &collectingWriter{writerState: writerState{dst: dst}, s: s}
}

func (w *collectingWriter) Write(p []byte) (int, error) {
	if err := w.check(); err != nil {
		return 0, err
	}
	return w.buf.Write(p)
}

func (w *collectingWriter) WriteString(s string) (int, error) {
	if err := w.check(); err != nil {
		return 0, err
	}
	return w.buf.WriteString(s)
}

func (w *collectingWriter) WriteRune(r rune) (int, error) {
	if err := w.check(); err != nil {
		return 0, err
	}
	return w.buf.WriteRune(r)
}

func (w *collectingWriter) Close() error {
	return w.closeWith(w.finalize)
}

func (w *collectingWriter) end() error {
	return w.endWith(w.finalize)
}

func (w *collectingWriter) finalize() error {
	v, err := w.s.view(w.buf.String())
	w.buf.Reset()
	if err != nil {
		return err
	}
	return v.AppendTo(w.dst)
}

// utf8Carry holds back an incomplete UTF-8 sequence at the end of a write
// until a later write completes it.
type utf8Carry struct {
	buf [utf8.UTFMax]byte
	n   int
}

// take returns the pending bytes followed by p, minus any trailing
// incomplete character, which is kept for the next call.
func (c *utf8Carry) take(p []byte) []byte {
	data := p
	if c.n > 0 {
		data = make([]byte, 0, c.n+len(p))
		data = append(data, c.buf[:c.n]...)
		data = append(data, p...)
	}
	cut := completeLen(data)
	c.n = copy(c.buf[:], data[cut:])
	return data[:cut]
}

// pending reports whether an incomplete character is held back.
func (c *utf8Carry) pending() bool {
	return c.n > 0
}

// drain returns the held back bytes. Each one counts as a character.
func (c *utf8Carry) drain() []byte {
	b := make([]byte, c.n)
	copy(b, c.buf[:c.n])
	c.n = 0
	return b
}

// completeLen returns the length of the longest prefix of p that does not end
// in an incomplete UTF-8 sequence.
func completeLen(p []byte) int {
	for i := len(p) - 1; i >= 0 && i >= len(p)-(utf8.UTFMax-1); i-- {
		if utf8.RuneStart(p[i]) {
			if utf8.FullRune(p[i:]) {
				return len(p)
			}
			return i
		}
	}
	return len(p)
}

// completeLenString is completeLen for strings.
func completeLenString(s string) int {
	for i := len(s) - 1; i >= 0 && i >= len(s)-(utf8.UTFMax-1); i-- {
		if utf8.RuneStart(s[i]) {
			if utf8.FullRuneInString(s[i:]) {
				return len(s)
			}
			return i
		}
	}
	return len(s)
}
