// pkg/domain/obfuscation/chain.go

package obfuscation

import (
	"fmt"
	"unicode/utf8"

	domainerr "github.com/damianoneill/go-obfuscate/pkg/domain/errors"
	"github.com/damianoneill/go-obfuscate/pkg/domain/sink"
	"github.com/damianoneill/go-obfuscate/pkg/domain/text"
)

// Prefix is the first half of a chained Obfuscator, see UntilLength.
type Prefix struct {
	first  Obfuscator
	length int
}

// UntilLength starts a chain: o handles the first length characters and the
// Obfuscator passed to Then handles the rest.
//
//	ob, err := obfuscation.None().UntilLength(4).Then(obfuscation.All('*'))
//
// Chains can be extended as long as each length is larger than the previous.
func (o Obfuscator) UntilLength(length int) Prefix {
	return Prefix{first: o, length: length}
}

// Then completes the chain.
func (p Prefix) Then(second Obfuscator) (Obfuscator, error) {
	if p.length <= 0 {
		return Obfuscator{}, domainerr.InvalidArgument(fmt.Sprintf("prefix length %d must be positive", p.length))
	}
	if c, ok := p.first.strategy().(chainStrategy); ok && p.length <= c.length {
		return Obfuscator{}, domainerr.InvalidArgument(fmt.Sprintf(
			"prefix length %d must be larger than the previous prefix length %d", p.length, c.length))
	}
	return Obfuscator{s: chainStrategy{first: p.first, length: p.length, second: second}}, nil
}

type chainStrategy struct {
	first  Obfuscator
	length int
	second Obfuscator
}

func (s chainStrategy) kind() string {
	return KindChain
}

func (s chainStrategy) describe() string {
	return fmt.Sprintf("%s.untilLength(%d).then(%s)", s.first, s.length, s.second)
}

func (s chainStrategy) equal(other strategy) bool {
	o, ok := other.(chainStrategy)
	return ok && o.length == s.length && o.first.Equal(s.first) && o.second.Equal(s.second)
}

func (s chainStrategy) view(str string) (text.View, error) {
	split := len(text.Prefix(str, s.length))
	head, err := s.first.strategy().view(str[:split])
	if err != nil {
		return nil, err
	}
	if split == len(str) {
		return head, nil
	}
	tail, err := s.second.strategy().view(str[split:])
	if err != nil {
		return nil, err
	}
	return text.Concat(head, tail), nil
}

func (s chainStrategy) newWriter(dst *sink.Sink) streamWriter {
	return &chainWriter{
		writerState: writerState{dst: dst},
		active:      s.first.strategy().newWriter(dst),
		remaining:   s.length,
		second:      s.second.strategy(),
	}
}

// chainWriter sends the first characters to the first strategy's writer and
// the rest to the second's. The second writer is only created once a
// character past the prefix arrives.
type chainWriter struct {
	writerState
	active    streamWriter
	remaining int
	switched  bool
	second    strategy
	carry     utf8Carry
}

func (w *chainWriter) Write(p []byte) (int, error) {
	if err := w.check(); err != nil {
		return 0, err
	}
	if err := w.fail(w.forward(w.carry.take(p))); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *chainWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

func (w *chainWriter) WriteRune(r rune) (int, error) {
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], r)
	return w.Write(buf[:n])
}

// forward routes complete characters. The countdown only moves after the
// active writer accepted the characters.
func (w *chainWriter) forward(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if !w.switched {
		if w.remaining > 0 {
			head := data[:prefixLen(data, w.remaining)]
			if _, err := w.active.Write(head); err != nil {
				return err
			}
			w.remaining -= utf8.RuneCount(head)
			data = data[len(head):]
			if len(data) == 0 {
				return nil
			}
		}
		if err := w.active.end(); err != nil {
			return err
		}
		w.active = w.second.newWriter(w.dst)
		w.switched = true
	}
	_, err := w.active.Write(data)
	return err
}

func (w *chainWriter) Close() error {
	return w.closeWith(w.finalize)
}

func (w *chainWriter) end() error {
	return w.endWith(w.finalize)
}

// finalize routes any held back bytes and finishes the active writer. Only
// the outermost Close flushes the underlying writer.
func (w *chainWriter) finalize() error {
	if w.carry.pending() {
		if err := w.forward(w.carry.drain()); err != nil {
			return err
		}
	}
	return w.active.end()
}

// prefixLen returns the number of bytes taken by the first n characters of p.
func prefixLen(p []byte, n int) int {
	i := 0
	for ; n > 0 && i < len(p); n-- {
		_, size := utf8.DecodeRune(p[i:])
		i += size
	}
	return i
}
