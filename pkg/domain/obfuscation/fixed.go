// pkg/domain/obfuscation/fixed.go

package obfuscation

import (
	"fmt"

	domainerr "github.com/damianoneill/go-obfuscate/pkg/domain/errors"
	"github.com/damianoneill/go-obfuscate/pkg/domain/sink"
	"github.com/damianoneill/go-obfuscate/pkg/domain/text"
)

// FixedLength returns an Obfuscator whose output is always length copies of
// mask, whatever the input. The input length is not revealed.
func FixedLength(length int, mask rune) (Obfuscator, error) {
	if length < 0 {
		return Obfuscator{}, domainerr.InvalidArgument(fmt.Sprintf("fixed length %d must not be negative", length))
	}
	return Obfuscator{s: fixedStrategy{length: length, mask: mask, fixedLength: true}}, nil
}

// FixedValue returns an Obfuscator whose output is always value, whatever the
// input. An empty value is allowed.
func FixedValue(value string) Obfuscator {
	return Obfuscator{s: fixedStrategy{value: value}}
}

// fixedStrategy covers both fixed length and fixed value output.
type fixedStrategy struct {
	fixedLength bool
	length      int
	mask        rune
	value       string
}

func (s fixedStrategy) kind() string {
	if s.fixedLength {
		return KindFixedLength
	}
	return KindFixedValue
}

func (s fixedStrategy) describe() string {
	if s.fixedLength {
		return fmt.Sprintf("fixed_length(%d, %q)", s.length, s.mask)
	}
	return fmt.Sprintf("fixed_value(%q)", s.value)
}

func (s fixedStrategy) equal(other strategy) bool {
	o, ok := other.(fixedStrategy)
	return ok && o == s
}

func (s fixedStrategy) output() text.View {
	if s.fixedLength {
		return text.Repeat(s.mask, s.length)
	}
	return text.String(s.value)
}

func (s fixedStrategy) view(string) (text.View, error) {
	return s.output(), nil
}

func (s fixedStrategy) newWriter(dst *sink.Sink) streamWriter {
	return newForwardingWriter(dst, discardForwarder{output: s.output()})
}

// discardForwarder drops all input and writes a fixed output on finish.
type discardForwarder struct {
	output text.View
}

func (discardForwarder) forward(*sink.Sink, []byte) error {
	return nil
}

func (discardForwarder) forwardString(*sink.Sink, string) error {
	return nil
}

func (f discardForwarder) finish(dst *sink.Sink) error {
	return f.output.AppendTo(dst)
}

