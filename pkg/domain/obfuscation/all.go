// pkg/domain/obfuscation/all.go

package obfuscation

import (
	"fmt"
	"unicode/utf8"

	"github.com/damianoneill/go-obfuscate/pkg/domain/sink"
	"github.com/damianoneill/go-obfuscate/pkg/domain/text"
)

// All returns an Obfuscator that replaces every character with mask.
func All(mask rune) Obfuscator {
	return Obfuscator{s: allStrategy{mask: mask}}
}

// None returns an Obfuscator that leaves text unchanged.
func None() Obfuscator {
	return Obfuscator{s: noneStrategy{}}
}

type allStrategy struct {
	mask rune
}

func (s allStrategy) kind() string {
	return KindAll
}

func (s allStrategy) describe() string {
	return fmt.Sprintf("all(%q)", s.mask)
}

func (s allStrategy) equal(other strategy) bool {
	o, ok := other.(allStrategy)
	return ok && o == s
}

func (s allStrategy) view(str string) (text.View, error) {
	return text.Repeat(s.mask, text.RuneCount(str)), nil
}

func (s allStrategy) newWriter(dst *sink.Sink) streamWriter {
	return newForwardingWriter(dst, &maskAllForwarder{mask: s.mask})
}

// maskAllForwarder writes one mask character per input character.
type maskAllForwarder struct {
	mask  rune
	carry utf8Carry
}

func (f *maskAllForwarder) forward(dst *sink.Sink, p []byte) error {
	complete := f.carry.take(p)
	return text.Repeat(f.mask, utf8.RuneCount(complete)).AppendTo(dst)
}

func (f *maskAllForwarder) forwardString(dst *sink.Sink, s string) error {
	if f.carry.pending() || completeLenString(s) != len(s) {
		return f.forward(dst, []byte(s))
	}
	return text.Repeat(f.mask, utf8.RuneCountInString(s)).AppendTo(dst)
}

func (f *maskAllForwarder) finish(dst *sink.Sink) error {
	return text.Repeat(f.mask, len(f.carry.drain())).AppendTo(dst)
}

type noneStrategy struct{}

func (noneStrategy) kind() string {
	return KindNone
}

func (noneStrategy) describe() string {
	return "none"
}

func (noneStrategy) equal(other strategy) bool {
	_, ok := other.(noneStrategy)
	return ok
}

func (noneStrategy) view(s string) (text.View, error) {
	return text.String(s), nil
}

func (noneStrategy) newWriter(dst *sink.Sink) streamWriter {
	return newForwardingWriter(dst, passthroughForwarder{})
}

// passthroughForwarder writes input unchanged.
type passthroughForwarder struct{}

func (passthroughForwarder) forward(dst *sink.Sink, p []byte) error {
	if len(p) == 0 {
		return nil
	}
	_, err := dst.Write(p)
	return err
}

func (passthroughForwarder) forwardString(dst *sink.Sink, s string) error {
	if s == "" {
		return nil
	}
	_, err := dst.WriteString(s)
	return err
}

func (passthroughForwarder) finish(*sink.Sink) error {
	return nil
}
