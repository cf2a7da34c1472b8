// pkg/domain/obfuscation/function.go

package obfuscation

import (
	"reflect"

	domainerr "github.com/damianoneill/go-obfuscate/pkg/domain/errors"
	"github.com/damianoneill/go-obfuscate/pkg/domain/sink"
	"github.com/damianoneill/go-obfuscate/pkg/domain/text"
)

// Func transforms text. It must not modify shared state.
type Func func(s string) (string, error)

// FromFunc returns an Obfuscator that delegates to fn.
// An error returned by fn surfaces as an invalid state error wrapping it.
func FromFunc(fn Func) (Obfuscator, error) {
	if fn == nil {
		return Obfuscator{}, domainerr.InvalidArgument("function must not be nil")
	}
	return Obfuscator{s: &functionStrategy{fn: fn}}, nil
}

type functionStrategy struct {
	fn Func
}

func (s *functionStrategy) kind() string {
	return KindFunction
}

func (s *functionStrategy) describe() string {
	return "function"
}

func (s *functionStrategy) equal(other strategy) bool {
	o, ok := other.(*functionStrategy)
	if !ok {
		return false
	}
	return o == s || reflect.ValueOf(o.fn).Pointer() == reflect.ValueOf(s.fn).Pointer()
}

func (s *functionStrategy) view(str string) (text.View, error) {
	out, err := s.fn(str)
	if err != nil {
		return nil, domainerr.InvalidState("obfuscation function failed", err)
	}
	return text.String(out), nil
}

func (s *functionStrategy) newWriter(dst *sink.Sink) streamWriter {
	return newCollectingWriter(dst, s)
}
