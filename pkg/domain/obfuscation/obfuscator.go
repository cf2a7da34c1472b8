// pkg/domain/obfuscation/obfuscator.go

// Package obfuscation masks sensitive text for logging, telemetry and output
// sanitisation.
//
// An Obfuscator is an immutable strategy. Every strategy can be applied to
// an in-memory range (ObfuscateRange), to a range written into an io.Writer
// (ObfuscateTo), to everything an io.Reader yields (ObfuscateReader), and
// incrementally through a Writer obtained from StreamTo. All four produce the
// same output for the same input.
//
// Obfuscators hold no per-call state and may be shared between goroutines.
// Writers returned by StreamTo belong to a single masking session and must
// not be used concurrently.
package obfuscation

import (
	"io"
	"strings"

	domainerr "github.com/damianoneill/go-obfuscate/pkg/domain/errors"
	"github.com/damianoneill/go-obfuscate/pkg/domain/sink"
	"github.com/damianoneill/go-obfuscate/pkg/domain/text"
)

// DefaultMaskChar is the character used when no mask character is given.
const DefaultMaskChar = '*'

// Strategy kinds as returned by Obfuscator.Kind.
const (
	KindAll         = "all"
	KindNone        = "none"
	KindFixedLength = "fixed_length"
	KindFixedValue  = "fixed_value"
	KindPortion     = "portion"
	KindFunction    = "function"
	KindChain       = "chain"
)

// strategy is the closed set of masking variants.
type strategy interface {
	kind() string
	describe() string
	equal(other strategy) bool

	// view obfuscates all of s.
	view(s string) (text.View, error)

	// newWriter returns an open Writer bound to dst.
	newWriter(dst *sink.Sink) streamWriter
}

// Obfuscator is an immutable masking strategy.
// The zero value passes text through unchanged, like None.
type Obfuscator struct {
	s strategy
}

func (o Obfuscator) strategy() strategy {
	if o.s == nil {
		return noneStrategy{}
	}
	return o.s
}

// Kind returns the short name of the strategy, one of the Kind constants.
func (o Obfuscator) Kind() string {
	return o.strategy().kind()
}

// String describes the strategy. It never contains obfuscated input.
func (o Obfuscator) String() string {
	return o.strategy().describe()
}

// Equal reports whether o and other are configured identically.
// Function strategies are equal when they wrap the same function.
func (o Obfuscator) Equal(other Obfuscator) bool {
	return o.strategy().equal(other.strategy())
}

// Obfuscate returns the obfuscated form of s.
// If a function strategy fails, every character of s is replaced by
// DefaultMaskChar; use ObfuscateRange to observe the error instead.
func (o Obfuscator) Obfuscate(s string) string {
	v, err := o.strategy().view(s)
	if err != nil {
		return strings.Repeat(string(DefaultMaskChar), text.RuneCount(s))
	}
	return v.String()
}

// ObfuscateRange returns the obfuscated form of s[start:end].
// The result is a view; nothing is copied until it is materialised.
func (o Obfuscator) ObfuscateRange(s string, start, end int) (text.View, error) {
	if err := text.CheckRange(s, start, end); err != nil {
		return nil, err
	}
	return o.strategy().view(s[start:end])
}

// ObfuscateTo writes the obfuscated form of s[start:end] to w.
// Arguments are validated before anything is written.
func (o Obfuscator) ObfuscateTo(s string, start, end int, w io.Writer) error {
	if err := text.CheckRange(s, start, end); err != nil {
		return err
	}
	dst, err := sink.Wrap(w)
	if err != nil {
		return err
	}
	v, err := o.strategy().view(s[start:end])
	if err != nil {
		return err
	}
	return v.AppendTo(dst)
}

// ObfuscateReader reads r until io.EOF and writes the obfuscated form of
// everything read to w. Neither r nor w is closed.
func (o Obfuscator) ObfuscateReader(r io.Reader, w io.Writer) error {
	if r == nil {
		return domainerr.InvalidArgument("reader must not be nil")
	}
	sw, err := o.StreamTo(w)
	if err != nil {
		return err
	}
	if _, err := io.Copy(sw, r); err != nil {
		return err
	}
	return sw.Close()
}

// StreamTo returns a Writer that obfuscates everything written to it and
// writes the result to w. Closing the Writer does not close w.
func (o Obfuscator) StreamTo(w io.Writer) (Writer, error) {
	dst, err := sink.Wrap(w)
	if err != nil {
		return nil, err
	}
	return o.strategy().newWriter(dst), nil
}
