// pkg/domain/obfuscation/portion.go

package obfuscation

import (
	"fmt"

	domainerr "github.com/damianoneill/go-obfuscate/pkg/domain/errors"
	"github.com/damianoneill/go-obfuscate/pkg/domain/options"
	"github.com/damianoneill/go-obfuscate/pkg/domain/sink"
	"github.com/damianoneill/go-obfuscate/pkg/domain/text"
)

// PortionOptions configures a portion Obfuscator, which keeps a number of
// characters at the start and end of the input and masks the rest.
type PortionOptions struct {
	// KeepAtStart is the number of leading characters left unmasked
	KeepAtStart int

	// KeepAtEnd is the number of trailing characters left unmasked
	KeepAtEnd int

	// AtLeastFromStart is the minimum number of leading characters to mask.
	// When positive, KeepAtStart is ignored.
	AtLeastFromStart int

	// AtLeastFromEnd is the minimum number of trailing characters to mask.
	// When positive, KeepAtEnd is ignored.
	AtLeastFromEnd int

	// FixedTotalLength fixes the length of the output. Negative means unset.
	// When set, the kept start and end may overlap for short input.
	FixedTotalLength int

	// FixedLength fixes the number of mask characters. Negative means unset.
	//
	// Deprecated: use FixedTotalLength, which does not reveal the length of
	// the kept portions either.
	FixedLength int

	// MaskChar is the character used for masking
	MaskChar rune
}

// PortionOption is a function that modifies PortionOptions
type PortionOption = options.Option[PortionOptions]

// DefaultPortionOptions returns options that mask everything.
func DefaultPortionOptions() PortionOptions {
	return PortionOptions{
		FixedTotalLength: -1,
		FixedLength:      -1,
		MaskChar:         DefaultMaskChar,
	}
}

func nonNegative(name string, n int) error {
	if n < 0 {
		return domainerr.InvalidArgument(fmt.Sprintf("%s %d must not be negative", name, n))
	}
	return nil
}

// WithKeepAtStart sets the number of leading characters to keep.
func WithKeepAtStart(n int) PortionOption {
	return options.OptionFunc[PortionOptions](func(o *PortionOptions) error {
		if err := nonNegative("keep at start", n); err != nil {
			return err
		}
		o.KeepAtStart = n
		return nil
	})
}

// WithKeepAtEnd sets the number of trailing characters to keep.
func WithKeepAtEnd(n int) PortionOption {
	return options.OptionFunc[PortionOptions](func(o *PortionOptions) error {
		if err := nonNegative("keep at end", n); err != nil {
			return err
		}
		o.KeepAtEnd = n
		return nil
	})
}

// WithAtLeastFromStart sets the minimum number of leading characters to mask.
func WithAtLeastFromStart(n int) PortionOption {
	return options.OptionFunc[PortionOptions](func(o *PortionOptions) error {
		if err := nonNegative("at least from start", n); err != nil {
			return err
		}
		o.AtLeastFromStart = n
		return nil
	})
}

// WithAtLeastFromEnd sets the minimum number of trailing characters to mask.
func WithAtLeastFromEnd(n int) PortionOption {
	return options.OptionFunc[PortionOptions](func(o *PortionOptions) error {
		if err := nonNegative("at least from end", n); err != nil {
			return err
		}
		o.AtLeastFromEnd = n
		return nil
	})
}

// WithFixedTotalLength fixes the length of the output.
func WithFixedTotalLength(n int) PortionOption {
	return options.OptionFunc[PortionOptions](func(o *PortionOptions) error {
		if err := nonNegative("fixed total length", n); err != nil {
			return err
		}
		o.FixedTotalLength = n
		return nil
	})
}

// WithFixedLength fixes the number of mask characters.
//
// Deprecated: use WithFixedTotalLength.
func WithFixedLength(n int) PortionOption {
	return options.OptionFunc[PortionOptions](func(o *PortionOptions) error {
		if err := nonNegative("fixed length", n); err != nil {
			return err
		}
		o.FixedLength = n
		return nil
	})
}

// WithMaskChar sets the mask character.
func WithMaskChar(mask rune) PortionOption {
	return options.OptionFunc[PortionOptions](func(o *PortionOptions) error {
		o.MaskChar = mask
		return nil
	})
}

// NewPortion returns a portion Obfuscator.
// Without options it masks every character with DefaultMaskChar.
func NewPortion(opts ...PortionOption) (Obfuscator, error) {
	o, err := options.Build(DefaultPortionOptions(), opts...)
	if err != nil {
		return Obfuscator{}, fmt.Errorf("applying portion option: %w", err)
	}
	return Portion(o)
}

// Portion returns a portion Obfuscator for fully populated options.
func Portion(o PortionOptions) (Obfuscator, error) {
	for _, f := range []struct {
		name  string
		value int
	}{
		{"keep at start", o.KeepAtStart},
		{"keep at end", o.KeepAtEnd},
		{"at least from start", o.AtLeastFromStart},
		{"at least from end", o.AtLeastFromEnd},
	} {
		if err := nonNegative(f.name, f.value); err != nil {
			return Obfuscator{}, err
		}
	}
	if o.FixedTotalLength < 0 {
		o.FixedTotalLength = -1
	}
	if o.FixedLength < 0 {
		o.FixedLength = -1
	}
	if o.FixedTotalLength >= 0 && o.FixedTotalLength < o.KeepAtStart+o.KeepAtEnd {
		return Obfuscator{}, domainerr.InvalidState(fmt.Sprintf(
			"fixed total length %d is smaller than keep at start %d plus keep at end %d",
			o.FixedTotalLength, o.KeepAtStart, o.KeepAtEnd), nil)
	}
	return Obfuscator{s: portionStrategy(o)}, nil
}

type portionStrategy PortionOptions

func (s portionStrategy) kind() string {
	return KindPortion
}

func (s portionStrategy) describe() string {
	d := fmt.Sprintf("portion(keepAtStart=%d, keepAtEnd=%d, atLeastFromStart=%d, atLeastFromEnd=%d",
		s.KeepAtStart, s.KeepAtEnd, s.AtLeastFromStart, s.AtLeastFromEnd)
	if s.FixedTotalLength >= 0 {
		d += fmt.Sprintf(", fixedTotalLength=%d", s.FixedTotalLength)
	}
	if s.FixedLength >= 0 {
		d += fmt.Sprintf(", fixedLength=%d", s.FixedLength)
	}
	return d + fmt.Sprintf(", maskChar=%q)", s.MaskChar)
}

func (s portionStrategy) equal(other strategy) bool {
	o, ok := other.(portionStrategy)
	return ok && o == s
}

// fromStart returns the number of leading characters to keep.
func (s portionStrategy) fromStart(length int) int {
	if s.AtLeastFromStart > 0 {
		return 0
	}
	return min(s.KeepAtStart, max(0, length-s.AtLeastFromEnd))
}

// fromEnd returns the number of trailing characters to keep.
func (s portionStrategy) fromEnd(length, fromStart int) int {
	if s.AtLeastFromEnd > 0 {
		return 0
	}
	available := length - fromStart
	if s.FixedTotalLength >= 0 {
		available = length
	}
	return min(s.KeepAtEnd, min(available, max(0, length-s.AtLeastFromStart)))
}

func (s portionStrategy) view(str string) (text.View, error) {
	length := text.RuneCount(str)
	fromStart := s.fromStart(length)
	fromEnd := s.fromEnd(length, fromStart)

	masked := length - fromStart - fromEnd
	switch {
	case s.FixedTotalLength >= 0:
		masked = s.FixedTotalLength - fromStart - fromEnd
	case s.FixedLength >= 0:
		masked = s.FixedLength
	}

	return text.Concat(
		text.Concat(text.String(text.Prefix(str, fromStart)), text.Repeat(s.MaskChar, masked)),
		text.String(text.Suffix(str, fromEnd)),
	), nil
}

func (s portionStrategy) newWriter(dst *sink.Sink) streamWriter {
	return newCollectingWriter(dst, s)
}
