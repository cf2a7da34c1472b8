// pkg/domain/options/options.go

// Package options provides generic functional options shared by the
// obfuscation builders and the redaction usecase.
package options

// Option is a function that modifies some options type T
type Option[T any] interface {
	ApplyOption(*T) error
}

// OptionFunc is a helper to convert functions to Option interface
type OptionFunc[T any] func(*T) error

// ApplyOption implements Option. A nil OptionFunc leaves target unchanged.
func (f OptionFunc[T]) ApplyOption(o *T) error {
	if f == nil {
		return nil
	}
	return f(o)
}

// Apply applies a list of options to a target, stopping at the first error.
// Nil options are skipped.
func Apply[T any](target *T, opts ...Option[T]) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.ApplyOption(target); err != nil {
			return err
		}
	}
	return nil
}

// Build applies opts to a copy of defaults and returns the result.
// On error the zero value of T is returned.
func Build[T any](defaults T, opts ...Option[T]) (T, error) {
	target := defaults
	if err := Apply(&target, opts...); err != nil {
		var zero T
		return zero, err
	}
	return target, nil
}
