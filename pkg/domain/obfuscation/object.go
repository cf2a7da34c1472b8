// pkg/domain/obfuscation/object.go

package obfuscation

import "fmt"

// Obfuscated carries a sensitive value whose string forms are obfuscated.
// It can be handed to loggers and fmt verbs without leaking the value.
type Obfuscated[T any] struct {
	value T
	o     Obfuscator
}

// Object wraps value so that it renders through o.
func Object[T any](o Obfuscator, value T) Obfuscated[T] {
	return Obfuscated[T]{value: value, o: o}
}

// Value returns the wrapped value.
func (v Obfuscated[T]) Value() T {
	return v.value
}

// String returns the obfuscated form of fmt.Sprint(value).
func (v Obfuscated[T]) String() string {
	return v.o.Obfuscate(fmt.Sprint(v.value))
}

// GoString keeps %#v from printing the raw value.
func (v Obfuscated[T]) GoString() string {
	return v.String()
}

// MarshalText implements encoding.TextMarshaler.
func (v Obfuscated[T]) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}
