// pkg/domain/text/view.go

package text

import (
	"io"
	"strings"
	"unicode/utf8"

	"github.com/damianoneill/go-obfuscate/pkg/domain/sink"
)

// repeatChunk is the number of characters a repeat view writes per call.
const repeatChunk = 64

// View is a read-only piece of text that is only materialised when asked.
type View interface {
	// Len returns the length in bytes of the UTF-8 encoding.
	Len() int

	// String materialises the view.
	String() string

	// AppendTo writes the view to w without materialising it first.
	AppendTo(w io.Writer) error
}

type stringView string

// String returns a view of s.
func String(s string) View {
	return stringView(s)
}

// Slice returns a view of s[start:end]. No bytes are copied.
func Slice(s string, start, end int) (View, error) {
	if err := CheckRange(s, start, end); err != nil {
		return nil, err
	}
	return stringView(s[start:end]), nil
}

func (v stringView) Len() int {
	return len(v)
}

func (v stringView) String() string {
	return string(v)
}

func (v stringView) AppendTo(w io.Writer) error {
	if len(v) == 0 {
		return nil
	}
	s, err := sink.Wrap(w)
	if err != nil {
		return err
	}
	_, err = s.WriteString(string(v))
	return err
}

type repeatView struct {
	r rune
	n int
}

// Repeat returns a view of n copies of r. Negative counts yield an empty
// view; invalid runes are replaced by utf8.RuneError.
func Repeat(r rune, n int) View {
	if !utf8.ValidRune(r) {
		r = utf8.RuneError
	}
	if n < 0 {
		n = 0
	}
	return repeatView{r: r, n: n}
}

func (v repeatView) Len() int {
	return v.n * utf8.RuneLen(v.r)
}

func (v repeatView) String() string {
	return strings.Repeat(string(v.r), v.n)
}

func (v repeatView) AppendTo(w io.Writer) error {
	if v.n == 0 {
		return nil
	}
	s, err := sink.Wrap(w)
	if err != nil {
		return err
	}
	if v.n == 1 {
		_, err = s.WriteRune(v.r)
		return err
	}

	s.Grow(v.Len())
	chunk := strings.Repeat(string(v.r), min(v.n, repeatChunk))
	width := utf8.RuneLen(v.r)
	for remaining := v.n; remaining > 0; remaining -= repeatChunk {
		part := chunk
		if remaining < repeatChunk {
			part = chunk[:remaining*width]
		}
		if _, err := s.WriteString(part); err != nil {
			return err
		}
	}
	return nil
}

type concatView struct {
	first  View
	second View
}

// Concat returns a view of first followed by second.
// Three or more parts are joined by nesting.
func Concat(first, second View) View {
	switch {
	case first == nil || first.Len() == 0:
		if second == nil {
			return stringView("")
		}
		return second
	case second == nil || second.Len() == 0:
		return first
	}
	return concatView{first: first, second: second}
}

func (v concatView) Len() int {
	return v.first.Len() + v.second.Len()
}

func (v concatView) String() string {
	var sb strings.Builder
	sb.Grow(v.Len())
	// strings.Builder never fails
	_ = v.AppendTo(&sb)
	return sb.String()
}

func (v concatView) AppendTo(w io.Writer) error {
	s, err := sink.Wrap(w)
	if err != nil {
		return err
	}
	if err := v.first.AppendTo(s); err != nil {
		return err
	}
	return v.second.AppendTo(s)
}
