// pkg/usecase/redact/redactor.go

// Package redact maps field names to obfuscators and applies them to log
// fields, configuration values and streams. Fields without a rule pass
// through unchanged.
package redact

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	domainconfig "github.com/damianoneill/go-obfuscate/pkg/domain/config"
	domainerr "github.com/damianoneill/go-obfuscate/pkg/domain/errors"
	domainlog "github.com/damianoneill/go-obfuscate/pkg/domain/logging"
	"github.com/damianoneill/go-obfuscate/pkg/domain/metrics"
	"github.com/damianoneill/go-obfuscate/pkg/domain/obfuscation"
	"github.com/damianoneill/go-obfuscate/pkg/domain/options"
	"github.com/damianoneill/go-obfuscate/pkg/domain/text"
)

var (
	_ domainlog.FieldRedactor   = (*Redactor)(nil)
	_ domainconfig.MaskStrategy = (*Redactor)(nil)
)

// Rule obfuscates the values of one field.
type Rule struct {
	Field      string
	Obfuscator obfuscation.Obfuscator
}

// Options configures a Redactor.
type Options struct {
	// Rules in the order they were added. When two rules resolve to the
	// same field name the later one wins.
	Rules []Rule

	// CaseSensitive makes field name matching case sensitive
	CaseSensitive bool

	// Collector records every obfuscation performed
	Collector metrics.Collector
}

// Option is a function that modifies Options
type Option = options.Option[Options]

// WithRule obfuscates values of field with o.
func WithRule(field string, o obfuscation.Obfuscator) Option {
	return options.OptionFunc[Options](func(opts *Options) error {
		if field == "" {
			return domainerr.InvalidArgument("field name must not be empty")
		}
		opts.Rules = append(opts.Rules, Rule{Field: field, Obfuscator: o})
		return nil
	})
}

// WithRules adds every rule in rules, in sorted field name order.
func WithRules(rules map[string]obfuscation.Obfuscator) Option {
	return options.OptionFunc[Options](func(opts *Options) error {
		fields := make([]string, 0, len(rules))
		for field := range rules {
			fields = append(fields, field)
		}
		sort.Strings(fields)

		for _, field := range fields {
			if err := WithRule(field, rules[field]).ApplyOption(opts); err != nil {
				return err
			}
		}
		return nil
	})
}

// WithCaseSensitive sets whether field names are matched case sensitively.
func WithCaseSensitive(enabled bool) Option {
	return options.OptionFunc[Options](func(opts *Options) error {
		opts.CaseSensitive = enabled
		return nil
	})
}

// WithCollector records metrics for every obfuscation.
func WithCollector(c metrics.Collector) Option {
	return options.OptionFunc[Options](func(opts *Options) error {
		opts.Collector = c
		return nil
	})
}

// Redactor obfuscates values by field name. It is safe for concurrent use.
type Redactor struct {
	mu            sync.RWMutex
	rules         map[string]obfuscation.Obfuscator
	caseSensitive bool
	collector     metrics.Collector
}

// New returns a Redactor. Without rules it leaves every value unchanged.
func New(opts ...Option) (*Redactor, error) {
	o, err := options.Build(Options{}, opts...)
	if err != nil {
		return nil, fmt.Errorf("applying redact option: %w", err)
	}
	r := &Redactor{}
	r.set(o)
	return r, nil
}

func (r *Redactor) set(o Options) {
	rules := make(map[string]obfuscation.Obfuscator, len(o.Rules))
	for _, rule := range o.Rules {
		rules[normalize(rule.Field, o.CaseSensitive)] = rule.Obfuscator
	}
	collector := o.Collector
	if collector == nil {
		collector = metrics.Nop()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = rules
	r.caseSensitive = o.CaseSensitive
	r.collector = collector
}

// Replace swaps every rule for the ones opts define. The collector is kept
// unless opts set a new one. On error the current rules stay in place.
func (r *Redactor) Replace(opts ...Option) error {
	r.mu.RLock()
	defaults := Options{Collector: r.collector}
	r.mu.RUnlock()

	o, err := options.Build(defaults, opts...)
	if err != nil {
		return fmt.Errorf("applying redact option: %w", err)
	}
	r.set(o)
	return nil
}

func normalize(field string, caseSensitive bool) string {
	if caseSensitive {
		return field
	}
	return strings.ToLower(field)
}

// Lookup returns the Obfuscator for field.
func (r *Redactor) Lookup(field string) (obfuscation.Obfuscator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.rules[normalize(field, r.caseSensitive)]
	return o, ok
}

// Fields returns the field names that have a rule, sorted.
func (r *Redactor) Fields() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fields := make([]string, 0, len(r.rules))
	for field := range r.rules {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

func (r *Redactor) currentCollector() metrics.Collector {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collector
}

func (r *Redactor) record(o obfuscation.Obfuscator, chars int, start time.Time, err error) {
	r.currentCollector().CollectObfuscation(o.Kind(), chars, time.Since(start).Seconds(), err)
}

// Apply returns value obfuscated according to the rule for field.
// Values of fields without a rule are returned unchanged. A failing
// function strategy masks the whole value.
func (r *Redactor) Apply(field, value string) string {
	o, ok := r.Lookup(field)
	if !ok {
		return value
	}

	start := time.Now()
	chars := text.RuneCount(value)
	v, err := o.ObfuscateRange(value, 0, len(value))
	r.record(o, chars, start, err)
	if err != nil {
		return text.Repeat(obfuscation.DefaultMaskChar, chars).String()
	}
	return v.String()
}

// ApplyTo writes value, obfuscated according to the rule for field, to w.
func (r *Redactor) ApplyTo(field, value string, w io.Writer) error {
	o, ok := r.Lookup(field)
	if !ok {
		o = obfuscation.None()
	}

	start := time.Now()
	err := o.ObfuscateTo(value, 0, len(value), w)
	if ok {
		r.record(o, text.RuneCount(value), start, err)
	}
	return err
}

// Stream returns a Writer that obfuscates everything written to it
// according to the rule for field and forwards the result to w.
func (r *Redactor) Stream(field string, w io.Writer) (obfuscation.Writer, error) {
	o, ok := r.Lookup(field)
	if !ok {
		o = obfuscation.None()
	}

	sw, err := o.StreamTo(w)
	if err != nil {
		return nil, err
	}
	if !ok {
		return sw, nil
	}
	return &meteredWriter{Writer: sw, r: r, o: o, start: time.Now()}, nil
}

// RedactFields implements logging.FieldRedactor. Nested field maps are
// redacted as well.
func (r *Redactor) RedactFields(fields domainlog.Fields) domainlog.Fields {
	if fields == nil {
		return nil
	}
	return domainlog.Fields(r.redactMap(fields))
}

func (r *Redactor) redactMap(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		out[k] = r.redactValue(k, v)
	}
	return out
}

func (r *Redactor) redactValue(field string, value interface{}) interface{} {
	switch v := value.(type) {
	case domainlog.Fields:
		return domainlog.Fields(r.redactMap(v))
	case map[string]interface{}:
		return r.redactMap(v)
	}
	if _, ok := r.Lookup(field); !ok {
		return value
	}
	return r.Apply(field, domainconfig.Stringify(value))
}

// MaskValue implements config.MaskStrategy. The rule is looked up by the full
// key first, then by its last dotted segment.
func (r *Redactor) MaskValue(key string, value interface{}) interface{} {
	field, ok := r.fieldFor(key)
	if !ok {
		return value
	}
	return r.Apply(field, domainconfig.Stringify(value))
}

// Covers reports whether MaskValue has a rule for key.
func (r *Redactor) Covers(key string) bool {
	_, ok := r.fieldFor(key)
	return ok
}

func (r *Redactor) fieldFor(key string) (string, bool) {
	if _, ok := r.Lookup(key); ok {
		return key, true
	}
	i := strings.LastIndexByte(key, '.')
	if i < 0 {
		return "", false
	}
	field := key[i+1:]
	_, ok := r.Lookup(field)
	return field, ok
}

// meteredWriter records one obfuscation when the stream is closed.
type meteredWriter struct {
	obfuscation.Writer
	r     *Redactor
	o     obfuscation.Obfuscator
	start time.Time
	chars int
	done  bool
}

func (w *meteredWriter) Write(p []byte) (int, error) {
	n, err := w.Writer.Write(p)
	w.chars += runeStarts(p[:n])
	return n, err
}

func (w *meteredWriter) WriteString(s string) (int, error) {
	n, err := w.Writer.WriteString(s)
	w.chars += runeStarts([]byte(s[:n]))
	return n, err
}

func (w *meteredWriter) WriteRune(c rune) (int, error) {
	n, err := w.Writer.WriteRune(c)
	if n > 0 {
		w.chars++
	}
	return n, err
}

func (w *meteredWriter) Close() error {
	err := w.Writer.Close()
	if !w.done {
		w.done = true
		w.r.record(w.o, w.chars, w.start, err)
	}
	return err
}

// runeStarts counts the characters starting in p, so that a character split
// across writes is counted once.
func runeStarts(p []byte) int {
	n := 0
	for _, b := range p {
		if utf8.RuneStart(b) {
			n++
		}
	}
	return n
}
