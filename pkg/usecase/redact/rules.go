// pkg/usecase/redact/rules.go

package redact

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/mitchellh/mapstructure"

	domainconfig "github.com/damianoneill/go-obfuscate/pkg/domain/config"
	domainerr "github.com/damianoneill/go-obfuscate/pkg/domain/errors"
	"github.com/damianoneill/go-obfuscate/pkg/domain/obfuscation"
)

// DefaultRulesKey is the configuration key obfuscation rules are read from.
const DefaultRulesKey = "obfuscation"

// Definition types
const (
	TypeAll         = obfuscation.KindAll
	TypeNone        = obfuscation.KindNone
	TypeFixedLength = obfuscation.KindFixedLength
	TypeFixedValue  = obfuscation.KindFixedValue
	TypePortion     = obfuscation.KindPortion
)

// Definition describes an Obfuscator in configuration.
//
//	card:
//	  type: portion
//	  keep_at_end: 4
//	  fixed_total_length: 16
//	iban:
//	  type: none
//	  until_length: 4
//	  then: {type: all, mask_char: "#"}
type Definition struct {
	Type     string `mapstructure:"type"`
	MaskChar string `mapstructure:"mask_char"`

	// fixed_length
	Length int `mapstructure:"length"`

	// fixed_value
	Value string `mapstructure:"value"`

	// portion
	KeepAtStart      int  `mapstructure:"keep_at_start"`
	KeepAtEnd        int  `mapstructure:"keep_at_end"`
	AtLeastFromStart int  `mapstructure:"at_least_from_start"`
	AtLeastFromEnd   int  `mapstructure:"at_least_from_end"`
	FixedTotalLength *int `mapstructure:"fixed_total_length"`
	FixedLength      *int `mapstructure:"fixed_length"`

	// UntilLength chains this definition with Then for the characters
	// after the first UntilLength.
	UntilLength int         `mapstructure:"until_length"`
	Then        *Definition `mapstructure:"then"`
}

// RulesConfig is the configuration section holding obfuscation rules.
//
// Viper lowercases map keys, so field names read through a config.Store are
// always lower case. With case_sensitive enabled such rules only match
// lower case field names.
type RulesConfig struct {
	// CaseSensitive is nil when the section does not set case_sensitive
	CaseSensitive *bool                 `mapstructure:"case_sensitive"`
	Fields        map[string]Definition `mapstructure:"fields"`
}

// Build returns the Obfuscator d describes.
func (d Definition) Build() (obfuscation.Obfuscator, error) {
	o, err := d.build()
	if err != nil {
		return obfuscation.Obfuscator{}, err
	}
	if d.Then == nil {
		if d.UntilLength != 0 {
			return obfuscation.Obfuscator{}, domainerr.InvalidArgument("until_length requires then")
		}
		return o, nil
	}

	then, err := d.Then.Build()
	if err != nil {
		return obfuscation.Obfuscator{}, fmt.Errorf("then: %w", err)
	}
	return o.UntilLength(d.UntilLength).Then(then)
}

func (d Definition) build() (obfuscation.Obfuscator, error) {
	mask, err := d.maskChar()
	if err != nil {
		return obfuscation.Obfuscator{}, err
	}

	switch d.Type {
	case TypeAll, "":
		return obfuscation.All(mask), nil
	case TypeNone:
		return obfuscation.None(), nil
	case TypeFixedLength:
		return obfuscation.FixedLength(d.Length, mask)
	case TypeFixedValue:
		return obfuscation.FixedValue(d.Value), nil
	case TypePortion:
		opts := []obfuscation.PortionOption{
			obfuscation.WithKeepAtStart(d.KeepAtStart),
			obfuscation.WithKeepAtEnd(d.KeepAtEnd),
			obfuscation.WithAtLeastFromStart(d.AtLeastFromStart),
			obfuscation.WithAtLeastFromEnd(d.AtLeastFromEnd),
			obfuscation.WithMaskChar(mask),
		}
		if d.FixedTotalLength != nil {
			opts = append(opts, obfuscation.WithFixedTotalLength(*d.FixedTotalLength))
		}
		if d.FixedLength != nil {
			opts = append(opts, obfuscation.WithFixedLength(*d.FixedLength))
		}
		return obfuscation.NewPortion(opts...)
	default:
		return obfuscation.Obfuscator{}, domainerr.InvalidArgument(fmt.Sprintf("unknown obfuscator type %q", d.Type))
	}
}

func (d Definition) maskChar() (rune, error) {
	if d.MaskChar == "" {
		return obfuscation.DefaultMaskChar, nil
	}
	r, size := utf8.DecodeRuneInString(d.MaskChar)
	if (r == utf8.RuneError && size == 1) || size != len(d.MaskChar) {
		return 0, domainerr.InvalidArgument(fmt.Sprintf("mask_char %q must be a single character", d.MaskChar))
	}
	return r, nil
}

// Options turns the rules into Redactor options. Case sensitivity is only
// set when the section sets it.
func (c RulesConfig) Options() ([]Option, error) {
	fields := make([]string, 0, len(c.Fields))
	for field := range c.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var opts []Option
	if c.CaseSensitive != nil {
		opts = append(opts, WithCaseSensitive(*c.CaseSensitive))
	}
	for _, field := range fields {
		o, err := c.Fields[field].Build()
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", field, err)
		}
		opts = append(opts, WithRule(field, o))
	}
	return opts, nil
}

// ParseRules decodes a raw configuration section. Unknown keys are errors,
// so that a misspelt option does not silently leave a value unmasked.
func ParseRules(raw map[string]interface{}) (RulesConfig, error) {
	var cfg RulesConfig
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return RulesConfig{}, fmt.Errorf("creating decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return RulesConfig{}, fmt.Errorf("decoding obfuscation rules: %w", err)
	}
	return cfg, nil
}

// LoadRules reads the rules stored under key. A missing key yields no rules.
func LoadRules(store domainconfig.Store, key string) (RulesConfig, error) {
	if !store.IsSet(key) {
		return RulesConfig{}, nil
	}
	var raw map[string]interface{}
	if err := store.UnmarshalKey(key, &raw); err != nil {
		return RulesConfig{}, fmt.Errorf("reading %q: %w", key, err)
	}
	return ParseRules(raw)
}
