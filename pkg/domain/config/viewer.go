// pkg/domain/config/viewer.go

package config

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/damianoneill/go-obfuscate/pkg/domain/obfuscation"
)

// DefaultSensitiveKeys are the key fragments masked when no strategy is given.
var DefaultSensitiveKeys = []string{"password", "secret", "key", "token", "credential"}

// DefaultMaskPattern is what DefaultMaskStrategy writes for sensitive values
// when no Obfuscator is configured.
const DefaultMaskPattern = "******"

// MaskStrategy determines how sensitive data is masked
type MaskStrategy interface {
	// MaskValue masks potentially sensitive values
	// key is the full config path (e.g. "database.password")
	// value is the raw config value to potentially mask
	// Returns the masked value or original value if masking not needed
	MaskValue(key string, value interface{}) interface{}
}

// DefaultMaskStrategy masks every value whose key contains one of
// SensitiveKeys, ignoring case.
type DefaultMaskStrategy struct {
	// SensitiveKeys contains key patterns that should be masked (e.g. "password", "secret", "key")
	SensitiveKeys []string
	// Obfuscator masks sensitive values. Nil means a fixed DefaultMaskPattern,
	// which hides the length of the value.
	Obfuscator *obfuscation.Obfuscator
}

// MaskValue implements MaskStrategy
func (s *DefaultMaskStrategy) MaskValue(key string, value interface{}) interface{} {
	for _, pattern := range s.SensitiveKeys {
		if containsInsensitive(key, pattern) {
			return s.obfuscator().Obfuscate(Stringify(value))
		}
	}
	return value
}

func (s *DefaultMaskStrategy) obfuscator() obfuscation.Obfuscator {
	if s.Obfuscator != nil {
		return *s.Obfuscator
	}
	return obfuscation.FixedValue(DefaultMaskPattern)
}

// Stringify renders a config value as the text that gets obfuscated.
func Stringify(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// containsInsensitive checks if str contains substr case-insensitively
func containsInsensitive(str, substr string) bool {
	str, substr = strings.ToLower(str), strings.ToLower(substr)
	return strings.Contains(str, substr)
}

// MaskedStore represents a config store that can expose masked config via HTTP
type MaskedStore interface {
	Store
	GetConfigHandler(maskStrategy MaskStrategy) http.Handler
	GetMaskedConfig(maskStrategy MaskStrategy) (map[string]interface{}, error)
}
