// pkg/adapter/config/viper.go
package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	domainconfig "github.com/damianoneill/go-obfuscate/pkg/domain/config"
	"github.com/damianoneill/go-obfuscate/pkg/domain/options"
)

// Verify interface implementation
var (
	_ domainconfig.MaskedStore = (*ViperStore)(nil)
	_ domainconfig.Watcher     = (*ViperStore)(nil)
	_ domainconfig.Factory     = (*Factory)(nil)
)

// GetConfigHandler serves the masked configuration as JSON.
func (s *ViperStore) GetConfigHandler(maskStrategy domainconfig.MaskStrategy) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		config, err := s.GetMaskedConfig(maskStrategy)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(config); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// GetMaskedConfig returns every setting with sensitive values obfuscated.
func (s *ViperStore) GetMaskedConfig(maskStrategy domainconfig.MaskStrategy) (map[string]interface{}, error) {
	if maskStrategy == nil {
		maskStrategy = &domainconfig.DefaultMaskStrategy{
			SensitiveKeys: domainconfig.DefaultSensitiveKeys,
		}
	}

	return maskConfigMap("", s.AllSettings(), maskStrategy), nil
}

// Apply MaskStrategy to a config map recursively
func maskConfigMap(prefix string, config map[string]interface{}, strategy domainconfig.MaskStrategy) map[string]interface{} {
	result := make(map[string]interface{}, len(config))

	for k, v := range config {
		fullKey := k
		if prefix != "" {
			fullKey = prefix + "." + k
		}

		switch val := v.(type) {
		case map[string]interface{}:
			result[k] = maskConfigMap(fullKey, val, strategy)
		case []interface{}:
			masked := make([]interface{}, len(val))
			for i, item := range val {
				if m, ok := item.(map[string]interface{}); ok {
					masked[i] = maskConfigMap(fullKey, m, strategy)
				} else {
					masked[i] = strategy.MaskValue(fullKey, item)
				}
			}
			result[k] = masked
		default:
			result[k] = strategy.MaskValue(fullKey, v)
		}
	}

	return result
}

// ViperStore implements the Store interface using Viper
type ViperStore struct {
	v  *viper.Viper
	mu sync.RWMutex

	watchMu  sync.Mutex
	watching bool
	watchers map[int]watch
	nextID   int
}

type watch struct {
	key string
	ch  chan interface{}
}

// Factory creates Viper-backed stores
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) NewStore(opts ...domainconfig.Option) (domainconfig.MaskedStore, error) {
	return f.NewViperStore(opts...)
}

// NewViperStore is NewStore returning the concrete type, which also
// implements domainconfig.Watcher.
func (f *Factory) NewViperStore(opts ...domainconfig.Option) (*ViperStore, error) {
	o, err := options.Build(domainconfig.StoreOptions{}, opts...)
	if err != nil {
		return nil, fmt.Errorf("applying option: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml") // Default to YAML
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if o.ConfigFile != "" {
		v.SetConfigFile(o.ConfigFile)
	}
	if o.ConfigType != "" {
		v.SetConfigType(o.ConfigType)
	}
	if o.EnvPrefix != "" {
		v.SetEnvPrefix(o.EnvPrefix)
		v.AutomaticEnv()
	}
	for key, value := range o.Defaults {
		v.SetDefault(key, value)
	}

	store := &ViperStore{v: v, watchers: make(map[int]watch)}

	// Load config if file specified
	if o.ConfigFile != "" {
		if err := store.ReadConfig(); err != nil {
			return nil, err
		}
	}

	return store, nil
}

// ReadConfig loads the configuration file
func (s *ViperStore) ReadConfig() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// Get methods implement Store interface
func (s *ViperStore) GetString(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.v.IsSet(key) {
		return "", false
	}
	return s.v.GetString(key), true
}

func (s *ViperStore) GetInt(key string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.v.IsSet(key) {
		return 0, false
	}
	return s.v.GetInt(key), true
}

func (s *ViperStore) GetBool(key string) (bool, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.v.IsSet(key) {
		return false, false
	}
	return s.v.GetBool(key), true
}

func (s *ViperStore) GetDuration(key string) (time.Duration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.v.IsSet(key) {
		return 0, false
	}
	return s.v.GetDuration(key), true
}

func (s *ViperStore) GetFloat64(key string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.v.IsSet(key) {
		return 0, false
	}
	return s.v.GetFloat64(key), true
}

func (s *ViperStore) GetStringSlice(key string) ([]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.v.IsSet(key) {
		return nil, false
	}
	return s.v.GetStringSlice(key), true
}

func (s *ViperStore) Set(key string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.v.Set(key, value)
	return nil
}

func (s *ViperStore) IsSet(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.v.IsSet(key)
}

func (s *ViperStore) UnmarshalKey(key string, target interface{}) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.v.UnmarshalKey(key, target)
}

func (s *ViperStore) Unmarshal(target interface{}) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.v.Unmarshal(target)
}

func (s *ViperStore) AllSettings() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.v.AllSettings()
}

// Watch implements domainconfig.Watcher. Viper re-reads the file on every
// change; the new value of key is then sent on the returned channel. A
// receiver that falls behind only sees the latest value.
func (s *ViperStore) Watch(ctx context.Context, key string) (<-chan interface{}, error) {
	s.mu.RLock()
	file := s.v.ConfigFileUsed()
	s.mu.RUnlock()
	if file == "" {
		return nil, errors.New("watching requires a config file")
	}

	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan interface{}, 1)
	s.watchers[id] = watch{key: key, ch: ch}

	if !s.watching {
		s.watching = true
		s.mu.Lock()
		s.v.OnConfigChange(s.onConfigChange)
		s.v.WatchConfig()
		s.mu.Unlock()
	}

	go func() {
		<-ctx.Done()
		s.watchMu.Lock()
		defer s.watchMu.Unlock()
		delete(s.watchers, id)
		close(ch)
	}()

	return ch, nil
}

func (s *ViperStore) onConfigChange(fsnotify.Event) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	for _, w := range s.watchers {
		s.mu.RLock()
		value := s.v.Get(w.key)
		s.mu.RUnlock()

		// Replace a value the receiver has not picked up yet.
		select {
		case <-w.ch:
		default:
		}
		w.ch <- value
	}
}
