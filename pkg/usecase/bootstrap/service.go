// pkg/usecase/bootstrap/service.go

// Package bootstrap wires configuration, obfuscation rules, metrics and
// logging into a ready to use Service.
package bootstrap

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	domainconfig "github.com/damianoneill/go-obfuscate/pkg/domain/config"
	domainlog "github.com/damianoneill/go-obfuscate/pkg/domain/logging"
	domainmetrics "github.com/damianoneill/go-obfuscate/pkg/domain/metrics"
	"github.com/damianoneill/go-obfuscate/pkg/usecase/redact"
)

// Service represents a bootstrapped application whose logs and displayed
// configuration are obfuscated according to its rules.
type Service struct {
	logger    domainlog.LeveledLogger
	config    domainconfig.MaskedStore
	redactor  *redact.Redactor
	collector domainmetrics.Collector
	startTime time.Time
	deps      Dependencies
	opts      Options

	stopWatch func()
	watchDone chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// NewService creates a new bootstrap service with all domain capabilities
func NewService(opts Options, deps Dependencies) (*Service, error) {
	// Validate and set option defaults
	if err := validateOptions(&opts, deps); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	svc := &Service{
		deps:      deps,
		startTime: time.Now(),
		opts:      opts,
	}

	if err := svc.initConfig(opts); err != nil {
		return nil, err
	}

	if err := svc.initMetrics(opts); err != nil {
		return nil, err
	}

	if err := svc.initRedactor(); err != nil {
		_ = svc.collector.Close()
		return nil, err
	}

	if err := svc.initLogger(opts); err != nil {
		_ = svc.collector.Close()
		return nil, err
	}

	if err := svc.initWatch(opts); err != nil {
		_ = svc.collector.Close()
		return nil, err
	}

	svc.logger.InfoWith("Service initialised", domainlog.Fields{
		"obfuscated_fields": svc.redactor.Fields(),
		"watch_rules":       opts.WatchRules,
	})

	return svc, nil
}

// ReloadRules reads the rules from configuration again and replaces the
// current ones. On error the current rules stay in place.
func (s *Service) ReloadRules() error {
	ruleOpts, err := s.ruleOptions()
	if err != nil {
		return err
	}
	if err := s.redactor.Replace(ruleOpts...); err != nil {
		return fmt.Errorf("replacing obfuscation rules: %w", err)
	}

	s.logger.InfoWith("Obfuscation rules reloaded", domainlog.Fields{
		"obfuscated_fields": s.redactor.Fields(),
	})
	return nil
}

// MaskedConfig returns every setting with sensitive values obfuscated. Keys
// with an obfuscation rule use it; other keys that look sensitive are
// replaced by config.DefaultMaskPattern.
func (s *Service) MaskedConfig() (map[string]interface{}, error) {
	return s.config.GetMaskedConfig(s.maskStrategy())
}

// ConfigHandler serves MaskedConfig as JSON.
func (s *Service) ConfigHandler() http.Handler {
	return s.config.GetConfigHandler(s.maskStrategy())
}

// LogLevelHandler serves the runtime log level endpoint, or nil when the
// logger does not provide one.
func (s *Service) LogLevelHandler() http.Handler {
	if configurable, ok := s.logger.(domainlog.RuntimeConfigurable); ok {
		return configurable.GetConfigHandler()
	}
	return nil
}

func (s *Service) maskStrategy() domainconfig.MaskStrategy {
	return &ruleMaskStrategy{
		redactor: s.redactor,
		fallback: &domainconfig.DefaultMaskStrategy{SensitiveKeys: domainconfig.DefaultSensitiveKeys},
	}
}

// Close stops watching the rules and releases the metrics collector. It is
// safe to call more than once.
func (s *Service) Close() error {
	s.closeOnce.Do(func() {
		if s.stopWatch != nil {
			s.stopWatch()
			<-s.watchDone
		}
		if err := s.collector.Close(); err != nil {
			s.closeErr = fmt.Errorf("closing metrics collector: %w", err)
		}
		s.logger.InfoWith("Service stopped", domainlog.Fields{
			"uptime": time.Since(s.startTime).String(),
		})
	})
	return s.closeErr
}

// Config returns the service's configuration store
func (s *Service) Config() domainconfig.Store {
	return s.config
}

// Logger returns the service's logger
func (s *Service) Logger() domainlog.Logger {
	return s.logger
}

// Redactor returns the service's obfuscation rules
func (s *Service) Redactor() *redact.Redactor {
	return s.redactor
}

// validateOptions ensures all required options are set and defaults are applied
func validateOptions(opts *Options, deps Dependencies) error {
	if opts.ServiceName == "" {
		return errors.New("service name is required")
	}
	if deps.ConfigFactory == nil {
		return errors.New("config factory is required")
	}
	if deps.LoggerFactory == nil {
		return errors.New("logger factory is required")
	}

	// Set defaults
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.EnvPrefix == "" {
		opts.EnvPrefix = opts.ServiceName
	}
	if opts.LogLevel == "" {
		opts.LogLevel = domainlog.InfoLevel
	}
	if opts.RulesKey == "" {
		opts.RulesKey = redact.DefaultRulesKey
	}

	return nil
}

// ruleMaskStrategy masks keys that have an obfuscation rule with it and
// defers every other key to fallback.
type ruleMaskStrategy struct {
	redactor *redact.Redactor
	fallback domainconfig.MaskStrategy
}

func (m *ruleMaskStrategy) MaskValue(key string, value interface{}) interface{} {
	if m.redactor.Covers(key) {
		return m.redactor.MaskValue(key, value)
	}
	return m.fallback.MaskValue(key, value)
}
