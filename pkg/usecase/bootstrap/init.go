// pkg/usecase/bootstrap/init.go

package bootstrap

import (
	"context"
	"errors"
	"fmt"

	domainconfig "github.com/damianoneill/go-obfuscate/pkg/domain/config"
	domainlog "github.com/damianoneill/go-obfuscate/pkg/domain/logging"
	domainmetrics "github.com/damianoneill/go-obfuscate/pkg/domain/metrics"
	"github.com/damianoneill/go-obfuscate/pkg/usecase/redact"
)

func (s *Service) initConfig(opts Options) error {
	defaults := map[string]interface{}{
		"logging.level": string(opts.LogLevel),
	}
	for k, v := range opts.ConfigDefaults {
		defaults[k] = v
	}

	cfgOpts := []domainconfig.Option{
		domainconfig.WithEnvPrefix(opts.EnvPrefix),
		domainconfig.WithDefaults(defaults),
	}
	if opts.ConfigFile != "" {
		cfgOpts = append(cfgOpts, domainconfig.WithConfigFile(opts.ConfigFile))
	}
	if opts.ConfigType != "" {
		cfgOpts = append(cfgOpts, domainconfig.WithConfigType(opts.ConfigType))
	}

	store, err := s.deps.ConfigFactory.NewStore(cfgOpts...)
	if err != nil {
		return fmt.Errorf("creating config store: %w", err)
	}
	s.config = store
	return nil
}

func (s *Service) initMetrics(opts Options) error {
	if s.deps.MetricsFactory == nil {
		s.collector = domainmetrics.Nop()
		return nil
	}

	metricsOpts := []domainmetrics.Option{
		domainmetrics.WithServiceName(opts.ServiceName),
	}
	if opts.MetricsSubsystem != "" {
		metricsOpts = append(metricsOpts, domainmetrics.WithSubsystem(opts.MetricsSubsystem))
	}
	if len(opts.MetricsLabels) > 0 {
		metricsOpts = append(metricsOpts, domainmetrics.WithLabels(opts.MetricsLabels))
	}

	collector, err := s.deps.MetricsFactory.NewCollector(metricsOpts...)
	if err != nil {
		return fmt.Errorf("creating metrics collector: %w", err)
	}
	s.collector = collector
	return nil
}

// ruleOptions returns the programmatic rules followed by the configured ones.
func (s *Service) ruleOptions() ([]redact.Option, error) {
	rules, err := redact.LoadRules(s.config, s.opts.RulesKey)
	if err != nil {
		return nil, fmt.Errorf("loading obfuscation rules: %w", err)
	}
	configured, err := rules.Options()
	if err != nil {
		return nil, fmt.Errorf("building obfuscation rules: %w", err)
	}
	return append(append([]redact.Option{}, s.opts.Rules...), configured...), nil
}

func (s *Service) initRedactor() error {
	ruleOpts, err := s.ruleOptions()
	if err != nil {
		return err
	}

	redactor, err := redact.New(append(ruleOpts, redact.WithCollector(s.collector))...)
	if err != nil {
		return fmt.Errorf("creating redactor: %w", err)
	}
	s.redactor = redactor
	return nil
}

func (s *Service) initLogger(opts Options) error {
	level := opts.LogLevel
	if configured, ok := s.config.GetString("logging.level"); ok {
		parsed, err := domainlog.ParseLevel(configured)
		if err != nil {
			return fmt.Errorf("parsing log level: %w", err)
		}
		level = parsed
	}

	fields := domainlog.Fields{"version": opts.Version}
	for k, v := range opts.LogFields {
		fields[k] = v
	}

	logger, err := s.deps.LoggerFactory.NewLogger(
		domainlog.WithLevel(level),
		domainlog.WithServiceName(opts.ServiceName),
		domainlog.WithFields(fields),
		domainlog.WithRedactor(s.redactor),
	)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	s.logger = logger
	return nil
}

func (s *Service) initWatch(opts Options) error {
	if !opts.WatchRules {
		return nil
	}
	if opts.ConfigFile == "" {
		return errors.New("watching rules requires a config file")
	}
	watcher, ok := s.config.(domainconfig.Watcher)
	if !ok {
		return errors.New("config store does not support watching")
	}

	ctx, cancel := context.WithCancel(context.Background())
	updates, err := watcher.Watch(ctx, opts.RulesKey)
	if err != nil {
		cancel()
		return fmt.Errorf("watching obfuscation rules: %w", err)
	}
	s.stopWatch = cancel
	s.watchDone = make(chan struct{})

	go func() {
		defer close(s.watchDone)
		for range updates {
			if err := s.ReloadRules(); err != nil {
				s.logger.ErrorWith("Keeping previous obfuscation rules", domainlog.Fields{
					"error": err.Error(),
				})
			}
		}
	}()
	return nil
}
