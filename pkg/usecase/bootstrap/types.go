// pkg/usecase/bootstrap/types.go

package bootstrap

import (
	domainconfig "github.com/damianoneill/go-obfuscate/pkg/domain/config"
	domainlog "github.com/damianoneill/go-obfuscate/pkg/domain/logging"
	domainmetrics "github.com/damianoneill/go-obfuscate/pkg/domain/metrics"
	"github.com/damianoneill/go-obfuscate/pkg/usecase/redact"
)

// Dependencies contains all external dependencies required by the service.
// MetricsFactory is optional; without it nothing is recorded.
type Dependencies struct {
	ConfigFactory  domainconfig.Factory
	LoggerFactory  domainlog.Factory
	MetricsFactory domainmetrics.Factory
}

// Options configures the bootstrap service.
type Options struct {
	// Service Identity
	ServiceName string
	Version     string

	// Configuration
	ConfigFile     string
	ConfigType     string
	EnvPrefix      string
	ConfigDefaults map[string]interface{}

	// Logging
	LogLevel  domainlog.Level
	LogFields domainlog.Fields

	// Obfuscation rules are read from RulesKey. Rules adds rules on top of
	// the configured ones; a configured rule for the same field wins.
	RulesKey string
	Rules    []redact.Option

	// WatchRules reloads the rules whenever the config file changes.
	// It requires ConfigFile.
	WatchRules bool

	// Metrics
	MetricsSubsystem string
	MetricsLabels    map[string]string
}
