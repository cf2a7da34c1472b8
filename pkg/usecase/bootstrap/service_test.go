// pkg/usecase/bootstrap/service_test.go

package bootstrap_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainconfig "github.com/damianoneill/go-obfuscate/pkg/domain/config"
	configmocks "github.com/damianoneill/go-obfuscate/pkg/domain/config/mocks"
	domainlog "github.com/damianoneill/go-obfuscate/pkg/domain/logging"
	logmocks "github.com/damianoneill/go-obfuscate/pkg/domain/logging/mocks"
	metricsmocks "github.com/damianoneill/go-obfuscate/pkg/domain/metrics/mocks"
	"github.com/damianoneill/go-obfuscate/pkg/domain/obfuscation"
	"github.com/damianoneill/go-obfuscate/pkg/usecase/bootstrap"
	"github.com/damianoneill/go-obfuscate/pkg/usecase/redact"
)

type testDeps struct {
	configFactory  *configmocks.MockFactory
	configStore    *configmocks.MockMaskedStore
	loggerFactory  *logmocks.MockFactory
	logger         *logmocks.MockLeveledLogger
	metricsFactory *metricsmocks.MockFactory
	collector      *metricsmocks.MockCollector
	ctrl           *gomock.Controller
}

func newTestDeps(t *testing.T) *testDeps {
	ctrl := gomock.NewController(t)

	d := &testDeps{
		ctrl:           ctrl,
		configFactory:  configmocks.NewMockFactory(ctrl),
		configStore:    configmocks.NewMockMaskedStore(ctrl),
		loggerFactory:  logmocks.NewMockFactory(ctrl),
		logger:         logmocks.NewMockLeveledLogger(ctrl),
		metricsFactory: metricsmocks.NewMockFactory(ctrl),
		collector:      metricsmocks.NewMockCollector(ctrl),
	}

	return d
}

func (d *testDeps) dependencies() bootstrap.Dependencies {
	return bootstrap.Dependencies{
		ConfigFactory:  d.configFactory,
		LoggerFactory:  d.loggerFactory,
		MetricsFactory: d.metricsFactory,
	}
}

// storeRules makes the config store hold rules under key.
func (d *testDeps) storeRules(key string, rules map[string]interface{}) {
	d.configStore.EXPECT().IsSet(key).Return(rules != nil).AnyTimes()
	if rules == nil {
		return
	}
	d.configStore.EXPECT().UnmarshalKey(key, gomock.Any()).
		DoAndReturn(func(_ string, target interface{}) error {
			*target.(*map[string]interface{}) = rules
			return nil
		}).AnyTimes()
}

func (d *testDeps) setupBasicMockExpectations() {
	// Basic expectations that most tests will need
	d.configFactory.EXPECT().NewStore(gomock.Any()).Return(d.configStore, nil).AnyTimes()
	d.loggerFactory.EXPECT().NewLogger(gomock.Any()).Return(d.logger, nil).AnyTimes()
	d.metricsFactory.EXPECT().NewCollector(gomock.Any()).Return(d.collector, nil).AnyTimes()
	d.configStore.EXPECT().GetString("logging.level").Return("", false).AnyTimes()
	d.logger.EXPECT().InfoWith(gomock.Any(), gomock.Any()).AnyTimes()
}

func cardRules() map[string]interface{} {
	return map[string]interface{}{
		"fields": map[string]interface{}{
			"card": map[string]interface{}{"type": "portion", "keep_at_end": 4},
		},
	}
}

func TestNewService(t *testing.T) {
	tests := []struct {
		name       string
		opts       bootstrap.Options
		setup      func(*testDeps)
		wantErr    string
		wantFields []string
	}{
		{
			name: "successful initialization with minimal options",
			opts: bootstrap.Options{
				ServiceName: "test-service",
				Version:     "1.0.0",
			},
			setup: func(d *testDeps) {
				d.setupBasicMockExpectations()
				d.storeRules(redact.DefaultRulesKey, nil)
			},
			wantFields: []string{},
		},
		{
			name: "rules from configuration",
			opts: bootstrap.Options{
				ServiceName: "test-service",
			},
			setup: func(d *testDeps) {
				d.setupBasicMockExpectations()
				d.storeRules(redact.DefaultRulesKey, cardRules())
			},
			wantFields: []string{"card"},
		},
		{
			name: "custom rules key and programmatic rules",
			opts: bootstrap.Options{
				ServiceName: "test-service",
				RulesKey:    "masking",
				Rules:       []redact.Option{redact.WithRule("token", obfuscation.All('*'))},
			},
			setup: func(d *testDeps) {
				d.setupBasicMockExpectations()
				d.storeRules("masking", cardRules())
			},
			wantFields: []string{"card", "token"},
		},
		{
			name: "error when service name is empty",
			opts: bootstrap.Options{
				Version: "1.0.0",
			},
			setup:   func(d *testDeps) {},
			wantErr: "service name is required",
		},
		{
			name: "error creating config store",
			opts: bootstrap.Options{
				ServiceName: "test-service",
			},
			setup: func(d *testDeps) {
				d.configFactory.EXPECT().NewStore(gomock.Any()).Return(nil, errors.New("config error"))
			},
			wantErr: "config error",
		},
		{
			name: "error creating metrics collector",
			opts: bootstrap.Options{
				ServiceName: "test-service",
			},
			setup: func(d *testDeps) {
				d.configFactory.EXPECT().NewStore(gomock.Any()).Return(d.configStore, nil)
				d.metricsFactory.EXPECT().NewCollector(gomock.Any()).Return(nil, errors.New("metrics error"))
			},
			wantErr: "metrics error",
		},
		{
			name: "error in configured rules",
			opts: bootstrap.Options{
				ServiceName: "test-service",
			},
			setup: func(d *testDeps) {
				d.configFactory.EXPECT().NewStore(gomock.Any()).Return(d.configStore, nil)
				d.metricsFactory.EXPECT().NewCollector(gomock.Any()).Return(d.collector, nil)
				d.collector.EXPECT().Close().Return(nil)
				d.storeRules(redact.DefaultRulesKey, map[string]interface{}{
					"fields": map[string]interface{}{
						"card": map[string]interface{}{"type": "shuffle"},
					},
				})
			},
			wantErr: `unknown obfuscator type "shuffle"`,
		},
		{
			name: "error creating logger",
			opts: bootstrap.Options{
				ServiceName: "test-service",
			},
			setup: func(d *testDeps) {
				d.configFactory.EXPECT().NewStore(gomock.Any()).Return(d.configStore, nil)
				d.metricsFactory.EXPECT().NewCollector(gomock.Any()).Return(d.collector, nil)
				d.collector.EXPECT().Close().Return(nil)
				d.storeRules(redact.DefaultRulesKey, nil)
				d.configStore.EXPECT().GetString("logging.level").Return("", false)
				d.loggerFactory.EXPECT().NewLogger(gomock.Any()).Return(nil, errors.New("logger error"))
			},
			wantErr: "logger error",
		},
		{
			name: "error with invalid configured log level",
			opts: bootstrap.Options{
				ServiceName: "test-service",
			},
			setup: func(d *testDeps) {
				d.configFactory.EXPECT().NewStore(gomock.Any()).Return(d.configStore, nil)
				d.metricsFactory.EXPECT().NewCollector(gomock.Any()).Return(d.collector, nil)
				d.collector.EXPECT().Close().Return(nil)
				d.storeRules(redact.DefaultRulesKey, nil)
				d.configStore.EXPECT().GetString("logging.level").Return("verbose", true)
			},
			wantErr: "parsing log level",
		},
		{
			name: "error watching without a config file",
			opts: bootstrap.Options{
				ServiceName: "test-service",
				WatchRules:  true,
			},
			setup: func(d *testDeps) {
				d.setupBasicMockExpectations()
				d.storeRules(redact.DefaultRulesKey, nil)
				d.collector.EXPECT().Close().Return(nil)
			},
			wantErr: "watching rules requires a config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := newTestDeps(t)
			if tt.setup != nil {
				tt.setup(deps)
			}

			svc, err := bootstrap.NewService(tt.opts, deps.dependencies())

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, svc)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, svc)

			// Verify service components are initialized
			assert.NotNil(t, svc.Logger())
			assert.NotNil(t, svc.Config())
			require.NotNil(t, svc.Redactor())
			assert.Equal(t, tt.wantFields, svc.Redactor().Fields())
		})
	}
}

func TestNewService_MissingDependencies(t *testing.T) {
	deps := newTestDeps(t)

	_, err := bootstrap.NewService(bootstrap.Options{ServiceName: "svc"}, bootstrap.Dependencies{
		LoggerFactory: deps.loggerFactory,
	})
	assert.ErrorContains(t, err, "config factory is required")

	_, err = bootstrap.NewService(bootstrap.Options{ServiceName: "svc"}, bootstrap.Dependencies{
		ConfigFactory: deps.configFactory,
	})
	assert.ErrorContains(t, err, "logger factory is required")
}

func TestNewService_WithoutMetricsFactory(t *testing.T) {
	deps := newTestDeps(t)
	deps.setupBasicMockExpectations()
	deps.storeRules(redact.DefaultRulesKey, cardRules())

	svc, err := bootstrap.NewService(bootstrap.Options{ServiceName: "test-service"}, bootstrap.Dependencies{
		ConfigFactory: deps.configFactory,
		LoggerFactory: deps.loggerFactory,
	})
	require.NoError(t, err)

	assert.Equal(t, "************1111", svc.Redactor().Apply("card", "4111111111111111"))
	assert.NoError(t, svc.Close())
}

func TestNewService_ConfiguredRuleWins(t *testing.T) {
	deps := newTestDeps(t)
	deps.setupBasicMockExpectations()
	deps.storeRules(redact.DefaultRulesKey, cardRules())
	deps.collector.EXPECT().CollectObfuscation(obfuscation.KindPortion, 16, gomock.Any(), gomock.Nil()).Times(20)

	for i := 0; i < 20; i++ {
		svc, err := bootstrap.NewService(bootstrap.Options{
			ServiceName: "test-service",
			Rules:       []redact.Option{redact.WithRule("Card", obfuscation.None())},
		}, deps.dependencies())
		require.NoError(t, err)

		assert.Equal(t, []string{"card"}, svc.Redactor().Fields())
		assert.Equal(t, "************1111", svc.Redactor().Apply("card", "4111111111111111"))
	}
}

func TestNewService_LoggerOptions(t *testing.T) {
	deps := newTestDeps(t)
	deps.configFactory.EXPECT().NewStore(gomock.Any()).Return(deps.configStore, nil)
	deps.metricsFactory.EXPECT().NewCollector(gomock.Any()).Return(deps.collector, nil)
	deps.storeRules(redact.DefaultRulesKey, cardRules())
	deps.configStore.EXPECT().GetString("logging.level").Return("debug", true)
	deps.logger.EXPECT().InfoWith("Service initialised", gomock.Any())
	deps.collector.EXPECT().CollectObfuscation(obfuscation.KindPortion, 16, gomock.Any(), gomock.Nil()).Times(1)

	var got domainlog.LoggerOptions
	deps.loggerFactory.EXPECT().NewLogger(gomock.Any()).
		DoAndReturn(func(opts ...domainlog.Option) (domainlog.LeveledLogger, error) {
			for _, o := range opts {
				require.NoError(t, o.ApplyOption(&got))
			}
			return deps.logger, nil
		})

	svc, err := bootstrap.NewService(bootstrap.Options{
		ServiceName: "payments",
		Version:     "2.1.0",
		LogFields:   domainlog.Fields{"region": "eu-west-1"},
	}, deps.dependencies())
	require.NoError(t, err)

	assert.Equal(t, domainlog.DebugLevel, got.Level)
	assert.Equal(t, "payments", got.ServiceName)
	assert.Equal(t, domainlog.Fields{"version": "2.1.0", "region": "eu-west-1"}, got.Fields)
	require.NotNil(t, got.Redactor)
	assert.Equal(t,
		domainlog.Fields{"card": "************1111"},
		got.Redactor.RedactFields(domainlog.Fields{"card": "4111111111111111"}),
	)
	assert.Same(t, svc.Redactor(), got.Redactor)
}

func TestService_MaskedConfig(t *testing.T) {
	deps := newTestDeps(t)
	deps.setupBasicMockExpectations()
	deps.storeRules(redact.DefaultRulesKey, cardRules())

	svc, err := bootstrap.NewService(bootstrap.Options{ServiceName: "test-service"}, deps.dependencies())
	require.NoError(t, err)

	// Only the rule-covered card is recorded; the password uses the default mask
	deps.collector.EXPECT().CollectObfuscation(obfuscation.KindPortion, 16, gomock.Any(), gomock.Nil()).Times(1)
	deps.configStore.EXPECT().GetMaskedConfig(gomock.Any()).
		DoAndReturn(func(strategy domainconfig.MaskStrategy) (map[string]interface{}, error) {
			return map[string]interface{}{
				"card":     strategy.MaskValue("payment.card", "4111111111111111"),
				"password": strategy.MaskValue("db.password", "hunter2"),
				"host":     strategy.MaskValue("db.host", "localhost"),
			}, nil
		})

	masked, err := svc.MaskedConfig()
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"card":     "************1111",
		"password": "******",
		"host":     "localhost",
	}, masked)
}

func TestService_ReloadRules(t *testing.T) {
	deps := newTestDeps(t)
	deps.setupBasicMockExpectations()

	rules := cardRules()
	deps.configStore.EXPECT().IsSet(redact.DefaultRulesKey).Return(true).AnyTimes()
	deps.configStore.EXPECT().UnmarshalKey(redact.DefaultRulesKey, gomock.Any()).
		DoAndReturn(func(_ string, target interface{}) error {
			*target.(*map[string]interface{}) = rules
			return nil
		}).AnyTimes()

	svc, err := bootstrap.NewService(bootstrap.Options{ServiceName: "test-service"}, deps.dependencies())
	require.NoError(t, err)
	assert.Equal(t, []string{"card"}, svc.Redactor().Fields())

	rules = map[string]interface{}{
		"fields": map[string]interface{}{
			"iban": map[string]interface{}{"type": "all"},
		},
	}
	require.NoError(t, svc.ReloadRules())
	assert.Equal(t, []string{"iban"}, svc.Redactor().Fields())

	rules = map[string]interface{}{"fields": "not a map"}
	assert.Error(t, svc.ReloadRules())
	assert.Equal(t, []string{"iban"}, svc.Redactor().Fields())
}

func TestService_Close(t *testing.T) {
	deps := newTestDeps(t)
	deps.setupBasicMockExpectations()
	deps.storeRules(redact.DefaultRulesKey, nil)

	svc, err := bootstrap.NewService(bootstrap.Options{ServiceName: "test-service"}, deps.dependencies())
	require.NoError(t, err)

	deps.collector.EXPECT().Close().Return(errors.New("unregister failed")).Times(1)

	err = svc.Close()
	assert.ErrorContains(t, err, "unregister failed")
	// Closing again reports the same outcome without closing twice
	assert.Equal(t, err, svc.Close())
}

func TestService_LogLevelHandler(t *testing.T) {
	deps := newTestDeps(t)
	deps.setupBasicMockExpectations()
	deps.storeRules(redact.DefaultRulesKey, nil)

	svc, err := bootstrap.NewService(bootstrap.Options{ServiceName: "test-service"}, deps.dependencies())
	require.NoError(t, err)

	// The mock logger has no runtime configuration endpoint
	assert.Nil(t, svc.LogLevelHandler())
}
