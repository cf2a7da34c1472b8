// pkg/adapter/metrics/prometheus.go
package metrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/damianoneill/go-obfuscate/pkg/domain/metrics"
	"github.com/damianoneill/go-obfuscate/pkg/domain/options"
)

const namespace = "obfuscation"

// DefaultBuckets suit in-memory obfuscation, which mostly takes microseconds.
var DefaultBuckets = prometheus.ExponentialBuckets(0.000001, 4, 10)

type prometheusCollector struct {
	duration    *prometheus.HistogramVec
	total       *prometheus.CounterVec
	characters  *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	reg         prometheus.Registerer
	mu          sync.RWMutex
	closed      bool
}

func NewMetricsFactory() metrics.Factory {
	return &PrometheusFactory{}
}

// NewMetricsFactoryWithRegisterer returns a factory whose collectors
// register with reg instead of the default registry.
func NewMetricsFactoryWithRegisterer(reg prometheus.Registerer) *PrometheusFactory {
	return &PrometheusFactory{Registerer: reg}
}

type PrometheusFactory struct {
	// Registerer defaults to prometheus.DefaultRegisterer
	Registerer prometheus.Registerer
}

func (f *PrometheusFactory) NewCollector(opts ...metrics.Option) (metrics.Collector, error) {
	o, err := options.Build(metrics.DefaultOptions(), opts...)
	if err != nil {
		return nil, fmt.Errorf("applying option: %w", err)
	}

	// Validate options
	if o.ServiceName == "" {
		return nil, fmt.Errorf("service name is required")
	}

	labels := prometheus.Labels{
		"service": o.ServiceName,
	}
	for k, v := range o.Labels {
		labels[k] = v
	}

	buckets := o.Buckets
	if len(buckets) == 0 {
		buckets = DefaultBuckets
	}

	// Validate bucket order
	for i := 1; i < len(buckets); i++ {
		if buckets[i] <= buckets[i-1] {
			return nil, fmt.Errorf("buckets must be in increasing order: %v", buckets)
		}
	}

	reg := f.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	strategyLabel := []string{"strategy"}
	c := &prometheusCollector{
		reg: reg,
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Subsystem:   o.Subsystem,
				Name:        "duration_seconds",
				Help:        "Time spent obfuscating a value in seconds",
				Buckets:     buckets,
				ConstLabels: labels,
			},
			strategyLabel,
		),
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   o.Subsystem,
				Name:        "total",
				Help:        "Total number of obfuscated values",
				ConstLabels: labels,
			},
			strategyLabel,
		),
		characters: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   o.Subsystem,
				Name:        "characters_total",
				Help:        "Total number of input characters obfuscated",
				ConstLabels: labels,
			},
			strategyLabel,
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   o.Subsystem,
				Name:        "errors_total",
				Help:        "Total number of failed obfuscations",
				ConstLabels: labels,
			},
			strategyLabel,
		),
	}

	// Register all collectors
	collectors := []prometheus.Collector{
		c.duration,
		c.total,
		c.characters,
		c.errorsTotal,
	}

	for _, collector := range collectors {
		if err := c.reg.Register(collector); err != nil {
			// Clean up any already registered collectors
			for _, col := range collectors {
				c.reg.Unregister(col)
			}
			return nil, fmt.Errorf("registering collector: %w", err)
		}
	}

	return c, nil
}

func (c *prometheusCollector) CollectObfuscation(strategy string, chars int, duration float64, err error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return
	}

	labels := prometheus.Labels{"strategy": strategy}

	c.duration.With(labels).Observe(duration)
	c.total.With(labels).Inc()
	if chars > 0 {
		c.characters.With(labels).Add(float64(chars))
	}

	if err != nil {
		c.errorsTotal.With(labels).Inc()
	}
}

func (c *prometheusCollector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	c.reg.Unregister(c.duration)
	c.reg.Unregister(c.total)
	c.reg.Unregister(c.characters)
	c.reg.Unregister(c.errorsTotal)

	return nil
}
