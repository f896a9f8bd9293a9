package metrics

import (
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/guimove/fairprice/internal/model"
)

// Collector mirrors the state of the simulated cloud into Prometheus gauges.
// It satisfies simulation.Recorder.
type Collector struct {
	registry *prometheus.Registry

	price         *prometheus.GaugeVec
	backlog       *prometheus.GaugeVec
	processed     *prometheus.GaugeVec
	arrived       *prometheus.GaugeVec
	workerBacklog *prometheus.GaugeVec
	ticks         prometheus.Counter
}

// Option configures the collector.
type Option func(*options)

type options struct {
	namespace string
	registry  *prometheus.Registry
}

// WithNamespace sets the metric name prefix (default "fairprice").
func WithNamespace(ns string) Option {
	return func(o *options) { o.namespace = ns }
}

// WithRegistry registers the metrics on an existing registry.
func WithRegistry(r *prometheus.Registry) Option {
	return func(o *options) { o.registry = r }
}

// NewCollector creates a collector with its own registry unless one is given.
func NewCollector(opts ...Option) (*Collector, error) {
	o := options{namespace: "fairprice"}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = prometheus.NewRegistry()
	}

	hostGauge := func(name, help string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: o.namespace,
			Name:      name,
			Help:      help,
		}, []string{"host"})
	}

	c := &Collector{
		registry:  o.registry,
		price:     hostGauge("host_price", "Congestion price of the host after the last tick."),
		backlog:   hostGauge("host_backlog", "Load queued on the host after the last tick."),
		processed: hostGauge("host_processed", "Load processed by the host in the last tick."),
		arrived:   hostGauge("host_arrived", "Load scheduled on the host in the last tick."),
		workerBacklog: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: o.namespace,
			Name:      "worker_backlog",
			Help:      "Load queued for a worker after the last tick.",
		}, []string{"host", "tenant", "worker"}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "ticks_total",
			Help:      "Number of simulated ticks.",
		}),
	}

	for _, col := range []prometheus.Collector{c.price, c.backlog, c.processed, c.arrived, c.workerBacklog, c.ticks} {
		if err := c.registry.Register(col); err != nil {
			return nil, fmt.Errorf("registering metric: %w", err)
		}
	}
	return c, nil
}

// Registry returns the registry holding the collector's metrics.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Record updates the gauges from one tick.
func (c *Collector) Record(hosts []model.HostObservation, rows []model.Snapshot) error {
	for _, h := range hosts {
		c.price.WithLabelValues(h.Host).Set(h.Price)
		c.backlog.WithLabelValues(h.Host).Set(h.Queued)
		c.processed.WithLabelValues(h.Host).Set(h.Processed)
		c.arrived.WithLabelValues(h.Host).Set(h.Arrived)
	}
	for _, r := range rows {
		c.workerBacklog.WithLabelValues(r.Host, r.Tenant, r.WorkerID).Set(r.QueuedLoad)
	}
	c.ticks.Inc()
	return nil
}

// WriteText renders every gathered metric family in the Prometheus text
// exposition format.
func (c *Collector) WriteText(w io.Writer) error {
	families, err := c.registry.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("encoding metric family %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// WriteTextfile writes the metrics to path, e.g. for the node exporter's
// textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating metrics file: %w", err)
	}
	if err := c.WriteText(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
