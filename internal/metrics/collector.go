// Package metrics exposes frame loop and interaction metrics to Prometheus
// and keeps a rolling window of frame timings for the stats endpoint.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "constellation"

// Collector records metrics for one frame loop. A nil *Collector is valid
// and records nothing.
type Collector struct {
	frames          prometheus.Counter
	frameDuration   prometheus.Histogram
	alpha           prometheus.Gauge
	eased           prometheus.Gauge
	selections      *prometheus.CounterVec
	auxUpdates      prometheus.Counter
	rendererErrors  *prometheus.CounterVec
	droppedCommands prometheus.Counter
	clients         prometheus.Gauge
	reloads         *prometheus.CounterVec

	window *Window
}

// NewCollector registers every metric on reg
func NewCollector(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		frames: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Frames produced by the pipeline",
		}),
		frameDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_duration_seconds",
			Help:      "Wall time spent computing one frame",
			Buckets:   []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .016, .033},
		}),
		alpha: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "simulation_alpha",
			Help:      "Current simulation energy",
		}),
		eased: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "selection_eased_progress",
			Help:      "Eased selection transition progress",
		}),
		selections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selection_changes_total",
			Help:      "Selection changes by resulting mode",
		}, []string{"mode"}),
		auxUpdates: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aux_updates_total",
			Help:      "Auxiliary consumer update passes",
		}),
		rendererErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renderer_errors_total",
			Help:      "Errors returned by renderers",
		}, []string{"renderer"}),
		droppedCommands: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_commands_total",
			Help:      "Commands dropped because the frame inbox was full",
		}),
		clients: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_clients",
			Help:      "Connected websocket clients",
		}),
		reloads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_reloads_total",
			Help:      "Dataset text reloads by result",
		}, []string{"result"}),
		window: NewWindow(DefaultWindowSize),
	}
}

// ObserveFrame records one computed frame
func (c *Collector) ObserveFrame(took time.Duration, alpha, eased float64) {
	if c == nil {
		return
	}
	c.frames.Inc()
	c.frameDuration.Observe(took.Seconds())
	c.alpha.Set(alpha)
	c.eased.Set(eased)
	c.window.Add(float64(took) / float64(time.Millisecond))
}

// SelectionChanged counts a selection change into mode
func (c *Collector) SelectionChanged(mode string) {
	if c == nil {
		return
	}
	c.selections.WithLabelValues(mode).Inc()
}

// AuxUpdated counts one auxiliary update pass
func (c *Collector) AuxUpdated() {
	if c == nil {
		return
	}
	c.auxUpdates.Inc()
}

// RendererError counts a failed render
func (c *Collector) RendererError(renderer string) {
	if c == nil {
		return
	}
	c.rendererErrors.WithLabelValues(renderer).Inc()
}

// CommandDropped counts a command rejected by a full inbox
func (c *Collector) CommandDropped() {
	if c == nil {
		return
	}
	c.droppedCommands.Inc()
}

// SetClients sets the connected client count
func (c *Collector) SetClients(n int) {
	if c == nil {
		return
	}
	c.clients.Set(float64(n))
}

// DatasetReloaded counts a reload attempt; ok=false marks a failed parse
func (c *Collector) DatasetReloaded(ok bool) {
	if c == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	c.reloads.WithLabelValues(result).Inc()
}

// FrameStats summarizes recent frame compute times in milliseconds
func (c *Collector) FrameStats() *Aggregation {
	if c == nil {
		return nil
	}
	return c.window.Aggregate()
}
