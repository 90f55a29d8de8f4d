package dispatch

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics interface {
	RecordSend(success bool, reason string)
	ObserveBatch(d time.Duration)
}

type NopMetrics struct{}

func (NopMetrics) RecordSend(bool, string)    {}
func (NopMetrics) ObserveBatch(time.Duration) {}

// PrometheusMetrics 派发相关的 Prometheus 指标，第一次使用时注册
type PrometheusMetrics struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	sends         *prometheus.CounterVec
	batchDuration prometheus.Histogram
}

var _ Metrics = (*PrometheusMetrics)(nil)

func NewPrometheusMetrics(reg prometheus.Registerer, namespace string) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "crewboard"
	}
	return &PrometheusMetrics{reg: reg, namespace: namespace}
}

func (p *PrometheusMetrics) ensureRegistered() {
	p.once.Do(func() {
		p.sends = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "dispatch",
			Name:      "messages_total",
			Help:      "Assignment messages attempted, by result and failure reason.",
		}, []string{"result", "reason"})

		p.batchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "dispatch",
			Name:      "batch_duration_seconds",
			Help:      "Wall time of one sequential dispatch batch.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		})

		p.reg.MustRegister(p.sends, p.batchDuration)
	})
}

func (p *PrometheusMetrics) RecordSend(success bool, reason string) {
	p.ensureRegistered()
	result := "success"
	if !success {
		result = "failure"
	}
	p.sends.WithLabelValues(result, reason).Inc()
}

func (p *PrometheusMetrics) ObserveBatch(d time.Duration) {
	p.ensureRegistered()
	p.batchDuration.Observe(d.Seconds())
}
