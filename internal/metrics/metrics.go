// Package metrics описывает Prometheus-метрики шлюза.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "codec_gateway"

	codecLabelName     = "codec"
	operationLabelName = "operation"
	outcomeLabelName   = "outcome"
)

const (
	OperationCompress   = "compress"
	OperationDecompress = "decompress"

	OutcomeOK = "ok"
)

var (
	// sizeBuckets — размеры данных в байтах, от 64 Б до 64 МБ.
	sizeBuckets = prometheus.ExponentialBuckets(64, 4, 11)

	// latencyBuckets — длительность вызова кодека в миллисекундах.
	latencyBuckets = prometheus.ExponentialBuckets(0.05, 2, 16)

	Operations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "number of codec operations by outcome",
		}, []string{codecLabelName, operationLabelName, outcomeLabelName})

	InputBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "input_bytes",
			Help:      "size of codec input",
			Buckets:   sizeBuckets,
		}, []string{codecLabelName, operationLabelName})

	OutputBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "output_bytes",
			Help:      "size of codec output",
			Buckets:   sizeBuckets,
		}, []string{codecLabelName, operationLabelName})

	Latency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "codec_latency_ms",
			Help:      "time spent inside the codec",
			Buckets:   latencyBuckets,
		}, []string{codecLabelName, operationLabelName})
)

// Register регистрирует все метрики в r.
func Register(r prometheus.Registerer) {
	r.MustRegister(Operations)
	r.MustRegister(InputBytes)
	r.MustRegister(OutputBytes)
	r.MustRegister(Latency)
}

// Observe записывает результат одного вызова кодека.
// outcome — OutcomeOK или имя вида ошибки.
func Observe(codecName, operation, outcome string, in, out int, elapsed time.Duration) {
	Operations.WithLabelValues(codecName, operation, outcome).Inc()
	InputBytes.WithLabelValues(codecName, operation).Observe(float64(in))
	if outcome == OutcomeOK {
		OutputBytes.WithLabelValues(codecName, operation).Observe(float64(out))
		Latency.WithLabelValues(codecName, operation).Observe(float64(elapsed.Microseconds()) / 1000)
	}
}
