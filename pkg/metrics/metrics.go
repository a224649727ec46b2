package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 生成调用延迟（毫秒）
	GenerationLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "generation_call_latency_ms",
			Help:    "Text generation call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(50, 2, 10), // 50ms to ~25s
		},
		[]string{"call", "status"}, // call: classify, respond
	)

	// 邮件处理计数
	EmailTriagedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_triaged_count",
			Help: "Total number of emails run through the triage pipeline",
		},
		[]string{"status", "category"},
	)

	HandlerDispatchCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "handler_dispatch_count",
			Help: "Total number of category handler invocations",
		},
		[]string{"handler", "status"},
	)

	ResponseDeliveryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "response_delivery_count",
			Help: "Total number of generated responses handed to a delivery channel",
		},
		[]string{"channel", "status"}, // channel: complaint, standard
	)

	// MQ 消费延迟（毫秒）
	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 12),
		},
		[]string{"routing_key", "queue"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_circuit_breaker_transitions",
			Help: "State transitions of the generation client circuit breaker",
		},
		[]string{"from", "to"},
	)
)

// RecordGenerationLatency 记录生成调用延迟
func RecordGenerationLatency(call, status string, duration time.Duration) {
	GenerationLatency.WithLabelValues(call, status).Observe(float64(duration.Milliseconds()))
}

// IncrementEmailTriaged 增加邮件处理计数
func IncrementEmailTriaged(status, category string) {
	EmailTriagedCount.WithLabelValues(status, category).Inc()
}

func IncrementHandlerDispatch(handler, status string) {
	HandlerDispatchCount.WithLabelValues(handler, status).Inc()
}

func IncrementResponseDelivery(channel, status string) {
	ResponseDeliveryCount.WithLabelValues(channel, status).Inc()
}

// RecordMQConsumeLatency 记录 MQ 消费延迟
func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}

func RecordBreakerTransition(from, to string) {
	CircuitBreakerTransitions.WithLabelValues(from, to).Inc()
}

// 数据库查询延迟（秒）
var DBQueryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Database query duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
	},
	[]string{"operation"},
)

// RecordDBQueryDuration 记录数据库查询延迟
func RecordDBQueryDuration(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
