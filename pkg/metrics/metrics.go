package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

var once sync.Once

var (
	pushSends             *prometheus.CounterVec
	tokensDeactivated     *prometheus.CounterVec
	notificationsCreated  *prometheus.CounterVec
	notificationsSuppress prometheus.Counter
	realtimeConnections   prometheus.Gauge
)

func registerCollector[T prometheus.Collector](c T) T {
	if err := prometheus.Register(c); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing
			}
		}
		logrus.Warnf("prometheus register failed: %v", err)
	}
	return c
}

// Init registers the service collectors with the default registry. Safe to call repeatedly.
func Init() {
	once.Do(func() {
		pushSends = registerCollector(prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "repairhub",
			Subsystem: "push",
			Name:      "sends_total",
			Help:      "Per-token push send attempts by result.",
		}, []string{"result"}))

		tokensDeactivated = registerCollector(prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "repairhub",
			Subsystem: "push",
			Name:      "tokens_deactivated_total",
			Help:      "Push tokens flipped inactive, by reason.",
		}, []string{"reason"}))

		notificationsCreated = registerCollector(prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "repairhub",
			Subsystem: "notifications",
			Name:      "created_total",
			Help:      "Notifications persisted, by category.",
		}, []string{"category"}))

		notificationsSuppress = registerCollector(prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "repairhub",
			Subsystem: "notifications",
			Name:      "suppressed_total",
			Help:      "Chat notifications whose push was suppressed by an open conversation.",
		}))

		realtimeConnections = registerCollector(prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "repairhub",
			Subsystem: "realtime",
			Name:      "connections",
			Help:      "Open WebSocket connections.",
		}))
	})
}

func PushSend(success bool) {
	if pushSends == nil {
		return
	}
	result := "success"
	if !success {
		result = "failure"
	}
	pushSends.WithLabelValues(result).Inc()
}

func TokenDeactivated(reason string, n int) {
	if tokensDeactivated == nil || n <= 0 {
		return
	}
	tokensDeactivated.WithLabelValues(reason).Add(float64(n))
}

func NotificationCreated(category string) {
	if notificationsCreated == nil {
		return
	}
	notificationsCreated.WithLabelValues(category).Inc()
}

func NotificationSuppressed() {
	if notificationsSuppress == nil {
		return
	}
	notificationsSuppress.Inc()
}

func ConnectionOpened() {
	if realtimeConnections != nil {
		realtimeConnections.Inc()
	}
}

func ConnectionClosed() {
	if realtimeConnections != nil {
		realtimeConnections.Dec()
	}
}
