package mqtt

import "github.com/prometheus/client_golang/prometheus"

var (
	publishSuccess = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mqtt_publish_success_total",
		Help: "Number of successful MQTT publish operations",
	})
	publishFailure = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mqtt_publish_failure_total",
		Help: "Number of failed MQTT publish operations",
	})
	driverEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mqtt_driver_events_total",
		Help: "Driver signals forwarded to the dispatcher",
	}, []string{"event"})
)

func init() {
	prometheus.MustRegister(publishSuccess, publishFailure, driverEvents)
}
