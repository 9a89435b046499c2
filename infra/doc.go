// Package infra holds the technical adapters around the dispatcher: the MQTT
// driver bridge, metrics sinks, KPI storage, log backends and Sentry error
// reporting. Each implements an interface declared under core.
package infra
