// Package metrics exposes Prometheus counters for the sign-in flow.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "promptshare"

// Sign-in outcomes used as the "result" label.
const (
	ResultExisting    = "existing"
	ResultProvisioned = "provisioned"
	ResultDenied      = "denied"
)

type Metrics struct {
	registry *prometheus.Registry

	SignIns            *prometheus.CounterVec
	UsernameCollisions prometheus.Counter
	ProvisionRetries   prometheus.Counter
	AvatarMirrorErrors prometheus.Counter
}

// New builds a registry holding the sign-in counters plus the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SignIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signins_total",
			Help:      "Sign-in attempts by result.",
		}, []string{"result"}),
		UsernameCollisions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "username_collisions_total",
			Help:      "Username candidates rejected because they were already taken.",
		}),
		ProvisionRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "username_provision_retries_total",
			Help:      "User inserts retried after a duplicate username was rejected by the store.",
		}),
		AvatarMirrorErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "avatar_mirror_errors_total",
			Help:      "Provider avatars that could not be copied to media storage.",
		}),
	}

	m.registry.MustRegister(
		m.SignIns,
		m.UsernameCollisions,
		m.ProvisionRetries,
		m.AvatarMirrorErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry backing the counters.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
