package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	OrdersInitiated       *prometheus.CounterVec
	PaymentCallbacks      *prometheus.CounterVec
	GatewaySessionSeconds *prometheus.HistogramVec
}

func New(namespace string) *Metrics {
	ordersInitiated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_initiated_total",
		Help:      "Orders created through checkout initiation.",
	}, []string{"domain"})
	paymentCallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_callbacks_total",
		Help:      "Gateway payment callbacks by outcome and resolution.",
	}, []string{"domain", "outcome", "resolution"})
	gatewaySession := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "gateway_session_duration_seconds",
		Help:      "Latency of hosted-checkout session creation.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"domain"})

	prometheus.MustRegister(ordersInitiated, paymentCallbacks, gatewaySession)
	return &Metrics{
		OrdersInitiated:       ordersInitiated,
		PaymentCallbacks:      paymentCallbacks,
		GatewaySessionSeconds: gatewaySession,
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
