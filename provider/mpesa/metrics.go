package mpesa

import "github.com/prometheus/client_golang/prometheus"

var (
	pushesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pesapos",
		Subsystem: "mpesa",
		Name:      "pushes_total",
		Help:      "STK push requests by result.",
	}, []string{"result"})

	callbacksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pesapos",
		Subsystem: "mpesa",
		Name:      "callbacks_total",
		Help:      "Received gateway callbacks by result.",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(pushesTotal, callbacksTotal)
}
