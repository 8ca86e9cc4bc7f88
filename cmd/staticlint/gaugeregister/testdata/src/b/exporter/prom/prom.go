package prom

import "github.com/prometheus/client_golang/prometheus"

func register(r *prometheus.Registry) error {
	return r.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: "ok"}, func() float64 { return 0 }))
}
