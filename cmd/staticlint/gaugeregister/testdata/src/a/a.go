package a

import "github.com/prometheus/client_golang/prometheus"

func direct() {
	g := prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: "x"}, func() float64 { return 1 }) // want `direct prometheus.NewGaugeFunc call`
	_ = prometheus.Register(g)                                                                  // want `direct prometheus.Register call`
	prometheus.MustRegister(g)                                                                  // want `direct prometheus.MustRegister call`
}

func viaRegistry(r *prometheus.Registry, rr prometheus.Registerer) {
	_ = r.Register(nil) // want `direct prometheus.Register call`
	rr.MustRegister()   // want `direct prometheus.MustRegister call`
}

func harmless() string {
	return prometheus.NewDesc("a", "b")
}

type local struct{}

func (local) Register(any) error { return nil }

func notProm() {
	_ = local{}.Register(nil)
}
