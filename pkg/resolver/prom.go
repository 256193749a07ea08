package resolver

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	promInitialized  uint32
	promLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "lookups_total"}, []string{"result"})
)

// PromInitialize registers the resolver metrics under namespace.
func PromInitialize(namespace string) {
	if !atomic.CompareAndSwapUint32(&promInitialized, 0, 1) {
		panic("prometheus already set")
	}

	promLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "resolver",
		Name:      "lookups_total",
	}, []string{"result"})
}
