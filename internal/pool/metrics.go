package pool

import (
	"fmt"
	"sync"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	poolLabel = "pool"
)

var (
	poolAvailable = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "pcstream",
		Name:      "pool_available",
		Help:      "The number of instances available in the pool.",
	}, []string{poolLabel})

	poolExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pcstream",
		Name:      "pool_exhausted_total",
		Help:      "The total number of acquisitions refused because the pool was empty.",
	}, []string{poolLabel})
)

// label values held by open pools
var (
	labelsMu sync.Mutex
	labels   = make(map[string]struct{})
)

// Reserves the metric label of a new pool. A name already held by an open
// pool gets a numeric suffix.
func reserveLabel(name string) string {
	labelsMu.Lock()
	defer labelsMu.Unlock()

	label := name
	for i := 2; ; i++ {
		if _, taken := labels[label]; !taken {
			break
		}
		label = fmt.Sprintf("%s_%d", name, i)
	}
	if label != name {
		glog.Warningf("pool name %s is already in use, reporting metrics as %s", name, label)
	}
	labels[label] = struct{}{}
	return label
}

// Frees a label and drops its series
func releaseLabel(label string) {
	labelsMu.Lock()
	defer labelsMu.Unlock()

	delete(labels, label)
	poolAvailable.DeleteLabelValues(label)
	poolExhaustedTotal.DeleteLabelValues(label)
}

func instrumentAvailable(name string, available int) {
	poolAvailable.
		With(prometheus.Labels{poolLabel: name}).
		Set(float64(available))
}

func instrumentExhausted(name string) {
	poolExhaustedTotal.
		With(prometheus.Labels{poolLabel: name}).
		Inc()
}
