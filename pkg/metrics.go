package pkg

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ecopia-map/pcstream/internal/octree"
)

const (
	stateLabel = "state"
)

var (
	viewerNodes = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "pcstream",
		Name:      "viewer_nodes",
		Help:      "The number of live nodes by state after the last tick.",
	}, []string{stateLabel})

	viewerResidentPoints = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "pcstream",
		Name:      "viewer_resident_points",
		Help:      "The number of decoded points held by resolved nodes.",
	})

	viewerTickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "pcstream",
		Name:      "viewer_tick_duration_seconds",
		Help:      "The time spent evaluating the tree on each tick.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
	})
)

func instrumentStats(s octree.TreeStats) {
	for state, count := range map[string]int{
		"live":     s.LiveNodes,
		"resolved": s.Resolved,
		"fetching": s.Fetching,
		"expanded": s.Expanded,
		"near":     s.Near,
		"far":      s.Far,
		"mixed":    s.Mixed,
	} {
		viewerNodes.
			With(prometheus.Labels{stateLabel: state}).
			Set(float64(count))
	}
	viewerResidentPoints.Set(float64(s.ResidentPoints))
}

func instrumentTick(elapsed time.Duration) {
	viewerTickDuration.Observe(elapsed.Seconds())
}
