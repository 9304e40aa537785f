package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics Prometheus 指标
type Metrics struct {
	SavesTotal       *prometheus.CounterVec
	ConflictsTotal   prometheus.Counter
	BulkAppliesTotal prometheus.Counter
	DiscardsTotal    prometheus.Counter
	QuickCyclesTotal prometheus.Counter
	HorizonScans     prometheus.Counter
	StatsComputes    prometheus.Counter
	StoreErrorsTotal prometheus.Counter
}

// New 注册并返回指标（promauto 使用默认 registry）
func New() *Metrics {
	return &Metrics{
		SavesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "deskplanner_saves_total",
			Help: "Total number of reservation save operations by outcome",
		}, []string{"outcome"}),

		ConflictsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "deskplanner_conflict_days_total",
			Help: "Total number of conflicting days reported by save operations",
		}),

		BulkAppliesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "deskplanner_bulk_applies_total",
			Help: "Total number of bulk status apply operations",
		}),

		DiscardsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "deskplanner_discards_total",
			Help: "Total number of reservation discard operations",
		}),

		QuickCyclesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "deskplanner_quick_cycles_total",
			Help: "Total number of quick status cycles",
		}),

		HorizonScans: promauto.NewCounter(prometheus.CounterOpts{
			Name: "deskplanner_horizon_scans_total",
			Help: "Total number of horizon scans",
		}),

		StatsComputes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "deskplanner_stats_computes_total",
			Help: "Total number of stats computations",
		}),

		StoreErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "deskplanner_store_errors_total",
			Help: "Total number of booking store failures",
		}),
	}
}
