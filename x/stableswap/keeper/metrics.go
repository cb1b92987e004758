package keeper

import (
	"errors"
	"strconv"
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/paw-chain/stableswap/x/stableswap/types"
)

// StableSwapMetrics holds all Prometheus metrics for the stableswap module
type StableSwapMetrics struct {
	// Operation metrics
	OperationsTotal    *prometheus.CounterVec
	OperationLatency   *prometheus.HistogramVec
	SlippageRejections *prometheus.CounterVec
	PenaltiesApplied   *prometheus.CounterVec
	FeesAccrued        *prometheus.CounterVec

	// Pool metrics
	PoolsTotal   prometheus.Gauge
	PoolReserves *prometheus.GaugeVec
	PoolWeights  *prometheus.GaugeVec
	PoolSupply   *prometheus.GaugeVec
	PoolSurplus  *prometheus.GaugeVec
	PoolHalts    *prometheus.CounterVec
}

var (
	stableSwapMetricsOnce sync.Once
	stableSwapMetrics     *StableSwapMetrics
)

// NewStableSwapMetrics creates and registers stableswap metrics (singleton pattern)
func NewStableSwapMetrics() *StableSwapMetrics {
	stableSwapMetricsOnce.Do(func() {
		stableSwapMetrics = &StableSwapMetrics{
			OperationsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "stableswap",
					Name:      "operations_total",
					Help:      "Total number of pool operations by outcome",
				},
				[]string{"operation", "status"},
			),
			OperationLatency: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: "paw",
					Subsystem: "stableswap",
					Name:      "operation_latency_seconds",
					Help:      "Pool operation latency in seconds",
					Buckets:   prometheus.DefBuckets,
				},
				[]string{"operation"},
			),
			SlippageRejections: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "stableswap",
					Name:      "slippage_rejections_total",
					Help:      "Operations rejected by a caller slippage bound",
				},
				[]string{"operation"},
			),
			PenaltiesApplied: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "stableswap",
					Name:      "penalties_applied_total",
					Help:      "Operations that paid a soft band weight penalty",
				},
				[]string{"pool_id", "operation"},
			),
			FeesAccrued: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "stableswap",
					Name:      "fees_accrued_total",
					Help:      "Fees accrued to surplus in canonical units",
				},
				[]string{"pool_id", "operation"},
			),

			PoolsTotal: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "paw",
					Subsystem: "stableswap",
					Name:      "pools_total",
					Help:      "Total number of pools",
				},
			),
			PoolReserves: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "paw",
					Subsystem: "stableswap",
					Name:      "pool_reserves",
					Help:      "Vault balance of each basket asset in native units",
				},
				[]string{"pool_id", "asset"},
			),
			PoolWeights: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "paw",
					Subsystem: "stableswap",
					Name:      "pool_weights",
					Help:      "Share of each asset in the basket (0-1)",
				},
				[]string{"pool_id", "asset"},
			),
			PoolSupply: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "paw",
					Subsystem: "stableswap",
					Name:      "pool_supply",
					Help:      "Outstanding pool shares",
				},
				[]string{"pool_id"},
			),
			PoolSurplus: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "paw",
					Subsystem: "stableswap",
					Name:      "pool_surplus",
					Help:      "Accrued pool surplus",
				},
				[]string{"pool_id"},
			),
			PoolHalts: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "stableswap",
					Name:      "pool_halts_total",
					Help:      "Pools halted after a fatal error",
				},
				[]string{"pool_id"},
			),
		}
	})
	return stableSwapMetrics
}

func (m *StableSwapMetrics) observe(op string, start time.Time, err error) {
	status := "success"
	switch {
	case err == nil:
	case errors.Is(err, types.ErrSlippage):
		status = "slippage"
		m.SlippageRejections.WithLabelValues(op).Inc()
	case types.IsFatal(err):
		status = "fatal"
	default:
		status = "rejected"
	}
	m.OperationsTotal.WithLabelValues(op, status).Inc()
	m.OperationLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (m *StableSwapMetrics) recordFee(poolID uint64, op string, fee sdkmath.Uint, penalized bool) {
	id := strconv.FormatUint(poolID, 10)
	if !fee.IsNil() && !fee.IsZero() {
		m.FeesAccrued.WithLabelValues(id, op).Add(toFloat(fee))
	}
	if penalized {
		m.PenaltiesApplied.WithLabelValues(id, op).Inc()
	}
}

// recordPool refreshes the gauges of a pool after a state change.
func (m *StableSwapMetrics) recordPool(state types.PoolState) {
	id := strconv.FormatUint(state.ID, 10)
	for i, a := range state.Basket.Assets {
		m.PoolReserves.WithLabelValues(id, strconv.Itoa(i)).Set(toFloat(a.VaultBalance))
	}
	if weights, err := Weights(state); err == nil {
		for i, w := range weights {
			if f, err := w.Float64(); err == nil {
				m.PoolWeights.WithLabelValues(id, strconv.Itoa(i)).Set(f)
			}
		}
	}
	m.PoolSupply.WithLabelValues(id).Set(toFloat(state.TotalSupply))
	m.PoolSurplus.WithLabelValues(id).Set(toFloat(state.Surplus))
}

func toFloat(u sdkmath.Uint) float64 {
	if u.IsNil() {
		return 0
	}
	f, err := strconv.ParseFloat(u.String(), 64)
	if err != nil {
		return 0
	}
	return f
}
