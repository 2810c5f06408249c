package searchsync

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// sdkMetrics are the collectors a Client reports to when WithPrometheus is set.
type sdkMetrics struct {
	indexApplies *prometheus.CounterVec
	documents    *prometheus.CounterVec
	runs         *prometheus.CounterVec
	duration     *prometheus.HistogramVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	applies, err := registerVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "searchsync",
		Subsystem: "sdk",
		Name:      "index_applies_total",
		Help:      "Index definitions applied, by index, strategy and status.",
	}, []string{"index", "strategy", "status"}))
	if err != nil {
		return nil, err
	}
	docs, err := registerVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "searchsync",
		Subsystem: "sdk",
		Name:      "documents_total",
		Help:      "Documents accepted by the search service, by index.",
	}, []string{"index"}))
	if err != nil {
		return nil, err
	}
	runs, err := registerVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "searchsync",
		Subsystem: "sdk",
		Name:      "runs_total",
		Help:      "Sync runs by index and final state.",
	}, []string{"index", "state"}))
	if err != nil {
		return nil, err
	}
	duration, err := registerVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "searchsync",
		Subsystem: "sdk",
		Name:      "operation_duration_seconds",
		Help:      "Duration of apply, publish and sync calls, by index.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"operation", "index"}))
	if err != nil {
		return nil, err
	}
	return &sdkMetrics{indexApplies: applies, documents: docs, runs: runs, duration: duration}, nil
}

// registerVec registers c, or returns the collector already registered
// under the same descriptor so several clients can share one registry.
func registerVec[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		var zero T
		return zero, fmt.Errorf("searchsync: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("searchsync: metric registered with another type: %T", are.ExistingCollector)
	}
	return existing, nil
}

// syncObserver logs and counts the index, publish and sync calls of a Client.
// A nil observer records nothing.
type syncObserver struct {
	logger  *zap.Logger
	metrics *sdkMetrics
}

func newSyncObserver(logger *zap.Logger, reg prometheus.Registerer) (*syncObserver, error) {
	o := &syncObserver{logger: logger}
	if reg != nil {
		m, err := newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

func (o *syncObserver) indexApplied(def Definition, strategy Strategy, start time.Time, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)

	if o.metrics != nil {
		o.metrics.indexApplies.WithLabelValues(def.Name, string(strategy), statusOf(err)).Inc()
		o.metrics.duration.WithLabelValues("apply_index", def.Name).Observe(dur.Seconds())
	}
	if o.logger == nil {
		return
	}
	fields := []zap.Field{
		zap.String("index", def.Name),
		zap.String("strategy", string(strategy)),
		zap.Int("fields", len(def.Fields)),
		zap.Duration("duration", dur),
	}
	if err != nil {
		o.logger.Warn("Index apply failed", append(fields, zap.Error(err))...)
		return
	}
	o.logger.Debug("Index applied", fields...)
}

func (o *syncObserver) published(indexName string, sent int, start time.Time, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)

	if o.metrics != nil {
		if err == nil {
			o.metrics.documents.WithLabelValues(indexName).Add(float64(sent))
		}
		o.metrics.duration.WithLabelValues("publish", indexName).Observe(dur.Seconds())
	}
	if o.logger == nil {
		return
	}
	if err != nil {
		o.logger.Warn("Publish failed",
			zap.String("index", indexName), zap.Duration("duration", dur), zap.Error(err))
		return
	}
	o.logger.Debug("Published documents",
		zap.String("index", indexName), zap.Int("documents", sent), zap.Duration("duration", dur))
}

// synced records a finished run from its report. Only documents of
// queries that completed are counted.
func (o *syncObserver) synced(report Report, err error) {
	if o == nil {
		return
	}

	if o.metrics != nil {
		o.metrics.runs.WithLabelValues(report.Index, string(report.State)).Inc()
		if n := report.Documents(); n > 0 {
			o.metrics.documents.WithLabelValues(report.Index).Add(float64(n))
		}
		o.metrics.duration.WithLabelValues("sync", report.Index).Observe(report.Duration.Seconds())
	}
	if o.logger == nil {
		return
	}

	failed := make([]string, 0)
	for _, q := range report.Queries {
		if q.Err != nil {
			failed = append(failed, q.Name)
		}
	}
	fields := []zap.Field{
		zap.String("run_id", report.RunID),
		zap.String("index", report.Index),
		zap.String("state", string(report.State)),
		zap.Int("queries", len(report.Queries)),
		zap.Int("documents", report.Documents()),
		zap.Duration("duration", report.Duration),
	}
	if err != nil {
		o.logger.Warn("Sync failed", append(fields, zap.Strings("failed_queries", failed), zap.Error(err))...)
		return
	}
	o.logger.Debug("Sync finished", fields...)
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
