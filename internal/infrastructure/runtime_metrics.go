package infrastructure

import (
	"context"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeMetrics records a snapshot of the Go runtime at the end of a run
type RuntimeMetrics struct {
	goroutines   metric.Int64Gauge
	heapInUse    metric.Int64Gauge
	totalAlloc   metric.Int64Gauge
	systemMemory metric.Int64Gauge
	gcCount      metric.Int64Gauge
	runDuration  metric.Float64Gauge
}

// RuntimeStats is the snapshot recorded by Collect
type RuntimeStats struct {
	Goroutines   int64
	HeapInUse    int64
	TotalAlloc   int64
	SystemMemory int64
	GCCount      uint32
	RunDuration  time.Duration
}

// NewRuntimeMetrics creates the runtime instruments on meter
func NewRuntimeMetrics(meter metric.Meter) (*RuntimeMetrics, error) {
	goroutines, err := meter.Int64Gauge(
		"passenger_runtime_goroutines",
		metric.WithDescription("Number of goroutines at the end of the run"),
	)
	if err != nil {
		return nil, err
	}

	heap, err := meter.Int64Gauge(
		"passenger_runtime_heap_inuse_bytes",
		metric.WithDescription("Heap bytes in use at the end of the run"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	total, err := meter.Int64Gauge(
		"passenger_runtime_alloc_total_bytes",
		metric.WithDescription("Bytes allocated over the run"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	sys, err := meter.Int64Gauge(
		"passenger_runtime_sys_bytes",
		metric.WithDescription("Memory obtained from the OS"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	gc, err := meter.Int64Gauge(
		"passenger_runtime_gc_cycles",
		metric.WithDescription("Completed garbage collection cycles"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Gauge(
		"passenger_run_duration_seconds",
		metric.WithDescription("Wall time of the run"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &RuntimeMetrics{
		goroutines:   goroutines,
		heapInUse:    heap,
		totalAlloc:   total,
		systemMemory: sys,
		gcCount:      gc,
		runDuration:  duration,
	}, nil
}

// Collect reads the runtime statistics and records them
func (rm *RuntimeMetrics) Collect(ctx context.Context, startTime time.Time) RuntimeStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	stats := RuntimeStats{
		Goroutines:   int64(runtime.NumGoroutine()),
		HeapInUse:    int64(mem.HeapInuse),
		TotalAlloc:   int64(mem.TotalAlloc),
		SystemMemory: int64(mem.Sys),
		GCCount:      mem.NumGC,
		RunDuration:  time.Since(startTime),
	}

	rm.goroutines.Record(ctx, stats.Goroutines)
	rm.heapInUse.Record(ctx, stats.HeapInUse)
	rm.totalAlloc.Record(ctx, stats.TotalAlloc)
	rm.systemMemory.Record(ctx, stats.SystemMemory)
	rm.gcCount.Record(ctx, int64(stats.GCCount))
	rm.runDuration.Record(ctx, stats.RunDuration.Seconds())

	return stats
}

// LogAttrs returns the snapshot as slog key/value pairs
func (s RuntimeStats) LogAttrs() []any {
	return []any{
		"goroutines", s.Goroutines,
		"heap_inuse_mb", float64(s.HeapInUse) / 1024 / 1024,
		"alloc_total_mb", float64(s.TotalAlloc) / 1024 / 1024,
		"gc_cycles", s.GCCount,
		"duration", s.RunDuration,
	}
}
