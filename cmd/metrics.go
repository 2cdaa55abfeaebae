package main

import (
	"context"
	"runtime"
	"time"

	service "github.com/okian/rehabsim/internal/app"
	"github.com/okian/rehabsim/pkg/metrics"
)

// startSystemMetricsUpdater refreshes process gauges until ctx ends.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metrics.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater refreshes the queue gauges until ctx ends.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(metrics.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}

func updateServiceMetrics(svc *service.Service) {
	stats := svc.GetStats()
	if n, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(n)
	}
	if n, ok := stats["queueSize"].(int); ok {
		metrics.UpdateQueueCapacity(n)
	}
}
