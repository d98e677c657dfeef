// Command demo walks through the asynchronous building blocks: timers,
// lazy sequences, bounded concurrency, channels, timeouts and the
// blocking pool, all driven on one shared executor.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/alextanhongpin/await/executor"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML config file")
		dumpConfig = flag.Bool("dump-config", false, "print the effective config and exit")
		debug      = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		logger.Error("config", slog.String("event", "load"), slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *dumpConfig {
		b, err := cfg.Dump()
		if err != nil {
			logger.Error("config", slog.String("event", "dump"), slog.String("error", err.Error()))
			os.Exit(1)
		}
		fmt.Print(string(b))
		return
	}

	reg := prometheus.NewRegistry()
	metrics := executor.NewPrometheusMetricsCollector(reg)
	e := executor.New(
		executor.WithWorkers(cfg.Workers),
		executor.WithLogger(logger),
		executor.WithMetrics(metrics),
	)

	runID := uuid.NewString()
	var tracer trace.Tracer = otel.Tracer("await/demo")
	ctx := context.Background()

	scenarios := []struct {
		name string
		run  scenarioFunc
	}{
		{"timers", scenarioTimers},
		{"collect", scenarioCollect},
		{"pipeline", scenarioPipeline},
		{"channel", scenarioChannel},
		{"timeout", scenarioTimeout},
		{"semaphore", scenarioSemaphore},
		{"fetch", scenarioFetch},
		{"file", scenarioFile},
		{"batch", scenarioBatch},
	}
	for _, s := range scenarios {
		_, span := tracer.Start(ctx, s.name)
		log := logger.With(
			slog.String("run_id", runID),
			slog.String("scenario", s.name),
		)
		log.Info("scenario", slog.String("event", "start"))
		if err := s.run(e, cfg, log); err != nil {
			span.RecordError(err)
			log.Error("scenario", slog.String("event", "error"), slog.String("error", err.Error()))
		}
		span.End()
	}

	if err := e.Close(); err != nil {
		logger.Error("executor", slog.String("event", "close"), slog.String("error", err.Error()))
	}

	mfs, err := reg.Gather()
	if err != nil {
		logger.Error("metrics", slog.String("event", "gather"), slog.String("error", err.Error()))
		os.Exit(1)
	}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			logger.Info("metrics",
				slog.String("name", mf.GetName()),
				slog.Float64("value", metricValue(mf.GetType(), m)),
			)
		}
	}
}

func metricValue(t dto.MetricType, m *dto.Metric) float64 {
	switch t {
	case dto.MetricType_GAUGE:
		return m.GetGauge().GetValue()
	default:
		return m.GetCounter().GetValue()
	}
}
