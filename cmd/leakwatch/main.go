package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"leakwatch/pkg/analyzer"
	"leakwatch/pkg/collector"
	"leakwatch/pkg/config"
	"leakwatch/pkg/correlation"
	"leakwatch/pkg/errors"
	"leakwatch/pkg/messaging"
	"leakwatch/pkg/metrics"
	"leakwatch/pkg/report"
	"leakwatch/pkg/scoring"
	"leakwatch/pkg/version"
)

var (
	logger = logrus.New() // Using logrus for structured logging
)

type pipeline struct {
	config    *config.Config
	manager   *collector.Manager
	engine    *scoring.Engine
	generator *report.Generator
	publisher *messaging.Publisher
}

func main() {
	interval := flag.Duration("interval", 0, "Re-run the pipeline on this interval (0 runs once and exits)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("leakwatch %s\n", version.Version)
		os.Exit(0)
	}

	// Set up logger
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)
	logger.SetLevel(logrus.InfoLevel)

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	logger.SetLevel(cfg.LogLevel)

	metrics.Init(logger)

	an := analyzer.New(logger, nil)
	engine := scoring.NewEngine(logger, cfg.Scoring)
	correlator := correlation.NewAnalyzer(logger)
	cache := report.NewCache(logger, cfg.CacheMaxSize, cfg.CacheRetention)
	generator := report.NewGenerator(logger, engine, correlator, cache, cfg.TopThreatLimit)
	manager := collector.NewManager(logger, an, collector.SampleSources()...)

	p := &pipeline{
		config:    cfg,
		manager:   manager,
		engine:    engine,
		generator: generator,
	}

	if cfg.AMQPUrl != "" {
		p.publisher = messaging.NewPublisher(logger, messaging.PublisherConfig{
			URL:       cfg.AMQPUrl,
			QueueName: cfg.AMQPQueueName,
		})
		if err := p.publisher.Connect(); err != nil {
			color.Red("Failed to connect to AMQP server: %v", err)
			logger.WithError(err).Warn("Report publishing disabled")
			p.publisher = nil
		} else {
			color.Green("Connected to AMQP server, publishing reports to %s", cfg.AMQPQueueName)
			defer p.publisher.Close()
		}
	}

	if cfg.HTTPPort > 0 {
		go serveHTTP(cfg.HTTPPort, cache)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.WithField("signal", sig.String()).Info("Shutdown signal received")
		cancel()
	}()

	logger.WithFields(logrus.Fields{
		"version":   version.Version,
		"timeframe": cfg.Timeframe,
	}).Info("Starting leakwatch pipeline")

	p.run(ctx)

	if *interval <= 0 {
		return
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("Pipeline stopped")
			return
		case <-ticker.C:
			cache.EvictExpired()
			metrics.ReportCacheSize.Set(float64(cache.Size()))
			p.run(ctx)
		}
	}
}

// run executes one collect-analyze-score-report cycle.
func (p *pipeline) run(ctx context.Context) {
	batch := p.manager.Collect(ctx)
	for _, status := range batch.Statuses {
		if status.Error != "" {
			metrics.SourceErrors.WithLabelValues(status.Source).Inc()
			continue
		}
		metrics.SourceItems.WithLabelValues(status.Source).Add(float64(status.Items))
	}
	metrics.ItemsAnalyzed.Add(float64(len(batch.Items)))

	threats := p.manager.BuildThreats(batch.Items)

	for _, st := range p.engine.ScoreBatch(threats) {
		metrics.ThreatScores.Observe(float64(st.Score))
	}
	metrics.ThreatsScored.Add(float64(len(threats)))

	rep := p.generator.Generate(threats, p.config.Timeframe)
	metrics.ReportsGenerated.Inc()
	metrics.ReportCacheSize.Set(float64(p.generator.Cache().Size()))

	if p.publisher != nil && p.publisher.IsConnected() {
		if err := p.publisher.PublishReport(rep); err != nil {
			logger.WithError(err).Error("Failed to publish report")
		}
	}

	printSummary(rep, batch)
}

// printSummary writes the operator-facing run summary to the console.
func printSummary(rep *report.Report, batch collector.Batch) {
	verdictColor := color.New(color.FgGreen)
	switch rep.RiskAssessment.OverallRisk {
	case scoring.VerdictCritical:
		verdictColor = color.New(color.FgRed, color.Bold)
	case scoring.VerdictHigh:
		verdictColor = color.New(color.FgRed)
	case scoring.VerdictMedium:
		verdictColor = color.New(color.FgYellow)
	}

	fmt.Printf("report %s (%s)\n", rep.ReportID, rep.Timeframe)
	fmt.Printf("threats: %d  platforms: %d  avg score: %.1f  max: %d\n",
		rep.Summary.TotalThreats,
		rep.Summary.DistinctPlatforms,
		rep.Summary.AverageScore,
		rep.RiskAssessment.MaxScore)
	verdictColor.Printf("overall risk: %s\n", rep.RiskAssessment.OverallRisk)

	for _, status := range batch.Failed() {
		color.Yellow("source %s failed: %s", status.Source, status.Error)
	}
	if len(rep.RiskAssessment.Correlations) > 0 {
		descriptions := make([]string, 0, len(rep.RiskAssessment.Correlations))
		for _, c := range rep.RiskAssessment.Correlations {
			descriptions = append(descriptions, c.Description)
		}
		fmt.Printf("correlations: %s\n", strings.Join(descriptions, "; "))
	}
}

// serveHTTP exposes the metrics registry and cached report retrieval.
func serveHTTP(port int, cache *report.Cache) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/api/reports/", func(w http.ResponseWriter, r *http.Request) {
		reportID := strings.TrimPrefix(r.URL.Path, "/api/reports/")
		rep, err := cache.Get(reportID)
		if err != nil {
			if errors.IsErrorType(err, errors.ErrReportNotFound) {
				metrics.ReportCacheMiss.Inc()
				http.Error(w, "report not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		metrics.ReportCacheHits.Inc()
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(rep); err != nil {
			logger.WithError(err).Error("Failed to encode report response")
		}
	})

	addr := fmt.Sprintf(":%d", port)
	logger.WithField("addr", addr).Info("HTTP server listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.WithError(err).Error("HTTP server stopped")
	}
}
