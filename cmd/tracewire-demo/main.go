// Command tracewire-demo instruments outbound HTTP calls against a
// target URL and serves the debug endpoint, as a smoke test for a full
// tracewire pipeline.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tracewire/tracewire"
	"github.com/tracewire/tracewire/config"
	"github.com/tracewire/tracewire/logging"
	"github.com/tracewire/tracewire/transport/stdhttp"
)

func main() {
	target := flag.String("target", "https://example.com/", "URL to call")
	interval := flag.Duration("interval", 2*time.Second, "Delay between calls")
	configPath := flag.String("config", "", "Optional YAML config file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.Debug.Enabled = true

	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		logger = logging.NewDefault()
	}
	defer logger.Sync() //nolint:errcheck // stdout sync failure is unactionable

	rt, err := tracewire.New(cfg, logger.Logger)
	if err != nil {
		log.Fatalf("Failed to assemble tracing runtime: %v", err)
	}

	errChan := make(chan error, 1)
	go func() {
		if err := rt.Debug.Run(); err != nil {
			errChan <- err
		}
	}()

	client := &http.Client{
		Transport: stdhttp.NewTransport(rt.Tracer,
			stdhttp.WithLogger(logger.Logger),
		),
	}

	ctx, cancel := context.WithCancel(context.Background())
	go callLoop(ctx, client, *target, *interval, logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info("Shutting down gracefully")
	case err := <-errChan:
		logger.Error("Debug server error", zap.Error(err))
	}

	cancel()
	if err := rt.Close(); err != nil {
		logger.Warn("Shutdown error", zap.Error(err))
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func callLoop(ctx context.Context, client *http.Client, target string, interval time.Duration, logger *logging.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			logger.Error("Bad target URL", zap.Error(err))
			return
		}

		resp, err := client.Do(req)
		if err != nil {
			logger.Warn("Call failed", zap.Error(err))
			continue
		}
		resp.Body.Close()
		logger.Info("Call completed", zap.String("status", resp.Status))
	}
}
