// cmd/tools/search-runner/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"package-provider/internal/common/config"
	httpclient "package-provider/internal/common/http"
	"package-provider/internal/common/logger"
	"package-provider/internal/delivery"
	"package-provider/internal/search"
	"package-provider/pkg/imagemap"
)

// search-runner executes one search event and writes every envelope to
// stdout as a JSON line. Logs go to stderr.
func main() {
	eventPath := flag.String("event", "-", "Event file (SNS envelope or bare message), - for stdin")
	configPath := flag.String("config", "", "Config file, defaults to the standard lookup")
	timeout := flag.Duration("timeout", 60*time.Second, "Overall run timeout")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewWithOptions(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: "stderr",
	})
	defer log.Sync()

	raw, err := readEvent(*eventPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read event: %v\n", err)
		os.Exit(1)
	}

	images := imagemap.ImageMap{}
	if cfg.Search.ImageMapPath != "" {
		if images, err = imagemap.Load(cfg.Search.ImageMapPath); err != nil {
			fmt.Fprintf(os.Stderr, "image map: %v\n", err)
			os.Exit(1)
		}
	}

	adapter := logger.NewZapAdapter(log)
	client := search.NewClient(cfg.Search, httpclient.NewClient(config.GetDuration(cfg.Search.RequestTimeout)), adapter)
	coordinator := search.NewCoordinator(client, search.NewResolver(client, nil, adapter), search.NewMapper(images, cfg.Search.ProviderID), adapter, search.CoordinatorOptions{
		MaxConcurrency:  cfg.Search.MaxConcurrency,
		DeliveryTimeout: config.GetDuration(cfg.Output.DeliveryTimeout),
	})
	service := search.NewService(search.NewNormalizer(cfg.Search, adapter), coordinator, nil, adapter)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	summary, err := service.HandleEvent(ctx, "cli", raw, delivery.NewWriterSink(os.Stdout))
	if summary != nil {
		out, _ := json.Marshal(summary)
		fmt.Fprintln(os.Stderr, string(out))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "search failed: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFromFile(path)
}

func readEvent(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
