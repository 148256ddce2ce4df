// # cmd/uanodeset/main.go
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"uanodeset/internal/config"
	"uanodeset/internal/observability"
)

var (
	configPath = flag.String("config", "./uanodeset.toml", "Path to config file")
	once       = flag.Bool("once", false, "Run single merge and exit")
	watch      = flag.Bool("watch", false, "Keep running and rebuild on input changes")
	exportPath = flag.String("export", "", "Write the merged NodeSet2 XML to this path (overrides config)")
	validate   = flag.Bool("validate", false, "Check variable values against their data types and exit")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("uanodeset v%s\n", VERSION)
		os.Exit(0)
	}

	// Setup logging
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		if *configPath == "./uanodeset.toml" {
			cfg, err = config.Load("./uanodeset.example.toml")
		}
		if err != nil {
			slog.Error("failed to load config", "error", err)
			os.Exit(1)
		}
	}

	// Positional arguments replace the configured inputs.
	if flag.NArg() > 0 {
		cfg.Inputs = flag.Args()
	}
	if *exportPath != "" {
		cfg.Output.XML = *exportPath
	}

	app, err := NewApp(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		os.Exit(1)
	}

	if err := app.Rebuild(); err != nil {
		slog.Error("initial merge failed", "error", err)
		os.Exit(1)
	}

	if *validate {
		errs := app.Graph.ValidateValues()
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e.Error())
		}
		if len(errs) > 0 {
			os.Exit(1)
		}
		fmt.Println("all values match their declared data types")
		os.Exit(0)
	}

	if err := app.GenerateOutputs(); err != nil {
		slog.Error("failed to generate outputs", "error", err)
		os.Exit(1)
	}

	fmt.Print(app.Summary())

	if *once || !*watch {
		os.Exit(0)
	}

	// Watch mode
	if cfg.Metrics.Addr != "" {
		srv := observability.NewServer(cfg.Metrics.Addr, app.HealthCheck)
		if err := srv.Start(); err != nil {
			slog.Error("failed to start observability server", "error", err)
			os.Exit(1)
		}
	}
	if err := app.StartWatcher(); err != nil {
		slog.Error("failed to start watcher", "error", err)
		os.Exit(1)
	}

	// Block forever
	select {}
}
