package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"webscan/pkg/config"
	"webscan/pkg/logging"
	"webscan/pkg/models"
	"webscan/pkg/monitor"
	"webscan/pkg/probe"
	"webscan/pkg/report"
	"webscan/pkg/scanner"
	"webscan/pkg/store"
	"webscan/pkg/utils"
)

type options struct {
	configPath string
	proxy      string
	ranges     string
	ports      string
	threads    int
	timeout    time.Duration
	output     string
	database   string
	schedule   string
	verifyTLS  bool
	debug      bool
	history    int
	show       int64
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts := options{}
	fs := newFlagSet(&opts)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := buildConfig(fs, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	if opts.history > 0 || opts.show > 0 {
		return browseHistory(cfg, opts, logger)
	}

	fmt.Println("🔍 Web Service Title Scanner")
	fmt.Println("-===========================-")

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", zap.Error(err))
		return 1
	}

	units, err := scanner.Targets(cfg.Ranges, cfg.Ports)
	if err != nil {
		logger.Error("Invalid configuration", zap.Error(err))
		return 1
	}

	exec, err := probe.NewExecutor(cfg)
	if err != nil {
		logger.Error("Failed to set up probes", zap.Error(err))
		return 1
	}

	var history *store.Store
	if cfg.Database != "" {
		history, err = store.Open(cfg.Database)
		if err != nil {
			logger.Error("Failed to open database", zap.String("path", cfg.Database), zap.Error(err))
			return 1
		}
		defer history.Close()
	}

	job := &scanJob{
		cfg:     cfg,
		units:   units,
		scanner: scanner.New(exec, cfg.Concurrency, logger),
		history: history,
		logger:  logger,
	}

	if cfg.Schedule == "" {
		if err := job.Run(context.Background()); err != nil {
			return 1
		}
		return 0
	}

	schedule, err := config.CronParser.Parse(cfg.Schedule)
	if err != nil {
		logger.Error("Invalid schedule", zap.Error(err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("\n👀 Repeating scan on schedule %q (Ctrl+C to stop)\n", cfg.Schedule)
	monitor.Watch(ctx, schedule, func(ctx context.Context) {
		if err := job.Run(ctx); err != nil {
			logger.Error("Scan finished with errors", zap.Error(err))
		}
	}, logger)

	return 0
}

// newFlagSet binds the command line flags to opts
func newFlagSet(opts *options) *flag.FlagSet {
	fs := flag.NewFlagSet("webscan", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "", "YAML config file")
	fs.StringVar(&opts.proxy, "proxy", "", "Proxy URL, e.g. socks5h://127.0.0.1:1080")
	fs.StringVar(&opts.ranges, "ranges", "", "Comma-separated CIDR ranges")
	fs.StringVar(&opts.ports, "ports", "", "Ports to probe, e.g. 80,443,8000-8010")
	fs.IntVar(&opts.threads, "c", config.DefaultConcurrency, "Max concurrent probes")
	fs.DurationVar(&opts.timeout, "timeout", 5*time.Second, "Timeout per request")
	fs.StringVar(&opts.output, "o", "", "Results file")
	fs.StringVar(&opts.database, "db", "", "SQLite database for scan history")
	fs.StringVar(&opts.schedule, "schedule", "", "Cron expression to repeat the scan")
	fs.BoolVar(&opts.verifyTLS, "verify-tls", false, "Verify TLS certificates")
	fs.BoolVar(&opts.debug, "debug", false, "Debug logging")
	fs.IntVar(&opts.history, "history", 0, "List the last N recorded scans and exit (needs -db)")
	fs.Int64Var(&opts.show, "show", 0, "Print the results of a recorded scan and exit (needs -db)")
	return fs
}

// buildConfig starts from the config file (or the defaults) and applies any
// flags that were set explicitly.
func buildConfig(fs *flag.FlagSet, opts options) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	var err error
	fs.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "proxy":
			cfg.Proxy = opts.proxy
		case "ranges":
			cfg.Ranges = splitList(opts.ranges)
		case "ports":
			var ports []int
			ports, err = utils.ParsePortRange(opts.ports)
			cfg.Ports = ports
		case "c":
			cfg.Concurrency = opts.threads
		case "timeout":
			cfg.Timeout = opts.timeout
		case "o":
			cfg.Output = opts.output
		case "db":
			cfg.Database = opts.database
		case "schedule":
			cfg.Schedule = opts.schedule
		case "verify-tls":
			cfg.VerifyTLS = opts.verifyTLS
		case "debug":
			cfg.Debug = opts.debug
		}
	})
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// browseHistory prints recorded scans from the database
func browseHistory(cfg *config.Config, opts options, logger *zap.Logger) int {
	if cfg.Database == "" {
		err := &models.ConfigurationError{Field: "db", Err: errors.New("-history and -show need a database")}
		logger.Error("Invalid configuration", zap.Error(err))
		return 1
	}

	history, err := store.Open(cfg.Database)
	if err != nil {
		logger.Error("Failed to open database", zap.String("path", cfg.Database), zap.Error(err))
		return 1
	}
	defer history.Close()

	ctx := context.Background()

	if opts.show > 0 {
		results, err := history.Results(ctx, opts.show)
		if err != nil {
			logger.Error("Failed to load scan", zap.Int64("scan", opts.show), zap.Error(err))
			return 1
		}
		report.PrintTable(os.Stdout, results)
		return 0
	}

	scans, err := history.Scans(ctx, opts.history)
	if err != nil {
		logger.Error("Failed to list scans", zap.Error(err))
		return 1
	}
	for _, sc := range scans {
		fmt.Printf("#%-5d %s  %-10v %4d / %d\n",
			sc.ID,
			sc.StartedAt.Local().Format("2006-01-02 15:04:05"),
			sc.FinishedAt.Sub(sc.StartedAt).Round(time.Second),
			sc.Found, sc.Probes)
	}
	return 0
}
