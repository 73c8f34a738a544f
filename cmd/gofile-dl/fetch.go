package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wsnlndrv/gofile-dl/internal/api"
	"github.com/wsnlndrv/gofile-dl/internal/config"
	"github.com/wsnlndrv/gofile-dl/internal/fetcher"
	"github.com/wsnlndrv/gofile-dl/internal/progress"
	"github.com/wsnlndrv/gofile-dl/internal/resolver"
)

func runFetch(args []string) int {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)

	urlFlag := fs.String("url", "", "Share URL of the form .../d/<id> (required)")
	password := fs.String("password", "", "Share password, if the share is protected")
	dir := fs.String("dir", "", "Base download directory (default: current directory)")
	configPath := fs.String("config", "", "Path to a YAML config file")
	workers := fs.Int("workers", 0, "Number of parallel download workers")
	chunkSize := fs.String("chunk-size", "", "Streaming chunk size (e.g. 16KB)")
	sequential := fs.Bool("sequential", false, "Download one file at a time with a fixed delay")
	delay := fs.Duration("delay", 0, "Inter-task delay for sequential mode")
	userAgent := fs.String("user-agent", "", "Custom User-Agent string")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: gofile-dl fetch [options]

Resolve a share into its file tree, mirror the folders locally and
download every file. Interrupted downloads leave a .part file and are
resumed on the next run; files that already exist are skipped.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	cfg, code := buildConfig(*configPath, config.Config{
		URL:         *urlFlag,
		Password:    *password,
		DownloadDir: *dir,
		UserAgent:   *userAgent,
		Workers:     *workers,
		Sequential:  *sequential,
		Delay:       *delay,
	}, *chunkSize, fs)
	if code != ExitSuccess {
		return code
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\n[gofile-dl] Received interrupt, shutting down...")
		cancel()
	}()

	return fetchShare(ctx, cfg)
}

// buildConfig layers defaults, config file, environment and flags, in
// that order of increasing precedence.
func buildConfig(configPath string, flags config.Config, chunkSize string, fs *flag.FlagSet) (config.Config, int) {
	cfg := config.Default()

	if configPath != "" {
		fileCfg, err := config.LoadFromFile(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return config.Config{}, ExitInvalidArgs
		}
		cfg = fileCfg
	}

	if err := cfg.LoadFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return config.Config{}, ExitInvalidArgs
	}

	if chunkSize != "" {
		size, err := progress.ParseBytes(chunkSize)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid -chunk-size: %v\n", err)
			return config.Config{}, ExitInvalidArgs
		}
		flags.ChunkSize = size
	}
	cfg = cfg.Merge(flags)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fs.Usage()
		return config.Config{}, ExitInvalidArgs
	}

	return cfg, ExitSuccess
}

func fetchShare(ctx context.Context, cfg config.Config) int {
	target, err := api.ParseShareURL(cfg.URL, cfg.Password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	client := api.NewClient(api.Options{UserAgent: cfg.UserAgent})

	cred, err := client.CreateAccount(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitAuthError
	}

	fmt.Fprintf(os.Stderr, "[gofile-dl] Resolving share %s...\n", target.ContentID)
	tasks, err := resolver.Resolve(ctx, client, target, cred, cfg.DownloadDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitResolutionError
	}
	fmt.Fprintf(os.Stderr, "[gofile-dl] %d file(s) to download | Workers: %d\n", len(tasks), cfg.Workers)

	f := fetcher.New(fetcher.Options{
		ChunkSize: cfg.ChunkSize,
		UserAgent: cfg.UserAgent,
		Emitter:   progress.NewConsole(os.Stdout),
	})

	policy := fetcher.PolicyPool
	if cfg.Sequential {
		policy = fetcher.PolicySequential
	}

	start := time.Now()
	outcomes := f.Run(ctx, tasks, cred, fetcher.RunOptions{
		Policy:  policy,
		Workers: cfg.Workers,
		Delay:   cfg.Delay,
	})

	var completed, skipped, failed int
	var bytes int64
	for _, o := range outcomes {
		bytes += o.Bytes
		switch o.Status {
		case fetcher.StatusCompleted:
			completed++
		case fetcher.StatusSkipped:
			skipped++
		case fetcher.StatusFailed:
			failed++
			if o.Err != nil && !errors.Is(o.Err, context.Canceled) {
				fmt.Fprintf(os.Stderr, "[gofile-dl] %s: %v\n", o.Task.Name, o.Err)
			}
		}
	}

	fmt.Fprintf(os.Stderr, "[gofile-dl] Done: %d completed | %d skipped | %d failed | %s in %s\n",
		completed, skipped, failed,
		progress.FormatBytes(bytes),
		progress.FormatDuration(time.Since(start)))

	if failed > 0 {
		fmt.Fprintln(os.Stderr, "[gofile-dl] Run again to resume incomplete downloads")
		return ExitTransferErrors
	}
	return ExitSuccess
}
