package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/wsnlndrv/gofile-dl/internal/api"
	"github.com/wsnlndrv/gofile-dl/internal/config"
	"github.com/wsnlndrv/gofile-dl/internal/resolver"
)

func runResolve(args []string) int {
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)

	urlFlag := fs.String("url", "", "Share URL of the form .../d/<id> (required)")
	password := fs.String("password", "", "Share password, if the share is protected")
	dir := fs.String("dir", "", "Base download directory (default: current directory)")
	configPath := fs.String("config", "", "Path to a YAML config file")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: gofile-dl resolve [options]

Resolve a share into its file tree and list the download tasks without
downloading anything. The local folder structure is mirrored so a later
fetch starts from the same layout.

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
	}, "", fs)
	if code != ExitSuccess {
		return code
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

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

	tasks, err := resolver.Resolve(ctx, client, target, cred, cfg.DownloadDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitResolutionError
	}

	for _, task := range tasks {
		fmt.Printf("%s\t%s\n", task.LocalPath, task.Link)
	}
	fmt.Fprintf(os.Stderr, "[gofile-dl] %d file(s) in share %s\n", len(tasks), target.ContentID)

	return ExitSuccess
}
