package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"tuido/internal/api"
	"tuido/internal/cli"
	"tuido/internal/config"
	"tuido/internal/logging"
)

func main() {
	// Root flags (apply to every subcommand)
	plain := flag.Bool("plain", false, "print the list as a static panel instead of opening the TUI")
	group := flag.Bool("group", false, "group -plain output by pending/done")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		cli.PrintHelp()
		os.Exit(2)
	}

	cfg := config.Load()

	log, err := logging.NewClient(cfg.Logger.Level, cfg.Logger.File)
	if err != nil {
		// Logging must never block the tool; run silent instead.
		log = zap.NewNop()
	}

	var token string
	if ti, err := api.LoadToken(); err == nil && ti != nil {
		token = ti.Token
	}

	client, err := api.New(api.Config{
		BaseURL:  cfg.Client.BaseURL,
		Token:    token,
		PageSize: cfg.Client.PageSize,
		Timeout:  cfg.Client.Timeout,
		Logger:   log,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	code := cli.Run(client, log, args, cli.Options{
		Plain: *plain,
		Group: *group,
	})
	_ = log.Sync()
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	os.Exit(code)
}
