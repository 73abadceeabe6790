// Package main implements the iconshard command: an icon API server that
// keeps large icon sets in chunked, disk-backed memory storage, plus a few
// helper subcommands.
//
// Commands:
//
//	iconshard serve                    run the HTTP API
//	iconshard chunks <file>            show how an icon set would be split
//	iconshard get <prefix> <names...>  query a running server
//
// Every flag can also be set through an ICONSHARD_* environment variable or
// a .env file in the working directory.
//
// Example usage:
//
//	ICONSHARD_ICONS_DIR=./icons iconshard serve --bind :3000
//	curl 'localhost:3000/mdi.json?icons=home,account'
//	curl localhost:3000/mdi/home.svg
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	cli "github.com/urfave/cli/v2"
	_ "go.uber.org/automaxprocs"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(-1)
	}
}

func run(args []string) error {
	return newApp(os.Stdout).Run(args)
}

func newApp(out io.Writer) *cli.App {
	app := &cli.App{
		Name:    "iconshard",
		Usage:   "chunked icon set server",
		Version: versioninfo.Short(),
		Writer:  out,
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "log verbosity level (eg: warn, info, debug)",
			EnvVars: []string{"ICONSHARD_LOG_LEVEL", "GO_LOG_LEVEL", "LOG_LEVEL"},
		},
		&cli.StringFlag{
			Name:    "log-format",
			Usage:   "log output format: text or json",
			Value:   "text",
			EnvVars: []string{"ICONSHARD_LOG_FORMAT"},
		},
	}

	app.Commands = []*cli.Command{
		serveCmd,
		chunksCmd,
		getCmd,
	}
	return app
}

func configLogger(cctx *cli.Context, writer io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cctx.String("log-level")) {
	case "error":
		level = slog.LevelError
	case "warn":
		level = slog.LevelWarn
	case "info":
		level = slog.LevelInfo
	case "debug":
		level = slog.LevelDebug
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(cctx.String("log-format")) == "json" {
		handler = slog.NewJSONHandler(writer, opts)
	} else {
		handler = slog.NewTextHandler(writer, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// expandCacheDir replaces the {cache} placeholder in tmpl with base.
func expandCacheDir(tmpl, base string) (string, error) {
	if strings.Contains(tmpl, "{cache}") && base == "" {
		return "", fmt.Errorf("%q needs --cache-dir", tmpl)
	}
	return strings.ReplaceAll(tmpl, "{cache}", base), nil
}
