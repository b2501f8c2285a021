package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

type Globals struct {
	Config       string `short:"c" type:"path" help:"Path to a dashctl YAML config file."`
	BaseURL      string `name:"base-url" help:"Manifest server base URL."`
	ManifestsDir string `name:"manifests-dir" type:"path" help:"Read manifests from a local directory instead of HTTP."`
	LogLevel     string `name:"log-level" help:"Log level (debug, info, warn, error)."`
}

type cli struct {
	Globals

	Inspect  inspectCmd  `cmd:"" help:"Load a project and print its tabs and filter dimensions."`
	Visible  visibleCmd  `cmd:"" help:"Print the records a tab shows under the given filters."`
	Snapshot snapshotCmd `cmd:"" help:"Write the full dashboard snapshot as YAML."`
	Serve    serveCmd    `cmd:"" help:"Serve the dashboard API and event stream."`
	Kind     kindCmd     `cmd:"" help:"Add a widget kind to a kind manifest."`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var root cli
	kctx := kong.Parse(&root,
		kong.Name("dashctl"),
		kong.Description("Inspect and serve tabbed, filterable dashboards built from project manifests."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.Bind(&root.Globals),
	)
	err := kctx.Run()
	kctx.FatalIfErrorf(err)
}
