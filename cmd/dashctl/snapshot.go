package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ettle/strcase"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-dashboard-filters/components/dashboard"
)

type snapshotCmd struct {
	Project string   `arg:"" optional:"" help:"Project name (defaults to config project)."`
	Tab     string   `help:"Tab to activate before the snapshot."`
	Filter  []string `short:"f" help:"dimension=value to toggle on the tab (repeatable)."`
	Out     string   `type:"path" help:"Directory to write <project>_snapshot.yaml into; stdout when empty."`
}

func (cmd *snapshotCmd) Run(ctx context.Context, g *Globals) error {
	a, err := newApp(g, nil)
	if err != nil {
		return err
	}
	defer a.close()
	col, err := a.load(ctx, cmd.Project)
	if err != nil {
		return err
	}
	if _, err := a.applyView(ctx, cmd.Tab, cmd.Filter); err != nil {
		return err
	}
	snap, err := dashboard.NewController(a.coordinator).Snapshot(ctx)
	if err != nil {
		return err
	}
	if cmd.Out == "" {
		return writeSnapshot(os.Stdout, snap)
	}
	path := filepath.Join(cmd.Out, snapshotFileName(col.Project))
	if err := os.MkdirAll(cmd.Out, 0o755); err != nil {
		return fmt.Errorf("dashctl: mkdir %s: %w", cmd.Out, err)
	}
	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("dashctl: create snapshot %s: %w", path, err)
	}
	defer file.Close()
	if err := writeSnapshot(file, snap); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Wrote %s\n", path)
	return nil
}

func snapshotFileName(project string) string {
	return strcase.ToSnake(project) + "_snapshot.yaml"
}

func writeSnapshot(w io.Writer, snap dashboard.Snapshot) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()
	if err := encoder.Encode(snap); err != nil {
		return fmt.Errorf("dashctl: write snapshot: %w", err)
	}
	return nil
}
