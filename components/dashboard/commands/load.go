package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-dashboard-filters/components/dashboard"
)

// LoadDashboardInput names the project to (re)load.
type LoadDashboardInput struct {
	Project string `json:"project"`
}

type dashboardLoader interface {
	Load(ctx context.Context, project string) (dashboard.TabCollection, error)
}

// LoadDashboardCommand fetches manifests and installs the resulting tabs.
type LoadDashboardCommand struct {
	loader    dashboardLoader
	telemetry Telemetry
}

// NewLoadDashboardCommand wires dependencies.
func NewLoadDashboardCommand(loader dashboardLoader, telemetry Telemetry) *LoadDashboardCommand {
	return &LoadDashboardCommand{loader: loader, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[LoadDashboardInput] = (*LoadDashboardCommand)(nil)

// Execute runs the load pipeline. A load overtaken by a newer one is not an
// error for the caller; the newer load owns the outcome.
func (c *LoadDashboardCommand) Execute(ctx context.Context, msg LoadDashboardInput) error {
	if c.loader == nil {
		return errors.New("load command requires orchestrator")
	}
	col, err := c.loader.Load(ctx, msg.Project)
	if errors.Is(err, dashboard.ErrSuperseded) {
		c.telemetry.Record(ctx, "dashboard.command.load_superseded", map[string]any{"project": msg.Project})
		return nil
	}
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.load", map[string]any{
		"project":    msg.Project,
		"generation": col.Generation,
		"tabs":       len(col.Tabs),
	})
	return nil
}
