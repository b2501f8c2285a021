package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// SelectTabInput identifies the tab to activate.
type SelectTabInput struct {
	TabID string `json:"tab_id"`
}

type tabSelector interface {
	SelectTab(ctx context.Context, tabID string) error
}

// SelectTabCommand switches the active tab through the coordinator.
type SelectTabCommand struct {
	coordinator tabSelector
	telemetry   Telemetry
}

// NewSelectTabCommand creates a command instance.
func NewSelectTabCommand(coordinator tabSelector, telemetry Telemetry) *SelectTabCommand {
	return &SelectTabCommand{coordinator: coordinator, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SelectTabInput] = (*SelectTabCommand)(nil)

// Execute activates the tab. Unknown tabs surface dashboard.ErrUnknownTab.
func (c *SelectTabCommand) Execute(ctx context.Context, msg SelectTabInput) error {
	if c.coordinator == nil {
		return errors.New("select tab command requires coordinator")
	}
	if msg.TabID == "" {
		return errors.New("select tab command requires tab id")
	}
	if err := c.coordinator.SelectTab(ctx, msg.TabID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.select_tab", map[string]any{"tab_id": msg.TabID})
	return nil
}
