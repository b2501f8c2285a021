package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

type filterMutator interface {
	Toggle(ctx context.Context, tabID, dimension string, value any) bool
	ClearDimension(ctx context.Context, tabID, dimension string)
	ClearAll(ctx context.Context, tabID string)
}

// ToggleFilterInput flips one value of a dimension within a tab.
type ToggleFilterInput struct {
	TabID     string `json:"tab_id"`
	Dimension string `json:"dimension"`
	Value     any    `json:"value"`
}

// ToggleFilterCommand wraps Coordinator.Toggle.
type ToggleFilterCommand struct {
	coordinator filterMutator
	telemetry   Telemetry
}

// NewToggleFilterCommand builds the command.
func NewToggleFilterCommand(coordinator filterMutator, telemetry Telemetry) *ToggleFilterCommand {
	return &ToggleFilterCommand{coordinator: coordinator, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ToggleFilterInput] = (*ToggleFilterCommand)(nil)

// Execute toggles the value. Tabs that are not installed yet keep the toggle
// until the next load prunes it.
func (c *ToggleFilterCommand) Execute(ctx context.Context, msg ToggleFilterInput) error {
	if c.coordinator == nil {
		return errors.New("toggle command requires coordinator")
	}
	if msg.TabID == "" || msg.Dimension == "" {
		return errors.New("toggle command requires tab id and dimension")
	}
	if msg.Value == nil {
		return errors.New("toggle command requires a value")
	}
	selected := c.coordinator.Toggle(ctx, msg.TabID, msg.Dimension, msg.Value)
	c.telemetry.Record(ctx, "dashboard.command.toggle", map[string]any{
		"tab_id":    msg.TabID,
		"dimension": msg.Dimension,
		"selected":  selected,
	})
	return nil
}

// ClearDimensionInput names the dimension to clear.
type ClearDimensionInput struct {
	TabID     string `json:"tab_id"`
	Dimension string `json:"dimension"`
}

// ClearDimensionCommand wraps Coordinator.ClearDimension.
type ClearDimensionCommand struct {
	coordinator filterMutator
	telemetry   Telemetry
}

// NewClearDimensionCommand builds the command.
func NewClearDimensionCommand(coordinator filterMutator, telemetry Telemetry) *ClearDimensionCommand {
	return &ClearDimensionCommand{coordinator: coordinator, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ClearDimensionInput] = (*ClearDimensionCommand)(nil)

// Execute clears the dimension.
func (c *ClearDimensionCommand) Execute(ctx context.Context, msg ClearDimensionInput) error {
	if c.coordinator == nil {
		return errors.New("clear dimension command requires coordinator")
	}
	if msg.TabID == "" || msg.Dimension == "" {
		return errors.New("clear dimension command requires tab id and dimension")
	}
	c.coordinator.ClearDimension(ctx, msg.TabID, msg.Dimension)
	c.telemetry.Record(ctx, "dashboard.command.clear_dimension", map[string]any{
		"tab_id":    msg.TabID,
		"dimension": msg.Dimension,
	})
	return nil
}

// ClearFiltersInput names the tab whose selection is reset.
type ClearFiltersInput struct {
	TabID string `json:"tab_id"`
}

// ClearFiltersCommand wraps Coordinator.ClearAll.
type ClearFiltersCommand struct {
	coordinator filterMutator
	telemetry   Telemetry
}

// NewClearFiltersCommand builds the command.
func NewClearFiltersCommand(coordinator filterMutator, telemetry Telemetry) *ClearFiltersCommand {
	return &ClearFiltersCommand{coordinator: coordinator, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ClearFiltersInput] = (*ClearFiltersCommand)(nil)

// Execute resets the tab's selection.
func (c *ClearFiltersCommand) Execute(ctx context.Context, msg ClearFiltersInput) error {
	if c.coordinator == nil {
		return errors.New("clear filters command requires coordinator")
	}
	if msg.TabID == "" {
		return errors.New("clear filters command requires tab id")
	}
	c.coordinator.ClearAll(ctx, msg.TabID)
	c.telemetry.Record(ctx, "dashboard.command.clear_filters", map[string]any{"tab_id": msg.TabID})
	return nil
}
