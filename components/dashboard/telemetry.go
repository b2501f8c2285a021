package dashboard

import (
	"context"
	"slices"

	"go.uber.org/zap"
)

// Telemetry records dashboard events for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

// LoggerTelemetry writes telemetry events as structured zap log entries.
type LoggerTelemetry struct {
	logger *zap.Logger
}

// NewLoggerTelemetry wraps a zap logger. A nil logger discards events.
func NewLoggerTelemetry(logger *zap.Logger) *LoggerTelemetry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggerTelemetry{logger: logger}
}

// Record logs the event at debug level, or warn when the payload carries an error.
func (t *LoggerTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	fields := make([]zap.Field, 0, len(keys))
	for _, key := range keys {
		fields = append(fields, zap.Any(key, payload[key]))
	}
	if _, failed := payload["error"]; failed {
		t.logger.Warn(event, fields...)
		return
	}
	t.logger.Debug(event, fields...)
}
