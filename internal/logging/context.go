package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized structured logging key for processing-run correlation IDs.
	FieldRunID = "run_id"
	// FieldSport is the standardized structured logging key for sport identifiers.
	FieldSport = "sport"
	// FieldSourceFile is the standardized structured logging key for source file paths.
	FieldSourceFile = "source_file"
	// FieldSeasonKey is the standardized structured logging key for season identifiers.
	FieldSeasonKey = "season_key"
	// FieldEpisodeKey is the standardized structured logging key for episode identifiers.
	FieldEpisodeKey = "episode_key"
	// FieldDecisionType is the standardized structured logging key for resolution decision categories.
	FieldDecisionType = "decision_type"
)

type contextKey int

const (
	runIDKey contextKey = iota
	sportKey
	sourceFileKey
)

// WithRunID attaches a processing-run correlation ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// RunIDFromContext extracts the run correlation ID, if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(runIDKey).(string)
	return id, ok && id != ""
}

// WithSport attaches a sport identifier to the context.
func WithSport(ctx context.Context, sport string) context.Context {
	return context.WithValue(ctx, sportKey, sport)
}

// SportFromContext extracts the sport identifier, if present.
func SportFromContext(ctx context.Context) (string, bool) {
	sport, ok := ctx.Value(sportKey).(string)
	return sport, ok && sport != ""
}

// WithSourceFile attaches the source file path being processed to the context.
func WithSourceFile(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, sourceFileKey, path)
}

// SourceFileFromContext extracts the source file path, if present.
func SourceFileFromContext(ctx context.Context) (string, bool) {
	path, ok := ctx.Value(sourceFileKey).(string)
	return path, ok && path != ""
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if sport, ok := SportFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldSport, sport))
	}
	if path, ok := SourceFileFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldSourceFile, path))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
