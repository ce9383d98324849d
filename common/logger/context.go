package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// Fields flow through context enrichment so that session and staging identifiers are
// attached to every log line without being passed explicitly.
type LogFields struct {
	RequestID  *string // HTTP request ID
	SessionID  *string // Listing session ID
	RunID      *int64  // Staging run ID
	PhotoIndex *int    // Index of the photo inside the submitted snapshot
	Operation  *string // Gateway operation (e.g., "generate_full_listing")
	Component  string  // Component name (e.g., "studio.staging.orchestrator")
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, new LogFields) LogFields {
	result := existing

	if new.RequestID != nil {
		result.RequestID = new.RequestID
	}
	if new.SessionID != nil {
		result.SessionID = new.SessionID
	}
	if new.RunID != nil {
		result.RunID = new.RunID
	}
	if new.PhotoIndex != nil {
		result.PhotoIndex = new.PhotoIndex
	}
	if new.Operation != nil {
		result.Operation = new.Operation
	}
	if new.Component != "" {
		result.Component = new.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{RunID: logger.Ptr(id)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen bytes, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
