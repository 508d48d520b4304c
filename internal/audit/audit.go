// Package audit records report downloads. Entries go to the structured log
// under the export_download event.
package audit

import (
	"context"
	"log/slog"
)

type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger}
}

type Entry struct {
	Action     string
	EntityType string
	Filename   string
	RequestID  string
	RemoteAddr string
	Rows       int
	Metadata   map[string]any
}

func (l *Logger) Log(ctx context.Context, entry Entry) {
	if l == nil || l.logger == nil {
		return
	}
	attrs := []any{
		"action", entry.Action,
		"entity", entry.EntityType,
		"filename", entry.Filename,
		"rows", entry.Rows,
		"request_id", entry.RequestID,
		"remote_addr", entry.RemoteAddr,
	}
	if len(entry.Metadata) > 0 {
		group := make([]any, 0, len(entry.Metadata)*2)
		for k, v := range entry.Metadata {
			group = append(group, k, v)
		}
		attrs = append(attrs, slog.Group("metadata", group...))
	}
	l.logger.InfoContext(ctx, "export_download", attrs...)
}
