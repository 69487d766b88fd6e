package output

import (
	"context"
	"log/slog"

	rhttp "github.com/abdul-hamid-achik/riqwest/packages/http"
)

// SlogLogger forwards records to a slog.Logger at info level, one attribute
// per field.
type SlogLogger struct {
	logger *slog.Logger
}

func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogLogger{logger: logger.With("component", "riqwest")}
}

func (s *SlogLogger) Log(tag string, record rhttp.Fields) {
	attrs := make([]slog.Attr, 0, len(record))
	for _, f := range record {
		attrs = append(attrs, slog.Any(f.Key, f.Value))
	}
	level := slog.LevelInfo
	if _, failed := record.Get("Transfer Error"); failed {
		level = slog.LevelError
	}
	s.logger.LogAttrs(context.Background(), level, tag, attrs...)
}
