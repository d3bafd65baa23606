package logger

import (
	"go.uber.org/zap/zapcore"
)

type customCore struct {
	zapcore.Core
}

// With adds structured context to the Core.
func (c *customCore) With(fields []zapcore.Field) zapcore.Core {
	return &customCore{c.Core.With(fields)}
}

// Write serializes the Entry and any Fields supplied at the log site and writes them to their
// destination. The pid and application fields are moved to the end of the field list so the
// domain fields lead each entry.
func (c *customCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	var pidField, appField zapcore.Field
	var otherFields []zapcore.Field
	for _, field := range fields {
		if field.Key == "pid" {
			pidField = field
		} else if field.Key == "application" {
			appField = field
		} else {
			otherFields = append(otherFields, field)
		}
	}
	reorderedFields := append(otherFields, pidField, appField)

	return c.Core.Write(entry, reorderedFields)
}

// Check determines whether the supplied Entry should be logged.
func (c *customCore) Check(entry zapcore.Entry, checkedEntry *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	return c.Core.Check(entry, checkedEntry)
}

// Sync flushes buffered logs (if any).
func (c *customCore) Sync() error {
	return c.Core.Sync()
}
