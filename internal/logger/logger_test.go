package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriterLoggerFormatsEntries(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf)

	l.Warn("discount", "voucher rejected")

	line := buf.String()
	assert.Contains(t, line, "WARN")
	assert.Contains(t, line, "[DISCOUNT  ]")
	assert.Contains(t, line, "voucher rejected")
	assert.Contains(t, line, "logger_test.go:")
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestComponentHelpers(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf)

	l.LogTransaction("ACCEPT", "tx-1", "accepted by organizer")
	l.LogSweep("event=e-1", 2, 1, 1)
	l.LogSecurity("FORBIDDEN", "role mismatch")

	out := buf.String()
	assert.Contains(t, out, "[TRANSACTION]")
	assert.Contains(t, out, "[ACCEPT] tx-1 - accepted by organizer")
	assert.Contains(t, out, "expired=2 cancelled=1 freed_seats=1")
	assert.Contains(t, out, "[SECURITY  ]")
}

func TestNopLoggerDiscards(t *testing.T) {
	l := Nop()
	assert.NotPanics(t, func() {
		l.Info("APP", "nothing to see")
		l.Close()
	})
}
