package cli

import (
	"bytes"
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name  string
		level log.Level
		emit  func(*log.Logger)
		want  bool
	}{
		{"info at info", log.InfoLevel, func(l *log.Logger) { l.Info("listed installed crates") }, true},
		{"debug at info", log.InfoLevel, func(l *log.Logger) { l.Debug("lookup", "crate", "ripgrep") }, false},
		{"debug at debug", log.DebugLevel, func(l *log.Logger) { l.Debug("lookup", "crate", "ripgrep") }, true},
		{"warn at info", log.InfoLevel, func(l *log.Logger) { l.Warn("lookup failed") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.emit(newLogger(&buf, tt.level))
			assert.Equal(t, tt.want, buf.Len() > 0)
		})
	}
}

func TestNewLoggerTimestamp(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, log.InfoLevel).Info("reinstalling")
	assert.Regexp(t, regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{2} `), buf.String())
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	time.Sleep(10 * time.Millisecond)
	prog.done("Checked 3 crates")

	assert.Regexp(t, `Checked 3 crates \(\d+(\.\d+)?m?s\)`, buf.String())
}

func TestLoggerContext(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	ctx := withLogger(context.Background(), logger)
	assert.Same(t, logger, loggerFromContext(ctx))
	assert.Same(t, log.Default(), loggerFromContext(context.Background()))
}
