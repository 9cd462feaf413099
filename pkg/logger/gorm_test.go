package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/logger"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	prev := Log
	Log = slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	t.Cleanup(func() { Log = prev })
	return buf
}

func traceQuery(l *GormLogger, elapsed time.Duration, err error) {
	l.Trace(context.Background(), time.Now().Add(-elapsed), func() (string, int64) {
		return "SELECT * FROM assignments WHERE is_current", 1
	}, err)
}

func TestTraceLogsQueryFailure(t *testing.T) {
	buf := captureLog(t)
	l := NewGormLogger(logger.Error, 0)

	traceQuery(l, time.Millisecond, errors.New("connection reset"))
	assert.Contains(t, buf.String(), "query failed")
	assert.Contains(t, buf.String(), "connection reset")
}

func TestTraceSkipsRecordNotFound(t *testing.T) {
	buf := captureLog(t)
	l := NewGormLogger(logger.Error, 0)

	// A current-assignment miss is routine, not a failure
	traceQuery(l, time.Millisecond, logger.ErrRecordNotFound)
	assert.Empty(t, buf.String())
}

func TestTraceWarnsOnSlowQuery(t *testing.T) {
	buf := captureLog(t)
	l := NewGormLogger(logger.Warn, 10*time.Millisecond)

	traceQuery(l, 50*time.Millisecond, nil)
	assert.Contains(t, buf.String(), "slow query")

	buf.Reset()
	traceQuery(l, time.Millisecond, nil)
	assert.Empty(t, buf.String())
}

func TestTraceSilentLevel(t *testing.T) {
	buf := captureLog(t)
	l := NewGormLogger(logger.Silent, time.Millisecond)

	traceQuery(l, time.Second, errors.New("ignored"))
	assert.Empty(t, buf.String())
}
