package logging

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, GetLevel("DEBUG"))
	assert.Equal(t, logrus.WarnLevel, GetLevel("warn"))
	assert.Equal(t, logrus.ErrorLevel, GetLevel("error"))
	assert.Equal(t, logrus.InfoLevel, GetLevel(""))
	assert.Equal(t, logrus.TraceLevel, GetLevel("nonsense"))
}

func TestSetup_FileAndConsole(t *testing.T) {
	t.Cleanup(func() {
		logrus.SetOutput(os.Stderr)
		logrus.SetLevel(logrus.InfoLevel)
	})

	console := &bytes.Buffer{}
	logFile := filepath.Join(t.TempDir(), "logs", "gymlog")
	require.NoError(t, Setup(LoggerSetupParams{
		LogFileName: logFile,
		LogToStdout: true,
		LogLevel:    "debug",
		Console:     console,
	}))
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())

	logrus.Debugln("day 2024-03-01 opened")
	assert.Contains(t, console.String(), "day 2024-03-01 opened")

	written, err := os.ReadFile(logFile + ".log")
	require.NoError(t, err)
	assert.Contains(t, string(written), "day 2024-03-01 opened")
}

func TestSetup_LogsDirIsAFile(t *testing.T) {
	t.Cleanup(func() { logrus.SetOutput(os.Stderr) })

	blocker := filepath.Join(t.TempDir(), "logs")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))
	err := Setup(LoggerSetupParams{LogFileName: filepath.Join(blocker, "gymlog.log")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a directory")
}

func TestSentryEvent(t *testing.T) {
	entry := &logrus.Entry{
		Message: "open day failed",
		Level:   logrus.ErrorLevel,
		Time:    time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Data: logrus.Fields{
			"date":          "2024-03-01",
			logrus.ErrorKey: errors.New("status 500"),
		},
	}

	event := SentryEvent(entry)
	assert.Equal(t, "open day failed", event.Message)
	assert.Equal(t, sentry.LevelError, event.Level)
	assert.Equal(t, "2024-03-01", event.Extra["date"])
	require.Len(t, event.Exception, 1)
	assert.Equal(t, "status 500", event.Exception[0].Value)
}

func TestSentryHook_Fire(t *testing.T) {
	var captured []*sentry.Event
	flushed := 0
	id := sentry.EventID("abc")
	hook := &SentryHook{
		levels: []logrus.Level{logrus.ErrorLevel, logrus.FatalLevel},
		capture: func(e *sentry.Event) *sentry.EventID {
			captured = append(captured, e)
			return &id
		},
		flush: func(time.Duration) bool {
			flushed++
			return true
		},
	}
	assert.Equal(t, []logrus.Level{logrus.ErrorLevel, logrus.FatalLevel}, hook.Levels())

	require.NoError(t, hook.Fire(&logrus.Entry{Message: "e", Level: logrus.ErrorLevel, Data: logrus.Fields{}}))
	assert.Zero(t, flushed)
	require.NoError(t, hook.Fire(&logrus.Entry{Message: "f", Level: logrus.FatalLevel, Data: logrus.Fields{}}))
	assert.Equal(t, 1, flushed)
	assert.Len(t, captured, 2)

	hook.capture = func(*sentry.Event) *sentry.EventID { return nil }
	assert.Error(t, hook.Fire(&logrus.Entry{Message: "x", Level: logrus.ErrorLevel, Data: logrus.Fields{}}))
}
