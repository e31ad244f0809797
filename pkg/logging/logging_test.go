// pkg/logging/logging_test.go

package logging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/appgrab/appgrab/pkg/logging"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want logging.LogLevel
	}{
		{in: "ERROR", want: logging.LevelError},
		{in: "error", want: logging.LevelError},
		{in: "WARN", want: logging.LevelWarn},
		{in: "warning", want: logging.LevelWarn},
		{in: "INFO", want: logging.LevelInfo},
		{in: "DEBUG", want: logging.LevelDebug},
		{in: " debug ", want: logging.LevelDebug},
		{in: "", want: logging.LevelInfo},
		{in: "bogus", want: logging.LevelInfo},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, logging.ParseLevel(tt.in))
		})
	}
}

func TestLogLevelString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ERROR", logging.LevelError.String())
	assert.Equal(t, "WARN", logging.LevelWarn.String())
	assert.Equal(t, "INFO", logging.LevelInfo.String())
	assert.Equal(t, "DEBUG", logging.LevelDebug.String())
}

func TestUninitializedLoggingDoesNotPanic(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		logging.Info("message before init", "key", "value")
		logging.Warn("another one")
	})
}
