// pkg/command/command_test.go

package command_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/appgrab/appgrab/pkg/command"
)

func TestResultCombined(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		result command.Result
		want   string
	}{
		{
			name:   "stdout only",
			result: command.Result{Stdout: "hello\n"},
			want:   "hello",
		},
		{
			name:   "stderr only",
			result: command.Result{Stderr: "oops\r\n"},
			want:   "oops",
		},
		{
			name:   "both streams",
			result: command.Result{Stdout: "out\n", Stderr: "err\n"},
			want:   "out\nerr",
		},
		{
			name:   "empty",
			result: command.Result{},
			want:   "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.result.Combined())
		})
	}
}

func TestLookPath(t *testing.T) {
	t.Parallel()

	runner := command.NewRunner()
	assert.False(t, runner.LookPath("definitely-not-a-real-binary-a8f2c"))
}
