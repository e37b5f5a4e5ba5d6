package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/core/domain"
)

func TestScheduleCmd_Use(t *testing.T) {
	assert.Equal(t, "schedule [file]", scheduleCmd.Use)
}

func TestScheduleCmd_RenderOrder(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "First page visible",
			args: []string{"--first", "1", "--last", "1"},
			want: "Render order: 1, 2, 3",
		},
		{
			name: "After before before",
			args: []string{"--first", "2", "--last", "2"},
			want: "Render order: 2, 3, 4, 1",
		},
		{
			name: "Scrolling up renders visible pages bottom first",
			args: []string{"--first", "2", "--last", "3", "--direction", "up"},
			want: "Render order: 3, 2, 4, 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanup := setupTestServices()
			defer cleanup()

			out, err := execute(t, append([]string{"schedule", testDocPath}, tt.args...)...)

			require.NoError(t, err)
			assert.Contains(t, out, tt.want+"\n")
		})
	}
}

func TestScheduleCmd_InvalidRange(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "schedule", testDocPath, "--first", "3", "--last", "9")

	assert.ErrorIs(t, err, domain.ErrPageOutOfRange)
}

func TestScheduleCmd_InvalidDirection(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "schedule", testDocPath, "--direction", "sideways")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestJoinInts(t *testing.T) {
	assert.Equal(t, "(none)", joinInts(nil))
	assert.Equal(t, "4", joinInts([]int{4}))
	assert.Equal(t, "2, 3, 1", joinInts([]int{2, 3, 1}))
}
