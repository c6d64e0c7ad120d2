package daemon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameCommand(t *testing.T) {
	tests := []struct {
		name    string
		cmd     Command
		wantErr error
	}{
		{"select emotion", Command{Type: CmdSelectEmotion, ID: "joy"}, nil},
		{"select need", Command{Type: CmdSelectNeed, ID: "safety"}, nil},
		{"select without id", Command{Type: CmdSelectEmotion}, ErrInvalidCommand},
		{"deselect", Command{Type: CmdDeselect}, nil},
		{"tap", Command{Type: CmdTap, X: 10, Y: 20}, nil},
		{"hover", Command{Type: CmdHover, X: 10, Y: 20}, nil},
		{"hover end", Command{Type: CmdHoverEnd}, nil},
		{"resize", Command{Type: CmdResize, Width: 800, Height: 600}, nil},
		{"resize to zero", Command{Type: CmdResize, Width: 0, Height: 600}, ErrInvalidCommand},
		{"locale is not a frame command", Command{Type: CmdLocale, Locale: "es"}, ErrUnknownCommand},
		{"unknown", Command{Type: "teleport"}, ErrUnknownCommand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := FrameCommand(tt.cmd)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, cmd)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, cmd)
		})
	}
}

func TestFrameCommand_Resize(t *testing.T) {
	d, _ := newDaemon(t, testConfig())
	cmd, err := FrameCommand(Command{Type: CmdResize, Width: 640, Height: 480})
	require.NoError(t, err)

	require.True(t, d.Scheduler().Enqueue(cmd))
	f := d.Scheduler().Step()
	assert.Equal(t, 640.0, f.Width)
	assert.Equal(t, 480.0, f.Height)
}
