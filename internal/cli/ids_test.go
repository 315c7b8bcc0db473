package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	roomCreateID = "0xd9cf7742deb14224286a6dae9f61a9af1de75daba322139ce1c0423424ef54bf"
	goalOneID    = "0x3aae57ca13cf6f026b9eac8e97f9b891b59fb198c3f15f95a3a2460ffda3b40c"
)

func TestIDs_Text(t *testing.T) {
	out, _, err := execute(t, NewIDsCommand(&RootOptions{Format: "text"}), "system.room.create", "--goal", "1")
	require.NoError(t, err)
	assert.Equal(t, roomCreateID+"  system.room.create\n"+goalOneID+"  goal 1\n", out)
}

func TestIDs_JSON(t *testing.T) {
	out, _, err := execute(t, NewIDsCommand(&RootOptions{Format: "json"}), "system.room.create", "--goal", "1")
	require.NoError(t, err)

	entries := decodeOK[[]IDEntry](t, out)
	assert.Equal(t, []IDEntry{
		{Kind: "system", Name: "system.room.create", ID: roomCreateID},
		{Kind: "goal", Name: "1", ID: goalOneID},
	}, entries)
}

func TestIDs_ListsKnownSystems(t *testing.T) {
	out, _, err := execute(t, NewIDsCommand(&RootOptions{Format: "json"}))
	require.NoError(t, err)

	entries := decodeOK[[]IDEntry](t, out)
	require.NotEmpty(t, entries)
	seen := make(map[string]bool)
	for _, e := range entries {
		assert.Equal(t, "system", e.Kind)
		assert.False(t, seen[e.Name], "duplicate %s", e.Name)
		seen[e.Name] = true
	}
	assert.True(t, seen["system.room.create"])
}

func TestIDs_GoalOutOfRange(t *testing.T) {
	out, _, err := execute(t, NewIDsCommand(&RootOptions{Format: "json"}), "--goal", "4294967296")
	require.Error(t, err)
	assert.Equal(t, ErrCodeInvalidArgs, decodeError(t, out).Code)
}

func TestIDs_ComponentNames(t *testing.T) {
	out, _, err := execute(t, NewIDsCommand(&RootOptions{Format: "json"}), "component.index.room")
	require.NoError(t, err)
	assert.Equal(t, []IDEntry{{
		Kind: "component",
		Name: "component.index.room",
		ID:   "0x3be9611062b8582cf4b9a4eafe577dbde7dcd7779a1efb46d73e212026c4b0cc",
	}}, decodeOK[[]IDEntry](t, out))
}

func TestIDs_Resolve(t *testing.T) {
	out, _, err := execute(t, NewIDsCommand(&RootOptions{Format: "text"}), "--resolve", strings.ToUpper(roomCreateID[2:]))
	require.NoError(t, err)
	assert.Equal(t, roomCreateID+"  system.room.create\n", out)

	out, _, err = execute(t, NewIDsCommand(&RootOptions{Format: "json"}),
		"component.index.room", "--resolve", "0x3be9611062b8582cf4b9a4eafe577dbde7dcd7779a1efb46d73e212026c4b0cc")
	require.NoError(t, err)
	entries := decodeOK[[]IDEntry](t, out)
	require.Len(t, entries, 2)
	assert.Equal(t, entries[0], entries[1])
}

func TestIDs_ResolveErrors(t *testing.T) {
	tests := []struct {
		name string
		hex  string
		code string
	}{
		{"not hex", "0xzz", ErrCodeInvalidArgs},
		{"empty", "0x", ErrCodeInvalidArgs},
		{"unknown", goalOneID, ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, NewIDsCommand(&RootOptions{Format: "json"}), "--resolve", tt.hex)
			require.Error(t, err)
			assert.Equal(t, tt.code, decodeError(t, out).Code)
		})
	}
}
