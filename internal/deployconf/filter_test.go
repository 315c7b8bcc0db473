package deployconf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter_Pass(t *testing.T) {
	tests := []struct {
		name    string
		filter  Filter
		want    Pass
		wantErr error
	}{
		{"full", Filter{}, PassFull, nil},
		{"components", Filter{Components: []string{"NameComponent"}}, PassComponents, nil},
		{"systems", Filter{Systems: []string{"RoomCreateSystem"}}, PassSystems, nil},
		{"both", Filter{Components: []string{"NameComponent"}, Systems: []string{"RoomCreateSystem"}}, 0, ErrExclusiveFilter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.filter.Pass()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApply(t *testing.T) {
	cfg, err := Parse("small.cue", []byte(smallConfig))
	require.NoError(t, err)

	full, pass, err := cfg.Apply(Filter{})
	require.NoError(t, err)
	assert.Equal(t, PassFull, pass)
	assert.Same(t, cfg, full)

	sys, pass, err := cfg.Apply(Filter{Systems: []string{"RoomRemoveSystem", "RoomRemoveSystem"}})
	require.NoError(t, err)
	assert.Equal(t, PassSystems, pass)
	require.Len(t, sys.Systems, 1)
	assert.Equal(t, "system.room.remove", sys.Systems[0].ID)
	assert.Empty(t, sys.Components)

	comps, pass, err := cfg.Apply(Filter{Components: []string{"NameComponent"}})
	require.NoError(t, err)
	assert.Equal(t, PassComponents, pass)
	assert.Len(t, comps.Components, 1)
	assert.Empty(t, comps.Systems)

	_, _, err = cfg.Apply(Filter{Systems: []string{"NopeSystem"}})
	assert.ErrorContains(t, err, "unknown system")

	_, _, err = cfg.Apply(Filter{Components: []string{"NameComponent"}, Systems: []string{"RoomRemoveSystem"}})
	assert.ErrorIs(t, err, ErrExclusiveFilter)
}

func TestPass_String(t *testing.T) {
	assert.Equal(t, "full", PassFull.String())
	assert.Equal(t, "systems", PassSystems.String())
	assert.Equal(t, "Pass(9)", Pass(9).String())
}
