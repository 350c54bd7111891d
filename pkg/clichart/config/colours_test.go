package config

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/clichart/pkg/clichart/internalerr"
)

func TestParseColourOverrides(t *testing.T) {
	overrides, err := ParseColourOverrides("0:red, 2:00ff80,5:DarkGrey")
	require.NoError(t, err)
	assert.Equal(t, []ColourOverride{
		{Index: 0, Colour: color.RGBA{255, 0, 0, 255}},
		{Index: 2, Colour: color.RGBA{0, 255, 128, 255}},
		{Index: 5, Colour: color.RGBA{64, 64, 64, 255}},
	}, overrides)
}

func TestParseColourOverridesErrors(t *testing.T) {
	tests := []struct {
		in  string
		msg string
	}{
		{"0", "Invalid colour override: [0]"},
		{"0:red:blue", "Invalid colour override: [0:red:blue]"},
		{"x:red", "Invalid index in colour override: [x:red]"},
		{"1:purple", "Invalid colour: [purple]"},
		{"1:12345g", "Invalid colour: [12345g]"},
		{"1:red,", "Invalid colour override: []"},
		{"", "Command requires an argument"},
	}
	for _, tt := range tests {
		_, err := ParseColourOverrides(tt.in)
		require.Error(t, err, tt.in)
		assert.EqualError(t, err, tt.msg)
		assert.ErrorIs(t, err, internalerr.ErrInvalidOptions)
	}
}

func TestNamedColourSpellings(t *testing.T) {
	for _, pair := range [][2]string{{"gray", "grey"}, {"darkgray", "darkgrey"}, {"lightgray", "lightgrey"}} {
		us, ok := NamedColour(pair[0])
		require.True(t, ok)
		uk, ok := NamedColour(pair[1])
		require.True(t, ok)
		assert.Equal(t, us, uk)
	}
	_, ok := NamedColour("chartreuse")
	assert.False(t, ok)
}

func TestColourOverrideYAML(t *testing.T) {
	in := []ColourOverride{{Index: 1, Colour: color.RGBA{255, 200, 0, 255}}}

	raw, err := yaml.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "1:ffc800")

	var out []ColourOverride
	require.NoError(t, yaml.Unmarshal(raw, &out))
	assert.Equal(t, in, out)

	require.NoError(t, yaml.Unmarshal([]byte("- 1:orange\n- '3:000000'\n"), &out))
	assert.Equal(t, []ColourOverride{
		{Index: 1, Colour: color.RGBA{255, 200, 0, 255}},
		{Index: 3, Colour: color.RGBA{0, 0, 0, 255}},
	}, out)

	assert.Error(t, yaml.Unmarshal([]byte("- 1-red\n"), &out))
}
