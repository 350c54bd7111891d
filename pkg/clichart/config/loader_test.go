package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/clichart/pkg/clichart/data"
	"github.com/cognicore/clichart/pkg/clichart/internalerr"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadOptions(t *testing.T) {
	path := writeProfile(t, `separator: csv
hasheader: true
columnlist: [0, 2, 3]
xtype: value
title: Load average
maxy: 10
colours:
  - 0:red
`)

	opts, err := LoadOptions(path)
	require.NoError(t, err)

	assert.Equal(t, data.SeparatorCSV, opts.Separator)
	assert.True(t, opts.HasHeader)
	assert.Equal(t, []int{0, 2, 3}, opts.Columns)
	assert.Equal(t, XTypeValue, opts.XType)
	assert.Equal(t, "Load average", opts.Title)
	require.NotNil(t, opts.MaxY)
	assert.Equal(t, 10, *opts.MaxY)
	require.Len(t, opts.Colours, 1)

	// keys absent from the profile keep their defaults
	assert.Equal(t, "HH:mm", opts.DateFormat)
	assert.Equal(t, 800, opts.Width)
}

func TestLoadOptionsErrors(t *testing.T) {
	_, err := LoadOptions("/nonexistent/profile.yaml")
	assert.Error(t, err)

	_, err = LoadOptions(writeProfile(t, "width: [1, 2]\n"))
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)

	_, err = LoadOptions(writeProfile(t, "colours: ['1:nope']\n"))
	assert.Error(t, err)
}

func TestSaveOptionsRoundTrip(t *testing.T) {
	opts := Defaults()
	require.NoError(t, set(t, &opts, "columnlist2", "4,5"))
	require.NoError(t, set(t, &opts, "miny", "0"))
	require.NoError(t, set(t, &opts, "colours", "0:pink,1:0a0b0c"))
	require.NoError(t, set(t, &opts, "seriestitles2", "x,y"))
	opts.OutputPath = "chart.json"

	path := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, SaveOptions(path, &opts))

	loaded, err := LoadOptions(path)
	require.NoError(t, err)
	assert.Equal(t, &opts, loaded)
}

func TestLoader(t *testing.T) {
	path := writeProfile(t, "title: From profile\nwidth: 640\n")

	loader := Loader{
		ProfilePath: path,
		Settings: []Setting{
			{Name: "t", Arg: "From setting"},
			{Name: "csv"},
			{Name: "l", Arg: "1,2"},
		},
	}
	opts, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "From setting", opts.Title)
	assert.Equal(t, 640, opts.Width)
	assert.Equal(t, data.SeparatorCSV, opts.Separator)
	assert.Equal(t, 1, opts.XColumn())
	assert.Equal(t, []int{2}, opts.YColumns())
}

func TestLoaderAllEmpty(t *testing.T) {
	var loader Loader
	opts, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), *opts)
}

func TestLoaderErrors(t *testing.T) {
	_, err := (&Loader{ProfilePath: "/nonexistent/profile.yaml"}).Load()
	assert.Error(t, err)

	_, err = (&Loader{Settings: []Setting{{Name: "bogus"}}}).Load()
	assert.EqualError(t, err, "Unrecognised option: bogus")

	_, err = (&Loader{Settings: []Setting{{Name: "l", Arg: "0"}}}).Load()
	assert.ErrorIs(t, err, internalerr.ErrInvalidOptions)
}
