package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/echoadmin/internal/core/domain"
)

func TestParsePoint(t *testing.T) {
	p, err := parsePoint("37.5, 127.0")
	require.NoError(t, err)
	assert.Equal(t, domain.GeoPoint{Latitude: 37.5, Longitude: 127.0}, p)

	_, err = parsePoint("37.5")
	assert.Error(t, err)
	_, err = parsePoint("north,127")
	assert.Error(t, err)
}

func TestProjectCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{
		"project",
		"--north", "10", "--south", "0", "--west", "0", "--east", "10",
		"--width", "200", "--height", "100",
		"--image-width", "100", "--image-height", "100",
		"5,5", "50,50",
	})
	require.NoError(t, rootCmd.Execute())

	var res struct {
		Rect    domain.ContainerRect     `json:"rect"`
		Markers []domain.ProjectedMarker `json:"markers"`
		Missed  int                      `json:"missed"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, domain.ContainerRect{X: 50, Y: 0, Width: 100, Height: 100}, res.Rect)
	require.Len(t, res.Markers, 1)
	assert.Equal(t, domain.ProjectedPoint{Top: 50, Left: 100}, res.Markers[0].Position)
	assert.Equal(t, 1, res.Missed)
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"night", "port"}, splitTags(" night, ,port "))
	assert.Nil(t, splitTags(""))
}
