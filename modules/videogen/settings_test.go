package videogen

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSettingsDefaults(t *testing.T) {
	got := ResolveSettings(SettingsInput{})

	assert.Equal(t, Settings{
		Resolution: "720p",
		FPS:        24,
		Quality:    "high",
		Format:     "mp4",
	}, got)
}

func TestResolveSettingsKeepsValidValues(t *testing.T) {
	got := ResolveSettings(SettingsInput{
		Resolution: "1080p",
		FPS:        float64(30), // JSON 디코딩은 숫자를 float64로 준다
		Quality:    "low",
		Format:     "webm",
	})

	assert.Equal(t, Settings{
		Resolution: "1080p",
		FPS:        30,
		Quality:    "low",
		Format:     "webm",
	}, got)
}

func TestResolveSettingsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		in   SettingsInput
	}{
		{"unknown resolution", SettingsInput{Resolution: "4K"}},
		{"unknown quality", SettingsInput{Quality: "ultra"}},
		{"unknown format", SettingsInput{Format: "avi"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveSettings(tt.in)
			assert.Contains(t, []string{"480p", "720p", "1080p"}, got.Resolution)
			assert.Contains(t, []string{"low", "medium", "high"}, got.Quality)
			assert.Contains(t, []string{"mp4", "webm"}, got.Format)
			assert.GreaterOrEqual(t, got.FPS, 15)
			assert.LessOrEqual(t, got.FPS, 60)
		})
	}
}

func TestResolveSettingsFPS(t *testing.T) {
	tests := []struct {
		name string
		fps  interface{}
		want int
	}{
		{"non-numeric string", "abc", 24},
		{"below range", float64(10), 24},
		{"above range", float64(99), 24},
		{"below range string", "10", 24},
		{"valid string", "30", 30},
		{"valid number", float64(60), 60},
		{"lower bound", float64(15), 15},
		{"json number", json.Number("48"), 48},
		{"nil", nil, 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveSettings(SettingsInput{FPS: tt.fps})
			assert.Equal(t, tt.want, got.FPS)
		})
	}
}

func TestResolveSettingsIdempotent(t *testing.T) {
	inputs := []SettingsInput{
		{},
		{Resolution: "no-such", FPS: "abc", Quality: "bogus", Format: "mov"},
		{Resolution: "480p", FPS: float64(50), Quality: "medium", Format: "webm"},
	}

	for _, in := range inputs {
		once := ResolveSettings(in)
		twice := ResolveSettings(SettingsInput{
			Resolution: once.Resolution,
			FPS:        once.FPS,
			Quality:    once.Quality,
			Format:     once.Format,
		})
		require.Equal(t, once, twice)
	}
}
