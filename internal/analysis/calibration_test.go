package analysis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormStore_LoadMissingFileUsesDefaults(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{name: "empty path", path: ""},
		{name: "absent file", path: filepath.Join(t.TempDir(), "norms.yaml")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			norms, err := NewNormStore(tt.path).Load()
			require.NoError(t, err)
			assert.Equal(t, DefaultNormSet(), norms)
		})
	}
}

func TestNormStore_SaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "norms.yaml")
	store := NewNormStore(path)

	norms := DefaultNormSet()
	norms.SpeechWPM.Bands[0].Mean = 160
	require.NoError(t, store.Save(norms))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 160.0, loaded.SpeechWPM.Bands[0].Mean)
	assert.Equal(t, norms.TapIntervalStd, loaded.TapIntervalStd)
}

func TestNormStore_RejectsInvalidFiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not yaml", content: "norms: [unterminated"},
		{
			name: "zero std",
			content: `
version: 1
norms:
  speech_wpm:
    metric: speech_wpm
    bands:
      - {min_age: 18, max_age: 120, mean: 140, std: 0}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "norms.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := NewNormStore(path).Load()
			assert.Error(t, err)
		})
	}
}

func TestNormStore_SaveRejectsInvalidTables(t *testing.T) {
	norms := DefaultNormSet()
	norms.StroopRT.Bands = nil
	assert.Error(t, NewNormStore(filepath.Join(t.TempDir(), "norms.yaml")).Save(norms))
}
