package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmagro/nft-image-urls/internal/metadata"
)

func TestLoadMissingFile(t *testing.T) {
	results, err := Load(filepath.Join(t.TempDir(), "image-urls.json"))
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.NotNil(t, results)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"not json", "{"},
		{"array", "[]"},
		{"non-string value", `{"0": 1}`},
		{"non-integer key", `{"zero": "https://x"}`},
		{"negative key", `{"-1": "https://x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "image-urls.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveNumericOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image-urls.json")
	results := Results{10: "https://x/10", 2: "https://x/2?a=1&b=2", 1: "https://x/1"}

	require.NoError(t, results.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"1\": \"https://x/1\",\n  \"2\": \"https://x/2?a=1&b=2\",\n  \"10\": \"https://x/10\"\n}\n", string(data))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, results, loaded)
}

func TestSaveEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image-urls.json")
	require.NoError(t, Results{}.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(data))
}

func TestSaveReplacesAndLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "image-urls.json")

	require.NoError(t, Results{0: "a"}.Save(path))
	require.NoError(t, Results{0: "a", 1: "b"}.Save(path))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "image-urls.json", entries[0].Name())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, loaded, 2)
}

func TestSaveMissingDirectory(t *testing.T) {
	err := Results{0: "a"}.Save(filepath.Join(t.TempDir(), "missing", "image-urls.json"))
	assert.Error(t, err)
}

func TestMergeNeverOverwrites(t *testing.T) {
	results := Results{0: "first"}

	added := results.Merge([]metadata.Outcome{
		{ID: 0, URL: "second"},
		{ID: 1, URL: "one"},
		{ID: 2, Stage: metadata.StageRPC},
		{ID: 3, URL: ""},
	})

	assert.Equal(t, 1, added)
	assert.Equal(t, Results{0: "first", 1: "one"}, results)
}

func TestPending(t *testing.T) {
	results := Results{0: "a", 2: "c", 7: "outside"}

	assert.Equal(t, []int{1, 3, 4}, results.Pending(5))
	assert.Empty(t, Results{0: "a"}.Pending(1))
	assert.Equal(t, []int{0, 2, 7}, results.IDs())
}
