package output

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/openactive/models-lib/render"
)

func sampleFiles() []render.File {
	return []render.File{
		{Path: "models/Event.cs", Content: "// Source version: abc123\nclass Event {}\n"},
		{Path: "enums/Status.cs", Content: "enum Status {}\n"},
	}
}

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dotnet")
	w := NewWriter(dir, false, zaptest.NewLogger(t).Sugar())
	require.NoError(t, w.Write(sampleFiles()))

	got, err := os.ReadFile(filepath.Join(dir, "models", "Event.cs"))
	require.NoError(t, err)
	assert.Equal(t, "// Source version: abc123\nclass Event {}\n", string(got))
}

func TestWriteClean(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dotnet")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "models"), 0755))
	stale := filepath.Join(dir, "models", "Removed.cs")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0644))

	require.NoError(t, NewWriter(dir, true, nil).Write(sampleFiles()))
	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err), "clean removes stale files")
	_, err = os.Stat(filepath.Join(dir, "enums", "Status.cs"))
	assert.NoError(t, err)
}

func TestWriteRejectsUnsafePaths(t *testing.T) {
	tests := []struct {
		name  string
		dir   string
		files []render.File
	}{
		{"working directory", ".", sampleFiles()},
		{"empty directory", "", sampleFiles()},
		{"parent escape", t.TempDir(), []render.File{{Path: "../evil.cs"}}},
		{"absolute path", t.TempDir(), []render.File{{Path: "/etc/evil.cs"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, NewWriter(tt.dir, true, nil).Write(tt.files))
		})
	}
}

func TestCompare(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewWriter(dir, false, nil).Write(sampleFiles()))

	t.Run("up to date ignoring source version", func(t *testing.T) {
		files := sampleFiles()
		files[0].Content = "// Source version: def456\nclass Event {}\n"
		result, err := Compare(files, dir)
		require.NoError(t, err)
		assert.True(t, result.UpToDate)
	})

	t.Run("changed missing and extra", func(t *testing.T) {
		files := []render.File{
			{Path: "models/Event.cs", Content: "class Event { int X; }\n"},
			{Path: "models/Place.cs", Content: "class Place {}\n"},
		}
		result, err := Compare(files, dir)
		require.NoError(t, err)
		assert.False(t, result.UpToDate)
		assert.Equal(t, []string{"models/Event.cs"}, result.Changed)
		assert.Equal(t, []string{"models/Place.cs"}, result.Missing)
		assert.Equal(t, []string{"enums/Status.cs"}, result.Extra)
	})

	t.Run("missing directory", func(t *testing.T) {
		result, err := Compare(sampleFiles(), filepath.Join(dir, "nope"))
		require.NoError(t, err)
		assert.Len(t, result.Missing, 2)
		assert.Empty(t, result.Extra)
	})
}

func TestFilterMetadataLines(t *testing.T) {
	assert.Equal(t, "a\nb\n", filterMetadataLines([]byte("a\n  // Source version: x\nb")))
}

func TestSourceVersion(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "models.json"), []byte("{}"), 0644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("models.json")
	require.NoError(t, err)
	hash, err := wt.Commit("add models", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	sub := filepath.Join(dir, "models")
	require.NoError(t, os.MkdirAll(sub, 0755))
	got, err := SourceVersion(sub)
	require.NoError(t, err)
	assert.Equal(t, hash.String()[:7], got, "repository is found from a subdirectory")

	_, err = SourceVersion(t.TempDir())
	assert.Error(t, err)
}
