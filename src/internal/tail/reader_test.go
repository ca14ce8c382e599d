// FILE: logseer/src/internal/tail/reader_test.go
package tail

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"logseer/src/internal/core"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *log.Logger {
	return log.NewLogger()
}

// memStore is an in-memory cursor store
type memStore struct {
	cursors map[string]core.FileCursor
	commits int
}

func newMemStore() *memStore {
	return &memStore{cursors: make(map[string]core.FileCursor)}
}

func (s *memStore) Cursor(_ context.Context, logFile string) (core.FileCursor, error) {
	if c, ok := s.cursors[logFile]; ok {
		return c, nil
	}
	return core.FileCursor{LogFile: logFile}, nil
}

func (s *memStore) CommitCursor(_ context.Context, cursor core.FileCursor) error {
	s.cursors[cursor.LogFile] = cursor
	s.commits++
	return nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestReader_ReadNew(t *testing.T) {
	ctx := context.Background()

	t.Run("FirstReadFromStart", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "app.log")
		writeFile(t, path, "line one\nline two\n")

		store := newMemStore()
		r := NewReader(store, newTestLogger())

		content, meta, err := r.ReadNew(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, "line one\nline two\n", content)
		assert.Equal(t, int64(0), meta.LastPosition)
		assert.Equal(t, int64(18), meta.NewPosition)
		assert.False(t, meta.Rotated)
		assert.Equal(t, int64(18), store.cursors[path].Position)
	})

	t.Run("SecondReadReturnsOnlyAppended", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "app.log")
		writeFile(t, path, "first\n")

		store := newMemStore()
		r := NewReader(store, newTestLogger())

		_, _, err := r.ReadNew(ctx, path)
		require.NoError(t, err)

		f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
		require.NoError(t, err)
		_, err = f.WriteString("second\n")
		require.NoError(t, err)
		require.NoError(t, f.Close())

		content, meta, err := r.ReadNew(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, "second\n", content)
		assert.Equal(t, int64(6), meta.LastPosition)
	})

	t.Run("NoNewContent", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "app.log")
		writeFile(t, path, "stable\n")

		store := newMemStore()
		r := NewReader(store, newTestLogger())

		_, _, err := r.ReadNew(ctx, path)
		require.NoError(t, err)

		content, meta, err := r.ReadNew(ctx, path)
		require.NoError(t, err)
		assert.Empty(t, content)
		assert.Equal(t, int64(0), meta.BytesRead)
		assert.Equal(t, 0, meta.LinesRead)
	})

	t.Run("MissingFileIsNotAnError", func(t *testing.T) {
		store := newMemStore()
		r := NewReader(store, newTestLogger())

		content, meta, err := r.ReadNew(ctx, filepath.Join(t.TempDir(), "absent.log"))
		assert.NoError(t, err)
		assert.Empty(t, content)
		assert.Equal(t, int64(0), meta.BytesRead)
		assert.Zero(t, store.commits)
	})

	t.Run("RotationBySizeDecrease", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "app.log")
		writeFile(t, path, "a long first generation of content\n")

		store := newMemStore()
		r := NewReader(store, newTestLogger())

		_, _, err := r.ReadNew(ctx, path)
		require.NoError(t, err)

		// Truncate-and-recreate, the logrotate pattern
		writeFile(t, path, "fresh\n")

		content, meta, err := r.ReadNew(ctx, path)
		require.NoError(t, err)
		assert.True(t, meta.Rotated)
		assert.Equal(t, "fresh\n", content)
		assert.Equal(t, int64(0), meta.LastPosition)
	})

	t.Run("RotationByModTimeJump", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "app.log")
		writeFile(t, path, "generation one\n")

		store := newMemStore()
		r := NewReader(store, newTestLogger())

		_, _, err := r.ReadNew(ctx, path)
		require.NoError(t, err)

		// Same size, but the stored mtime is far in the past
		cursor := store.cursors[path]
		cursor.LastModified = cursor.LastModified.Add(-2 * time.Hour)
		store.cursors[path] = cursor

		content, meta, err := r.ReadNew(ctx, path)
		require.NoError(t, err)
		assert.True(t, meta.Rotated)
		assert.Equal(t, "generation one\n", content)
	})

	t.Run("SmallModTimeDriftIsNotRotation", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "app.log")
		writeFile(t, path, "steady\n")

		store := newMemStore()
		r := NewReader(store, newTestLogger())

		_, _, err := r.ReadNew(ctx, path)
		require.NoError(t, err)

		cursor := store.cursors[path]
		cursor.LastModified = cursor.LastModified.Add(-30 * time.Second)
		store.cursors[path] = cursor

		_, meta, err := r.ReadNew(ctx, path)
		require.NoError(t, err)
		assert.False(t, meta.Rotated)
		assert.Equal(t, int64(0), meta.BytesRead)
	})
}

func TestDetectRotation(t *testing.T) {
	now := time.Now()
	grace := 60 * time.Second

	tests := []struct {
		name   string
		cursor core.FileCursor
		size   int64
		mod    time.Time
		want   bool
	}{
		{"FirstEncounter", core.FileCursor{}, 100, now, false},
		{"SizeShrank", core.FileCursor{Position: 200, LastModified: now}, 100, now, true},
		{"MtimeForwardJump", core.FileCursor{Position: 50, LastModified: now.Add(-2 * time.Minute)}, 100, now, true},
		{"MtimeBackwardJump", core.FileCursor{Position: 50, LastModified: now.Add(2 * time.Minute)}, 100, now, true},
		{"WithinGrace", core.FileCursor{Position: 50, LastModified: now.Add(-30 * time.Second)}, 100, now, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rotated, _ := detectRotation(tt.cursor, tt.size, tt.mod, grace)
			assert.Equal(t, tt.want, rotated)
		})
	}
}

func TestCountLines(t *testing.T) {
	assert.Equal(t, 0, countLines(""))
	assert.Equal(t, 1, countLines("no newline"))
	assert.Equal(t, 2, countLines("one\n"))
	assert.Equal(t, 3, countLines("one\ntwo\n"))
}
