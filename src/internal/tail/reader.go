// FILE: logseer/src/internal/tail/reader.go
package tail

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"logseer/src/internal/core"

	"github.com/lixenwraith/log"
)

// Grace window for modification-time based rotation detection. A rotated
// file cannot be resumed mid-stream, so a large mtime jump in either
// direction forces a restart from offset 0.
const rotationGraceWindow = 60 * time.Second

// CursorStore persists per-source read positions
type CursorStore interface {
	Cursor(ctx context.Context, logFile string) (core.FileCursor, error)
	CommitCursor(ctx context.Context, cursor core.FileCursor) error
}

// Reader returns only the bytes appended to a log file since the previous
// cycle. The cursor is committed after a successful read, never before:
// a crash mid-read re-reads the same bytes next cycle (at-least-once).
type Reader struct {
	store  CursorStore
	grace  time.Duration
	logger *log.Logger
}

// NewReader creates an incremental reader backed by the given cursor store
func NewReader(store CursorStore, logger *log.Logger) *Reader {
	return &Reader{
		store:  store,
		grace:  rotationGraceWindow,
		logger: logger,
	}
}

// ReadNew reads everything appended to path since the stored cursor.
// A missing file is not an error: it returns empty content and leaves the
// cursor untouched.
func (r *Reader) ReadNew(ctx context.Context, path string) (string, core.ReadMetadata, error) {
	var meta core.ReadMetadata

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			r.logger.Warn("msg", "Log file not found",
				"component", "tail",
				"path", path)
			return "", meta, nil
		}
		return "", meta, fmt.Errorf("failed to stat '%s': %w", path, err)
	}

	currentSize := info.Size()
	currentModTime := info.ModTime()

	cursor, err := r.store.Cursor(ctx, path)
	if err != nil {
		return "", meta, err
	}

	position := cursor.Position

	// Rotation detection: the file shrank below our offset, or its mtime
	// jumped past the grace window in either direction (logrotate reuse).
	if rotated, reason := detectRotation(cursor, currentSize, currentModTime, r.grace); rotated {
		r.logger.Info("msg", "Log rotation detected",
			"component", "tail",
			"path", path,
			"reason", reason,
			"stored_position", position)
		position = 0
		meta.Rotated = true
	}

	content, bytesRead, err := readFrom(path, position)
	if err != nil {
		// Cursor stays untouched so the next cycle retries the same range
		return "", meta, fmt.Errorf("failed to read '%s': %w", path, err)
	}

	newPosition := position + bytesRead

	meta.FileSize = currentSize
	meta.BytesRead = bytesRead
	meta.LinesRead = countLines(content)
	meta.LastPosition = position
	meta.NewPosition = newPosition

	if err := r.store.CommitCursor(ctx, core.FileCursor{
		LogFile:      path,
		Position:     newPosition,
		LastModified: currentModTime,
		LastCheck:    time.Now(),
	}); err != nil {
		return "", meta, err
	}

	return content, meta, nil
}

func detectRotation(cursor core.FileCursor, size int64, modTime time.Time, grace time.Duration) (bool, string) {
	if cursor.Position == 0 && cursor.LastModified.IsZero() {
		// First encounter, nothing to resume
		return false, ""
	}
	if size < cursor.Position {
		return true, "size decrease"
	}
	if !cursor.LastModified.IsZero() {
		delta := modTime.Sub(cursor.LastModified)
		if delta < 0 {
			delta = -delta
		}
		if delta > grace {
			return true, "modification time jump"
		}
	}
	return false, ""
}

func readFrom(path string, position int64) (string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer file.Close()

	if _, err := file.Seek(position, io.SeekStart); err != nil {
		return "", 0, err
	}

	raw, err := io.ReadAll(file)
	if err != nil {
		return "", 0, err
	}

	// Invalid byte sequences are replaced, never fatal
	content := strings.ToValidUTF8(string(raw), "�")
	return content, int64(len(raw)), nil
}

func countLines(content string) int {
	if content == "" {
		return 0
	}
	return strings.Count(content, "\n") + 1
}
