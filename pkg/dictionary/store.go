/*
Package dictionary reads and writes persisted frequency dictionaries.

The format is picked from the path: .csv for a word,count table, .json for a
single {"word": count} object, .msgpack/.mpk for the same object in
MessagePack, .db/.sqlite for a sqlite table, and a directory (or .bin file)
for ranked binary chunks that autocomplete servers load directly.

Loading returns raw rows whose counts are untouched text, so malformed values
reach the cleaner intact. Saving always writes the complete document: file
formats go to a temporary file that is renamed into place, and every write
holds an advisory lock on <path>.lock so concurrent runs cannot interleave.
*/
package dictionary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofrs/flock"

	"github.com/bastiangx/freqdict/internal/utils"
	"github.com/bastiangx/freqdict/pkg/clean"
	"github.com/bastiangx/freqdict/pkg/freq"
)

const lockRetryDelay = 50 * time.Millisecond

// WriteError reports a failure to persist a dictionary.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write dictionary %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Options configures a Store.
type Options struct {
	// Format forces a format instead of detecting it from the path.
	Format FileFormat
	// ChunkSize is the number of words per chunk file.
	ChunkSize int
	// LockTimeout bounds the wait for the write lock. Zero waits until ctx is done.
	LockTimeout time.Duration
}

// Store loads and saves dictionaries.
type Store struct {
	format      FileFormat
	chunkSize   int
	lockTimeout time.Duration
}

// NewStore creates a store with the given options.
func NewStore(opts Options) *Store {
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Store{format: opts.Format, chunkSize: chunkSize, lockTimeout: opts.LockTimeout}
}

func (s *Store) formatFor(path string) (FileFormat, error) {
	if s.format != FormatUnknown {
		return s.format, nil
	}
	return DetectFormat(path)
}

// LoadRows reads every row at path. Counts are left as raw text.
func (s *Store) LoadRows(ctx context.Context, path string) ([]clean.RawRow, error) {
	format, err := s.formatFor(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open dictionary %s: %w", path, err)
	}
	log.Debugf("Loading %s dictionary from %s", format, path)

	switch format {
	case FormatChunk:
		return loadChunkRows(path)
	case FormatSQLite:
		db, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return db.LoadRows(ctx)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary %s: %w", path, err)
	}
	defer file.Close()

	switch format {
	case FormatCSV:
		return ReadCSV(file)
	case FormatJSON:
		return ReadJSON(file)
	case FormatMsgpack:
		return ReadMsgpack(file)
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, format)
}

// SaveTable writes a frequency table, most frequent words first.
func (s *Store) SaveTable(ctx context.Context, path string, table *freq.Table) error {
	return s.SaveRows(ctx, path, RowsFromTable(table))
}

// SaveRows replaces whatever is at path with rows.
func (s *Store) SaveRows(ctx context.Context, path string, rows []clean.Row) error {
	format, err := s.formatFor(path)
	if err != nil {
		return err
	}

	unlock, err := s.lock(ctx, path)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	defer unlock()

	if err := s.write(ctx, path, format, rows); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	log.Debugf("Wrote %d rows to %s (%s)", len(rows), path, format)
	return nil
}

func (s *Store) write(ctx context.Context, path string, format FileFormat, rows []clean.Row) error {
	switch format {
	case FormatCSV:
		return utils.WriteFileAtomic(path, func(w io.Writer) error { return WriteCSV(w, rows) })
	case FormatJSON:
		return utils.WriteFileAtomic(path, func(w io.Writer) error { return WriteJSON(w, rows) })
	case FormatMsgpack:
		return utils.WriteFileAtomic(path, func(w io.Writer) error { return WriteMsgpack(w, rows) })
	case FormatSQLite:
		if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
			return err
		}
		db, err := OpenSQLite(path)
		if err != nil {
			return err
		}
		if err := db.ReplaceRows(ctx, rows); err != nil {
			_ = db.Close()
			return err
		}
		return db.Close()
	case FormatChunk:
		if filepath.Ext(path) == ".bin" {
			return utils.WriteFileAtomic(path, func(w io.Writer) error { return WriteChunk(w, RankRows(rows)) })
		}
		_, err := s.writeChunkDir(path, rows)
		return err
	}
	return fmt.Errorf("%w: %v", ErrUnknownFormat, format)
}

// writeChunkDir ranks rows and splits them into dict_NNNN.bin files under dir,
// removing chunk files left over from a larger previous dictionary.
func (s *Store) writeChunkDir(dir string, rows []clean.Row) ([]ChunkInfo, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return nil, err
	}
	stale, err := GetAvailableChunks(dir)
	if err != nil {
		return nil, err
	}

	entries := RankRows(rows)
	var written []ChunkInfo
	for start, id := 0, 1; start < len(entries); start, id = start+s.chunkSize, id+1 {
		end := min(start+s.chunkSize, len(entries))
		filename := filepath.Join(dir, ChunkFilename(id))
		chunk := entries[start:end]
		if err := utils.WriteFileAtomic(filename, func(w io.Writer) error { return WriteChunk(w, chunk) }); err != nil {
			return written, err
		}
		written = append(written, ChunkInfo{ChunkID: id, Filename: filename, WordCount: len(chunk)})
	}

	for _, c := range stale {
		if c.ChunkID > len(written) {
			if err := os.Remove(c.Filename); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return written, err
			}
		}
	}
	log.Debugf("Wrote %d chunk files to %s", len(written), dir)
	return written, nil
}

// lock takes the advisory write lock for path.
func (s *Store) lock(ctx context.Context, path string) (func(), error) {
	lockPath := filepath.Clean(path) + ".lock"
	if err := utils.EnsureDir(filepath.Dir(lockPath)); err != nil {
		return nil, err
	}
	if s.lockTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.lockTimeout)
		defer cancel()
	}

	fl := flock.New(lockPath)
	ok, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", lockPath, err)
	}
	if !ok {
		return nil, fmt.Errorf("dictionary %s is locked by another process", path)
	}
	return func() {
		if err := fl.Unlock(); err != nil {
			log.Warnf("Failed to release lock %s: %v", lockPath, err)
		}
	}, nil
}

// RowsFromTable converts a table into rows, most frequent first.
func RowsFromTable(table *freq.Table) []clean.Row {
	entries := table.Entries()
	rows := make([]clean.Row, len(entries))
	for i, e := range entries {
		rows[i] = clean.Row{Word: e.Word, Count: float64(e.Count)}
	}
	return rows
}
