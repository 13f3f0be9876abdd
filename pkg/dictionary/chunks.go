package dictionary

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/freqdict/pkg/clean"
)

const (
	// DefaultChunkSize is the number of words per chunk file.
	DefaultChunkSize = 10000
	// MaxRank is the lowest rank representable in a chunk entry.
	MaxRank = math.MaxUint16

	maxChunkEntries = 1000000
)

// ChunkInfo contains metadata about a chunk file
type ChunkInfo struct {
	ChunkID   int
	Filename  string
	WordCount int
}

// ChunkEntry is a single ranked word. Rank 1 is the most frequent word.
type ChunkEntry struct {
	Word string
	Rank uint16
}

// Score converts a rank back into a frequency-like value where higher is better.
// Rank 1 becomes 65535, rank 2 becomes 65534, etc.
func (e ChunkEntry) Score() int {
	return MaxRank - int(e.Rank) + 1
}

// ChunkFilename returns the file name for a chunk id (1 -> dict_0001.bin).
func ChunkFilename(chunkID int) string {
	return fmt.Sprintf("dict_%04d.bin", chunkID)
}

// RankRows orders rows by count (highest first), then word, and assigns ranks
// starting at 1. Ranks past MaxRank saturate.
func RankRows(rows []clean.Row) []ChunkEntry {
	sorted := make([]clean.Row, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Count != sorted[j].Count {
			return sorted[i].Count > sorted[j].Count
		}
		return sorted[i].Word < sorted[j].Word
	})

	entries := make([]ChunkEntry, len(sorted))
	for i, r := range sorted {
		rank := i + 1
		if rank > MaxRank {
			rank = MaxRank
		}
		entries[i] = ChunkEntry{Word: r.Word, Rank: uint16(rank)}
	}
	return entries
}

// GetAvailableChunks scans dir for chunk files, sorted by id
func GetAvailableChunks(dir string) ([]ChunkInfo, error) {
	pattern := filepath.Join(dir, "dict_*.bin")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to scan for chunk files: %w", err)
	}

	var chunks []ChunkInfo
	for _, file := range files {
		basename := filepath.Base(file)
		// Extract chunk ID from filename (dict_0001.bin -> 1)
		idStr := strings.TrimSuffix(strings.TrimPrefix(basename, "dict_"), ".bin")
		chunkID, err := strconv.Atoi(idStr)
		if err != nil {
			continue
		}
		wordCount, err := getChunkWordCount(file)
		if err != nil {
			log.Warnf("Failed to get word count for chunk %s: %v", file, err)
			wordCount = 0
		}
		chunks = append(chunks, ChunkInfo{
			ChunkID:   chunkID,
			Filename:  file,
			WordCount: wordCount,
		})
	}

	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].ChunkID < chunks[j].ChunkID
	})
	return chunks, nil
}

// getChunkWordCount reads the word count from a chunk file's header
func getChunkWordCount(filename string) (int, error) {
	file, err := os.Open(filename)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	var wordCount int32
	if err := binary.Read(file, binary.LittleEndian, &wordCount); err != nil {
		return 0, err
	}
	return int(wordCount), nil
}

// ReadChunk decodes a chunk: an int32 entry count, then per entry a uint16
// word length, the word bytes and a uint16 rank, all little endian.
func ReadChunk(r io.Reader) ([]ChunkEntry, error) {
	reader := bufio.NewReader(r)

	var totalEntries int32
	if err := binary.Read(reader, binary.LittleEndian, &totalEntries); err != nil {
		return nil, fmt.Errorf("failed to read chunk header: %w", err)
	}
	if totalEntries < 0 || totalEntries > maxChunkEntries {
		return nil, fmt.Errorf("invalid chunk entry count %d", totalEntries)
	}

	entries := make([]ChunkEntry, 0, totalEntries)
	for len(entries) < int(totalEntries) {
		var wordLen uint16
		if err := binary.Read(reader, binary.LittleEndian, &wordLen); err != nil {
			return nil, truncated(err, len(entries), totalEntries, "word length")
		}

		wordBytes := make([]byte, wordLen)
		if _, err := io.ReadFull(reader, wordBytes); err != nil {
			return nil, truncated(err, len(entries), totalEntries, "word")
		}

		var rank uint16
		if err := binary.Read(reader, binary.LittleEndian, &rank); err != nil {
			return nil, truncated(err, len(entries), totalEntries, "rank")
		}
		entries = append(entries, ChunkEntry{Word: string(wordBytes), Rank: rank})
	}
	return entries, nil
}

// ErrChunkTruncated is returned when a chunk ends before its header's entry count.
var ErrChunkTruncated = errors.New("chunk truncated")

func truncated(err error, got int, want int32, field string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %d of %d entries", ErrChunkTruncated, got, want)
	}
	return fmt.Errorf("failed to read %s: %w", field, err)
}

// ReadChunkFile opens and decodes a single chunk file.
func ReadChunkFile(filename string) ([]ChunkEntry, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open chunk file %s: %w", filename, err)
	}
	defer file.Close()
	return ReadChunk(file)
}

// WriteChunk encodes entries in the chunk layout read by ReadChunk.
func WriteChunk(w io.Writer, entries []ChunkEntry) error {
	if len(entries) > maxChunkEntries {
		return fmt.Errorf("chunk too large: %d entries", len(entries))
	}
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, int32(len(entries))); err != nil {
		return err
	}
	for _, e := range entries {
		if len(e.Word) > math.MaxUint16 {
			return fmt.Errorf("word too long for chunk format: %d bytes", len(e.Word))
		}
		if err := binary.Write(bw, binary.LittleEndian, uint16(len(e.Word))); err != nil {
			return err
		}
		if _, err := bw.WriteString(e.Word); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, e.Rank); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// loadChunkRows reads every chunk under dir (or a single chunk file) as raw
// rows, using the rank score as the count.
func loadChunkRows(path string) ([]clean.RawRow, error) {
	files := []string{path}
	if stat, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	} else if stat.IsDir() {
		chunks, err := GetAvailableChunks(path)
		if err != nil {
			return nil, err
		}
		if len(chunks) == 0 {
			return nil, fmt.Errorf("no chunk files found in %s", path)
		}
		files = files[:0]
		for _, c := range chunks {
			files = append(files, c.Filename)
		}
	}

	var rows []clean.RawRow
	for _, f := range files {
		entries, err := ReadChunkFile(f)
		if err != nil {
			return nil, err
		}
		log.Debugf("Chunk %s loaded: %d words", f, len(entries))
		for _, e := range entries {
			rows = append(rows, clean.RawRow{Word: e.Word, Count: strconv.Itoa(e.Score())})
		}
	}
	return rows, nil
}
