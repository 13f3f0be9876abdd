package dictionary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// FileFormat represents different dictionary file formats
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatCSV                // word,count table
	FormatJSON               // {"word": count} object
	FormatMsgpack            // msgpack map of word to count
	FormatSQLite             // dictionary table in a sqlite db
	FormatChunk              // ranked binary chunks, dict_0001.bin ...
)

// ErrUnknownFormat is returned when a path does not map to a supported format.
var ErrUnknownFormat = errors.New("unknown dictionary format")

// FormatInfo contains metadata about a dictionary file format
type FormatInfo struct {
	Format      FileFormat
	Name        string
	Description string
	Extensions  []string
	MinSize     int64 // Minimum expected file size in bytes
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatCSV: {
		Format:      FormatCSV,
		Name:        "csv",
		Description: "CSV Dictionary",
		Extensions:  []string{".csv"},
		MinSize:     len64("word,count"),
	},
	FormatJSON: {
		Format:      FormatJSON,
		Name:        "json",
		Description: "JSON Frequency Table",
		Extensions:  []string{".json"},
		MinSize:     2, // {}
	},
	FormatMsgpack: {
		Format:      FormatMsgpack,
		Name:        "msgpack",
		Description: "MessagePack Frequency Table",
		Extensions:  []string{".msgpack", ".mpk"},
		MinSize:     1, // empty fixmap
	},
	FormatSQLite: {
		Format:      FormatSQLite,
		Name:        "sqlite",
		Description: "SQLite Dictionary",
		Extensions:  []string{".db", ".sqlite", ".sqlite3"},
		MinSize:     0,
	},
	FormatChunk: {
		Format:      FormatChunk,
		Name:        "chunks",
		Description: "Ranked Binary Chunks",
		Extensions:  []string{".bin", ""},
		MinSize:     4, // At least word count header
	},
}

func len64(s string) int64 { return int64(len(s)) }

func (f FileFormat) String() string {
	if info, ok := supportedFormats[f]; ok {
		return info.Name
	}
	return "unknown"
}

// ParseFormat maps a format name (csv, json, msgpack, sqlite, chunks) to a FileFormat.
func ParseFormat(name string) (FileFormat, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for format, info := range supportedFormats {
		if info.Name == name {
			return format, nil
		}
	}
	return FormatUnknown, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// DetectFormat infers the format of path from its extension.
// Existing directories and extensionless paths are chunk directories.
func DetectFormat(path string) (FileFormat, error) {
	if stat, err := os.Stat(path); err == nil && stat.IsDir() {
		return FormatChunk, nil
	}

	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range []FileFormat{FormatCSV, FormatJSON, FormatMsgpack, FormatSQLite, FormatChunk} {
		for _, e := range supportedFormats[format].Extensions {
			if ext == e {
				return format, nil
			}
		}
	}
	return FormatUnknown, fmt.Errorf("%w: unable to detect format for %s", ErrUnknownFormat, path)
}

// ValidateFileFormat checks if a file matches the expected format
func ValidateFileFormat(filename string, expectedFormat FileFormat) error {
	fileInfo, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", filename, err)
	}

	formatInfo, exists := supportedFormats[expectedFormat]
	if !exists {
		return fmt.Errorf("%w: %v", ErrUnknownFormat, expectedFormat)
	}

	if expectedFormat == FormatChunk && fileInfo.IsDir() {
		chunks, err := GetAvailableChunks(filename)
		if err != nil {
			return err
		}
		if len(chunks) == 0 {
			return fmt.Errorf("no chunk files found in %s", filename)
		}
		for _, chunk := range chunks {
			if err := validateChunkHeader(chunk.Filename); err != nil {
				return err
			}
		}
		return nil
	}

	// Check file size
	if fileInfo.Size() < formatInfo.MinSize {
		return fmt.Errorf("file %s is too small (%d bytes) for format %s (minimum: %d bytes)",
			filename, fileInfo.Size(), formatInfo.Description, formatInfo.MinSize)
	}

	// Check file extension
	ext := strings.ToLower(filepath.Ext(filename))
	validExt := false
	for _, validExtension := range formatInfo.Extensions {
		if ext == validExtension {
			validExt = true
			break
		}
	}
	if !validExt {
		return fmt.Errorf("file %s has invalid extension %s for format %s (expected: %v)",
			filename, ext, formatInfo.Description, formatInfo.Extensions)
	}

	if expectedFormat == FormatChunk {
		return validateChunkHeader(filename)
	}
	return nil
}

// validateChunkHeader validates the entry count header of a chunk file
func validateChunkHeader(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	var wordCount int32
	if err := binary.Read(file, binary.LittleEndian, &wordCount); err != nil {
		return fmt.Errorf("failed to read header from %s: %w", filename, err)
	}

	if wordCount < 0 {
		return fmt.Errorf("invalid word count in %s: %d (negative)", filename, wordCount)
	}

	if wordCount > maxChunkEntries {
		return fmt.Errorf("suspicious word count in %s: %d (too large)", filename, wordCount)
	}

	log.Debugf("Binary file %s validated: %d words", filename, wordCount)
	return nil
}

// GetFormatInfo returns information about a specific format
func GetFormatInfo(format FileFormat) (FormatInfo, bool) {
	info, exists := supportedFormats[format]
	return info, exists
}
