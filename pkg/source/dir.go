package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// fileNameReplacer maps characters that are unsafe in file names to safe ones.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// Dir reads articles stored as <dir>/<id>.txt.
type Dir struct {
	root string
	ext  string
}

// NewDir creates a directory source rooted at root.
func NewDir(root string) *Dir {
	return &Dir{root: root, ext: ".txt"}
}

// Path returns the file an identifier resolves to.
func (d *Dir) Path(id string) string {
	name := strings.TrimSpace(fileNameReplacer.Replace(strings.TrimSpace(id)))
	return filepath.Join(d.root, name+d.ext)
}

// Fetch reads the file for id. A missing file is reported as a page that does not exist.
func (d *Dir) Fetch(ctx context.Context, id string) (Page, error) {
	page := Page{ID: id}
	if err := ctx.Err(); err != nil {
		return page, err
	}
	if strings.TrimSpace(id) == "" {
		return page, nil
	}

	data, err := os.ReadFile(d.Path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return page, nil
		}
		return page, fmt.Errorf("failed to read %s: %w", d.Path(id), err)
	}

	page.Exists = true
	page.Text = string(data)
	return page, nil
}
