// Package export persists export documents to disk.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/harrisonrobin/taskdump/pkg/failure"
	"github.com/harrisonrobin/taskdump/pkg/model"
)

const DefaultPerm os.FileMode = 0644

// Writer writes export documents atomically: a reader of the target path
// sees either the previous file or the complete new one.
type Writer struct {
	fs     afero.Fs
	indent bool
	perm   os.FileMode
}

type OptionFunc func(w *Writer)

// WithIndent makes the writer emit indented JSON.
func WithIndent(indent bool) OptionFunc {
	return func(w *Writer) {
		w.indent = indent
	}
}

// NewWriter returns a writer on fs. A nil fs writes to the OS filesystem.
func NewWriter(fs afero.Fs, funcs ...OptionFunc) *Writer {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	w := &Writer{fs: fs, perm: DefaultPerm}
	for _, fn := range funcs {
		fn(w)
	}
	return w
}

// Encode serializes doc the way Write stores it.
func (w *Writer) Encode(doc model.Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if w.indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(doc); err != nil {
		return nil, errors.WithStack(err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Write stores doc at path. The parent directory must already exist. The
// content goes to a temporary file in the same directory which is renamed
// over path once fully written; on failure or cancellation path is left
// untouched and the temporary file is removed.
func (w *Writer) Write(ctx context.Context, path string, doc model.Document) error {
	data, err := w.Encode(doc)
	if err != nil {
		return failure.WriteFailure("could not encode export", err)
	}

	dir := filepath.Dir(path)
	info, err := w.fs.Stat(dir)
	if err != nil {
		return failure.WriteFailure(fmt.Sprintf("export directory %s is not accessible", dir), err)
	}
	if !info.IsDir() {
		return failure.WriteFailure(fmt.Sprintf("export directory %s is not a directory", dir), nil)
	}

	if err := ctx.Err(); err != nil {
		return failure.WriteFailure("export interrupted", err)
	}

	tmpFile, err := afero.TempFile(w.fs, dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return failure.WriteFailure("create temp file", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			if err := w.fs.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
				slog.WarnContext(ctx, "could not remove temp file", slog.String("path", tmpPath), slog.Any("error", err))
			}
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return failure.WriteFailure("write temp file", err)
	}

	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return failure.WriteFailure("sync temp file", err)
	}

	if err := tmpFile.Close(); err != nil {
		return failure.WriteFailure("close temp file", err)
	}

	if err := w.fs.Chmod(tmpPath, w.perm); err != nil {
		return failure.WriteFailure("chmod temp file", err)
	}

	if err := ctx.Err(); err != nil {
		return failure.WriteFailure("export interrupted", err)
	}

	if err := w.fs.Rename(tmpPath, path); err != nil {
		return failure.WriteFailure(fmt.Sprintf("could not write %s", path), err)
	}

	success = true

	slog.DebugContext(ctx, "export written", slog.String("path", path), slog.Int("bytes", len(data)))

	return nil
}

// ReadFile loads a document previously stored by Write.
func ReadFile(fs afero.Fs, path string) (model.Document, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return model.Document{}, failure.SourceUnavailable(fmt.Sprintf("could not read %s", path), err)
	}
	var doc model.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return model.Document{}, failure.MalformedResponse(fmt.Sprintf("%s is not a taskdump export", path), err)
	}
	return doc, nil
}
