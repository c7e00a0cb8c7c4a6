// Package sidecar synthesizes metadata records for uploaded documents and
// stages the on-disk sidecar file set the device expects: a .metadata file,
// a .content file with per-type viewer defaults, and (for documents) an
// empty page directory plus an empty thumbnails directory, all named by the
// document identifier.
package sidecar

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/remkit/remkit/internal/atomicfile"
	"github.com/remkit/remkit/internal/metadata"
	"github.com/remkit/remkit/internal/tree"
)

var (
	// ErrNotFolder means the put target's parent resolved to a document.
	ErrNotFolder = errors.New("target is not a folder")

	// ErrUnsupportedType means the source file's extension is not one the
	// device can render.
	ErrUnsupportedType = errors.New("unsupported file type")
)

var supportedTypes = map[string]bool{
	"pdf":  true,
	"epub": true,
}

// Supported reports whether fileType is an uploadable document type.
func Supported(fileType string) bool {
	return supportedTypes[fileType]
}

// epochMillis renders a timestamp the way the device stores it: decimal
// milliseconds since the Unix epoch, as a string.
func epochMillis(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// NewDocument builds a schema-correct record for a fresh document under
// parent, minting a new v4 UUID identifier. All bookkeeping fields start
// from their device defaults; both timestamps are now.
func NewDocument(parent *tree.Node, stem, fileType string, now time.Time) (*metadata.Record, error) {
	if !parent.IsFolder() {
		return nil, ErrNotFolder
	}
	if !Supported(fileType) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, fileType)
	}

	ms := epochMillis(now)
	return &metadata.Record{
		ID:           uuid.NewString(),
		LastModified: ms,
		LastOpened:   ms,
		Parent:       parent.ID(),
		Type:         metadata.TypeDocument,
		VisibleName:  stem,
	}, nil
}

// Replacement builds the record that overwrites an existing document in
// place. The identifier and visible name are reused (the device keys all
// sidecar files by the identifier), the version counter advances, and the
// bookkeeping fields reset as for a fresh upload.
func Replacement(existing *tree.Node, fileType string, now time.Time) (*metadata.Record, error) {
	if existing.IsFolder() {
		return nil, ErrNotFolder
	}
	if !Supported(fileType) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, fileType)
	}

	ms := epochMillis(now)
	return &metadata.Record{
		ID:           existing.Record.ID,
		LastModified: ms,
		LastOpened:   ms,
		Parent:       existing.Record.Parent,
		Type:         metadata.TypeDocument,
		Version:      existing.Record.Version + 1,
		VisibleName:  existing.Record.VisibleName,
	}, nil
}

// Stage writes the full sidecar set for rec into dir and returns the staged
// paths, ready to hand to the transport. payload is the local source
// document, copied in as <id>.<fileType>; pass "" for folder records, which
// stage only the metadata and content files.
func Stage(dir string, rec *metadata.Record, fileType, payload string) ([]string, error) {
	base := filepath.Join(dir, rec.ID)

	meta, err := rec.MarshalDevice()
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	if err := atomicfile.WriteFile(base+".metadata", meta, 0o644); err != nil {
		return nil, err
	}

	content, err := ContentDefaults(rec, fileType)
	if err != nil {
		return nil, err
	}
	if err := atomicfile.WriteFile(base+".content", content, 0o644); err != nil {
		return nil, err
	}

	staged := []string{base + ".metadata", base + ".content"}
	if rec.IsFolder() {
		return staged, nil
	}

	// Page data and thumbnails start empty; xochitl fills them in on first
	// open.
	if err := os.Mkdir(base, 0o755); err != nil {
		return nil, fmt.Errorf("create page directory: %w", err)
	}
	if err := os.Mkdir(base+".thumbnails", 0o755); err != nil {
		return nil, fmt.Errorf("create thumbnails directory: %w", err)
	}
	staged = append(staged, base, base+".thumbnails")

	dst := base + "." + fileType
	if err := copyFile(payload, dst); err != nil {
		return nil, fmt.Errorf("copy payload: %w", err)
	}
	staged = append(staged, dst)

	return staged, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
