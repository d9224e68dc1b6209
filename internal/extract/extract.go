package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupported is returned for file types the extractor cannot read.
	ErrUnsupported = errors.New("unsupported document type")
	// ErrUnreadable is returned when a document is corrupt or cannot be parsed.
	ErrUnreadable = errors.New("unreadable document")
	// ErrTooLarge is returned when a document exceeds the configured size limit.
	ErrTooLarge = errors.New("document exceeds size limit")
)

// Source is the extracted text of one document.
type Source struct {
	Name string
	Path string
	Text string
}

// Loader loads a document from disk.
type Loader interface {
	Load(ctx context.Context, path string) (Source, error)
}

// Extractor reads PDF and plain-text documents.
type Extractor struct {
	// MaxBytes rejects larger files when positive.
	MaxBytes int64
}

// New returns an Extractor enforcing maxBytes.
func New(maxBytes int64) *Extractor {
	return &Extractor{MaxBytes: maxBytes}
}

// Load reads path and returns its text. The source name is the file's base name.
func (e *Extractor) Load(ctx context.Context, path string) (Source, error) {
	if err := ctx.Err(); err != nil {
		return Source{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return Source{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return Source{}, fmt.Errorf("%s: %w: is a directory", path, ErrUnsupported)
	}
	if e.MaxBytes > 0 && info.Size() > e.MaxBytes {
		return Source{}, fmt.Errorf("%s: %w (%d > %d bytes)", path, ErrTooLarge, info.Size(), e.MaxBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Source{}, fmt.Errorf("read %s: %w", path, err)
	}
	src, err := e.FromBytes(ctx, filepath.Base(path), data)
	if err != nil {
		return Source{}, err
	}
	src.Path = path
	return src, nil
}

// FromBytes extracts text from an in-memory document. name selects the
// format by extension.
func (e *Extractor) FromBytes(ctx context.Context, name string, data []byte) (Source, error) {
	if e.MaxBytes > 0 && int64(len(data)) > e.MaxBytes {
		return Source{}, fmt.Errorf("%s: %w (%d > %d bytes)", name, ErrTooLarge, len(data), e.MaxBytes)
	}
	var (
		text string
		err  error
	)
	switch Kind(name) {
	case KindPDF:
		text, err = pdfText(ctx, bytes.NewReader(data), int64(len(data)))
	case KindText:
		text = plainText(data)
	default:
		return Source{}, fmt.Errorf("%s: %w", name, ErrUnsupported)
	}
	if err != nil {
		return Source{}, fmt.Errorf("%s: %w", name, err)
	}
	return Source{Name: name, Text: text}, nil
}

// DocumentKind classifies a file by extension.
type DocumentKind int

const (
	KindUnknown DocumentKind = iota
	KindPDF
	KindText
)

// Kind returns the document kind implied by name's extension.
func Kind(name string) DocumentKind {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return KindPDF
	case ".txt", ".text", ".md":
		return KindText
	default:
		return KindUnknown
	}
}

func plainText(data []byte) string {
	return string(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))
}
