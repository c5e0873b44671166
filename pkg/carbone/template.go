package carbone

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// TemplateFile is a template document, either on disk or in memory.
//
// Disk-backed templates are checked and stat'ed once in NewTemplateFile; the
// content itself is read on demand by Content.
type TemplateFile struct {
	name    string
	path    string
	info    fs.FileInfo
	content []byte
}

// NewTemplateFile returns a template backed by the regular file at path.
func NewTemplateFile(path string) (*TemplateFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, path)
		}
		return nil, fmt.Errorf("stat template %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrTemplateNotFound, path)
	}

	return &TemplateFile{
		name: filepath.Base(path),
		path: path,
		info: info,
	}, nil
}

// NewTemplateBytes returns an in-memory template. name is used as the upload
// file name, so its extension decides the MIME type sent to the Service.
func NewTemplateBytes(name string, content []byte) (*TemplateFile, error) {
	if name == "" {
		return nil, &EmptyValueError{Kind: kindTemplateName}
	}
	return &TemplateFile{name: name, content: content}, nil
}

func (t *TemplateFile) Name() string { return t.name }

// Path returns the file path, or "" for in-memory templates.
func (t *TemplateFile) Path() string { return t.path }

// Size is the size captured at construction time.
func (t *TemplateFile) Size() int64 {
	if t.info != nil {
		return t.info.Size()
	}
	return int64(len(t.content))
}

// Content returns the template bytes, reading the file for disk-backed templates.
func (t *TemplateFile) Content() ([]byte, error) {
	if t.path == "" {
		return t.content, nil
	}
	content, err := os.ReadFile(t.path)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", t.path, err)
	}
	return content, nil
}

// GenerateID derives the content-addressed TemplateID of the template.
func (t *TemplateFile) GenerateID(payload string) (TemplateID, error) {
	content, err := t.Content()
	if err != nil {
		return TemplateID{}, err
	}
	return GenerateTemplateID(content, payload)
}

// GenerateTemplateID hashes payload followed by content with SHA-256 and
// returns the lowercase hex digest as a TemplateID. The payload goes first;
// swapping the order changes the id. An empty payload is the same as none.
func GenerateTemplateID(content []byte, payload string) (TemplateID, error) {
	h := sha256.New()
	h.Write([]byte(payload))
	h.Write(content)
	return NewTemplateID(hex.EncodeToString(h.Sum(nil)))
}
