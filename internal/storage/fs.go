// Package storage archives emitted certificate artifacts on the local
// filesystem so a re-send can reuse the rendered bytes.
package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

type Archive struct{ base string }

func NewArchive(base string) (*Archive, error) {
	if base == "" {
		base = "./data/certificates"
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, err
	}
	return &Archive{base: base}, nil
}

// Put stores the artifact under key, creating parent directories as
// needed. Keys are certificate ids plus an extension, so a re-emission
// overwrites the previous copy of the same certificate.
func (a *Archive) Put(key string, r io.Reader) (string, error) {
	if key == "" {
		return "", errors.New("empty key")
	}
	dst := filepath.Join(a.base, filepath.Clean(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return dst, nil
}

func (a *Archive) Get(key string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(a.base, filepath.Clean(key)))
}
