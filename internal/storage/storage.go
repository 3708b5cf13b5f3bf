// Package storage keeps uploaded documents and archived receipts.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var ErrInvalidKey = errors.New("invalid object key")

type BlobStore interface {
	// Put stores the object and returns its public URL.
	Put(ctx context.Context, bucket, key, contentType string, body io.Reader) (string, error)
}

// LocalStore writes objects below Root as <bucket>/<key>, served from BaseURL.
type LocalStore struct {
	Root    string
	BaseURL string
}

func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &LocalStore{Root: root, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalStore) Put(ctx context.Context, bucket, key, _ string, body io.Reader) (string, error) {
	rel, err := cleanKey(bucket, key)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	full := filepath.Join(s.Root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}

	// write to a temp file first so readers never see half an object
	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return "", err
	}

	return s.BaseURL + "/" + escapePath(rel), nil
}

func cleanKey(bucket, key string) (string, error) {
	if bucket == "" || key == "" {
		return "", ErrInvalidKey
	}
	rel := path.Clean(bucket + "/" + key)
	if strings.HasPrefix(rel, "../") || strings.HasPrefix(rel, "/") || rel == ".." || !strings.HasPrefix(rel, bucket+"/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return rel, nil
}

func escapePath(rel string) string {
	parts := strings.Split(rel, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
