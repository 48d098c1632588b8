package media

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// MaxPhotoBytes bounds a stored photo. Inline base64 payloads are limited to
// 50 000 characters by the schema; decoded uploads get the same order of
// magnitude.
const MaxPhotoBytes = 5 << 20

const MaxInlineChars = 50000

var (
	ErrTooLarge    = errors.New("media: file exceeds size limit")
	ErrBadEncoding = errors.New("media: invalid base64 payload")
)

// Store writes photos content-addressed under a root directory and hands out
// stable /uploads/ URLs. The same bytes always map to the same URL.
type Store struct {
	root string
}

func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("media: creating %s: %w", root, err)
	}
	return &Store{root: root}, nil
}

func (s *Store) Root() string { return s.root }

// Save stores the content and returns its public URL path. ext should carry
// the dot ("." + format); unknown extensions fall back to .bin.
func (s *Store) Save(r io.Reader, ext string) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxPhotoBytes+1))
	if err != nil {
		return "", fmt.Errorf("media: reading upload: %w", err)
	}
	if len(data) > MaxPhotoBytes {
		return "", ErrTooLarge
	}
	return s.SaveBytes(data, ext)
}

func (s *Store) SaveBytes(data []byte, ext string) (string, error) {
	if len(data) > MaxPhotoBytes {
		return "", ErrTooLarge
	}
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif":
	default:
		ext = ".bin"
	}
	sum := sha256.Sum256(data)
	name := hex.EncodeToString(sum[:]) + ext

	path := filepath.Join(s.root, name)
	if _, err := os.Stat(path); err == nil {
		return "/uploads/" + name, nil
	}

	// Write through a temp file so readers never observe partial content.
	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("media: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("media: writing: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("media: closing: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("media: renaming: %w", err)
	}
	return "/uploads/" + name, nil
}

// SaveBase64 accepts the inline representation clients send: either a bare
// base64 string or a data: URL. The stored photo keeps a stable URL; callers
// that prefer the inline shim keep the original string instead.
func (s *Store) SaveBase64(payload string) (string, error) {
	if len(payload) > MaxInlineChars {
		return "", ErrTooLarge
	}
	ext := ".jpg"
	if strings.HasPrefix(payload, "data:") {
		rest := payload[len("data:"):]
		semi := strings.Index(rest, ";base64,")
		if semi < 0 {
			return "", ErrBadEncoding
		}
		switch rest[:semi] {
		case "image/png":
			ext = ".png"
		case "image/webp":
			ext = ".webp"
		case "image/gif":
			ext = ".gif"
		}
		payload = rest[semi+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", ErrBadEncoding
	}
	return s.SaveBytes(data, ext)
}

// Open resolves a stored name back to a file for serving. Rejects path
// escapes.
func (s *Store) Open(name string) (*os.File, error) {
	clean := filepath.Base(name)
	if clean != name || strings.HasPrefix(name, ".") {
		return nil, os.ErrNotExist
	}
	return os.Open(filepath.Join(s.root, clean))
}
