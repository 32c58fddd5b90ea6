package service

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

var ErrAvatarNotFound = errors.New("avatar not found")

// DiskAvatars stores avatars as files in a single directory.
type DiskAvatars struct {
	dir      string
	maxBytes int64
}

func NewDiskAvatars(dir string, maxBytes int64) (*DiskAvatars, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create avatar dir: %w", err)
	}
	return &DiskAvatars{dir: dir, maxBytes: maxBytes}, nil
}

func (d *DiskAvatars) Save(r io.Reader, ext string) (string, error) {
	name := uuid.NewString() + ext
	path := filepath.Join(d.dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}

	n, err := io.Copy(f, io.LimitReader(r, d.maxBytes+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && n > d.maxBytes {
		err = ErrAvatarTooLarge
	}
	if err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return name, nil
}

// Path rejects names that would escape the avatar directory.
func (d *DiskAvatars) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", ErrAvatarNotFound
	}
	path := filepath.Join(d.dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", ErrAvatarNotFound
	}
	return path, nil
}

func (d *DiskAvatars) Remove(name string) error {
	path, err := d.Path(name)
	if err != nil {
		return err
	}
	return os.Remove(path)
}
