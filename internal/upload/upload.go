// Package upload stores chat images on local disk and serves them back.
package upload

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/apperr"
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type LocalStore struct {
	dir      string
	baseURL  string
	maxBytes int64
}

func NewLocalStore(dir, baseURL string, maxBytes int64) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create upload dir %s", dir)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/"), maxBytes: maxBytes}, nil
}

// SaveImage writes r under a fresh name and returns its public URL. The
// content type is sniffed, not trusted from the client.
func (s *LocalStore) SaveImage(ctx context.Context, r io.Reader) (string, error) {
	limited := io.LimitReader(r, s.maxBytes+1)

	head := make([]byte, 512)
	n, err := io.ReadFull(limited, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", apperr.Internal("failed to read upload", errors.WithStack(err))
	}
	head = head[:n]
	if n == 0 {
		return "", apperr.Validation("image is empty")
	}
	ext, ok := imageExtensions[http.DetectContentType(head)]
	if !ok {
		return "", apperr.Validation("only jpeg, png, gif and webp images are accepted")
	}

	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", apperr.Internal("failed to store upload", errors.WithStack(err))
	}
	written, err := io.Copy(f, io.MultiReader(bytes.NewReader(head), limited))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", apperr.Internal("failed to store upload", errors.WithStack(err))
	}
	if written > s.maxBytes {
		_ = os.Remove(path)
		return "", apperr.Validation("image is too large")
	}
	if err := ctx.Err(); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return s.baseURL + "/" + name, nil
}

// Remove deletes a file previously returned by SaveImage. Unknown or
// already removed files are not an error.
func (s *LocalStore) Remove(url string) error {
	name := strings.TrimPrefix(url, s.baseURL+"/")
	if name == "" || name != filepath.Base(name) {
		return apperr.Validation("not a stored upload")
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "remove upload %s", name)
	}
	return nil
}

// Handler serves stored files under the base URL path. Directories are
// reported as missing so the upload dir cannot be listed.
func (s *LocalStore) Handler() http.Handler {
	return http.StripPrefix(s.baseURL+"/", http.FileServer(filesOnly{http.Dir(s.dir)}))
}

type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}

func (s *LocalStore) BaseURL() string { return s.baseURL }
