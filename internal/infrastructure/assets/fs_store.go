package assets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"reviewdesk/internal/errs"
	"reviewdesk/internal/ports"
)

// FSStore keeps photo blobs on the local filesystem under a single root,
// laid out as <root>/<bucket>/<object>.
type FSStore struct {
	root string
}

var _ ports.AssetStore = (*FSStore)(nil)

func NewFSStore(root string) *FSStore {
	return &FSStore{root: root}
}

// Delete removes the blob at a bucket-relative path. A missing blob is
// not an error; the review flow deletes at most once per decision and a
// retried decision may find it already gone.
func (s *FSStore) Delete(ctx context.Context, path string) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	full, err := s.resolve(path)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return errs.Wrapf(err, "delete asset %q", path)
	}
	return nil
}

// resolve joins a bucket-relative path under root, refusing anything
// that would escape it.
func (s *FSStore) resolve(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("asset path is required")
	}

	cleaned := filepath.Clean(filepath.FromSlash(trimmed))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("asset path %q escapes the store root", path)
	}
	return filepath.Join(s.root, cleaned), nil
}
