package ports

import "context"

// AssetStore deletes photo blobs by bucket-relative path. Deleting a
// path that no longer exists is not an error; any other failure is, and
// callers decide whether it may block the operation (for review cleanup
// it never does).
type AssetStore interface {
	Delete(ctx context.Context, path string) error
}
