package driven

import "context"

// FileStore persists uploaded document files and returns the path the
// document record should carry.
type FileStore interface {
	// Save writes the file content under the user's namespace and returns
	// the stored path.
	Save(ctx context.Context, userID, filename string, content []byte) (string, error)

	// Delete removes a stored file. Deleting a missing file is not an error.
	Delete(ctx context.Context, path string) error
}
