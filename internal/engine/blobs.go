package engine

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// NewBlobPath allocates a unique path under the blob directory for the
// capture layer to write an image or file payload into. The engine stores
// such paths as content references but never deletes the files behind
// them; blob cleanup is the caller's responsibility.
func (e *Engine) NewBlobPath(ext string) string {
	ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
	name := uuid.NewString()
	if ext != "" {
		name += "." + ext
	}
	return filepath.Join(e.blobDir, name)
}

// BlobDir returns the directory that holds referenced blob files.
func (e *Engine) BlobDir() string {
	return e.blobDir
}
