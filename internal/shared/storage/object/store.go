// Package object stores export artifacts in a filesystem or S3 bucket,
// namespaced per owner.
package object

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"resume-builder/internal/shared/util"
)

// ErrNotFound is returned by Open for keys that do not exist.
var ErrNotFound = errors.New("object not found")

// Object describes a stored artifact.
type Object struct {
	Key         string `json:"key"`
	ContentType string `json:"contentType"`
	SizeBytes   int64  `json:"sizeBytes"`
}

// ObjectStore defines the contract for saving and retrieving binary objects.
type ObjectStore interface {
	Put(ctx context.Context, ownerID, fileName, contentType string, r io.Reader) (Object, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// OwnerPrefix is the key namespace holding ownerID's objects.
func OwnerPrefix(ownerID string) string {
	return util.HashKey(ownerID)
}

// OwnedBy reports whether key lives in ownerID's namespace.
func OwnedBy(key, ownerID string) bool {
	clean := path.Clean(strings.TrimLeft(key, "/"))
	if strings.HasPrefix(clean, "..") {
		return false
	}
	return strings.HasPrefix(clean, OwnerPrefix(ownerID)+"/")
}

// FileName returns the display file name of key, without its unique prefix.
func FileName(key string) string {
	base := path.Base(key)
	if i := strings.IndexByte(base, '_'); i >= 0 {
		return base[i+1:]
	}
	return base
}
