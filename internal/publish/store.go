// Package publish mirrors the build output to an object store bucket.
package publish

import (
	"context"
	"io"
	"path"
	"strings"
)

// DigestKey is the object metadata key holding the hex SHA-256 of the content.
const DigestKey = "sha256"

// ObjectInfo describes a remote object.
type ObjectInfo struct {
	Name   string
	Size   int64
	SHA256 string
}

// ObjectStore is the subset of a bucket API the mirror needs.
type ObjectStore interface {
	// List returns every object whose name starts with prefix.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	Upload(ctx context.Context, name string, r io.Reader, contentType, digest string) error
	Delete(ctx context.Context, name string) error
	// Target names the destination in logs and history, e.g. gs://bucket/prefix.
	Target(prefix string) string
}

// ContentTypeFor returns the Content-Type used for an output file.
func ContentTypeFor(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".js":
		return "text/javascript; charset=utf-8"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".m4a":
		return "audio/mp4"
	case ".ogg":
		return "audio/ogg"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
