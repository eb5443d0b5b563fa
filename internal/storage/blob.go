package storage

import "io"

// BlobStore archives exported test documents. The fs implementation is the
// only one today; the interface keeps the export path testable.
type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
}
