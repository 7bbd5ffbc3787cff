package blobstore

import (
	"context"
	"io"
	"time"
)

// maxDeleteBatch is the object-count ceiling of a single batch delete call
// on S3-compatible stores.
const maxDeleteBatch = 1000

type PutOptions struct {
	ContentType        string
	ContentDisposition string
	Metadata           map[string]string
	Encrypt            bool
}

// Store provides access to object storage. Listing is deliberately absent:
// every key this system touches is recorded on a message row.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, opts PutOptions) error
	Get(ctx context.Context, key string) ([]byte, error)
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
	// DeleteMany removes the given keys, transparently chunking at the
	// underlying 1000-objects-per-call limit.
	DeleteMany(ctx context.Context, keys []string) error
}

func chunkKeys(keys []string, size int) [][]string {
	if size <= 0 {
		size = maxDeleteBatch
	}
	var chunks [][]string
	for len(keys) > size {
		chunks = append(chunks, keys[:size])
		keys = keys[size:]
	}
	if len(keys) > 0 {
		chunks = append(chunks, keys)
	}
	return chunks
}
