package attachment

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"ai-chatbot-be/pkg/blobstore"

	"golang.org/x/sync/errgroup"
)

// MaxFileSize is the per-file ceiling for one upload. Checked before any
// store call so an oversized batch never writes a single object.
const MaxFileSize = 10 << 20 // 10 MiB

// ErrFileTooLarge is returned when any file in a batch exceeds MaxFileSize.
type ErrFileTooLarge struct {
	FileName string
	Size     int64
}

func (e *ErrFileTooLarge) Error() string {
	return fmt.Sprintf("file %q exceeds the %d byte limit (%d bytes)", e.FileName, int64(MaxFileSize), e.Size)
}

// File is one in-memory upload candidate.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Stored describes one object written to the blob store.
type Stored struct {
	StorageKey  string
	FileName    string
	ContentType string
}

type Uploader struct {
	store blobstore.Store
	now   func() time.Time
}

func NewUploader(store blobstore.Store) *Uploader {
	return &Uploader{
		store: store,
		now:   time.Now,
	}
}

// UploadBatch stores every file and returns one Stored record per input,
// in input order. Files upload concurrently but results are indexed
// positionally, so result[i] always belongs to files[i] regardless of
// completion order. Any failure fails the whole batch.
func (u *Uploader) UploadBatch(ctx context.Context, userID string, files []File) ([]Stored, error) {
	if len(files) == 0 {
		return nil, nil
	}

	for _, f := range files {
		if int64(len(f.Data)) > MaxFileSize {
			return nil, &ErrFileTooLarge{FileName: f.Name, Size: int64(len(f.Data))}
		}
	}

	now := u.now()
	results := make([]Stored, len(files))

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		key := DeriveKey(userID, now, f.Name)
		g.Go(func() error {
			opts := blobstore.PutOptions{
				ContentType:        f.ContentType,
				ContentDisposition: fmt.Sprintf("attachment; filename=%q", f.Name),
				Metadata: map[string]string{
					"original-name": f.Name,
					"uploaded-at":   now.UTC().Format(time.RFC3339),
					"size":          strconv.Itoa(len(f.Data)),
					"uploaded-by":   userID,
				},
				Encrypt: true,
			}
			if err := u.store.Put(gctx, key, bytes.NewReader(f.Data), int64(len(f.Data)), opts); err != nil {
				return err
			}
			results[i] = Stored{
				StorageKey:  key,
				FileName:    f.Name,
				ContentType: f.ContentType,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
