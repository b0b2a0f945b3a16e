package alticonblob

import (
	"context"

	"github.com/frantjc/alticon/internal/alticonutil"
	"gocloud.dev/blob"
)

// Copy writes the object at key to the local file name unchanged,
// replacing any file already there.
func Copy(ctx context.Context, bucket *blob.Bucket, key, name string) error {
	r, err := bucket.NewReader(ctx, key, nil)
	if err != nil {
		return err
	}
	defer r.Close()

	return alticonutil.WriteFile(name, r, 0o644)
}
