package alticonblob

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
)

// OpenBucket opens the bucket holding source images. s is either a
// gocloud.dev/blob URL (file://, mem://, s3://, ...) or a local directory.
func OpenBucket(ctx context.Context, s string) (*blob.Bucket, error) {
	if strings.Contains(s, "://") {
		return blob.OpenBucket(ctx, s)
	}

	dir, err := filepath.Abs(s)
	if err != nil {
		return nil, err
	}

	bucket, err := fileblob.OpenBucket(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dir, err)
	}

	return bucket, nil
}
