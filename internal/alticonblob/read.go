package alticonblob

import (
	"context"
	"errors"
	"io"
	"path"
	"slices"

	"github.com/frantjc/alticon/internal/alticonregexp"
	"gocloud.dev/blob"
)

// ListSourceImages returns the keys of the .png and .jpg images at the top
// level of bucket, sorted. Hidden files and everything else are ignored.
func ListSourceImages(ctx context.Context, bucket *blob.Bucket) ([]string, error) {
	var (
		keys = []string{}
		iter = bucket.List(&blob.ListOptions{Delimiter: "/"})
	)
	for {
		obj, err := iter.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, err
		}

		base := path.Base(obj.Key)
		if obj.IsDir || alticonregexp.IsHidden(base) || !alticonregexp.IsSourceImage(base) {
			continue
		}

		keys = append(keys, obj.Key)
	}

	slices.Sort(keys)
	return keys, nil
}
