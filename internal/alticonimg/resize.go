package alticonimg

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/frantjc/alticon/internal/alticonerr"
	"github.com/frantjc/alticon/ios"
	"golang.org/x/image/draw"
)

// Resize resamples src to the pixel dimensions of size and
// returns the result encoded as a PNG along with its width and height.
// The catalog's source entry is not a resample target.
func Resize(src image.Image, size ios.IconSize) ([]byte, int, int, error) {
	if size.Scale == "" {
		return nil, 0, 0, alticonerr.New(alticonerr.KindResample, fmt.Errorf("size %s has no scale to resample to", size.Size()))
	}

	width, height, err := size.Pixels()
	if err != nil {
		return nil, 0, 0, alticonerr.New(alticonerr.KindResample, err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	buf := new(bytes.Buffer)
	if err = Encode(buf, dst); err != nil {
		return nil, 0, 0, err
	}

	return buf.Bytes(), width, height, nil
}

// Encode writes img to w as a PNG.
func Encode(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return alticonerr.New(alticonerr.KindEncode, err)
	}

	return nil
}
