package alticonimg

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	pngcgbi "github.com/928799934/go-png-cgbi"
	"github.com/frantjc/alticon/internal/alticonerr"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// Decode decodes a PNG or JPEG. PNGs that Xcode has
// "crushed" into Apple's CgBI variant are decoded too.
func Decode(r io.Reader) (image.Image, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, alticonerr.New(alticonerr.KindDecode, err)
	}

	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		if bytes.HasPrefix(b, pngSignature) {
			if cgbiImg, cgbiErr := pngcgbi.Decode(bytes.NewReader(b)); cgbiErr == nil {
				return cgbiImg, nil
			}
		}

		return nil, alticonerr.New(alticonerr.KindDecode, err)
	}

	return img, nil
}

func DecodeFile(name string) (image.Image, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, alticonerr.New(alticonerr.KindFilesystem, err)
	}
	defer f.Close()

	img, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}

	return img, nil
}
