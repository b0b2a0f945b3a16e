package ios

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/frantjc/alticon/internal/alticonutil"
)

const (
	// ContentsJSONName is the name of an asset catalog
	// directory's manifest.
	ContentsJSONName = "Contents.json"
	// ExtAppIconSet is the extension of an app icon set directory.
	ExtAppIconSet = ".appiconset"
)

// Contents is the manifest of an .appiconset directory.
type Contents struct {
	Images []ContentsImage `json:"images"`
	Info   ContentsInfo    `json:"info"`
}

type ContentsImage struct {
	Filename string `json:"filename,omitempty"`
	Idiom    string `json:"idiom"`
	Platform string `json:"platform,omitempty"`
	Scale    string `json:"scale,omitempty"`
	Size     string `json:"size"`
}

type ContentsInfo struct {
	Author  string `json:"author"`
	Version int    `json:"version"`
}

func NewContents(images ...ContentsImage) *Contents {
	return &Contents{
		Images: images,
		Info: ContentsInfo{
			Author:  "xcode",
			Version: 1,
		},
	}
}

// Source returns the entry that designates the source image.
func (c *Contents) Source() (*ContentsImage, bool) {
	for i, image := range c.Images {
		if image.Size == SourceSize && image.Scale == "" {
			return &c.Images[i], true
		}
	}

	return nil, false
}

// Filenames returns the names of every file referenced by c.
func (c *Contents) Filenames() []string {
	filenames := []string{}

	for _, image := range c.Images {
		if image.Filename != "" {
			filenames = append(filenames, image.Filename)
		}
	}

	return filenames
}

func DecodeContents(r io.Reader) (*Contents, error) {
	contents := &Contents{}

	if err := json.NewDecoder(r).Decode(contents); err != nil {
		return nil, err
	}

	return contents, nil
}

func ReadContents(dir string) (*Contents, error) {
	f, err := os.Open(filepath.Join(dir, ContentsJSONName))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return DecodeContents(f)
}

// MarshalContents encodes c the way Xcode does: two-space
// indentation and a trailing newline.
func MarshalContents(c *Contents) ([]byte, error) {
	var (
		buf = new(bytes.Buffer)
		enc = json.NewEncoder(buf)
	)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	if err := enc.Encode(c); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func WriteContents(dir string, c *Contents) error {
	b, err := MarshalContents(c)
	if err != nil {
		return err
	}

	return alticonutil.WriteBytes(filepath.Join(dir, ContentsJSONName), b, 0o644)
}
