package ios

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

const (
	IdiomUniversal = "universal"
	PlatformIOS    = "ios"
	// SourceSize is the size of the catalog entry that
	// designates the source image itself.
	SourceSize = "1024x1024"
)

// IconSize is one required variant of an app icon. Width and Height are in
// points; Scale is a multiplier such as "2x", or empty to use the source as-is.
type IconSize struct {
	Idiom    string
	Platform string
	Width    float64
	Height   float64
	Scale    string
}

var appIconSizes = []IconSize{
	{IdiomUniversal, PlatformIOS, 20, 20, "2x"},
	{IdiomUniversal, PlatformIOS, 20, 20, "3x"},
	{IdiomUniversal, PlatformIOS, 29, 29, "2x"},
	{IdiomUniversal, PlatformIOS, 29, 29, "3x"},
	{IdiomUniversal, PlatformIOS, 38, 38, "2x"},
	{IdiomUniversal, PlatformIOS, 38, 38, "3x"},
	{IdiomUniversal, PlatformIOS, 40, 40, "2x"},
	{IdiomUniversal, PlatformIOS, 40, 40, "3x"},
	{IdiomUniversal, PlatformIOS, 60, 60, "2x"},
	{IdiomUniversal, PlatformIOS, 60, 60, "3x"},
	{IdiomUniversal, PlatformIOS, 64, 64, "2x"},
	{IdiomUniversal, PlatformIOS, 64, 64, "3x"},
	{IdiomUniversal, PlatformIOS, 68, 68, "2x"},
	{IdiomUniversal, PlatformIOS, 76, 76, "2x"},
	{IdiomUniversal, PlatformIOS, 83.5, 83.5, "2x"},
	{IdiomUniversal, PlatformIOS, 1024, 1024, ""},
}

// AppIconSizes returns the fixed, ordered icon size catalog.
// Generated filenames and manifest order follow this order.
func AppIconSizes() []IconSize {
	return slices.Clone(appIconSizes)
}

func formatPoints(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Size returns the manifest representation of the size, e.g. "83.5x83.5".
func (s IconSize) Size() string {
	return formatPoints(s.Width) + "x" + formatPoints(s.Height)
}

// IsSource reports whether s designates the source image
// rather than a resample target.
func (s IconSize) IsSource() bool {
	return s.Scale == "" && s.Size() == SourceSize
}

// ScaleFactor parses Scale, e.g. "2x" is 2.
func (s IconSize) ScaleFactor() (float64, error) {
	if s.Scale == "" {
		return 1, nil
	}

	factor, err := strconv.ParseFloat(strings.TrimSuffix(strings.ToLower(s.Scale), "x"), 64)
	if err != nil || !strings.HasSuffix(strings.ToLower(s.Scale), "x") || factor <= 0 || math.IsInf(factor, 0) || math.IsNaN(factor) {
		return 0, fmt.Errorf("malformed scale %q", s.Scale)
	}

	return factor, nil
}

// Pixels returns the pixel dimensions of s.
func (s IconSize) Pixels() (int, int, error) {
	factor, err := s.ScaleFactor()
	if err != nil {
		return 0, 0, err
	}

	width, height := int(math.Round(s.Width*factor)), int(math.Round(s.Height*factor))
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("invalid size %s@%s", s.Size(), s.Scale)
	}

	return width, height, nil
}

// Filename is the deterministic name of the image resampled for s.
// The source entry has no generated name; it keeps the name of the source.
func (s IconSize) Filename() string {
	if s.Scale == "" {
		return ""
	}

	return fmt.Sprintf("icon-%s@%s.png", strings.ReplaceAll(s.Size(), ".", "_"), s.Scale)
}

// ContentsImage returns the manifest entry for s referencing filename.
func (s IconSize) ContentsImage(filename string) ContentsImage {
	return ContentsImage{
		Filename: filename,
		Idiom:    s.Idiom,
		Platform: s.Platform,
		Scale:    s.Scale,
		Size:     s.Size(),
	}
}
