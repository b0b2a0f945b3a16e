package alticonblob

import (
	"path"
	"strings"
)

// Stem returns the base name of key without its extension,
// which names the icon set made from it.
func Stem(key string) string {
	base := path.Base(key)
	return strings.TrimSuffix(base, path.Ext(base))
}
