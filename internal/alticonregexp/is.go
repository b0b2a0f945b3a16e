package alticonregexp

import "strings"

func IsSourceImage(name string) bool {
	return SourceImage.MatchString(name)
}

func IsIconSet(name string) bool {
	return IconSet.MatchString(name)
}

func IsIconName(name string) bool {
	return IconName.MatchString(name)
}

// IsHidden reports whether the base name should be skipped
// when walking directories or listing buckets.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
