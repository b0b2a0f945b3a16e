package alticonregexp

import "regexp"

var (
	SourceImage = regexp.MustCompile(`(?i)^[^/]+\.(png|jpg)$`)
	IconSet     = regexp.MustCompile(`(?i)^[^/]+\.appiconset$`)
	// IconName is the subset of names that can appear unquoted
	// in a space-separated build setting value.
	IconName = regexp.MustCompile(`^[^\s"\\]+$`)
)
