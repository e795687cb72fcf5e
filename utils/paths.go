// utils/paths.go
package utils

import "strings"

// JoinURL joins a base URL and a relative path with exactly one slash between them.
func JoinURL(base, path string) string {
	path = strings.TrimPrefix(path, "/")
	if base == "" {
		return path
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + path
}

// ImagePath rewrites fixture-relative image paths ("/SLP/logos/x.png") onto the fixture base.
// Anything else (absolute URLs, other roots) is returned unchanged.
func ImagePath(base, imagePath string) string {
	if rest, ok := strings.CutPrefix(imagePath, "/SLP/"); ok {
		return JoinURL(base, rest)
	}
	return imagePath
}
