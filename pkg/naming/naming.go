// Package naming maps recipe, brand and step identifiers to the file names used
// for exported images and archives.
//
// Sequence positions are used as given: no renumbering or deduplication happens
// here, so duplicate positions produce duplicate names.
package naming

import (
	"fmt"
	"regexp"
)

const (
	// ImageExtension is the fixed extension of every exported image.
	ImageExtension = ".jpg"
	// ArchiveSuffix is appended to the sanitized recipe name of a batch archive.
	ArchiveSuffix = "-recipe-images.zip"
)

// Path separators are folded in with whitespace so a name never spans
// directories inside an archive or output location.
var separatorRun = regexp.MustCompile(`[\s/\\]+`)

// Sanitize replaces every run of whitespace and path separators with a single
// hyphen.
func Sanitize(s string) string {
	return separatorRun.ReplaceAllString(s, "-")
}

// ItemFileName names an image inside a batch archive.
func ItemFileName(brandName string, sequencePosition int) string {
	return fmt.Sprintf("step-%d-%s%s", sequencePosition, Sanitize(brandName), ImageExtension)
}

// SingleExportFileName names an image saved on its own.
func SingleExportFileName(collectionName string, sequencePosition int, brandName string) string {
	return fmt.Sprintf("%s-step-%d-%s%s", Sanitize(collectionName), sequencePosition, Sanitize(brandName), ImageExtension)
}

// ArchiveFileName names the archive produced for a recipe.
func ArchiveFileName(collectionName string) string {
	return Sanitize(collectionName) + ArchiveSuffix
}

// FolderName is the directory used inside an archive when entries are grouped by recipe.
func FolderName(collectionName string) string {
	return Sanitize(collectionName)
}
