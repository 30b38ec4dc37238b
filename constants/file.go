package constants

import "strings"

type FileFormat string

const (
	PDF  FileFormat = "PDF"
	TXT  FileFormat = "TXT"
	CSV  FileFormat = "CSV"
	XLSX FileFormat = "XLSX"
)

// AllowedExtensions holds the default file extensions for submission ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"txt":  {},
	"csv":  {},
	"xlsx": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// MapExtToFormat returns "" for unsupported extensions.
func MapExtToFormat(ext string) FileFormat {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "txt", "text":
		return TXT
	case "csv":
		return CSV
	case "xlsx", "xlsm":
		return XLSX
	}
	return ""
}

// IsTabular reports whether the format is a batch sheet rather than a paged document.
func (f FileFormat) IsTabular() bool {
	return f == CSV || f == XLSX
}
