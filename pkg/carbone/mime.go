package carbone

import (
	"mime"
	"path/filepath"
	"strings"
)

const (
	contentTypeJSON   = "application/json"
	contentTypeBinary = "application/octet-stream"
)

// Template formats the Service accepts. Registered explicitly because the
// system mime tables often lack the OpenDocument types.
var templateTypes = map[string]string{
	".odt":   "application/vnd.oasis.opendocument.text",
	".ods":   "application/vnd.oasis.opendocument.spreadsheet",
	".odp":   "application/vnd.oasis.opendocument.presentation",
	".odg":   "application/vnd.oasis.opendocument.graphics",
	".docx":  "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xlsx":  "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".pptx":  "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".doc":   "application/msword",
	".xls":   "application/vnd.ms-excel",
	".ppt":   "application/vnd.ms-powerpoint",
	".html":  "text/html",
	".htm":   "text/html",
	".xml":   "application/xml",
	".xhtml": "application/xhtml+xml",
	".txt":   "text/plain",
	".md":    "text/markdown",
	".csv":   "text/csv",
	".svg":   "image/svg+xml",
	".idml":  "application/vnd.adobe.indesign-idml-package",
}

// contentTypeFor guesses a MIME type from the file name extension.
func contentTypeFor(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return contentTypeBinary
	}
	if ct, ok := templateTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return contentTypeBinary
}

// isJSON reports whether a Content-Type header names the envelope type.
func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	}
	return strings.EqualFold(mediaType, contentTypeJSON)
}

// reportName extracts the filename parameter of a Content-Disposition header.
func reportName(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil || params["filename"] == "" {
		return ""
	}
	return filepath.Base(params["filename"])
}
