package storage

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// ContentTypeXLSX is the MIME type of Office Open XML workbooks.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// knownTypes covers the files this service writes; mime.TypeByExtension
// depends on the host's mime tables and misses .xlsx on minimal images.
var knownTypes = map[string]string{
	".xlsx": ContentTypeXLSX,
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// DetectContentType determines the MIME type of a file.
//
// Detection priority:
// 1. providedType, when non-empty
// 2. the file extension
// 3. sniffing the first 512 bytes of data, when data is non-nil
// 4. "application/octet-stream"
func DetectContentType(providedType, filename string, data io.Reader) string {
	if providedType != "" {
		return providedType
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ct, ok := knownTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}

	if data != nil {
		buffer := make([]byte, 512)
		n, err := io.ReadFull(data, buffer)
		if err == nil || err == io.EOF || err == io.ErrUnexpectedEOF {
			return http.DetectContentType(buffer[:n])
		}
	}

	return "application/octet-stream"
}

// baseType strips parameters such as charset and lowercases the type.
func baseType(contentType string) string {
	t, _, _ := strings.Cut(contentType, ";")
	return strings.TrimSpace(strings.ToLower(t))
}

// IsSpreadsheet returns true for xlsx workbooks.
func IsSpreadsheet(contentType string) bool {
	return baseType(contentType) == ContentTypeXLSX
}
