package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"compras/internal/filter"
)

// Form field of the upload widget.
const uploadField = "file"

var (
	ErrMissingFile    = errors.New("no file in upload")
	ErrUploadTooLarge = errors.New("upload exceeds size limit")
)

// SelectionFromRequest decodes the filter sidebar state from the query
// string. Invalid dates are dropped and their parameter names returned.
func SelectionFromRequest(r *http.Request) (filter.Selection, []string) {
	return filter.ParseSelection(r.URL.Query())
}

// ParseLimit reads a positive integer parameter, falling back to def and
// capping at max.
func ParseLimit(q url.Values, key string, def, max int) int {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

// Upload is a file received from the upload form.
type Upload struct {
	Name string
	Data []byte
}

// ReadUpload reads the single multipart file of an upload request,
// refusing bodies larger than maxBytes.
func ReadUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (Upload, error) {
	if r.ContentLength > maxBytes {
		return Upload{}, ErrUploadTooLarge
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return Upload{}, ErrUploadTooLarge
		}
		return Upload{}, fmt.Errorf("parse multipart form: %w", err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(uploadField)
	if errors.Is(err, http.ErrMissingFile) {
		return Upload{}, ErrMissingFile
	}
	if err != nil {
		return Upload{}, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return Upload{}, fmt.Errorf("read upload: %w", err)
	}
	name := sanitizeInput(filepath.Base(header.Filename))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "upload"
	}
	return Upload{Name: name, Data: data}, nil
}

// sanitizeInput trims whitespace and drops control characters other than
// tab and newlines.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

// isHTMX reports a request issued by htmx.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
