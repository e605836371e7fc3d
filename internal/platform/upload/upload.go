// Package upload reads PDF files out of multipart requests.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/gabriel-vasile/mimetype"

	"github.com/dhriti/dhriti-backend/internal/platform/httpx"
)

// ContentTypePDF is the only accepted upload type.
const ContentTypePDF = "application/pdf"

// DefaultMaxBytes caps a multipart body when no limit is configured.
const DefaultMaxBytes int64 = 20 << 20

// ErrNoFile reports a request without the expected file part.
var ErrNoFile = errors.New("upload: file missing")

// File is an uploaded file held in memory.
type File struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}

// ReadPDF parses the multipart body of r and returns the PDF in field.
// Form values remain available through r.FormValue afterwards.
func ReadPDF(w http.ResponseWriter, r *http.Request, field string, maxBytes int64) (*File, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, httpx.Validation("File too large (max %d bytes)", maxBytes)
		}
		return nil, httpx.Validation("invalid multipart form: %v", err)
	}

	part, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, ErrNoFile
		}
		return nil, httpx.Validation("read %s: %v", field, err)
	}
	defer part.Close()

	if declaredType(header.Header.Get("Content-Type")) != ContentTypePDF {
		return nil, httpx.Validation("Only PDF files allowed")
	}

	data, err := io.ReadAll(part)
	if err != nil {
		return nil, fmt.Errorf("upload: read %s: %w", field, err)
	}
	if !mimetype.Detect(data).Is(ContentTypePDF) {
		return nil, httpx.Validation("Only PDF files allowed")
	}
	return &File{
		Filename:    header.Filename,
		ContentType: ContentTypePDF,
		Size:        int64(len(data)),
		Data:        data,
	}, nil
}

// declaredType returns the media type of a part header without parameters.
func declaredType(declared string) string {
	mt, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return ""
	}
	return mt
}
