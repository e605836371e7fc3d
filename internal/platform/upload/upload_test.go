package upload

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhriti/dhriti-backend/internal/platform/httpx"
)

func multipartRequest(t *testing.T, filename, contentType string, data []byte, values map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range values {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="pdf"; filename="`+filename+`"`)
		if contentType != "" {
			h.Set("Content-Type", contentType)
		}
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestReadPDF(t *testing.T) {
	req := multipartRequest(t, "notes.pdf", "application/pdf", []byte("%PDF-1.4"), map[string]string{"title": "Notes"})
	file, err := ReadPDF(httptest.NewRecorder(), req, "pdf", 0)
	require.NoError(t, err)
	assert.Equal(t, "notes.pdf", file.Filename)
	assert.Equal(t, int64(8), file.Size)
	assert.Equal(t, "Notes", req.FormValue("title"))
}

func TestReadPDFRequiresDeclaredPDFType(t *testing.T) {
	for _, declared := range []string{"application/octet-stream", ""} {
		req := multipartRequest(t, "notes.pdf", declared, []byte("%PDF-1.4"), nil)
		_, err := ReadPDF(httptest.NewRecorder(), req, "pdf", 0)
		require.ErrorIs(t, err, httpx.ErrValidation, "declared %q", declared)
		assert.Equal(t, "Only PDF files allowed", err.Error())
	}
}

func TestReadPDFRejectsDisguisedBody(t *testing.T) {
	req := multipartRequest(t, "malware.pdf", "application/pdf", []byte("MZ\x90\x00 not a pdf"), nil)
	_, err := ReadPDF(httptest.NewRecorder(), req, "pdf", 0)
	require.ErrorIs(t, err, httpx.ErrValidation)
	assert.Equal(t, "Only PDF files allowed", err.Error())
}

func TestReadPDFRejectsOtherTypes(t *testing.T) {
	req := multipartRequest(t, "photo.png", "image/png", []byte("png"), nil)
	_, err := ReadPDF(httptest.NewRecorder(), req, "pdf", 0)
	require.ErrorIs(t, err, httpx.ErrValidation)
	assert.Equal(t, "Only PDF files allowed", err.Error())
}

func TestReadPDFMissingFile(t *testing.T) {
	req := multipartRequest(t, "", "", nil, map[string]string{"title": "x"})
	_, err := ReadPDF(httptest.NewRecorder(), req, "pdf", 0)
	assert.ErrorIs(t, err, ErrNoFile)
}

func TestReadPDFTooLarge(t *testing.T) {
	req := multipartRequest(t, "big.pdf", "application/pdf", bytes.Repeat([]byte("a"), 4096), nil)
	_, err := ReadPDF(httptest.NewRecorder(), req, "pdf", 1024)
	assert.ErrorIs(t, err, httpx.ErrValidation)
}
