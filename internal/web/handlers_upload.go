package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/JonMunkholm/intake/internal/core"
)

// multipartOverhead is headroom for boundaries and form fields beyond the file itself.
const multipartOverhead = 64 << 10

// multipartMemory is how much of a form ParseMultipartForm keeps in memory
// before spilling to disk.
const multipartMemory = 1 << 20

// handleUpload accepts a multipart "file" part and runs it through the pipeline.
// The data type comes from the "dataType" form field or query parameter.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		respondError(w, r, formError(err), statusFor(formError(err)))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, fmt.Errorf("%w: %v", core.ErrNoFile, err), http.StatusBadRequest)
		return
	}
	defer file.Close()

	dataType := r.FormValue("dataType")
	if dataType == "" {
		dataType = r.URL.Query().Get("dataType")
	}

	ctx := WithRequestMetadata(r.Context(), r)
	result, err := s.service.Upload(ctx, core.UploadRequest{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		DataType:    dataType,
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, r, http.StatusOK, result)
}

// handleImport transforms and persists previously uploaded rows.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req core.ImportRequest
	if err := decodeJSON(w, r, s.cfg.Upload.MaxFileSize*2, &req); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	result, err := s.service.Import(ctx, req)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, r, http.StatusOK, result)
}

// formError classifies a multipart parse failure.
func formError(err error) error {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		return fmt.Errorf("%w: request over %d bytes", core.ErrFileTooLarge, tooBig.Limit)
	}
	return fmt.Errorf("%w: %v", core.ErrBadRequest, err)
}
