package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/kartliga/kart-league/services"
)

// Загруженная таблица целиком читается в память перед разбором.
const maxImportFileSize = 20 << 20 // 20MB

type ImportHandler struct {
	importService *services.ImportService
}

func NewImportHandler(importService *services.ImportService) *ImportHandler {
	return &ImportHandler{importService: importService}
}

// Bulk принимает структурированный JSON с историческими результатами
// одного турнира.
func (h *ImportHandler) Bulk(w http.ResponseWriter, r *http.Request) {
	var payload services.BulkImportPayload
	if err := readJSON(w, r, &payload); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	summary, err := h.importService.ImportBulk(r.Context(), payload)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"summary": summary}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Upload принимает multipart-форму с полем file (XLSX или CSV).
func (h *ImportHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportFileSize)

	if err := r.ParseMultipartForm(maxImportFileSize); err != nil {
		badRequestResponse(w, r, errors.New("failed to parse multipart form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		badRequestResponse(w, r, errors.New("form field 'file' is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	summary, err := h.importService.ImportFile(r.Context(), header.Filename, data)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"summary": summary}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
