package handlers

import (
	"errors"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"liquidhire/internal/models"
	"liquidhire/internal/utils"
)

// maxResumeUpload caps the multipart upload size.
const maxResumeUpload = 10 << 20 // 10 MiB

// ResumeHandler extracts plain text from uploaded resume files.
type ResumeHandler struct {
	logger *zap.Logger
}

func NewResumeHandler(logger *zap.Logger) *ResumeHandler {
	return &ResumeHandler{logger: logger}
}

// Parse handles POST /api/parse-resume. PDFs go through pdftotext
// (poppler-utils); plain text passes straight through.
func (h *ResumeHandler) Parse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxResumeUpload)
	if err := r.ParseMultipartForm(maxResumeUpload); err != nil {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{Code: "invalid_upload", Message: "multipart form with a file field is required"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{Code: "missing_file", Message: "file field is required"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".txt":
		data, err := io.ReadAll(file)
		if err != nil {
			utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{Code: "read_error", Message: "could not read upload"})
			return
		}
		utils.JSON(w, http.StatusOK, models.ParseResumeResponse{Text: string(data)})
	case ".pdf":
		text, err := h.extractPDF(file)
		if err != nil {
			h.logger.Warn("pdf extraction failed", zap.String("filename", header.Filename), zap.Error(err))
			utils.JSON(w, http.StatusUnprocessableEntity, models.ErrorResponse{Code: "extraction_failed", Message: "could not extract text from PDF"})
			return
		}
		utils.JSON(w, http.StatusOK, models.ParseResumeResponse{Text: text})
	default:
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{Code: "unsupported_type", Message: "only .pdf and .txt resumes are supported"})
	}
}

// extractPDF shells out to pdftotext. The upload is staged to a temp file
// because the tool reads from a path.
func (h *ResumeHandler) extractPDF(file io.Reader) (string, error) {
	tmp, err := os.CreateTemp("", "resume-*.pdf")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	out, err := exec.Command("pdftotext", "-layout", tmp.Name(), "-").Output()
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(out))
	if text == "" {
		return "", errors.New("no text extracted")
	}
	return text, nil
}
