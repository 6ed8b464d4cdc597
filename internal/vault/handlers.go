package vault

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"vanish-go/cmd/web"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

type APIUploadResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url,omitempty"`
	Name    string `json:"name,omitempty"`
	Size    int64  `json:"size,omitempty"`
	Error   string `json:"error,omitempty"`
}

// sendUploadResponse handles JSON response formatting consistently
func sendUploadResponse(w http.ResponseWriter, status int, resp APIUploadResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error().Err(err).Msg("error encoding response")
	}
}

// HandleUpload accepts a multipart upload plus policy fields and returns
// the single access link. The "encrypt" field is accepted for
// compatibility and discarded.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := h.service.config.UploadMaxSize
	if r.ContentLength > maxSize {
		sendUploadResponse(w, http.StatusRequestEntityTooLarge, APIUploadResponse{Error: ErrFileTooLarge.Error()})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			err = ErrNoFile
		}
		sendUploadResponse(w, http.StatusBadRequest, APIUploadResponse{Error: err.Error()})
		return
	}
	defer func(file multipart.File) {
		if err := file.Close(); err != nil {
			log.Error().Err(err).Msg("error closing upload")
		}
	}(file)

	if header.Size > maxSize {
		sendUploadResponse(w, http.StatusRequestEntityTooLarge, APIUploadResponse{Error: ErrFileTooLarge.Error()})
		return
	}

	countdown, _ := strconv.Atoi(r.FormValue("max"))
	lifetimeMinutes, _ := strconv.Atoi(r.FormValue("lifetime"))

	req := &CreateRequest{
		Name:         header.Filename,
		Password:     r.FormValue("pwd"),
		SelfDestruct: formFlag(r.FormValue("destruct")),
		Countdown:    countdown,
		Lifetime:     time.Duration(lifetimeMinutes) * time.Minute,
		Data:         file,
	}

	resp, err := h.service.Create(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoFile), errors.Is(err, ErrEmptyName):
			sendUploadResponse(w, http.StatusBadRequest, APIUploadResponse{Error: err.Error()})
		default:
			log.Error().Err(err).Msg("upload failed")
			sendUploadResponse(w, http.StatusInternalServerError, APIUploadResponse{Error: "upload failed"})
		}
		return
	}

	sendUploadResponse(w, http.StatusOK, APIUploadResponse{
		Success: true,
		URL:     resp.URL,
		Name:    resp.Name,
		Size:    resp.Size,
	})
}

// HandleServeObject resolves one access. A guarded object without a valid
// credential gets the password prompt; every unavailable object gets the
// same not-found answer regardless of why it is unavailable.
func (h *Handler) HandleServeObject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "objectID")
	if id == "" {
		http.NotFound(w, r)
		return
	}

	req := AccessRequest{
		Password:  r.FormValue("pwd"),
		Submitted: r.Method == http.MethodPost,
	}

	info, err := h.service.Resolve(r.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrPasswordRequired):
			h.servePasswordPrompt(w, r)
		case errors.Is(err, ErrUnavailable):
			http.NotFound(w, r)
		default:
			log.Error().Err(err).Str("id", id).Msg("error resolving object")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}
	defer info.Body.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	if r.URL.Query().Get("download") == "true" {
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, info.Name))
	} else {
		w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, info.Name))
	}

	if _, err := io.Copy(w, info.Body); err != nil {
		// The access is already recorded; an interrupted transfer still
		// counts as one access.
		log.Debug().Err(err).Str("id", id).Msg("transfer interrupted")
	}
}

// HandleSweep triggers a reconciliation pass on demand and reports the
// four counters.
func (h *Handler) HandleSweep(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Sweep(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("sweep failed")
		http.Error(w, "Sweep failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		log.Error().Err(err).Msg("error encoding sweep result")
	}
}

func (h *Handler) servePasswordPrompt(w http.ResponseWriter, r *http.Request) {
	page, err := web.Files.ReadFile("assets/password.html")
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func formFlag(v string) bool {
	switch v {
	case "1", "on", "true", "yes":
		return true
	default:
		return false
	}
}
