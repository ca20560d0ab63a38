// Package api exposes the HTTP boundary: upload, poll, batch read, delete,
// and signed local artifact serving. Processing state maps onto status
// codes here and nowhere else.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/givehub/mediakit/internal/config"
	"github.com/givehub/mediakit/internal/media"
	"github.com/givehub/mediakit/internal/pipeline"
	"github.com/givehub/mediakit/internal/signing"
	"github.com/givehub/mediakit/internal/storage"
)

// Server hosts the media endpoints.
type Server struct {
	cfg    *config.Config
	pipe   *pipeline.Pipeline
	local  *storage.Local
	signer *signing.Signer
	log    zerolog.Logger
	server *http.Server
	once   sync.Once
}

// New constructs a Server. local and signer are nil when the S3 backend is
// configured; the /files route then responds 404 and clients follow
// presigned URLs instead.
func New(cfg *config.Config, pipe *pipeline.Pipeline, local *storage.Local, signer *signing.Signer, log zerolog.Logger) *Server {
	return &Server{
		cfg:    cfg,
		pipe:   pipe,
		local:  local,
		signer: signer,
		log:    log.With().Str("component", "api").Logger(),
	}
}

// Run starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.once.Do(func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", s.handleHealth)
		mux.HandleFunc("/v1/media", s.handleMedia)
		mux.HandleFunc("/v1/media/", s.handleMediaByID)
		mux.HandleFunc("/files/", s.handleFile)
		s.server = &http.Server{
			Addr:    s.cfg.Address,
			Handler: s.loggingMiddleware(mux),
		}
	})
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()
	s.log.Info().Str("address", s.cfg.Address).Msg("api listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleUpload(w, r)
	case http.MethodGet:
		s.handleBatchGet(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	// Bound the whole request body; the validator applies the
	// per-artifact ceilings afterwards with exact limits.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxVideoBytes+s.cfg.MaxThumbnailBytes+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "expecting multipart form", http.StatusBadRequest)
		return
	}
	ownerID, _ := strconv.ParseInt(r.FormValue("owner_id"), 10, 64)
	req := pipeline.SubmitRequest{
		OwnerID:     ownerID,
		Description: r.FormValue("description"),
		FocusPoint:  r.FormValue("focus"),
	}
	if file, err := formUpload(r, "file"); err == nil {
		req.File = file
	}
	if thumb, err := formUpload(r, "thumbnail"); err == nil {
		req.Thumbnail = thumb
	}

	result, err := s.pipe.Submit(r.Context(), req)
	if err != nil {
		s.respondError(w, err)
		return
	}
	status := http.StatusAccepted
	if result.Synchronous {
		status = http.StatusOK
	}
	respondJSON(w, status, s.pipe.Render(result.Attachment))
}

func (s *Server) handleBatchGet(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("ids"))
	if raw == "" {
		http.Error(w, "missing ids parameter", http.StatusBadRequest)
		return
	}
	ids := strings.Split(raw, ",")
	for i := range ids {
		ids[i] = strings.TrimSpace(ids[i])
	}
	results, err := s.pipe.GetByIDs(r.Context(), ids)
	if err != nil {
		s.respondError(w, err)
		return
	}
	out := make([]*media.Response, len(results))
	for i, res := range results {
		if res != nil {
			out[i] = res.Response
		}
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleMediaByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/media/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		s.handleGet(w, r, id)
	case http.MethodDelete:
		s.handleDelete(w, r, id)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	resp, state, err := s.pipe.GetByID(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, statusForState(state), resp)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.pipe.Delete(r.Context(), id); err != nil {
		s.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

// handleFile serves local artifacts after verifying the HMAC signature on
// the URL.
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	if s.local == nil || s.signer == nil {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rel := strings.TrimPrefix(r.URL.Path, "/files/")
	parts := strings.Split(rel, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		http.NotFound(w, r)
		return
	}
	attachmentID, name := parts[0], parts[1]
	q := r.URL.Query()
	if !s.signer.Validate(attachmentID+"/"+name, q.Get("exp"), q.Get("sig")) {
		http.Error(w, "invalid or expired signature", http.StatusForbidden)
		return
	}
	f, err := s.local.Open(r.Context(), attachmentID, name)
	if err != nil {
		s.respondError(w, err)
		return
	}
	defer f.Close()
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if _, err := io.Copy(w, f); err != nil {
		s.log.Debug().Err(err).Msg("stream artifact")
	}
}

// statusForState maps processing state to the polling status code contract:
// COMPLETE is done, NOT_STARTED and IN_PROGRESS are partial content the
// client should poll again, FAILED is unprocessable.
func statusForState(state media.ProcessingState) int {
	switch state {
	case media.StateComplete:
		return http.StatusOK
	case media.StateNotStarted, media.StateInProgress:
		return http.StatusPartialContent
	case media.StateFailed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, media.ErrMissingInput), errors.Is(err, media.ErrMissingOwner):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, media.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, media.ErrNotFound):
		http.Error(w, "attachment not found", http.StatusNotFound)
	case errors.Is(err, media.ErrProcessing):
		http.Error(w, "media processing failed", http.StatusInternalServerError)
	default:
		s.log.Error().Err(err).Msg("internal error")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func formUpload(r *http.Request, field string) (*media.Upload, error) {
	f, header, err := r.FormFile(field)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &media.Upload{
		FileName: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Data:     data,
	}, nil
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
