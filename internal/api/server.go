package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/klauern/agentsync/internal/logging"
	"github.com/klauern/agentsync/internal/model"
	"github.com/klauern/agentsync/internal/sync"
	"github.com/klauern/agentsync/internal/validation"
)

const (
	shutdownTimeout = 5 * time.Second
	maxRequestSize  = 32 << 20
)

// Server exposes the sync engine over HTTP. Each bearer token maps to the
// owner whose artifacts the request may touch.
type Server struct {
	repo   sync.Repository
	blobs  sync.BlobStore
	tokens map[string]string
	mux    *http.ServeMux
}

// NewServer creates a server over the given stores and token table.
func NewServer(repo sync.Repository, blobs sync.BlobStore, tokens map[string]string) *Server {
	s := &Server{repo: repo, blobs: blobs, tokens: tokens, mux: http.NewServeMux()}

	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("POST /api/configs/sync", s.authenticated(s.handleSync))
	s.mux.HandleFunc("POST /api/configs/delete", s.authenticated(s.handleDelete))
	s.mux.HandleFunc("GET /api/configs", s.authenticated(s.handleList))

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s.mux.ServeHTTP(w, r)
	logging.Debug("handled request",
		slog.String("method", r.Method),
		logging.Path(r.URL.Path),
		slog.Duration(logging.KeyDuration, time.Since(start)),
	)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logging.Warn("server shutdown failed", logging.Err(err))
		}
	}()

	logging.Info("listening", slog.String("addr", addr))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type ownerHandler func(w http.ResponseWriter, r *http.Request, owner string)

func (s *Server) authenticated(next ownerHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		owner, ok := s.tokens[token]
		if !ok {
			writeError(w, http.StatusUnauthorized, "unknown token")
			return
		}
		logger := logging.With(logging.Owner(owner), slog.String("request_id", uuid.NewString()))
		next(w, r.WithContext(logging.NewContext(r.Context(), logger)), owner)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request, owner string) {
	var request SyncRequest
	if err := decodeBody(r, &request); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	types, err := parseTypes(request.Types)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	records, err := FromWireBatch(request.Configs)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	opts := sync.Options{Types: types, DryRun: request.DryRun, DeepCompare: request.DeepCompare}
	result, err := NewLocal(s.repo, s.blobs, owner).Sync(r.Context(), records, opts)
	if err != nil {
		var vErr *validation.Error
		var vErrs validation.Errors
		if errors.As(err, &vErr) || errors.As(err, &vErrs) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logging.Error("sync failed", logging.Owner(owner), logging.Err(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, NewSyncResponse(result))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, owner string) {
	var request DeleteRequest
	if err := decodeBody(r, &request); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := NewLocal(s.repo, s.blobs, owner).Delete(r.Context(), request.ConfigIDs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request, owner string) {
	types, err := model.ParseArtifactTypes(r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := NewLocal(s.repo, s.blobs, owner).List(r.Context(), types)
	if err != nil {
		logging.Error("list failed", logging.Owner(owner), logging.Err(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{Configs: records})
}

func parseTypes(raw []string) ([]model.ArtifactType, error) {
	var types []model.ArtifactType
	for _, s := range raw {
		t, err := model.ParseArtifactType(s)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}

func decodeBody(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestSize))
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("malformed JSON: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("failed to write response", logging.Err(err))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
