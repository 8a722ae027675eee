package api

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/frankmd/internal/checksum"
	"github.com/starford/frankmd/internal/noteservice"
)

// Search parameter bounds.
const (
	maxContextLines = 20
	maxSearchLimit  = 1000
)

const renameSuffix = "/rename"

// Handler holds API route handlers.
type Handler struct {
	svc *noteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service) *Handler {
	return &Handler{svc: svc}
}

// wildcardPath extracts the path after /notes/ or /folders/. Encoded slashes
// (a%2Fb.md) are accepted. chi matches on RawPath when the URL has one and on
// the already decoded Path otherwise, so only the former is unescaped here.
func wildcardPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" || r.URL.RawPath == "" {
		return raw
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// splitRename reports whether path addresses the rename action and returns
// the target path without the suffix.
func splitRename(path string) (string, bool) {
	if strings.HasSuffix(path, renameSuffix) && len(path) > len(renameSuffix) {
		return strings.TrimSuffix(path, renameSuffix), true
	}
	return path, false
}

func writeBodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody(messageFor(err)))
		return
	}
	writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
}

// Tree handles GET /notes/tree.
func (h *Handler) Tree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.svc.Tree(r.Context())
	if err != nil {
		writeError(w, "tree", "", err)
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

// GetNote handles GET /notes/*. The response carries the content checksum as
// ETag and honours If-None-Match.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	path := wildcardPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	note, err := h.svc.GetNote(r.Context(), path)
	if err != nil {
		writeError(w, "get note", path, err)
		return
	}
	w.Header().Set("ETag", checksum.ETag(note.Checksum))
	if inm := r.Header.Get("If-None-Match"); inm != "" && checksum.Matches(inm, note.Checksum) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// PostNote handles POST /notes/* (create) and POST /notes/*/rename.
func (h *Handler) PostNote(w http.ResponseWriter, r *http.Request) {
	path, rename := splitRename(wildcardPath(r))
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if rename {
		h.renameNote(w, r, path)
		return
	}

	var req ContentRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeBodyError(w, err)
		return
	}
	note, err := h.svc.CreateNote(r.Context(), path, []byte(req.Content))
	if err != nil {
		writeError(w, "create note", path, err)
		return
	}
	w.Header().Set("ETag", checksum.ETag(note.Checksum))
	writeJSON(w, http.StatusCreated, note)
}

// SaveNote handles PATCH and PUT /notes/*. Missing notes are created. An
// If-Match header makes the write conditional on the stored checksum.
func (h *Handler) SaveNote(w http.ResponseWriter, r *http.Request) {
	path := wildcardPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	var req ContentRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeBodyError(w, err)
		return
	}
	note, err := h.svc.SaveNote(r.Context(), path, []byte(req.Content), r.Header.Get("If-Match"))
	if err != nil {
		writeError(w, "save note", path, err)
		return
	}
	w.Header().Set("ETag", checksum.ETag(note.Checksum))
	writeJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /notes/*.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	path := wildcardPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.DeleteNote(r.Context(), path); err != nil {
		writeError(w, "delete note", path, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "note deleted"})
}

func (h *Handler) renameNote(w http.ResponseWriter, r *http.Request, path string) {
	var req RenameRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeBodyError(w, err)
		return
	}
	if strings.TrimSpace(req.NewPath) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("new_path is required"))
		return
	}
	newPath, err := h.svc.RenameNote(r.Context(), path, req.NewPath)
	if err != nil {
		writeError(w, "rename note", path, err)
		return
	}
	writeJSON(w, http.StatusOK, RenameResponse{OldPath: path, NewPath: newPath, Message: "note renamed"})
}

// Search handles GET /notes/search?q=&context=&limit=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := h.svc.SearchDefaults()

	if v := q.Get("context"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorBody("context must be a non-negative integer"))
			return
		}
		opts.ContextLines = min(n, maxContextLines)
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, errorBody("limit must be a positive integer"))
			return
		}
		opts.MaxResults = min(n, maxSearchLimit)
	}

	hits, err := h.svc.Search(r.Context(), q.Get("q"), opts)
	if err != nil {
		if r.Context().Err() != nil {
			// Client went away.
			return
		}
		writeError(w, "search", q.Get("q"), err)
		return
	}
	writeJSON(w, http.StatusOK, hits)
}
