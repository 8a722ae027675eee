package api

import (
	"net/http"
	"strings"
)

// PostFolder handles POST /folders/* (create) and POST /folders/*/rename.
func (h *Handler) PostFolder(w http.ResponseWriter, r *http.Request) {
	path, rename := splitRename(wildcardPath(r))
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if rename {
		h.renameFolder(w, r, path)
		return
	}
	if err := h.svc.CreateFolder(r.Context(), path); err != nil {
		writeError(w, "create folder", path, err)
		return
	}
	writeJSON(w, http.StatusCreated, FolderResponse{Path: path, Message: "folder created"})
}

// DeleteFolder handles DELETE /folders/*. Only empty folders are removed.
func (h *Handler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	path := wildcardPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.DeleteFolder(r.Context(), path); err != nil {
		writeError(w, "delete folder", path, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "folder deleted"})
}

func (h *Handler) renameFolder(w http.ResponseWriter, r *http.Request, path string) {
	var req RenameRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeBodyError(w, err)
		return
	}
	if strings.TrimSpace(req.NewPath) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("new_path is required"))
		return
	}
	if err := h.svc.RenameFolder(r.Context(), path, req.NewPath); err != nil {
		writeError(w, "rename folder", path, err)
		return
	}
	writeJSON(w, http.StatusOK, RenameResponse{OldPath: path, NewPath: req.NewPath, Message: "folder renamed"})
}
