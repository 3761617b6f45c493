// Package export serves scene documents as downloadable files.
package export

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wower3/image-edit/internal/auth"
	"github.com/wower3/image-edit/internal/document"
	"github.com/wower3/image-edit/internal/scene"
)

type Handler struct {
	documents *document.Service
}

func NewHandler(documents *document.Service) *Handler {
	return &Handler{documents: documents}
}

// ExportDocument handles GET /export/documents/{documentId}?format=json|draw.
// "json" downloads the raw scene document; "draw" compiles it to the draw
// command list a Canvas2D renderer consumes.
func (h *Handler) ExportDocument(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	documentID := mux.Vars(r)["documentId"]

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "draw" {
		http.Error(w, "invalid format: must be json or draw", http.StatusBadRequest)
		return
	}

	payload, err := h.documents.GetLatestSnapshot(r.Context(), documentID, userID)
	if err != nil {
		status := http.StatusInternalServerError
		switch err {
		case document.ErrNotFound:
			status = http.StatusNotFound
		case document.ErrForbidden:
			status = http.StatusForbidden
		default:
			slog.Error("export document", "error", err, "document", documentID)
		}
		http.Error(w, http.StatusText(status), status)
		return
	}

	name := sanitizeName(documentID)

	if format == "draw" {
		objs, err := scene.DecodeSnapshot(scene.Snapshot(payload))
		if err != nil {
			slog.Error("decode stored scene", "error", err, "document", documentID)
			http.Error(w, "stored scene is corrupt", http.StatusInternalServerError)
			return
		}
		col := scene.NewCollection()
		if err := col.Replace(objs); err != nil {
			http.Error(w, "stored scene is corrupt", http.StatusInternalServerError)
			return
		}
		commands := scene.CompileDrawCommands(col)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s-draw.json", name))
		json.NewEncoder(w).Encode(commands)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.json", name))
	w.Write(payload)
}

func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)
}
