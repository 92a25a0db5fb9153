package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"chatrelay/internal/pkg/errs"
	"chatrelay/internal/pkg/resp"
)

// HandleRoomUsers returns the current roster of a room as a JSON snapshot.
// A room nobody joined yields an empty list; rooms are never materialized,
// so there is no "room not found" case.
func HandleRoomUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room := chi.URLParam(r, "room")
		if strings.TrimSpace(room) == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"room":  strings.ToLower(strings.TrimSpace(room)),
			"users": deps.Registry.InRoom(room),
		})
	}
}
