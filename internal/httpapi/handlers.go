package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/DoyleJ11/inwo-backend/internal/decks"
	"github.com/DoyleJ11/inwo-backend/internal/hub"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxDeckBytes = 1 << 20

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func RoomStats(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := h.Stats(r.Context())
		if err != nil {
			http.Error(w, "hub unavailable", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

func ListDecks(store decks.Store, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.List(r.Context())
		if err != nil {
			log.Error("list decks", zap.Error(err))
			http.Error(w, "failed to list decks", http.StatusInternalServerError)
			return
		}
		if list == nil {
			list = []decks.Deck{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func CreateDeck(store decks.Store, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDeckBytes))
		if err != nil {
			http.Error(w, "deck too large", http.StatusRequestEntityTooLarge)
			return
		}

		fields, err := decks.ParseFields(body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		d, err := store.Create(r.Context(), fields)
		if err != nil {
			log.Error("create deck", zap.Error(err))
			http.Error(w, "failed to save deck", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, d)
	}
}

// DeleteDeck reports success for unknown ids too; deleting is idempotent.
func DeleteDeck(store decks.Store, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := store.Delete(r.Context(), id); err != nil && !errors.Is(err, decks.ErrNotFound) {
			log.Error("delete deck", zap.String("deck_id", id), zap.Error(err))
			http.Error(w, "failed to delete deck", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Success bool `json:"success"`
		}{Success: true})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
