package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/cbodonnell/snek/pkg/game/types"
	"github.com/cbodonnell/snek/pkg/log"
	"github.com/cbodonnell/snek/pkg/render"
	"github.com/cbodonnell/snek/pkg/repositories"
	"github.com/cbodonnell/snek/pkg/state"
	"github.com/cbodonnell/snek/pkg/version"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const (
	DefaultRunsLimit = 10
	MaxRunsLimit     = 100
)

func HandleGetSnake(stateManager state.StateManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := stateManager.Game(r.Context())
		if err != nil {
			log.Error("failed to get game: %v", err)
			http.Error(w, "Failed to get game", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, render.Render(snapshot))
	}
}

// HandlePostDirection queues the direction named by the direction query parameter.
func HandlePostDirection(stateManager state.StateManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		enqueueDirection(w, r, stateManager, r.URL.Query().Get("direction"))
	}
}

// HandleGetDirection queues the direction named by the last path segment.
func HandleGetDirection(stateManager state.StateManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		enqueueDirection(w, r, stateManager, mux.Vars(r)["direction"])
	}
}

func enqueueDirection(w http.ResponseWriter, r *http.Request, stateManager state.StateManager, name string) {
	direction, err := types.ParseDirection(name)
	if err != nil {
		log.Debug("rejected direction %q: %v", name, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	pending, err := stateManager.EnqueueDirection(r.Context(), direction)
	if err != nil {
		if errors.Is(err, types.ErrInvalidDirection) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Error("failed to enqueue direction: %v", err)
		http.Error(w, "Failed to enqueue direction", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "You sent direction: %s \n State directions: %s", direction, formatDirections(pending))
}

func formatDirections(directions []types.Direction) string {
	names := make([]string, len(directions))
	for i, d := range directions {
		names[i] = d.String()
	}
	return "[" + strings.Join(names, ", ") + "]"
}

func HandleListRuns(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := DefaultRunsLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 || parsed > MaxRunsLimit {
				http.Error(w, fmt.Sprintf("limit must be between 1 and %d", MaxRunsLimit), http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		runs, err := repository.ListRuns(r.Context(), limit)
		if err != nil {
			log.Error("failed to list runs: %v", err)
			http.Error(w, "Failed to list runs", http.StatusInternalServerError)
			return
		}

		writeJSON(w, runs)
	}
}

func HandleGetRun(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(mux.Vars(r)["id"])
		if err != nil {
			http.Error(w, "Failed to parse run ID", http.StatusBadRequest)
			return
		}

		run, err := repository.GetRun(r.Context(), id)
		if err != nil {
			if repositories.IsNotFound(err) {
				http.Error(w, "Run not found", http.StatusNotFound)
				return
			}
			log.Error("failed to get run %s: %v", id, err)
			http.Error(w, "Failed to get run", http.StatusInternalServerError)
			return
		}

		writeJSON(w, run)
	}
}

func HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{
			"status":  "ok",
			"version": version.Get(),
		})
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
