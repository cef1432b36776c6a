package timesheet

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgconn"
	log "github.com/sirupsen/logrus"
	"github.com/weektally/weektally/internal/rest"
	"github.com/weektally/weektally/pkg/week"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetAll godoc
// @Summary Get all timesheets
// @Description Retrieve every stored timesheet, keyed by the week's Monday date
// @Tags Timesheet
// @Produce json
// @Success 200 {object} map[string]Document
// @Router /timesheets [get]
func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	documents, err := h.service.GetAll(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}

	response := make(map[string]Document, len(documents))
	for key, doc := range documents {
		response[key.String()] = doc
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		writeInternalError(w, err)
		return
	}
	log.Debug("Timesheets sent")
}

// GetForWeek godoc
// @Summary Get a week's timesheet
// @Description Retrieve the timesheet for the week containing the given date. A week without a timesheet is seeded with a single blank row and persisted.
// @Tags Timesheet
// @Produce json
// @Param weekKey path string true "Week start date in YYYY-MM-DD format (any day of the week is accepted and normalized to Monday)"
// @Success 200 {array} Row
// @Failure 400 {object} rest.ErrorResponse "Invalid week key"
// @Router /timesheets/{weekKey} [get]
func (h *Handler) GetForWeek(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	key, ok := weekKeyFromRequest(w, r)
	if !ok {
		return
	}

	doc, err := h.service.GetForWeek(r.Context(), key)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		writeInternalError(w, err)
		return
	}
	log.Debugf("Timesheet for week starting %s sent", key)
}

// Store godoc
// @Summary Create or update a week's timesheet
// @Description Upsert the timesheet document for the week containing the given date
// @Tags Timesheet
// @Accept json
// @Produce json
// @Param weekKey path string true "Week start date in YYYY-MM-DD format"
// @Param document body Document true "Timesheet rows"
// @Success 201 {array} Row
// @Failure 400 {object} rest.ErrorResponse "Invalid week key or request body"
// @Failure 409 {object} rest.ErrorResponse "Constraint violation"
// @Router /timesheets/{weekKey} [post]
func (h *Handler) Store(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	key, ok := weekKeyFromRequest(w, r)
	if !ok {
		return
	}

	var doc Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Invalid request body format",
			Details: "Body must be a JSON array of timesheet rows",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
		return
	}

	stored, err := h.service.Store(r.Context(), key, doc)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code[:2] == "23" {
			w.WriteHeader(http.StatusConflict)
			encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
				Error: "Timesheet conflicts with stored data",
			})
			if encodeErr != nil {
				http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
			}
			return
		}
		writeInternalError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(stored); err != nil {
		writeInternalError(w, err)
		return
	}
	log.Infof("Timesheet for week starting %s stored", key)
}

// Delete godoc
// @Summary Delete a week's timesheet
// @Tags Timesheet
// @Produce json
// @Param weekKey path string true "Week start date in YYYY-MM-DD format"
// @Success 204 "Deleted"
// @Failure 400 {object} rest.ErrorResponse "Invalid week key"
// @Failure 404 {string} string "Timesheet not found"
// @Router /timesheets/{weekKey} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	key, ok := weekKeyFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), key); err != nil {
		if errors.Is(err, ErrTimesheetNotFound) {
			http.Error(w, "timesheet not found", http.StatusNotFound)
			return
		}
		writeInternalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// weekKeyFromRequest extracts and validates the weekKey path variable,
// writing a 400 response on failure.
func weekKeyFromRequest(w http.ResponseWriter, r *http.Request) (week.Key, bool) {
	vars := mux.Vars(r)
	key, err := week.ParseKey(vars["weekKey"])
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Invalid week key format",
			Details: "Week key must be a date in YYYY-MM-DD format",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
		return week.Key{}, false
	}
	return key, true
}

// writeInternalError logs the error and replies with a generic 500 so
// internal details never leak to clients.
func writeInternalError(w http.ResponseWriter, err error) {
	log.Errorf("request failed: %v", err)
	http.Error(w, "something went wrong", http.StatusInternalServerError)
}
