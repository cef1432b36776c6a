package app

import (
	"github.com/gorilla/mux"
	"github.com/weektally/weektally/internal/config"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Timesheets, keyed by the Monday date of the week
	r.HandleFunc("/timesheets", deps.TimesheetHandler.GetAll).Methods("GET")
	r.HandleFunc("/timesheets/{weekKey}", deps.TimesheetHandler.GetForWeek).Methods("GET")
	r.HandleFunc("/timesheets/{weekKey}", deps.TimesheetHandler.Store).Methods("POST")
	r.HandleFunc("/timesheets/{weekKey}", deps.TimesheetHandler.Delete).Methods("DELETE")
}
