package app

import (
	"github.com/weektally/weektally/pkg/timesheet"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	TimesheetRepo    timesheet.Repository
	TimesheetService timesheet.Service
	TimesheetHandler *timesheet.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(repo timesheet.Repository) *Dependencies {
	deps := &Dependencies{}

	deps.TimesheetRepo = repo
	deps.TimesheetService = timesheet.NewService(repo)
	deps.TimesheetHandler = timesheet.NewHandler(deps.TimesheetService)

	return deps
}
