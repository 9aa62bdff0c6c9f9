// Package planner holds the services that the CLI and TUI drive. Services own
// the in-memory state, persist after every mutation, and publish events.
package planner

import (
	"github.com/colonyops/tegbar/internal/core/config"
	"github.com/colonyops/tegbar/internal/core/eventbus"
	"github.com/colonyops/tegbar/internal/data/db"
)

// App is the central entry point for all tegbar operations.
// Commands and TUI consume App instead of cherry-picking raw dependencies.
type App struct {
	Tasks *TaskService
	Board *BoardService
	Chat  *ChatService

	Config *config.Config
	DB     *db.DB
	Bus    *eventbus.EventBus
}

// NewApp constructs an App from explicit dependencies.
func NewApp(
	tasks *TaskService,
	board *BoardService,
	chat *ChatService,
	cfg *config.Config,
	database *db.DB,
	bus *eventbus.EventBus,
) *App {
	return &App{
		Tasks:  tasks,
		Board:  board,
		Chat:   chat,
		Config: cfg,
		DB:     database,
		Bus:    bus,
	}
}
