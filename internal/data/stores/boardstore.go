package stores

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/colonyops/tegbar/internal/core/board"
	"github.com/colonyops/tegbar/internal/data/db"
)

// readTimestampLayout accepts TimestampLayout with optional fractional seconds.
const readTimestampLayout = "2006-01-02 15:04:05.999999999"

// BoardStore implements board.Store using SQLite. Every method runs as a single
// transaction.
type BoardStore struct {
	db *db.DB
}

var _ board.Store = (*BoardStore)(nil)

// NewBoardStore creates a new SQLite-backed board store.
func NewBoardStore(db *db.DB) *BoardStore {
	return &BoardStore{db: db}
}

// Add inserts an ongoing task stamped with now.
func (s *BoardStore) Add(ctx context.Context, userID int64, text string, now time.Time) (board.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return board.Task{}, board.ErrEmptyText
	}

	row, err := s.db.Queries().InsertTask(ctx, db.InsertTaskParams{
		UserID:    userID,
		TaskText:  text,
		Timestamp: now.Format(board.TimestampLayout),
		Status:    string(board.StatusOngoing),
	})
	if err != nil {
		return board.Task{}, fmt.Errorf("failed to add task: %w", err)
	}
	return rowToBoardTask(row), nil
}

// Get returns a task owned by the user. Returns board.ErrNotFound if missing.
func (s *BoardStore) Get(ctx context.Context, userID, id int64) (board.Task, error) {
	row, err := s.db.Queries().GetTask(ctx, db.GetTaskParams{ID: id, UserID: userID})
	if IsNotFoundError(err) {
		return board.Task{}, board.ErrNotFound
	}
	if err != nil {
		return board.Task{}, fmt.Errorf("failed to get task: %w", err)
	}
	return rowToBoardTask(row), nil
}

// List returns the user's tasks, newest first.
func (s *BoardStore) List(ctx context.Context, userID int64, filter board.ListFilter) ([]board.Task, error) {
	var (
		rows []db.Task
		err  error
	)
	if filter.Status != "" {
		rows, err = s.db.Queries().ListTasksByStatus(ctx, db.ListTasksByStatusParams{
			UserID: userID,
			Status: string(filter.Status),
		})
	} else {
		rows, err = s.db.Queries().ListTasks(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks := make([]board.Task, 0, len(rows))
	for _, row := range rows {
		t := rowToBoardTask(row)
		if filter.Matches(t) {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

// SetStatus moves a task between ongoing and achieved.
func (s *BoardStore) SetStatus(ctx context.Context, userID, id int64, status board.Status) error {
	if !status.IsValid() {
		return fmt.Errorf("invalid status %q", status)
	}

	n, err := s.db.Queries().UpdateTaskStatus(ctx, db.UpdateTaskStatusParams{
		Status: string(status),
		ID:     id,
		UserID: userID,
	})
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if n == 0 {
		return board.ErrNotFound
	}
	return nil
}

// Replace deletes the task and inserts an ongoing replacement in one transaction.
func (s *BoardStore) Replace(ctx context.Context, userID, id int64, text string, now time.Time) (board.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return board.Task{}, board.ErrEmptyText
	}

	var replaced board.Task
	err := s.db.WithTx(ctx, func(q *db.Queries) error {
		n, err := q.DeleteTask(ctx, db.DeleteTaskParams{ID: id, UserID: userID})
		if err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		if n == 0 {
			return board.ErrNotFound
		}

		row, err := q.InsertTask(ctx, db.InsertTaskParams{
			UserID:    userID,
			TaskText:  text,
			Timestamp: now.Format(board.TimestampLayout),
			Status:    string(board.StatusOngoing),
		})
		if err != nil {
			return fmt.Errorf("failed to insert replacement: %w", err)
		}
		replaced = rowToBoardTask(row)
		return nil
	})
	if err != nil {
		return board.Task{}, err
	}
	return replaced, nil
}

// Delete removes a task. Returns board.ErrNotFound if missing.
func (s *BoardStore) Delete(ctx context.Context, userID, id int64) error {
	n, err := s.db.Queries().DeleteTask(ctx, db.DeleteTaskParams{ID: id, UserID: userID})
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if n == 0 {
		return board.ErrNotFound
	}
	return nil
}

// ClearAchieved deletes all achieved tasks for the user.
func (s *BoardStore) ClearAchieved(ctx context.Context, userID int64) (int64, error) {
	n, err := s.db.Queries().DeleteTasksByStatus(ctx, db.DeleteTasksByStatusParams{
		UserID: userID,
		Status: string(board.StatusAchieved),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to clear achieved tasks: %w", err)
	}
	return n, nil
}

// AchieveAll moves every ongoing task to achieved.
func (s *BoardStore) AchieveAll(ctx context.Context, userID int64) (int64, error) {
	n, err := s.db.Queries().UpdateAllTaskStatus(ctx, db.UpdateAllTaskStatusParams{
		To:     string(board.StatusAchieved),
		UserID: userID,
		From:   string(board.StatusOngoing),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to achieve tasks: %w", err)
	}
	return n, nil
}

func rowToBoardTask(row db.Task) board.Task {
	status := board.Status(row.Status.String)
	if !row.Status.Valid || !status.IsValid() {
		status = board.StatusOngoing
	}
	return board.Task{
		ID:        row.ID,
		UserID:    row.UserID.Int64,
		Text:      row.TaskText,
		Timestamp: parseTimestamp(row.Timestamp),
		Status:    status,
	}
}

func parseTimestamp(s string) time.Time {
	t, err := time.ParseInLocation(readTimestampLayout, s, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}
