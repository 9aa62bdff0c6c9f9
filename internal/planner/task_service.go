package planner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/tegbar/internal/core/eventbus"
	"github.com/colonyops/tegbar/internal/core/logging"
	"github.com/colonyops/tegbar/internal/core/task"
	"github.com/colonyops/tegbar/internal/core/validate"
	"github.com/colonyops/tegbar/internal/store/jsonfile"
)

// TaskStore persists the whole task collection.
type TaskStore interface {
	Load(ctx context.Context) (*task.Collection, error)
	Save(ctx context.Context, c *task.Collection) error
}

// TaskService owns the canonical task collection. Every successful mutation is
// written through to the store. When a save fails the error is returned and the
// in-memory change is kept, so the next successful save persists it.
type TaskService struct {
	store TaskStore
	bus   *eventbus.EventBus
	log   zerolog.Logger
	now   func() time.Time

	mu    sync.Mutex
	tasks *task.Collection
}

// NewTaskService creates a TaskService with an empty collection. Call Load to
// read the store.
func NewTaskService(store TaskStore, bus *eventbus.EventBus, log zerolog.Logger) *TaskService {
	return &TaskService{
		store: store,
		bus:   bus,
		log:   log.With().Str("component", "task-service").Logger(),
		now:   time.Now,
		tasks: task.NewCollection(),
	}
}

// Load replaces the collection with the stored one. A malformed store leaves the
// service with an empty collection and returns an error wrapping
// task.ErrMalformedStore; the service remains usable.
func (s *TaskService) Load(ctx context.Context) error {
	loaded, err := s.store.Load(ctx)

	s.mu.Lock()
	if loaded == nil {
		loaded = task.NewCollection()
	}
	s.tasks = loaded
	s.mu.Unlock()

	if err == nil {
		s.log.Debug().Int("tasks", loaded.Len()).Msg("tasks loaded")
		return nil
	}

	s.log.Warn().Err(err).Msg("task store could not be loaded, continuing with empty list")

	var recovered *jsonfile.RecoveredError
	if errors.As(err, &recovered) && recovered.Backup != "" {
		s.publishRecovered(recovered)
	}
	return err
}

func (s *TaskService) publishRecovered(r *jsonfile.RecoveredError) {
	if s.bus == nil {
		return
	}
	s.bus.PublishTaskStoreRecovered(eventbus.TaskStoreRecoveredPayload{Path: r.Path, Backup: r.Backup})
}

// Refresh reloads the collection when the backing file was changed by another
// process. It reports whether a reload happened.
func (s *TaskService) Refresh(ctx context.Context) (bool, error) {
	watched, ok := s.store.(changeDetector)
	if !ok {
		return false, nil
	}

	changed, err := watched.ChangedOnDisk()
	if err != nil || !changed {
		return false, err
	}

	s.log.Info().Msg("tasks file changed on disk, reloading")
	return true, s.Load(ctx)
}

type changeDetector interface {
	ChangedOnDisk() (bool, error)
}

// Add creates a task in group.
func (s *TaskService) Add(ctx context.Context, group string, d task.Draft) (task.Task, error) {
	if err := validate.TextField("text", d.Text); err != nil {
		return task.Task{}, fmt.Errorf("%w: %w", task.ErrEmptyText, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	added, err := s.tasks.Add(group, d, s.now())
	if err != nil {
		return task.Task{}, err
	}

	s.publish(eventbus.TaskChangedPayload{Group: group, TaskID: added.ID, Action: eventbus.ActionAdded, Count: 1})
	return added, s.saveLocked(logging.WithGroup(ctx, group))
}

// Edit replaces the editable fields of a task. It reports false when the task
// no longer exists.
func (s *TaskService) Edit(ctx context.Context, group string, id task.ID, p task.Patch) (bool, error) {
	if err := validate.TextField("text", p.Text); err != nil {
		return false, fmt.Errorf("%w: %w", task.ErrEmptyText, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.tasks.Edit(group, id, p)
	if err != nil || !ok {
		return false, err
	}

	s.publish(eventbus.TaskChangedPayload{Group: group, TaskID: id, Action: eventbus.ActionEdited, Count: 1})
	return true, s.saveLocked(logging.WithGroup(ctx, group))
}

// ToggleDone flips completion of a task. It reports false when the task no
// longer exists.
func (s *TaskService) ToggleDone(ctx context.Context, group string, id task.ID) (task.Task, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	toggled, ok := s.tasks.ToggleDone(group, id)
	if !ok {
		return task.Task{}, false, nil
	}

	s.publish(eventbus.TaskChangedPayload{Group: group, TaskID: id, Action: eventbus.ActionToggled, Count: 1})
	return toggled, true, s.saveLocked(logging.WithGroup(ctx, group))
}

// Delete removes a task. It reports false when the task no longer exists.
func (s *TaskService) Delete(ctx context.Context, group string, id task.ID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.tasks.Delete(group, id) {
		return false, nil
	}

	s.publish(eventbus.TaskChangedPayload{Group: group, TaskID: id, Action: eventbus.ActionDeleted, Count: 1})
	return true, s.saveLocked(logging.WithGroup(ctx, group))
}

// ClearCompleted removes every done task across all groups. Nothing is saved
// when there was nothing to clear.
func (s *TaskService) ClearCompleted(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.tasks.ClearCompleted()
	if n == 0 {
		return 0, nil
	}

	s.publish(eventbus.TaskChangedPayload{Action: eventbus.ActionCleared, Count: n})
	return n, s.saveLocked(ctx)
}

// Import merges exported tasks into their groups, keeping identity, creation
// stamp and completion. Records with blank text or an identity that already
// exists are skipped, so importing the same export twice adds nothing.
func (s *TaskService) Import(ctx context.Context, groups map[string][]task.Task) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for group, tasks := range groups {
		for _, t := range tasks {
			if _, ok := s.tasks.Insert(group, t, now); ok {
				n++
			}
		}
	}

	if n == 0 {
		return 0, nil
	}

	s.publish(eventbus.TaskChangedPayload{Action: eventbus.ActionAdded, Count: n})
	return n, s.saveLocked(ctx)
}

// View captures the tasks visible for a group and query. Positions in the
// returned view are what the user sees; act on them through the *Visible
// methods so they are re-resolved to identities.
func (s *TaskService) View(group, query string) task.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks.View(group, query)
}

// VisibleAt returns the current state of the task shown at pos.
func (s *TaskService) VisibleAt(v task.View, pos int) (task.Task, error) {
	id, err := v.Resolve(pos)
	if err != nil {
		return task.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks.Get(v.Group, id)
	if !ok {
		return task.Task{}, task.ErrNotFound
	}
	return t, nil
}

// ToggleVisible toggles the task shown at pos.
func (s *TaskService) ToggleVisible(ctx context.Context, v task.View, pos int) (task.Task, error) {
	id, err := v.Resolve(pos)
	if err != nil {
		return task.Task{}, err
	}

	t, ok, err := s.ToggleDone(ctx, v.Group, id)
	if !ok && err == nil {
		return task.Task{}, task.ErrNotFound
	}
	return t, err
}

// EditVisible edits the task shown at pos.
func (s *TaskService) EditVisible(ctx context.Context, v task.View, pos int, p task.Patch) error {
	id, err := v.Resolve(pos)
	if err != nil {
		return err
	}

	ok, err := s.Edit(ctx, v.Group, id, p)
	if !ok && err == nil {
		return task.ErrNotFound
	}
	return err
}

// DeleteVisible deletes the task shown at pos.
func (s *TaskService) DeleteVisible(ctx context.Context, v task.View, pos int) error {
	id, err := v.Resolve(pos)
	if err != nil {
		return err
	}

	ok, err := s.Delete(ctx, v.Group, id)
	if !ok && err == nil {
		return task.ErrNotFound
	}
	return err
}

// Tasks returns a copy of a group's tasks in display order.
func (s *TaskService) Tasks(group string) []task.Task {
	v := s.View(group, "")
	return v.Items
}

// Keys returns the group keys, optionally filtered by a glob pattern.
func (s *TaskService) Keys(pattern string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks.Keys(pattern)
}

// Snapshot returns an independent copy of the collection.
func (s *TaskService) Snapshot() *task.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks.Clone()
}

// Stats summarizes completion across all groups.
func (s *TaskService) Stats() task.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks.Stats()
}

// History lists tasks newest group first, capped at limit.
func (s *TaskService) History(limit int) []task.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks.History(limit)
}

// Export writes a timestamped snapshot into dir.
func (s *TaskService) Export(dir string) (string, error) {
	snap := s.Snapshot()
	path, err := jsonfile.Export(dir, snap, s.now())
	if err != nil {
		s.log.Error().Err(err).Str("dir", dir).Msg("export failed")
		return "", err
	}
	s.log.Info().Str("path", path).Int("tasks", snap.Len()).Msg("tasks exported")
	return path, nil
}

func (s *TaskService) saveLocked(ctx context.Context) error {
	if err := s.store.Save(ctx, s.tasks); err != nil {
		s.log.Error().Ctx(ctx).Err(err).Msg("failed to save tasks")
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}

func (s *TaskService) publish(p eventbus.TaskChangedPayload) {
	if s.bus == nil {
		return
	}
	s.bus.PublishTaskChanged(p)
}
