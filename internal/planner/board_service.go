package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/tegbar/internal/core/account"
	"github.com/colonyops/tegbar/internal/core/board"
	"github.com/colonyops/tegbar/internal/core/eventbus"
	"github.com/colonyops/tegbar/internal/core/logging"
	"github.com/colonyops/tegbar/internal/core/validate"
)

// BoardService manages accounts and the per-user ongoing/achieved board.
type BoardService struct {
	users account.Store
	tasks board.Store
	bus   *eventbus.EventBus
	log   zerolog.Logger
	now   func() time.Time
}

// NewBoardService creates a BoardService.
func NewBoardService(users account.Store, tasks board.Store, bus *eventbus.EventBus, log zerolog.Logger) *BoardService {
	return &BoardService{
		users: users,
		tasks: tasks,
		bus:   bus,
		log:   log.With().Str("component", "board-service").Logger(),
		now:   time.Now,
	}
}

// SignUp creates an account with a bcrypt password hash.
func (s *BoardService) SignUp(ctx context.Context, username, password string) (account.User, error) {
	username = strings.TrimSpace(username)
	if err := validate.Credentials(username, password); err != nil {
		return account.User{}, err
	}

	hash, err := account.HashPassword(password)
	if err != nil {
		return account.User{}, err
	}

	user, err := s.users.Create(ctx, username, hash, s.now())
	if err != nil {
		return account.User{}, err
	}

	s.log.Info().Ctx(logging.WithUserID(ctx, user.ID)).Str("username", user.Username).Msg("account created")
	return user, nil
}

// Login verifies credentials. Unknown users and wrong passwords both return
// account.ErrInvalidCredentials. Accounts still on a legacy digest are rehashed.
func (s *BoardService) Login(ctx context.Context, username, password string) (account.User, error) {
	username = strings.TrimSpace(username)
	if err := validate.Credentials(username, password); err != nil {
		return account.User{}, err
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return account.User{}, account.ErrInvalidCredentials
		}
		return account.User{}, err
	}

	if !account.CheckPassword(user.PasswordHash, password) {
		return account.User{}, account.ErrInvalidCredentials
	}

	if account.IsLegacyHash(user.PasswordHash) {
		s.upgradeHash(ctx, user, password)
	}

	return user, nil
}

func (s *BoardService) upgradeHash(ctx context.Context, user account.User, password string) {
	log := s.log.With().Int64("user_id", user.ID).Logger()

	hash, err := account.HashPassword(password)
	if err != nil {
		log.Warn().Err(err).Msg("failed to rehash legacy password")
		return
	}
	if err := s.users.SetPasswordHash(ctx, user.ID, hash); err != nil {
		log.Warn().Err(err).Msg("failed to store rehashed password")
		return
	}
	log.Info().Msg("legacy password hash upgraded")
}

// Add creates an ongoing task.
func (s *BoardService) Add(ctx context.Context, userID int64, text string) (board.Task, error) {
	if err := validate.TextField("text", text); err != nil {
		return board.Task{}, fmt.Errorf("%w: %w", board.ErrEmptyText, err)
	}

	t, err := s.tasks.Add(ctx, userID, strings.TrimSpace(text), s.now())
	if err != nil {
		return board.Task{}, err
	}

	s.publish(eventbus.BoardChangedPayload{UserID: userID, TaskID: t.ID, Action: eventbus.ActionAdded, Count: 1})
	return t, nil
}

// List returns the user's tasks, newest first.
func (s *BoardService) List(ctx context.Context, userID int64, filter board.ListFilter) ([]board.Task, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, fmt.Errorf("unknown status %q", filter.Status)
	}
	return s.tasks.List(ctx, userID, filter)
}

// Achieve marks a task achieved.
func (s *BoardService) Achieve(ctx context.Context, userID, id int64) error {
	return s.setStatus(ctx, userID, id, board.StatusAchieved)
}

// Reopen moves an achieved task back to ongoing.
func (s *BoardService) Reopen(ctx context.Context, userID, id int64) error {
	return s.setStatus(ctx, userID, id, board.StatusOngoing)
}

func (s *BoardService) setStatus(ctx context.Context, userID, id int64, status board.Status) error {
	if err := s.tasks.SetStatus(ctx, userID, id, status); err != nil {
		return err
	}

	action := eventbus.ActionAchieved
	if status == board.StatusOngoing {
		action = eventbus.ActionToggled
	}
	s.publish(eventbus.BoardChangedPayload{UserID: userID, TaskID: id, Action: action, Count: 1})
	return nil
}

// Edit replaces a task's text. The edited task comes back as a new ongoing row
// with a fresh timestamp and identity.
func (s *BoardService) Edit(ctx context.Context, userID, id int64, text string) (board.Task, error) {
	if err := validate.TextField("text", text); err != nil {
		return board.Task{}, fmt.Errorf("%w: %w", board.ErrEmptyText, err)
	}

	t, err := s.tasks.Replace(ctx, userID, id, strings.TrimSpace(text), s.now())
	if err != nil {
		return board.Task{}, err
	}

	s.publish(eventbus.BoardChangedPayload{UserID: userID, TaskID: t.ID, Action: eventbus.ActionEdited, Count: 1})
	return t, nil
}

// Delete removes a task.
func (s *BoardService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.tasks.Delete(ctx, userID, id); err != nil {
		return err
	}

	s.publish(eventbus.BoardChangedPayload{UserID: userID, TaskID: id, Action: eventbus.ActionDeleted, Count: 1})
	return nil
}

// ClearAchieved deletes every achieved task and returns how many were removed.
func (s *BoardService) ClearAchieved(ctx context.Context, userID int64) (int64, error) {
	n, err := s.tasks.ClearAchieved(ctx, userID)
	if err != nil {
		return 0, err
	}

	if n > 0 {
		s.publish(eventbus.BoardChangedPayload{UserID: userID, Action: eventbus.ActionCleared, Count: n})
	}
	return n, nil
}

// AchieveAll marks every ongoing task achieved and returns how many changed.
func (s *BoardService) AchieveAll(ctx context.Context, userID int64) (int64, error) {
	n, err := s.tasks.AchieveAll(ctx, userID)
	if err != nil {
		return 0, err
	}

	if n > 0 {
		s.publish(eventbus.BoardChangedPayload{UserID: userID, Action: eventbus.ActionAchieved, Count: n})
	}
	return n, nil
}

func (s *BoardService) publish(p eventbus.BoardChangedPayload) {
	if s.bus == nil {
		return
	}
	s.bus.PublishBoardChanged(p)
}
