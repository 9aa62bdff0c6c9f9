package planner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tegbar/internal/core/account"
	"github.com/colonyops/tegbar/internal/core/board"
	"github.com/colonyops/tegbar/internal/core/eventbus"
	"github.com/colonyops/tegbar/internal/core/eventbus/testbus"
	"github.com/colonyops/tegbar/internal/data/db"
	"github.com/colonyops/tegbar/internal/data/stores"
)

func newTestBoardService(t *testing.T) (*BoardService, *stores.UserStore, *testbus.Bus) {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	users := stores.NewUserStore(database)
	tb := testbus.New(t)
	svc := NewBoardService(users, stores.NewBoardStore(database), tb.EventBus, zerolog.Nop())
	return svc, users, tb
}

func TestBoardService_SignUpAndLogin(t *testing.T) {
	svc, _, _ := newTestBoardService(t)
	ctx := context.Background()

	user, err := svc.SignUp(ctx, " alice ", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = svc.SignUp(ctx, "alice", "other")
	require.ErrorIs(t, err, account.ErrUsernameTaken)

	got, err := svc.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Login(ctx, "alice", "wrong")
	require.ErrorIs(t, err, account.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "bob", "s3cret")
	require.ErrorIs(t, err, account.ErrInvalidCredentials)
}

func TestBoardService_SignUpValidation(t *testing.T) {
	svc, _, _ := newTestBoardService(t)

	_, err := svc.SignUp(context.Background(), "", "")
	require.Error(t, err)

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Len(t, fieldErrs, 2)
	assert.Equal(t, "username", fieldErrs[0].Field)
	assert.Equal(t, "password", fieldErrs[1].Field)
}

func TestBoardService_LoginUpgradesLegacyHash(t *testing.T) {
	svc, users, _ := newTestBoardService(t)
	ctx := context.Background()

	sum := sha256.Sum256([]byte("hunter2"))
	legacy, err := users.Create(ctx, "carol", hex.EncodeToString(sum[:]), time.Now())
	require.NoError(t, err)

	_, err = svc.Login(ctx, "carol", "hunter2")
	require.NoError(t, err)

	stored, err := users.Get(ctx, legacy.ID)
	require.NoError(t, err)
	assert.False(t, account.IsLegacyHash(stored.PasswordHash))
	assert.True(t, account.CheckPassword(stored.PasswordHash, "hunter2"))

	_, err = svc.Login(ctx, "carol", "hunter2")
	require.NoError(t, err)
}

func TestBoardService_Lifecycle(t *testing.T) {
	svc, _, tb := newTestBoardService(t)
	ctx := context.Background()

	user, err := svc.SignUp(ctx, "dana", "pw")
	require.NoError(t, err)

	_, err = svc.Add(ctx, user.ID, "  ")
	require.ErrorIs(t, err, board.ErrEmptyText)

	first, err := svc.Add(ctx, user.ID, "write report")
	require.NoError(t, err)
	second, err := svc.Add(ctx, user.ID, "ship release")
	require.NoError(t, err)
	tb.AssertPublished(t, eventbus.EventBoardChanged)

	require.NoError(t, svc.Achieve(ctx, user.ID, first.ID))

	achieved, err := svc.List(ctx, user.ID, board.ListFilter{Status: board.StatusAchieved})
	require.NoError(t, err)
	require.Len(t, achieved, 1)
	assert.Equal(t, first.ID, achieved[0].ID)

	require.NoError(t, svc.Reopen(ctx, user.ID, first.ID))

	edited, err := svc.Edit(ctx, user.ID, second.ID, "ship release v2")
	require.NoError(t, err)
	assert.NotEqual(t, second.ID, edited.ID)
	assert.Equal(t, board.StatusOngoing, edited.Status)

	n, err := svc.AchieveAll(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = svc.ClearAchieved(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	all, err := svc.List(ctx, user.ID, board.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)

	require.ErrorIs(t, svc.Delete(ctx, user.ID, first.ID), board.ErrNotFound)
}

func TestBoardService_ListRejectsUnknownStatus(t *testing.T) {
	svc, _, _ := newTestBoardService(t)

	_, err := svc.List(context.Background(), 1, board.ListFilter{Status: "paused"})
	require.Error(t, err)
}

func TestBoardService_UsersAreIsolated(t *testing.T) {
	svc, _, _ := newTestBoardService(t)
	ctx := context.Background()

	a, err := svc.SignUp(ctx, "a", "pw")
	require.NoError(t, err)
	b, err := svc.SignUp(ctx, "b", "pw")
	require.NoError(t, err)

	owned, err := svc.Add(ctx, a.ID, "mine")
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(ctx, b.ID, owned.ID), board.ErrNotFound)

	list, err := svc.List(ctx, b.ID, board.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}
