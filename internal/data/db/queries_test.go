package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueries_TaskLifecycle(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()
	q := database.Queries()

	user, err := q.CreateUser(ctx, CreateUserParams{Username: "alice", Password: "hash", CreatedAt: "2024-05-01"})
	require.NoError(t, err)
	assert.Positive(t, user.ID)

	older, err := q.InsertTask(ctx, InsertTaskParams{UserID: user.ID, TaskText: "older", Timestamp: "2024-05-01 09:00:00.000000", Status: "ongoing"})
	require.NoError(t, err)
	newer, err := q.InsertTask(ctx, InsertTaskParams{UserID: user.ID, TaskText: "newer", Timestamp: "2024-05-01 10:00:00.000000", Status: "ongoing"})
	require.NoError(t, err)

	all, err := q.ListTasks(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, newer.ID, all[0].ID, "newest first")

	n, err := q.UpdateTaskStatus(ctx, UpdateTaskStatusParams{Status: "achieved", ID: older.ID, UserID: user.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	achieved, err := q.ListTasksByStatus(ctx, ListTasksByStatusParams{UserID: user.ID, Status: "achieved"})
	require.NoError(t, err)
	require.Len(t, achieved, 1)
	assert.Equal(t, "older", achieved[0].TaskText)

	n, err = q.DeleteTasksByStatus(ctx, DeleteTasksByStatusParams{UserID: user.ID, Status: "achieved"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = q.DeleteTask(ctx, DeleteTaskParams{ID: older.ID, UserID: user.ID})
	require.NoError(t, err)
	assert.Zero(t, n, "already deleted")
}

func TestQueries_TasksAreScopedToUser(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()
	q := database.Queries()

	alice, err := q.CreateUser(ctx, CreateUserParams{Username: "alice", Password: "h"})
	require.NoError(t, err)
	bob, err := q.CreateUser(ctx, CreateUserParams{Username: "bob", Password: "h"})
	require.NoError(t, err)

	task, err := q.InsertTask(ctx, InsertTaskParams{UserID: alice.ID, TaskText: "mine", Timestamp: "2024-05-01 09:00:00", Status: "ongoing"})
	require.NoError(t, err)

	_, err = q.GetTask(ctx, GetTaskParams{ID: task.ID, UserID: bob.ID})
	require.Error(t, err)

	n, err := q.DeleteTask(ctx, DeleteTaskParams{ID: task.ID, UserID: bob.ID})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	user, err := database.Queries().CreateUser(ctx, CreateUserParams{Username: "alice", Password: "h"})
	require.NoError(t, err)

	err = database.WithTx(ctx, func(q *Queries) error {
		if _, err := q.InsertTask(ctx, InsertTaskParams{UserID: user.ID, TaskText: "x", Timestamp: "t", Status: "ongoing"}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	tasks, err := database.Queries().ListTasks(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}
