package db

import "context"

const createUser = `
INSERT INTO users (username, password, created_at)
VALUES (?, ?, ?)
RETURNING id, username, password, created_at
`

type CreateUserParams struct {
	Username  string
	Password  string
	CreatedAt string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser, arg.Username, arg.Password, arg.CreatedAt)
	var i User
	err := row.Scan(&i.ID, &i.Username, &i.Password, &i.CreatedAt)
	return i, err
}

const getUser = `
SELECT id, username, password, created_at FROM users WHERE id = ?
`

func (q *Queries) GetUser(ctx context.Context, id int64) (User, error) {
	row := q.db.QueryRowContext(ctx, getUser, id)
	var i User
	err := row.Scan(&i.ID, &i.Username, &i.Password, &i.CreatedAt)
	return i, err
}

const getUserByUsername = `
SELECT id, username, password, created_at FROM users WHERE username = ?
`

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByUsername, username)
	var i User
	err := row.Scan(&i.ID, &i.Username, &i.Password, &i.CreatedAt)
	return i, err
}

const updateUserPassword = `
UPDATE users SET password = ? WHERE id = ?
`

type UpdateUserPasswordParams struct {
	Password string
	ID       int64
}

func (q *Queries) UpdateUserPassword(ctx context.Context, arg UpdateUserPasswordParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateUserPassword, arg.Password, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const insertTask = `
INSERT INTO tasks (user_id, task_text, timestamp, status)
VALUES (?, ?, ?, ?)
RETURNING id, user_id, task_text, timestamp, status
`

type InsertTaskParams struct {
	UserID    int64
	TaskText  string
	Timestamp string
	Status    string
}

func (q *Queries) InsertTask(ctx context.Context, arg InsertTaskParams) (Task, error) {
	row := q.db.QueryRowContext(ctx, insertTask, arg.UserID, arg.TaskText, arg.Timestamp, arg.Status)
	var i Task
	err := row.Scan(&i.ID, &i.UserID, &i.TaskText, &i.Timestamp, &i.Status)
	return i, err
}

const getTask = `
SELECT id, user_id, task_text, timestamp, status FROM tasks
WHERE id = ? AND user_id = ?
`

type GetTaskParams struct {
	ID     int64
	UserID int64
}

func (q *Queries) GetTask(ctx context.Context, arg GetTaskParams) (Task, error) {
	row := q.db.QueryRowContext(ctx, getTask, arg.ID, arg.UserID)
	var i Task
	err := row.Scan(&i.ID, &i.UserID, &i.TaskText, &i.Timestamp, &i.Status)
	return i, err
}

const listTasks = `
SELECT id, user_id, task_text, timestamp, status FROM tasks
WHERE user_id = ?
ORDER BY timestamp DESC, id DESC
`

func (q *Queries) ListTasks(ctx context.Context, userID int64) ([]Task, error) {
	return q.scanTasks(ctx, listTasks, userID)
}

const listTasksByStatus = `
SELECT id, user_id, task_text, timestamp, status FROM tasks
WHERE user_id = ? AND COALESCE(status, 'ongoing') = ?
ORDER BY timestamp DESC, id DESC
`

type ListTasksByStatusParams struct {
	UserID int64
	Status string
}

func (q *Queries) ListTasksByStatus(ctx context.Context, arg ListTasksByStatusParams) ([]Task, error) {
	return q.scanTasks(ctx, listTasksByStatus, arg.UserID, arg.Status)
}

func (q *Queries) scanTasks(ctx context.Context, query string, args ...any) ([]Task, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Task
	for rows.Next() {
		var i Task
		if err := rows.Scan(&i.ID, &i.UserID, &i.TaskText, &i.Timestamp, &i.Status); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateTaskStatus = `
UPDATE tasks SET status = ? WHERE id = ? AND user_id = ?
`

type UpdateTaskStatusParams struct {
	Status string
	ID     int64
	UserID int64
}

func (q *Queries) UpdateTaskStatus(ctx context.Context, arg UpdateTaskStatusParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateTaskStatus, arg.Status, arg.ID, arg.UserID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const updateAllTaskStatus = `
UPDATE tasks SET status = ?
WHERE user_id = ? AND COALESCE(status, 'ongoing') = ?
`

type UpdateAllTaskStatusParams struct {
	To     string
	UserID int64
	From   string
}

func (q *Queries) UpdateAllTaskStatus(ctx context.Context, arg UpdateAllTaskStatusParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateAllTaskStatus, arg.To, arg.UserID, arg.From)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteTask = `
DELETE FROM tasks WHERE id = ? AND user_id = ?
`

type DeleteTaskParams struct {
	ID     int64
	UserID int64
}

func (q *Queries) DeleteTask(ctx context.Context, arg DeleteTaskParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTask, arg.ID, arg.UserID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteTasksByStatus = `
DELETE FROM tasks WHERE user_id = ? AND COALESCE(status, 'ongoing') = ?
`

type DeleteTasksByStatusParams struct {
	UserID int64
	Status string
}

func (q *Queries) DeleteTasksByStatus(ctx context.Context, arg DeleteTasksByStatusParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTasksByStatus, arg.UserID, arg.Status)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
