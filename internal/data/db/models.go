package db

import "database/sql"

type User struct {
	ID        int64
	Username  string
	Password  string
	CreatedAt string
}

// Task is a row of the tasks table. user_id and status are nullable in
// databases created by earlier releases.
type Task struct {
	ID        int64
	UserID    sql.NullInt64
	TaskText  string
	Timestamp string
	Status    sql.NullString
}
