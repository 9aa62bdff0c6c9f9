package doctor

import (
	"context"
	"database/sql"
	"strings"
)

// DatabaseCheck pings the board database and runs SQLite's quick integrity check.
type DatabaseCheck struct {
	conn *sql.DB
	path string
}

// NewDatabaseCheck creates a database check.
func NewDatabaseCheck(conn *sql.DB, path string) *DatabaseCheck {
	return &DatabaseCheck{conn: conn, path: path}
}

func (c *DatabaseCheck) Name() string {
	return "Database"
}

func (c *DatabaseCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	if err := c.conn.PingContext(ctx); err != nil {
		result.add("connection", StatusFail, err.Error())
		return result
	}
	result.add("connection", StatusPass, c.path)

	var verdict string
	if err := c.conn.QueryRowContext(ctx, "PRAGMA quick_check").Scan(&verdict); err != nil {
		result.add("integrity", StatusFail, err.Error())
		return result
	}
	if !strings.EqualFold(verdict, "ok") {
		result.add("integrity", StatusFail, verdict)
		return result
	}
	result.add("integrity", StatusPass, "")
	return result
}
