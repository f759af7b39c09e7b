package dbx

import (
	"context"
	"database/sql"
	"errors"
)

// Execute runs a statement and returns the number of rows it affected.
func Execute(ctx context.Context, db DBTX, query string, args ...any) (int64, error) {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// QueryInt runs a query returning a single integer, such as a COUNT(*).
// An empty result reads as 0.
func QueryInt(ctx context.Context, db DBTX, query string, args ...any) (int, error) {
	var n sql.NullInt64
	err := db.QueryRowContext(ctx, query, args...).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return int(n.Int64), nil
}
