package table

import (
	"context"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/tablestore/common"
	"github.com/dmitrijs2005/tablestore/models"
	"github.com/dmitrijs2005/tablestore/statement"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const wherePrimaryKey = `"Id" = @Id`

// Create inserts item and returns the row as stored. A zero ID is replaced
// with a fresh one and the ETag is always regenerated; both are written back
// into item once the row is inserted. On failure item keeps the values it
// came with.
func (s *Store[T]) Create(ctx context.Context, item T) (T, error) {
	var zero T
	if isNil(item) {
		return zero, invalidArgument("create %s: nil record", s.desc.Table)
	}
	base := item.Base()
	oldID, oldETag := base.ID, base.ETag
	written := false
	defer func() {
		if !written {
			base.ID, base.ETag = oldID, oldETag
		}
	}()

	if base.ID == uuid.Nil {
		base.ID = newID()
	}
	base.ETag = newETag()

	if err := s.validate(item); err != nil {
		return zero, err
	}
	args, err := statement.Args(s.desc, item)
	if err != nil {
		return zero, err
	}
	if _, err := s.exec(ctx, "create", statement.Create(s.desc), args); err != nil {
		return zero, err
	}
	written = true
	return s.readBack(ctx, base.ID)
}

// Read returns the row with the given id. found is false when there is none.
func (s *Store[T]) Read(ctx context.Context, id uuid.UUID) (item T, found bool, err error) {
	if id == uuid.Nil {
		return item, false, invalidArgument("read %s: empty id", s.desc.Table)
	}
	return s.SearchWhereSingle(ctx, pgx.NamedArgs{models.ColumnID: id}, wherePrimaryKey)
}

func (s *Store[T]) readBack(ctx context.Context, id uuid.UUID) (T, error) {
	item, found, err := s.Read(ctx, id)
	if err != nil {
		return item, err
	}
	if !found {
		return item, fmt.Errorf("%w: %s row %s missing right after it was written", common.ErrExecution, s.desc.Table, id)
	}
	return item, nil
}

// Update writes item if, and only if, its ETag still matches the stored row.
//
// It fails with common.ErrNotFound when the row does not exist and with
// common.ErrConflict when the caller's copy is stale, including when another
// writer gets in between the re-read and the guarded UPDATE. On failure item
// keeps the ETag it came with.
func (s *Store[T]) Update(ctx context.Context, item T) (T, error) {
	var zero T
	if isNil(item) {
		return zero, invalidArgument("update %s: nil record", s.desc.Table)
	}
	if err := s.validate(item); err != nil {
		return zero, err
	}
	base := item.Base()

	current, found, err := s.Read(ctx, base.ID)
	if err != nil {
		return zero, err
	}
	if !found {
		return zero, fmt.Errorf("%w: table %s has no row with id %s", common.ErrNotFound, s.desc.Table, base.ID)
	}
	oldETag := current.Base().ETag
	if oldETag != base.ETag {
		s.logger.Warn(ctx, "stale etag", "id", base.ID, "etag", base.ETag, "stored", oldETag)
		return zero, fmt.Errorf("%w: %s row %s was changed by someone else, reload and try again", common.ErrConflict, s.desc.Table, base.ID)
	}

	written := false
	base.ETag = newETag()
	defer func() {
		if !written {
			base.ETag = oldETag
		}
	}()

	args, err := statement.Args(s.desc, item)
	if err != nil {
		return zero, err
	}
	args[statement.ParamOldETag] = oldETag
	n, err := s.exec(ctx, "update", statement.Update(s.desc), args)
	if err != nil {
		return zero, err
	}
	if n == 0 {
		s.logger.Warn(ctx, "lost update race", "id", base.ID, "etag", oldETag)
		return zero, fmt.Errorf("%w: %s row %s was changed by someone else, reload and try again", common.ErrConflict, s.desc.Table, base.ID)
	}
	written = true
	return s.readBack(ctx, base.ID)
}

// Delete removes the row with the given id. Deleting a missing row is not an error.
func (s *Store[T]) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return invalidArgument("delete %s: empty id", s.desc.Table)
	}
	_, err := s.exec(ctx, "delete", statement.Delete(s.desc), pgx.NamedArgs{models.ColumnID: id})
	return err
}

// DeleteAll removes every row of the table.
func (s *Store[T]) DeleteAll(ctx context.Context) error {
	_, err := s.exec(ctx, "delete all", statement.DeleteAll(s.desc), nil)
	return err
}

// SetColumn assigns value to one custom column of the row with the given id
// and renews the row's ETag without an ETag guard. found is false when the
// row does not exist.
func (s *Store[T]) SetColumn(ctx context.Context, id uuid.UUID, column string, value any) (found bool, err error) {
	if id == uuid.Nil {
		return false, invalidArgument("set %s: empty id", s.desc.Table)
	}
	if !slices.Contains(s.desc.Columns, column) {
		return false, invalidArgument("set %s: %q is not a column of the table", s.desc.Table, column)
	}
	n, err := s.exec(ctx, "set "+column, statement.SetColumn(s.desc, column),
		pgx.NamedArgs{models.ColumnID: id, statement.ParamValue: value})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
