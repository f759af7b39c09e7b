package table

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/tablestore/common"
	"github.com/dmitrijs2005/tablestore/models"
	"github.com/dmitrijs2005/tablestore/statement"
	"github.com/jackc/pgx/v5"
)

// CountWhere counts the rows matching where. An empty where counts all rows.
func (s *Store[T]) CountWhere(ctx context.Context, params pgx.NamedArgs, where string) (int, error) {
	return s.CountAdvanced(ctx, params, statement.CountPrefix, statement.From(s.desc, where))
}

// CountAdvanced runs countPrefix followed by fromWhere, e.g.
// "SELECT COUNT(r.\"Id\")" and "FROM ... JOIN ... WHERE ...".
func (s *Store[T]) CountAdvanced(ctx context.Context, params pgx.NamedArgs, countPrefix, fromWhere string) (int, error) {
	if blank(countPrefix) || blank(fromWhere) {
		return 0, invalidArgument("count %s: empty statement part", s.desc.Table)
	}
	return s.queryInt(ctx, "count", countPrefix+" "+fromWhere, params)
}

// SearchAll pages through the whole table.
func (s *Store[T]) SearchAll(ctx context.Context, orderBy string, offset, limit int) (*models.PageEnvelope[T], error) {
	return s.SearchWhere(ctx, nil, "", orderBy, offset, limit)
}

// SearchWhere pages through the rows matching where. Without orderBy the
// rows are ordered by their first column.
func (s *Store[T]) SearchWhere(ctx context.Context, params pgx.NamedArgs, where, orderBy string, offset, limit int) (*models.PageEnvelope[T], error) {
	return s.SearchAdvanced(ctx, params,
		statement.CountPrefix, statement.SelectPrefix(s.desc, ""), statement.From(s.desc, where),
		orderBy, offset, limit)
}

// SearchAdvanced counts with countPrefix+fromWhere and selects the page with
// selectPrefix+fromWhere, so both share one filter. selectPrefix must select
// the record's columns in statement.ColumnList order.
func (s *Store[T]) SearchAdvanced(ctx context.Context, params pgx.NamedArgs, countPrefix, selectPrefix, fromWhere, orderBy string, offset, limit int) (*models.PageEnvelope[T], error) {
	if offset < 0 || limit < 0 {
		return nil, invalidArgument("search %s: offset %d and limit %d must not be negative", s.desc.Table, offset, limit)
	}
	if blank(selectPrefix) {
		return nil, invalidArgument("search %s: empty select", s.desc.Table)
	}
	total, err := s.CountAdvanced(ctx, params, countPrefix, fromWhere)
	if err != nil {
		return nil, err
	}
	var data []T
	if limit > 0 {
		query := statement.Page(selectPrefix+" "+fromWhere, orderBy, offset, limit)
		if data, err = s.query(ctx, "search", query, params); err != nil {
			return nil, err
		}
	}
	return models.NewPageEnvelope(data, offset, limit, total), nil
}

// SearchWhereSingle returns the only row matching where. found is false when
// no row matches; more than one match is common.ErrMultipleResults.
func (s *Store[T]) SearchWhereSingle(ctx context.Context, params pgx.NamedArgs, where string) (item T, found bool, err error) {
	return s.SearchAdvancedSingle(ctx, params, statement.Read(s.desc, where))
}

// SearchAdvancedSingle is SearchWhereSingle for a complete SELECT without ORDER BY.
func (s *Store[T]) SearchAdvancedSingle(ctx context.Context, params pgx.NamedArgs, selectStatement string) (item T, found bool, err error) {
	if blank(selectStatement) {
		return item, false, invalidArgument("search %s: empty select", s.desc.Table)
	}
	// Two rows are enough to tell "one" from "many".
	items, err := s.query(ctx, "search single", statement.Page(selectStatement, "", 0, 2), params)
	if err != nil {
		return item, false, err
	}
	switch len(items) {
	case 0:
		return item, false, nil
	case 1:
		return items[0], true, nil
	default:
		return item, false, fmt.Errorf("%w: %s expected at most one row", common.ErrMultipleResults, s.desc.Table)
	}
}

// SearchFirstWhere returns the first row matching where under orderBy.
func (s *Store[T]) SearchFirstWhere(ctx context.Context, params pgx.NamedArgs, where, orderBy string) (item T, found bool, err error) {
	return s.SearchFirstAdvanced(ctx, params, statement.Read(s.desc, where), orderBy)
}

// SearchFirstAdvanced is SearchFirstWhere for a complete SELECT without ORDER BY.
func (s *Store[T]) SearchFirstAdvanced(ctx context.Context, params pgx.NamedArgs, selectStatement, orderBy string) (item T, found bool, err error) {
	if blank(selectStatement) {
		return item, false, invalidArgument("search %s: empty select", s.desc.Table)
	}
	items, err := s.query(ctx, "search first", statement.Page(selectStatement, orderBy, 0, 1), params)
	if err != nil || len(items) == 0 {
		return item, false, err
	}
	return items[0], true, nil
}
