package statement

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/tablestore/models"
	"github.com/jackc/pgx/v5"
)

const (
	// AllRows is the predicate used when the caller supplies none.
	AllRows = "1=1"
	// DefaultOrderBy orders by the first selected column, which keeps paging
	// stable when the caller supplies no ordering.
	DefaultOrderBy = "1"
	// CountPrefix is the select part of a count query.
	CountPrefix = "SELECT COUNT(*)"

	// ParamOldETag binds the token an update is guarded by.
	ParamOldETag = "OldETag"
)

// Ident quotes an identifier, joining parts with a dot.
func Ident(parts ...string) string {
	return pgx.Identifier(parts).Sanitize()
}

// TableName returns the quoted, optionally schema-qualified table name.
func TableName(d models.Descriptor) string {
	if d.Schema != "" {
		return Ident(d.Schema, d.Table)
	}
	return Ident(d.Table)
}

// ColumnList returns the quoted column list, each column qualified with
// alias when alias is not empty.
func ColumnList(d models.Descriptor, alias string) string {
	cols := d.AllColumns()
	quoted := make([]string, len(cols))
	for i, c := range cols {
		if alias != "" {
			quoted[i] = alias + "." + Ident(c)
		} else {
			quoted[i] = Ident(c)
		}
	}
	return strings.Join(quoted, ", ")
}

// SelectPrefix returns "SELECT <all columns>", qualified with alias.
func SelectPrefix(d models.Descriptor, alias string) string {
	return "SELECT " + ColumnList(d, alias)
}

// From returns "FROM <table> WHERE (<where>)".
func From(d models.Descriptor, where string) string {
	return fmt.Sprintf("FROM %s WHERE (%s)", TableName(d), predicate(where))
}

func predicate(where string) string {
	if strings.TrimSpace(where) == "" {
		return AllRows
	}
	return where
}

func orderBy(expr string) string {
	if strings.TrimSpace(expr) == "" {
		return DefaultOrderBy
	}
	return expr
}

func isTouchColumn(d models.Descriptor, c string) bool {
	return d.TimeStamped && (c == models.ColumnCreatedAt || c == models.ColumnUpdatedAt)
}

// Create returns the INSERT statement for one row. CreatedAt and UpdatedAt
// take the server clock.
func Create(d models.Descriptor) string {
	cols := d.AllColumns()
	values := make([]string, len(cols))
	for i, c := range cols {
		if isTouchColumn(d, c) {
			values[i] = "now()"
		} else {
			values[i] = "@" + c
		}
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		TableName(d), ColumnList(d, ""), strings.Join(values, ", "))
}

// Read returns a SELECT of all columns filtered by where.
func Read(d models.Descriptor, where string) string {
	return SelectPrefix(d, "") + " " + From(d, where)
}

// ReadOrdered is Read followed by an ORDER BY clause.
func ReadOrdered(d models.Descriptor, where, order string) string {
	return Read(d, where) + " ORDER BY " + orderBy(order)
}

// Update returns the UPDATE statement for one row. It only matches while the
// row still carries the token bound to @OldETag, so a stale write affects
// zero rows.
func Update(d models.Descriptor) string {
	var set []string
	for _, c := range d.AllColumns() {
		switch {
		case c == models.ColumnID, c == models.ColumnCreatedAt && d.TimeStamped:
			// immutable
		case c == models.ColumnUpdatedAt && d.TimeStamped:
			set = append(set, Ident(c)+" = now()")
		default:
			set = append(set, Ident(c)+" = @"+c)
		}
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE %s = @%s AND %s = @%s",
		TableName(d), strings.Join(set, ", "),
		Ident(models.ColumnID), models.ColumnID,
		Ident(models.ColumnETag), ParamOldETag)
}

// Delete returns the DELETE statement for one row.
func Delete(d models.Descriptor) string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s = @%s", TableName(d), Ident(models.ColumnID), models.ColumnID)
}

// DeleteAll empties the table.
func DeleteAll(d models.Descriptor) string {
	return "DELETE FROM " + TableName(d)
}

// Count returns a COUNT(*) over the rows matching where.
func Count(d models.Descriptor, where string) string {
	return CountPrefix + " " + From(d, where)
}

// Page appends ordering and an OFFSET/FETCH clause to a select statement.
func Page(selectStatement, order string, offset, limit int) string {
	return fmt.Sprintf("%s ORDER BY %s OFFSET %d ROWS FETCH NEXT %d ROWS ONLY",
		selectStatement, orderBy(order), offset, limit)
}
