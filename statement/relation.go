package statement

import (
	"fmt"

	"github.com/dmitrijs2005/tablestore/models"
)

// Parameters used by the relation statements.
const (
	ParamScopeID = "ScopeId"
	ParamTypeID  = "TypeId"
	ParamFrom    = "From"
	ParamTo      = "To"
	ParamValue   = "Value"
	ParamLockKey = "LockKey"
)

// touch returns the assignments that mark a row as written by the server.
func touch(d models.Descriptor) string {
	s := Ident(models.ColumnETag) + " = gen_random_uuid()::text"
	if d.TimeStamped {
		s += ", " + Ident(models.ColumnUpdatedAt) + " = now()"
	}
	return s
}

// Shift moves every rank in [@From, @To] of the (@ScopeId, @TypeId) scope by
// delta in a single statement.
func Shift(d models.Descriptor, sortColumn, scopeColumn string, delta int) string {
	op := "+"
	if delta < 0 {
		op, delta = "-", -delta
	}
	sc := Ident(sortColumn)
	return fmt.Sprintf("UPDATE %s SET %s = %s %s %d, %s WHERE %s = @%s AND %s = @%s AND %s BETWEEN @%s AND @%s",
		TableName(d), sc, sc, op, delta, touch(d),
		Ident(scopeColumn), ParamScopeID,
		Ident(models.ColumnTypeID), ParamTypeID,
		sc, ParamFrom, ParamTo)
}

// MaxSortOrder selects the highest rank in a scope, 0 when the scope is empty.
func MaxSortOrder(d models.Descriptor, sortColumn, scopeColumn string) string {
	return fmt.Sprintf("SELECT COALESCE(MAX(%s), 0) FROM %s WHERE %s = @%s AND %s = @%s",
		Ident(sortColumn), TableName(d),
		Ident(scopeColumn), ParamScopeID,
		Ident(models.ColumnTypeID), ParamTypeID)
}

// SetColumn assigns @Value to column of the row @Id and renews its token.
func SetColumn(d models.Descriptor, column string) string {
	return fmt.Sprintf("UPDATE %s SET %s = @%s, %s WHERE %s = @%s",
		TableName(d), Ident(column), ParamValue, touch(d),
		Ident(models.ColumnID), models.ColumnID)
}

// ClearReferences sets column of the endpoint rows to NULL where it refers to
// a relation row matching relWhere.
func ClearReferences(endpoint models.Descriptor, column string, rel models.Descriptor, relWhere string) string {
	return fmt.Sprintf("UPDATE %s SET %s = NULL, %s WHERE %s IN (SELECT %s FROM %s WHERE (%s))",
		TableName(endpoint), Ident(column), touch(endpoint), Ident(column),
		Ident(models.ColumnID), TableName(rel), predicate(relWhere))
}

// DeleteReferencing removes every relation row that has @Id on either side,
// whatever its type.
func DeleteReferencing(d models.Descriptor) string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s = @%s OR %s = @%s",
		TableName(d),
		Ident(models.ColumnFirstID), models.ColumnID,
		Ident(models.ColumnSecondID), models.ColumnID)
}

// AdvisoryLock takes a transaction-scoped lock on @LockKey.
func AdvisoryLock() string {
	return "SELECT pg_advisory_xact_lock(hashtextextended(@" + ParamLockKey + ", 0))"
}

// Aliases used by the join statements.
const (
	RelationAlias = "m2m"
	RecordAlias   = "r"
)

// CountJoined counts the joined records of a JoinOther statement.
const CountJoined = `SELECT COUNT(r."Id")`

// JoinOther returns the FROM/WHERE part that joins the relation table to the
// records referenced by otherColumn, limited to the (@ScopeId, @TypeId) scope
// on scopeColumn. Select the records with SelectPrefix(other, RecordAlias).
func JoinOther(rel, other models.Descriptor, scopeColumn, otherColumn string) string {
	return fmt.Sprintf("FROM %s AS %s JOIN %s AS %s ON (%s.%s = %s.%s) WHERE %s.%s = @%s AND %s.%s = @%s",
		TableName(rel), RelationAlias, TableName(other), RecordAlias,
		RecordAlias, Ident(models.ColumnID), RelationAlias, Ident(otherColumn),
		RelationAlias, Ident(scopeColumn), ParamScopeID,
		RelationAlias, Ident(models.ColumnTypeID), ParamTypeID)
}

// Qualified returns column qualified with the relation alias, for ORDER BY
// clauses of JoinOther statements.
func Qualified(column string) string {
	return RelationAlias + "." + Ident(column)
}

// JoinOtherByPrimary is JoinOther restricted to the records whose
// primaryColumn holds the joined relation row.
func JoinOtherByPrimary(rel, other models.Descriptor, scopeColumn, otherColumn, primaryColumn string) string {
	return fmt.Sprintf("%s AND %s.%s = %s.%s",
		JoinOther(rel, other, scopeColumn, otherColumn),
		RecordAlias, Ident(primaryColumn), RelationAlias, Ident(models.ColumnID))
}
