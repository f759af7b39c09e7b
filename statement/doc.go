// Package statement composes the SQL text used by the table and relation
// packages from a models.Descriptor. Every function is pure: no I/O, no state.
//
// Identifiers are quoted for PostgreSQL and parameters follow the @Name
// convention understood by pgx.NamedArgs.
//
// Record statements
//
//   - Create, Read, ReadOrdered, Update, Delete, DeleteAll, Count, Page
//   - ColumnList, SelectPrefix, From and Args for callers that assemble their own
//
// Relation statements
//
//   - Shift, MaxSortOrder, SetColumn, ClearReferences, DeleteReferencing, AdvisoryLock
//   - JoinOther, JoinOtherByPrimary, CountJoined and Qualified for queries that
//     go from a relation row to the record on its other side
package statement
