// Package table provides a generic store for one relational table: create,
// read, update and delete with optimistic concurrency, plus predicate-based
// paged search. Statement text comes from the statement package; execution
// goes through a dbx.DBTX, so a Store works the same over *sql.DB and *sql.Tx.
package table
