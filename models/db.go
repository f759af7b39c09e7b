// Package models defines the record shapes the table and relation packages
// persist: the system columns every table carries, the per-type metadata
// descriptor, paging envelopes and the many-to-many relation row.
package models

import (
	"time"

	"github.com/google/uuid"
)

// System column names.
const (
	ColumnID        = "Id"
	ColumnETag      = "ETag"
	ColumnCreatedAt = "CreatedAt"
	ColumnUpdatedAt = "UpdatedAt"
)

// Item holds the columns every table has. Embed it in record structs.
type Item struct {
	// ID is the primary key. It never changes once the row exists.
	ID uuid.UUID
	// ETag is the optimistic concurrency token, replaced on every write.
	ETag string
	// CreatedAt and UpdatedAt are only read and written for tables whose
	// descriptor is TimeStamped. Both are assigned by the database.
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Violations returns the structural rules the item breaks, if any.
func (i *Item) Violations() []string {
	var v []string
	if i.ID == uuid.Nil {
		v = append(v, ColumnID+" must not be empty")
	}
	if i.ETag == "" {
		v = append(v, ColumnETag+" must not be empty")
	}
	return v
}

// Record is implemented by every type stored through a table.Store.
//
// Values and ScanTargets must list the custom columns in the same order as
// the Columns of the type's Descriptor.
type Record interface {
	Base() *Item
	Values() []any
	ScanTargets() []any
}
