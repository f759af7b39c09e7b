package models

import (
	"fmt"
	"regexp"

	"github.com/dmitrijs2005/tablestore/common"
)

// Column names double as named parameter names, so they are restricted to
// what the driver accepts after an @.
var columnName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Descriptor is the static description of one table.
type Descriptor struct {
	// Schema optionally qualifies Table.
	Schema string
	Table  string
	// Columns are the custom columns in declaration order.
	Columns []string
	// TimeStamped adds CreatedAt and UpdatedAt to the system columns.
	TimeStamped bool
}

// SystemColumns returns the columns shared by all tables of this flavor.
func (d Descriptor) SystemColumns() []string {
	if d.TimeStamped {
		return []string{ColumnID, ColumnETag, ColumnCreatedAt, ColumnUpdatedAt}
	}
	return []string{ColumnID, ColumnETag}
}

// AllColumns returns the system columns followed by the custom columns.
func (d Descriptor) AllColumns() []string {
	sys := d.SystemColumns()
	cols := make([]string, 0, len(sys)+len(d.Columns))
	cols = append(cols, sys...)
	return append(cols, d.Columns...)
}

// Validate checks that statements can be composed from the descriptor.
func (d Descriptor) Validate() error {
	if d.Table == "" {
		return fmt.Errorf("%w: descriptor has no table name", common.ErrInvalidArgument)
	}
	seen := make(map[string]struct{}, len(d.Columns)+4)
	for _, c := range d.SystemColumns() {
		seen[c] = struct{}{}
	}
	for _, c := range d.Columns {
		if c == "" {
			return fmt.Errorf("%w: table %s has an empty column name", common.ErrInvalidArgument, d.Table)
		}
		if !columnName.MatchString(c) {
			return fmt.Errorf("%w: table %s has column %q that cannot be bound as a parameter", common.ErrInvalidArgument, d.Table, c)
		}
		if _, dup := seen[c]; dup {
			return fmt.Errorf("%w: table %s declares column %s twice", common.ErrInvalidArgument, d.Table, c)
		}
		seen[c] = struct{}{}
	}
	return nil
}
