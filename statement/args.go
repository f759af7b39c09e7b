package statement

import (
	"fmt"

	"github.com/dmitrijs2005/tablestore/common"
	"github.com/dmitrijs2005/tablestore/models"
	"github.com/jackc/pgx/v5"
)

// Args binds the values of r to parameters named after d's columns.
// Touch columns are not bound; the database assigns them.
func Args(d models.Descriptor, r models.Record) (pgx.NamedArgs, error) {
	values := r.Values()
	if len(values) != len(d.Columns) {
		return nil, fmt.Errorf("%w: table %s has %d custom columns, record supplies %d values",
			common.ErrInvalidArgument, d.Table, len(d.Columns), len(values))
	}
	base := r.Base()
	args := pgx.NamedArgs{
		models.ColumnID:   base.ID,
		models.ColumnETag: base.ETag,
	}
	for i, c := range d.Columns {
		args[c] = values[i]
	}
	return args, nil
}
