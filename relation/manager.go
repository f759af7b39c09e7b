package relation

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/tablestore/common"
	"github.com/dmitrijs2005/tablestore/dbx"
	"github.com/dmitrijs2005/tablestore/logging"
	"github.com/dmitrijs2005/tablestore/models"
	"github.com/dmitrijs2005/tablestore/table"
	"github.com/google/uuid"
)

// Side selects one of the two rank sequences of a relation row.
type Side int

const (
	// First is the order of the rows sharing a FirstId.
	First Side = iota + 1
	// Second is the order of the rows sharing a SecondId.
	Second
)

func (s Side) String() string {
	switch s {
	case First:
		return "First"
	case Second:
		return "Second"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

func (s Side) valid() bool { return s == First || s == Second }

func (s Side) sortColumn() string {
	if s == First {
		return models.ColumnFirstSortOrder
	}
	return models.ColumnSecondSortOrder
}

func (s Side) scopeColumn() string {
	if s == First {
		return models.ColumnFirstID
	}
	return models.ColumnSecondID
}

func (s Side) otherColumn() string {
	if s == First {
		return models.ColumnSecondID
	}
	return models.ColumnFirstID
}

// PrimaryReferencer is implemented by endpoint tables that keep a reference to
// their primary relation of a type.
type PrimaryReferencer interface {
	// PrimaryColumn names the column holding the primary relation for typeID.
	PrimaryColumn(typeID uuid.UUID) (column string, ok bool)
}

// PrimaryColumns is a PrimaryReferencer backed by a map of relation type to column.
type PrimaryColumns map[uuid.UUID]string

func (p PrimaryColumns) PrimaryColumn(typeID uuid.UUID) (string, bool) {
	c, ok := p[typeID]
	return c, ok && c != ""
}

// Endpoint describes the table on one side of the relationship.
type Endpoint[T models.Record] struct {
	Descriptor models.Descriptor
	New        func() T
	// Primary is optional.
	Primary PrimaryReferencer
}

// At returns a pointer to rank, for the rank arguments of SetSortOrder and Create.
// A nil rank means last.
func At(rank int) *int {
	return &rank
}

type options struct {
	logger    logging.Logger
	storeOpts []table.Option
}

// Option configures a Manager.
type Option func(*options)

// WithLogger sets the logger of the manager and of its stores.
func WithLogger(l logging.Logger) Option {
	return func(o *options) {
		o.logger = l
		o.storeOpts = append(o.storeOpts, table.WithLogger(l))
	}
}

// WithStoreOptions passes options to the relation and endpoint stores.
func WithStoreOptions(opts ...table.Option) Option {
	return func(o *options) { o.storeOpts = append(o.storeOpts, opts...) }
}

// Manager keeps the relation rows of one relation type between records of
// type F (first) and S (second).
type Manager[F, S models.Record] struct {
	db     *sql.DB
	typeID uuid.UUID
	desc   models.Descriptor

	rel    *table.Store[*models.ManyToMany]
	first  *table.Store[F]
	second *table.Store[S]

	// Primary columns for typeID, empty when the endpoint has none.
	firstPrimary  string
	secondPrimary string

	logger logging.Logger
}

// NewManager returns a Manager for the relations of typeID kept in relTable.
func NewManager[F, S models.Record](db *sql.DB, relTable string, typeID uuid.UUID, first Endpoint[F], second Endpoint[S], opts ...Option) (*Manager[F, S], error) {
	if db == nil {
		return nil, fmt.Errorf("%w: relation manager needs a database", common.ErrInvalidArgument)
	}
	o := options{logger: logging.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.Nop()
	}

	desc := models.ManyToManyDescriptor(relTable)
	rel, err := table.New(db, desc, models.NewManyToMany, o.storeOpts...)
	if err != nil {
		return nil, err
	}
	fs, err := table.New(db, first.Descriptor, first.New, o.storeOpts...)
	if err != nil {
		return nil, err
	}
	ss, err := table.New(db, second.Descriptor, second.New, o.storeOpts...)
	if err != nil {
		return nil, err
	}
	fp, err := primaryColumn(first.Descriptor, first.Primary, typeID)
	if err != nil {
		return nil, err
	}
	sp, err := primaryColumn(second.Descriptor, second.Primary, typeID)
	if err != nil {
		return nil, err
	}

	return &Manager[F, S]{
		db:            db,
		typeID:        typeID,
		desc:          desc,
		rel:           rel,
		first:         fs,
		second:        ss,
		firstPrimary:  fp,
		secondPrimary: sp,
		logger:        o.logger.With("relation", relTable, "type", typeID),
	}, nil
}

func primaryColumn(d models.Descriptor, p PrimaryReferencer, typeID uuid.UUID) (string, error) {
	if p == nil {
		return "", nil
	}
	col, ok := p.PrimaryColumn(typeID)
	if !ok {
		return "", nil
	}
	if !slices.Contains(d.Columns, col) {
		return "", fmt.Errorf("%w: primary column %q is not a column of %s", common.ErrInvalidArgument, col, d.Table)
	}
	return col, nil
}

// TypeID returns the relation type the manager works on.
func (m *Manager[F, S]) TypeID() uuid.UUID {
	return m.typeID
}

func (m *Manager[F, S]) fail(op string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", common.ErrExecution, op, m.desc.Table, err)
}

// txStores is the set of stores bound to one transaction.
type txStores[F, S models.Record] struct {
	tx     dbx.DBTX
	rel    *table.Store[*models.ManyToMany]
	first  *table.Store[F]
	second *table.Store[S]
}

// inTx runs fn in a transaction. Errors returned by fn are passed through;
// failures to begin or commit are execution errors.
func (m *Manager[F, S]) inTx(ctx context.Context, op string, fn func(ctx context.Context, s txStores[F, S]) error) error {
	var fnErr error
	err := dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		fnErr = fn(ctx, txStores[F, S]{
			tx:     tx,
			rel:    m.rel.WithDB(tx),
			first:  m.first.WithDB(tx),
			second: m.second.WithDB(tx),
		})
		return fnErr
	})
	if err != nil && fnErr == nil {
		return m.fail(op, err)
	}
	return err
}
