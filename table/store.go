package table

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/dmitrijs2005/tablestore/common"
	"github.com/dmitrijs2005/tablestore/dbx"
	"github.com/dmitrijs2005/tablestore/logging"
	"github.com/dmitrijs2005/tablestore/models"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Seams for tests.
var (
	newID   = uuid.New
	newETag = uuid.NewString
)

// Validator checks field-level rules of a record before it is written.
// *validator.Validate from go-playground/validator satisfies it.
type Validator interface {
	Struct(s any) error
}

var defaultValidator = validator.New(validator.WithRequiredStructEnabled())

type options struct {
	validator Validator
	logger    logging.Logger
}

// Option configures a Store.
type Option func(*options)

// WithValidator replaces the default go-playground validator. A nil
// validator leaves only the structural Id/ETag checks.
func WithValidator(v Validator) Option {
	return func(o *options) { o.validator = v }
}

// WithLogger sets the logger statements and conflicts are reported to.
func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Store is the CRUD and search engine for records of type T.
type Store[T models.Record] struct {
	db        dbx.DBTX
	desc      models.Descriptor
	newItem   func() T
	validator Validator
	logger    logging.Logger
}

// New returns a Store for the table described by desc. newItem must return a
// fresh, empty record each time it is called.
func New[T models.Record](db dbx.DBTX, desc models.Descriptor, newItem func() T, opts ...Option) (*Store[T], error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if newItem == nil {
		return nil, fmt.Errorf("%w: table %s has no record factory", common.ErrInvalidArgument, desc.Table)
	}
	o := options{validator: defaultValidator, logger: logging.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.Nop()
	}
	return &Store[T]{
		db:        db,
		desc:      desc,
		newItem:   newItem,
		validator: o.validator,
		logger:    o.logger.With("table", desc.Table),
	}, nil
}

// WithDB returns a copy of the store that runs its statements on db,
// typically a transaction.
func (s *Store[T]) WithDB(db dbx.DBTX) *Store[T] {
	c := *s
	c.db = db
	return &c
}

// Descriptor returns the table description the store was built with.
func (s *Store[T]) Descriptor() models.Descriptor {
	return s.desc
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// validate collects the structural violations of item and the field rules
// reported by the validator.
func (s *Store[T]) validate(item T) error {
	violations := item.Base().Violations()
	if s.validator != nil {
		if err := s.validator.Struct(item); err != nil {
			var fieldErrs validator.ValidationErrors
			var invalid *validator.InvalidValidationError
			switch {
			case errors.As(err, &fieldErrs):
				for _, fe := range fieldErrs {
					violations = append(violations, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
				}
			case errors.As(err, &invalid):
				// not a struct; nothing to check beyond the system columns
			default:
				return err
			}
		}
	}
	if len(violations) > 0 {
		return &common.ValidationError{Violations: violations}
	}
	return nil
}

func argv(params pgx.NamedArgs) []any {
	if len(params) == 0 {
		return nil
	}
	return []any{params}
}

func (s *Store[T]) fail(op string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", common.ErrExecution, op, s.desc.Table, err)
}

func (s *Store[T]) exec(ctx context.Context, op, query string, params pgx.NamedArgs) (int64, error) {
	s.logger.Debug(ctx, "exec", "op", op, "sql", query)
	n, err := dbx.Execute(ctx, s.db, query, argv(params)...)
	if err != nil {
		return 0, s.fail(op, err)
	}
	return n, nil
}

func (s *Store[T]) queryInt(ctx context.Context, op, query string, params pgx.NamedArgs) (int, error) {
	s.logger.Debug(ctx, "query", "op", op, "sql", query)
	n, err := dbx.QueryInt(ctx, s.db, query, argv(params)...)
	if err != nil {
		return 0, s.fail(op, err)
	}
	return n, nil
}

// targets returns the scan destinations for a row selected with
// statement.ColumnList.
func (s *Store[T]) targets(item T) []any {
	b := item.Base()
	t := []any{&b.ID, &b.ETag}
	if s.desc.TimeStamped {
		t = append(t, &b.CreatedAt, &b.UpdatedAt)
	}
	return append(t, item.ScanTargets()...)
}

func (s *Store[T]) query(ctx context.Context, op, query string, params pgx.NamedArgs) ([]T, error) {
	s.logger.Debug(ctx, "query", "op", op, "sql", query)
	rows, err := s.db.QueryContext(ctx, query, argv(params)...)
	if err != nil {
		return nil, s.fail(op, err)
	}
	defer rows.Close()

	var result []T
	for rows.Next() {
		item := s.newItem()
		if err := rows.Scan(s.targets(item)...); err != nil {
			return nil, s.fail(op, err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail(op, err)
	}
	return result, nil
}
