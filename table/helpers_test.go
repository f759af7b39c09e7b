package table

import (
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/tablestore/models"
	"github.com/google/uuid"
)

type person struct {
	models.Item
	Name string `validate:"required"`
	Age  int    `validate:"gte=0"`
}

func newPerson() *person { return &person{} }

func (p *person) Base() *models.Item { return &p.Item }
func (p *person) Values() []any      { return []any{p.Name, p.Age} }
func (p *person) ScanTargets() []any { return []any{&p.Name, &p.Age} }

var personTable = models.Descriptor{Table: "Person", Columns: []string{"Name", "Age"}}

var personColumns = []string{"Id", "ETag", "Name", "Age"}

// passThrough hands pgx.NamedArgs to the mock unchanged, the way the pgx
// driver receives them.
type passThrough struct{}

func (passThrough) ConvertValue(v any) (driver.Value, error) { return v, nil }

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual),
		sqlmock.ValueConverterOption(passThrough{}),
	)
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func newStoreWithMock(t *testing.T, opts ...Option) (*Store[*person], sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMock(t)
	s, err := New(db, personTable, newPerson, opts...)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	return s, mock
}

func personRows(rows ...*person) *sqlmock.Rows {
	r := sqlmock.NewRows(personColumns)
	for _, p := range rows {
		r.AddRow(p.ID.String(), p.ETag, p.Name, int64(p.Age))
	}
	return r
}

func countRows(n int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"count"}).AddRow(int64(n))
}

// fixTokens makes newETag return the given tokens in order.
func fixTokens(t *testing.T, tokens ...string) {
	t.Helper()
	orig := newETag
	i := 0
	newETag = func() string {
		if i >= len(tokens) {
			t.Fatalf("newETag called more than %d times", len(tokens))
		}
		tok := tokens[i]
		i++
		return tok
	}
	t.Cleanup(func() { newETag = orig })
}

func fixID(t *testing.T, id uuid.UUID) {
	t.Helper()
	orig := newID
	newID = func() uuid.UUID { return id }
	t.Cleanup(func() { newID = orig })
}

var testTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
