package relation

import (
	"database/sql"
	"database/sql/driver"
	"reflect"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/tablestore/models"
	"github.com/dmitrijs2005/tablestore/statement"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

// node is the record type of both endpoint tables in these tests.
type node struct {
	models.Item
	Name      string
	PrimaryID uuid.UUID
}

func newNode() *node { return &node{} }

func (n *node) Base() *models.Item { return &n.Item }
func (n *node) Values() []any      { return []any{n.Name, n.PrimaryID} }
func (n *node) ScanTargets() []any { return []any{&n.Name, &n.PrimaryID} }

const primaryColumn = "PrimaryId"

var (
	albums  = models.Descriptor{Table: "Album", Columns: []string{"Name", primaryColumn}}
	tracks  = models.Descriptor{Table: "Track", Columns: []string{"Name", primaryColumn}}
	relDesc = models.ManyToManyDescriptor(models.SingleManyToManyTable)

	typeID   = uuid.MustParse("0e8b7c1a-2f56-4a4e-9d3c-5b1f0f2d6a11")
	testTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
)

var relColumns = []string{"Id", "ETag", "CreatedAt", "UpdatedAt", "FirstId", "SecondId", "TypeId", "FirstSortOrder", "SecondSortOrder"}

type passThrough struct{}

func (passThrough) ConvertValue(v any) (driver.Value, error) { return v, nil }

// subset matches pgx.NamedArgs carrying at least the given values.
type subset pgx.NamedArgs

func (s subset) Match(v driver.Value) bool {
	args, ok := v.(pgx.NamedArgs)
	if !ok {
		return false
	}
	for k, want := range s {
		if !reflect.DeepEqual(args[k], want) {
			return false
		}
	}
	return true
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual),
		sqlmock.ValueConverterOption(passThrough{}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// newTestManager wires albums (first) to tracks (second). The primary
// referencers are optional.
func newTestManager(t *testing.T, albumPrimary, trackPrimary PrimaryReferencer) (*Manager[*node, *node], sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMock(t)
	m, err := NewManager(db, models.SingleManyToManyTable, typeID,
		Endpoint[*node]{Descriptor: albums, New: newNode, Primary: albumPrimary},
		Endpoint[*node]{Descriptor: tracks, New: newNode, Primary: trackPrimary},
	)
	require.NoError(t, err)
	return m, mock
}

func relRows(rows ...*models.ManyToMany) *sqlmock.Rows {
	r := sqlmock.NewRows(relColumns)
	for _, m := range rows {
		r.AddRow(m.ID.String(), m.ETag, testTime, testTime,
			m.FirstID.String(), m.SecondID.String(), m.TypeID.String(),
			int64(m.FirstSortOrder), int64(m.SecondSortOrder))
	}
	return r
}

func nodeRows(names ...string) *sqlmock.Rows {
	r := sqlmock.NewRows([]string{"Id", "ETag", "Name", primaryColumn})
	for _, n := range names {
		r.AddRow(uuid.NewString(), "e", n, uuid.Nil.String())
	}
	return r
}

func intRow(n int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"n"}).AddRow(int64(n))
}

func relation(first, second uuid.UUID, firstRank, secondRank int) *models.ManyToMany {
	return &models.ManyToMany{
		Item:            models.Item{ID: uuid.New(), ETag: "e1", CreatedAt: testTime, UpdatedAt: testTime},
		FirstID:         first,
		SecondID:        second,
		TypeID:          typeID,
		FirstSortOrder:  firstRank,
		SecondSortOrder: secondRank,
	}
}

func lockKey(side Side, id uuid.UUID) string {
	return models.SingleManyToManyTable + "/" + side.String() + "/" + typeID.String() + "/" + id.String()
}

func expectLocks(mock sqlmock.Sqlmock, firstID, secondID uuid.UUID) {
	mock.ExpectExec(statement.AdvisoryLock()).
		WithArgs(pgx.NamedArgs{statement.ParamLockKey: lockKey(First, firstID)}).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(statement.AdvisoryLock()).
		WithArgs(pgx.NamedArgs{statement.ParamLockKey: lockKey(Second, secondID)}).
		WillReturnResult(sqlmock.NewResult(0, 1))
}

func expectPair(mock sqlmock.Sqlmock, firstID, secondID uuid.UUID, rows *sqlmock.Rows) {
	mock.ExpectQuery(statement.Page(statement.Read(relDesc, pairWhere), "", 0, 2)).
		WithArgs(pgx.NamedArgs{"FirstId": firstID, "SecondId": secondID, "TypeId": typeID}).
		WillReturnRows(rows)
}

func expectMax(mock sqlmock.Sqlmock, side Side, scopeID uuid.UUID, last int) {
	mock.ExpectQuery(statement.MaxSortOrder(relDesc, side.sortColumn(), side.scopeColumn())).
		WithArgs(pgx.NamedArgs{"ScopeId": scopeID, "TypeId": typeID}).
		WillReturnRows(intRow(last))
}

func expectShift(mock sqlmock.Sqlmock, side Side, scopeID uuid.UUID, from, to, delta int) {
	mock.ExpectExec(statement.Shift(relDesc, side.sortColumn(), side.scopeColumn(), delta)).
		WithArgs(pgx.NamedArgs{"ScopeId": scopeID, "TypeId": typeID, "From": from, "To": to}).
		WillReturnResult(sqlmock.NewResult(0, int64(to-from+1)))
}

var readByID = statement.Page(statement.Read(relDesc, `"Id" = @Id`), "", 0, 2)

func expectTop(mock sqlmock.Sqlmock, side Side, scopeID uuid.UUID, top *models.ManyToMany) {
	mock.ExpectQuery(statement.Page(statement.Read(relDesc, scopeWhere(side)), statement.Ident(side.sortColumn()), 0, 1)).
		WithArgs(pgx.NamedArgs{"ScopeId": scopeID, "TypeId": typeID}).
		WillReturnRows(relRows(top))
}

func expectSetPrimary(mock sqlmock.Sqlmock, d models.Descriptor, endpointID, relID uuid.UUID, affected int64) {
	mock.ExpectExec(statement.SetColumn(d, primaryColumn)).
		WithArgs(pgx.NamedArgs{"Id": endpointID, "Value": relID}).
		WillReturnResult(sqlmock.NewResult(0, affected))
}

func expectClearPrimary(mock sqlmock.Sqlmock, d models.Descriptor, relWhere string, args pgx.NamedArgs, affected int64) {
	mock.ExpectExec(statement.ClearReferences(d, primaryColumn, relDesc, relWhere)).
		WithArgs(args).
		WillReturnResult(sqlmock.NewResult(0, affected))
}
