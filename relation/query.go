package relation

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/tablestore/common"
	"github.com/dmitrijs2005/tablestore/models"
	"github.com/dmitrijs2005/tablestore/statement"
	"github.com/dmitrijs2005/tablestore/table"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var pairWhere = fmt.Sprintf("%s = @%s AND %s = @%s AND %s = @%s",
	statement.Ident(models.ColumnFirstID), models.ColumnFirstID,
	statement.Ident(models.ColumnSecondID), models.ColumnSecondID,
	statement.Ident(models.ColumnTypeID), models.ColumnTypeID)

func (m *Manager[F, S]) readPair(ctx context.Context, rel *table.Store[*models.ManyToMany], firstID, secondID uuid.UUID) (*models.ManyToMany, bool, error) {
	return rel.SearchWhereSingle(ctx, pgx.NamedArgs{
		models.ColumnFirstID:  firstID,
		models.ColumnSecondID: secondID,
		models.ColumnTypeID:   m.typeID,
	}, pairWhere)
}

// Read returns the relation row with the given id.
func (m *Manager[F, S]) Read(ctx context.Context, id uuid.UUID) (*models.ManyToMany, bool, error) {
	return m.rel.Read(ctx, id)
}

// ReadByIDs returns the relation between firstID and secondID.
func (m *Manager[F, S]) ReadByIDs(ctx context.Context, firstID, secondID uuid.UUID) (*models.ManyToMany, bool, error) {
	if err := checkIDs(firstID, secondID); err != nil {
		return nil, false, err
	}
	return m.readPair(ctx, m.rel, firstID, secondID)
}

// MaxSortOrder returns the highest rank in the side's order of scopeID, 0 when
// it has no relations.
func (m *Manager[F, S]) MaxSortOrder(ctx context.Context, side Side, scopeID uuid.UUID) (int, error) {
	if !side.valid() {
		return 0, fmt.Errorf("%w: %s", common.ErrInvalidArgument, side)
	}
	if err := checkIDs(scopeID); err != nil {
		return 0, err
	}
	return m.maxSortOrder(ctx, m.db, side, scopeID)
}

// SearchByFirstID pages through the relation rows of firstID in FirstSortOrder.
func (m *Manager[F, S]) SearchByFirstID(ctx context.Context, firstID uuid.UUID, offset, limit int) (*models.PageEnvelope[*models.ManyToMany], error) {
	return m.searchRelations(ctx, First, firstID, offset, limit)
}

// SearchBySecondID pages through the relation rows of secondID in SecondSortOrder.
func (m *Manager[F, S]) SearchBySecondID(ctx context.Context, secondID uuid.UUID, offset, limit int) (*models.PageEnvelope[*models.ManyToMany], error) {
	return m.searchRelations(ctx, Second, secondID, offset, limit)
}

func (m *Manager[F, S]) searchRelations(ctx context.Context, side Side, scopeID uuid.UUID, offset, limit int) (*models.PageEnvelope[*models.ManyToMany], error) {
	if err := checkIDs(scopeID); err != nil {
		return nil, err
	}
	return m.rel.SearchWhere(ctx, scopeArgs(scopeID, m.typeID), scopeWhere(side), statement.Ident(side.sortColumn()), offset, limit)
}

// SearchSecondsByFirstID pages through the second records related to firstID,
// in FirstSortOrder.
func (m *Manager[F, S]) SearchSecondsByFirstID(ctx context.Context, firstID uuid.UUID, offset, limit int) (*models.PageEnvelope[S], error) {
	if err := checkIDs(firstID); err != nil {
		return nil, err
	}
	return searchOther(ctx, m, m.second, First, firstID, "", offset, limit)
}

// SearchFirstsBySecondID pages through the first records related to secondID,
// in SecondSortOrder.
func (m *Manager[F, S]) SearchFirstsBySecondID(ctx context.Context, secondID uuid.UUID, offset, limit int) (*models.PageEnvelope[F], error) {
	if err := checkIDs(secondID); err != nil {
		return nil, err
	}
	return searchOther(ctx, m, m.first, Second, secondID, "", offset, limit)
}

// SearchSecondsByFirstIDAndPrimary is SearchSecondsByFirstID limited to the
// second records whose primary relation is their relation with firstID. It
// fails with common.ErrInvalidArgument when the second endpoint keeps no
// primary relation for the type.
func (m *Manager[F, S]) SearchSecondsByFirstIDAndPrimary(ctx context.Context, firstID uuid.UUID, offset, limit int) (*models.PageEnvelope[S], error) {
	if err := checkIDs(firstID); err != nil {
		return nil, err
	}
	if m.secondPrimary == "" {
		return nil, m.noPrimary(m.second.Descriptor())
	}
	return searchOther(ctx, m, m.second, First, firstID, m.secondPrimary, offset, limit)
}

// SearchFirstsBySecondIDAndPrimary is SearchFirstsBySecondID limited to the
// first records whose primary relation is their relation with secondID. It
// fails with common.ErrInvalidArgument when the first endpoint keeps no
// primary relation for the type.
func (m *Manager[F, S]) SearchFirstsBySecondIDAndPrimary(ctx context.Context, secondID uuid.UUID, offset, limit int) (*models.PageEnvelope[F], error) {
	if err := checkIDs(secondID); err != nil {
		return nil, err
	}
	if m.firstPrimary == "" {
		return nil, m.noPrimary(m.first.Descriptor())
	}
	return searchOther(ctx, m, m.first, Second, secondID, m.firstPrimary, offset, limit)
}

func (m *Manager[F, S]) noPrimary(d models.Descriptor) error {
	return fmt.Errorf("%w: %s has no primary column for relation type %s", common.ErrInvalidArgument, d.Table, m.typeID)
}

// ReadTopSecond returns the second record ranked first among the relations of firstID.
func (m *Manager[F, S]) ReadTopSecond(ctx context.Context, firstID uuid.UUID) (S, bool, error) {
	if err := checkIDs(firstID); err != nil {
		var zero S
		return zero, false, err
	}
	return readTop(ctx, m, m.second, First, firstID)
}

// ReadTopFirst returns the first record ranked first among the relations of secondID.
func (m *Manager[F, S]) ReadTopFirst(ctx context.Context, secondID uuid.UUID) (F, bool, error) {
	if err := checkIDs(secondID); err != nil {
		var zero F
		return zero, false, err
	}
	return readTop(ctx, m, m.first, Second, secondID)
}

// searchOther joins the relation rows of scopeID on side to the records they
// reference on the other side. With a primary column only the records whose
// primary relation is the joined row are kept.
func searchOther[F, S, T models.Record](ctx context.Context, m *Manager[F, S], other *table.Store[T], side Side, scopeID uuid.UUID, primary string, offset, limit int) (*models.PageEnvelope[T], error) {
	fromWhere := statement.JoinOther(m.desc, other.Descriptor(), side.scopeColumn(), side.otherColumn())
	if primary != "" {
		fromWhere = statement.JoinOtherByPrimary(m.desc, other.Descriptor(), side.scopeColumn(), side.otherColumn(), primary)
	}
	return other.SearchAdvanced(ctx, scopeArgs(scopeID, m.typeID),
		statement.CountJoined, statement.SelectPrefix(other.Descriptor(), statement.RecordAlias), fromWhere,
		statement.Qualified(side.sortColumn()), offset, limit)
}

func readTop[F, S, T models.Record](ctx context.Context, m *Manager[F, S], other *table.Store[T], side Side, scopeID uuid.UUID) (T, bool, error) {
	fromWhere := statement.JoinOther(m.desc, other.Descriptor(), side.scopeColumn(), side.otherColumn())
	return other.SearchFirstAdvanced(ctx, scopeArgs(scopeID, m.typeID),
		statement.SelectPrefix(other.Descriptor(), statement.RecordAlias)+" "+fromWhere,
		statement.Qualified(side.sortColumn()))
}
