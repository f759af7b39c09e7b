package relation

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/tablestore/common"
	"github.com/dmitrijs2005/tablestore/dbx"
	"github.com/dmitrijs2005/tablestore/models"
	"github.com/dmitrijs2005/tablestore/statement"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	wherePrimaryKey  = statement.Ident(models.ColumnID) + " = @" + models.ColumnID
	referencingWhere = fmt.Sprintf("(%s = @%s OR %s = @%s) AND %s = @%s",
		statement.Ident(models.ColumnFirstID), models.ColumnID,
		statement.Ident(models.ColumnSecondID), models.ColumnID,
		statement.Ident(models.ColumnTypeID), statement.ParamTypeID)
)

func rankOf(row *models.ManyToMany, side Side) int {
	if side == First {
		return row.FirstSortOrder
	}
	return row.SecondSortOrder
}

func setRank(row *models.ManyToMany, side Side, rank int) {
	if side == First {
		row.FirstSortOrder = rank
	} else {
		row.SecondSortOrder = rank
	}
}

func checkIDs(ids ...uuid.UUID) error {
	for _, id := range ids {
		if id == uuid.Nil {
			return fmt.Errorf("%w: empty id", common.ErrInvalidArgument)
		}
	}
	return nil
}

func checkRanks(ranks ...*int) error {
	for _, r := range ranks {
		if r != nil && *r < 1 {
			return fmt.Errorf("%w: sort order %d, must be 1 or more", common.ErrInvalidArgument, *r)
		}
	}
	return nil
}

// SetSortOrder puts the relation between firstID and secondID at rank in the
// side's order, creating the relation when it does not exist yet. A nil rank
// means last and ranks past the end are treated as last. A new relation is
// appended to the order of the other side.
func (m *Manager[F, S]) SetSortOrder(ctx context.Context, side Side, firstID, secondID uuid.UUID, rank *int) (*models.ManyToMany, error) {
	if !side.valid() {
		return nil, fmt.Errorf("%w: %s", common.ErrInvalidArgument, side)
	}
	if err := checkIDs(firstID, secondID); err != nil {
		return nil, err
	}
	if err := checkRanks(rank); err != nil {
		return nil, err
	}

	var out *models.ManyToMany
	err := m.inTx(ctx, "set sort order", func(ctx context.Context, s txStores[F, S]) error {
		if err := m.lockScopes(ctx, s.tx, firstID, secondID); err != nil {
			return err
		}
		row, found, err := m.readPair(ctx, s.rel, firstID, secondID)
		if err != nil {
			return err
		}
		if !found {
			var firstRank, secondRank *int
			if side == First {
				firstRank = rank
			} else {
				secondRank = rank
			}
			out, err = m.insert(ctx, s, firstID, secondID, firstRank, secondRank)
			return err
		}
		out, err = m.move(ctx, s, row, side, rank)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Create adds a relation between firstID and secondID at the given ranks, nil
// meaning last. It fails with common.ErrConflict when the pair is already
// related.
func (m *Manager[F, S]) Create(ctx context.Context, firstID, secondID uuid.UUID, firstRank, secondRank *int) (*models.ManyToMany, error) {
	if err := checkIDs(firstID, secondID); err != nil {
		return nil, err
	}
	if err := checkRanks(firstRank, secondRank); err != nil {
		return nil, err
	}

	var out *models.ManyToMany
	err := m.inTx(ctx, "create", func(ctx context.Context, s txStores[F, S]) error {
		if err := m.lockScopes(ctx, s.tx, firstID, secondID); err != nil {
			return err
		}
		existing, found, err := m.readPair(ctx, s.rel, firstID, secondID)
		if err != nil {
			return err
		}
		if found {
			return fmt.Errorf("%w: %s and %s are already related as %s", common.ErrConflict, firstID, secondID, existing.ID)
		}
		out, err = m.insert(ctx, s, firstID, secondID, firstRank, secondRank)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (m *Manager[F, S]) insert(ctx context.Context, s txStores[F, S], firstID, secondID uuid.UUID, firstRank, secondRank *int) (*models.ManyToMany, error) {
	fp, err := m.makeRoom(ctx, s.tx, First, firstID, nil, firstRank)
	if err != nil {
		return nil, err
	}
	sp, err := m.makeRoom(ctx, s.tx, Second, secondID, nil, secondRank)
	if err != nil {
		return nil, err
	}

	created, err := s.rel.Create(ctx, &models.ManyToMany{
		FirstID:         firstID,
		SecondID:        secondID,
		TypeID:          m.typeID,
		FirstSortOrder:  fp.rank,
		SecondSortOrder: sp.rank,
	})
	if err != nil {
		return nil, err
	}
	m.logger.Debug(ctx, "relation created", "id", created.ID, "first", firstID, "second", secondID,
		"first_rank", fp.rank, "second_rank", sp.rank)

	if fp.rank == 1 {
		if err := m.promote(ctx, s, First, firstID); err != nil {
			return nil, err
		}
	}
	if sp.rank == 1 {
		if err := m.promote(ctx, s, Second, secondID); err != nil {
			return nil, err
		}
	}
	return created, nil
}

func (m *Manager[F, S]) move(ctx context.Context, s txStores[F, S], row *models.ManyToMany, side Side, rank *int) (*models.ManyToMany, error) {
	scopeID := row.FirstID
	if side == Second {
		scopeID = row.SecondID
	}
	cur := rankOf(row, side)
	p, err := m.makeRoom(ctx, s.tx, side, scopeID, &cur, rank)
	if err != nil {
		return nil, err
	}
	if p.rank == cur {
		return row, nil
	}

	setRank(row, side, p.rank)
	updated, err := s.rel.Update(ctx, row)
	if err != nil {
		return nil, err
	}
	m.logger.Debug(ctx, "relation moved", "id", row.ID, "side", side, "from", cur, "to", p.rank)

	if p.rank == 1 || cur == 1 {
		if err := m.promote(ctx, s, side, scopeID); err != nil {
			return nil, err
		}
	}
	return updated, nil
}

// DeleteRelationship removes one relation row. The ranks of the remaining
// rows are left as they are. Endpoints whose primary relation was the removed
// row point at the relation now leading the row's scope, or at nothing when
// the scope is empty.
func (m *Manager[F, S]) DeleteRelationship(ctx context.Context, id uuid.UUID) error {
	if err := checkIDs(id); err != nil {
		return err
	}
	return m.inTx(ctx, "delete relationship", func(ctx context.Context, s txStores[F, S]) error {
		row, found, err := s.rel.Read(ctx, id)
		if err != nil || !found {
			return err
		}
		if err := m.lockScopes(ctx, s.tx, row.FirstID, row.SecondID); err != nil {
			return err
		}
		// the ranks may have changed while waiting for the locks
		row, found, err = s.rel.Read(ctx, id)
		if err != nil || !found {
			return err
		}
		if err := m.clearPrimaries(ctx, s.tx, wherePrimaryKey, pgx.NamedArgs{models.ColumnID: id}); err != nil {
			return err
		}
		if err := s.rel.Delete(ctx, id); err != nil {
			return err
		}
		if row.FirstSortOrder == 1 {
			if err := m.promote(ctx, s, First, row.FirstID); err != nil {
				return err
			}
		}
		if row.SecondSortOrder == 1 {
			if err := m.promote(ctx, s, Second, row.SecondID); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteRelationshipsFor removes every relation row, of any type, that has id
// on either side, and reports how many rows went. Primary references to the
// removed rows of the manager's type are cleared.
func (m *Manager[F, S]) DeleteRelationshipsFor(ctx context.Context, id uuid.UUID) (int64, error) {
	if err := checkIDs(id); err != nil {
		return 0, err
	}
	var n int64
	err := m.inTx(ctx, "delete relationships", func(ctx context.Context, s txStores[F, S]) error {
		var err error
		n, err = m.deleteReferencing(ctx, s.tx, id)
		return err
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (m *Manager[F, S]) deleteReferencing(ctx context.Context, tx dbx.DBTX, id uuid.UUID) (int64, error) {
	err := m.clearPrimaries(ctx, tx, referencingWhere,
		pgx.NamedArgs{models.ColumnID: id, statement.ParamTypeID: m.typeID})
	if err != nil {
		return 0, err
	}
	n, err := dbx.Execute(ctx, tx, statement.DeleteReferencing(m.desc), pgx.NamedArgs{models.ColumnID: id})
	if err != nil {
		return 0, m.fail("delete relationships", err)
	}
	m.logger.Debug(ctx, "relationships deleted", "id", id, "rows", n)
	return n, nil
}

// clearPrimaries sets to NULL the primary columns of both endpoints that refer
// to a relation row matching relWhere.
func (m *Manager[F, S]) clearPrimaries(ctx context.Context, tx dbx.DBTX, relWhere string, args pgx.NamedArgs) error {
	for _, e := range []struct {
		desc   models.Descriptor
		column string
	}{
		{m.first.Descriptor(), m.firstPrimary},
		{m.second.Descriptor(), m.secondPrimary},
	} {
		if e.column == "" {
			continue
		}
		query := statement.ClearReferences(e.desc, e.column, m.desc, relWhere)
		n, err := dbx.Execute(ctx, tx, query, args)
		if err != nil {
			return m.fail("clear primary of "+e.desc.Table, err)
		}
		if n > 0 {
			m.logger.Debug(ctx, "primary relation cleared", "table", e.desc.Table, "rows", n)
		}
	}
	return nil
}

// DeleteFirst removes a first record together with all its relation rows.
func (m *Manager[F, S]) DeleteFirst(ctx context.Context, id uuid.UUID) error {
	if err := checkIDs(id); err != nil {
		return err
	}
	return m.inTx(ctx, "delete first", func(ctx context.Context, s txStores[F, S]) error {
		if _, err := m.deleteReferencing(ctx, s.tx, id); err != nil {
			return err
		}
		return s.first.Delete(ctx, id)
	})
}

// DeleteSecond removes a second record together with all its relation rows.
func (m *Manager[F, S]) DeleteSecond(ctx context.Context, id uuid.UUID) error {
	if err := checkIDs(id); err != nil {
		return err
	}
	return m.inTx(ctx, "delete second", func(ctx context.Context, s txStores[F, S]) error {
		if _, err := m.deleteReferencing(ctx, s.tx, id); err != nil {
			return err
		}
		return s.second.Delete(ctx, id)
	})
}
