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

// shift moves the ranks in [from, to] of one scope by delta.
type shift struct {
	from, to, delta int
}

// placement is where a row ends up in its scope and what has to move to make
// room for it.
type placement struct {
	rank  int
	shift *shift
}

// plan computes the placement of a row in a scope whose highest rank is last.
//
// With cur == nil the row is new: a nil target appends it, otherwise it lands
// on target (at most last+1) and every rank from there up moves one step
// down the list. With cur set the row moves from cur to target (at most last,
// nil meaning last) and the ranks between the two positions close the gap.
func plan(cur, target *int, last int) (placement, error) {
	if target != nil && *target < 1 {
		return placement{}, fmt.Errorf("%w: sort order %d, must be 1 or more", common.ErrInvalidArgument, *target)
	}
	if cur == nil {
		rank := last + 1
		if target != nil {
			rank = min(*target, rank)
		}
		p := placement{rank: rank}
		if rank <= last {
			p.shift = &shift{from: rank, to: last, delta: 1}
		}
		return p, nil
	}

	rank := last
	if target != nil {
		rank = min(*target, last)
	}
	p := placement{rank: rank}
	switch {
	case rank > *cur:
		p.shift = &shift{from: *cur + 1, to: rank, delta: -1}
	case rank < *cur:
		p.shift = &shift{from: rank, to: *cur - 1, delta: 1}
	}
	return p, nil
}

func scopeArgs(scopeID, typeID uuid.UUID) pgx.NamedArgs {
	return pgx.NamedArgs{statement.ParamScopeID: scopeID, statement.ParamTypeID: typeID}
}

func scopeWhere(side Side) string {
	return fmt.Sprintf("%s = @%s AND %s = @%s",
		statement.Ident(side.scopeColumn()), statement.ParamScopeID,
		statement.Ident(models.ColumnTypeID), statement.ParamTypeID)
}

func (m *Manager[F, S]) lockKey(side Side, scopeID uuid.UUID) string {
	return fmt.Sprintf("%s/%s/%s/%s", m.desc.Table, side, m.typeID, scopeID)
}

// lockScopes serializes writers of the two scopes a row belongs to. The first
// scope is always locked before the second one.
func (m *Manager[F, S]) lockScopes(ctx context.Context, tx dbx.DBTX, firstID, secondID uuid.UUID) error {
	for _, s := range []struct {
		side Side
		id   uuid.UUID
	}{{First, firstID}, {Second, secondID}} {
		key := m.lockKey(s.side, s.id)
		if _, err := dbx.Execute(ctx, tx, statement.AdvisoryLock(), pgx.NamedArgs{statement.ParamLockKey: key}); err != nil {
			return m.fail("lock "+s.side.String(), err)
		}
	}
	return nil
}

func (m *Manager[F, S]) maxSortOrder(ctx context.Context, db dbx.DBTX, side Side, scopeID uuid.UUID) (int, error) {
	n, err := dbx.QueryInt(ctx, db,
		statement.MaxSortOrder(m.desc, side.sortColumn(), side.scopeColumn()),
		scopeArgs(scopeID, m.typeID))
	if err != nil {
		return 0, m.fail("max sort order", err)
	}
	return n, nil
}

// makeRoom places a row in the side's scope of scopeID, shifting the other
// rows of the scope with one range UPDATE when needed.
func (m *Manager[F, S]) makeRoom(ctx context.Context, tx dbx.DBTX, side Side, scopeID uuid.UUID, cur, target *int) (placement, error) {
	last, err := m.maxSortOrder(ctx, tx, side, scopeID)
	if err != nil {
		return placement{}, err
	}
	p, err := plan(cur, target, last)
	if err != nil {
		return placement{}, err
	}
	if p.shift == nil {
		return p, nil
	}
	args := scopeArgs(scopeID, m.typeID)
	args[statement.ParamFrom] = p.shift.from
	args[statement.ParamTo] = p.shift.to
	query := statement.Shift(m.desc, side.sortColumn(), side.scopeColumn(), p.shift.delta)
	if _, err := dbx.Execute(ctx, tx, query, args); err != nil {
		return placement{}, m.fail("shift "+side.String(), err)
	}
	m.logger.Debug(ctx, "shifted sort order", "side", side, "scope", scopeID,
		"from", p.shift.from, "to", p.shift.to, "delta", p.shift.delta)
	return p, nil
}

// promote points the primary column of the endpoint opposite to side at the
// relation that now leads the side's scope of scopeID. Endpoints without a
// primary column for the type are left alone.
func (m *Manager[F, S]) promote(ctx context.Context, s txStores[F, S], side Side, scopeID uuid.UUID) error {
	column := m.secondPrimary
	if side == Second {
		column = m.firstPrimary
	}
	if column == "" {
		return nil
	}

	top, found, err := s.rel.SearchFirstWhere(ctx, scopeArgs(scopeID, m.typeID), scopeWhere(side), statement.Ident(side.sortColumn()))
	if err != nil || !found {
		return err
	}

	var endpointID uuid.UUID
	var ok bool
	if side == First {
		endpointID = top.SecondID
		ok, err = s.second.SetColumn(ctx, endpointID, column, top.ID)
	} else {
		endpointID = top.FirstID
		ok, err = s.first.SetColumn(ctx, endpointID, column, top.ID)
	}
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: endpoint %s of relation %s", common.ErrNotFound, endpointID, top.ID)
	}
	m.logger.Debug(ctx, "primary relation set", "side", side, "endpoint", endpointID, "relation", top.ID)
	return nil
}
