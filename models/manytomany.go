package models

import "github.com/google/uuid"

// SingleManyToManyTable is the shared table that holds relations of every type.
const SingleManyToManyTable = "SingleManyToMany"

// Relation table columns.
const (
	ColumnFirstID         = "FirstId"
	ColumnSecondID        = "SecondId"
	ColumnTypeID          = "TypeId"
	ColumnFirstSortOrder  = "FirstSortOrder"
	ColumnSecondSortOrder = "SecondSortOrder"
)

// ManyToMany links a first and a second record. FirstSortOrder ranks the row
// among the rows sharing its FirstID and TypeID, SecondSortOrder among the rows
// sharing its SecondID and TypeID. Both ranks start at 1.
type ManyToMany struct {
	Item
	FirstID         uuid.UUID `validate:"required"`
	SecondID        uuid.UUID `validate:"required"`
	TypeID          uuid.UUID
	FirstSortOrder  int `validate:"gte=1"`
	SecondSortOrder int `validate:"gte=1"`
}

// NewManyToMany is the record factory for relation rows.
func NewManyToMany() *ManyToMany {
	return &ManyToMany{}
}

// ManyToManyDescriptor describes a relation table.
func ManyToManyDescriptor(table string) Descriptor {
	return Descriptor{
		Table: table,
		Columns: []string{
			ColumnFirstID,
			ColumnSecondID,
			ColumnTypeID,
			ColumnFirstSortOrder,
			ColumnSecondSortOrder,
		},
		TimeStamped: true,
	}
}

func (m *ManyToMany) Base() *Item { return &m.Item }

func (m *ManyToMany) Values() []any {
	return []any{m.FirstID, m.SecondID, m.TypeID, m.FirstSortOrder, m.SecondSortOrder}
}

func (m *ManyToMany) ScanTargets() []any {
	return []any{&m.FirstID, &m.SecondID, &m.TypeID, &m.FirstSortOrder, &m.SecondSortOrder}
}
