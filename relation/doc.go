// Package relation manages an ordered many-to-many relationship stored in a
// relation table shared by several relation types.
//
// Every relation row carries two ranks. FirstSortOrder orders the rows of one
// first record (same FirstId and TypeId), SecondSortOrder the rows of one
// second record (same SecondId and TypeId). Inserts and moves keep each of
// those sequences contiguous, 1..N, inside a single transaction.
//
// Relation rows are written only through a Manager: it takes the advisory
// locks of the scopes involved and shifts the neighbouring ranks. The relation
// store is not exposed for that reason.
//
// Primary relations
//
// An endpoint table may keep, per relation type, a column naming its primary
// relation (see PrimaryReferencer). When a relation becomes rank 1 in one
// side's order, the record on the other side gets the relation's id in that
// column. Deleting the relation clears the column; a single DeleteRelationship
// also hands it to the relation that leads the order afterwards.
package relation
