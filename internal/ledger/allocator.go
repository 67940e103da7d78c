package ledger

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// Allocator computes the next usable primary key for a table as
// MAX(id) + 1. No sequence or lock backs the value: it is a read, not a
// reservation, and two allocations without an intervening insert return
// the same id. Callers that need the id to stick must allocate inside
// the transaction that inserts the row.
type Allocator struct {
	db *gorm.DB
}

func NewAllocator(db *gorm.DB) *Allocator {
	return &Allocator{db: db}
}

// NextID returns MAX(idColumn) + 1 for the table, optionally scoped to a
// branch. An empty table or scope yields 1. Read errors also yield 1:
// the fallback is deliberate, callers treat the result as a best guess.
func (a *Allocator) NextID(ctx context.Context, table, idColumn string, branchID ...int32) int32 {
	var max sql.NullInt64

	query := a.db.WithContext(ctx).Table(table).Select("MAX(" + idColumn + ")")
	if len(branchID) > 0 {
		query = query.Where("branch_id = ?", branchID[0])
	}

	if err := query.Scan(&max).Error; err != nil {
		return 1
	}
	if !max.Valid {
		return 1
	}
	return int32(max.Int64) + 1
}
