package repository

import (
	"context"
	"sort"

	"gorm.io/gorm"
)

// Advisory lock namespaces (first key of pg_advisory_xact_lock).
const (
	lockProducto     int32 = 1
	lockMateriaPrima int32 = 2
)

// conn returns tx when the caller runs inside a transaction, or the base
// connection otherwise. Stubs in tests pass a nil tx.
func conn(ctx context.Context, db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// lockIDs takes one transaction-scoped advisory lock per id, in ascending
// order so that two transactions touching overlapping sets cannot deadlock.
// The locks are released automatically at COMMIT or ROLLBACK.
func lockIDs(ctx context.Context, tx *gorm.DB, namespace int32, ids []uint) error {
	sorted := make([]uint, 0, len(ids))
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			sorted = append(sorted, id)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	for _, id := range sorted {
		if err := tx.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(?, ?)", namespace, int32(id)).Error; err != nil {
			return err
		}
	}
	return nil
}

// paginate normalises page/limit and returns the offset.
func paginate(page, limit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	return page, limit, (page - 1) * limit
}
