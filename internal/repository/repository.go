package repository

import (
	"context"

	"gorm.io/gorm"
)

// conn returns tx when the caller runs inside a transaction, otherwise the
// repository's own handle. Both are bound to ctx.
func conn(ctx context.Context, db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// paginate applies page/limit with sane lower bounds.
func paginate(q *gorm.DB, page, limit int) *gorm.DB {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	return q.Offset((page - 1) * limit).Limit(limit)
}
