package repository

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gorm.io/gorm"

	apperrors "yamdb/internal/errors"
	"yamdb/internal/model"
)

// translate maps driver-level constraint violations onto domain errors.
func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", apperrors.ErrDuplicate, err)
	}
	return err
}

// unbounded stands in for "no limit" when an offset is set. MySQL has no
// OFFSET without LIMIT.
const unbounded = math.MaxInt32

// paginate applies limit/offset. A zero limit means no limit.
func paginate(p model.ListParams) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		limit := p.Limit
		if limit <= 0 && p.Offset > 0 {
			limit = unbounded
		}
		if limit > 0 {
			db = db.Limit(limit)
		}
		if p.Offset > 0 {
			db = db.Offset(p.Offset)
		}
		return db
	}
}

// contains builds a case-insensitive LIKE condition on column.
func contains(column, term string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if term == "" {
			return db
		}
		return db.Where("LOWER("+column+") LIKE ?", "%"+strings.ToLower(term)+"%")
	}
}

// mustAffect converts a no-op delete into gorm.ErrRecordNotFound.
func mustAffect(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
