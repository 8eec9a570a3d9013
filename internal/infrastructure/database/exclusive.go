package database

import (
	"time"

	"gorm.io/gorm"
)

// ExclusiveGroup is a boolean column that may be true on at most one row per
// scope value, such as the default reference table of a region.
type ExclusiveGroup struct {
	Table string
	Flag  string
	Scope string
}

var defaultTableGroup = ExclusiveGroup{Table: "reference_tables", Flag: "is_default", Scope: "region"}

// ReassignExclusive clears the flag on every other row sharing scope and sets it
// on id. It must run inside a transaction; the partial unique index on the
// group turns a lost race into gorm.ErrDuplicatedKey instead of two winners.
func ReassignExclusive(tx *gorm.DB, g ExclusiveGroup, id string, scope any) error {
	now := time.Now()
	if err := tx.Table(g.Table).
		Where(g.Scope+" = ? AND id <> ? AND "+g.Flag+" = ?", scope, id, true).
		Updates(map[string]any{g.Flag: false, "updated_at": now}).Error; err != nil {
		return err
	}

	res := tx.Table(g.Table).
		Where("id = ?", id).
		Updates(map[string]any{g.Flag: true, "updated_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
