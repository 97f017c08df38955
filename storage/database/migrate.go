package database

import (
	"PunchPass/internal/model"
)

// Migrate 审计流水只有一张表，直接 AutoMigrate
func Migrate() error {
	return db.AutoMigrate(
		&model.AttendanceEvent{},
	)
}
