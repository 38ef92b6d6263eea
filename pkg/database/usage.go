package database

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecordUsage adds one request generating weeks weeks for people people to
// today's usage row of keyID.
func RecordUsage(ctx context.Context, db *gorm.DB, keyID uint, weeks, people int) error {
	today := time.Now().Format("2006-01-02")

	// OnConflict keeps it a single-query upsert on both Postgres and SQLite
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"request_count": gorm.Expr("request_count + ?", 1),
			"total_weeks":   gorm.Expr("total_weeks + ?", weeks),
			"total_people":  gorm.Expr("total_people + ?", people),
		}),
	}).Create(&APIUsage{
		KeyID:        keyID,
		Date:         today,
		RequestCount: 1,
		TotalWeeks:   weeks,
		TotalPeople:  people,
	}).Error
}

// UsageHistory returns the last limit days of usage for keyID, newest first
func UsageHistory(ctx context.Context, db *gorm.DB, keyID uint, limit int) ([]APIUsage, error) {
	var usage []APIUsage
	err := db.WithContext(ctx).Where("key_id = ?", keyID).Order("date desc").Limit(limit).Find(&usage).Error
	return usage, err
}
