package store

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"temp-monitor/internal/model"
)

// openORM opens a GORM SQLite connection with sane defaults.
func openORM(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
}

// migrateORM ensures the schema for all models exists.
func migrateORM(db *gorm.DB) error {
	return db.AutoMigrate(&model.User{}, &model.Reading{})
}

// closeORM closes the underlying SQL DB associated with the GORM connection.
func closeORM(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
