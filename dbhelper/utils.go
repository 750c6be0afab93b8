package dbhelper

import (
	"fmt"

	"gorm.io/gorm"

	"wardrobeapi/models"
)

func SetupCleaner(db *gorm.DB) func() {

	return func() {

		db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.TryOnGeneration{})
		db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Outfit{})
		db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.ClothingItem{})
		db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.UserPushToken{})
		db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.UserAccount{})

	}
}

func Migrate(db *gorm.DB, model interface{}) error {
	if err := db.AutoMigrate(model); err != nil {
		return fmt.Errorf("migrate %T: %w", model, err)
	}
	return nil
}
