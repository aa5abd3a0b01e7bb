package repo

import "gorm.io/gorm"

// GormRepo runs every query of the service against one shared pool.
type GormRepo struct {
	DB *gorm.DB
}
