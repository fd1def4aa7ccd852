package eventlog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Record is one archived event. Seq preserves commit order across restarts.
type Record struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq        uint64    `gorm:"uniqueIndex;not null"`
	Type       string    `gorm:"size:64;index"`
	ItemID     string    `gorm:"size:32;index"`
	Attributes string    `gorm:"type:text"`
	// Digest chains this record to its predecessor.
	Digest    string `gorm:"size:64;not null"`
	CreatedAt time.Time
}

func (Record) TableName() string { return "market_events" }

// AutoMigrate creates or updates the archive schema.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Record{})
}
