package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Collection is a user-defined folder for materials. Collections nest
// via ParentID; a nil parent means the collection sits at the root.
type Collection struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	Name  string `gorm:"not null" json:"name"`
	Icon  string `gorm:"column:icon" json:"icon,omitempty"`
	Color string `gorm:"column:color" json:"color,omitempty"`

	ParentID *uuid.UUID  `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	Parent   *Collection `gorm:"constraint:OnDelete:SET NULL;foreignKey:ParentID;references:ID" json:"parent,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Collection) TableName() string { return "collection" }

func (c *Collection) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
