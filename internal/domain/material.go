package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	MaterialStatusActive   = "active"
	MaterialStatusArchived = "archived"
	MaterialStatusDeleted  = "deleted"
)

type Material struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	// ToolID is the upsert key: re-saving the same tool output updates
	// the existing row instead of creating a duplicate.
	ToolID   string   `gorm:"column:tool_id;not null;uniqueIndex" json:"tool_id"`
	ToolType ToolType `gorm:"column:tool_type;not null;index" json:"tool_type"`

	Title          string         `gorm:"not null" json:"title"`
	Content        datatypes.JSON `gorm:"type:jsonb" json:"content"`
	SearchableText string         `gorm:"column:searchable_text" json:"searchable_text,omitempty"`
	Preview        string         `gorm:"column:preview" json:"preview,omitempty"`

	Subject   string `gorm:"column:subject;index" json:"subject,omitempty"`
	MaestroID string `gorm:"column:maestro_id;index" json:"maestro_id,omitempty"`
	SessionID string `gorm:"column:session_id" json:"session_id,omitempty"`

	Status       string `gorm:"not null;default:'active';index" json:"status"`
	UserRating   int    `gorm:"column:user_rating" json:"user_rating,omitempty"`
	IsBookmarked bool   `gorm:"column:is_bookmarked;not null;default:false" json:"is_bookmarked"`
	IsFavorite   bool   `gorm:"column:is_favorite;not null;default:false" json:"is_favorite"`

	CollectionID *uuid.UUID  `gorm:"type:uuid;index" json:"collection_id,omitempty"`
	Collection   *Collection `gorm:"constraint:OnDelete:SET NULL;foreignKey:CollectionID;references:ID" json:"collection,omitempty"`

	Tags []*MaterialTag `gorm:"foreignKey:MaterialID;references:ID" json:"tags,omitempty"`

	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Material) TableName() string { return "material" }

// BeforeCreate assigns the id application-side so both database
// drivers behave the same.
func (m *Material) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// IsArchived reports archive state from the status column.
func (m *Material) IsArchived() bool { return m.Status == MaterialStatusArchived }
