package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Page is a lesson/page document. Its body is the block collection, stored
// as a JSONB array of Block values (see block.go for the element contract).

type Page struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ModuleID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"module_id"`
	Module    *CourseModule  `gorm:"constraint:OnDelete:CASCADE;foreignKey:ModuleID;references:ID" json:"module,omitempty"`
	Title     string         `gorm:"column:title;not null" json:"title"`
	Position  int            `gorm:"column:position;not null;default:0" json:"position"`
	Blocks    datatypes.JSON `gorm:"column:blocks;type:jsonb" json:"blocks"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Page) TableName() string { return "page" }
