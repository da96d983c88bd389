// Package models contains the persistence models for the slot store,
// configured to work using GORM as the ORM.
package models

import (
	"time"

	"gorm.io/datatypes"
)

// Slot is one keyed blob. The record collection lives in a single row.
type Slot struct {
	Key       string         `gorm:"primaryKey;size:191"`
	Value     datatypes.JSON `gorm:"default:'[]'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
