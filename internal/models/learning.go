package models

import (
	"time"

	"gorm.io/datatypes"
)

type Path struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"pathName" gorm:"not null;size:200"`
	Description string `json:"description" gorm:"type:text"`

	Modules []Module `json:"modules,omitempty" gorm:"foreignKey:PathID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Path) TableName() string {
	return "paths"
}

type Module struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	PathID      uint   `json:"pathId" gorm:"not null;index"`
	Name        string `json:"moduleName" gorm:"not null;size:200"`
	Description string `json:"description" gorm:"type:text"`
	VideoURL    string `json:"video" gorm:"size:500"`
	Order       int    `json:"order" gorm:"not null;default:0"`

	Lectures    []Lecture    `json:"lectures,omitempty" gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE"`
	ProblemSets []ProblemSet `json:"problemSets,omitempty" gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Module) TableName() string {
	return "modules"
}

// LectureMaterial is an uploaded attachment referenced from a lecture.
type LectureMaterial struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
	Format   string `json:"format"`
}

type Lecture struct {
	ID          uint                                 `json:"id" gorm:"primaryKey"`
	PathID      uint                                 `json:"pathId" gorm:"not null;index"`
	ModuleID    uint                                 `json:"moduleId" gorm:"not null;index"`
	Title       string                               `json:"title" gorm:"not null;size:200"`
	Notes       string                               `json:"notes" gorm:"type:text"`
	Slides      string                               `json:"slides" gorm:"size:500"`
	SourceCode  string                               `json:"sourceCode" gorm:"size:500"`
	AccessLevel AccessLevel                          `json:"accessLevel" gorm:"not null;size:50;default:'Member'"`
	Materials   datatypes.JSONSlice[LectureMaterial] `json:"materials" gorm:"type:jsonb"`
	Order       int                                  `json:"order" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Lecture) TableName() string {
	return "lectures"
}

// VisibleTo reports whether a viewer may see content gated at level.
// A Buddy only sees Buddy content; every other role sees everything.
func VisibleTo(level, viewer AccessLevel) bool {
	if viewer != AccessBuddy {
		return true
	}
	return level == AccessBuddy
}
