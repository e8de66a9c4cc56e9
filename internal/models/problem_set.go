package models

import (
	"time"
)

type SubmissionType string

const (
	SubmissionFile  SubmissionType = "File"
	SubmissionLink  SubmissionType = "Link"
	SubmissionImage SubmissionType = "Image"
	SubmissionGOCI  SubmissionType = "GOCI"
)

func (t SubmissionType) IsValid() bool {
	switch t {
	case SubmissionFile, SubmissionLink, SubmissionImage, SubmissionGOCI:
		return true
	}
	return false
}

// RequiresUpload reports whether submissions of this type carry an uploaded file.
func (t SubmissionType) RequiresUpload() bool {
	return t == SubmissionFile || t == SubmissionImage || t == SubmissionGOCI
}

const (
	DefaultMaxGrade     = 100
	DefaultPassingGrade = 60
)

type ProblemSet struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	ModuleID        uint           `json:"moduleId" gorm:"not null;index"`
	PathID          uint           `json:"pathId" gorm:"not null;index"`
	Title           string         `json:"problemSetTitle" gorm:"not null;size:200"`
	Description     string         `json:"description" gorm:"type:text"`
	VideoURL        string         `json:"video" gorm:"size:500"`
	SubmissionType  SubmissionType `json:"submissionType" gorm:"not null;size:20"`
	AccessLevel     AccessLevel    `json:"accessLevel" gorm:"not null;size:50;default:'Member'"`
	Deadline        *time.Time     `json:"deadline"`
	MaxGrade        int            `json:"maxGrade" gorm:"not null;default:100"`
	PassingGrade    int            `json:"passingGrade" gorm:"not null;default:60"`
	IsManualGrading bool           `json:"isManualGrading" gorm:"not null;default:false"`
	Order           int            `json:"order" gorm:"not null;default:0"`

	Submissions []ProblemSetSubmission `json:"-" gorm:"foreignKey:ProblemSetID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (ProblemSet) TableName() string {
	return "problem_sets"
}

// DeadlinePassed reports whether now is strictly after the deadline.
func (p *ProblemSet) DeadlinePassed(now time.Time) bool {
	return p.Deadline != nil && now.After(*p.Deadline)
}

// ProblemSetSubmission is the single current submission of a user for a problem set.
type ProblemSetSubmission struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	UserID        string     `json:"userId" gorm:"not null;size:255;uniqueIndex:idx_submission_user_problem_set"`
	ProblemSetID  uint       `json:"problemSetId" gorm:"not null;uniqueIndex:idx_submission_user_problem_set"`
	SubmissionURL string     `json:"submissionUrl" gorm:"not null;size:1000"`
	SubmittedAt   time.Time  `json:"submittedAt" gorm:"not null"`
	Grade         int        `json:"grade" gorm:"not null;default:0"`
	GradedAt      *time.Time `json:"gradedAt"`
	GradedBy      *string    `json:"gradedBy" gorm:"size:255"`

	User       *User       `json:"user,omitempty" gorm:"foreignKey:UserID"`
	ProblemSet *ProblemSet `json:"problemSet,omitempty" gorm:"foreignKey:ProblemSetID"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (ProblemSetSubmission) TableName() string {
	return "problem_set_submissions"
}

// PathProgress counts first submissions a user has made inside a path.
type PathProgress struct {
	ID                   uint      `json:"id" gorm:"primaryKey"`
	UserID               string    `json:"userId" gorm:"not null;size:255;uniqueIndex:idx_progress_user_path"`
	PathID               uint      `json:"pathId" gorm:"not null;uniqueIndex:idx_progress_user_path"`
	ProblemSetsSubmitted int       `json:"problemSetsSubmitted" gorm:"not null;default:0"`
	LastActivityAt       time.Time `json:"lastActivityAt"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (PathProgress) TableName() string {
	return "path_progress"
}
