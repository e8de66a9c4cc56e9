package models

import (
	"time"
)

// Pagination is the paging envelope returned by list endpoints.
type Pagination struct {
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Total int64 `json:"total"`
}

// GradeResult reports a graded submission against its problem set thresholds.
type GradeResult struct {
	Submission   *ProblemSetSubmission `json:"submission"`
	MaxGrade     int                   `json:"maxGrade"`
	PassingGrade int                   `json:"passingGrade"`
	Passed       bool                  `json:"passed"`
}

// DashboardStats is the admin overview.
type DashboardStats struct {
	UsersByAccess      map[AccessLevel]int64 `json:"usersByAccess"`
	TotalPaths         int64                 `json:"totalPaths"`
	TotalProblemSets   int64                 `json:"totalProblemSets"`
	TotalSubmissions   int64                 `json:"totalSubmissions"`
	PendingManualGrade int64                 `json:"pendingManualGrade"`
	PendingGradingRate float64               `json:"pendingGradingRate"`
	UpcomingEvents     int64                 `json:"upcomingEvents"`
	ActiveUsers        int64                 `json:"activeUsers"`
	GeneratedAt        time.Time             `json:"generatedAt"`
}
