package models

type CourseCategory string

const (
	SixMonth CourseCategory = "six-month"
	SixWeek  CourseCategory = "six-week"
)

// CourseDetails is the descriptive content shown on a course page.
type CourseDetails struct {
	Purpose string   `json:"purpose"`
	Content []string `json:"content"`
}

// Course is static reference data. ID is the human-readable course name and
// doubles as its display label.
type Course struct {
	ID       string         `json:"id"`
	Price    int64          `json:"price"`
	Category CourseCategory `json:"category"`
	Details  CourseDetails  `json:"details"`
}
