package course

import (
	"empower/pkg/models"

	"go.uber.org/zap"
)

// Manager holds the course reference table. It is filled once by NewManager
// and never mutated afterwards, so it is safe for concurrent readers.
type Manager struct {
	courses map[string]models.Course
	order   []string
	logger  *zap.Logger
}

func NewManager(courses []models.Course, logger *zap.Logger) *Manager {
	m := &Manager{
		courses: make(map[string]models.Course, len(courses)),
		order:   make([]string, 0, len(courses)),
		logger:  logger,
	}

	for _, c := range courses {
		if _, dup := m.courses[c.ID]; dup {
			m.logger.Warn("Dropping duplicate course", zap.String("courseID", c.ID))
			continue
		}
		m.courses[c.ID] = c
		m.order = append(m.order, c.ID)
	}
	m.logger.Info("Loaded course catalog", zap.Int("courses", len(m.order)))

	return m
}

func (m *Manager) GetCourse(courseID string) (models.Course, bool) {
	course, ok := m.courses[courseID]
	return course, ok
}

func (m *Manager) Exists(courseID string) bool {
	_, ok := m.courses[courseID]
	return ok
}

// Price implements pricing.PriceTable.
func (m *Manager) Price(courseID string) (int64, bool) {
	course, ok := m.courses[courseID]
	if !ok {
		return 0, false
	}
	return course.Price, true
}

// ListCourses returns the catalog in its declared order.
func (m *Manager) ListCourses() []models.Course {
	courses := make([]models.Course, 0, len(m.order))
	for _, id := range m.order {
		courses = append(courses, m.courses[id])
	}
	return courses
}

func (m *Manager) ListByCategory(category models.CourseCategory) []models.Course {
	var courses []models.Course
	for _, id := range m.order {
		if c := m.courses[id]; c.Category == category {
			courses = append(courses, c)
		}
	}
	return courses
}

// Sort orders ids by catalog position. Unknown ids are dropped.
func (m *Manager) Sort(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		seen[id] = true
	}
	sorted := make([]string, 0, len(ids))
	for _, id := range m.order {
		if seen[id] {
			sorted = append(sorted, id)
		}
	}
	return sorted
}
