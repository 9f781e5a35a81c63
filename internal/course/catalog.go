package course

import "empower/pkg/models"

// DefaultCourses is the built-in catalog of six-month and six-week courses.
func DefaultCourses() []models.Course {
	return []models.Course{
		{
			ID:       "First Aid",
			Price:    1500,
			Category: models.SixMonth,
			Details: models.CourseDetails{
				Purpose: "To provide first aid awareness and basic life support.",
				Content: []string{
					"Wounds and bleeding",
					"Burns and fractures",
					"Emergency scene management",
					"Cardio-Pulmonary Resuscitation (CPR)",
					"Respiratory distress e.g. choking, blocked airway",
				},
			},
		},
		{
			ID:       "Sewing",
			Price:    1500,
			Category: models.SixMonth,
			Details: models.CourseDetails{
				Purpose: "To provide alterations and new garment tailoring services.",
				Content: []string{
					"Types of stitches",
					"Threading a sewing machine",
					"Sewing buttons, zips, hems and seams",
					"Alterations",
					"Designing and sewing new garments",
				},
			},
		},
		{
			ID:       "Landscaping",
			Price:    1500,
			Category: models.SixMonth,
			Details: models.CourseDetails{
				Purpose: "To provide landscaping services for new and established gardens.",
				Content: []string{
					"Indigenous and exotic plants and trees",
					"Fixed structures (fountains, statues, benches, tables, built-in braai)",
					"Balancing of plants and trees in a garden",
					"Aesthetics of plant shapes and colours",
					"Garden layout",
				},
			},
		},
		{
			ID:       "Life Skills",
			Price:    1500,
			Category: models.SixMonth,
			Details: models.CourseDetails{
				Purpose: "To provide skills to navigate basic life necessities.",
				Content: []string{
					"Opening a bank account",
					"Basic labour law (know your rights)",
					"Basic reading and writing literacy",
					"Basic numeric literacy",
				},
			},
		},
		{
			ID:       "Child Minding",
			Price:    750,
			Category: models.SixWeek,
			Details: models.CourseDetails{
				Purpose: "To provide basic child and baby care.",
				Content: []string{
					"Birth to six-month old baby needs",
					"Seven-month to one year old needs",
					"Toddler needs",
					"Educational toys",
				},
			},
		},
		{
			ID:       "Cooking",
			Price:    750,
			Category: models.SixWeek,
			Details: models.CourseDetails{
				Purpose: "To prepare and cook nutritious family meals.",
				Content: []string{
					"Nutritional requirements for a healthy body",
					"Types of protein, carbohydrates and vegetables",
					"Planning meals",
					"Tasty and nutritious recipes",
					"Preparation and cooking of meals",
				},
			},
		},
		{
			ID:       "Garden Maintaining",
			Price:    750,
			Category: models.SixWeek,
			Details: models.CourseDetails{
				Purpose: "To provide basic knowledge of watering, pruning and planting in a domestic garden.",
				Content: []string{
					"Water restrictions and the watering requirements of indigenous and exotic plants",
					"Pruning and propagation of plants",
					"Planting techniques for different plant types",
				},
			},
		},
	}
}
