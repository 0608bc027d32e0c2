package service

import "muuguzi/internal/model"

// Recommendation titles
const (
	RecommendationCheckups = "Regular Medical Check-ups"
	RecommendationDiet     = "Healthy Diet and Hydration"
	RecommendationExercise = "Exercise"
	RecommendationSocial   = "Social Engagement"
	RecommendationRoutine  = "Routine"
)

// baselineCarePlan is the static care guidance returned with every prediction.
// It does not vary with score or level.
var baselineCarePlan = model.Recommendations{
	{
		Title: RecommendationCheckups,
		Text: "Maintain regular follow-up visits with healthcare providers " +
			"to monitor dementia progression, adjust medications, and " +
			"screen for other conditions such as hypertension, diabetes, " +
			"cardiovascular disease, and infections.",
	},
	{
		Title: RecommendationDiet,
		Text: "Encourage a balanced diet rich in fruits, vegetables, whole grains, " +
			"and adequate fluids. Monitor weight, appetite, and swallowing " +
			"difficulties to reduce the risk of malnutrition and aspiration.",
	},
	{
		Title: RecommendationExercise,
		Text: "Support safe physical activity such as walking, stretching, or " +
			"simple chair exercises to maintain mobility, muscle strength, " +
			"and cardiovascular health, while reducing fall risk.",
	},
	{
		Title: RecommendationSocial,
		Text: "Promote meaningful activities, conversations, and time with family " +
			"or caregivers to support mood, orientation, and quality of life.",
	},
	{
		Title: RecommendationRoutine,
		Text: "Keep a consistent daily routine for meals, medications, sleep, " +
			"and personal care. Stable routines reduce confusion, agitation, " +
			"and caregiver stress.",
	},
}

// Recommendations returns a fresh copy of the care guidance
func Recommendations() model.Recommendations {
	out := make(model.Recommendations, len(baselineCarePlan))
	copy(out, baselineCarePlan)
	return out
}
