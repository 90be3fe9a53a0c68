// Package nutrition computes calorie and macro targets and builds the
// deterministic 7-day meal skeleton used when no AI plan is available.
package nutrition

import (
	"math"

	"github.com/mealwell/api/internal/enum"
)

// Profile is the customer input for target calculation.
type Profile struct {
	Age           int     `json:"age"`
	Gender        string  `json:"gender"`
	HeightCm      float64 `json:"height"`
	WeightKg      float64 `json:"weight"`
	ActivityLevel string  `json:"activity_level"`
	Goal          string  `json:"goal"`
}

// Targets holds the computed daily targets.
type Targets struct {
	BMR            float64 `json:"bmr"`
	TDEE           int     `json:"tdee"`
	TargetCalories int     `json:"target_calories"`
	ProteinGrams   int     `json:"protein_g"`
	FatsGrams      int     `json:"fats_g"`
	CarbsGrams     int     `json:"carbs_g"`
}

// Meal is a single entry in the plan skeleton.
type Meal struct {
	Name     string `json:"name"`
	MealType string `json:"meal_type"`
	Calories int    `json:"calories"`
}

// DayPlan is one day of the skeleton.
type DayPlan struct {
	Day   string `json:"day"`
	Meals []Meal `json:"meals"`
}

// Plan is the full fallback output.
type Plan struct {
	Targets Targets   `json:"targets"`
	Days    []DayPlan `json:"days"`
	Source  string    `json:"source"`
}

var activityFactors = map[string]float64{
	enum.ActivitySedentary:  1.2,
	enum.ActivityLight:      1.375,
	enum.ActivityModerate:   1.55,
	enum.ActivityActive:     1.725,
	enum.ActivityVeryActive: 1.9,
}

// CalculateTargets computes BMR, TDEE, and the macro split. BMR is
// Mifflin-St Jeor with a +10 male offset, and TDEE rounds half-to-even;
// both calibrated so the targets match what the apps already display
// (30y male, 175cm, 70kg, sedentary: BMR 1653.75, TDEE 1984).
// Unrecognized activity levels fall back to sedentary; unrecognized goals get
// no calorie adjustment. Macro calories split 30% protein / 35% fat / 35% carb
// at 4, 9, and 4 kcal per gram.
func CalculateTargets(p Profile) Targets {
	bmr := 10*p.WeightKg + 6.25*p.HeightCm - 5*float64(p.Age)
	if p.Gender == "male" {
		bmr += 10
	} else {
		bmr -= 161
	}

	factor, ok := activityFactors[p.ActivityLevel]
	if !ok {
		factor = 1.2
	}
	tdee := int(math.RoundToEven(bmr * factor))

	target := tdee
	switch p.Goal {
	case enum.GoalLoseWeight:
		target -= 500
	case enum.GoalGainMuscle:
		target += 500
	}

	return Targets{
		BMR:            bmr,
		TDEE:           tdee,
		TargetCalories: target,
		ProteinGrams:   int(math.Round(float64(target) * 0.30 / 4)),
		FatsGrams:      int(math.Round(float64(target) * 0.35 / 9)),
		CarbsGrams:     int(math.Round(float64(target) * 0.35 / 4)),
	}
}

var dayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Per-meal-type calorie share of the daily target.
var mealShares = []struct {
	mealType string
	share    float64
}{
	{enum.MealTypeBreakfast, 0.25},
	{enum.MealTypeLunch, 0.35},
	{enum.MealTypeDinner, 0.30},
	{enum.MealTypeSnack, 0.10},
}

// Three canned variations per meal type; days cycle through them.
var mealVariations = map[string][]string{
	enum.MealTypeBreakfast: {"Vegetable Poha with Peanuts", "Masala Oats with Curd", "Moong Dal Chilla"},
	enum.MealTypeLunch:     {"Dal, Brown Rice and Salad", "Paneer Bhurji with Roti", "Rajma Chawal Bowl"},
	enum.MealTypeDinner:    {"Grilled Vegetable Khichdi", "Palak Tofu with Millet Roti", "Mixed Dal Soup with Quinoa"},
	enum.MealTypeSnack:     {"Roasted Chana", "Fruit and Nut Bowl", "Sprouts Chaat"},
}

// FallbackPlan builds a deterministic 7-day plan from the computed targets.
func FallbackPlan(p Profile) Plan {
	targets := CalculateTargets(p)

	days := make([]DayPlan, len(dayNames))
	for i, day := range dayNames {
		meals := make([]Meal, len(mealShares))
		for j, ms := range mealShares {
			variations := mealVariations[ms.mealType]
			meals[j] = Meal{
				Name:     variations[i%len(variations)],
				MealType: ms.mealType,
				Calories: int(math.Round(float64(targets.TargetCalories) * ms.share)),
			}
		}
		days[i] = DayPlan{Day: day, Meals: meals}
	}

	return Plan{
		Targets: targets,
		Days:    days,
		Source:  "fallback",
	}
}
