package planner_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mealwell/api/internal/nutrition"
	"github.com/mealwell/api/internal/planner"
)

type fakeGenerator struct {
	generateFn func(ctx context.Context, p nutrition.Profile) (string, error)
}

func (f *fakeGenerator) Generate(ctx context.Context, p nutrition.Profile) (string, error) {
	return f.generateFn(ctx, p)
}

var testProfile = nutrition.Profile{
	Age: 30, Gender: "male", HeightCm: 175, WeightKg: 70,
	ActivityLevel: "sedentary", Goal: "lose_weight",
}

func TestPlan_UsesGeneratorOutput(t *testing.T) {
	gen := &fakeGenerator{
		generateFn: func(ctx context.Context, p nutrition.Profile) (string, error) {
			return "```json\n" + `{"targets":{"target_calories":1500},"days":[{"day":"Monday","meals":[{"name":"Idli","meal_type":"breakfast","calories":375}]}]}` + "\n```", nil
		},
	}

	plan := planner.New(gen).Plan(context.Background(), testProfile)

	if plan.Source != "ai" {
		t.Errorf("source: got %q, want ai", plan.Source)
	}
	if plan.Targets.TargetCalories != 1500 {
		t.Errorf("target calories: got %d, want 1500", plan.Targets.TargetCalories)
	}
	if len(plan.Days) != 1 || plan.Days[0].Meals[0].Name != "Idli" {
		t.Errorf("unexpected days: %+v", plan.Days)
	}
}

func TestPlan_FallsBackOnGeneratorError(t *testing.T) {
	gen := &fakeGenerator{
		generateFn: func(ctx context.Context, p nutrition.Profile) (string, error) {
			return "", errors.New("upstream down")
		},
	}

	plan := planner.New(gen).Plan(context.Background(), testProfile)

	if plan.Source != "fallback" {
		t.Errorf("source: got %q, want fallback", plan.Source)
	}
	if plan.Targets.TargetCalories != 1484 {
		t.Errorf("target calories: got %d, want 1484", plan.Targets.TargetCalories)
	}
	if len(plan.Days) != 7 {
		t.Errorf("days: got %d, want 7", len(plan.Days))
	}
}

func TestPlan_FallsBackOnGarbageOutput(t *testing.T) {
	gen := &fakeGenerator{
		generateFn: func(ctx context.Context, p nutrition.Profile) (string, error) {
			return "sorry, I cannot help with that", nil
		},
	}

	plan := planner.New(gen).Plan(context.Background(), testProfile)

	if plan.Source != "fallback" {
		t.Errorf("source: got %q, want fallback", plan.Source)
	}
}

func TestPlan_FallsBackOnTimeout(t *testing.T) {
	gen := &fakeGenerator{
		generateFn: func(ctx context.Context, p nutrition.Profile) (string, error) {
			select {
			case <-time.After(5 * time.Second):
				return "{}", nil
			case <-ctx.Done():
				return "", ctx.Err()
			}
		},
	}

	start := time.Now()
	plan := planner.NewWithTimeout(gen, 20*time.Millisecond).Plan(context.Background(), testProfile)

	if time.Since(start) > time.Second {
		t.Fatal("fallback took too long; timeout not applied")
	}
	if plan.Source != "fallback" {
		t.Errorf("source: got %q, want fallback", plan.Source)
	}
}

func TestPlan_NilGeneratorUsesFallback(t *testing.T) {
	plan := planner.New(nil).Plan(context.Background(), testProfile)
	if plan.Source != "fallback" {
		t.Errorf("source: got %q, want fallback", plan.Source)
	}
}

func TestRepairJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain object", `{"a":1}`, `{"a":1}`},
		{"fenced json", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fences", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"leading prose", "Here is your plan: {\"a\":1}", `{"a":1}`},
		{"trailing prose", "{\"a\":1} hope this helps!", `{"a":1}`},
		{"no object", "no json here", ""},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := planner.RepairJSON(tc.in); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}
