// Package planner produces 7-day meal plans, preferring an external AI
// generator and falling back to the deterministic nutrition calculator when
// the generator fails or times out.
package planner

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/mealwell/api/internal/nutrition"
)

// generateTimeout bounds the external AI call before falling back.
const generateTimeout = 60 * time.Second

var errEmptyPlan = errors.New("generator returned no plan")

// Generator produces the raw plan text for a profile. Satisfied by
// *HTTPGenerator; narrow interface for testability.
type Generator interface {
	Generate(ctx context.Context, p nutrition.Profile) (string, error)
}

// Planner wraps a Generator with timeout and fallback behavior.
type Planner struct {
	gen     Generator
	timeout time.Duration
}

func New(gen Generator) *Planner {
	return &Planner{gen: gen, timeout: generateTimeout}
}

// NewWithTimeout is used by tests to shrink the fallback window.
func NewWithTimeout(gen Generator, timeout time.Duration) *Planner {
	return &Planner{gen: gen, timeout: timeout}
}

// Plan returns an AI-generated plan when the generator responds with usable
// JSON within the timeout, otherwise the deterministic fallback. The fallback
// path never fails.
func (p *Planner) Plan(ctx context.Context, profile nutrition.Profile) nutrition.Plan {
	if p.gen != nil {
		plan, err := p.generate(ctx, profile)
		if err == nil {
			return plan
		}
		log.Printf("ERROR: ai plan generation failed, using fallback: %v", err)
	}
	return nutrition.FallbackPlan(profile)
}

func (p *Planner) generate(ctx context.Context, profile nutrition.Profile) (nutrition.Plan, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	raw, err := p.gen.Generate(ctx, profile)
	if err != nil {
		return nutrition.Plan{}, err
	}

	repaired := RepairJSON(raw)
	if repaired == "" {
		return nutrition.Plan{}, errEmptyPlan
	}

	var plan nutrition.Plan
	if err := json.Unmarshal([]byte(repaired), &plan); err != nil {
		return nutrition.Plan{}, err
	}
	if len(plan.Days) == 0 {
		return nutrition.Plan{}, errEmptyPlan
	}

	plan.Source = "ai"
	return plan, nil
}

// RepairJSON cleans up model output that wraps JSON in markdown fences or
// leading/trailing prose: it strips ``` fences and trims the string to the
// outermost object braces. Returns "" when no object is present.
func RepairJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return s[start : end+1]
}
