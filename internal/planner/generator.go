package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/mealwell/api/internal/nutrition"
)

// HTTPGenerator calls an external completion endpoint that returns the plan
// as text. The endpoint contract is a single-turn prompt/completion API.
type HTTPGenerator struct {
	url    string
	apiKey string
	client *http.Client
}

func NewHTTPGenerator(url, apiKey string) *HTTPGenerator {
	return &HTTPGenerator{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{},
	}
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Text string `json:"text"`
}

func (g *HTTPGenerator) Generate(ctx context.Context, p nutrition.Profile) (string, error) {
	body, err := json.Marshal(generateRequest{Prompt: buildPrompt(p)})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("generator returned %d: %s", resp.StatusCode, b)
	}

	var gr generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return "", err
	}
	return gr.Text, nil
}

func buildPrompt(p nutrition.Profile) string {
	targets := nutrition.CalculateTargets(p)
	return fmt.Sprintf(
		"Create a 7-day Indian vegetarian meal plan as JSON with keys targets and days. "+
			"Daily targets: %d kcal, %dg protein, %dg fat, %dg carbs. "+
			"Profile: %d year old %s, %.0f cm, %.0f kg, activity %s, goal %s. "+
			"Respond with JSON only.",
		targets.TargetCalories, targets.ProteinGrams, targets.FatsGrams, targets.CarbsGrams,
		p.Age, p.Gender, p.HeightCm, p.WeightKg, p.ActivityLevel, p.Goal,
	)
}
