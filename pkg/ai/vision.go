package ai

import (
	"context"
	"fmt"
	"strings"
)

const basePrompt = `Analyze this photo of a houseplant.
Answer ONLY with a valid JSON object of the following shape, with no
surrounding text and no markdown fences:
{
  "name": "Common name of the plant (e.g. Monstera)",
  "species": "Full scientific name",
  "watering_frequency_days": 7,
  "room_advice": "One short sentence on whether the room suits this plant",
  "light_advice": "One short sentence on whether the light exposure suits it",
  "care_notes": "A short paragraph of care instructions"
}
If the photo does not show an identifiable plant, answer exactly:
{"name": "Unrecognized", "species": "Unrecognized", "watering_frequency_days": 0, "room_advice": "", "light_advice": "", "care_notes": "This does not appear to be a plant."}`

// GeminiAnalyzer implements Analyzer on top of the Gemini vision API with a
// fixed model.
type GeminiAnalyzer struct {
	client *GeminiClient
	model  string
}

// NewGeminiAnalyzer builds a Gemini-backed plant analyzer.
func NewGeminiAnalyzer(client *GeminiClient, model string) *GeminiAnalyzer {
	return &GeminiAnalyzer{client: client, model: model}
}

// AnalyzePlant sends the image plus observation context to the model and
// parses the structured reply.
func (g *GeminiAnalyzer) AnalyzePlant(ctx context.Context, image []byte, mimeType string, obs Observation) (Profile, error) {
	raw, err := g.client.GenerateVision(ctx, g.model, buildPrompt(obs), image, mimeType)
	if err != nil {
		return Profile{}, fmt.Errorf("analyze image: %w", err)
	}
	return ParseProfile(raw)
}

func buildPrompt(obs Observation) string {
	var sb strings.Builder
	sb.WriteString(basePrompt)
	if room := strings.TrimSpace(obs.Room); room != "" {
		fmt.Fprintf(&sb, "\nThe plant is kept in: %s. Tailor room_advice to that room.", room)
	}
	if exposure := strings.TrimSpace(obs.Exposure); exposure != "" {
		fmt.Fprintf(&sb, "\nThe light exposure there is: %s. Tailor light_advice to it.", exposure)
	}
	if note := strings.TrimSpace(obs.Note); note != "" {
		fmt.Fprintf(&sb, "\nOwner's note about the plant: %s", note)
	}
	return sb.String()
}
