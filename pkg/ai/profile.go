package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Model replies that start with one of these names mean "this is not a
// plant". The prompt asks for "Unrecognized"; older prompts used "Erreur",
// so both are honored.
var unrecognizedNames = []string{"unrecognized", "erreur"}

// ParseProfile extracts a Profile from raw model output. Code fences and
// surrounding prose are stripped before JSON decoding. Returns
// ErrUnrecognized for the explicit not-a-plant sentinel, or a parse error
// when the payload is malformed or missing required fields.
func ParseProfile(raw string) (Profile, error) {
	cleaned := stripCodeFences(raw)
	if cleaned == "" {
		return Profile{}, fmt.Errorf("empty model response")
	}
	var profile Profile
	if err := json.Unmarshal([]byte(cleaned), &profile); err != nil {
		return Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	name := strings.ToLower(strings.TrimSpace(profile.Name))
	for _, sentinel := range unrecognizedNames {
		if name == sentinel {
			return Profile{}, ErrUnrecognized
		}
	}
	if err := validateProfile(profile); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

func validateProfile(p Profile) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("profile missing name")
	}
	if strings.TrimSpace(p.Species) == "" {
		return fmt.Errorf("profile missing species")
	}
	if p.WateringFrequencyDays <= 0 {
		return fmt.Errorf("profile missing watering frequency")
	}
	return nil
}

// stripCodeFences removes markdown fencing the model may wrap around the
// JSON payload, then trims to the outermost object braces.
func stripCodeFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```JSON", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		cleaned = cleaned[start : end+1]
	}
	return cleaned
}
