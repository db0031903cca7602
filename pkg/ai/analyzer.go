package ai

import (
	"context"
	"errors"
)

// ErrUnrecognized reports that the model explicitly answered that the image
// does not show a plant. Distinct from a malformed response: the caller may
// retry with a clearer photo.
var ErrUnrecognized = errors.New("no plant recognized in image")

// Observation carries optional user-supplied context for the analysis.
type Observation struct {
	Room     string
	Exposure string
	Note     string
}

// Profile is the structured identification result for one plant photo.
type Profile struct {
	Name                  string `json:"name"`
	Species               string `json:"species"`
	WateringFrequencyDays int    `json:"watering_frequency_days"`
	RoomAdvice            string `json:"room_advice"`
	LightAdvice           string `json:"light_advice"`
	CareNotes             string `json:"care_notes"`
}

// Analyzer identifies a plant from an image. Implementations wrap a vision
// model; the returned error is ErrUnrecognized when the model reports no
// plant, or a parse/transport error otherwise.
type Analyzer interface {
	AnalyzePlant(ctx context.Context, image []byte, mimeType string, obs Observation) (Profile, error)
}
