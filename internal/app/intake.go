package app

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"studioplantes/internal/util"
	"studioplantes/pkg/ai"
	"studioplantes/pkg/domain"
)

// AddPlantInput carries one intake request: the photo plus the optional
// user-supplied context forwarded to the analyzer.
type AddPlantInput struct {
	Image    []byte
	MimeType string
	Filename string

	Room     string
	Exposure string
	Note     string

	// LastWateredAt backdates the initial watering. Zero means "watered now".
	LastWateredAt time.Time
}

// AddPlant runs the photo-to-plant workflow: validate the upload, identify
// the plant with the vision model, store the photo, then persist the record.
// Each step short-circuits the rest on failure; a failed insert after a
// successful upload leaves an orphan object behind, which is accepted.
func (a *App) AddPlant(ctx context.Context, ownerID string, in AddPlantInput) (PlantView, error) {
	if ownerID == "" {
		return PlantView{}, ErrUnauthorized
	}
	if len(in.Image) == 0 {
		return PlantView{}, ErrNoImage
	}
	mimeType := strings.TrimSpace(in.MimeType)
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return PlantView{}, fmt.Errorf("%w: unsupported content type %q", ErrInvalidInput, mimeType)
	}

	obs := ai.Observation{Room: in.Room, Exposure: in.Exposure, Note: in.Note}
	profile, err := a.analyzer.AnalyzePlant(ctx, in.Image, mimeType, obs)
	if err != nil {
		if errors.Is(err, ai.ErrUnrecognized) {
			return PlantView{}, fmt.Errorf("%w: %v", ErrNotPlant, err)
		}
		return PlantView{}, fmt.Errorf("%w: %v", ErrAIResponse, err)
	}

	now := time.Now()
	key := fmt.Sprintf("%s-%d.%s", ownerID, now.UnixMilli(), imageExt(in.Filename, mimeType))
	url, err := a.objects.Put(ctx, key, in.Image, mimeType)
	if err != nil {
		return PlantView{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	lastWatered := now
	if !in.LastWateredAt.IsZero() && !in.LastWateredAt.After(now) {
		lastWatered = in.LastWateredAt
	}

	plant := domain.Plant{
		ID:      uuid.NewString(),
		OwnerID: ownerID,

		Name:     profile.Name,
		Species:  profile.Species,
		Room:     in.Room,
		Exposure: in.Exposure,
		Note:     in.Note,

		RoomAdvice:  profile.RoomAdvice,
		LightAdvice: profile.LightAdvice,
		CareNotes:   profile.CareNotes,

		LastWateredAt:         lastWatered,
		WateringFrequencyDays: profile.WateringFrequencyDays,
		WateringHistory:       []time.Time{lastWatered},

		ImageURL: url,
		ImageKey: key,

		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.store.CreatePlant(plant); err != nil {
		util.LoggerFromContext(ctx).Warn("plant insert failed after upload, orphan image left",
			"key", key, "error", err)
		return PlantView{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	util.LoggerFromContext(ctx).Info("plant added",
		"plant_id", plant.ID, "species", plant.Species, "frequency_days", plant.WateringFrequencyDays)
	return a.view(plant, now), nil
}

// imageExt picks the stored object's extension from the uploaded filename,
// falling back to the mime subtype.
func imageExt(filename, mimeType string) string {
	if ext := strings.TrimPrefix(path.Ext(filename), "."); ext != "" {
		return strings.ToLower(ext)
	}
	if idx := strings.Index(mimeType, "/"); idx >= 0 && idx+1 < len(mimeType) {
		return mimeType[idx+1:]
	}
	return "jpg"
}
