package app

import "errors"

// Sentinel errors returned by application operations. The HTTP layer maps
// each to a status code with errors.Is.
var (
	// ErrInvalidInput reports a request that fails validation before any
	// external call is made.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoImage reports an intake request without a plant photo.
	ErrNoImage = errors.New("plant photo is required")
	// ErrEmailTaken reports a signup with an already registered email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized reports a missing or expired session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrPlantNotFound reports a plant that does not exist for this owner.
	ErrPlantNotFound = errors.New("plant not found")
	// ErrNotPlant reports that the vision model saw no plant in the photo.
	ErrNotPlant = errors.New("no plant recognized in photo")
	// ErrAIResponse reports an unusable vision model response.
	ErrAIResponse = errors.New("plant analysis failed")
	// ErrStorage reports a failed image upload.
	ErrStorage = errors.New("image upload failed")
	// ErrPersistence reports a failed database operation.
	ErrPersistence = errors.New("saving failed")
)
