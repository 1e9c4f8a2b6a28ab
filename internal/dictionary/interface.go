package dictionary

import "context"

// ClientInterface defines the pronunciation lookup used by the audio service.
type ClientInterface interface {
	Pronunciation(ctx context.Context, word, language string) (Audio, error)
}

// Ensure Client implements the interface
var _ ClientInterface = (*Client)(nil)
