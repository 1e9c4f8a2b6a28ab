package models

// SessionInput carries the arguments of a creation session action. Which
// fields are read depends on the action.
type SessionInput struct {
	Word         string `json:"word,omitempty"`
	Instructions string `json:"instructions,omitempty"`
	Chunk        string `json:"chunk,omitempty"`
	Anchor       string `json:"anchor,omitempty"`
}
