package models

import "time"

// Card is a persisted mnemonic flashcard. Cards are immutable once created.
type Card struct {
	ID               int64        `json:"id"`
	ProfileID        int64        `json:"profile_id"`
	Word             string       `json:"word"`
	POS              PartOfSpeech `json:"pos"`
	IPA              string       `json:"ipa"`
	Translation      string       `json:"translation"`
	ExampleSentence  string       `json:"example_sentence"`
	LearningLanguage string       `json:"learning_language"`
	NativeLanguage   string       `json:"native_language"`
	Analysis         WordAnalysis `json:"analysis"`
	Phonetics        Phonetics    `json:"phonetics"`
	Scene            Scene        `json:"scene"`
	ImagePrompt      ImagePrompt  `json:"image_prompt"`
	ImageURL         string       `json:"image_url"`
	AudioURL         string       `json:"audio_url,omitempty"`
	Anchors          []CardAnchor `json:"anchors"`
	Bindings         []Binding    `json:"bindings"`
	CreatedAt        time.Time    `json:"created_at"`
}

type CardAnchor struct {
	ID         int64   `json:"id"`
	CardID     int64   `json:"card_id"`
	Chunk      string  `json:"chunk"`
	ChunkIPA   string  `json:"chunk_ipa"`
	AnchorWord string  `json:"anchor_word"`
	Score      float64 `json:"score"`
	Reason     string  `json:"reason"`
}

// NewCard is the fully assembled payload a finished creation flow persists.
type NewCard struct {
	Word             string           `json:"word" validate:"required"`
	Analysis         WordAnalysis     `json:"analysis"`
	Phonetics        Phonetics        `json:"phonetics"`
	Anchors          []SelectedAnchor `json:"anchors" validate:"required,min=1,dive"`
	Scene            Scene            `json:"scene"`
	ImagePrompt      ImagePrompt      `json:"imagePrompt"`
	ImageURL         string           `json:"imageUrl" validate:"required"`
	AudioURL         string           `json:"audioUrl,omitempty"`
	LearningLanguage string           `json:"learningLanguage" validate:"omitempty,language"`
	NativeLanguage   string           `json:"nativeLanguage" validate:"omitempty,language"`
}

type CardFilter struct {
	ProfileID int64
	Search    string
	POS       string
	Limit     int
	Offset    int
}

// DueCard pairs a card with its scheduling record for the review queue.
type DueCard struct {
	Card   Card         `json:"card"`
	Review ReviewRecord `json:"review"`
}
