package models

import "time"

type Profile struct {
	ID               int64     `json:"id"`
	Username         string    `json:"username"`
	LearningLanguage string    `json:"learning_language"`
	NativeLanguage   string    `json:"native_language"`
	CreatedAt        time.Time `json:"created_at"`
}

type ProfileSettings struct {
	LearningLanguage string `json:"learning_language" validate:"required,language"`
	NativeLanguage   string `json:"native_language" validate:"required,language,nefield=LearningLanguage"`
}
