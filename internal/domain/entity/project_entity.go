package entity

import (
	"time"
	"unicode/utf8"
)

// ProjectStatus is the lifecycle state of a project's build.
// It starts at Creating and transitions at most once to Completed or Failed.
type ProjectStatus string

const (
	StatusCreating  ProjectStatus = "creating"
	StatusCompleted ProjectStatus = "completed"
	StatusFailed    ProjectStatus = "failed"
)

// Valid reports whether s is one of the known statuses.
func (s ProjectStatus) Valid() bool {
	switch s {
	case StatusCreating, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Project is a user-owned record representing one app-build request
// and its lifecycle status.
type Project struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Prompt      string
	Status      ProjectStatus
	AppURL      string // set when the build completes
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// titleMax is the rune cap for a derived project title.
const titleMax = 50

// TitleFromPrompt derives a project title from the prompt: the first 50
// runes, with a trailing ellipsis when the prompt is longer. A truncated
// title is therefore always exactly 51 runes.
func TitleFromPrompt(prompt string) string {
	if utf8.RuneCountInString(prompt) <= titleMax {
		return prompt
	}
	runes := []rune(prompt)
	return string(runes[:titleMax]) + "…"
}
