package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// LegacyRecipe reads records written by older clients. Those used either
// `time` ("5 min"), `image` and `featured`, or `time_minutes`, `image_url`
// and `is_featured`.
type LegacyRecipe struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Difficulty   string          `json:"difficulty"`
	Time         json.RawMessage `json:"time"`
	TimeMinutes  *int            `json:"time_minutes"`
	Description  string          `json:"description"`
	Image        string          `json:"image"`
	ImageURL     string          `json:"image_url"`
	Featured     *bool           `json:"featured"`
	IsFeatured   *bool           `json:"is_featured"`
	Popularity   int             `json:"popularity"`
	Ingredients  []string        `json:"ingredients"`
	Instructions []string        `json:"instructions"`
	CreatedAt    *time.Time      `json:"created_at"`
	UpdatedAt    *time.Time      `json:"updated_at"`
}

// Canonical converts the legacy shape into a Recipe.
func (l LegacyRecipe) Canonical() (Recipe, error) {
	minutes := 0
	switch {
	case l.TimeMinutes != nil:
		minutes = *l.TimeMinutes
	case len(l.Time) > 0:
		m, err := parseLegacyTime(l.Time)
		if err != nil {
			return Recipe{}, fmt.Errorf("recipe %q: %w", l.Name, err)
		}
		minutes = m
	}

	image := l.ImageURL
	if image == "" {
		image = l.Image
	}

	featured := false
	if l.IsFeatured != nil {
		featured = *l.IsFeatured
	} else if l.Featured != nil {
		featured = *l.Featured
	}

	difficulty := Difficulty(l.Difficulty)
	if !difficulty.Valid() {
		difficulty = DifficultyEasy
	}

	r := Recipe{
		ID:           l.ID,
		Name:         strings.TrimSpace(l.Name),
		Category:     l.Category,
		Difficulty:   difficulty,
		TimeMinutes:  minutes,
		Description:  l.Description,
		ImageURL:     image,
		Featured:     featured,
		Popularity:   l.Popularity,
		Ingredients:  JSONBStringArray(CleanLines(l.Ingredients)),
		Instructions: JSONBStringArray(CleanLines(l.Instructions)),
	}
	if l.CreatedAt != nil {
		r.CreatedAt = *l.CreatedAt
	}
	if l.UpdatedAt != nil {
		r.UpdatedAt = *l.UpdatedAt
	}
	if r.Popularity < 0 {
		r.Popularity = 0
	}
	return r, nil
}

// parseLegacyTime accepts 5, "5", "5 min" and "5min".
func parseLegacyTime(raw json.RawMessage) (int, error) {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("unreadable time %s", string(raw))
	}
	digits := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), DurationUnit))
	if digits == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("unreadable time %q", s)
	}
	return n, nil
}
