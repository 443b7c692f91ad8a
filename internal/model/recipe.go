package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DurationUnit is the unit of Recipe.TimeMinutes when it is shown to a person.
const DurationUnit = "min"

// CategoryAll is the filter sentinel meaning "no category constraint".
const CategoryAll = "All"

// Difficulty is how hard a drink is to make.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Difficulties lists the accepted difficulty values in display order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	for _, known := range Difficulties {
		if d == known {
			return true
		}
	}
	return false
}

// Categories is the fixed set of recipe categories.
var Categories = []string{
	"Cocktail",
	"Mocktail",
	"Coffee",
	"Coffee Cocktail",
	"Beer",
	"Wine",
	"Spirits",
	"Hot Drinks",
}

// IsCategory reports whether name is one of Categories.
func IsCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

// JSONBStringArray is a custom type for handling string arrays in JSONB
type JSONBStringArray []string

// Value implements the driver.Valuer interface
func (a JSONBStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (a *JSONBStringArray) Scan(value interface{}) error {
	if value == nil {
		*a = JSONBStringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported JSON array source %T", value)
	}

	return json.Unmarshal(bytes, a)
}

// Recipe is one drink in the catalog.
type Recipe struct {
	ID           string           `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt    time.Time        `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	Name         string           `gorm:"size:255;not null" json:"name"`
	Category     string           `gorm:"size:50;index" json:"category"`
	Difficulty   Difficulty       `gorm:"size:10;not null;default:'Easy'" json:"difficulty"`
	TimeMinutes  int              `gorm:"not null;default:0" json:"time_minutes"`
	Description  string           `gorm:"type:text" json:"description"`
	ImageURL     string           `gorm:"size:1024" json:"image_url"`
	Featured     bool             `gorm:"not null;default:false" json:"featured"`
	Popularity   int              `gorm:"not null;default:0" json:"popularity"`
	Ingredients  JSONBStringArray `gorm:"type:text;not null" json:"ingredients"`
	Instructions JSONBStringArray `gorm:"type:text;not null" json:"instructions"`
}

// BeforeCreate assigns the store identity when the caller left it empty.
func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Duration renders TimeMinutes with its unit, e.g. "5 min".
func (r Recipe) Duration() string {
	return fmt.Sprintf("%d %s", r.TimeMinutes, DurationUnit)
}

// CleanLines drops blank and whitespace-only entries and trims the rest,
// keeping the original order.
func CleanLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if t := strings.TrimSpace(l); t != "" {
			out = append(out, t)
		}
	}
	return out
}
