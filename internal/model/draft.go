package model

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// RecipeDraft is what a person submits from the add form.
type RecipeDraft struct {
	Name         string     `json:"name" validate:"required,max=255"`
	Category     string     `json:"category" validate:"required,category"`
	Difficulty   Difficulty `json:"difficulty" validate:"required,difficulty"`
	TimeMinutes  int        `json:"time_minutes" validate:"gte=0"`
	Description  string     `json:"description"`
	ImageURL     string     `json:"image_url" validate:"omitempty,url"`
	Featured     bool       `json:"featured"`
	Ingredients  []string   `json:"ingredients" validate:"min=1,dive,required"`
	Instructions []string   `json:"instructions" validate:"min=1,dive,required"`
}

// Clean returns a copy with trimmed name and without blank list entries.
func (d RecipeDraft) Clean() RecipeDraft {
	d.Name = strings.TrimSpace(d.Name)
	d.Description = strings.TrimSpace(d.Description)
	d.Ingredients = CleanLines(d.Ingredients)
	d.Instructions = CleanLines(d.Instructions)
	return d
}

// Validate checks a cleaned draft the way the add form does.
func (d RecipeDraft) Validate() error {
	return validationError(validate().Struct(d))
}

// Recipe converts the draft into an unsaved record.
func (d RecipeDraft) Recipe() Recipe {
	d = d.Clean()
	return Recipe{
		Name:         d.Name,
		Category:     d.Category,
		Difficulty:   d.Difficulty,
		TimeMinutes:  d.TimeMinutes,
		Description:  d.Description,
		ImageURL:     d.ImageURL,
		Featured:     d.Featured,
		Ingredients:  JSONBStringArray(d.Ingredients),
		Instructions: JSONBStringArray(d.Instructions),
	}
}

// RecipePatch is a partial update. Nil fields are left untouched.
type RecipePatch struct {
	Name         *string     `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Category     *string     `json:"category,omitempty" validate:"omitempty,category"`
	Difficulty   *Difficulty `json:"difficulty,omitempty" validate:"omitempty,difficulty"`
	TimeMinutes  *int        `json:"time_minutes,omitempty" validate:"omitempty,gte=0"`
	Description  *string     `json:"description,omitempty"`
	ImageURL     *string     `json:"image_url,omitempty"`
	Featured     *bool       `json:"featured,omitempty"`
	Popularity   *int        `json:"popularity,omitempty" validate:"omitempty,gte=0"`
	Ingredients  []string    `json:"ingredients,omitempty" validate:"omitempty,min=1,dive,required"`
	Instructions []string    `json:"instructions,omitempty" validate:"omitempty,min=1,dive,required"`
}

// Clean trims patched text fields and strips blank list entries.
func (p RecipePatch) Clean() RecipePatch {
	if p.Name != nil {
		n := strings.TrimSpace(*p.Name)
		p.Name = &n
	}
	if p.Description != nil {
		d := strings.TrimSpace(*p.Description)
		p.Description = &d
	}
	if p.Ingredients != nil {
		p.Ingredients = CleanLines(p.Ingredients)
	}
	if p.Instructions != nil {
		p.Instructions = CleanLines(p.Instructions)
	}
	return p
}

// Validate checks a cleaned patch.
func (p RecipePatch) Validate() error {
	return validationError(validate().Struct(p))
}

// Empty reports whether the patch changes nothing.
func (p RecipePatch) Empty() bool {
	return p.Name == nil && p.Category == nil && p.Difficulty == nil &&
		p.TimeMinutes == nil && p.Description == nil && p.ImageURL == nil &&
		p.Featured == nil && p.Popularity == nil &&
		p.Ingredients == nil && p.Instructions == nil
}

// Columns returns the column/value pairs the patch writes.
func (p RecipePatch) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Category != nil {
		cols["category"] = *p.Category
	}
	if p.Difficulty != nil {
		cols["difficulty"] = *p.Difficulty
	}
	if p.TimeMinutes != nil {
		cols["time_minutes"] = *p.TimeMinutes
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.ImageURL != nil {
		cols["image_url"] = *p.ImageURL
	}
	if p.Featured != nil {
		cols["featured"] = *p.Featured
	}
	if p.Popularity != nil {
		cols["popularity"] = *p.Popularity
	}
	if p.Ingredients != nil {
		cols["ingredients"] = JSONBStringArray(p.Ingredients)
	}
	if p.Instructions != nil {
		cols["instructions"] = JSONBStringArray(p.Instructions)
	}
	return cols
}

// Apply copies the patched fields onto r.
func (p RecipePatch) Apply(r *Recipe) {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Category != nil {
		r.Category = *p.Category
	}
	if p.Difficulty != nil {
		r.Difficulty = *p.Difficulty
	}
	if p.TimeMinutes != nil {
		r.TimeMinutes = *p.TimeMinutes
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.ImageURL != nil {
		r.ImageURL = *p.ImageURL
	}
	if p.Featured != nil {
		r.Featured = *p.Featured
	}
	if p.Popularity != nil {
		r.Popularity = *p.Popularity
	}
	if p.Ingredients != nil {
		r.Ingredients = JSONBStringArray(p.Ingredients)
	}
	if p.Instructions != nil {
		r.Instructions = JSONBStringArray(p.Instructions)
	}
}

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid recipe")

var (
	validatorOnce sync.Once
	validatorInst *validator.Validate
)

func validate() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()
		_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
			return IsCategory(fl.Field().String())
		})
		_ = v.RegisterValidation("difficulty", func(fl validator.FieldLevel) bool {
			return Difficulty(fl.Field().String()).Valid()
		})
		validatorInst = v
	})
	return validatorInst
}

func validationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	entry := false
	if i := strings.Index(field, "["); i >= 0 {
		field, entry = field[:i], true
	}
	switch fe.Tag() {
	case "required":
		if entry {
			return field + " entries must not be blank"
		}
		return field + " is required"
	case "min":
		return field + " needs at least " + fe.Param() + " entry"
	case "category":
		return "unknown category " + fmt.Sprintf("%q", fe.Value())
	case "difficulty":
		return "difficulty must be one of Easy, Medium, Hard"
	case "url":
		return field + " must be a URL"
	default:
		return field + " failed " + fe.Tag()
	}
}
