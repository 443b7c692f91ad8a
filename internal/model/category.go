package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category groups recipes. Recipes join on Name; there is no foreign key.
type Category struct {
	ID        string    `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `gorm:"size:50;not null;uniqueIndex" json:"name"`
	Icon      string    `gorm:"size:50" json:"icon"`
	Color     string    `gorm:"size:7" json:"color"`
	// Count is derived on the client from the recipes it holds.
	Count int `gorm:"-" json:"count"`
}

// BeforeCreate assigns the store identity when the caller left it empty.
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Icon keys understood by the clients.
const (
	IconWine       = "Wine"
	IconCoffee     = "Coffee"
	IconSparkles   = "Sparkles"
	IconTrending   = "TrendingUp"
	IconBeer       = "Beer"
	IconFlame      = "Flame"
	IconGlassWater = "GlassWater"
)

// FallbackIcon is shown for icon keys missing from the lookup table.
const FallbackIcon = IconGlassWater

var iconGlyphs = map[string]string{
	IconWine:       "🍷",
	IconCoffee:     "☕",
	IconSparkles:   "✨",
	IconTrending:   "📈",
	IconBeer:       "🍺",
	IconFlame:      "🔥",
	IconGlassWater: "🥛",
}

// IconGlyph resolves an icon key to the glyph a terminal can draw.
func IconGlyph(key string) string {
	if g, ok := iconGlyphs[key]; ok {
		return g
	}
	return iconGlyphs[FallbackIcon]
}

// DefaultCategories seeds the categories collection.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Cocktail", Icon: IconWine, Color: "#DC2626"},
		{Name: "Mocktail", Icon: IconSparkles, Color: "#0F766E"},
		{Name: "Coffee", Icon: IconCoffee, Color: "#92400E"},
		{Name: "Coffee Cocktail", Icon: IconCoffee, Color: "#7C2D12"},
		{Name: "Beer", Icon: IconBeer, Color: "#CA8A04"},
		{Name: "Wine", Icon: IconWine, Color: "#9F1239"},
		{Name: "Spirits", Icon: IconFlame, Color: "#7C3AED"},
		{Name: "Hot Drinks", Icon: IconFlame, Color: "#EA580C"},
	}
}
