package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pageza/drinkbook/backend/internal/catalog"
	"github.com/pageza/drinkbook/backend/internal/model"
)

// styles derives the terminal styles from a palette.
type styles struct {
	title    lipgloss.Style
	accent   lipgloss.Style
	text     lipgloss.Style
	muted    lipgloss.Style
	card     lipgloss.Style
	errorMsg lipgloss.Style
}

func newStyles(p catalog.Palette) styles {
	return styles{
		title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.Text)),
		accent: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.Primary)),
		text:   lipgloss.NewStyle().Foreground(lipgloss.Color(p.Text)),
		muted:  lipgloss.NewStyle().Foreground(lipgloss.Color(p.TextSecondary)),
		card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(p.Border)).
			Background(lipgloss.Color(p.Card)).
			Padding(0, 1),
		errorMsg: lipgloss.NewStyle().Foreground(lipgloss.Color("#DC2626")),
	}
}

type renderer struct {
	out io.Writer
	st  styles
}

func newRenderer(out io.Writer, p catalog.Palette) *renderer {
	return &renderer{out: out, st: newStyles(p)}
}

func (r *renderer) list(recipes []model.Recipe, favs *catalog.Favorites) {
	if len(recipes) == 0 {
		fmt.Fprintln(r.out, r.st.muted.Render("No recipes found"))
		return
	}
	for _, rec := range recipes {
		star := " "
		if favs != nil && favs.Has(rec.ID) {
			star = r.st.accent.Render("★")
		}
		fmt.Fprintf(r.out, "%s %s  %s  %s\n",
			star,
			r.st.title.Render(rec.Name),
			r.st.muted.Render(fmt.Sprintf("%s · %s · %s", rec.Category, rec.Difficulty, rec.Duration())),
			r.st.muted.Render(rec.ID))
	}
}

func (r *renderer) recipe(rec *model.Recipe, favorite bool) {
	var b strings.Builder
	header := r.st.title.Render(rec.Name)
	if favorite {
		header += " " + r.st.accent.Render("★")
	}
	b.WriteString(header + "\n")
	b.WriteString(r.st.muted.Render(fmt.Sprintf("%s · %s · %s · popularity %d",
		rec.Category, rec.Difficulty, rec.Duration(), rec.Popularity)) + "\n")
	if rec.Description != "" {
		b.WriteString("\n" + r.st.text.Render(rec.Description) + "\n")
	}
	b.WriteString("\n" + r.st.accent.Render("Ingredients") + "\n")
	for _, ing := range rec.Ingredients {
		b.WriteString(r.st.text.Render("• "+ing) + "\n")
	}
	b.WriteString("\n" + r.st.accent.Render("Instructions") + "\n")
	for i, step := range rec.Instructions {
		b.WriteString(r.st.text.Render(fmt.Sprintf("%d. %s", i+1, step)) + "\n")
	}
	if rec.ImageURL != "" {
		b.WriteString("\n" + r.st.muted.Render(rec.ImageURL) + "\n")
	}
	fmt.Fprintln(r.out, r.st.card.Render(strings.TrimRight(b.String(), "\n")))
}

func (r *renderer) categories(cats []model.Category) {
	for _, c := range cats {
		fmt.Fprintf(r.out, "%s %s %s\n",
			model.IconGlyph(c.Icon),
			r.st.title.Render(c.Name),
			r.st.muted.Render(fmt.Sprintf("(%d)", c.Count)))
	}
}

func (r *renderer) palette(dark bool, p catalog.Palette) {
	mode := "light"
	if dark {
		mode = "dark"
	}
	fmt.Fprintf(r.out, "%s %s\n", r.st.title.Render("Theme:"), r.st.accent.Render(mode))
	for _, row := range [][2]string{
		{"background", p.Background},
		{"card", p.Card},
		{"text", p.Text},
		{"text-secondary", p.TextSecondary},
		{"primary", p.Primary},
		{"border", p.Border},
	} {
		swatch := lipgloss.NewStyle().Background(lipgloss.Color(row[1])).Render("  ")
		fmt.Fprintf(r.out, "%s %-15s %s\n", swatch, row[0], r.st.muted.Render(row[1]))
	}
}

func (r *renderer) failure(msg string) {
	fmt.Fprintln(r.out, r.st.errorMsg.Render(msg))
	fmt.Fprintln(r.out, r.st.muted.Render("Check your connection and try again."))
}

func (r *renderer) line(format string, args ...interface{}) {
	fmt.Fprintln(r.out, r.st.text.Render(fmt.Sprintf(format, args...)))
}
