package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pageza/drinkbook/backend/internal/catalog"
	"github.com/pageza/drinkbook/backend/internal/model"
	"github.com/pageza/drinkbook/backend/internal/remote"
	"github.com/pageza/drinkbook/backend/internal/websocket"
)

func newListCmd(s *session) *cobra.Command {
	var (
		category string
		search   string
		featured bool
		popular  bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recipes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := s.requestCtx(cmd.Context())
			defer cancel()

			if err := s.app.Recipes.Fetch(ctx, category); err != nil {
				s.out.failure(s.app.Recipes.ErrMessage())
				return err
			}
			recipes := catalog.Search(s.app.Recipes.Recipes(), search)
			if featured {
				recipes = catalog.Featured(recipes)
			}
			if popular {
				catalog.SortByPopularity(recipes)
			}
			s.out.list(recipes, s.app.Favorites)
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", model.CategoryAll, "Only this category")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Match name or ingredient")
	cmd.Flags().BoolVar(&featured, "featured", false, "Only featured recipes")
	cmd.Flags().BoolVar(&popular, "popular", false, "Sort by popularity")
	return cmd
}

func newShowCmd(s *session) *cobra.Command {
	var count bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := s.requestCtx(cmd.Context())
			defer cancel()

			var (
				recipe *model.Recipe
				err    error
			)
			if count {
				recipe, err = s.app.Recipes.IncrementPopularity(ctx, args[0])
			} else {
				recipe, err = s.app.Recipes.Get(ctx, args[0])
			}
			if err != nil {
				s.out.failure(remote.Describe(err))
				return err
			}
			s.out.recipe(recipe, s.app.Favorites.Has(recipe.ID))
			return nil
		},
	}
	cmd.Flags().BoolVar(&count, "count", false, "Count this view toward popularity")
	return cmd
}

// recipeFlags are shared by add and edit.
type recipeFlags struct {
	name         string
	category     string
	difficulty   string
	minutes      int
	description  string
	image        string
	featured     bool
	ingredients  []string
	instructions []string
}

func (f *recipeFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.name, "name", "", "Recipe name")
	fl.StringVar(&f.category, "category", "", "Category")
	fl.StringVar(&f.difficulty, "difficulty", string(model.DifficultyEasy), "Easy, Medium or Hard")
	fl.IntVar(&f.minutes, "time", 0, "Preparation time in minutes")
	fl.StringVar(&f.description, "description", "", "Short description")
	fl.StringVar(&f.image, "image", "", "Image URL")
	fl.BoolVar(&f.featured, "featured", false, "Show on the home screen")
	fl.StringArrayVar(&f.ingredients, "ingredient", nil, "Ingredient (repeatable)")
	fl.StringArrayVar(&f.instructions, "instruction", nil, "Instruction step (repeatable)")
}

func (f *recipeFlags) draft() model.RecipeDraft {
	return model.RecipeDraft{
		Name:         f.name,
		Category:     f.category,
		Difficulty:   model.Difficulty(f.difficulty),
		TimeMinutes:  f.minutes,
		Description:  f.description,
		ImageURL:     f.image,
		Featured:     f.featured,
		Ingredients:  f.ingredients,
		Instructions: f.instructions,
	}
}

// patch includes only the flags set on cmd.
func (f *recipeFlags) patch(cmd *cobra.Command) model.RecipePatch {
	var p model.RecipePatch
	changed := cmd.Flags().Changed
	if changed("name") {
		p.Name = &f.name
	}
	if changed("category") {
		p.Category = &f.category
	}
	if changed("difficulty") {
		d := model.Difficulty(f.difficulty)
		p.Difficulty = &d
	}
	if changed("time") {
		p.TimeMinutes = &f.minutes
	}
	if changed("description") {
		p.Description = &f.description
	}
	if changed("image") {
		p.ImageURL = &f.image
	}
	if changed("featured") {
		p.Featured = &f.featured
	}
	if changed("ingredient") {
		p.Ingredients = f.ingredients
	}
	if changed("instruction") {
		p.Instructions = f.instructions
	}
	return p
}

func newAddCmd(s *session) *cobra.Command {
	f := &recipeFlags{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a recipe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			draft := f.draft().Clean()
			if err := draft.Validate(); err != nil {
				return err
			}

			ctx, cancel := s.requestCtx(cmd.Context())
			defer cancel()
			created, err := s.app.Recipes.Add(ctx, draft)
			if err != nil {
				s.out.failure(remote.Describe(err))
				return err
			}
			s.out.line("Added %s (%s)", created.Name, created.ID)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newEditCmd(s *session) *cobra.Command {
	f := &recipeFlags{}
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := f.patch(cmd).Clean()
			if patch.Empty() {
				return errors.New("nothing to change")
			}
			if err := patch.Validate(); err != nil {
				return err
			}

			ctx, cancel := s.requestCtx(cmd.Context())
			defer cancel()
			updated, err := s.app.Recipes.Update(ctx, args[0], patch)
			if err != nil {
				s.out.failure(remote.Describe(err))
				return err
			}
			s.out.recipe(updated, s.app.Favorites.Has(updated.ID))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newDeleteCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := s.requestCtx(cmd.Context())
			defer cancel()
			if err := s.app.Recipes.Delete(ctx, args[0]); err != nil {
				s.out.failure(remote.Describe(err))
				return err
			}
			s.out.line("Deleted %s", args[0])
			return nil
		},
	}
}

func newFavCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "fav <id>",
		Short: "Toggle a recipe in your favorites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if s.app.Favorites.Toggle(cmd.Context(), args[0]) {
				s.out.line("Added %s to favorites", args[0])
			} else {
				s.out.line("Removed %s from favorites", args[0])
			}
			return nil
		},
	}
}

func newFavoritesCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "favorites",
		Short: "List favorite recipes, most popular first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := s.requestCtx(cmd.Context())
			defer cancel()
			recipes, err := catalog.FavoriteRecipes(ctx, s.app.Remote, s.app.Favorites)
			if err != nil {
				s.out.failure(remote.Describe(err))
				return err
			}
			s.out.list(recipes, s.app.Favorites)
			return nil
		},
	}
}

func newThemeCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Show the active palette",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			s.out.palette(s.app.Theme.IsDark(), s.app.Theme.Palette())
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "toggle",
		Short: "Switch between light and dark",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			unsubscribe := s.app.Theme.Subscribe(func(p catalog.Palette) {
				s.out = newRenderer(s.out.out, p)
			})
			defer unsubscribe()
			dark := s.app.Theme.Toggle(cmd.Context())
			s.out.palette(dark, s.app.Theme.Palette())
		},
	})
	return cmd
}

func newCategoriesCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories with recipe counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := s.requestCtx(cmd.Context())
			defer cancel()
			if err := s.app.Home(ctx); err != nil {
				s.out.failure(remote.Describe(err))
				return err
			}
			s.out.categories(s.app.Categories())
			return nil
		},
	}
}

func newLoginCmd(s *session) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in as the bartender and save the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := s.requestCtx(cmd.Context())
			defer cancel()
			token, err := s.store.Login(ctx, email, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			s.cfg.Token = token
			if err := saveConfig(s.configPath, s.cfg); err != nil {
				return err
			}
			s.out.line("Signed in as %s", email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Bartender email")
	cmd.Flags().StringVar(&password, "password", "", "Bartender password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newWatchCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print catalog changes as they happen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := websocket.Watch(cmd.Context(), watchURL(s.cfg.APIURL), func(ev websocket.Event) {
				name := ev.RecipeID
				if ev.Recipe != nil {
					name = ev.Recipe.Name
				}
				s.out.line("%s %s %s", time.Unix(ev.Time, 0).Format("15:04:05"), ev.Type, name)
			})
			if cmd.Context().Err() != nil {
				return nil
			}
			return err
		},
	}
}
