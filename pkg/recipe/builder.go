//go:generate mockgen -destination=./mocks/recipe.go . Generator

package recipe

import (
	"context"
	"fmt"
	"strings"

	"github.com/Rokon-556/recipe-gen/internal/logger"
	"github.com/Rokon-556/recipe-gen/pkg/errutils"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Generator is the part of the recipe service used to build recipes.
type Generator interface {
	GenerateIngredients(ctx context.Context, recipeName string, cuisine Cuisine) ([]Ingredient, error)
	GenerateIngredientImage(ctx context.Context, ing Ingredient) (string, error)
	GenerateFinalImage(ctx context.Context, recipeName string, ingredients []Ingredient) (string, error)
	GenerateStepImage(ctx context.Context, recipeName string, cuisine Cuisine, step Step, ingredients []Ingredient) (Step, error)
}

// Builder assembles complete recipes from service calls.
type Builder struct {
	Generator     Generator
	MaxConcurrent int // 0 means unbounded
}

// NewBuilder creates a builder.
func NewBuilder(gen Generator, maxConcurrent int) *Builder {
	return &Builder{Generator: gen, MaxConcurrent: maxConcurrent}
}

// BuildRecipe generates the ingredient list, one image per ingredient, the
// final dish image and, for each entry of steps, an illustrated step.
// Ingredient and step images that fail to generate are left empty so the
// export reports them; a failed ingredient list or final image fails the
// whole recipe.
func (b *Builder) BuildRecipe(ctx context.Context, name, brand string, cuisine Cuisine, steps []string) (Recipe, error) {
	if strings.TrimSpace(name) == "" {
		return Recipe{}, errutils.NewValidationError("recipeName", "recipe name is required")
	}
	ingredients, err := b.Generator.GenerateIngredients(ctx, name, cuisine)
	if err != nil {
		return Recipe{}, err
	}

	r := Recipe{
		ID:          "recipe-" + uuid.NewString(),
		Name:        name,
		BrandName:   brand,
		Cuisine:     cuisine,
		Ingredients: append([]Ingredient(nil), ingredients...),
	}
	for i, desc := range steps {
		r.Steps = append(r.Steps, Step{Number: i + 1, Description: desc})
	}

	var g errgroup.Group
	if b.MaxConcurrent > 0 {
		g.SetLimit(b.MaxConcurrent)
	}
	for i := range r.Ingredients {
		g.Go(func() error {
			url, err := b.Generator.GenerateIngredientImage(ctx, r.Ingredients[i])
			if err != nil {
				logger.Warn("Ingredient image generation failed", logger.Fields{"recipe": name, "ingredient": r.Ingredients[i].Name, "error": err.Error()})
				return nil
			}
			r.Ingredients[i].ImageURL = url
			return nil
		})
	}
	for i := range r.Steps {
		g.Go(func() error {
			step, err := b.Generator.GenerateStepImage(ctx, name, cuisine, r.Steps[i], ingredients)
			if err != nil {
				logger.Warn("Step image generation failed", logger.Fields{"recipe": name, "step": r.Steps[i].Number, "error": err.Error()})
				return nil
			}
			r.Steps[i] = step
			return nil
		})
	}
	_ = g.Wait()

	final, err := b.Generator.GenerateFinalImage(ctx, name, ingredients)
	if err != nil {
		return Recipe{}, fmt.Errorf("failed to generate recipe image: %w", err)
	}
	r.FinalImage = final
	return r, nil
}

// BuildManualRecipe generates only the final image for user-supplied
// ingredients. Ingredient images stay empty.
func (b *Builder) BuildManualRecipe(ctx context.Context, name, brand string, ingredients []Ingredient) (Recipe, error) {
	if strings.TrimSpace(name) == "" {
		return Recipe{}, errutils.NewValidationError("recipeName", "recipe name is required")
	}
	if len(ingredients) == 0 {
		return Recipe{}, errutils.NewValidationError("ingredients", "at least one ingredient is required")
	}
	final, err := b.Generator.GenerateFinalImage(ctx, name, ingredients)
	if err != nil {
		return Recipe{}, fmt.Errorf("failed to generate recipe image: %w", err)
	}

	r := Recipe{
		ID:          "recipe-" + uuid.NewString(),
		Name:        name,
		BrandName:   brand,
		Ingredients: make([]Ingredient, len(ingredients)),
		FinalImage:  final,
	}
	for i, ing := range ingredients {
		ing.ImageURL = ""
		r.Ingredients[i] = ing
	}
	return r, nil
}

var _ Generator = (*Client)(nil)
