package recipe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Rokon-556/recipe-gen/pkg/errutils"
	"github.com/Rokon-556/recipe-gen/pkg/export"
)

// Cuisine is a cuisine the recipe service knows how to style.
type Cuisine string

// Supported cuisines.
const (
	Chinese     Cuisine = "chinese"
	Japanese    Cuisine = "japanese"
	Latin       Cuisine = "latin"
	Italian     Cuisine = "italian"
	Continental Cuisine = "continental"
	Indian      Cuisine = "indian"
)

// ValidCuisines lists every supported cuisine.
func ValidCuisines() []string {
	return []string{
		string(Chinese), string(Japanese), string(Latin),
		string(Italian), string(Continental), string(Indian),
	}
}

// ParseCuisine validates s case-insensitively.
func ParseCuisine(s string) (Cuisine, error) {
	c := strings.ToLower(strings.TrimSpace(s))
	for _, valid := range ValidCuisines() {
		if c == valid {
			return Cuisine(c), nil
		}
	}
	return "", errutils.ErrInvalidCuisineWithDetails(s, ValidCuisines())
}

// Quantity is an ingredient amount. The service sends it either as a JSON
// string or a JSON number.
type Quantity string

// UnmarshalJSON accepts strings and numbers.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*q = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*q = Quantity(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("quantity must be a string or number: %w", err)
	}
	*q = Quantity(n.String())
	return nil
}

// Ingredient is one ingredient of a recipe.
type Ingredient struct {
	Name     string   `json:"name" yaml:"name"`
	Quantity Quantity `json:"quantity" yaml:"quantity"`
	Unit     string   `json:"unit" yaml:"unit"`
	ImageURL string   `json:"imageUrl,omitempty" yaml:"image_url,omitempty"`
}

// ParseIngredient parses "name:quantity:unit". Quantity and unit are optional.
func ParseIngredient(s string) (Ingredient, error) {
	parts := strings.SplitN(s, ":", 3)
	ing := Ingredient{Name: strings.TrimSpace(parts[0])}
	if ing.Name == "" {
		return Ingredient{}, errutils.NewValidationError("ingredient", fmt.Sprintf("missing name in %q", s))
	}
	if len(parts) > 1 {
		ing.Quantity = Quantity(strings.TrimSpace(parts[1]))
	}
	if len(parts) > 2 {
		ing.Unit = strings.TrimSpace(parts[2])
	}
	return ing, nil
}

// Step is one illustrated preparation step.
type Step struct {
	Number      int    `json:"stepNumber" yaml:"step_number"`
	Description string `json:"description" yaml:"description"`
	ImageURL    string `json:"imageUrl,omitempty" yaml:"image_url,omitempty"`
}

// Recipe is a generated recipe with the locations of its images.
type Recipe struct {
	ID          string       `json:"id" yaml:"id"`
	Name        string       `json:"name" yaml:"recipe_name"`
	BrandName   string       `json:"brandName" yaml:"brand_name"`
	Cuisine     Cuisine      `json:"cuisine,omitempty" yaml:"cuisine,omitempty"`
	Ingredients []Ingredient `json:"ingredients" yaml:"ingredients"`
	FinalImage  string       `json:"finalImage,omitempty" yaml:"final_image,omitempty"`
	Steps       []Step       `json:"steps,omitempty" yaml:"steps,omitempty"`
}

// ExportRequest maps the recipe images to export positions: ingredient i
// (0-based) is position i+1, the final image follows the ingredients and
// illustrated steps come last.
func (r Recipe) ExportRequest() export.Request {
	items := make([]export.ImageReference, 0, len(r.Ingredients)+1+len(r.Steps))
	for i, ing := range r.Ingredients {
		items = append(items, export.ImageReference{SourceLocator: ing.ImageURL, SequencePosition: i + 1})
	}
	finalPos := len(r.Ingredients) + 1
	items = append(items, export.ImageReference{SourceLocator: r.FinalImage, SequencePosition: finalPos})
	for i, step := range r.Steps {
		items = append(items, export.ImageReference{SourceLocator: step.ImageURL, SequencePosition: finalPos + i + 1})
	}
	return export.Request{
		CollectionName: r.Name,
		BrandName:      r.BrandName,
		Items:          items,
	}
}

// String renders a quantity and unit for prompts and tables.
func (i Ingredient) String() string {
	parts := []string{string(i.Quantity), i.Unit, i.Name}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

var _ json.Unmarshaler = (*Quantity)(nil)

