// Package recipe talks to the recipe-content service that generates
// ingredient lists and recipe images, and maps generated recipes to export
// requests.
package recipe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Rokon-556/recipe-gen/internal/logger"
	"github.com/Rokon-556/recipe-gen/pkg/auth"
	"github.com/Rokon-556/recipe-gen/pkg/errutils"
)

const (
	defaultHTTPTimeout = 60 * time.Second
	maxErrorBody       = 4 << 10
)

// Service function names, appended to the base URL.
const (
	FnGenerateIngredients     = "generate-recipe-ingredients"
	FnGenerateIngredientImage = "generate-ingredient-image"
	FnGenerateFinalRecipe     = "generate-final-recipe"
	FnGenerateRecipeImages    = "generate-recipe-images"
)

// Config captures the settings required to talk to the recipe service.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client calls the recipe service over HTTP.
type Client struct {
	cfg        Config
	httpClient *http.Client
	auth       auth.Authenticator
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithAuthenticator replaces the default bearer authentication built from
// the API key.
func WithAuthenticator(a auth.Authenticator) Option {
	return func(c *Client) {
		if a != nil {
			c.auth = a
		}
	}
}

// NewClient constructs a client. The base URL is required.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.BaseURL == "" {
		return nil, errutils.NewValidationError("recipe_service.base_url", "base URL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		auth:       auth.BearerAuth{Token: cfg.APIKey},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// ServiceError is a non-2xx response from the recipe service.
type ServiceError struct {
	Function   string
	StatusCode int
	Message    string
	Details    string
}

func (e *ServiceError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Details != "" && e.Details != msg {
		return fmt.Sprintf("%s: %s: http %d: %s (%s)", ErrPrefix, e.Function, e.StatusCode, msg, e.Details)
	}
	return fmt.Sprintf("%s: %s: http %d: %s", ErrPrefix, e.Function, e.StatusCode, msg)
}

// Unwrap lets callers match errutils.ErrRecipeService.
func (e *ServiceError) Unwrap() error { return errutils.ErrRecipeService }

// ErrPrefix starts every ServiceError message.
const ErrPrefix = "recipe service"

type ingredientsRequest struct {
	RecipeName string  `json:"recipeName"`
	Cuisine    Cuisine `json:"cuisine"`
}

type ingredientsResponse struct {
	Ingredients []Ingredient `json:"ingredients"`
}

type ingredientImageRequest struct {
	IngredientName string   `json:"ingredientName"`
	Quantity       Quantity `json:"quantity"`
	Unit           string   `json:"unit"`
}

type finalRecipeRequest struct {
	RecipeName  string       `json:"recipeName"`
	Ingredients []Ingredient `json:"ingredients"`
}

type stepImageRequest struct {
	RecipeName  string       `json:"recipeName"`
	StepNumber  int          `json:"stepNumber"`
	Description string       `json:"description"`
	Cuisine     Cuisine      `json:"cuisine"`
	Ingredients []Ingredient `json:"ingredients"`
}

type imageResponse struct {
	ImageURL    string `json:"imageUrl"`
	Description string `json:"description,omitempty"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// GenerateIngredients asks the service for the ingredient list of a dish.
func (c *Client) GenerateIngredients(ctx context.Context, recipeName string, cuisine Cuisine) ([]Ingredient, error) {
	if strings.TrimSpace(recipeName) == "" {
		return nil, errutils.NewValidationError("recipeName", "recipe name is required")
	}
	var resp ingredientsResponse
	if err := c.call(ctx, FnGenerateIngredients, ingredientsRequest{RecipeName: recipeName, Cuisine: cuisine}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Ingredients) == 0 {
		return nil, fmt.Errorf("%w: %s returned no ingredients for %q", errutils.ErrRecipeService, FnGenerateIngredients, recipeName)
	}
	return resp.Ingredients, nil
}

// GenerateIngredientImage returns the URL of a picture of one ingredient.
func (c *Client) GenerateIngredientImage(ctx context.Context, ing Ingredient) (string, error) {
	var resp imageResponse
	req := ingredientImageRequest{IngredientName: ing.Name, Quantity: ing.Quantity, Unit: ing.Unit}
	if err := c.call(ctx, FnGenerateIngredientImage, req, &resp); err != nil {
		return "", err
	}
	return c.requireURL(FnGenerateIngredientImage, resp.ImageURL)
}

// GenerateFinalImage returns the URL of a picture of the finished dish.
func (c *Client) GenerateFinalImage(ctx context.Context, recipeName string, ingredients []Ingredient) (string, error) {
	var resp imageResponse
	if err := c.call(ctx, FnGenerateFinalRecipe, finalRecipeRequest{RecipeName: recipeName, Ingredients: ingredients}, &resp); err != nil {
		return "", err
	}
	return c.requireURL(FnGenerateFinalRecipe, resp.ImageURL)
}

// GenerateStepImage illustrates one preparation step. The returned step
// carries the service's expanded description.
func (c *Client) GenerateStepImage(ctx context.Context, recipeName string, cuisine Cuisine, step Step, ingredients []Ingredient) (Step, error) {
	if step.Number < 1 || strings.TrimSpace(step.Description) == "" {
		return Step{}, errutils.NewValidationError("step", "step number and description are required")
	}
	var resp imageResponse
	req := stepImageRequest{
		RecipeName:  recipeName,
		StepNumber:  step.Number,
		Description: step.Description,
		Cuisine:     cuisine,
		Ingredients: ingredients,
	}
	if err := c.call(ctx, FnGenerateRecipeImages, req, &resp); err != nil {
		return Step{}, err
	}
	url, err := c.requireURL(FnGenerateRecipeImages, resp.ImageURL)
	if err != nil {
		return Step{}, err
	}
	step.ImageURL = url
	if resp.Description != "" {
		step.Description = resp.Description
	}
	return step, nil
}

func (c *Client) requireURL(fn, url string) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", fmt.Errorf("%w: %s returned no image URL", errutils.ErrRecipeService, fn)
	}
	return url, nil
}

func (c *Client) call(ctx context.Context, fn string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", fn, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/"+fn, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: build request: %w", fn, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if err := c.auth.Apply(req); err != nil {
		return fmt.Errorf("%s: authenticate request: %w", fn, err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", errutils.ErrRecipeService, fn, err)
	}
	defer func() { _ = resp.Body.Close() }()
	logger.Debug("Recipe service call", logger.Fields{"function": fn, "status": resp.StatusCode, "elapsed": time.Since(start).String()})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeServiceError(fn, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: decode response: %w", errutils.ErrRecipeService, fn, err)
	}
	return nil
}

func decodeServiceError(fn string, resp *http.Response) error {
	svcErr := &ServiceError{Function: fn, StatusCode: resp.StatusCode}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return svcErr
	}
	var payload errorResponse
	if jsonErr := json.Unmarshal(raw, &payload); jsonErr == nil && (payload.Error != "" || payload.Details != "") {
		svcErr.Message = payload.Error
		svcErr.Details = payload.Details
		return svcErr
	}
	svcErr.Message = strings.TrimSpace(string(raw))
	return svcErr
}

// IsServiceError reports whether err came from a non-2xx service response.
func IsServiceError(err error) bool {
	var se *ServiceError
	return errors.As(err, &se)
}
