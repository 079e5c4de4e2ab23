package hooks

import (
	"context"

	"github.com/Rokon-556/recipe-gen/pkg/errutils"
)

// HookType represents the type of hook.
type HookType string

// Supported hook types.
const (
	PreExport  HookType = "pre-export"
	PostExport HookType = "post-export"
)

// Hook represents a hook script with its type and content.
type Hook struct {
	Type    HookType
	Content string
}

// HookContext contains information passed to hooks.
type HookContext struct {
	ExportID    string
	RecipeName  string
	BrandName   string
	ItemCount   int
	ArchiveName string
	Location    string
	Saved       []string
	Failures    errutils.FailureReport
	Vars        map[string]interface{}
}

// HookManager defines the interface for managing hooks.
type HookManager interface {
	// Execute runs the hook of the given type. A missing hook is not an error.
	Execute(ctx context.Context, hookType HookType, hc HookContext) error

	// AddHook adds or replaces a hook.
	AddHook(hook Hook) error

	// RemoveHook removes the hook of the specified type.
	RemoveHook(hookType HookType) error

	// HasHook checks if a hook of the specified type exists.
	HasHook(hookType HookType) bool
}
