package hooks

import "context"

// DefaultHookManager is the HookManager backed by Tengo scripts.
type DefaultHookManager struct {
	executor *TengoExecutor
}

// NewHookManager creates an empty hook manager.
func NewHookManager() *DefaultHookManager {
	return &DefaultHookManager{executor: NewTengoExecutor()}
}

// Execute runs the hook of the given type.
func (m *DefaultHookManager) Execute(ctx context.Context, hookType HookType, hc HookContext) error {
	return m.executor.Execute(ctx, hookType, hc)
}

// AddHook adds or replaces a hook.
func (m *DefaultHookManager) AddHook(hook Hook) error {
	if hook.Type == "" {
		return ErrHookTypeEmpty
	}
	if !IsValidHookType(hook.Type) {
		return ErrUnsupportedHookType(hook.Type)
	}
	m.executor.AddScript(hook.Type, hook.Content)
	return nil
}

// RemoveHook removes the hook of the specified type.
func (m *DefaultHookManager) RemoveHook(hookType HookType) error {
	if hookType == "" {
		return ErrHookTypeEmpty
	}
	m.executor.RemoveScript(hookType)
	return nil
}

// HasHook checks if a hook of the specified type exists.
func (m *DefaultHookManager) HasHook(hookType HookType) bool {
	return m.executor.HasScript(hookType)
}

// IsValidHookType reports whether hookType is supported.
func IsValidHookType(hookType HookType) bool {
	switch hookType {
	case PreExport, PostExport:
		return true
	default:
		return false
	}
}

var _ HookManager = (*DefaultHookManager)(nil)
