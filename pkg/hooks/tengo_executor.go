package hooks

import (
	"context"
	"fmt"
	"sync"

	"github.com/Rokon-556/recipe-gen/pkg/errutils"
	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// TengoExecutor handles the execution of Tengo scripts.
type TengoExecutor struct {
	scripts map[HookType]string
	mutex   sync.RWMutex
}

// NewTengoExecutor creates a new Tengo script executor.
func NewTengoExecutor() *TengoExecutor {
	return &TengoExecutor{
		scripts: make(map[HookType]string),
	}
}

// Execute runs the script registered for hookType. Scripts report failure by
// assigning a non-empty string or an error value to the variable err.
func (e *TengoExecutor) Execute(ctx context.Context, hookType HookType, hc HookContext) error {
	e.mutex.RLock()
	script, exists := e.scripts[hookType]
	e.mutex.RUnlock()
	if !exists {
		return nil
	}

	scriptInstance := tengo.NewScript([]byte(script))
	scriptInstance.SetImports(stdlib.GetModuleMap("fmt", "os", "strings", "text", "times", "json"))

	for name, value := range contextVars(hc) {
		if err := scriptInstance.Add(name, value); err != nil {
			return fmt.Errorf("failed to add %s to script: %w", name, err)
		}
	}
	for k, v := range hc.Vars {
		if err := scriptInstance.Add(k, v); err != nil {
			return fmt.Errorf("failed to add variable '%s' to script: %w", k, err)
		}
	}
	// Declared so scripts can assign it without a define.
	if err := scriptInstance.Add("err", ""); err != nil {
		return fmt.Errorf("failed to add err to script: %w", err)
	}

	compiled, err := scriptInstance.RunContext(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", hookType, errutils.ErrHookExecution, err)
	}

	if errVar := compiled.Get("err"); errVar != nil {
		switch v := errVar.Object().(type) {
		case *tengo.Error:
			msg, _ := tengo.ToString(v.Value)
			return fmt.Errorf("%s: %w: %s", hookType, errutils.ErrHookScript, msg)
		case *tengo.String:
			if v.Value != "" {
				return fmt.Errorf("%s: %w: %s", hookType, errutils.ErrHookScript, v.Value)
			}
		}
	}

	return nil
}

func contextVars(hc HookContext) map[string]interface{} {
	saved := make([]interface{}, 0, len(hc.Saved))
	for _, name := range hc.Saved {
		saved = append(saved, name)
	}
	failures := make([]interface{}, 0, len(hc.Failures))
	for _, f := range hc.Failures {
		failures = append(failures, map[string]interface{}{
			"step":   f.SequencePosition,
			"reason": f.Reason,
		})
	}
	return map[string]interface{}{
		"exportID":    hc.ExportID,
		"recipeName":  hc.RecipeName,
		"brandName":   hc.BrandName,
		"itemCount":   hc.ItemCount,
		"archiveName": hc.ArchiveName,
		"location":    hc.Location,
		"saved":       saved,
		"failures":    failures,
	}
}

// AddScript adds or updates a script for the specified hook type.
func (e *TengoExecutor) AddScript(hookType HookType, script string) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.scripts[hookType] = script
}

// RemoveScript removes the script for the specified hook type.
func (e *TengoExecutor) RemoveScript(hookType HookType) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	delete(e.scripts, hookType)
}

// HasScript checks if a script exists for the specified hook type.
func (e *TengoExecutor) HasScript(hookType HookType) bool {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	_, exists := e.scripts[hookType]
	return exists
}
