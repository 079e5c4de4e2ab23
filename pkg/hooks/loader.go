package hooks

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Rokon-556/recipe-gen/pkg/errutils"
)

// HookFileExtension is the extension of hook script files.
const HookFileExtension = ".tengo"

// LoadHookFile reads a script from path and registers it as hookType.
func LoadHookFile(manager HookManager, hookType HookType, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: error reading hook file %s: %w", errutils.ErrHookLoad, path, err)
	}
	if err := manager.AddHook(Hook{Type: hookType, Content: string(content)}); err != nil {
		return errutils.Wrapf(err, "error adding hook %s", hookType)
	}
	return nil
}

// LoadHooksFromDir registers every <hook-type>.tengo file found in dir.
// Unknown file names are skipped. A missing directory is not an error.
func LoadHooksFromDir(manager HookManager, dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: failed to read hooks directory %s: %w", errutils.ErrHookLoad, dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != HookFileExtension {
			continue
		}
		hookType := HookType(strings.TrimSuffix(entry.Name(), HookFileExtension))
		if !IsValidHookType(hookType) {
			continue
		}
		if err := LoadHookFile(manager, hookType, filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// HookTemplate generates a template for a hook script.
func HookTemplate(hookType HookType) string {
	switch hookType {
	case PreExport:
		return `// Pre-export hook
// Runs before any image is downloaded. Assign a message to err to abort.
// Available variables:
// - exportID: string
// - recipeName: string
// - brandName: string
// - itemCount: int - number of images requested

/*
if itemCount > 50 {
    err = "refusing to export more than 50 images"
}
*/`

	case PostExport:
		return `// Post-export hook
// Runs after the archive was saved.
// Available variables: those of the pre-export hook and
// - archiveName: string
// - location: string - where the archive was saved
// - saved: array of entry names
// - failures: array of {step, reason}

/*
fmt := import("fmt")
for f in failures {
    fmt.println("step ", f.step, " failed: ", f.reason)
}
*/`

	default:
		return fmt.Sprintf("// Unsupported hook type: %s", hookType)
	}
}
