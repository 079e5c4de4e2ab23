package hooks

import (
	"fmt"

	"github.com/Rokon-556/recipe-gen/pkg/errutils"
)

// ErrHookTypeEmpty is returned when a hook type is empty.
var ErrHookTypeEmpty = fmt.Errorf("hook type cannot be empty")

// ErrUnsupportedHookType is returned when a hook type is not one of the known types.
func ErrUnsupportedHookType(hookType HookType) error {
	return errutils.Wrapf(errutils.ErrHookLoad, "unsupported hook type: %s", hookType)
}
