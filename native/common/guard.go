package common

import (
	"fmt"

	marketerrors "nftmarket/core/errors"
)

// ErrModulePaused is returned by Guard for paused modules.
var ErrModulePaused = marketerrors.ErrModulePaused

const (
	ModuleAuction     = "auction"
	ModuleMarketplace = "marketplace"
)

type PauseView interface {
	IsPaused(module string) bool
}

// PauseSet is a static PauseView keyed by module name.
type PauseSet map[string]bool

// IsPaused implements PauseView.
func (p PauseSet) IsPaused(module string) bool { return p[module] }

func Guard(p PauseView, module string) error {
	if p == nil || module == "" {
		return nil
	}
	if p.IsPaused(module) {
		return fmt.Errorf("%w: %s", ErrModulePaused, module)
	}
	return nil
}
