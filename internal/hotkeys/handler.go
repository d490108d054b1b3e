// Package hotkeys grabs the configured key sequences on the X root window
// and turns presses into window manager actions.
package hotkeys

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/spiralwm/spiral/internal/config"
)

// ActionHandler runs a keybinding action. wm.Manager implements it.
type ActionHandler interface {
	HandleAction(a config.Action) error
}

// x11Accessor is implemented by backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Handler manages global keyboard shortcuts
type Handler struct {
	xu      *xgbutil.XUtil
	root    xproto.Window
	actions ActionHandler
	logger  *slog.Logger
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler.
func NewHandler(backend x11Accessor, actions ActionHandler, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	xu := backend.XUtil()

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &Handler{
		xu:      xu,
		root:    backend.RootWindow(),
		actions: actions,
		logger:  logger,
	}
}

// RegisterAll grabs every binding. A binding that cannot be grabbed, for
// example because another client holds it, is logged and skipped; the count
// of failures is returned with the first error.
func (h *Handler) RegisterAll(bindings []config.Keybinding) (int, error) {
	var (
		failed int
		first  error
	)
	for _, b := range bindings {
		if b.Action.Kind == config.ActionNone {
			continue
		}
		if err := h.Register(b); err != nil {
			h.logger.Warn("failed to register keybinding", "keys", b.Keys, "error", err)
			failed++
			if first == nil {
				first = err
			}
		}
	}
	return failed, first
}

// Register binds one key sequence to its action.
func (h *Handler) Register(b config.Keybinding) error {
	action := b.Action
	err := h.RegisterFunc(b.Keys, func() {
		h.logger.Debug("keybinding triggered", "keys", b.Keys, "action", action.String())
		if err := h.actions.HandleAction(action); err != nil {
			h.logger.Warn("keybinding action failed", "keys", b.Keys, "action", action.String(), "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("bind %q: %w", b.Keys, err)
	}
	return nil
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

// configureIgnoreMods makes bindings fire regardless of CapsLock, NumLock
// and ScrollLock.
func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for _, mask := range lockCombinations(base) {
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

// lockCombinations returns every non-empty OR of the given masks.
func lockCombinations(base []uint16) []uint16 {
	var out []uint16
	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		out = append(out, mask)
	}
	return out
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
