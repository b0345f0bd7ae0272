// Package hotkey turns a global key combination into toggle events.
package hotkey

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	hk "golang.design/x/hotkey"
)

// Combo is a parsed key combination: one or more modifiers plus a single
// non-modifier key, written "ctrl+alt+0" style.
type Combo struct {
	Mods []hk.Modifier
	Key  hk.Key
	raw  string
}

func (c Combo) String() string { return c.raw }

// ParseCombo parses a combination string. Modifier names are
// platform-dependent (ctrl/shift everywhere, alt/super on Linux,
// alt/win on Windows, option/cmd on macOS); the key is a letter, digit,
// function key, or a named key such as space or enter.
func ParseCombo(s string) (Combo, error) {
	combo := Combo{raw: s}
	parts := strings.Split(s, "+")

	keySeen := false
	for _, part := range parts {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			return Combo{}, fmt.Errorf("empty component in combo %q", s)
		}
		if mod, ok := modifierNames[name]; ok {
			combo.Mods = append(combo.Mods, mod)
			continue
		}
		key, ok := keyNames[name]
		if !ok {
			return Combo{}, fmt.Errorf("unknown key %q in combo %q", name, s)
		}
		if keySeen {
			return Combo{}, fmt.Errorf("combo %q has more than one non-modifier key", s)
		}
		combo.Key = key
		keySeen = true
	}

	if !keySeen {
		return Combo{}, fmt.Errorf("combo %q has no non-modifier key", s)
	}
	if len(combo.Mods) == 0 {
		return Combo{}, fmt.Errorf("combo %q has no modifier; a bare key would shadow normal typing", s)
	}
	return combo, nil
}

// Dispatcher owns the OS-level registration and fires the handler once
// per physical press-and-release. The handler must not block; a press
// that arrives while the session cannot accept it is dropped by the
// handler, never queued here.
type Dispatcher struct {
	combo   Combo
	handler func()
	logger  *log.Logger

	reg     *hk.Hotkey
	keydown <-chan hk.Event
	keyup   <-chan hk.Event
	done    chan struct{}
}

// NewDispatcher creates a dispatcher invoking handler on every press.
func NewDispatcher(combo Combo, handler func(), logger *log.Logger) *Dispatcher {
	return &Dispatcher{combo: combo, handler: handler, logger: logger}
}

// Start registers the combination globally. Failure here (typically the
// combo being bound by another application) is fatal for the process: the
// tool cannot operate without its trigger.
func (d *Dispatcher) Start() error {
	reg := hk.New(d.combo.Mods, d.combo.Key)
	if err := reg.Register(); err != nil {
		return fmt.Errorf("register hotkey %q: %w", d.combo, err)
	}
	d.reg = reg
	d.keydown = reg.Keydown()
	d.keyup = reg.Keyup()
	d.done = make(chan struct{})
	d.logger.Info("hotkey registered", "combo", d.combo.String())

	go d.forward()
	return nil
}

// forward fires the handler once per physical press. Holding the combo
// makes the OS deliver Keydown again and again (key auto-repeat), so
// after firing, further Keydown events are swallowed until the release.
func (d *Dispatcher) forward() {
	for {
		select {
		case <-d.done:
			return
		case _, ok := <-d.keydown:
			if !ok {
				return
			}
			d.logger.Debug("hotkey pressed", "combo", d.combo.String())
			d.handler()
			if !d.awaitRelease() {
				return
			}
		}
	}
}

// awaitRelease discards repeat Keydown events until the combo is released.
func (d *Dispatcher) awaitRelease() bool {
	for {
		select {
		case <-d.done:
			return false
		case _, ok := <-d.keyup:
			return ok
		case _, ok := <-d.keydown:
			if !ok {
				return false
			}
		}
	}
}

// Stop unregisters the combination.
func (d *Dispatcher) Stop() error {
	if d.reg == nil {
		return nil
	}
	close(d.done)
	if err := d.reg.Unregister(); err != nil {
		return fmt.Errorf("unregister hotkey %q: %w", d.combo, err)
	}
	d.reg = nil
	return nil
}

var keyNames = map[string]hk.Key{
	"a": hk.KeyA, "b": hk.KeyB, "c": hk.KeyC, "d": hk.KeyD, "e": hk.KeyE,
	"f": hk.KeyF, "g": hk.KeyG, "h": hk.KeyH, "i": hk.KeyI, "j": hk.KeyJ,
	"k": hk.KeyK, "l": hk.KeyL, "m": hk.KeyM, "n": hk.KeyN, "o": hk.KeyO,
	"p": hk.KeyP, "q": hk.KeyQ, "r": hk.KeyR, "s": hk.KeyS, "t": hk.KeyT,
	"u": hk.KeyU, "v": hk.KeyV, "w": hk.KeyW, "x": hk.KeyX, "y": hk.KeyY,
	"z": hk.KeyZ,

	"0": hk.Key0, "1": hk.Key1, "2": hk.Key2, "3": hk.Key3, "4": hk.Key4,
	"5": hk.Key5, "6": hk.Key6, "7": hk.Key7, "8": hk.Key8, "9": hk.Key9,

	"space":  hk.KeySpace,
	"enter":  hk.KeyReturn,
	"return": hk.KeyReturn,
	"tab":    hk.KeyTab,
	"esc":    hk.KeyEscape,
	"escape": hk.KeyEscape,
	"delete": hk.KeyDelete,
	"up":     hk.KeyUp,
	"down":   hk.KeyDown,
	"left":   hk.KeyLeft,
	"right":  hk.KeyRight,

	"f1": hk.KeyF1, "f2": hk.KeyF2, "f3": hk.KeyF3, "f4": hk.KeyF4,
	"f5": hk.KeyF5, "f6": hk.KeyF6, "f7": hk.KeyF7, "f8": hk.KeyF8,
	"f9": hk.KeyF9, "f10": hk.KeyF10, "f11": hk.KeyF11, "f12": hk.KeyF12,
}
