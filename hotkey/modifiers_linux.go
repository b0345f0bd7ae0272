//go:build linux

package hotkey

import hk "golang.design/x/hotkey"

var modifierNames = map[string]hk.Modifier{
	"ctrl":    hk.ModCtrl,
	"control": hk.ModCtrl,
	"shift":   hk.ModShift,
	"alt":     hk.Mod1,
	"super":   hk.Mod4,
	"win":     hk.Mod4,
}
