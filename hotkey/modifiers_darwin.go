//go:build darwin

package hotkey

import hk "golang.design/x/hotkey"

var modifierNames = map[string]hk.Modifier{
	"ctrl":    hk.ModCtrl,
	"control": hk.ModCtrl,
	"shift":   hk.ModShift,
	"alt":     hk.ModOption,
	"option":  hk.ModOption,
	"cmd":     hk.ModCmd,
	"super":   hk.ModCmd,
}
