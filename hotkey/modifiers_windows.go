//go:build windows

package hotkey

import hk "golang.design/x/hotkey"

var modifierNames = map[string]hk.Modifier{
	"ctrl":    hk.ModCtrl,
	"control": hk.ModCtrl,
	"shift":   hk.ModShift,
	"alt":     hk.ModAlt,
	"win":     hk.ModWin,
	"super":   hk.ModWin,
}
