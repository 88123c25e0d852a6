package hotkey

import "golang.design/x/hotkey"

var nativeMods = map[string]hotkey.Modifier{
	"ctrl":  hotkey.ModCtrl,
	"shift": hotkey.ModShift,
	"alt":   hotkey.ModAlt,
	"meta":  hotkey.ModWin,
}
