package hotkey

import "golang.design/x/hotkey"

// X11 modifier masks: alt is Mod1, the super/windows key is Mod4.
var nativeMods = map[string]hotkey.Modifier{
	"ctrl":  hotkey.ModCtrl,
	"shift": hotkey.ModShift,
	"alt":   hotkey.Mod1,
	"meta":  hotkey.Mod4,
}
