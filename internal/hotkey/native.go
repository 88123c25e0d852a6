package hotkey

import (
	"fmt"

	"golang.design/x/hotkey"
)

// nativeKeys maps combo key names onto the platform's key codes. The
// constant names are shared across platforms; their values are not.
var nativeKeys = map[string]hotkey.Key{
	"space":  hotkey.KeySpace,
	"tab":    hotkey.KeyTab,
	"escape": hotkey.KeyEscape,
	"enter":  hotkey.KeyReturn,
	"delete": hotkey.KeyDelete,
	"up":     hotkey.KeyUp,
	"down":   hotkey.KeyDown,
	"left":   hotkey.KeyLeft,
	"right":  hotkey.KeyRight,

	"a": hotkey.KeyA, "b": hotkey.KeyB, "c": hotkey.KeyC, "d": hotkey.KeyD,
	"e": hotkey.KeyE, "f": hotkey.KeyF, "g": hotkey.KeyG, "h": hotkey.KeyH,
	"i": hotkey.KeyI, "j": hotkey.KeyJ, "k": hotkey.KeyK, "l": hotkey.KeyL,
	"m": hotkey.KeyM, "n": hotkey.KeyN, "o": hotkey.KeyO, "p": hotkey.KeyP,
	"q": hotkey.KeyQ, "r": hotkey.KeyR, "s": hotkey.KeyS, "t": hotkey.KeyT,
	"u": hotkey.KeyU, "v": hotkey.KeyV, "w": hotkey.KeyW, "x": hotkey.KeyX,
	"y": hotkey.KeyY, "z": hotkey.KeyZ,

	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3,
	"4": hotkey.Key4, "5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7,
	"8": hotkey.Key8, "9": hotkey.Key9,

	"f1": hotkey.KeyF1, "f2": hotkey.KeyF2, "f3": hotkey.KeyF3,
	"f4": hotkey.KeyF4, "f5": hotkey.KeyF5, "f6": hotkey.KeyF6,
	"f7": hotkey.KeyF7, "f8": hotkey.KeyF8, "f9": hotkey.KeyF9,
	"f10": hotkey.KeyF10, "f11": hotkey.KeyF11, "f12": hotkey.KeyF12,
}

// listenNative registers the combo with the OS (RegisterHotKey on Windows,
// XGrabKey on X11, Carbon on macOS). Fails when the combo is taken or the
// session denies global registration; the caller then tries the hook.
func listenNative(c Combo) (*Listener, error) {
	mods := make([]hotkey.Modifier, 0, len(c.Mods))
	for _, name := range c.Mods {
		mod, ok := nativeMods[name]
		if !ok {
			return nil, fmt.Errorf("modifier %q is not supported natively on this platform", name)
		}
		mods = append(mods, mod)
	}

	key, ok := nativeKeys[c.Key]
	if !ok {
		return nil, fmt.Errorf("key %q is not supported natively", c.Key)
	}

	hk := hotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return nil, fmt.Errorf("native registration failed: %w", err)
	}

	l := newListener(KindNative, c)

	done := make(chan struct{})
	l.stop = func() {
		close(done)
		hk.Unregister()
	}

	go func() {
		for {
			select {
			case <-done:
				return
			case <-hk.Keydown():
				l.trigger()
			}
		}
	}()

	return l, nil
}
