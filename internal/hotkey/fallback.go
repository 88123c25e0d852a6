package hotkey

import (
	"fmt"

	hook "github.com/robotn/gohook"
)

// hookNames translates canonical combo tokens into the names the keyboard
// hook library understands.
var hookNames = map[string]string{
	"meta":   "cmd",
	"escape": "esc",
}

func hookName(token string) string {
	if n, ok := hookNames[token]; ok {
		return n
	}
	return token
}

// listenHook installs a process-wide keyboard hook and matches the combo in
// user space. Heavier than native registration (it observes all key events)
// but works where RegisterHotKey-style APIs are denied or the combo is
// already taken.
func listenHook(c Combo) (*Listener, error) {
	keys := make([]string, 0, len(c.Mods)+1)
	for _, m := range c.Mods {
		keys = append(keys, hookName(m))
	}
	keys = append(keys, hookName(c.Key))

	l := newListener(KindHook, c)

	hook.Register(hook.KeyDown, keys, func(e hook.Event) {
		l.trigger()
	})

	events := hook.Start()
	if events == nil {
		return nil, fmt.Errorf("keyboard hook could not be started")
	}

	go func() {
		<-hook.Process(events)
	}()

	l.stop = func() {
		hook.End()
	}

	return l, nil
}
