// Package hotkey owns the process-wide global shortcut. Registration tries
// the OS-native mechanism first and falls back to a keyboard hook; exactly
// one of the two is active at a time. Triggers are delivered on a
// single-consumer channel so the UI event loop stays the only writer of
// popup state.
package hotkey

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Kind reports which registration mechanism is active.
type Kind int

const (
	KindNative Kind = iota
	KindHook
)

func (k Kind) String() string {
	if k == KindNative {
		return "native"
	}
	return "hook"
}

// Combo is a parsed hotkey combination: zero or more modifiers plus exactly
// one key, all normalized to canonical lower-case names.
type Combo struct {
	Mods []string // subset of ctrl, alt, shift, meta
	Key  string
}

func (c Combo) String() string {
	return strings.Join(append(append([]string{}, c.Mods...), c.Key), "+")
}

var modSynonyms = map[string]string{
	"ctrl":    "ctrl",
	"control": "ctrl",
	"alt":     "alt",
	"option":  "alt",
	"shift":   "shift",
	"meta":    "meta",
	"super":   "meta",
	"win":     "meta",
	"cmd":     "meta",
}

var keySynonyms = map[string]string{
	"esc":    "escape",
	"return": "enter",
}

// ParseCombo parses strings like "ctrl+alt+space". Unknown tokens, missing
// keys and duplicate keys are errors. Bare enter/space (no modifier) would
// fire on ordinary typing and are rejected outright.
func ParseCombo(s string) (Combo, error) {
	var c Combo
	seen := make(map[string]bool)

	for _, part := range strings.Split(s, "+") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		if mod, ok := modSynonyms[part]; ok {
			if !seen[mod] {
				seen[mod] = true
				c.Mods = append(c.Mods, mod)
			}
			continue
		}
		if canon, ok := keySynonyms[part]; ok {
			part = canon
		}
		if !knownKey(part) {
			return Combo{}, fmt.Errorf("unknown key %q in hotkey %q", part, s)
		}
		if c.Key != "" {
			return Combo{}, fmt.Errorf("hotkey %q has more than one key", s)
		}
		c.Key = part
	}

	if c.Key == "" {
		return Combo{}, fmt.Errorf("hotkey %q has no key", s)
	}
	if len(c.Mods) == 0 && (c.Key == "enter" || c.Key == "space") {
		return Combo{}, fmt.Errorf("bare %q hotkey would fire while typing; add a modifier", c.Key)
	}
	return c, nil
}

func knownKey(name string) bool {
	_, ok := nativeKeys[name]
	return ok
}

// Listener is the registered hotkey as a single owned resource. Close
// releases the OS-level registration and must be called before exit.
type Listener struct {
	kind    Kind
	combo   Combo
	toggles chan struct{}
	done    chan struct{}
	stop    func()
	once    sync.Once
}

func newListener(kind Kind, combo Combo) *Listener {
	return &Listener{
		kind:    kind,
		combo:   combo,
		toggles: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// Toggles delivers one element per trigger. The channel has capacity one:
// triggers arriving faster than the consumer drains coalesce instead of
// queuing an unbounded burst of toggles.
func (l *Listener) Toggles() <-chan struct{} {
	return l.toggles
}

func (l *Listener) Kind() Kind {
	return l.kind
}

func (l *Listener) Combo() Combo {
	return l.combo
}

func (l *Listener) trigger() {
	select {
	case l.toggles <- struct{}{}:
	default:
	}
}

// Done is closed when the listener shuts down. Consumers blocked on Toggles
// select on it; the toggles channel itself stays open so a trigger racing
// Close cannot panic.
func (l *Listener) Done() <-chan struct{} {
	return l.done
}

// Close unregisters the hotkey and releases the consumer. Safe to call more
// than once.
func (l *Listener) Close() {
	l.once.Do(func() {
		if l.stop != nil {
			l.stop()
		}
		close(l.done)
	})
}

// registrar attempts one registration mechanism for a combo.
type registrar func(Combo) (*Listener, error)

// Listen parses the combo and registers it, native mechanism first, keyboard
// hook second. The returned error means the hotkey feature is unavailable
// for this session; callers report it and keep running.
func Listen(combo string) (*Listener, error) {
	c, err := ParseCombo(combo)
	if err != nil {
		return nil, err
	}
	return listenWith(c, listenNative, listenHook)
}

func listenWith(c Combo, regs ...registrar) (*Listener, error) {
	var errs []error
	for _, reg := range regs {
		l, err := reg(c)
		if err == nil {
			return l, nil
		}
		errs = append(errs, err)
	}
	return nil, fmt.Errorf("hotkey %q could not be registered: %w", c, errors.Join(errs...))
}
