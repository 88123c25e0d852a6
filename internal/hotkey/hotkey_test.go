package hotkey

import (
	"errors"
	"testing"
	"time"
)

func TestParseCombo(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string // normalized String() form, "" means error expected
		wantErr bool
	}{
		{name: "default combo", input: "ctrl+alt+space", want: "ctrl+alt+space"},
		{name: "synonyms normalized", input: "control+super+G", want: "ctrl+meta+g"},
		{name: "option is alt", input: "option+escape", want: "alt+escape"},
		{name: "esc canonicalized", input: "ctrl+esc", want: "ctrl+escape"},
		{name: "return canonicalized", input: "shift+return", want: "shift+enter"},
		{name: "function key without modifier", input: "f9", want: "f9"},
		{name: "whitespace tolerated", input: " ctrl + shift + p ", want: "ctrl+shift+p"},
		{name: "duplicate modifier collapsed", input: "ctrl+ctrl+x", want: "ctrl+x"},
		{name: "empty", input: "", wantErr: true},
		{name: "modifiers only", input: "ctrl+alt", wantErr: true},
		{name: "unknown key", input: "ctrl+blorp", wantErr: true},
		{name: "two keys", input: "ctrl+a+b", wantErr: true},
		{name: "bare enter rejected", input: "enter", wantErr: true},
		{name: "bare space rejected", input: "space", wantErr: true},
		{name: "modified space fine", input: "shift+space", want: "shift+space"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, err := ParseCombo(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseCombo(%q) = %v, want error", tc.input, c)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCombo(%q) error: %v", tc.input, err)
			}
			if got := c.String(); got != tc.want {
				t.Errorf("ParseCombo(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func fakeRegistrar(kind Kind, fail error) registrar {
	return func(c Combo) (*Listener, error) {
		if fail != nil {
			return nil, fail
		}
		return newListener(kind, c), nil
	}
}

func TestListenWith_PrefersFirstMechanism(t *testing.T) {
	c := Combo{Mods: []string{"ctrl", "alt"}, Key: "space"}

	l, err := listenWith(c, fakeRegistrar(KindNative, nil), fakeRegistrar(KindHook, nil))
	if err != nil {
		t.Fatalf("listenWith error: %v", err)
	}
	defer l.Close()

	if l.Kind() != KindNative {
		t.Errorf("Kind() = %v, want KindNative", l.Kind())
	}
}

func TestListenWith_FallsBackWhenNativeFails(t *testing.T) {
	c := Combo{Mods: []string{"ctrl"}, Key: "g"}
	nativeErr := errors.New("RegisterHotKey denied")

	l, err := listenWith(c, fakeRegistrar(KindNative, nativeErr), fakeRegistrar(KindHook, nil))
	if err != nil {
		t.Fatalf("listenWith error: %v", err)
	}
	defer l.Close()

	if l.Kind() != KindHook {
		t.Errorf("Kind() = %v, want KindHook", l.Kind())
	}
}

func TestListenWith_BothMechanismsFail(t *testing.T) {
	c := Combo{Mods: []string{"ctrl"}, Key: "g"}
	nativeErr := errors.New("native denied")
	hookErr := errors.New("hook denied")

	_, err := listenWith(c, fakeRegistrar(KindNative, nativeErr), fakeRegistrar(KindHook, hookErr))
	if err == nil {
		t.Fatal("listenWith succeeded, want error when every mechanism fails")
	}
	if !errors.Is(err, nativeErr) || !errors.Is(err, hookErr) {
		t.Errorf("error %v should wrap both mechanism failures", err)
	}
}

func TestListener_TriggerCoalesces(t *testing.T) {
	l := newListener(KindNative, Combo{Key: "t"})

	// A burst of triggers with no consumer must neither block nor queue
	// more than one pending toggle.
	for i := 0; i < 5; i++ {
		l.trigger()
	}

	select {
	case <-l.Toggles():
	default:
		t.Fatal("expected one pending toggle")
	}
	select {
	case <-l.Toggles():
		t.Fatal("burst queued more than one toggle")
	default:
	}
}

func TestListener_CloseIdempotent(t *testing.T) {
	calls := 0
	l := newListener(KindNative, Combo{Key: "t"})
	l.stop = func() { calls++ }

	l.Close()
	l.Close()

	if calls != 1 {
		t.Errorf("stop ran %d times, want 1", calls)
	}
}

func TestListener_CloseReleasesConsumer(t *testing.T) {
	l := newListener(KindHook, Combo{Mods: []string{"ctrl"}, Key: "t"})

	released := make(chan struct{})
	go func() {
		select {
		case <-l.Toggles():
		case <-l.Done():
		}
		close(released)
	}()

	l.Close()

	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("consumer still blocked after Close")
	}

	// A trigger arriving after Close must not panic or block.
	l.trigger()
}
