// Package shortcut maps key chords to actions for the interactive task list.
package shortcut

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
)

// Chord is a key plus the exact set of modifiers held with it.
type Chord struct {
	Key   string
	Ctrl  bool
	Meta  bool
	Shift bool
	Alt   bool
}

var keyAliases = map[string]string{
	" ":     "space",
	"esc":   "escape",
	"del":   "delete",
	"bksp":  "backspace",
	"enter": "enter",
	"ret":   "enter",
}

func normalizeKey(k string) string {
	if k != " " {
		k = strings.ToLower(strings.TrimSpace(k))
	}
	if alias, ok := keyAliases[k]; ok {
		return alias
	}
	return k
}

// Parse reads chords written as "ctrl+n", "meta+n", "shift+up" or a bare key
// such as "delete" or "space". A trailing "+" names the plus key itself.
func Parse(s string) (Chord, error) {
	if s == "" {
		return Chord{}, fmt.Errorf("shortcut: empty chord")
	}
	if s == " " {
		return Chord{Key: "space"}, nil
	}

	var c Chord
	rest := s
	for {
		i := strings.Index(rest, "+")
		if i <= 0 || i == len(rest)-1 {
			break
		}
		switch strings.ToLower(rest[:i]) {
		case "ctrl", "control":
			c.Ctrl = true
		case "meta", "cmd", "super":
			c.Meta = true
		case "shift":
			c.Shift = true
		case "alt", "option":
			c.Alt = true
		default:
			return Chord{}, fmt.Errorf("shortcut: unknown modifier %q in %q", rest[:i], s)
		}
		rest = rest[i+1:]
	}

	c.Key = normalizeKey(rest)
	if c.Key == "" {
		return Chord{}, fmt.Errorf("shortcut: missing key in %q", s)
	}
	return c, nil
}

// MustParse is Parse for chords known at compile time.
func MustParse(s string) Chord {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// FromKeyMsg converts a terminal key event into a Chord. An upper-case
// rune arrives without a modifier flag, so it is reported as shift plus the
// lower-case key.
func FromKeyMsg(msg tea.KeyMsg) Chord {
	s := msg.String()
	if s == " " {
		return Chord{Key: "space", Alt: msg.Alt}
	}
	if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 {
		if r := msg.Runes[0]; unicode.IsUpper(r) {
			return Chord{Key: string(unicode.ToLower(r)), Shift: true, Alt: msg.Alt}
		}
	}
	c, err := Parse(s)
	if err != nil {
		return Chord{Key: normalizeKey(s)}
	}
	return c
}

func (c Chord) String() string {
	var b strings.Builder
	if c.Ctrl {
		b.WriteString("ctrl+")
	}
	if c.Meta {
		b.WriteString("meta+")
	}
	if c.Alt {
		b.WriteString("alt+")
	}
	if c.Shift {
		b.WriteString("shift+")
	}
	b.WriteString(c.Key)
	return b.String()
}

// Matches compares keys case-insensitively and modifiers exactly.
func (c Chord) Matches(other Chord) bool {
	return strings.EqualFold(c.Key, other.Key) &&
		c.Ctrl == other.Ctrl &&
		c.Meta == other.Meta &&
		c.Shift == other.Shift &&
		c.Alt == other.Alt
}

type Binding struct {
	Chord       Chord
	Action      func()
	Description string
}

type bindingSet struct {
	id       uint64
	bindings []Binding
}

// Dispatcher fires the first installed binding matching a chord.
type Dispatcher struct {
	mu     sync.Mutex
	nextID uint64
	sets   []bindingSet
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Install registers bindings after any already installed. The returned
// function removes them and may be called more than once.
func (d *Dispatcher) Install(bindings ...Binding) (uninstall func()) {
	d.mu.Lock()
	d.nextID++
	id := d.nextID
	d.sets = append(d.sets, bindingSet{id: id, bindings: append([]Binding(nil), bindings...)})
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		for i, s := range d.sets {
			if s.id == id {
				d.sets = append(d.sets[:i], d.sets[i+1:]...)
				return
			}
		}
	}
}

// Dispatch runs at most one action. It returns true when a binding fired,
// meaning the key must not be handled further.
func (d *Dispatcher) Dispatch(c Chord) bool {
	var action func()

	d.mu.Lock()
	for _, s := range d.sets {
		for _, b := range s.bindings {
			if b.Chord.Matches(c) {
				action = b.Action
				break
			}
		}
		if action != nil {
			break
		}
	}
	d.mu.Unlock()

	if action == nil {
		return false
	}
	action()
	return true
}

// Help lists "chord  description" lines for every installed binding.
func (d *Dispatcher) Help() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	var lines []string
	for _, s := range d.sets {
		for _, b := range s.bindings {
			lines = append(lines, fmt.Sprintf("%-12s %s", b.Chord, b.Description))
		}
	}
	return lines
}

// TaskBindings are the task list shortcuts: new task on ctrl+n or meta+n,
// delete on delete or backspace, toggle on space, cancel on escape.
// A nil handler leaves its chords unbound.
func TaskBindings(onNew, onDelete, onToggle, onEscape func()) []Binding {
	var out []Binding
	add := func(chord string, fn func(), desc string) {
		if fn != nil {
			out = append(out, Binding{Chord: MustParse(chord), Action: fn, Description: desc})
		}
	}
	add("ctrl+n", onNew, "New task")
	add("meta+n", onNew, "New task")
	add("delete", onDelete, "Delete selected task")
	add("backspace", onDelete, "Delete selected task")
	add("space", onToggle, "Toggle selected task")
	add("escape", onEscape, "Cancel")
	return out
}
