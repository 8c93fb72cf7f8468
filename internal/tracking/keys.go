package tracking

import "strings"

// specialKeys are keys worth showing on screen even without modifiers.
var specialKeys = map[string]string{
	"enter":     "Enter",
	"return":    "Enter",
	"tab":       "Tab",
	"escape":    "Esc",
	"esc":       "Esc",
	"backspace": "Backspace",
	"delete":    "Delete",
	"space":     "Space",
	"up":        "↑",
	"down":      "↓",
	"left":      "←",
	"right":     "→",
}

func init() {
	for i := 1; i <= 12; i++ {
		name := "f" + itoa(i)
		specialKeys[name] = strings.ToUpper(name)
	}
}

func itoa(n int) string {
	if n < 10 {
		return string(rune('0' + n))
	}
	return string(rune('0'+n/10)) + string(rune('0'+n%10))
}

// IsBadgeWorthy reports whether the key press should surface as an
// on-screen badge: any chorded press, or a special key on its own.
func (e Event) IsBadgeWorthy() bool {
	if e.Kind != KindKeyPress {
		return false
	}
	if e.Modifiers != 0 {
		return true
	}
	_, ok := specialKeys[strings.ToLower(e.Key)]
	return ok
}

// BadgeLabel formats the key press for display, e.g. "Ctrl+C" or "F5".
func (e Event) BadgeLabel() string {
	var parts []string
	if e.Modifiers.Has(ModCtrl) {
		parts = append(parts, "Ctrl")
	}
	if e.Modifiers.Has(ModAlt) {
		parts = append(parts, "Alt")
	}
	if e.Modifiers.Has(ModShift) {
		parts = append(parts, "Shift")
	}
	if e.Modifiers.Has(ModMeta) {
		parts = append(parts, "Cmd")
	}
	key := e.Key
	if pretty, ok := specialKeys[strings.ToLower(key)]; ok {
		key = pretty
	} else if len(key) == 1 {
		key = strings.ToUpper(key)
	}
	parts = append(parts, key)
	return strings.Join(parts, "+")
}
