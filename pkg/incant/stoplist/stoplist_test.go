package stoplist

import "testing"

func TestIsStopCaseInsensitive(t *testing.T) {
	m := NewManager([]string{"THE", "and"})

	for _, w := range []string{"the", "The", "AND"} {
		if !m.IsStop(w) {
			t.Errorf("IsStop(%q) = false, want true", w)
		}
	}
	if m.IsStop("fox") {
		t.Error("IsStop(fox) = true, want false")
	}
}

func TestAddRemove(t *testing.T) {
	m := NewManager(nil)

	m.Add("Spell")
	if !m.IsStop("spell") {
		t.Error("Added word should be stopped")
	}

	m.Remove("SPELL")
	if m.IsStop("spell") {
		t.Error("Removed word should not be stopped")
	}
}

func TestNilManager(t *testing.T) {
	var m *Manager
	if m.IsStop("the") {
		t.Error("Nil manager stops nothing")
	}
	if m.All() != nil {
		t.Error("Nil manager has no contents")
	}
}

func TestAll(t *testing.T) {
	m := NewManager([]string{"a", "b"})
	if got := len(m.All()); got != 2 {
		t.Errorf("All() length = %d, want 2", got)
	}
}
