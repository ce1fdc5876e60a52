package player

import "testing"

// Every declared command must have a handler, and vice versa.
func TestCommandsAndHandlersMatch(t *testing.T) {
	m := &PlayerModule{}

	handlers := m.CommandHandlers()
	declared := make(map[string]bool)

	for _, cmd := range m.Commands() {
		declared[cmd.Name] = true
		if _, ok := handlers[cmd.Name]; !ok {
			t.Errorf("command %q has no handler", cmd.Name)
		}
	}

	for name := range handlers {
		if !declared[name] {
			t.Errorf("handler %q has no declared command", name)
		}
	}
}

func TestComponentHandlersCoverPanelButtons(t *testing.T) {
	m := &PlayerModule{}

	handlers := m.ComponentHandlers()
	if len(handlers) != 2 {
		t.Errorf("component handlers = %d, want 2", len(handlers))
	}
	for _, id := range []string{"boombox:skip", "boombox:pause"} {
		if _, ok := handlers[id]; !ok {
			t.Errorf("missing component handler for %q", id)
		}
	}
}
