package engine

import "testing"

func TestEventInvokesInOrder(t *testing.T) {
	var e Event
	var got []int
	e.AddListener(func() { got = append(got, 1) })
	e.AddListener(func() { got = append(got, 2) })
	e.AddListener(nil)

	e.Invoke()

	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("Expected [1 2], got %v", got)
	}
	if e.ListenerCount() != 2 {
		t.Errorf("Expected 2 listeners, got %d", e.ListenerCount())
	}
}

func TestEventRemoveListener(t *testing.T) {
	var e EventWithArg[string]
	var got []string
	first := e.AddListener(func(s string) { got = append(got, "a:"+s) })
	e.AddListener(func(s string) { got = append(got, "b:"+s) })

	e.RemoveListener(first)
	e.RemoveListener(first)
	e.Invoke("x")

	if len(got) != 1 || got[0] != "b:x" {
		t.Errorf("Expected [b:x], got %v", got)
	}
}

func TestEventListenerRemovesItself(t *testing.T) {
	var e Event
	calls := 0
	var id ListenerID
	id = e.AddListener(func() {
		calls++
		e.RemoveListener(id)
	})

	e.Invoke()
	e.Invoke()

	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestEventRemoveAll(t *testing.T) {
	var e EventWithArg[int]
	e.AddListener(func(int) {})
	e.RemoveAllListeners()
	if e.ListenerCount() != 0 {
		t.Errorf("Expected 0 listeners, got %d", e.ListenerCount())
	}
}
