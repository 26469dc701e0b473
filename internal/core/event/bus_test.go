package event

import "testing"

type ping struct{ N int }
type pong struct{ N int }

func TestBusDeliversAfterSwap(t *testing.T) {
	b := NewBus()
	var got []int
	Subscribe(b, func(ev ping) { got = append(got, ev.N) })

	Emit(b, ping{1})
	Emit(b, ping{2})

	// Nothing delivered before the swap: events land in the back buffer.
	b.DispatchAll()
	if len(got) != 0 {
		t.Fatalf("delivered before swap: %v", got)
	}

	b.SwapBuffers()
	b.DispatchAll()
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("delivered %v, want [1 2] in emit order", got)
	}
}

func TestBusDoesNotRedeliver(t *testing.T) {
	b := NewBus()
	var count int
	Subscribe(b, func(ping) { count++ })

	Emit(b, ping{1})
	b.SwapBuffers()
	b.DispatchAll()
	b.SwapBuffers()
	b.DispatchAll()

	if count != 1 {
		t.Fatalf("event delivered %d times, want once", count)
	}
}

func TestBusRoutesByType(t *testing.T) {
	b := NewBus()
	var pings, pongs int
	Subscribe(b, func(ping) { pings++ })
	Subscribe(b, func(pong) { pongs++ })

	Emit(b, ping{})
	Emit(b, pong{})
	Emit(b, pong{})
	b.SwapBuffers()
	b.DispatchAll()

	if pings != 1 || pongs != 2 {
		t.Fatalf("pings=%d pongs=%d, want 1 and 2", pings, pongs)
	}
}

func TestBusMultipleSubscribers(t *testing.T) {
	b := NewBus()
	var a, c int
	Subscribe(b, func(ping) { a++ })
	Subscribe(b, func(ping) { c++ })

	Emit(b, ping{})
	b.SwapBuffers()
	b.DispatchAll()

	if a != 1 || c != 1 {
		t.Fatalf("subscriber counts a=%d c=%d, want both 1", a, c)
	}
}

func TestBusEmitDuringDispatchLandsNextStep(t *testing.T) {
	b := NewBus()
	var pongsSeen int
	Subscribe(b, func(ping) { Emit(b, pong{}) })
	Subscribe(b, func(pong) { pongsSeen++ })

	Emit(b, ping{})
	b.SwapBuffers()
	b.DispatchAll()
	if pongsSeen != 0 {
		t.Fatalf("cascaded event delivered in the same step")
	}

	b.SwapBuffers()
	b.DispatchAll()
	if pongsSeen != 1 {
		t.Fatalf("cascaded event lost: seen %d", pongsSeen)
	}
}
