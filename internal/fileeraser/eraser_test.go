package fileeraser

import "testing"

func TestStateOrdering(t *testing.T) {
	states := []State{StateNew, StateOpened, StatePrepared, StateErased, StateClosed}
	for i := 1; i < len(states); i++ {
		if states[i] <= states[i-1] {
			t.Fatalf("State constants are not strictly increasing: %v", states)
		}
	}
}

func TestMethodsAreDistinct(t *testing.T) {
	methods := map[Method]bool{
		MethodSmart:    true,
		MethodFull:     true,
		MethodRandom:   true,
		MethodBeginEnd: true,
	}
	if len(methods) != 4 {
		t.Fatalf("Method constants collide, got %d distinct values, want 4", len(methods))
	}
}

func TestSentinelErrorsAreDistinct(t *testing.T) {
	if ErrInvalidState == ErrUnsupportedPlatform || ErrInvalidState == ErrBigFileFull || ErrUnsupportedPlatform == ErrBigFileFull {
		t.Fatalf("sentinel errors are not distinct")
	}
}
