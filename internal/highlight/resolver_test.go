package highlight

import "testing"

func TestResolverIndexOf(t *testing.T) {
	var r Resolver
	r.Bind(testWords(5))

	if got := r.IndexOf("w3"); got != 3 {
		t.Errorf("IndexOf(w3) = %d, want 3", got)
	}
	if got := r.IndexOf("nope"); got != -1 {
		t.Errorf("IndexOf(nope) = %d, want -1", got)
	}
}

func TestResolverRebindInvalidates(t *testing.T) {
	var r Resolver
	r.Bind(testWords(5))
	if got := r.IndexOf("w4"); got != 4 {
		t.Fatalf("IndexOf(w4) = %d, want 4", got)
	}

	// Shorter model: w4 must no longer resolve.
	r.Bind(testWords(3))
	if got := r.IndexOf("w4"); got != -1 {
		t.Errorf("IndexOf(w4) after rebind = %d, want -1", got)
	}
	if got := r.IndexOf("w2"); got != 2 {
		t.Errorf("IndexOf(w2) after rebind = %d, want 2", got)
	}
}

func TestResolverResolveOrdersEndpoints(t *testing.T) {
	var r Resolver
	r.Bind(testWords(5))

	start, end, ok := r.Resolve(Position{StartWordID: "w4", EndWordID: "w1"})
	if !ok || start != 1 || end != 4 {
		t.Errorf("Resolve = (%d, %d, %v), want (1, 4, true)", start, end, ok)
	}

	if _, _, ok := r.Resolve(Position{StartWordID: "w0", EndWordID: "gone"}); ok {
		t.Error("Resolve with stale endpoint should fail")
	}
}
