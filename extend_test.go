package poly

import (
	"errors"
	"strings"
	"testing"
)

func TestMissingImplementation(t *testing.T) {
	x := newShapeExt()
	l := label{text: "hi"}

	// label only implements name.
	_, err := RefTo(x, shapeIface(), &l)
	if !errors.Is(err, ErrMissingImplementation) {
		t.Fatalf("error = %v, want ErrMissingImplementation", err)
	}
	if !strings.Contains(err.Error(), "label") {
		t.Errorf("error %q should name the concrete type", err)
	}
}

func TestImplements(t *testing.T) {
	x := newShapeExt()

	if !Implements[circle](x, shapeIface()) {
		t.Error("circle should implement the full shape interface")
	}
	if Implements[label](x, shapeIface()) {
		t.Error("label should not implement the full shape interface")
	}
	if !Implements[label](x, MustInterface(ConstSig(mName))) {
		t.Error("label should implement the name-only interface")
	}
}

func TestArityHelpers(t *testing.T) {
	x := NewExtensions()
	type acc struct{ sum int }

	m0 := NewMethod("extend_test:zero")
	m2 := NewMethod("extend_test:two")
	m4 := NewMethod("extend_test:four")
	mv := NewMethod("extend_test:var")

	Extend0(x, m0, func(a *acc) int { a.sum++; return a.sum })
	Extend2(x, m2, func(a *acc, p, q int) int { a.sum += p + q; return a.sum })
	Extend4(x, m4, func(a *acc, p, q, r, s int) int { a.sum += p + q + r + s; return a.sum })
	ExtendVar(x, mv, func(a *acc, args []any) any {
		for _, v := range args {
			a.sum += v.(int)
		}
		return a.sum
	})

	in := MustInterface(Sig(m0), Sig(m2), Sig(m4), Sig(mv))
	a := acc{}
	r, err := RefTo(x, in, &a)
	if err != nil {
		t.Fatalf("RefTo failed: %v", err)
	}

	if got := Call[int](r, m0); got != 1 {
		t.Errorf("arity-0 call = %d, want 1", got)
	}
	if got := Call[int](r, m2, 2, 3); got != 6 {
		t.Errorf("arity-2 call = %d, want 6", got)
	}
	if got := Call[int](r, m4, 1, 1, 1, 1); got != 10 {
		t.Errorf("arity-4 call = %d, want 10", got)
	}
	if got := Call[int](r, mv, 5, 5); got != 20 {
		t.Errorf("variadic call = %d, want 20", got)
	}
	if a.sum != 20 {
		t.Errorf("receiver mutated to %d, want 20", a.sum)
	}
}

func TestDispatchMatchesDirectCall(t *testing.T) {
	x := newShapeExt()
	c := circle{radius: 6}
	direct := 3 * c.radius * c.radius

	r, err := RefTo(x, shapeIface(), &c)
	if err != nil {
		t.Fatalf("RefTo failed: %v", err)
	}
	if got := Call[int](r, mArea); got != direct {
		t.Errorf("dispatched area = %d, direct call = %d", got, direct)
	}
}

func TestPanicPropagatesThroughStub(t *testing.T) {
	x := NewExtensions()
	m := NewMethod("extend_test:explode")

	type bomb struct{}
	Extend0(x, m, func(*bomb) int { panic("kaboom") })

	b := bomb{}
	r, err := RefTo(x, MustInterface(Sig(m)), &b)
	if err != nil {
		t.Fatalf("RefTo failed: %v", err)
	}

	defer func() {
		v := recover()
		if v == nil {
			t.Fatal("implementation panic did not propagate")
		}
		if s, ok := v.(string); !ok || s != "kaboom" {
			t.Errorf("panic value = %v, want the original value unmodified", v)
		}
	}()
	r.Call(m)
}

func TestLaterRegistrationReplacesEarlier(t *testing.T) {
	x := NewExtensions()
	m := NewMethod("extend_test:replace")

	type thing struct{}
	Extend0(x, m, func(*thing) int { return 1 })
	Extend0(x, m, func(*thing) int { return 2 })

	th := thing{}
	r, err := RefTo(x, MustInterface(Sig(m)), &th)
	if err != nil {
		t.Fatalf("RefTo failed: %v", err)
	}
	if got := Call[int](r, m); got != 2 {
		t.Errorf("dispatch = %d, want the later registration (2)", got)
	}
}
