package poly

import (
	"errors"
	"testing"
)

func TestZeroRefIsEmpty(t *testing.T) {
	var r Ref
	if r.Valid() {
		t.Error("zero Ref should be empty")
	}
	if r.Ptr() != nil {
		t.Error("zero Ref Ptr() should be nil")
	}
}

func TestEmptyRefCallPanics(t *testing.T) {
	var r Ref
	defer func() {
		if recover() == nil {
			t.Error("Call through an empty Ref should panic")
		}
	}()
	r.Call(mDraw)
}

func TestRefObservesMutation(t *testing.T) {
	x := newShapeExt()
	c := circle{radius: 2}

	r, err := RefTo(x, shapeIface(), &c)
	if err != nil {
		t.Fatalf("RefTo failed: %v", err)
	}

	// A Ref borrows: mutating through it mutates the referent.
	if got := Call[int](r, mScale, 3); got != 6 {
		t.Errorf("scale = %d, want 6", got)
	}
	if c.radius != 6 {
		t.Errorf("referent radius = %d, want 6", c.radius)
	}
	if got := Call[int](r, mArea); got != 3*6*6 {
		t.Errorf("area after scale = %d, want %d", got, 108)
	}
}

func TestRefAny(t *testing.T) {
	x := newShapeExt()

	var v any = &square{side: 3}
	r, err := x.RefAny(constShapeIface(), v)
	if err != nil {
		t.Fatalf("RefAny failed: %v", err)
	}
	if got := Call[int](r, mArea); got != 9 {
		t.Errorf("area = %d, want 9", got)
	}
}

func TestRefAnyRejectsNonPointer(t *testing.T) {
	x := newShapeExt()

	if _, err := x.RefAny(constShapeIface(), square{side: 3}); err == nil {
		t.Error("RefAny should reject a non-pointer value")
	}
	if _, err := x.RefAny(constShapeIface(), nil); err == nil {
		t.Error("RefAny should reject nil")
	}
}

func TestRefFromObject(t *testing.T) {
	x := newShapeExt()

	obj, err := NewObject(x, shapeIface(), circle{radius: 2})
	if err != nil {
		t.Fatalf("NewObject failed: %v", err)
	}
	defer obj.Release()

	r, err := RefFrom(drawOnly(), obj)
	if err != nil {
		t.Fatalf("RefFrom failed: %v", err)
	}
	if got := Call[int](r, mDraw); got != 7 {
		t.Errorf("draw through ref-of-object = %d, want 7", got)
	}
	if r.Ptr() != obj.Ptr() {
		t.Error("ref should borrow the object's storage, not copy it")
	}
}

func TestRefFromSharedRequiresAllConst(t *testing.T) {
	x := newShapeExt()

	sh, err := NewShared(x, constShapeIface(), circle{radius: 2})
	if err != nil {
		t.Fatalf("NewShared failed: %v", err)
	}
	defer sh.Release()

	// Const view over shared storage is fine.
	if _, err := RefFrom(MustInterface(ConstSig(mDraw)), sh); err != nil {
		t.Errorf("const view over shared storage failed: %v", err)
	}

	// A mutating view over shared storage is rejected.
	mut := MustInterface(ConstSig(mDraw), Sig(mScale))
	if _, err := RefFrom(mut, sh); !errors.Is(err, ErrConstViolation) {
		t.Errorf("mutable view over shared storage error = %v, want ErrConstViolation", err)
	}
}
