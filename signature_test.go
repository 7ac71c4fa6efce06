package poly

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewInterfaceBasics(t *testing.T) {
	in, err := NewInterface(ConstSig(mDraw), Sig(mScale))
	if err != nil {
		t.Fatalf("NewInterface failed: %v", err)
	}
	if in.Len() != 2 {
		t.Errorf("Len() = %d, want 2", in.Len())
	}
	if in.AllConst() {
		t.Error("interface with a mutating signature reported AllConst")
	}

	sigs := in.Signatures()
	if sigs[0] != ConstSig(mDraw) || sigs[1] != Sig(mScale) {
		t.Errorf("Signatures() = %v, order not preserved", sigs)
	}
}

func TestNewInterfaceAllConst(t *testing.T) {
	in := MustInterface(ConstSig(mDraw), ConstSig(mArea))
	if !in.AllConst() {
		t.Error("all-const interface reported AllConst() = false")
	}
}

func TestNewInterfaceDuplicate(t *testing.T) {
	_, err := NewInterface(ConstSig(mDraw), Sig(mDraw))
	if !errors.Is(err, ErrDuplicateSignature) {
		t.Errorf("duplicate method error = %v, want ErrDuplicateSignature", err)
	}
}

func TestNewInterfaceCapacity(t *testing.T) {
	sigs := make([]Signature, MaxSlots+1)
	for i := range sigs {
		sigs[i] = ConstSig(NewMethod(fmt.Sprintf("signature_test:cap%d", i)))
	}

	if _, err := NewInterface(sigs...); !errors.Is(err, ErrCapacityExceeded) {
		t.Errorf("oversized interface error = %v, want ErrCapacityExceeded", err)
	}

	// Exactly MaxSlots is fine for a non-owning view.
	if _, err := NewInterface(sigs[:MaxSlots]...); err != nil {
		t.Errorf("interface at capacity failed: %v", err)
	}
}

func TestOwningCapacity(t *testing.T) {
	// A full interface has no room left for the implicit clone slot.
	sigs := make([]Signature, MaxSlots)
	for i := range sigs {
		sigs[i] = ConstSig(NewMethod(fmt.Sprintf("signature_test:own%d", i)))
	}
	in := MustInterface(sigs...)

	if _, err := in.owning(); !errors.Is(err, ErrCapacityExceeded) {
		t.Errorf("owning view of full interface error = %v, want ErrCapacityExceeded", err)
	}
}

func TestMustInterfacePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustInterface should panic on a duplicate method")
		}
	}()
	MustInterface(Sig(mDraw), ConstSig(mDraw))
}

func TestOwningViewStripsToUserView(t *testing.T) {
	in := drawOnly()
	ow, err := in.owning()
	if err != nil {
		t.Fatalf("owning() failed: %v", err)
	}
	if ow.Len() != in.Len()+1 {
		t.Errorf("owning view Len() = %d, want %d", ow.Len(), in.Len()+1)
	}
	if ow.userView() != in {
		t.Error("userView() of an owning view should be the declared interface")
	}

	// Built once per interface.
	ow2, _ := in.owning()
	if ow2 != ow {
		t.Error("owning() should return the same view on repeat calls")
	}
}

func TestOwningViewIdempotentWithExplicitCopyable(t *testing.T) {
	in := MustInterface(ConstSig(mDraw), Copyable())
	ow, err := in.owning()
	if err != nil {
		t.Fatalf("owning() failed: %v", err)
	}
	if ow != in {
		t.Error("interface already declaring Copyable should be its own owning view")
	}
}

func TestSignatureString(t *testing.T) {
	if got := ConstSig(mDraw).String(); got != "draw const" {
		t.Errorf("ConstSig String() = %q, want %q", got, "draw const")
	}
	if got := Sig(mScale).String(); got != "scale" {
		t.Errorf("Sig String() = %q, want %q", got, "scale")
	}
}
