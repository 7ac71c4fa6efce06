package poly

import (
	"fmt"
	"reflect"
)

// Shared is the owning handle for all-const interfaces: copies share
// one reference-counted Holder instead of cloning. Because every
// declared signature is const, aliased access through copies is
// read-only and sharing is sound.
//
// The reference count is atomic: Copy and Release are safe to call
// from concurrent goroutines holding their own copies. Shared values
// must be duplicated with Copy, never by Go assignment, or the count
// goes wrong.
type Shared struct {
	vt vtable
	h  *holder
}

// NewShared erases a concrete value into fresh shared storage. The
// interface must be all-const, else ErrConstViolation.
func NewShared[T any](x *Extensions, in *Interface, v T) (Shared, error) {
	if !in.AllConst() {
		return Shared{}, fmt.Errorf("%w: shared ownership needs an all-const interface", ErrConstViolation)
	}
	ow, err := in.owning()
	if err != nil {
		return Shared{}, err
	}
	registerClone[T](x)
	tt, err := x.tableFor(reflect.TypeFor[T](), ow)
	if err != nil {
		return Shared{}, err
	}
	cp := v
	return Shared{vt: identityView(tt, ow), h: newHolder(&cp)}, nil
}

// SharedFrom builds a shared handle from a compatible handle. If the
// source is itself shared the new handle aliases its storage across
// the converted view, adding a claim instead of cloning; any other
// source is cloned through the clone slot.
func SharedFrom(in *Interface, src Handle) (Shared, error) {
	if !in.AllConst() {
		return Shared{}, fmt.Errorf("%w: shared ownership needs an all-const interface", ErrConstViolation)
	}
	ow, err := in.owning()
	if err != nil {
		return Shared{}, err
	}
	vt, err := src.vtab().convert(ow)
	if err != nil {
		return Shared{}, err
	}
	s := Shared{vt: vt}
	if h := src.holderRef(); h != nil {
		h.retain()
		s.h = h
	} else if src.Valid() {
		s.h = vt.call(cloneMethod, src.Ptr(), nil).(*holder)
	}
	return s, nil
}

// Copy adds a claim on the shared storage. No cloning happens; the
// copy reports the same erased address.
func (s Shared) Copy() Shared {
	if s.h != nil {
		s.h.retain()
	}
	return s
}

// Release drops this handle's claim; the last claim frees the storage.
// Further calls on the same handle are no-ops.
func (s *Shared) Release() {
	if s.h != nil {
		s.h.release()
		s.h = nil
	}
}

// Valid reports whether the handle holds a claim on a value.
func (s Shared) Valid() bool {
	return s.h != nil
}

// Ptr returns the erased address of the shared value, or nil.
func (s Shared) Ptr() any {
	if s.h == nil {
		return nil
	}
	return s.h.val
}

// Call dispatches a declared method on the shared value. Calling
// through an empty handle is a precondition violation and panics.
func (s Shared) Call(m Method, args ...any) any {
	if s.h == nil {
		panic("poly: call through empty Shared")
	}
	return s.vt.call(m, s.h.val, args)
}

func (s Shared) vtab() vtable       { return s.vt }
func (s Shared) readOnly() bool     { return true }
func (s Shared) holderRef() *holder { return s.h }
