package poly

import (
	"fmt"
	"reflect"
)

// Handle is the common surface of Ref, Object and Shared. It is sealed:
// only this package's handle types satisfy it.
type Handle interface {
	// Valid reports whether the handle holds a value.
	Valid() bool
	// Ptr returns the erased address of the held value, or nil.
	Ptr() any
	// Call dispatches a declared method. Calling through an empty
	// handle is a precondition violation and panics.
	Call(m Method, args ...any) any

	vtab() vtable
	readOnly() bool
	holderRef() *holder
}

// Call dispatches a declared method and asserts the result to R.
func Call[R any](h Handle, m Method, args ...any) R {
	return h.Call(m, args...).(R)
}

// Ref is a non-owning handle: a table view plus the borrowed address of
// a value that must outlive it. The zero Ref is empty; dispatching
// through it panics.
type Ref struct {
	vt vtable
	p  any
	ro bool
}

// RefTo borrows a concrete value through an interface. The table for
// (T, in) is built on first use; every declared signature must have a
// registered implementation for T.
func RefTo[T any](x *Extensions, in *Interface, v *T) (Ref, error) {
	registerClone[T](x)
	tt, err := x.tableFor(reflect.TypeFor[T](), in)
	if err != nil {
		return Ref{}, err
	}
	return Ref{vt: identityView(tt, in), p: v}, nil
}

// RefAny borrows a value held in an any. The value must be a non-nil
// pointer to the concrete type its implementations were registered
// for. Unlike RefTo this cannot synthesize a clone stub, so interfaces
// declaring Copyable need a prior owning handle or ExtendClone for the
// type.
func (x *Extensions) RefAny(in *Interface, v any) (Ref, error) {
	rt := reflect.TypeOf(v)
	if rt == nil || rt.Kind() != reflect.Pointer {
		return Ref{}, fmt.Errorf("poly: RefAny needs a pointer to a concrete value, got %v", rt)
	}
	tt, err := x.tableFor(rt.Elem(), in)
	if err != nil {
		return Ref{}, err
	}
	return Ref{vt: identityView(tt, in), p: v}, nil
}

// RefFrom borrows through another handle, converting its table view to
// the given interface. Every signature in must be declared by the
// source with identical constness, else ErrSignatureNotFound. A view
// with mutating signatures cannot be taken over read-only storage
// (ErrConstViolation).
func RefFrom(in *Interface, src Handle) (Ref, error) {
	if src.readOnly() && !in.AllConst() {
		return Ref{}, fmt.Errorf("%w: mutable view over shared storage", ErrConstViolation)
	}
	vt, err := src.vtab().convert(in)
	if err != nil {
		return Ref{}, err
	}
	return Ref{vt: vt, p: src.Ptr(), ro: src.readOnly()}, nil
}

// Valid reports whether the Ref borrows a value.
func (r Ref) Valid() bool {
	return r.p != nil
}

// Ptr returns the borrowed erased address, or nil.
func (r Ref) Ptr() any {
	return r.p
}

// Call dispatches a declared method on the borrowed value.
//
// Preconditions: the Ref is non-empty and the borrowed value is still
// alive. Violating the first panics; the second cannot be checked.
func (r Ref) Call(m Method, args ...any) any {
	if r.p == nil {
		panic("poly: call through empty Ref")
	}
	return r.vt.call(m, r.p, args)
}

func (r Ref) vtab() vtable       { return r.vt }
func (r Ref) readOnly() bool     { return r.ro }
func (r Ref) holderRef() *holder { return nil }
