package poly

import (
	"fmt"
	"reflect"
)

// Object is the exclusive owning handle: it owns one Holder and
// duplicates its contents through the implicit clone signature, never
// by inspecting the concrete type. Use it when any declared signature
// mutates; for all-const interfaces Shared is cheaper to copy.
//
// An Object's table always carries the clone slot, so its declared
// view is the user interface plus Copyable.
type Object struct {
	vt vtable
	h  *holder
}

// NewObject erases a concrete value into fresh exclusively-owned
// storage. The default clone for T (a value copy) is synthesized here;
// register ExtendClone first for types needing deep copies.
func NewObject[T any](x *Extensions, in *Interface, v T) (Object, error) {
	ow, err := in.owning()
	if err != nil {
		return Object{}, err
	}
	registerClone[T](x)
	tt, err := x.tableFor(reflect.TypeFor[T](), ow)
	if err != nil {
		return Object{}, err
	}
	cp := v
	return Object{vt: identityView(tt, ow), h: newHolder(&cp)}, nil
}

// ObjectFrom builds an owning handle from any compatible handle by
// cloning its contents through the clone slot. The source's view must
// declare every signature of in plus the clone signature; a Ref only
// qualifies if its interface included Copyable. An empty source yields
// an empty object.
func ObjectFrom(in *Interface, src Handle) (Object, error) {
	ow, err := in.owning()
	if err != nil {
		return Object{}, err
	}
	vt, err := src.vtab().convert(ow)
	if err != nil {
		return Object{}, err
	}
	o := Object{vt: vt}
	if src.Valid() {
		o.h = vt.call(cloneMethod, src.Ptr(), nil).(*holder)
	}
	return o, nil
}

// Copy duplicates the object: a fresh Holder containing a clone of the
// held value, dispatched through the same table as user methods.
// Copying an empty object yields an empty object with the same view.
func (o Object) Copy() Object {
	if o.h == nil {
		return Object{vt: o.vt}
	}
	return Object{vt: o.vt, h: o.vt.call(cloneMethod, o.h.val, nil).(*holder)}
}

// Move transfers ownership out, leaving the receiver empty but still
// viewing the same interface.
func (o *Object) Move() Object {
	moved := *o
	o.h = nil
	return moved
}

// Assign replaces the held value with a clone of src's value, keeping
// the receiver's declared view. The clone is taken before the old
// value is released, so assigning an object to itself leaves it
// functionally unchanged. Assigning to the zero Object is rejected
// because it has no view to convert src into.
func (o *Object) Assign(src Handle) error {
	if o.vt.in == nil {
		return fmt.Errorf("poly: assign to zero Object")
	}
	tmp, err := ObjectFrom(o.vt.in.userView(), src)
	if err != nil {
		return err
	}
	old := o.h
	o.h = tmp.h
	if old != nil {
		old.release()
	}
	return nil
}

// Release frees the held storage. Further calls are no-ops; the object
// is empty afterwards.
func (o *Object) Release() {
	if o.h != nil {
		o.h.release()
		o.h = nil
	}
}

// Valid reports whether the object holds a value.
func (o Object) Valid() bool {
	return o.h != nil
}

// Ptr returns the erased address of the held value, or nil when empty.
func (o Object) Ptr() any {
	if o.h == nil {
		return nil
	}
	return o.h.val
}

// Call dispatches a declared method on the held value. Calling through
// an empty object is a precondition violation and panics.
func (o Object) Call(m Method, args ...any) any {
	if o.h == nil {
		panic("poly: call through empty Object")
	}
	return o.vt.call(m, o.h.val, args)
}

func (o Object) vtab() vtable       { return o.vt }
func (o Object) readOnly() bool     { return false }
func (o Object) holderRef() *holder { return nil }
