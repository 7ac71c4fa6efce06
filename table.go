package poly

import (
	"fmt"
	"reflect"
)

// typeTable is the per-concrete-type stub array. It is built once per
// (type, interface) pair, cached in the registry for the life of the
// process, and shared by every handle view over that pair. Slot order
// is the interface's declaration order.
type typeTable struct {
	fns []stub
	rt  reflect.Type
}

// vtable is one handle's view of a typeTable: a reference to the
// shared stub array plus the permutation mapping this view's declared
// positions to slots in the array. Dispatch cost is one permutation
// index, one array index and one indirect call.
type vtable struct {
	fns  []stub
	perm []uint8
	in   *Interface
}

// tableFor returns the cached table for a concrete type viewed through
// an interface, building it on first use. Building fails with
// ErrMissingImplementation if the registry lacks a stub for any
// declared signature; constness must match the registration exactly.
func (x *Extensions) tableFor(rt reflect.Type, in *Interface) (*typeTable, error) {
	key := tableKey{rt, in}

	// Fast path: read-only lookup
	x.mu.RLock()
	if tt, ok := x.tables[key]; ok {
		x.mu.RUnlock()
		return tt, nil
	}
	p := x.profiler
	x.mu.RUnlock()

	tt := &typeTable{fns: make([]stub, len(in.sigs)), rt: rt}
	for i, s := range in.sigs {
		fn, ok := x.lookup(rt, s)
		if !ok {
			return nil, fmt.Errorf("%w: %s has no %s", ErrMissingImplementation, rt, s)
		}
		if p != nil {
			tt.fns[i] = p.wrap(rt, s.Method, fn)
		} else {
			tt.fns[i] = fn
		}
	}

	// Slow path: publish under the write lock, keeping the first
	// table stored if another goroutine raced the build.
	x.mu.Lock()
	defer x.mu.Unlock()
	if existing, ok := x.tables[key]; ok {
		return existing, nil
	}
	x.tables[key] = tt
	return tt, nil
}

// identityView returns the direct view of a table: permutation 0,1,2,…
func identityView(tt *typeTable, in *Interface) vtable {
	perm := make([]uint8, len(tt.fns))
	for i := range perm {
		perm[i] = uint8(i)
	}
	return vtable{fns: tt.fns, perm: perm, in: in}
}

// convert rebuilds the view for a different interface over the same
// underlying table. For each signature the target declares, its
// declared position in the source is looked up and the source's
// permutation entry at that position is copied; the target may reorder
// or take a subset of the source's signatures, but every target
// signature must be present in the source with identical constness.
func (vt vtable) convert(dst *Interface) (vtable, error) {
	if dst == vt.in {
		return vt, nil
	}
	perm := make([]uint8, len(dst.sigs))
	for i, s := range dst.sigs {
		j, ok := vt.in.slotOf(s)
		if !ok {
			return vtable{}, fmt.Errorf("%w: source view does not declare %s", ErrSignatureNotFound, s)
		}
		perm[i] = vt.perm[j]
	}
	return vtable{fns: vt.fns, perm: perm, in: dst}, nil
}

// call dispatches a declared method on an erased receiver. The method
// must be declared by the view's interface; dispatching an undeclared
// method is a precondition violation and panics.
func (vt vtable) call(m Method, recv any, args []any) any {
	i, ok := vt.in.methodIndex(m)
	if !ok {
		panic(fmt.Sprintf("poly: method %q not declared by handle interface", m.Name()))
	}
	return vt.fns[vt.perm[i]](recv, args)
}
