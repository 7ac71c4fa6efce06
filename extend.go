package poly

import (
	"reflect"
	"sync"
)

// stub is the type-erased form of one registered implementation. The
// receiver is the concrete *T boxed in an any; args carry the call
// arguments in declaration order. A panic raised by the underlying
// implementation propagates unmodified.
type stub func(recv any, args []any) any

// implKey identifies one registered implementation: the concrete type
// plus the exact signature it was registered under. Constness is part
// of the key, so a const signature never matches a mutating
// registration and vice versa.
type implKey struct {
	rt  reflect.Type
	sig Signature
}

// tableKey identifies one built table: a concrete type viewed through
// one interface.
type tableKey struct {
	rt    reflect.Type
	iface *Interface
}

// Extensions is the registry binding concrete types to method
// implementations, and the cache of dispatch tables built from them.
//
// Registration is the Go analog of defining a free function next to a
// concrete type: implementations are registered per (type, signature)
// pair through the Extend helpers and located here when a table is
// built. Tables are built once per (type, interface) pair and cached
// for the life of the registry; the double-checked locking below
// guarantees exactly one construction even when racing goroutines
// erase the same previously-unseen type.
type Extensions struct {
	mu       sync.RWMutex
	impls    map[implKey]stub
	tables   map[tableKey]*typeTable
	profiler *Profiler
}

// Default is the package-level registry. Libraries that extend types
// they own register here; tests that need isolation construct their
// own registry with NewExtensions.
var Default = NewExtensions()

// NewExtensions creates an empty registry.
func NewExtensions() *Extensions {
	return &Extensions{
		impls:  make(map[implKey]stub),
		tables: make(map[tableKey]*typeTable),
	}
}

// SetProfiler attaches a dispatch profiler. Tables built while a
// profiler is attached count every invocation; already-cached tables
// are discarded so they are rebuilt with counting stubs on next use.
// Passing nil detaches and restores plain tables.
func (x *Extensions) SetProfiler(p *Profiler) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.profiler = p
	x.tables = make(map[tableKey]*typeTable)
}

// register stores a stub, replacing any previous registration for the
// same type and signature.
func (x *Extensions) register(rt reflect.Type, sig Signature, fn stub) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.impls[implKey{rt, sig}] = fn
}

// registerIfAbsent stores a stub unless the pair is already bound.
// Used for the synthesized clone stubs so a user override wins.
func (x *Extensions) registerIfAbsent(rt reflect.Type, sig Signature, fn stub) {
	x.mu.Lock()
	defer x.mu.Unlock()
	k := implKey{rt, sig}
	if _, ok := x.impls[k]; !ok {
		x.impls[k] = fn
	}
}

// lookup returns the stub for a (type, signature) pair.
func (x *Extensions) lookup(rt reflect.Type, sig Signature) (stub, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	fn, ok := x.impls[implKey{rt, sig}]
	return fn, ok
}

// Implements reports whether the concrete type T satisfies every
// signature of the interface in this registry.
func Implements[T any](x *Extensions, in *Interface) bool {
	rt := reflect.TypeFor[T]()
	for _, s := range in.sigs {
		if _, ok := x.lookup(rt, s); !ok {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------------
// Arity-specialized registration
// ---------------------------------------------------------------------------
//
// One generic helper per arity avoids slice plumbing in user code for
// the common cases. ExtendVar covers anything beyond four parameters.

// Extend0 registers a mutating zero-argument implementation of m for T.
func Extend0[T, R any](x *Extensions, m Method, fn func(*T) R) {
	x.register(reflect.TypeFor[T](), Sig(m), func(recv any, _ []any) any {
		return fn(recv.(*T))
	})
}

// Extend1 registers a mutating one-argument implementation of m for T.
func Extend1[T, A, R any](x *Extensions, m Method, fn func(*T, A) R) {
	x.register(reflect.TypeFor[T](), Sig(m), func(recv any, args []any) any {
		return fn(recv.(*T), args[0].(A))
	})
}

// Extend2 registers a mutating two-argument implementation of m for T.
func Extend2[T, A, B, R any](x *Extensions, m Method, fn func(*T, A, B) R) {
	x.register(reflect.TypeFor[T](), Sig(m), func(recv any, args []any) any {
		return fn(recv.(*T), args[0].(A), args[1].(B))
	})
}

// Extend3 registers a mutating three-argument implementation of m for T.
func Extend3[T, A, B, C, R any](x *Extensions, m Method, fn func(*T, A, B, C) R) {
	x.register(reflect.TypeFor[T](), Sig(m), func(recv any, args []any) any {
		return fn(recv.(*T), args[0].(A), args[1].(B), args[2].(C))
	})
}

// Extend4 registers a mutating four-argument implementation of m for T.
func Extend4[T, A, B, C, D, R any](x *Extensions, m Method, fn func(*T, A, B, C, D) R) {
	x.register(reflect.TypeFor[T](), Sig(m), func(recv any, args []any) any {
		return fn(recv.(*T), args[0].(A), args[1].(B), args[2].(C), args[3].(D))
	})
}

// ExtendVar registers a mutating variable-arity implementation of m for T.
func ExtendVar[T any](x *Extensions, m Method, fn func(*T, []any) any) {
	x.register(reflect.TypeFor[T](), Sig(m), func(recv any, args []any) any {
		return fn(recv.(*T), args)
	})
}

// ExtendConst0 registers a const zero-argument implementation of m for T.
// The implementation must not mutate the receiver.
func ExtendConst0[T, R any](x *Extensions, m Method, fn func(*T) R) {
	x.register(reflect.TypeFor[T](), ConstSig(m), func(recv any, _ []any) any {
		return fn(recv.(*T))
	})
}

// ExtendConst1 registers a const one-argument implementation of m for T.
func ExtendConst1[T, A, R any](x *Extensions, m Method, fn func(*T, A) R) {
	x.register(reflect.TypeFor[T](), ConstSig(m), func(recv any, args []any) any {
		return fn(recv.(*T), args[0].(A))
	})
}

// ExtendConst2 registers a const two-argument implementation of m for T.
func ExtendConst2[T, A, B, R any](x *Extensions, m Method, fn func(*T, A, B) R) {
	x.register(reflect.TypeFor[T](), ConstSig(m), func(recv any, args []any) any {
		return fn(recv.(*T), args[0].(A), args[1].(B))
	})
}

// ExtendConst3 registers a const three-argument implementation of m for T.
func ExtendConst3[T, A, B, C, R any](x *Extensions, m Method, fn func(*T, A, B, C) R) {
	x.register(reflect.TypeFor[T](), ConstSig(m), func(recv any, args []any) any {
		return fn(recv.(*T), args[0].(A), args[1].(B), args[2].(C))
	})
}

// ExtendConst4 registers a const four-argument implementation of m for T.
func ExtendConst4[T, A, B, C, D, R any](x *Extensions, m Method, fn func(*T, A, B, C, D) R) {
	x.register(reflect.TypeFor[T](), ConstSig(m), func(recv any, args []any) any {
		return fn(recv.(*T), args[0].(A), args[1].(B), args[2].(C), args[3].(D))
	})
}

// ExtendConstVar registers a const variable-arity implementation of m for T.
func ExtendConstVar[T any](x *Extensions, m Method, fn func(*T, []any) any) {
	x.register(reflect.TypeFor[T](), ConstSig(m), func(recv any, args []any) any {
		return fn(recv.(*T), args)
	})
}

// ExtendClone overrides the synthesized clone for T. fn must return a
// pointer to storage independent of its argument; types holding
// reference fields (slices, maps) use this to get deep-copy semantics.
func ExtendClone[T any](x *Extensions, fn func(*T) *T) {
	x.register(reflect.TypeFor[T](), Copyable(), func(recv any, _ []any) any {
		return newHolder(fn(recv.(*T)))
	})
}

// registerClone synthesizes the default clone stub for T: a Go value
// copy into fresh backing storage. A previous ExtendClone registration
// is preserved.
func registerClone[T any](x *Extensions) {
	x.registerIfAbsent(reflect.TypeFor[T](), Copyable(), func(recv any, _ []any) any {
		cp := *recv.(*T)
		return newHolder(&cp)
	})
}
