// Package poly provides runtime polymorphism without inheritance.
//
// Any concrete type that has registered implementations for a set of
// method signatures can be held behind a handle declaring that set and
// dispatched through a per-type table of erased function stubs.
//
// This package contains:
//   - Method tag interning
//   - Signature and Interface declarations
//   - Per-type dispatch tables with permutation-based view conversion
//   - Ref (borrowing), Object (exclusive) and Shared (all-const) handles
//   - The implicit clone protocol behind owning-handle copies
//   - Erasure-site caching and opt-in dispatch profiling
//
// Declaring a capability and extending a type looks like:
//
//	var Draw = poly.NewMethod("draw")
//	var Drawable = poly.MustInterface(poly.ConstSig(Draw))
//
//	type Circle struct{ Radius int }
//
//	func init() {
//		poly.ExtendConst0(poly.Default, Draw, func(c *Circle) int { return 7 })
//	}
//
//	obj, err := poly.NewObject(poly.Default, Drawable, Circle{})
//	n := poly.Call[int](obj, Draw)
package poly
