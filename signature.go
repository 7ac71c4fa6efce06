package poly

import (
	"fmt"
	"sync"
)

// MaxSlots is the capacity of one dispatch table. Slot indices are
// stored as uint8, so a table cannot address more than 256 entries.
const MaxSlots = 256

// Signature identifies one dispatchable operation: a method tag plus a
// const qualifier. Const signatures promise not to mutate the receiver
// and are the only signatures a shared owner may declare.
type Signature struct {
	Method Method
	Const  bool
}

// Sig declares a mutating signature for a method tag.
func Sig(m Method) Signature {
	return Signature{Method: m}
}

// ConstSig declares a non-mutating signature for a method tag.
func ConstSig(m Method) Signature {
	return Signature{Method: m, Const: true}
}

func (s Signature) String() string {
	if s.Const {
		return s.Method.Name() + " const"
	}
	return s.Method.Name()
}

// cloneMethod tags the implicit duplicate-value operation appended to
// every owning handle's table. The name is namespaced so it cannot
// collide with a user-declared method.
var cloneMethod = NewMethod("poly:clone")

// Copyable returns the implicit clone signature. It is appended
// automatically to owning handles; declaring it explicitly in a Ref
// interface keeps owning handles constructible from that Ref.
func Copyable() Signature {
	return ConstSig(cloneMethod)
}

// Interface is the ordered signature list a handle dispatches through.
//
// The declaration order assigns each signature its declared position;
// a handle built directly from a concrete value maps positions to table
// slots with the identity permutation, while handles built from other
// handles remap positions through permutation rebuild (see table.go).
// An Interface is immutable after construction and safe for concurrent
// use.
type Interface struct {
	sigs     []Signature
	bySig    map[Signature]int
	byMethod map[Method]int
	allConst bool
	base     *Interface // set on owning views: the user-declared interface

	owningOnce sync.Once
	owningView *Interface
	owningErr  error
}

// NewInterface builds an interface from an ordered signature list.
// It fails with ErrCapacityExceeded beyond MaxSlots signatures and
// ErrDuplicateSignature if one method appears twice.
func NewInterface(sigs ...Signature) (*Interface, error) {
	if len(sigs) > MaxSlots {
		return nil, fmt.Errorf("%w: %d signatures, max %d", ErrCapacityExceeded, len(sigs), MaxSlots)
	}
	in := &Interface{
		sigs:     append([]Signature(nil), sigs...),
		bySig:    make(map[Signature]int, len(sigs)),
		byMethod: make(map[Method]int, len(sigs)),
		allConst: true,
	}
	for i, s := range in.sigs {
		if !s.Method.Valid() {
			return nil, fmt.Errorf("poly: signature %d has an invalid method tag", i)
		}
		if _, ok := in.byMethod[s.Method]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSignature, s.Method.Name())
		}
		in.bySig[s] = i
		in.byMethod[s.Method] = i
		if !s.Const {
			in.allConst = false
		}
	}
	return in, nil
}

// MustInterface is like NewInterface but panics on error.
// Intended for package-level interface declarations.
func MustInterface(sigs ...Signature) *Interface {
	in, err := NewInterface(sigs...)
	if err != nil {
		panic(err)
	}
	return in
}

// Len returns the number of declared signatures.
func (in *Interface) Len() int {
	return len(in.sigs)
}

// AllConst reports whether every declared signature is const.
// All-const interfaces permit shared ownership and read-only access.
func (in *Interface) AllConst() bool {
	return in.allConst
}

// Signatures returns a copy of the declared signature list.
func (in *Interface) Signatures() []Signature {
	return append([]Signature(nil), in.sigs...)
}

// slotOf returns the declared position of an exact signature.
func (in *Interface) slotOf(s Signature) (int, bool) {
	i, ok := in.bySig[s]
	return i, ok
}

// methodIndex returns the declared position of a method tag.
func (in *Interface) methodIndex(m Method) (int, bool) {
	i, ok := in.byMethod[m]
	return i, ok
}

// userView returns the interface as the consumer declared it: for an
// owning view this strips the implicit clone signature.
func (in *Interface) userView() *Interface {
	if in.base != nil {
		return in.base
	}
	return in
}

// owning returns the interface extended with the implicit clone
// signature, building it once per Interface. If the clone signature is
// already declared the interface is its own owning view.
func (in *Interface) owning() (*Interface, error) {
	if _, ok := in.byMethod[cloneMethod]; ok {
		return in, nil
	}
	in.owningOnce.Do(func() {
		ext, err := NewInterface(append(in.Signatures(), Copyable())...)
		if err != nil {
			in.owningErr = err
			return
		}
		ext.base = in
		in.owningView = ext
	})
	return in.owningView, in.owningErr
}
