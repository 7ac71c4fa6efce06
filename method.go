package poly

import "sync"

// Method is an interned tag identifying one dispatchable operation name.
//
// Methods are interned to numeric IDs at declaration time so dispatch
// can use array indexing instead of string comparison. The zero Method
// is invalid and never dispatches.
type Method struct {
	id int32
}

// methodTable interns method names to numeric IDs.
//
// The table is append-only and thread-safe for concurrent reads after
// initial population. New methods can be added concurrently.
type methodTable struct {
	mu     sync.RWMutex
	byName map[string]Method
	names  []string // index id-1 -> name
}

var methods = &methodTable{byName: make(map[string]Method)}

// NewMethod returns the tag for a method name, interning it if needed.
// Calling NewMethod twice with the same name yields the same tag.
func NewMethod(name string) Method {
	// Fast path: read-only lookup
	methods.mu.RLock()
	if m, ok := methods.byName[name]; ok {
		methods.mu.RUnlock()
		return m
	}
	methods.mu.RUnlock()

	// Slow path: need to add a new method
	methods.mu.Lock()
	defer methods.mu.Unlock()

	// Double-check after acquiring write lock
	if m, ok := methods.byName[name]; ok {
		return m
	}

	methods.names = append(methods.names, name)
	m := Method{id: int32(len(methods.names))}
	methods.byName[name] = m
	return m
}

// MethodByName returns the tag for a name without creating one.
// The second result is false if the name was never interned.
func MethodByName(name string) (Method, bool) {
	methods.mu.RLock()
	defer methods.mu.RUnlock()
	m, ok := methods.byName[name]
	return m, ok
}

// Name returns the interned name for the tag, or "" for the zero Method.
func (m Method) Name() string {
	if m.id == 0 {
		return ""
	}
	methods.mu.RLock()
	defer methods.mu.RUnlock()
	return methods.names[m.id-1]
}

// Valid reports whether the tag names an interned method.
func (m Method) Valid() bool {
	return m.id != 0
}
