package poly

import (
	"reflect"
	"sort"
	"sync"
	"sync/atomic"
)

// Profiler counts dispatches per (concrete type, method) to identify
// hot operations. It is opt-in: attach one with Extensions.SetProfiler
// and tables built from then on count every invocation. Detached
// dispatch carries no counting cost at all, so plain handles keep the
// two-index-one-call dispatch path.

// DispatchProfile holds profiling data for one (type, method) pair.
type DispatchProfile struct {
	Invocations atomic.Uint64
	hot         atomic.Bool
}

// profileKey identifies one profiled dispatch target.
type profileKey struct {
	rt     reflect.Type
	method Method
}

// Profiler aggregates dispatch counts across all profiled tables.
type Profiler struct {
	profiles sync.Map // profileKey -> *DispatchProfile

	// HotThreshold is the invocation count at which a target is
	// reported hot. Read at record time; set it before attaching.
	HotThreshold uint64

	// OnHot is called once per target when its count first crosses
	// HotThreshold. May be nil.
	OnHot func(typeName, method string, count uint64)

	hotCount atomic.Uint64
}

// NewProfiler creates a profiler with the default hot threshold.
func NewProfiler() *Profiler {
	return &Profiler{HotThreshold: 10000}
}

// wrap returns a counting stub around fn for one dispatch target.
func (p *Profiler) wrap(rt reflect.Type, m Method, fn stub) stub {
	val, _ := p.profiles.LoadOrStore(profileKey{rt, m}, &DispatchProfile{})
	prof := val.(*DispatchProfile)
	threshold := p.HotThreshold
	return func(recv any, args []any) any {
		n := prof.Invocations.Add(1)
		if n == threshold && prof.hot.CompareAndSwap(false, true) {
			p.hotCount.Add(1)
			if p.OnHot != nil {
				p.OnHot(rt.String(), m.Name(), n)
			}
		}
		return fn(recv, args)
	}
}

// HotCount returns how many targets have crossed the threshold.
func (p *Profiler) HotCount() uint64 {
	return p.hotCount.Load()
}

// ProfileEntry is one row of a profiler snapshot.
type ProfileEntry struct {
	Type        string
	Method      string
	Invocations uint64
}

// Snapshot returns the current counts, most-invoked first, ties broken
// by type then method name for deterministic output.
func (p *Profiler) Snapshot() []ProfileEntry {
	var out []ProfileEntry
	p.profiles.Range(func(k, v any) bool {
		key := k.(profileKey)
		prof := v.(*DispatchProfile)
		out = append(out, ProfileEntry{
			Type:        key.rt.String(),
			Method:      key.method.Name(),
			Invocations: prof.Invocations.Load(),
		})
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Invocations != out[j].Invocations {
			return out[i].Invocations > out[j].Invocations
		}
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Method < out[j].Method
	})
	return out
}
