package play

import (
	"slices"
	"sync"
)

// Trigger describes a choice which has just become current and has a function bound to it.
type Trigger struct {
	Name   string `json:"name"`
	Window int    `json:"window"`
	Choice int    `json:"choice"`
	Text   string `json:"text"`
}

// Func is a side-effect bound by name to choices with the "text->name" syntax.
type Func func(Trigger)

// Functions is the registry of named side-effects.
//
// Windows keep a reference to the registry instead of a copy, so a function registered
// after the text was parsed still reaches every window referencing its name.
// It is safe for concurrent use.
type Functions struct {
	mu  sync.RWMutex
	fns map[string]Func
}

func NewFunctions() *Functions {
	return &Functions{fns: make(map[string]Func)}
}

// Register binds fn to the name, overwriting the previous binding. A nil fn removes the binding.
func (f *Functions) Register(name string, fn Func) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if fn == nil {
		delete(f.fns, name)
		return
	}

	f.fns[name] = fn
}

func (f *Functions) Lookup(name string) (Func, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	fn, ok := f.fns[name]
	return fn, ok
}

// Names returns sorted names of the registered functions.
func (f *Functions) Names() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]string, 0, len(f.fns))
	for name := range f.fns {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// fire calls the functions of the triggers in order. Unregistered names are skipped.
// Must be called without holding any Document lock.
func (f *Functions) fire(triggers ...Trigger) {
	for _, t := range triggers {
		if fn, ok := f.Lookup(t.Name); ok {
			fn(t)
		}
	}
}
