package controller

import "slices"

// Hook is a filter run before or after an action. A hook with a non-empty Only
// list runs for those actions alone; Except lists actions it skips.
type Hook struct {
	Name   string
	Func   ActionFunc
	Only   []string
	Except []string
}

// HookOption restricts the actions a hook runs for.
type HookOption func(*Hook)

// Only restricts a hook to the given actions.
func Only(actions ...string) HookOption {
	return func(h *Hook) { h.Only = append(h.Only, actions...) }
}

// Except excludes the given actions from a hook.
func Except(actions ...string) HookOption {
	return func(h *Hook) { h.Except = append(h.Except, actions...) }
}

// Skips reports whether the hook must not run for action.
func (h Hook) Skips(action string) bool {
	if len(h.Only) > 0 && !slices.Contains(h.Only, action) {
		return true
	}
	return len(h.Except) > 0 && slices.Contains(h.Except, action)
}

// FilterRunnable runs an action wrapped in its before and after hooks.
type FilterRunnable interface {
	RunWithFilters(c *Context, action string, fn ActionFunc) error
}

// Filters is an ordered set of before and after hooks.
type Filters struct {
	before []Hook
	after  []Hook
}

// Before registers a hook to run ahead of matching actions.
func (f *Filters) Before(name string, fn ActionFunc, opts ...HookOption) {
	f.before = append(f.before, newHook(name, fn, opts))
}

// After registers a hook to run once a matching action returned without error.
func (f *Filters) After(name string, fn ActionFunc, opts ...HookOption) {
	f.after = append(f.after, newHook(name, fn, opts))
}

func (f *Filters) BeforeHooks() []Hook { return f.before }

func (f *Filters) AfterHooks() []Hook { return f.after }

// RunWithFilters runs the before hooks, the action and the after hooks in
// declaration order. The first error aborts the chain and is returned as is.
func (f *Filters) RunWithFilters(c *Context, action string, fn ActionFunc) error {
	if err := runHooks(c, action, f.before); err != nil {
		return err
	}
	if err := fn(c); err != nil {
		return err
	}
	return runHooks(c, action, f.after)
}

func runHooks(c *Context, action string, hooks []Hook) error {
	for _, hook := range hooks {
		if hook.Skips(action) {
			continue
		}
		if err := hook.Func(c); err != nil {
			return err
		}
	}
	return nil
}

func newHook(name string, fn ActionFunc, opts []HookOption) Hook {
	hook := Hook{Name: name, Func: fn}
	for _, opt := range opts {
		opt(&hook)
	}
	return hook
}
