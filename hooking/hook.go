// Package hooking lets observers attach to the translation engines without the
// engines knowing what the observers do.
package hooking

// HookPos names a point of a translation where hooks are invoked.
type HookPos struct {
	Name string
}

// HookCtx is what a hook receives when it is invoked.
type HookCtx struct {
	// Domain is the engine that invokes the hook.
	Domain Hookable

	// Pos is where the hook is invoked.
	Pos *HookPos

	// Item is the value the engine reports at the position, for example a
	// translation or an eviction.
	Item any
}

// Hookable defines an object that accept Hooks.
type Hookable interface {
	// AcceptHook registers a hook for all the positions.
	AcceptHook(hook Hook)

	// AcceptHookAt registers a hook that is only invoked at the given
	// positions.
	AcceptHookAt(hook Hook, positions ...*HookPos)

	// RemoveHook unregisters a hook. It returns false if the hook is not
	// registered.
	RemoveHook(hook Hook) bool

	// NumHooks returns the number of hooks registered.
	NumHooks() int

	// Hooks returns all the hooks registered.
	Hooks() []Hook
}

// Hook is a short piece of program that can be invoked by a hookable object.
type Hook interface {
	// Func determines what to do if hook is invoked.
	Func(ctx HookCtx)
}

type registration struct {
	hook      Hook
	positions []*HookPos
}

func (r registration) listensTo(pos *HookPos) bool {
	if len(r.positions) == 0 {
		return true
	}

	for _, p := range r.positions {
		if p == pos {
			return true
		}
	}

	return false
}

// A HookableBase keeps the hooks of an engine. Engines embed it and call
// InvokeHook.
type HookableBase struct {
	registrations []registration
}

// NumHooks returns the number of hooks registered.
func (h *HookableBase) NumHooks() int {
	return len(h.registrations)
}

// Hooks returns all the hooks in registration order.
func (h *HookableBase) Hooks() []Hook {
	hooks := make([]Hook, 0, len(h.registrations))
	for _, r := range h.registrations {
		hooks = append(hooks, r.hook)
	}

	return hooks
}

// AcceptHook registers a hook for all the positions. Registering the same
// hook twice panics.
func (h *HookableBase) AcceptHook(hook Hook) {
	h.AcceptHookAt(hook)
}

// AcceptHookAt registers a hook that only sees the given positions. Without
// positions, the hook sees all of them.
func (h *HookableBase) AcceptHookAt(hook Hook, positions ...*HookPos) {
	h.mustNotHaveDuplicatedHook(hook)

	h.registrations = append(h.registrations, registration{
		hook:      hook,
		positions: positions,
	})
}

// RemoveHook unregisters a hook.
func (h *HookableBase) RemoveHook(hook Hook) bool {
	for i, r := range h.registrations {
		if r.hook == hook {
			h.registrations = append(h.registrations[:i],
				h.registrations[i+1:]...)
			return true
		}
	}

	return false
}

func (h *HookableBase) mustNotHaveDuplicatedHook(hook Hook) {
	for _, r := range h.registrations {
		if r.hook == hook {
			panic("duplicated hook")
		}
	}
}

// InvokeHook triggers, in registration order, the hooks that listen to the
// position of the context.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, r := range h.registrations {
		if r.listensTo(ctx.Pos) {
			r.hook.Func(ctx)
		}
	}
}
