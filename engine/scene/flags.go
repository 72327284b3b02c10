package scene

// NodeFlag names an inheritable per-node flag.
type NodeFlag int

const (
	// FlagVisible gates the node's participation in rendering.
	FlagVisible NodeFlag = iota
	// FlagStatic marks the node's transform as immutable after placement.
	FlagStatic
	// FlagCastsShadows opts the node into shadow passes.
	FlagCastsShadows
	// FlagReceivesShadows opts the node into shadow sampling.
	FlagReceivesShadows

	nodeFlagCount
)

// String returns the flag's name.
func (f NodeFlag) String() string {
	switch f {
	case FlagVisible:
		return "Visible"
	case FlagStatic:
		return "Static"
	case FlagCastsShadows:
		return "CastsShadows"
	case FlagReceivesShadows:
		return "ReceivesShadows"
	default:
		return "Unknown"
	}
}

// flagState is the two-level state of one flag: the locally set value,
// the value consumers read after resolution, whether the flag derives
// from the parent, and an optional value staged for the next update.
type flagState struct {
	local      bool
	effective  bool
	inherited  bool
	dirty      bool
	hasPending bool
	pending    bool
}

// FlagsComponent stores the node's inheritable flags. Reads outside a
// scene update return the last resolved effective values; mutations mark
// the flag dirty and take effect on the next Scene.Update.
type FlagsComponent struct {
	states [nodeFlagCount]flagState
}

// Ensure FlagsComponent implements Component.
var _ Component = (*FlagsComponent)(nil)

// newFlagsComponent creates the component with every flag local, clean,
// and with Visible and ReceivesShadows defaulting to true.
func newFlagsComponent() *FlagsComponent {
	f := &FlagsComponent{}
	for _, def := range []NodeFlag{FlagVisible, FlagReceivesShadows} {
		f.states[def].local = true
		f.states[def].effective = true
	}
	return f
}

// Type returns the component's stable type id.
func (f *FlagsComponent) Type() ComponentType {
	return ComponentTypeFlags
}

// Dependencies returns the component types this component requires.
func (f *FlagsComponent) Dependencies() []ComponentType {
	return nil
}

// Effective returns the resolved value of a flag as of the last update.
//
// Parameters:
//   - flag: the flag to read
//
// Returns:
//   - bool: the effective value
func (f *FlagsComponent) Effective(flag NodeFlag) bool {
	return f.states[flag].effective
}

// Local returns the locally set value of a flag, ignoring inheritance.
func (f *FlagsComponent) Local(flag NodeFlag) bool {
	return f.states[flag].local
}

// SetLocal sets a flag's local value and clears inheritance for it. The
// effective value changes on the next update.
//
// Parameters:
//   - flag: the flag to set
//   - value: the new local value
func (f *FlagsComponent) SetLocal(flag NodeFlag, value bool) {
	s := &f.states[flag]
	s.local = value
	s.inherited = false
	s.dirty = true
}

// SetInherited marks a flag as deriving its effective value from the
// parent's effective value.
//
// Parameters:
//   - flag: the flag to inherit
//   - inherited: true to derive from parent, false to use the local value
func (f *FlagsComponent) SetInherited(flag NodeFlag, inherited bool) {
	s := &f.states[flag]
	if s.inherited == inherited {
		return
	}
	s.inherited = inherited
	s.dirty = true
}

// Inherited reports whether a flag derives from the parent.
func (f *FlagsComponent) Inherited(flag NodeFlag) bool {
	return f.states[flag].inherited
}

// SetPending stages a local value that replaces the current local value
// at the start of the next update. Staging is how gameplay code flips
// flags mid-frame without racing the resolution pass.
//
// Parameters:
//   - flag: the flag to stage
//   - value: the value applied on the next update
func (f *FlagsComponent) SetPending(flag NodeFlag, value bool) {
	s := &f.states[flag]
	s.hasPending = true
	s.pending = value
	s.dirty = true
}

// Dirty reports whether any flag awaits resolution.
func (f *FlagsComponent) Dirty() bool {
	for i := range f.states {
		if f.states[i].dirty {
			return true
		}
	}
	return false
}

// resolve computes effective values for every flag given the parent's
// resolved component (nil at the root). Pending values replace local
// first; dirty bits are cleared. Returns true when any effective value
// changed.
func (f *FlagsComponent) resolve(parent *FlagsComponent) bool {
	changed := false
	for i := range f.states {
		s := &f.states[i]
		if s.hasPending {
			s.local = s.pending
			s.hasPending = false
		}
		effective := s.local
		if s.inherited && parent != nil {
			effective = parent.states[i].effective
		}
		if effective != s.effective {
			s.effective = effective
			changed = true
		}
		s.dirty = false
	}
	return changed
}
