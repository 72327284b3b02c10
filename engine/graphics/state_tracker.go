package graphics

// trackedState is the per-resource record kept for one recording scope.
type trackedState struct {
	current ResourceState // last state the command stream has been synchronized to
	pending ResourceState // state required by upcoming commands; Unknown if none
}

// ResourceStateTracker maintains the logical state machine for every
// registered resource and synthesizes the minimum barrier set for the
// transitions a recording requires. Consecutive transitions on the same
// resource are coalesced: only the final required state produces a barrier
// at flush time.
//
// The tracker is owned by a single CommandRecorder and is not safe for
// concurrent use (frame/record thread only, per the engine thread policy).
type ResourceStateTracker struct {
	states map[NativeResource]*trackedState
	// barriers pending emission, in require order.
	pending []Barrier
	// resources with a pending transition, in first-require order, so
	// FlushBarriers emits deterministically.
	touched []NativeResource
}

// NewResourceStateTracker creates an empty tracker.
//
// Returns:
//   - *ResourceStateTracker: the newly created tracker
func NewResourceStateTracker() *ResourceStateTracker {
	return &ResourceStateTracker{
		states: make(map[NativeResource]*trackedState),
	}
}

// BeginTrackingResourceState records the entry state of a resource for this
// recording scope. A resource never registered is in ResourceStateUnknown;
// requiring a state on an unknown resource implicitly begins tracking from
// Common.
//
// Parameters:
//   - resource: the backend resource identity
//   - initial: the resource's logical state on entry
func (t *ResourceStateTracker) BeginTrackingResourceState(resource NativeResource, initial ResourceState) {
	if !resource.IsValid() {
		return
	}
	if _, ok := t.states[resource]; ok {
		return
	}
	t.states[resource] = &trackedState{current: initial}
}

// CurrentState returns the state the command stream has synchronized the
// resource to, ignoring pending requires.
//
// Parameters:
//   - resource: the backend resource identity
//
// Returns:
//   - ResourceState: the synchronized state, or ResourceStateUnknown if untracked
func (t *ResourceStateTracker) CurrentState(resource NativeResource) ResourceState {
	if s, ok := t.states[resource]; ok {
		return s.current
	}
	return ResourceStateUnknown
}

// RequireResourceState records a pending transition to the desired state.
// Requests are coalesced: a second require before the flush replaces the
// first, so only the final state produces a barrier. Requiring the current
// state is idempotent and emits no barrier, except for
// ResourceStateUnorderedAccess where a memory barrier covers the
// write-after-write hazard.
//
// Parameters:
//   - resource: the backend resource identity
//   - desired: the state the next command needs the resource in
func (t *ResourceStateTracker) RequireResourceState(resource NativeResource, desired ResourceState) {
	if !resource.IsValid() || desired == ResourceStateUnknown {
		return
	}

	s, ok := t.states[resource]
	if !ok {
		s = &trackedState{current: ResourceStateCommon}
		t.states[resource] = s
	}

	if s.pending != ResourceStateUnknown {
		// Coalesce: the newest require wins; intermediate states are never
		// observed by any command (no flush happened in between).
		s.pending = desired
		return
	}

	if desired == s.current {
		if desired == ResourceStateUnorderedAccess {
			// Same-state UAV requires still hazard on prior writes.
			t.pending = append(t.pending, Barrier{
				Kind:     BarrierKindMemory,
				Resource: resource,
				Before:   desired,
				After:    desired,
			})
		}
		return
	}

	s.pending = desired
	t.touched = append(t.touched, resource)
}

// FlushBarriers emits the minimum barrier set for all pending requires and
// marks the affected resources as synchronized to their required states.
// Recorders call this implicitly before any command that reads or writes
// tracked resources.
//
// Returns:
//   - []Barrier: the barriers to record, in first-require order (may be empty)
func (t *ResourceStateTracker) FlushBarriers() []Barrier {
	out := t.pending
	t.pending = nil

	for _, resource := range t.touched {
		s, ok := t.states[resource]
		if !ok || s.pending == ResourceStateUnknown {
			continue
		}
		if s.pending != s.current {
			out = append(out, Barrier{
				Kind:     BarrierKindTransition,
				Resource: resource,
				Before:   s.current,
				After:    s.pending,
			})
			s.current = s.pending
		}
		s.pending = ResourceStateUnknown
	}
	t.touched = t.touched[:0]

	return out
}

// RestoreState emits a pending require back to a previously captured state.
// Used by the upload coordinator to return destinations to their logical
// state after the copy-dest excursion.
//
// Parameters:
//   - resource: the backend resource identity
//   - prior: the state to restore
func (t *ResourceStateTracker) RestoreState(resource NativeResource, prior ResourceState) {
	if prior == ResourceStateUnknown {
		return
	}
	t.RequireResourceState(resource, prior)
}

// StopTracking removes a resource from the tracker, typically when the
// resource is released.
//
// Parameters:
//   - resource: the backend resource identity
func (t *ResourceStateTracker) StopTracking(resource NativeResource) {
	delete(t.states, resource)
}

// TrackedCount returns the number of resources with per-scope records.
func (t *ResourceStateTracker) TrackedCount() int {
	return len(t.states)
}
