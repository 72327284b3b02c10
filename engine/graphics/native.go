package graphics

import "unsafe"

// NativeResource pairs an opaque backend pointer with its resource type tag.
// It identifies a concrete backend object without templating the core on
// backend types; two NativeResources are equal iff they wrap the same
// backend object.
type NativeResource struct {
	ptr   unsafe.Pointer
	rtype ResourceType
}

// NewNativeResource wraps an opaque backend pointer.
//
// Parameters:
//   - ptr: pointer to the concrete backend object (must be stable for the object's lifetime)
//   - rtype: the resource type tag
//
// Returns:
//   - NativeResource: the wrapped resource identity
func NewNativeResource(ptr unsafe.Pointer, rtype ResourceType) NativeResource {
	return NativeResource{ptr: ptr, rtype: rtype}
}

// Pointer returns the opaque backend pointer.
func (n NativeResource) Pointer() unsafe.Pointer {
	return n.ptr
}

// Type returns the resource type tag.
func (n NativeResource) Type() ResourceType {
	return n.rtype
}

// IsValid reports whether the resource wraps a live backend pointer.
func (n NativeResource) IsValid() bool {
	return n.ptr != nil
}

// NativeView is an opaque pointer to a backend view object (SRV, UAV, RTV,
// DSV or equivalent), created by Buffer and Texture view creators.
type NativeView struct {
	ptr unsafe.Pointer
}

// NewNativeView wraps an opaque backend view pointer.
//
// Parameters:
//   - ptr: pointer to the concrete backend view object
//
// Returns:
//   - NativeView: the wrapped view identity
func NewNativeView(ptr unsafe.Pointer) NativeView {
	return NativeView{ptr: ptr}
}

// Pointer returns the opaque backend view pointer.
func (v NativeView) Pointer() unsafe.Pointer {
	return v.ptr
}

// IsValid reports whether the view wraps a live backend pointer.
func (v NativeView) IsValid() bool {
	return v.ptr != nil
}
