// Package tagged attaches chain roles to values at the type level.
//
// A DualTagged[A, B, V] holds a V that belongs to chain A and is paired with
// chain B. The role parameters have no runtime representation, yet a
// DualTagged[A, B, V] can be neither assigned nor converted to a
// DualTagged[B, A, V], so mixing up "as seen from A" and "as seen from B"
// values is a compile error.
//
// NewMono and NewDual are the only places a role is asserted without being
// derived. Call them where the role of a value is actually known, e.g. a port
// configured for chain A, and derive everything else with Cloned or Map.
package tagged

// MonoTagged is a value scoped to a single chain role.
type MonoTagged[Tag any, V any] struct {
	_     [0]*Tag
	value V
}

// DualTagged is a value scoped to chain TagA and paired with chain TagB.
type DualTagged[TagA any, TagB any, V any] struct {
	_     [0]*TagA
	_     [0]*TagB
	value V
}

// Cloner is implemented by payloads that need more than a shallow copy to be
// duplicated.
type Cloner[V any] interface {
	Clone() V
}

// NewMono tags value with the role Tag. The role is trusted, not checked.
func NewMono[Tag any, V any](value V) MonoTagged[Tag, V] {
	return MonoTagged[Tag, V]{value: value}
}

// NewDual tags value with the roles TagA and TagB. The roles are trusted, not checked.
func NewDual[TagA any, TagB any, V any](value V) DualTagged[TagA, TagB, V] {
	return DualTagged[TagA, TagB, V]{value: value}
}

// Value returns the untagged payload.
func (t MonoTagged[Tag, V]) Value() V {
	return t.value
}

// Cloned returns an independent copy carrying the same role.
func (t MonoTagged[Tag, V]) Cloned() MonoTagged[Tag, V] {
	return MonoTagged[Tag, V]{value: clone(t.value)}
}

// Value returns the untagged payload.
func (t DualTagged[TagA, TagB, V]) Value() V {
	return t.value
}

// Cloned returns an independent copy carrying the same roles.
func (t DualTagged[TagA, TagB, V]) Cloned() DualTagged[TagA, TagB, V] {
	return DualTagged[TagA, TagB, V]{value: clone(t.value)}
}

// MapMono transforms the payload while keeping the role.
func MapMono[Tag any, V any, W any](t MonoTagged[Tag, V], f func(V) W) MonoTagged[Tag, W] {
	return MonoTagged[Tag, W]{value: f(t.value)}
}

// MapDual transforms the payload while keeping both roles.
func MapDual[TagA any, TagB any, V any, W any](t DualTagged[TagA, TagB, V], f func(V) W) DualTagged[TagA, TagB, W] {
	return DualTagged[TagA, TagB, W]{value: f(t.value)}
}

func clone[V any](v V) V {
	if c, ok := any(v).(Cloner[V]); ok {
		return c.Clone()
	}
	return v
}
