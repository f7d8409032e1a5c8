// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package effected

import "github.com/google/uuid"

// namespace partitions effect kinds into the three factory flavors.
// Error and dependency effects live in reserved namespaces so that a plain
// effect named "x" and an error effect named "x" are distinct kinds.
type namespace uint8

const (
	nsPlain namespace = iota
	nsError
	nsDependency
)

// Name identifies an effect kind. Names are comparable values: two names
// constructed independently with [NameOf] and the same label identify the
// same effect kind. This is intentional — it is what lets a handler installed
// in one module intercept effects performed in another — but it also means
// label collisions silently alias two unrelated effects.
//
// [FreshName] avoids the collision hazard entirely: a fresh name carries a
// unique id and compares equal only to copies of itself.
type Name struct {
	ns    namespace
	label string
	id    uuid.UUID
}

// NameOf returns the plain effect name with the given label.
func NameOf(label string) Name {
	return Name{ns: nsPlain, label: label}
}

// ErrorName returns the error effect name with the given label.
// Error effect names render as "error:<label>" and never collide with plain
// names.
func ErrorName(label string) Name {
	return Name{ns: nsError, label: label}
}

// DependencyName returns the dependency effect name with the given label.
// Dependency effect names render as "dependency:<label>" and never collide
// with plain names.
func DependencyName(label string) Name {
	return Name{ns: nsDependency, label: label}
}

// FreshName returns a plain effect name that is distinct from every other
// name, including other fresh names with the same label. The label is kept
// for diagnostics only.
func FreshName(label string) Name {
	return Name{ns: nsPlain, label: label, id: uuid.New()}
}

// Label returns the bare label the name was constructed with.
// Diagnostic messages render effects by label.
func (n Name) Label() string { return n.label }

// IsError reports whether the name lives in the error namespace.
func (n Name) IsError() bool { return n.ns == nsError }

// IsDependency reports whether the name lives in the dependency namespace.
func (n Name) IsDependency() bool { return n.ns == nsDependency }

// IsFresh reports whether the name was created by [FreshName].
func (n Name) IsFresh() bool { return n.id != uuid.Nil }

// qualified renders the namespace-prefixed label, without the fresh id.
func (n Name) qualified() string {
	switch n.ns {
	case nsError:
		return "error:" + n.label
	case nsDependency:
		return "dependency:" + n.label
	default:
		return n.label
	}
}

// String renders the name for debugging: the namespace-prefixed label, with
// a "#" and the first eight hex digits of the id for fresh names.
func (n Name) String() string {
	q := n.qualified()
	if n.id == uuid.Nil {
		return q
	}
	return q + "#" + n.id.String()[:8]
}
