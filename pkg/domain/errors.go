package domain

import "errors"

// ErrUnsupportedParent is returned when an object cannot be added under the selected parent.
var ErrUnsupportedParent = errors.New("unsupported parent")

// ErrNotDeletable is returned when a node has neither a removable container nor a default value.
var ErrNotDeletable = errors.New("node cannot be deleted")

// ErrCoercion is returned when a value cannot be assigned to a typed attribute.
var ErrCoercion = errors.New("value cannot be coerced")

// ErrStaleTarget is returned when a recorded edit refers to a node that is no longer in the tree.
var ErrStaleTarget = errors.New("edit target is no longer attached")

// ErrNotFound is returned when a lookup or reference resolution fails.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a set already holds an equal member.
var ErrDuplicate = errors.New("duplicate member")

// ErrUnhandledAttr is returned by an AttributeSetter that leaves an attribute to reflection.
var ErrUnhandledAttr = errors.New("attribute not handled")

// ErrPackageNotFound is returned when a package name cannot be found in a store.
var ErrPackageNotFound = errors.New("package not found")

// ErrAlreadyOpen is returned when a file is opened twice.
var ErrAlreadyOpen = errors.New("package already open")

// ErrUnsupportedFormat is returned for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported package format")
