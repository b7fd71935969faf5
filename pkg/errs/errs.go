// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of dareblopy.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package errs defines the error taxonomy shared by every pipeline
// component: FS, recordio, parser, yielder and asyncloader all report
// failures through a small fixed set of kinds so that callers can branch
// on errors.Is instead of parsing messages.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation failed.
type Kind int

const (
	// NotFound means a logical path did not resolve to anything openable.
	NotFound Kind = iota
	// Io means an OS-level read/seek/write failure, including a file that
	// ends in the middle of what should have been a complete read.
	Io
	// Corrupt means a CRC mismatch, a truncated frame or a malformed
	// Example payload.
	Corrupt
	// UnsupportedCompression means an archive entry needs a codec we do
	// not implement (anything but stored/uncompressed).
	UnsupportedCompression
	// SchemaInvalid means a Schema failed validation at construction time.
	SchemaInvalid
	// MissingFeature means a record lacks a feature the Schema requires.
	MissingFeature
	// ShapeMismatch means the declared shape and the payload length
	// disagree.
	ShapeMismatch
	// TypeMismatch means the declared dtype and the wire kind disagree.
	TypeMismatch
	// Cancelled means the operation was abandoned because of an
	// AsyncLoader shutdown.
	Cancelled
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Io:
		return "io"
	case Corrupt:
		return "corrupt"
	case UnsupportedCompression:
		return "unsupported_compression"
	case SchemaInvalid:
		return "schema_invalid"
	case MissingFeature:
		return "missing_feature"
	case ShapeMismatch:
		return "shape_mismatch"
	case TypeMismatch:
		return "type_mismatch"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Error wraps a Kind and an optional underlying cause. It is the concrete
// type every pipeline package returns; use errors.Is against the sentinel
// values below, or errors.As to recover the Kind and Cause.
type Error struct {
	Kind   Kind
	Op     string // component/operation that failed, e.g. "recordio.Next"
	Path   string // logical path involved, if any
	Cause  error
}

func (e *Error) Error() string {
	if e.Path != "" {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s (%s): %v", e.Op, e.Kind, e.Path, e.Cause)
		}
		return fmt.Sprintf("%s: %s (%s)", e.Op, e.Kind, e.Path)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is makes errors.Is(err, errs.ErrNotFound) (via the sentinel vars below) work
// by comparing Kind rather than identity.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Path == "" && t.Cause == nil && t.Kind == e.Kind
}

// New constructs an *Error for op, optionally wrapping cause.
func New(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Cause: cause}
}

// WithPath is New plus a logical path for context.
func WithPath(kind Kind, op, path string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Cause: cause}
}

// Sentinel values for errors.Is comparisons, e.g.:
//
//	if errors.Is(err, errs.ErrCorrupt) { ... }
var (
	ErrNotFound               = &Error{Kind: NotFound}
	ErrIo                     = &Error{Kind: Io}
	ErrCorrupt                = &Error{Kind: Corrupt}
	ErrUnsupportedCompression = &Error{Kind: UnsupportedCompression}
	ErrSchemaInvalid          = &Error{Kind: SchemaInvalid}
	ErrMissingFeature         = &Error{Kind: MissingFeature}
	ErrShapeMismatch          = &Error{Kind: ShapeMismatch}
	ErrTypeMismatch           = &Error{Kind: TypeMismatch}
	ErrCancelled              = &Error{Kind: Cancelled}
)

// Of reports the Kind of err if it (or something it wraps) is an *Error,
// and false otherwise.
func Of(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
