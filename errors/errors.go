// Copyright 2023 The CubeFS Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

// Package errors carries the taxonomy every public master operation reports
// through, plus a generic tagged Result so the core never lets a bare Go
// error value smuggle information the RPC surface can't classify.
package errors

import "fmt"

// Code is the closed set of error kinds a public operation can return.
type Code int

const (
	OK Code = iota
	InvalidParams
	ObjectNotFound
	ObjectAlreadyExists
	ReplicaIsNotReady
	InvalidWrite
	ObjectHasLease
	NoAvailableHandle
	SegmentNotFound
	SegmentAlreadyExists
	UnavailableInCurrentMode
	InternalError
)

func (c Code) String() string {
	switch c {
	case OK:
		return "OK"
	case InvalidParams:
		return "INVALID_PARAMS"
	case ObjectNotFound:
		return "OBJECT_NOT_FOUND"
	case ObjectAlreadyExists:
		return "OBJECT_ALREADY_EXISTS"
	case ReplicaIsNotReady:
		return "REPLICA_IS_NOT_READY"
	case InvalidWrite:
		return "INVALID_WRITE"
	case ObjectHasLease:
		return "OBJECT_HAS_LEASE"
	case NoAvailableHandle:
		return "NO_AVAILABLE_HANDLE"
	case SegmentNotFound:
		return "SEGMENT_NOT_FOUND"
	case SegmentAlreadyExists:
		return "SEGMENT_ALREADY_EXISTS"
	case UnavailableInCurrentMode:
		return "UNAVAILABLE_IN_CURRENT_MODE"
	case InternalError:
		return "INTERNAL_ERROR"
	default:
		return "UNKNOWN"
	}
}

// Error adapts a Code to the error interface so it travels through ordinary
// Go error-handling paths (wrapping, %w) while staying recoverable via
// CodeOf at the RPC boundary.
type Error struct {
	Code Code
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// New builds an *Error for the given code, optionally annotated.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

// CodeOf extracts the Code carried by err. An error that didn't originate
// from this package is an unexpected internal invariant, not a classified
// failure, and is reported as InternalError rather than panicking the RPC
// layer.
func CodeOf(err error) Code {
	if err == nil {
		return OK
	}
	if e, ok := unwrapToError(err); ok {
		return e.Code
	}
	return InternalError
}

func unwrapToError(err error) (*Error, bool) {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}

// Sentinel errors used across the master package.
var (
	ErrInvalidParams            = New(InvalidParams, "invalid request parameters")
	ErrObjectNotFound           = New(ObjectNotFound, "object not found")
	ErrObjectAlreadyExists      = New(ObjectAlreadyExists, "object already exists")
	ErrReplicaIsNotReady        = New(ReplicaIsNotReady, "replica is not ready")
	ErrInvalidWrite             = New(InvalidWrite, "invalid write against non-processing replica")
	ErrObjectHasLease           = New(ObjectHasLease, "object has a live lease")
	ErrNoAvailableHandle        = New(NoAvailableHandle, "no available handle")
	ErrSegmentNotFound          = New(SegmentNotFound, "segment not found")
	ErrSegmentAlreadyExists     = New(SegmentAlreadyExists, "segment already exists")
	ErrUnavailableInCurrentMode = New(UnavailableInCurrentMode, "unavailable in current mode")
	ErrInternal                 = New(InternalError, "internal error")
)

// Result is a tagged result type returned across the request surface:
// either a value or a classified error, never both.
type Result[T any] struct {
	Value T
	Err   error
}

func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

func Fail[T any](err error) Result[T] {
	return Result[T]{Err: err}
}

func (r Result[T]) IsOK() bool {
	return r.Err == nil
}
