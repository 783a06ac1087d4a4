package errcode

import "errors"

// Code is a stable, caller-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK                 Code = "ok"
	InvalidParams      Code = "invalid_params"
	Unsupported        Code = "unsupported"
	NotReady           Code = "not_ready"
	NotFound           Code = "not_found"
	RegistryFull       Code = "registry_full"
	DuplicateID        Code = "duplicate_id"
	DuplicateName      Code = "duplicate_name"
	DuplicateChannel   Code = "duplicate_channel"
	ListenerTableFull  Code = "listener_table_full"
	QueueFull          Code = "queue_full"
	InvalidCalibration Code = "invalid_calibration"
	DriverError        Code = "driver_error"

	Error Code = "error" // generic fallback
)

// E carries a Code plus context and an optional cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return string(e.C) + ": " + e.Msg
	}
	return string(e.C)
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Of extracts a Code from an error, defaulting to Error. Wrapped and joined
// errors are traversed, so a code survives fmt.Errorf("%w") chains and
// errors.Join aggregates; the first carrier found wins.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	var carrier interface{ Code() Code }
	if errors.As(err, &carrier) {
		return carrier.Code()
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	return Error
}
