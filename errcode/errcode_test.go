package errcode

import (
	"errors"
	"fmt"
	"testing"
)

func TestOfBareCode(t *testing.T) {
	if got := Of(InvalidCalibration); got != InvalidCalibration {
		t.Errorf("Of(bare code) = %v", got)
	}
}

func TestOfNil(t *testing.T) {
	if got := Of(nil); got != OK {
		t.Errorf("Of(nil) = %v, want OK", got)
	}
}

func TestOfWrapper(t *testing.T) {
	err := &E{C: DriverError, Op: "init", Err: errors.New("nak")}
	if got := Of(err); got != DriverError {
		t.Errorf("Of(*E) = %v, want DriverError", got)
	}
}

func TestOfTraversesWrapChain(t *testing.T) {
	err := fmt.Errorf("building pan: %w", &E{C: RegistryFull, Op: "register"})
	if got := Of(err); got != RegistryFull {
		t.Errorf("Of(wrapped) = %v, want RegistryFull", got)
	}
}

func TestOfTraversesJoined(t *testing.T) {
	joined := errors.Join(
		&E{C: Unsupported, Op: "config.validate", Msg: "unknown kind"},
		&E{C: DuplicateID, Op: "config.validate"},
	)
	if got := Of(joined); got != Unsupported {
		t.Errorf("Of(joined) = %v, want first carrier's Unsupported", got)
	}
	if got := Of(fmt.Errorf("boot: %w", joined)); got != Unsupported {
		t.Errorf("Of(wrapped join) = %v, want Unsupported", got)
	}
}

func TestOfUnknownError(t *testing.T) {
	if got := Of(errors.New("plain")); got != Error {
		t.Errorf("Of(plain) = %v, want generic Error", got)
	}
}

func TestWrapperUnwrapsToCause(t *testing.T) {
	cause := errors.New("bus stuck")
	err := &E{C: DriverError, Err: cause}
	if !errors.Is(err, cause) {
		t.Error("errors.Is lost the cause through E")
	}
}
