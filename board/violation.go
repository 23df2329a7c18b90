package board

import "fmt"

// A ViolationKind names the invariant a descriptor broke.
type ViolationKind string

// The invariants Validate checks.
const (
	MissingField        ViolationKind = "missing_field"
	UnknownTarget       ViolationKind = "unknown_target"
	LEDCountMismatch    ViolationKind = "led_count_mismatch"
	ButtonCountMismatch ViolationKind = "button_count_mismatch"
	PinOutOfRange       ViolationKind = "pin_out_of_range"
	PinConflict         ViolationKind = "pin_conflict"
	ButtonPull          ViolationKind = "button_pull"
	NeopixelConfig      ViolationKind = "neopixel_config"
	VolumeLabelTooLong  ViolationKind = "volume_label_too_long"
	VolumeLabelCharset  ViolationKind = "volume_label_charset"
	DuplicateName       ViolationKind = "duplicate_name"
	DuplicateBoardID    ViolationKind = "duplicate_board_id"
	USBPIDCollision     ViolationKind = "usb_pid_collision"
	BLEStringTooLong    ViolationKind = "ble_string_too_long"
	BLEStringCharset    ViolationKind = "ble_string_charset"
	InvalidURL          ViolationKind = "invalid_url"
)

// A Violation is one broken invariant in one descriptor.
type Violation struct {
	// Board is the descriptor's Name.
	Board string
	// Field is the dotted path of the offending field, e.g. "uf2.volume_label".
	Field  string
	Kind   ViolationKind
	Detail string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("board %q: %s: %s: %s", v.Board, v.Field, v.Kind, v.Detail)
}

// Violations unpacks the error returned by Validate, including when it has been wrapped
// by callers. Errors that are not violations are skipped.
func Violations(err error) []*Violation {
	var out []*Violation
	collectViolations(err, &out)
	return out
}

func collectViolations(err error, out *[]*Violation) {
	switch e := err.(type) {
	case nil:
	case *Violation:
		*out = append(*out, e)
	case interface{ Unwrap() []error }:
		for _, inner := range e.Unwrap() {
			collectViolations(inner, out)
		}
	case interface{ Unwrap() error }:
		collectViolations(e.Unwrap(), out)
	}
}

// HasKind reports whether err carries a violation of the given kind.
func HasKind(err error, kind ViolationKind) bool {
	for _, v := range Violations(err) {
		if v.Kind == kind {
			return true
		}
	}
	return false
}
