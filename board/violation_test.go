package board

import (
	"testing"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/test"
)

func TestViolationsSurviveWrapping(t *testing.T) {
	a := &Violation{Board: "b", Field: "led_count", Kind: LEDCountMismatch, Detail: "x"}
	c := &Violation{Board: "b", Field: "uf2.board_id", Kind: DuplicateBoardID, Detail: "y"}
	combined := multierr.Combine(a, errors.New("not a violation"), c)

	wrapped := errors.Wrap(errors.Wrap(combined, "inner"), "outer")
	test.That(t, Violations(wrapped), test.ShouldResemble, []*Violation{a, c})
	test.That(t, HasKind(wrapped, DuplicateBoardID), test.ShouldBeTrue)
	test.That(t, HasKind(wrapped, PinConflict), test.ShouldBeFalse)

	test.That(t, Violations(nil), test.ShouldBeEmpty)
	test.That(t, Violations(errors.New("plain")), test.ShouldBeEmpty)
	test.That(t, a.Error(), test.ShouldEqual, `board "b": led_count: led_count_mismatch: x`)
}
