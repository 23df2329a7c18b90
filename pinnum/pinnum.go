// Package pinnum maps (port, pin) pairs onto the linear GPIO numbering used by nRF52
// bootloader board descriptors.
package pinnum

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// PinsPerPort is the stride between two GPIO ports in the linear numbering.
const PinsPerPort = 32

// ErrOutOfRange is wrapped by every error returned for a port/pin the target can not address.
var ErrOutOfRange = errors.New("pin out of range")

// A PinID is the linear GPIO identifier port*32 + pin.
type PinID uint16

// Number returns port*32 + pin. It does not check the pair against any MCU; use
// Target.PinNumber when the result is going into a descriptor. Number is meant for
// literals and panics on a pair that has no PinID instead of wrapping it.
func Number(port, pin int) PinID {
	id, err := number(port, pin)
	if err != nil {
		panic(err)
	}
	return id
}

func number(port, pin int) (PinID, error) {
	if port < 0 || pin < 0 || pin >= PinsPerPort || port > (math.MaxUint16-pin)/PinsPerPort {
		return 0, errors.Wrapf(ErrOutOfRange, "port %d line %d", port, pin)
	}
	return PinID(port*PinsPerPort + pin), nil
}

// Port returns the GPIO port the id lives on.
func (id PinID) Port() int {
	return int(id) / PinsPerPort
}

// Pin returns the line number within the id's port.
func (id PinID) Pin() int {
	return int(id) % PinsPerPort
}

// String renders the id the way nRF datasheets name lines, e.g. "P1.09".
func (id PinID) String() string {
	return fmt.Sprintf("P%d.%02d", id.Port(), id.Pin())
}

// Parse reads "P1.09", "1.09" or a bare linear number such as "41".
func Parse(s string) (PinID, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, errors.New("empty pin")
	}
	body := strings.TrimPrefix(strings.TrimPrefix(trimmed, "P"), "p")
	portStr, pinStr, dotted := strings.Cut(body, ".")
	if !dotted {
		n, err := strconv.ParseUint(trimmed, 10, 16)
		if err != nil {
			return 0, errors.Wrapf(err, "invalid pin %q", s)
		}
		return PinID(n), nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid port in pin %q", s)
	}
	pin, err := strconv.Atoi(pinStr)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid line in pin %q", s)
	}
	id, err := number(port, pin)
	if err != nil {
		return 0, errors.Wrapf(err, "pin %q", s)
	}
	return id, nil
}
