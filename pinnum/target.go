package pinnum

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// A Target describes the GPIO ports of one MCU and the UF2 family its images carry.
type Target struct {
	Name string
	// PortWidths holds the number of usable lines on each port, indexed by port.
	PortWidths  []int
	UF2FamilyID uint32
}

// Supported targets.
var (
	NRF52840 = Target{Name: "nrf52840", PortWidths: []int{32, 16}, UF2FamilyID: 0xADA52840}
	NRF52833 = Target{Name: "nrf52833", PortWidths: []int{32, 10}, UF2FamilyID: 0x621E937A}
	NRF52832 = Target{Name: "nrf52832", PortWidths: []int{32}, UF2FamilyID: 0x1B57745F}
)

var targets = map[string]Target{
	NRF52840.Name: NRF52840,
	NRF52833.Name: NRF52833,
	NRF52832.Name: NRF52832,
}

// LookupTarget returns the target with the given name, ignoring case.
func LookupTarget(name string) (Target, bool) {
	t, ok := targets[strings.ToLower(name)]
	return t, ok
}

// TargetNames returns the supported target names in sorted order.
func TargetNames() []string {
	names := make([]string, 0, len(targets))
	for name := range targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Ports returns the number of GPIO ports on the target.
func (t Target) Ports() int {
	return len(t.PortWidths)
}

// PinNumber is the checked form of Number: it fails rather than produce an id for a
// line the target does not have.
func (t Target) PinNumber(port, pin int) (PinID, error) {
	if port < 0 || port >= len(t.PortWidths) {
		return 0, errors.Wrapf(ErrOutOfRange, "%s has no port %d", t.Name, port)
	}
	if pin < 0 || pin >= PinsPerPort || pin >= t.PortWidths[port] {
		return 0, errors.Wrapf(ErrOutOfRange, "%s port %d has no line %d", t.Name, port, pin)
	}
	return Number(port, pin), nil
}

// Contains reports whether the id addresses a real GPIO line on the target.
func (t Target) Contains(id PinID) bool {
	_, err := t.PinNumber(id.Port(), id.Pin())
	return err == nil
}

// MustPin is PinNumber for package-level descriptor literals. It panics on a bad pair
// so a broken board table fails at init instead of shipping.
func MustPin(t Target, port, pin int) PinID {
	id, err := t.PinNumber(port, pin)
	if err != nil {
		panic(err)
	}
	return id
}
