package board

import (
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/multierr"
	"periph.io/x/conn/v3/gpio"

	"github.com/nrfboot/boardcfg/pinnum"
)

// volumeLabelSpecials are the punctuation bytes a FAT short name may hold besides
// letters, digits and space.
const volumeLabelSpecials = "!#$%&'()-@^_`{}~"

// Validate checks d for internal consistency and against the descriptors already
// accepted into a registry. Every check runs; the returned error combines one
// *Violation per broken invariant, or is nil.
func Validate(d Descriptor, registered ...Descriptor) error {
	v := &validator{d: d}
	v.checkIdentity(registered)
	v.checkLEDs()
	v.checkButtons()
	v.checkNeopixel()
	v.checkPins()
	v.checkBLE()
	v.checkUSB()
	v.checkUF2()
	return v.err
}

type validator struct {
	d   Descriptor
	err error
}

func (v *validator) fail(field string, kind ViolationKind, format string, args ...interface{}) {
	v.err = multierr.Append(v.err, &Violation{
		Board:  v.d.Name,
		Field:  field,
		Kind:   kind,
		Detail: fmt.Sprintf(format, args...),
	})
}

func (v *validator) required(field, value string) bool {
	if value == "" {
		v.fail(field, MissingField, "required")
		return false
	}
	return true
}

func (v *validator) checkIdentity(registered []Descriptor) {
	v.required("name", v.d.Name)
	hasBoardID := v.required("uf2.board_id", v.d.UF2.BoardID)
	for _, other := range registered {
		if v.d.Name != "" && other.Name == v.d.Name {
			v.fail("name", DuplicateName, "board %q is already registered", other.Name)
		}
		if hasBoardID && other.UF2.BoardID == v.d.UF2.BoardID {
			v.fail("uf2.board_id", DuplicateBoardID, "%q is already used by board %q", v.d.UF2.BoardID, other.Name)
		}
	}
}

func (v *validator) checkLEDs() {
	if v.d.LEDCount != len(v.d.LEDs) {
		v.fail("led_count", LEDCountMismatch, "declares %d LEDs but lists %d", v.d.LEDCount, len(v.d.LEDs))
	}
}

func (v *validator) checkButtons() {
	if v.d.ButtonCount != len(v.d.Buttons) {
		v.fail("button_count", ButtonCountMismatch, "declares %d buttons but lists %d", v.d.ButtonCount, len(v.d.Buttons))
	}
	for i, b := range v.d.Buttons {
		switch b.Pull {
		case gpio.Float, gpio.PullDown, gpio.PullUp:
		default:
			v.fail(fmt.Sprintf("buttons.%d.pull", i), ButtonPull, "unsupported pull %s", b.Pull)
		}
	}
}

func (v *validator) checkNeopixel() {
	np := v.d.Neopixel
	if np == nil {
		return
	}
	if np.Count < 1 {
		v.fail("neopixel.count", NeopixelConfig, "count must be at least 1, got %d", np.Count)
	}
	if np.Brightness > 0xFFFFFF {
		v.fail("neopixel.brightness", NeopixelConfig, "0x%X does not fit in 0xRRGGBB", np.Brightness)
	}
}

type pinUse struct {
	field string
	pin   pinnum.PinID
}

func (v *validator) pinUses() []pinUse {
	var uses []pinUse
	for i, led := range v.d.LEDs {
		uses = append(uses, pinUse{fmt.Sprintf("leds.%d.pin", i), led.Pin})
	}
	for i, b := range v.d.Buttons {
		uses = append(uses, pinUse{fmt.Sprintf("buttons.%d.pin", i), b.Pin})
	}
	if v.d.Neopixel != nil {
		uses = append(uses, pinUse{"neopixel.pin", v.d.Neopixel.Pin})
	}
	return uses
}

func (v *validator) checkPins() {
	uses := v.pinUses()

	seen := make(map[pinnum.PinID]string, len(uses))
	for _, use := range uses {
		if first, ok := seen[use.pin]; ok {
			v.fail(use.field, PinConflict, "%s is already assigned to %s", use.pin, first)
			continue
		}
		seen[use.pin] = use.field
	}

	if !v.required("target", v.d.Target) {
		return
	}
	target, ok := v.d.LookupTarget()
	if !ok {
		v.fail("target", UnknownTarget, "%q is not one of %s", v.d.Target, strings.Join(pinnum.TargetNames(), ", "))
		return
	}
	for _, use := range uses {
		if !target.Contains(use.pin) {
			v.fail(use.field, PinOutOfRange, "%s (id %d) is not a GPIO line on %s", use.pin, use.pin, target.Name)
		}
	}
}

func (v *validator) checkBLE() {
	v.checkBLEString("ble.manufacturer", v.d.BLE.Manufacturer)
	v.checkBLEString("ble.model", v.d.BLE.Model)
}

func (v *validator) checkBLEString(field, s string) {
	if !v.required(field, s) {
		return
	}
	if len(s) > MaxBLEStringLen {
		v.fail(field, BLEStringTooLong, "%d bytes exceeds %d", len(s), MaxBLEStringLen)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7E {
			v.fail(field, BLEStringCharset, "byte 0x%02X at offset %d is not printable ASCII", s[i], i)
			return
		}
	}
}

func (v *validator) checkUSB() {
	u := v.d.USB
	if u.VID == 0 {
		v.fail("usb.vid", MissingField, "required")
	}
	if u.UF2PID == 0 {
		v.fail("usb.uf2_pid", MissingField, "required")
	}
	if u.DualMode() && u.CDCOnlyPID == u.UF2PID {
		v.fail("usb.cdc_only_pid", USBPIDCollision,
			"0x%04X is also the UF2 product id; omit it for a single-mode board", u.CDCOnlyPID)
	}
}

func (v *validator) checkUF2() {
	m := v.d.UF2
	v.required("uf2.product_name", m.ProductName)

	if len(m.VolumeLabel) > MaxVolumeLabelLen {
		v.fail("uf2.volume_label", VolumeLabelTooLong, "%q is %d characters, limit is %d",
			m.VolumeLabel, len(m.VolumeLabel), MaxVolumeLabelLen)
	}
	for i := 0; i < len(m.VolumeLabel); i++ {
		if !validVolumeLabelByte(m.VolumeLabel[i]) {
			v.fail("uf2.volume_label", VolumeLabelCharset, "%q has disallowed character %q at offset %d",
				m.VolumeLabel, m.VolumeLabel[i], i)
			break
		}
	}

	if m.IndexURL != "" {
		u, err := url.Parse(m.IndexURL)
		switch {
		case err != nil:
			v.fail("uf2.index_url", InvalidURL, "%v", err)
		case (u.Scheme != "http" && u.Scheme != "https") || u.Host == "":
			v.fail("uf2.index_url", InvalidURL, "%q is not an absolute http(s) URL", m.IndexURL)
		}
	}
}

func validVolumeLabelByte(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == ' ':
		return true
	}
	return strings.IndexByte(volumeLabelSpecials, c) >= 0
}

// ValidVolumeLabel reports whether label can be used as the UF2 drive name.
func ValidVolumeLabel(label string) bool {
	if len(label) > MaxVolumeLabelLen {
		return false
	}
	for i := 0; i < len(label); i++ {
		if !validVolumeLabelByte(label[i]) {
			return false
		}
	}
	return true
}
