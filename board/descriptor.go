// Package board defines the Board Descriptor: the constants one nRF52 hardware variant
// hands to the shared bootloader (LEDs, buttons, RGB indicator, BLE and USB identity,
// UF2 drive metadata and feature flags), and the validator every descriptor must pass
// before the bootloader may trust it.
package board

import (
	"periph.io/x/conn/v3/gpio"

	"github.com/nrfboot/boardcfg/pinnum"
)

// MaxBLEStringLen bounds the BLE device-information manufacturer and model strings.
const MaxBLEStringLen = 127

// MaxVolumeLabelLen is the FAT short-name limit applied to the UF2 drive label.
const MaxVolumeLabelLen = 11

// A Descriptor is the complete, immutable description of one board. Registries only
// hand out copies made with Clone.
type Descriptor struct {
	// Name is the build selection key, e.g. "feather_nrf52840_sense".
	Name string
	// Target names the MCU the board carries, see pinnum.LookupTarget.
	Target string

	LEDCount int
	LEDs     []LED
	Neopixel *Neopixel

	ButtonCount int
	Buttons     []Button

	BLE      BLEIdentity
	USB      USBIdentity
	UF2      UF2Metadata
	Features Features
}

// LED is a status LED and the level that lights it.
type LED struct {
	Pin         pinnum.PinID
	ActiveState gpio.Level
}

// Button is a user button and the bias applied to its input.
type Button struct {
	Pin  pinnum.PinID
	Pull gpio.Pull
}

// Neopixel describes an optional addressable RGB indicator chain.
type Neopixel struct {
	Pin   pinnum.PinID
	Count int
	// Brightness packs the per-channel caps as 0xRRGGBB.
	Brightness uint32
}

// Channels unpacks Brightness into its red, green and blue caps.
func (n Neopixel) Channels() (r, g, b uint8) {
	return uint8(n.Brightness >> 16), uint8(n.Brightness >> 8), uint8(n.Brightness)
}

// BLEIdentity is advertised by the device-information service during OTA updates.
type BLEIdentity struct {
	Manufacturer string
	Model        string
}

// USBIdentity holds the descriptors used in UF2 mode and in data-only (CDC) mode.
// A zero CDCOnlyPID marks a board with a single USB personality.
type USBIdentity struct {
	VID        uint16
	UF2PID     uint16
	CDCOnlyPID uint16
}

// DualMode reports whether the board declares a separate data-only product id.
func (u USBIdentity) DualMode() bool {
	return u.CDCOnlyPID != 0
}

// DataPID returns the product id enumerated in data-only mode.
func (u USBIdentity) DataPID() uint16 {
	if u.DualMode() {
		return u.CDCOnlyPID
	}
	return u.UF2PID
}

// UF2Metadata is surfaced by the virtual update drive.
type UF2Metadata struct {
	ProductName string
	// VolumeLabel is shown verbatim as the drive name.
	VolumeLabel string
	// BoardID is embedded in update packages and must match before an update is accepted.
	BoardID  string
	IndexURL string
}

// Features are the build toggles the bootloader's boot decision reads. The zero value
// is the bootloader default.
type Features struct {
	DisableUF2        bool
	SkipAppValidation bool
	BootloaderVersion uint16
}

// UF2Enabled reports whether UF2 drive mode is built in.
func (f Features) UF2Enabled() bool {
	return !f.DisableUF2
}

// ValidateAppBeforeBoot reports whether the application image must be verified before
// the bootloader jumps to it.
func (f Features) ValidateAppBeforeBoot() bool {
	return !f.SkipAppValidation
}

// Clone returns a deep copy of the descriptor.
func (d Descriptor) Clone() Descriptor {
	c := d
	if d.LEDs != nil {
		c.LEDs = append([]LED(nil), d.LEDs...)
	}
	if d.Buttons != nil {
		c.Buttons = append([]Button(nil), d.Buttons...)
	}
	if d.Neopixel != nil {
		np := *d.Neopixel
		c.Neopixel = &np
	}
	return c
}

// LookupTarget resolves the descriptor's MCU.
func (d Descriptor) LookupTarget() (pinnum.Target, bool) {
	return pinnum.LookupTarget(d.Target)
}
