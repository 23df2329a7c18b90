// Package config defines the on-disk board definition file and converts it into a
// board descriptor.
package config

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"
	"periph.io/x/conn/v3/gpio"

	"github.com/nrfboot/boardcfg/board"
	"github.com/nrfboot/boardcfg/pinnum"
)

// SupportedFormats is the range of format_version values this reader understands.
const SupportedFormats = ">= 1.0, < 2.0"

var supportedFormats = mustConstraint(SupportedFormats)

func mustConstraint(c string) *semver.Constraints {
	constraint, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return constraint
}

// A BoardFile is one board definition as written on disk.
type BoardFile struct {
	// Path is the file the definition was read from, if any.
	Path string `json:"-"`

	FormatVersion string `json:"format_version" jsonschema:"description=board file format version (1.x)"`
	Name          string `json:"name" jsonschema:"description=build selection key"`
	Target        string `json:"target" jsonschema:"enum=nrf52840,enum=nrf52833,enum=nrf52832"`

	LEDCount int             `json:"led_count"`
	LEDs     []LEDConfig     `json:"leds,omitempty"`
	Neopixel *NeopixelConfig `json:"neopixel,omitempty"`

	ButtonCount int            `json:"button_count"`
	Buttons     []ButtonConfig `json:"buttons,omitempty"`

	BLE      BLEConfig      `json:"ble"`
	USB      USBConfig      `json:"usb"`
	UF2      UF2Config      `json:"uf2"`
	Features FeaturesConfig `json:"features,omitempty"`
}

// LEDConfig describes one status LED.
type LEDConfig struct {
	Pin         *pinnum.PinID `json:"pin" jsonschema:"oneof_type=string;integer"`
	ActiveState *gpio.Level   `json:"active_state" jsonschema:"oneof_type=string;boolean"`
}

// NeopixelConfig describes the optional RGB indicator.
type NeopixelConfig struct {
	Pin        *pinnum.PinID `json:"pin" jsonschema:"oneof_type=string;integer"`
	Count      int           `json:"count"`
	Brightness uint32        `json:"brightness" jsonschema:"oneof_type=string;integer"`
}

// ButtonConfig describes one user button.
type ButtonConfig struct {
	Pin  *pinnum.PinID `json:"pin" jsonschema:"oneof_type=string;integer"`
	Pull *gpio.Pull    `json:"pull" jsonschema:"oneof_type=string;integer,description=up or down or none"`
}

// BLEConfig is the device-information identity.
type BLEConfig struct {
	Manufacturer string `json:"manufacturer"`
	Model        string `json:"model"`
}

// USBConfig is the USB identity. Omit cdc_only_pid for a single-mode board.
type USBConfig struct {
	VID        uint16 `json:"vid" jsonschema:"oneof_type=string;integer"`
	UF2PID     uint16 `json:"uf2_pid" jsonschema:"oneof_type=string;integer"`
	CDCOnlyPID uint16 `json:"cdc_only_pid,omitempty" jsonschema:"oneof_type=string;integer"`
}

// UF2Config is the update drive metadata.
type UF2Config struct {
	ProductName string `json:"product_name"`
	VolumeLabel string `json:"volume_label"`
	BoardID     string `json:"board_id"`
	IndexURL    string `json:"index_url,omitempty"`
}

// FeaturesConfig holds the boot toggles.
type FeaturesConfig struct {
	DisableUF2        bool   `json:"disable_uf2,omitempty"`
	SkipAppValidation bool   `json:"skip_app_validation,omitempty"`
	BootloaderVersion uint16 `json:"bootloader_version,omitempty" jsonschema:"oneof_type=string;integer"`
}

// Validate ensures the file is structurally complete. Board level invariants are checked
// by board.Validate once the file is converted.
func (bf *BoardFile) Validate(path string) error {
	var errs error
	if bf.FormatVersion == "" {
		errs = multierr.Append(errs, utils.NewConfigValidationFieldRequiredError(path, "format_version"))
	} else if err := checkFormat(bf.FormatVersion); err != nil {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path, err))
	}
	if bf.Name == "" {
		errs = multierr.Append(errs, utils.NewConfigValidationFieldRequiredError(path, "name"))
	}
	if bf.Target == "" {
		errs = multierr.Append(errs, utils.NewConfigValidationFieldRequiredError(path, "target"))
	}
	for idx, led := range bf.LEDs {
		errs = multierr.Append(errs, led.Validate(fmt.Sprintf("%s.%s.%d", path, "leds", idx)))
	}
	for idx, button := range bf.Buttons {
		errs = multierr.Append(errs, button.Validate(fmt.Sprintf("%s.%s.%d", path, "buttons", idx)))
	}
	if bf.Neopixel != nil {
		errs = multierr.Append(errs, bf.Neopixel.Validate(fmt.Sprintf("%s.%s", path, "neopixel")))
	}
	return errs
}

func checkFormat(version string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return errors.Wrapf(err, "invalid format_version %q", version)
	}
	if !supportedFormats.Check(v) {
		return errors.Errorf("format_version %s is not supported (want %s)", v, SupportedFormats)
	}
	return nil
}

// Validate ensures all parts of the config are valid.
func (conf *LEDConfig) Validate(path string) error {
	var errs error
	if conf.Pin == nil {
		errs = multierr.Append(errs, utils.NewConfigValidationFieldRequiredError(path, "pin"))
	}
	if conf.ActiveState == nil {
		errs = multierr.Append(errs, utils.NewConfigValidationFieldRequiredError(path, "active_state"))
	}
	return errs
}

// Validate ensures all parts of the config are valid.
func (conf *ButtonConfig) Validate(path string) error {
	var errs error
	if conf.Pin == nil {
		errs = multierr.Append(errs, utils.NewConfigValidationFieldRequiredError(path, "pin"))
	}
	if conf.Pull == nil {
		errs = multierr.Append(errs, utils.NewConfigValidationFieldRequiredError(path, "pull"))
	}
	return errs
}

// Validate ensures all parts of the config are valid.
func (conf *NeopixelConfig) Validate(path string) error {
	if conf.Pin == nil {
		return utils.NewConfigValidationFieldRequiredError(path, "pin")
	}
	return nil
}

// Descriptor validates the file's structure and converts it into a board descriptor.
func (bf *BoardFile) Descriptor() (board.Descriptor, error) {
	path := bf.Name
	if bf.Path != "" {
		path = bf.Path
	}
	if err := bf.Validate(path); err != nil {
		return board.Descriptor{}, err
	}

	d := board.Descriptor{
		Name:        bf.Name,
		Target:      bf.Target,
		LEDCount:    bf.LEDCount,
		ButtonCount: bf.ButtonCount,
		BLE: board.BLEIdentity{
			Manufacturer: bf.BLE.Manufacturer,
			Model:        bf.BLE.Model,
		},
		USB: board.USBIdentity{
			VID:        bf.USB.VID,
			UF2PID:     bf.USB.UF2PID,
			CDCOnlyPID: bf.USB.CDCOnlyPID,
		},
		UF2: board.UF2Metadata{
			ProductName: bf.UF2.ProductName,
			VolumeLabel: bf.UF2.VolumeLabel,
			BoardID:     bf.UF2.BoardID,
			IndexURL:    bf.UF2.IndexURL,
		},
		Features: board.Features{
			DisableUF2:        bf.Features.DisableUF2,
			SkipAppValidation: bf.Features.SkipAppValidation,
			BootloaderVersion: bf.Features.BootloaderVersion,
		},
	}
	for _, led := range bf.LEDs {
		d.LEDs = append(d.LEDs, board.LED{Pin: *led.Pin, ActiveState: *led.ActiveState})
	}
	for _, button := range bf.Buttons {
		d.Buttons = append(d.Buttons, board.Button{Pin: *button.Pin, Pull: *button.Pull})
	}
	if np := bf.Neopixel; np != nil {
		d.Neopixel = &board.Neopixel{Pin: *np.Pin, Count: np.Count, Brightness: np.Brightness}
	}
	return d, nil
}

// FromDescriptor renders a descriptor back into the file format.
func FromDescriptor(d board.Descriptor) *BoardFile {
	bf := &BoardFile{
		FormatVersion: "1.0",
		Name:          d.Name,
		Target:        d.Target,
		LEDCount:      d.LEDCount,
		ButtonCount:   d.ButtonCount,
		BLE:           BLEConfig{Manufacturer: d.BLE.Manufacturer, Model: d.BLE.Model},
		USB:           USBConfig{VID: d.USB.VID, UF2PID: d.USB.UF2PID, CDCOnlyPID: d.USB.CDCOnlyPID},
		UF2: UF2Config{
			ProductName: d.UF2.ProductName,
			VolumeLabel: d.UF2.VolumeLabel,
			BoardID:     d.UF2.BoardID,
			IndexURL:    d.UF2.IndexURL,
		},
		Features: FeaturesConfig{
			DisableUF2:        d.Features.DisableUF2,
			SkipAppValidation: d.Features.SkipAppValidation,
			BootloaderVersion: d.Features.BootloaderVersion,
		},
	}
	for _, led := range d.LEDs {
		pin, level := led.Pin, led.ActiveState
		bf.LEDs = append(bf.LEDs, LEDConfig{Pin: &pin, ActiveState: &level})
	}
	for _, button := range d.Buttons {
		pin, pull := button.Pin, button.Pull
		bf.Buttons = append(bf.Buttons, ButtonConfig{Pin: &pin, Pull: &pull})
	}
	if np := d.Neopixel; np != nil {
		pin := np.Pin
		bf.Neopixel = &NeopixelConfig{Pin: &pin, Count: np.Count, Brightness: np.Brightness}
	}
	return bf
}
