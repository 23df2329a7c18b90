package config

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.viam.com/test"
	"periph.io/x/conn/v3/gpio"

	"github.com/nrfboot/boardcfg/boards"
	"github.com/nrfboot/boardcfg/logging"
	"github.com/nrfboot/boardcfg/pinnum"
)

func TestReadFeatherSense(t *testing.T) {
	logger := logging.NewTestLogger(t)
	bf, err := Read(context.Background(), "testdata/feather_nrf52840_sense.json5", logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, bf.Path, test.ShouldEqual, "testdata/feather_nrf52840_sense.json5")
	test.That(t, bf.USB.VID, test.ShouldEqual, uint16(0x239A))
	test.That(t, *bf.LEDs[0].Pin, test.ShouldEqual, pinnum.PinID(41))

	d, err := bf.Descriptor()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cmp.Diff(boards.FeatherNRF52840Sense, d), test.ShouldBeEmpty)
}

func TestReadEnvSubstitution(t *testing.T) {
	t.Setenv("OMNIMO_VENDOR", "eAFAQ")
	logger := logging.NewTestLogger(t)

	d, err := ReadDescriptor(context.Background(), "testdata/omnimo_nrf52840.json5", logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, d.BLE.Manufacturer, test.ShouldEqual, "eAFAQ")
	test.That(t, d.Buttons[1].Pin, test.ShouldEqual, pinnum.Number(1, 7))
	test.That(t, cmp.Diff(boards.OmnimoNRF52840, d), test.ShouldBeEmpty)
}

func TestFromReader(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewTestLogger(t)

	_, err := FromReader(ctx, "somepath", strings.NewReader(""), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "cannot parse board file")

	_, err = FromReader(ctx, "somepath", strings.NewReader(`{name: "x", colour: "red"}`), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "colour")

	bf, err := FromReader(ctx, "somepath", strings.NewReader(`{}`), logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, bf, test.ShouldResemble, &BoardFile{Path: "somepath"})

	_, err = bf.Descriptor()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `"format_version" is required`)
	test.That(t, err.Error(), test.ShouldContainSubstring, `"name" is required`)
	test.That(t, err.Error(), test.ShouldContainSubstring, `"target" is required`)

	ctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = FromReader(ctx, "somepath", strings.NewReader(`{}`), logger)
	test.That(t, err, test.ShouldBeError, context.Canceled)
}

func TestDecodeHooks(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewTestLogger(t)

	bf, err := FromReader(ctx, "hooks", strings.NewReader(`{
		leds: [{pin: "p0.13", active_state: "LOW"}, {pin: 46, active_state: true}],
		buttons: [{pin: "1.02", pull: "down"}, {pin: "P0.10", pull: "none"}],
		usb: {vid: 4617, uf2_pid: "0xcece"},
	}`), logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, *bf.LEDs[0].Pin, test.ShouldEqual, pinnum.Number(0, 13))
	test.That(t, *bf.LEDs[0].ActiveState, test.ShouldEqual, gpio.Low)
	test.That(t, *bf.LEDs[1].Pin, test.ShouldEqual, pinnum.PinID(46))
	test.That(t, *bf.LEDs[1].ActiveState, test.ShouldEqual, gpio.High)
	test.That(t, *bf.Buttons[0].Pin, test.ShouldEqual, pinnum.Number(1, 2))
	test.That(t, *bf.Buttons[0].Pull, test.ShouldEqual, gpio.PullDown)
	test.That(t, *bf.Buttons[1].Pull, test.ShouldEqual, gpio.Float)
	test.That(t, bf.USB.VID, test.ShouldEqual, uint16(0x1209))
	test.That(t, bf.USB.UF2PID, test.ShouldEqual, uint16(0xCECE))

	for _, tc := range []struct {
		doc  string
		want string
	}{
		{`{leds: [{pin: "P0.32"}]}`, "pin out of range"},
		{`{leds: [{pin: "PA.1"}]}`, "invalid port"},
		{`{leds: [{active_state: "bright"}]}`, "invalid active_state"},
		{`{buttons: [{pull: "sideways"}]}`, "invalid pull"},
		{`{usb: {vid: "0x1FFFF"}}`, "invalid uint16 value"},
		{`{neopixel: {brightness: "0xGG0000"}}`, "invalid uint32 value"},
		{`{leds: [{pin: "P2048.9"}]}`, "pin out of range"},
		{`{leds: [{pin: 65545}]}`, "PinID value 65545 out of range"},
		{`{usb: {vid: 74138}}`, "uint16 value 74138 out of range"},
		{`{usb: {vid: -1}}`, "uint16 value -1 out of range"},
		{`{usb: {uf2_pid: 52942.5}}`, "uint16 value 52942.5 is not a whole number"},
		{`{neopixel: {brightness: 4294967296}}`, "uint32 value 4294967296 out of range"},
		{`{buttons: [{pull: 256}]}`, "out of range"},
		{`{led_count: 1.5}`, "int value 1.5 is not a whole number"},
	} {
		t.Run(tc.want, func(t *testing.T) {
			_, err := FromReader(ctx, "hooks", strings.NewReader(tc.doc), logger)
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.want)
		})
	}
}

func TestFromReaderComments(t *testing.T) {
	bf, err := FromReader(context.Background(), "comments", strings.NewReader(`// board notes
{
  // identity
  name: "x",
  usb: { vid: "0x239A", uf2_pid: 135, },
  // trailing
  leds: [
    { pin: 42 },
  ],
}
`), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, bf.Name, test.ShouldEqual, "x")
	test.That(t, bf.USB.VID, test.ShouldEqual, uint16(0x239A))
	test.That(t, bf.USB.UF2PID, test.ShouldEqual, uint16(0x0087))
	test.That(t, *bf.LEDs[0].Pin, test.ShouldEqual, pinnum.Number(1, 10))
}

func TestBoardFileValidate(t *testing.T) {
	logger := logging.NewTestLogger(t)
	bf, err := Read(context.Background(), "testdata/bad/missing_fields.json5", logger)
	test.That(t, err, test.ShouldBeNil)

	err = bf.Validate("board")
	test.That(t, err, test.ShouldNotBeNil)
	msg := err.Error()
	test.That(t, msg, test.ShouldContainSubstring, "format_version 2.1.0 is not supported")
	test.That(t, msg, test.ShouldContainSubstring, `"name" is required`)
	test.That(t, msg, test.ShouldContainSubstring, `"target" is required`)
	test.That(t, msg, test.ShouldContainSubstring, `error validating "board.leds.0": "active_state" is required`)
	test.That(t, msg, test.ShouldContainSubstring, `error validating "board.buttons.0": "pin" is required`)

	bf = FromDescriptor(boards.FeatherNRF52840Sense)
	bf.FormatVersion = "one"
	err = bf.Validate("board")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `invalid format_version "one"`)

	bf.FormatVersion = "1.4.2"
	test.That(t, bf.Validate("board"), test.ShouldBeNil)
}

func TestFromDescriptorRoundTrip(t *testing.T) {
	for _, want := range boards.All() {
		t.Run(want.Name, func(t *testing.T) {
			got, err := FromDescriptor(want).Descriptor()
			test.That(t, err, test.ShouldBeNil)
			test.That(t, cmp.Diff(want, got), test.ShouldBeEmpty)
		})
	}
}

func TestReadDir(t *testing.T) {
	t.Setenv("OMNIMO_VENDOR", "eAFAQ")
	logger, logs := logging.NewObservedTestLogger(t)

	descs, err := ReadDir(context.Background(), "testdata", logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, descs, test.ShouldHaveLength, 2)
	test.That(t, descs[0].Name, test.ShouldEqual, "feather_nrf52840_sense")
	test.That(t, descs[1].Name, test.ShouldEqual, "omnimo_nrf52840")
	test.That(t, logs.FilterMessage("read board file").Len(), test.ShouldEqual, 2)

	descs, err = ReadDir(context.Background(), "testdata/bad", logger)
	test.That(t, descs, test.ShouldBeEmpty)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "missing_fields.json5")
	test.That(t, err.Error(), test.ShouldContainSubstring, "unknown_key.json5")

	_, err = ReadDir(context.Background(), "testdata/nope", logger)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSchema(t *testing.T) {
	out, err := json.Marshal(Schema())
	test.That(t, err, test.ShouldBeNil)
	for _, key := range []string{"format_version", "volume_label", "cdc_only_pid", "active_state"} {
		test.That(t, string(out), test.ShouldContainSubstring, key)
	}
	test.That(t, string(out), test.ShouldNotContainSubstring, `"Path"`)
}
