package boards

import (
	"periph.io/x/conn/v3/gpio"

	"github.com/nrfboot/boardcfg/board"
	"github.com/nrfboot/boardcfg/pinnum"
)

// OmnimoNRF52840 is the eAFAQ Omnimo nRF52840.
var OmnimoNRF52840 = board.Descriptor{
	Name:   "omnimo_nrf52840",
	Target: pinnum.NRF52840.Name,

	LEDCount: 2,
	LEDs: []board.LED{
		{Pin: pinnum.MustPin(pinnum.NRF52840, 1, 15), ActiveState: gpio.High},
		{Pin: pinnum.MustPin(pinnum.NRF52840, 1, 10), ActiveState: gpio.High},
	},
	Neopixel: &board.Neopixel{
		Pin:        pinnum.MustPin(pinnum.NRF52840, 0, 16),
		Count:      1,
		Brightness: 0x040404,
	},

	ButtonCount: 2,
	Buttons: []board.Button{
		{Pin: pinnum.MustPin(pinnum.NRF52840, 1, 2), Pull: gpio.PullUp},
		{Pin: pinnum.MustPin(pinnum.NRF52840, 1, 7), Pull: gpio.PullUp},
	},

	BLE: board.BLEIdentity{
		Manufacturer: "eAFAQ",
		Model:        "OMNIMO nRF52840",
	},
	// Single USB personality; the VID/PID pair is shared with the pca10056 dev kit.
	USB: board.USBIdentity{
		VID:    0x1209,
		UF2PID: 0xCECE,
	},
	UF2: board.UF2Metadata{
		ProductName: "Omnimo nRF52840",
		VolumeLabel: "OMNIn52BOOT",
		BoardID:     "nRF52840-Omnimo",
		IndexURL:    "https://www.crowdsupply.com/eafaq/omnimo-nrf52840",
	},
}
