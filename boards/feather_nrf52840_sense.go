package boards

import (
	"periph.io/x/conn/v3/gpio"

	"github.com/nrfboot/boardcfg/board"
	"github.com/nrfboot/boardcfg/pinnum"
)

// FeatherNRF52840Sense is the Adafruit Feather nRF52840 Sense.
var FeatherNRF52840Sense = board.Descriptor{
	Name:   "feather_nrf52840_sense",
	Target: pinnum.NRF52840.Name,

	LEDCount: 2,
	LEDs: []board.LED{
		{Pin: pinnum.MustPin(pinnum.NRF52840, 1, 9), ActiveState: gpio.High},
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
		{Pin: pinnum.MustPin(pinnum.NRF52840, 0, 10), Pull: gpio.PullUp},
	},

	BLE: board.BLEIdentity{
		Manufacturer: "Adafruit Industries",
		Model:        "Feather nRF52840 Sense",
	},
	USB: board.USBIdentity{
		VID:        0x239A,
		UF2PID:     0x0087,
		CDCOnlyPID: 0x0088,
	},
	UF2: board.UF2Metadata{
		ProductName: "Adafruit Feather nRF52840 Sense",
		VolumeLabel: "FTHRSNSBOOT",
		BoardID:     "nRF52840-Feather-Sense",
		IndexURL:    "https://www.adafruit.com/product/4516",
	},
	Features: board.Features{
		// Development images: boot without validating the application so a rollback
		// can not be forced.
		SkipAppValidation: true,
		BootloaderVersion: 0x0001,
	},
}
