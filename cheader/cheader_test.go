package cheader

import (
	"strings"
	"testing"

	"go.viam.com/test"
	"periph.io/x/conn/v3/gpio"

	"github.com/nrfboot/boardcfg/board"
	"github.com/nrfboot/boardcfg/boards"
	"github.com/nrfboot/boardcfg/pinnum"
)

func TestGenerateFeatherSense(t *testing.T) {
	out, err := Generate(boards.FeatherNRF52840Sense)
	test.That(t, err, test.ShouldBeNil)
	h := string(out)

	for _, line := range []string{
		"#ifndef _FEATHER_NRF52840_SENSE_H",
		"#define _PINNUM(port, pin)    ((port)*32 + (pin))",
		"#define LEDS_NUMBER           2",
		"#define LED_PRIMARY_PIN       _PINNUM(1, 9)",
		"#define LED_SECONDARY_PIN     _PINNUM(1, 10)",
		"#define LED_STATE_ON          1",
		"#define LED_NEOPIXEL          _PINNUM(0, 16)",
		"#define NEOPIXELS_NUMBER      1",
		"#define BOARD_RGB_BRIGHTNESS  0x040404",
		"#define BUTTONS_NUMBER        2",
		"#define BUTTON_1              _PINNUM(1, 2)",
		"#define BUTTON_2              _PINNUM(0, 10)",
		"#define BUTTON_PULL           NRF_GPIO_PIN_PULLUP",
		`#define BLEDIS_MANUFACTURER   "Adafruit Industries"`,
		"#define USB_DESC_VID           0x239A",
		"#define USB_DESC_UF2_PID       0x0087",
		"#define USB_DESC_CDC_ONLY_PID  0x0088",
		`#define UF2_VOLUME_LABEL       "FTHRSNSBOOT"`,
		`#define UF2_BOARD_ID           "nRF52840-Feather-Sense"`,
		`#define UF2_INDEX_URL          "https://www.adafruit.com/product/4516"`,
		"#define CFG_UF2_BOOTLOADER      1",
		"#define CFG_BOOTLOADER_VERSION  0x0001",
		"#define BOOT_VALIDATE_APP       0",
		"#endif // _FEATHER_NRF52840_SENSE_H",
	} {
		test.That(t, h, test.ShouldContainSubstring, line+"\n")
	}
	test.That(t, h, test.ShouldNotContainSubstring, "\n\n\n")

	again, err := Generate(boards.FeatherNRF52840Sense)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(again), test.ShouldEqual, h)
}

func TestGenerateSingleModeBoard(t *testing.T) {
	out, err := Generate(boards.OmnimoNRF52840)
	test.That(t, err, test.ShouldBeNil)
	h := string(out)
	test.That(t, h, test.ShouldContainSubstring, "#define BUTTON_2              _PINNUM(1, 7)\n")
	test.That(t, h, test.ShouldContainSubstring, "#define USB_DESC_UF2_PID       0xCECE\n")
	test.That(t, h, test.ShouldContainSubstring, "#define USB_DESC_CDC_ONLY_PID  0xCECE\n")
	test.That(t, h, test.ShouldNotContainSubstring, "CFG_UF2_BOOTLOADER")
	test.That(t, h, test.ShouldNotContainSubstring, "Bootloader Configuration")
}

func TestGenerateRejects(t *testing.T) {
	d := boards.FeatherNRF52840Sense.Clone()
	d.LEDCount = 3
	_, err := Generate(d)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, board.HasKind(err, board.LEDCountMismatch), test.ShouldBeTrue)

	d = boards.FeatherNRF52840Sense.Clone()
	d.LEDs[1].ActiveState = gpio.Low
	_, err = Generate(d)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "mixes led active states")

	d = boards.FeatherNRF52840Sense.Clone()
	d.Buttons[0].Pull = gpio.PullDown
	_, err = Generate(d)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "mixes button pulls")

	d = boards.FeatherNRF52840Sense.Clone()
	d.LEDs = append(d.LEDs, board.LED{Pin: pinnum.Number(0, 3), ActiveState: gpio.High})
	d.LEDCount = 3
	_, err = Generate(d)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "header supports 2")

	d = boards.FeatherNRF52840Sense.Clone()
	d.UF2.ProductName = "Feather\n#define LEDS_NUMBER 9"
	_, err = Generate(d)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "uf2.product_name contains a control character")

	d = boards.FeatherNRF52840Sense.Clone()
	d.BLE.Model = "Feather\x00Sense"
	_, err = Generate(d)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, board.HasKind(err, board.BLEStringCharset), test.ShouldBeTrue)

	d = boards.FeatherNRF52840Sense.Clone()
	d.BLE.Manufacturer = `Adafruit "Industries"`
	h, err := Generate(d)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(h), test.ShouldContainSubstring, `"Adafruit \"Industries\""`)
}

func TestGenerateDisabledUF2(t *testing.T) {
	d := boards.OmnimoNRF52840.Clone()
	d.Features.DisableUF2 = true
	out, err := Generate(d)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(out), test.ShouldContainSubstring, "#define CFG_UF2_BOOTLOADER      0\n")
	test.That(t, string(out), test.ShouldContainSubstring, "#define BOOT_VALIDATE_APP       1\n")
	test.That(t, string(out), test.ShouldNotContainSubstring, "CFG_BOOTLOADER_VERSION")
}

func TestDiff(t *testing.T) {
	generated, err := Generate(boards.FeatherNRF52840Sense)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, Diff(string(generated), string(generated)), test.ShouldBeEmpty)

	existing := strings.Replace(string(generated), "0x0087", "0x0045", 1)
	diff := Diff(existing, string(generated))
	test.That(t, diff, test.ShouldContainSubstring, "-#define USB_DESC_UF2_PID       0x0045\n")
	test.That(t, diff, test.ShouldContainSubstring, "+#define USB_DESC_UF2_PID       0x0087\n")
	test.That(t, diff, test.ShouldContainSubstring, " #define USB_DESC_VID           0x239A\n")

	test.That(t, Diff("a", "b"), test.ShouldEqual, "-a\n+b\n")
}
