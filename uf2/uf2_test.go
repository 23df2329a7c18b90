package uf2

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/nrfboot/boardcfg/boards"
	"github.com/nrfboot/boardcfg/pinnum"
)

func TestInfoFile(t *testing.T) {
	info := InfoFile(boards.FeatherNRF52840Sense)
	test.That(t, string(info), test.ShouldEqual,
		"UF2 Bootloader 0.1\r\nModel: Adafruit Feather nRF52840 Sense\r\nBoard-ID: nRF52840-Feather-Sense\r\n")

	info = InfoFile(boards.OmnimoNRF52840)
	test.That(t, string(info), test.ShouldStartWith, "UF2 Bootloader\r\nModel: Omnimo nRF52840\r\n")
}

func TestIndexHTML(t *testing.T) {
	page, err := IndexHTML(boards.FeatherNRF52840Sense)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(page), test.ShouldContainSubstring, "location.replace(")
	test.That(t, string(page), test.ShouldContainSubstring, "www.adafruit.com")

	d := boards.FeatherNRF52840Sense.Clone()
	d.UF2.IndexURL = ""
	_, err = IndexHTML(d)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestCheckBoardID(t *testing.T) {
	d := boards.FeatherNRF52840Sense
	test.That(t, CheckBoardID(d, "nRF52840-Feather-Sense"), test.ShouldBeNil)

	err := CheckBoardID(d, "nRF52840-Omnimo")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, IsMismatchError(errors.Wrap(err, "flash")), test.ShouldBeTrue)
	var mismatch *MismatchError
	test.That(t, errors.As(err, &mismatch), test.ShouldBeTrue)
	test.That(t, mismatch.Want, test.ShouldEqual, "nRF52840-Feather-Sense")
	test.That(t, mismatch.Got, test.ShouldEqual, "nRF52840-Omnimo")

	// case matters
	test.That(t, CheckBoardID(d, "nrf52840-feather-sense"), test.ShouldNotBeNil)
}

func TestFamilyID(t *testing.T) {
	family, err := FamilyID(boards.OmnimoNRF52840)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, family, test.ShouldEqual, pinnum.NRF52840.UF2FamilyID)

	d := boards.OmnimoNRF52840.Clone()
	d.Target = "esp32"
	_, err = FamilyID(d)
	test.That(t, err, test.ShouldNotBeNil)
}

func writeImage(t *testing.T, family uint32, blocks int) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	for i := 0; i < blocks; i++ {
		b, err := NewBlock(family, 0x26000+uint32(i*PayloadSize), uint32(i), uint32(blocks), bytes.Repeat([]byte{0xAA}, PayloadSize))
		test.That(t, err, test.ShouldBeNil)
		n, err := b.WriteTo(&buf)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, n, test.ShouldEqual, BlockSize)
	}
	return &buf
}

func TestCheckImage(t *testing.T) {
	d := boards.FeatherNRF52840Sense

	summary, err := CheckImage(d, writeImage(t, pinnum.NRF52840.UF2FamilyID, 3))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, summary, test.ShouldResemble, ImageSummary{Blocks: 3, Payload: 3 * PayloadSize, FamilyID: 0xADA52840})

	_, err = CheckImage(d, writeImage(t, pinnum.NRF52833.UF2FamilyID, 1))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "0x621E937A")

	_, err = CheckImage(d, &bytes.Buffer{})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "no flash blocks")

	img := writeImage(t, pinnum.NRF52840.UF2FamilyID, 1)
	_, err = CheckImage(d, bytes.NewReader(img.Bytes()[:100]))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "truncated")

	raw := writeImage(t, pinnum.NRF52840.UF2FamilyID, 1).Bytes()
	raw[0] = 0
	_, err = CheckImage(d, bytes.NewReader(raw))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "bad uf2 magic")
}

func TestNewBlockTooLarge(t *testing.T) {
	_, err := NewBlock(0, 0, 0, 1, make([]byte, PayloadSize+1))
	test.That(t, err, test.ShouldNotBeNil)
}
