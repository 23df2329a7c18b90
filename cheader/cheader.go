// Package cheader emits the board.h header the C bootloader sources compile against.
package cheader

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"text/template"
	"unicode"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"periph.io/x/conn/v3/gpio"

	"github.com/nrfboot/boardcfg/board"
	"github.com/nrfboot/boardcfg/pinnum"
)

// FileName is the header's name inside a board directory.
const FileName = "board.h"

var ledMacros = []string{"LED_PRIMARY_PIN", "LED_SECONDARY_PIN"}

var pullMacros = map[gpio.Pull]string{
	gpio.PullUp:   "NRF_GPIO_PIN_PULLUP",
	gpio.PullDown: "NRF_GPIO_PIN_PULLDOWN",
	gpio.Float:    "NRF_GPIO_PIN_NOPULL",
}

type macro struct {
	Name  string
	Value string
}

type headerView struct {
	Guard      string
	Title      string
	LEDs       []macro
	LEDStateOn int
	Neopixel   *board.Neopixel
	Buttons    []macro
	ButtonPull string
	D          board.Descriptor
	Features   []macro
}

var funcs = template.FuncMap{
	"pin":   pinExpr,
	"hex4":  func(v uint16) string { return fmt.Sprintf("0x%04X", v) },
	"hex6":  func(v uint32) string { return fmt.Sprintf("0x%06X", v) },
	"quote": quoteC,
	"pad":   func(width int, s string) string { return fmt.Sprintf("%-*s", width, s) },
}

var headerTemplate = template.Must(template.New(FileName).Funcs(funcs).Parse(
	`// Generated by boardcfg for {{.Title}}. Do not edit.

#ifndef {{.Guard}}
#define {{.Guard}}

#define _PINNUM(port, pin)    ((port)*32 + (pin))

/*------------------------------------------------------------------*/
/* LED
 *------------------------------------------------------------------*/
#define {{pad 22 "LEDS_NUMBER"}}{{len .LEDs}}
{{- range .LEDs}}
#define {{pad 22 .Name}}{{.Value}}
{{- end}}
{{- if .LEDs}}
#define {{pad 22 "LED_STATE_ON"}}{{.LEDStateOn}}
{{- end}}
{{- with .Neopixel}}

#define {{pad 22 "LED_NEOPIXEL"}}{{pin .Pin}}
#define {{pad 22 "NEOPIXELS_NUMBER"}}{{.Count}}
#define {{pad 22 "BOARD_RGB_BRIGHTNESS"}}{{hex6 .Brightness}}
{{- end}}

/*------------------------------------------------------------------*/
/* BUTTON
 *------------------------------------------------------------------*/
#define {{pad 22 "BUTTONS_NUMBER"}}{{len .Buttons}}
{{- range .Buttons}}
#define {{pad 22 .Name}}{{.Value}}
{{- end}}
{{- if .Buttons}}
#define {{pad 22 "BUTTON_PULL"}}{{.ButtonPull}}
{{- end}}

/*------------------------------------------------------------------*/
/* BLE OTA
 *------------------------------------------------------------------*/
#define {{pad 22 "BLEDIS_MANUFACTURER"}}{{quote .D.BLE.Manufacturer}}
#define {{pad 22 "BLEDIS_MODEL"}}{{quote .D.BLE.Model}}

/*------------------------------------------------------------------*/
/* USB
 *------------------------------------------------------------------*/
#define {{pad 23 "USB_DESC_VID"}}{{hex4 .D.USB.VID}}
#define {{pad 23 "USB_DESC_UF2_PID"}}{{hex4 .D.USB.UF2PID}}
#define {{pad 23 "USB_DESC_CDC_ONLY_PID"}}{{hex4 .D.USB.DataPID}}

/*------------------------------------------------------------------*/
/* UF2 Bootloader Info
 *------------------------------------------------------------------*/
#define {{pad 23 "UF2_PRODUCT_NAME"}}{{quote .D.UF2.ProductName}}
#define {{pad 23 "UF2_VOLUME_LABEL"}}{{quote .D.UF2.VolumeLabel}}
#define {{pad 23 "UF2_BOARD_ID"}}{{quote .D.UF2.BoardID}}
{{- if .D.UF2.IndexURL}}
#define {{pad 23 "UF2_INDEX_URL"}}{{quote .D.UF2.IndexURL}}
{{- end}}
{{- if .Features}}

/*------------------------------------------------------------------*/
/* Bootloader Configuration
 *------------------------------------------------------------------*/
{{- range .Features}}
#define {{pad 24 .Name}}{{.Value}}
{{- end}}
{{- end}}

#endif // {{.Guard}}
`))

var nonIdent = regexp.MustCompile(`[^A-Z0-9]+`)

// Generate renders the descriptor as a board header. The descriptor must validate and
// must be expressible with the header's macro set: at most two LEDs sharing one active
// state and one pull for all buttons.
func Generate(d board.Descriptor) ([]byte, error) {
	if err := board.Validate(d); err != nil {
		return nil, errors.Wrapf(err, "cannot generate header for %q", d.Name)
	}
	view, err := newView(d)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := headerTemplate.Execute(&buf, view); err != nil {
		return nil, errors.Wrap(err, "cannot render header")
	}
	return buf.Bytes(), nil
}

func newView(d board.Descriptor) (*headerView, error) {
	if len(d.LEDs) > len(ledMacros) {
		return nil, errors.Errorf("board %q has %d leds, header supports %d", d.Name, len(d.LEDs), len(ledMacros))
	}
	if states := lo.Uniq(lo.Map(d.LEDs, func(l board.LED, _ int) gpio.Level { return l.ActiveState })); len(states) > 1 {
		return nil, errors.Errorf("board %q mixes led active states", d.Name)
	}
	pulls := lo.Uniq(lo.Map(d.Buttons, func(b board.Button, _ int) gpio.Pull { return b.Pull }))
	if len(pulls) > 1 {
		return nil, errors.Errorf("board %q mixes button pulls", d.Name)
	}
	// String macros and the title comment are single line C.
	for _, field := range []macro{
		{"ble.manufacturer", d.BLE.Manufacturer},
		{"ble.model", d.BLE.Model},
		{"uf2.product_name", d.UF2.ProductName},
		{"uf2.volume_label", d.UF2.VolumeLabel},
		{"uf2.board_id", d.UF2.BoardID},
		{"uf2.index_url", d.UF2.IndexURL},
	} {
		if strings.ContainsFunc(field.Value, unicode.IsControl) {
			return nil, errors.Errorf("board %q %s contains a control character", d.Name, field.Name)
		}
	}

	view := &headerView{
		Guard:    "_" + strings.Trim(nonIdent.ReplaceAllString(strings.ToUpper(d.Name), "_"), "_") + "_H",
		Title:    d.UF2.ProductName,
		Neopixel: d.Neopixel,
		D:        d,
	}
	for i, led := range d.LEDs {
		view.LEDs = append(view.LEDs, macro{ledMacros[i], pinExpr(led.Pin)})
		if led.ActiveState == gpio.High {
			view.LEDStateOn = 1
		}
	}
	for i, button := range d.Buttons {
		view.Buttons = append(view.Buttons, macro{fmt.Sprintf("BUTTON_%d", i+1), pinExpr(button.Pin)})
	}
	if len(pulls) == 1 {
		view.ButtonPull = pullMacros[pulls[0]]
	}
	if d.Features != (board.Features{}) {
		uf2 := 1
		if !d.Features.UF2Enabled() {
			uf2 = 0
		}
		validate := 0
		if d.Features.ValidateAppBeforeBoot() {
			validate = 1
		}
		view.Features = append(view.Features, macro{"CFG_UF2_BOOTLOADER", fmt.Sprint(uf2)})
		if v := d.Features.BootloaderVersion; v != 0 {
			view.Features = append(view.Features, macro{"CFG_BOOTLOADER_VERSION", fmt.Sprintf("0x%04X", v)})
		}
		view.Features = append(view.Features, macro{"BOOT_VALIDATE_APP", fmt.Sprint(validate)})
	}
	return view, nil
}

func pinExpr(id pinnum.PinID) string {
	return fmt.Sprintf("_PINNUM(%d, %d)", id.Port(), id.Pin())
}

func quoteC(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}
