package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.viam.com/utils"
	"periph.io/x/conn/v3/gpio"

	"github.com/nrfboot/boardcfg/board"
	"github.com/nrfboot/boardcfg/boards"
	"github.com/nrfboot/boardcfg/cheader"
	"github.com/nrfboot/boardcfg/config"
	"github.com/nrfboot/boardcfg/logging"
	"github.com/nrfboot/boardcfg/registry"
	"github.com/nrfboot/boardcfg/uf2"
)

func cliLogger() logging.Logger {
	return logging.Global().Sublogger("cli")
}

// loadRegistry returns the built-in registry, extended with the board files in
// --boards-dir when it is set.
func loadRegistry(c *cli.Context, logger logging.Logger) (*registry.Registry, error) {
	dir := c.String(boardsDirFlag)
	if dir == "" {
		return boards.Registry(), nil
	}
	descs, err := config.ReadDir(c.Context, dir, logger)
	if err != nil {
		return nil, err
	}
	builder := registry.NewBuilder(logger.Sublogger("registry"))
	for _, d := range append(boards.All(), descs...) {
		if err := builder.Register(d); err != nil {
			return nil, err
		}
	}
	return builder.Build(), nil
}

func resolveArg(c *cli.Context) (board.Descriptor, error) {
	name := c.Args().First()
	if name == "" {
		return board.Descriptor{}, errors.New("a board name is required")
	}
	reg, err := loadRegistry(c, cliLogger())
	if err != nil {
		return board.Descriptor{}, err
	}
	return reg.Resolve(name)
}

// ListAction is the corresponding Action for 'list'.
func ListAction(c *cli.Context) error {
	reg, err := loadRegistry(c, cliLogger())
	if err != nil {
		return err
	}
	t := table.NewWriter()
	t.SetOutputMirror(c.App.Writer)
	t.AppendHeader(table.Row{"Name", "Target", "Board ID", "USB", "LEDs", "Buttons", "Label"})
	for _, d := range reg.Descriptors() {
		t.AppendRow(table.Row{
			d.Name,
			d.Target,
			d.UF2.BoardID,
			usbString(d.USB),
			d.LEDCount,
			d.ButtonCount,
			d.UF2.VolumeLabel,
		})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
	return nil
}

func usbString(u board.USBIdentity) string {
	s := fmt.Sprintf("%04X:%04X", u.VID, u.UF2PID)
	if u.DualMode() {
		s += fmt.Sprintf(" (cdc %04X)", u.CDCOnlyPID)
	}
	return s
}

func levelString(l gpio.Level) string {
	if l == gpio.High {
		return "active high"
	}
	return "active low"
}

// ShowAction is the corresponding Action for 'show'.
func ShowAction(c *cli.Context) error {
	d, err := resolveArg(c)
	if err != nil {
		return err
	}
	t := table.NewWriter()
	t.SetOutputMirror(c.App.Writer)
	t.SetTitle(d.Name)
	t.AppendRow(table.Row{"target", d.Target})
	for i, led := range d.LEDs {
		t.AppendRow(table.Row{fmt.Sprintf("led %d", i+1), fmt.Sprintf("%s %s", led.Pin, levelString(led.ActiveState))})
	}
	if np := d.Neopixel; np != nil {
		t.AppendRow(table.Row{"neopixel", fmt.Sprintf("%s x%d brightness 0x%06X", np.Pin, np.Count, np.Brightness)})
	}
	for i, button := range d.Buttons {
		t.AppendRow(table.Row{fmt.Sprintf("button %d", i+1), fmt.Sprintf("%s pull %s", button.Pin, button.Pull)})
	}
	t.AppendSeparator()
	t.AppendRow(table.Row{"ble manufacturer", d.BLE.Manufacturer})
	t.AppendRow(table.Row{"ble model", d.BLE.Model})
	t.AppendRow(table.Row{"usb", usbString(d.USB)})
	t.AppendSeparator()
	t.AppendRow(table.Row{"uf2 product", d.UF2.ProductName})
	t.AppendRow(table.Row{"uf2 label", d.UF2.VolumeLabel})
	t.AppendRow(table.Row{"uf2 board id", d.UF2.BoardID})
	if d.UF2.IndexURL != "" {
		t.AppendRow(table.Row{"uf2 index", d.UF2.IndexURL})
	}
	t.AppendSeparator()
	t.AppendRow(table.Row{"uf2 drive", d.Features.UF2Enabled()})
	t.AppendRow(table.Row{"validate app", d.Features.ValidateAppBeforeBoot()})
	if v := d.Features.BootloaderVersion; v != 0 {
		t.AppendRow(table.Row{"bootloader version", fmt.Sprintf("0x%04X", v)})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
	return nil
}

// HeaderAction is the corresponding Action for 'header'.
func HeaderAction(c *cli.Context) error {
	d, err := resolveArg(c)
	if err != nil {
		return err
	}
	generated, err := cheader.Generate(d)
	if err != nil {
		return err
	}

	if path := c.Path(checkFlag); path != "" {
		existing, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, "cannot read header %q", path)
		}
		if diff := cheader.Diff(string(existing), string(generated)); diff != "" {
			printf(c.App.Writer, "%s", strings.TrimSuffix(diff, "\n"))
			return errors.Errorf("%s is out of date for board %q", path, d.Name)
		}
		okf(c.App.Writer, "%s matches board %q", path, d.Name)
		return nil
	}

	if path := c.Path(outFlag); path != "" {
		//nolint:gosec
		if err := os.WriteFile(path, generated, 0o644); err != nil {
			return errors.Wrapf(err, "cannot write header %q", path)
		}
		cliLogger().Infow("wrote header", "board", d.Name, "path", path)
		return nil
	}
	_, err = c.App.Writer.Write(generated)
	return err
}

// InfoAction is the corresponding Action for 'info'.
func InfoAction(c *cli.Context) error {
	d, err := resolveArg(c)
	if err != nil {
		return err
	}
	out := uf2.InfoFile(d)
	if c.Bool(indexFlag) {
		if out, err = uf2.IndexHTML(d); err != nil {
			return err
		}
	}
	_, err = c.App.Writer.Write(out)
	return err
}

// CheckImageAction is the corresponding Action for 'check-image'.
func CheckImageAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return errors.New("usage: check-image <board> <file.uf2>")
	}
	d, err := resolveArg(c)
	if err != nil {
		return err
	}
	path := c.Args().Get(1)
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "cannot open image %q", path)
	}
	defer utils.UncheckedErrorFunc(f.Close)
	summary, err := uf2.CheckImage(d, f)
	if err != nil {
		return errors.Wrapf(err, "image %q", path)
	}
	okf(c.App.Writer, "%s: %d blocks, %d bytes for family 0x%08X", path, summary.Blocks, summary.Payload, summary.FamilyID)
	return nil
}

// SchemaAction is the corresponding Action for 'schema'.
func SchemaAction(c *cli.Context) error {
	out, err := json.MarshalIndent(config.Schema(), "", "  ")
	if err != nil {
		return err
	}
	printf(c.App.Writer, "%s", out)
	return nil
}
