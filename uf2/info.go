// Package uf2 renders the files the bootloader exposes on its UF2 drive and checks
// images and board ids against a descriptor.
package uf2

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/pkg/errors"

	"github.com/nrfboot/boardcfg/board"
)

// File names on the drive.
const (
	InfoFileName  = "INFO_UF2.TXT"
	IndexFileName = "INDEX.HTM"
)

// InfoFile returns the body of INFO_UF2.TXT. Lines end in CRLF.
func InfoFile(d board.Descriptor) []byte {
	header := "UF2 Bootloader"
	if v := d.Features.BootloaderVersion; v != 0 {
		header += fmt.Sprintf(" %d.%d", v>>8, v&0xFF)
	}
	lines := []string{
		header,
		"Model: " + d.UF2.ProductName,
		"Board-ID: " + d.UF2.BoardID,
	}
	return []byte(strings.Join(lines, "\r\n") + "\r\n")
}

var indexTemplate = template.Must(template.New("index").Parse(`<!doctype html>
<html><body><script>
location.replace({{.}});
</script></body></html>
`))

// IndexHTML returns INDEX.HTM, a page that redirects to the board's product page.
func IndexHTML(d board.Descriptor) ([]byte, error) {
	if d.UF2.IndexURL == "" {
		return nil, errors.Errorf("board %q has no index url", d.Name)
	}
	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, d.UF2.IndexURL); err != nil {
		return nil, errors.Wrap(err, "cannot render index page")
	}
	return buf.Bytes(), nil
}
