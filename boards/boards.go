// Package boards is the built-in board table and the build-time board selection.
//
// The board a firmware image is configured for is chosen once, when the image is built:
//
//	go build -ldflags "-X github.com/nrfboot/boardcfg/boards.BoardName=feather_nrf52840_sense"
//
// Selected resolves that key the first time it is called and hands out copies of the
// same descriptor for the life of the process.
package boards

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/nrfboot/boardcfg/board"
	"github.com/nrfboot/boardcfg/logging"
	"github.com/nrfboot/boardcfg/registry"
)

// BoardName is the build selection key. It is replaced by LD flags.
var BoardName = ""

// ErrNoBoardSelected is returned by Selected when the image was built without a board.
var ErrNoBoardSelected = errors.New("no board selected at build time")

// All lists every built-in descriptor.
func All() []board.Descriptor {
	return []board.Descriptor{
		FeatherNRF52840Sense,
		OmnimoNRF52840,
	}
}

var builtin = sync.OnceValue(func() *registry.Registry {
	return registry.MustBuild(logging.Global().Sublogger("boards"), All()...)
})

// Registry returns the registry of built-in boards. It is constructed, and every built-in
// descriptor validated, on first use.
func Registry() *registry.Registry {
	return builtin()
}

var selected = sync.OnceValues(func() (board.Descriptor, error) {
	return selectBoard(Registry(), BoardName)
})

func selectBoard(r *registry.Registry, name string) (board.Descriptor, error) {
	if name == "" {
		return board.Descriptor{}, errors.Wrapf(ErrNoBoardSelected, "known boards: %v", r.Names())
	}
	return r.Resolve(name)
}

// Selected returns the descriptor chosen by BoardName. The key is resolved exactly once.
func Selected() (board.Descriptor, error) {
	d, err := selected()
	if err != nil {
		return board.Descriptor{}, err
	}
	return d.Clone(), nil
}
