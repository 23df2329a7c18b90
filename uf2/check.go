package uf2

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/nrfboot/boardcfg/board"
)

// A MismatchError is returned when an update package was built for another board.
type MismatchError struct {
	Board string
	Want  string
	Got   string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("board %q expects board id %q, package is for %q", e.Board, e.Want, e.Got)
}

// CheckBoardID compares the board id an update package declares with the descriptor's.
// Only an exact match is compatible.
func CheckBoardID(d board.Descriptor, packageBoardID string) error {
	if packageBoardID != d.UF2.BoardID {
		return &MismatchError{Board: d.Name, Want: d.UF2.BoardID, Got: packageBoardID}
	}
	return nil
}

// IsMismatchError returns whether err is, or wraps, a *MismatchError.
func IsMismatchError(err error) bool {
	var mismatch *MismatchError
	return errors.As(err, &mismatch)
}

// FamilyID returns the UF2 family id of the descriptor's MCU.
func FamilyID(d board.Descriptor) (uint32, error) {
	t, ok := d.LookupTarget()
	if !ok {
		return 0, errors.Errorf("board %q has unknown target %q", d.Name, d.Target)
	}
	return t.UF2FamilyID, nil
}
