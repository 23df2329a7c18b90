package uf2

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/nrfboot/boardcfg/board"
)

// Block magic numbers.
const (
	MagicStart0 = 0x0A324655
	MagicStart1 = 0x9E5D5157
	MagicEnd    = 0x0AB16F30
)

// Block flags.
const (
	FlagNotMainFlash  = 0x00000001
	FlagFileContainer = 0x00001000
	FlagFamilyID      = 0x00002000
)

// BlockSize is the size of one UF2 block on the wire.
const BlockSize = 512

// PayloadSize is the payload every block carries in practice.
const PayloadSize = 256

// A Block is one 512 byte UF2 record.
type Block struct {
	Magic0   uint32
	Magic1   uint32
	Flags    uint32
	Addr     uint32
	Len      uint32
	Seq      uint32
	Total    uint32
	FamilyID uint32
	Data     [476]byte
	Magic2   uint32
}

// HasFamily reports whether the block carries a family id.
func (b *Block) HasFamily() bool {
	return b.Flags&FlagFamilyID != 0
}

// ReadBlock reads one block from r, returning io.EOF at a clean end of stream.
func ReadBlock(r io.Reader) (*Block, error) {
	var b Block
	if err := binary.Read(r, binary.LittleEndian, &b); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, errors.Wrap(err, "truncated uf2 block")
		}
		return nil, err
	}
	if b.Magic0 != MagicStart0 || b.Magic1 != MagicStart1 || b.Magic2 != MagicEnd {
		return nil, errors.Errorf("bad uf2 magic at block %d", b.Seq)
	}
	if b.Len > uint32(len(b.Data)) {
		return nil, errors.Errorf("uf2 block %d payload length %d too large", b.Seq, b.Len)
	}
	return &b, nil
}

// An ImageSummary describes a UF2 image that passed CheckImage.
type ImageSummary struct {
	Blocks   int
	Payload  int
	FamilyID uint32
}

// CheckImage reads a whole UF2 image and rejects it if any flash block names a family
// other than the descriptor's MCU. Blocks without a family id are accepted, as the
// bootloader does.
func CheckImage(d board.Descriptor, r io.Reader) (ImageSummary, error) {
	family, err := FamilyID(d)
	if err != nil {
		return ImageSummary{}, err
	}
	summary := ImageSummary{FamilyID: family}
	for {
		b, err := ReadBlock(r)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return summary, err
		}
		if b.Flags&FlagNotMainFlash != 0 {
			continue
		}
		if b.HasFamily() && b.FamilyID != family {
			return summary, errors.Errorf(
				"uf2 block %d is for family 0x%08X, board %q needs 0x%08X", b.Seq, b.FamilyID, d.Name, family)
		}
		summary.Blocks++
		summary.Payload += int(b.Len)
	}
	if summary.Blocks == 0 {
		return summary, errors.New("uf2 image has no flash blocks")
	}
	return summary, nil
}

// NewBlock returns a flash block for the given family holding payload.
func NewBlock(family, addr, seq, total uint32, payload []byte) (*Block, error) {
	if len(payload) > PayloadSize {
		return nil, errors.Errorf("payload of %d bytes exceeds %d", len(payload), PayloadSize)
	}
	b := &Block{
		Magic0:   MagicStart0,
		Magic1:   MagicStart1,
		Flags:    FlagFamilyID,
		Addr:     addr,
		Len:      uint32(len(payload)),
		Seq:      seq,
		Total:    total,
		FamilyID: family,
		Magic2:   MagicEnd,
	}
	copy(b.Data[:], payload)
	return b, nil
}

// WriteTo writes the block in wire format.
func (b *Block) WriteTo(w io.Writer) (int64, error) {
	if err := binary.Write(w, binary.LittleEndian, b); err != nil {
		return 0, err
	}
	return BlockSize, nil
}
