// Package registry holds the closed set of board descriptors a firmware build can be
// configured for.
//
// A registry is assembled once through a Builder, which validates every descriptor as it
// is registered, and is read-only afterwards. Everything it returns is a copy, so
// independent initializers may read it concurrently without locking.
package registry

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/nrfboot/boardcfg/board"
	"github.com/nrfboot/boardcfg/logging"
)

var (
	// ErrNotFound is wrapped by every lookup miss.
	ErrNotFound = errors.New("board not found")
	// ErrFrozen is returned when registering into a builder that has already been built.
	ErrFrozen = errors.New("registry is already built")
)

// A NotFoundError is returned when a lookup names a board the registry does not hold.
type NotFoundError struct {
	Key   string
	Known []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("board %q not found; known boards: %v", e.Key, e.Known)
}

// Unwrap lets errors.Is match ErrNotFound.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// IsNotFoundError returns if the given error is any kind of board not found error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// A Builder accumulates validated descriptors. It is not safe for concurrent use.
type Builder struct {
	logger logging.Logger
	order  []string
	byName map[string]board.Descriptor
	built  bool
}

// NewBuilder returns an empty builder.
func NewBuilder(logger logging.Logger) *Builder {
	return &Builder{
		logger: logger,
		byName: map[string]board.Descriptor{},
	}
}

// Register validates d against everything registered so far and stores a copy of it.
// Any violation rejects the descriptor; the returned error lists all of them.
func (b *Builder) Register(d board.Descriptor) error {
	if b.built {
		return errors.Wrapf(ErrFrozen, "cannot register %q", d.Name)
	}
	existing := b.descriptors()
	if err := board.Validate(d, existing...); err != nil {
		b.logger.Debugw("rejected board", "name", d.Name, "violations", len(board.Violations(err)))
		return errors.Wrapf(err, "cannot register board %q", d.Name)
	}

	for _, other := range b.SharingUSBIdentity(d) {
		b.logger.Warnw("board shares its UF2 USB identity with another board",
			"name", d.Name,
			"other", other,
			"vid", fmt.Sprintf("0x%04X", d.USB.VID),
			"pid", fmt.Sprintf("0x%04X", d.USB.UF2PID))
	}

	b.order = append(b.order, d.Name)
	b.byName[d.Name] = d.Clone()
	b.logger.Debugw("registered board", "name", d.Name, "board_id", d.UF2.BoardID, "target", d.Target)
	return nil
}

// SharingUSBIdentity returns the registered boards other than d that enumerate with d's
// UF2 VID/PID pair. Sharing is allowed; hosts then tell the boards apart by board id.
func (b *Builder) SharingUSBIdentity(d board.Descriptor) []string {
	return lo.FilterMap(b.order, func(name string, _ int) (string, bool) {
		other := b.byName[name]
		return name, name != d.Name && other.USB.VID == d.USB.VID && other.USB.UF2PID == d.USB.UF2PID
	})
}

func (b *Builder) descriptors() []board.Descriptor {
	return lo.Map(b.order, func(name string, _ int) board.Descriptor {
		return b.byName[name]
	})
}

// Build freezes the builder and returns the registry. The builder rejects further
// registrations.
func (b *Builder) Build() *Registry {
	b.built = true
	r := &Registry{
		byName:    make(map[string]board.Descriptor, len(b.byName)),
		byBoardID: make(map[string]string, len(b.byName)),
	}
	for name, d := range b.byName {
		r.byName[name] = d.Clone()
		r.byBoardID[d.UF2.BoardID] = name
	}
	r.names = lo.Keys(r.byName)
	sort.Strings(r.names)
	return r
}

// MustBuild registers every descriptor and panics on the first rejection. It is meant for
// package-level tables, where a bad descriptor must stop the program before anything reads it.
func MustBuild(logger logging.Logger, descriptors ...board.Descriptor) *Registry {
	b := NewBuilder(logger)
	for _, d := range descriptors {
		if err := b.Register(d); err != nil {
			panic(err)
		}
	}
	return b.Build()
}

// A Registry maps board names to descriptors. It is immutable.
type Registry struct {
	names     []string
	byName    map[string]board.Descriptor
	byBoardID map[string]string
}

// Resolve returns the descriptor registered under name. There is no fallback: an unknown
// name is an error.
func (r *Registry) Resolve(name string) (board.Descriptor, error) {
	d, ok := r.byName[name]
	if !ok {
		return board.Descriptor{}, &NotFoundError{Key: name, Known: r.Names()}
	}
	return d.Clone(), nil
}

// LookupBoardID returns the descriptor whose UF2 board id is boardID.
func (r *Registry) LookupBoardID(boardID string) (board.Descriptor, error) {
	name, ok := r.byBoardID[boardID]
	if !ok {
		return board.Descriptor{}, &NotFoundError{Key: boardID, Known: r.BoardIDs()}
	}
	return r.byName[name].Clone(), nil
}

// Names returns the registered board names in sorted order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// BoardIDs returns the registered UF2 board ids in sorted order.
func (r *Registry) BoardIDs() []string {
	ids := lo.Keys(r.byBoardID)
	sort.Strings(ids)
	return ids
}

// Descriptors returns copies of every descriptor, ordered by name.
func (r *Registry) Descriptors() []board.Descriptor {
	return lo.Map(r.names, func(name string, _ int) board.Descriptor {
		return r.byName[name].Clone()
	})
}

// Len returns the number of registered boards.
func (r *Registry) Len() int {
	return len(r.names)
}
