package config

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"
	"github.com/yosuke-furukawa/json5/encoding/json5"
	"go.uber.org/multierr"

	"github.com/nrfboot/boardcfg/board"
	"github.com/nrfboot/boardcfg/logging"
)

// Extensions lists the file suffixes ReadDir picks up.
var Extensions = []string{".json5", ".json"}

// Read reads a board file from the given path. Environment references such as
// ${BOARD_VID} are expanded before parsing.
func Read(ctx context.Context, filePath string, logger logging.Logger) (*BoardFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read board file %q", filePath)
	}
	bf, err := fromBytes(buf, filePath)
	if err != nil {
		return nil, err
	}
	logger.Debugw("read board file", "path", filePath, "board", bf.Name)
	return bf, nil
}

// FromReader reads a board file from the given reader. originalPath is only used in
// error messages.
func FromReader(ctx context.Context, originalPath string, r io.Reader, logger logging.Logger) (*BoardFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	buf, err := envsubst.Bytes(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot expand environment in %q", originalPath)
	}
	bf, err := fromBytes(buf, originalPath)
	if err != nil {
		return nil, err
	}
	logger.Debugw("read board file", "path", originalPath, "board", bf.Name)
	return bf, nil
}

func fromBytes(buf []byte, originalPath string) (*BoardFile, error) {
	var doc map[string]interface{}
	if err := json5.Unmarshal(buf, &doc); err != nil {
		return nil, errors.Wrapf(err, "cannot parse board file %q", originalPath)
	}
	bf := &BoardFile{}
	if err := decodeBoardFile(doc, bf); err != nil {
		return nil, errors.Wrapf(err, "cannot decode board file %q", originalPath)
	}
	bf.Path = originalPath
	return bf, nil
}

// ReadDescriptor reads a board file and converts it into a descriptor. The descriptor
// is not validated against board invariants; that happens on registration.
func ReadDescriptor(ctx context.Context, filePath string, logger logging.Logger) (board.Descriptor, error) {
	bf, err := Read(ctx, filePath, logger)
	if err != nil {
		return board.Descriptor{}, err
	}
	return bf.Descriptor()
}

// ReadDir reads every board file directly inside dir in lexical order. Files that fail
// to load are reported together; the ones that loaded are still returned.
func ReadDir(ctx context.Context, dir string, logger logging.Logger) ([]board.Descriptor, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot list board directory %q", dir)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !IsBoardFile(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var (
		descs []board.Descriptor
		errs  error
	)
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return descs, multierr.Append(errs, err)
		}
		d, err := ReadDescriptor(ctx, filepath.Join(dir, name), logger)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		descs = append(descs, d)
	}
	logger.Debugw("read board directory", "dir", dir, "boards", len(descs))
	return descs, errs
}

// IsBoardFile reports whether name has one of Extensions.
func IsBoardFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range Extensions {
		if ext == want {
			return true
		}
	}
	return false
}
