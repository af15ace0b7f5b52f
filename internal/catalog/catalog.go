// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package catalog remembers what was compressed, so that a later expansion
// can be checked against the original input.
package catalog

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cockroachdb/pebble/v2"
	"github.com/elliotnunn/statichuff/internal/fileid"
)

var ErrCorruptEntry = errors.New("corrupt catalog entry")

// Entry describes one compressed file, keyed by its path.
type Entry struct {
	Path        string // the compressed file
	Source      string // what it was compressed from, "-" for stdin
	ID          fileid.ID
	InputBytes  int64
	OutputBytes int64
	PayloadBits int64
	Fingerprint uint64 // of the weight table
	Checksum    uint64 // xxhash of the uncompressed bytes
	Time        time.Time
}

const (
	prefix   = "f\x00"
	fixedLen = len(fileid.ID{}) + 7*8
)

type Catalog struct {
	db *pebble.DB
}

// Open creates the database if needed. Nil options get pebble's defaults,
// with pebble's own chatter sent to slog at debug level.
func Open(dir string, opts *pebble.Options) (*Catalog, error) {
	if opts == nil {
		opts = &pebble.Options{}
	}
	if opts.Logger == nil {
		opts.Logger = slogLogger{}
	}
	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", dir, err)
	}
	return &Catalog{db: db}, nil
}

func (c *Catalog) Close() error {
	return c.db.Close()
}

func key(path string) []byte {
	return append([]byte(prefix), path...)
}

func (c *Catalog) Put(e Entry) error {
	return c.db.Set(key(e.Path), e.marshal(), pebble.Sync)
}

func (c *Catalog) Delete(path string) error {
	return c.db.Delete(key(path), pebble.Sync)
}

// Get reports false without error when there is no entry.
func (c *Catalog) Get(path string) (Entry, bool, error) {
	val, closer, err := c.db.Get(key(path))
	if errors.Is(err, pebble.ErrNotFound) {
		return Entry{}, false, nil
	} else if err != nil {
		return Entry{}, false, err
	}
	defer closer.Close()

	e, err := unmarshal(path, val)
	if err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

// Each visits every entry in path order until fn returns an error.
func (c *Catalog) Each(fn func(Entry) error) error {
	it, err := c.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(prefix),
		UpperBound: []byte("f\x01"),
	})
	if err != nil {
		return err
	}
	defer it.Close()

	for it.First(); it.Valid(); it.Next() {
		val, err := it.ValueAndErr()
		if err != nil {
			return err
		}
		e, err := unmarshal(string(it.Key()[len(prefix):]), val)
		if err != nil {
			return err
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return it.Error()
}

func (e *Entry) marshal() []byte {
	b := make([]byte, 0, fixedLen+len(e.Source))
	b = append(b, e.ID[:]...)
	b = binary.BigEndian.AppendUint64(b, uint64(e.InputBytes))
	b = binary.BigEndian.AppendUint64(b, uint64(e.OutputBytes))
	b = binary.BigEndian.AppendUint64(b, uint64(e.PayloadBits))
	b = binary.BigEndian.AppendUint64(b, e.Fingerprint)
	b = binary.BigEndian.AppendUint64(b, e.Checksum)
	b = binary.BigEndian.AppendUint64(b, uint64(e.Time.UnixNano()))
	b = binary.BigEndian.AppendUint64(b, uint64(len(e.Source)))
	return append(b, e.Source...)
}

func unmarshal(path string, b []byte) (Entry, error) {
	if len(b) < fixedLen {
		return Entry{}, fmt.Errorf("%w: %s: %d bytes", ErrCorruptEntry, path, len(b))
	}
	e := Entry{Path: path}
	n := copy(e.ID[:], b)
	u64 := func() uint64 {
		v := binary.BigEndian.Uint64(b[n:])
		n += 8
		return v
	}
	e.InputBytes = int64(u64())
	e.OutputBytes = int64(u64())
	e.PayloadBits = int64(u64())
	e.Fingerprint = u64()
	e.Checksum = u64()
	e.Time = time.Unix(0, int64(u64()))
	if srclen := u64(); srclen != uint64(len(b)-n) {
		return Entry{}, fmt.Errorf("%w: %s: bad source length", ErrCorruptEntry, path)
	}
	e.Source = string(b[n:])
	return e, nil
}

type slogLogger struct{}

func (slogLogger) Infof(format string, args ...any) {
	slog.Debug("pebble", "msg", fmt.Sprintf(format, args...))
}

func (slogLogger) Errorf(format string, args ...any) {
	slog.Error("pebble", "msg", fmt.Sprintf(format, args...))
}

func (slogLogger) Fatalf(format string, args ...any) {
	slog.Error("pebble", "msg", fmt.Sprintf(format, args...))
	panic(fmt.Sprintf(format, args...))
}
