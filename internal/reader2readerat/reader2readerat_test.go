// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package reader2readerat_test

import (
	"encoding/hex"
	"errors"
	"io"
	"math"
	"math/rand/v2"
	"testing"
	"testing/iotest"

	"github.com/elliotnunn/statichuff/internal/reader2readerat"
)

// reader counts upwards from zero in short and irregular reads
type reader struct {
	n     int64
	limit int64
	rng   *rand.Rand
}

func (r *reader) Read(p []byte) (n int, err error) {
	switch r.rng.IntN(3) {
	case 0:
		p = p[:len(p)-len(p)/2]
	case 1:
		p = p[:0]
	case 2:
	}
	if r.limit >= 0 && r.n+int64(len(p)) > r.limit {
		p = p[:r.limit-r.n]
		err = io.EOF
	}
	for i := range p {
		p[i] = byte(r.n)
		r.n++
	}
	return len(p), err
}

func counting(limit int64) func() (io.Reader, error) {
	rng := rand.New(rand.NewPCG(1, 2))
	return func() (io.Reader, error) {
		return &reader{limit: limit, rng: rng}, nil
	}
}

func newCache(t *testing.T) *reader2readerat.Cache {
	t.Helper()
	c, err := reader2readerat.NewCache(1 << 24)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestRandomAccess(t *testing.T) {
	ra := reader2readerat.NewFromReader(newCache(t), t.Name(), counting(-1))
	rng := rand.New(rand.NewPCG(3, 4))

	for range 100 {
		offset := int64(rng.IntN(20000))
		buf := make([]byte, rng.IntN(10000))
		n, err := ra.ReadAt(buf, offset)
		if err != nil {
			t.Errorf("got error %v", err)
		}
		if n != len(buf) {
			t.Errorf("expected %d bytes, got %d", len(buf), n)
		}
		for i, c := range buf[:n] {
			if c != byte(offset)+byte(i) {
				t.Errorf("expected to start with byte %02x, got %s", byte(offset), hex.EncodeToString(buf[:n]))
				break
			}
		}
	}
}

func TestEnd(t *testing.T) {
	ra := reader2readerat.NewFromReader(newCache(t), t.Name(), counting(10000))

	buf := make([]byte, 100)
	n, err := ra.ReadAt(buf, 9950)
	if n != 50 || err != io.EOF {
		t.Errorf("expected 50 bytes and EOF, got %d and %v", n, err)
	}
	n, err = ra.ReadAt(buf, 20000)
	if n != 0 || err != io.EOF {
		t.Errorf("expected EOF past the end, got %d and %v", n, err)
	}
	n, err = ra.ReadAt(buf[:50], 9950)
	if n != 50 || err != nil {
		t.Errorf("expected an exact read to the end to succeed, got %d and %v", n, err)
	}
}

// Reading the stream twice in order must open it exactly twice.
func TestTwoPasses(t *testing.T) {
	const size = 100000
	ra := reader2readerat.NewFromReader(newCache(t), t.Name(), counting(size))
	for pass := range 2 {
		sr := io.NewSectionReader(ra, 0, math.MaxInt64)
		got, err := io.ReadAll(sr)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != size {
			t.Fatalf("pass %d: expected %d bytes, got %d", pass, size, len(got))
		}
		for i, c := range got {
			if c != byte(i) {
				t.Fatalf("pass %d: wrong byte at %d", pass, i)
			}
		}
	}
	if ra.Opens() > 2 {
		t.Errorf("stream was opened %d times", ra.Opens())
	}
}

// Small reads must not reopen the stream even when the cache keeps nothing.
func TestTinyCache(t *testing.T) {
	const size = 100000
	cache, err := reader2readerat.NewCache(0)
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	ra := reader2readerat.NewFromReader(cache, t.Name(), counting(size))
	buf := make([]byte, 100)
	for pass := range 3 {
		var off int64
		for {
			n, err := ra.ReadAt(buf, off)
			for i, c := range buf[:n] {
				if c != byte(off+int64(i)) {
					t.Fatalf("pass %d: wrong byte at %d", pass, off+int64(i))
				}
			}
			off += int64(n)
			if err == io.EOF {
				break
			} else if err != nil {
				t.Fatal(err)
			}
		}
		if off != size {
			t.Fatalf("pass %d: expected %d bytes, got %d", pass, size, off)
		}
	}
	if ra.Opens() > 3 {
		t.Errorf("stream was opened %d times in three passes", ra.Opens())
	}
}

func TestOpenError(t *testing.T) {
	boom := errors.New("boom")
	ra := reader2readerat.NewFromReader(newCache(t), t.Name(), func() (io.Reader, error) {
		return nil, boom
	})
	if _, err := ra.ReadAt(make([]byte, 10), 0); !errors.Is(err, boom) {
		t.Errorf("expected the open error, got %v", err)
	}
}

func TestReadError(t *testing.T) {
	boom := errors.New("boom")
	ra := reader2readerat.NewFromReader(newCache(t), t.Name(), func() (io.Reader, error) {
		return iotest.ErrReader(boom), nil
	})
	if _, err := ra.ReadAt(make([]byte, 10), 0); !errors.Is(err, boom) {
		t.Errorf("expected the read error, got %v", err)
	}
}
