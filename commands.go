// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/elliotnunn/statichuff/internal/catalog"
	"github.com/elliotnunn/statichuff/internal/fileid"
	"github.com/elliotnunn/statichuff/internal/huffman"
	"github.com/elliotnunn/statichuff/internal/walk"
	"golang.org/x/sync/errgroup"
)

var (
	errSameFile = errors.New("input and output are the same file")
	errChecksum = errors.New("expanded data does not match the catalog")
)

// output is removed again unless commit is called
type output struct {
	io.Writer
	f    *os.File
	name string
}

func (a *app) createOutput(name string) (*output, error) {
	if name == "-" {
		return &output{Writer: a.stdout, name: name}, nil
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	return &output{Writer: f, f: f, name: name}, nil
}

func (o *output) commit() error {
	if o.f == nil {
		return nil
	}
	err := o.f.Close()
	o.f = nil
	if err != nil {
		os.Remove(o.name)
	}
	return err
}

func (o *output) abort() {
	if o.f == nil {
		return
	}
	o.f.Close()
	o.f = nil
	os.Remove(o.name)
}

// reportTo keeps reports out of the data when the data goes to stdout
func (a *app) reportTo(out string) io.Writer {
	if out == "-" {
		return a.stderr
	}
	return a.stdout
}

// report is serialised because batch jobs share the printer
func (a *app) report(out string, format string, args ...any) {
	if a.quiet {
		return
	}
	a.reportMu.Lock()
	defer a.reportMu.Unlock()
	a.printer.Fprintf(a.reportTo(out), format, args...)
}

func (a *app) options(out string) []huffman.Option {
	opts := []huffman.Option{
		huffman.WithLogger(a.log),
		huffman.WithCodeCache(a.codes),
	}
	if a.dump {
		opts = append(opts, huffman.WithModelDump(a.reportTo(out)))
	}
	return opts
}

func samePath(a, b string) bool {
	if a == "-" || b == "-" {
		return false
	}
	ai, aerr := os.Stat(a)
	bi, berr := os.Stat(b)
	return aerr == nil && berr == nil && os.SameFile(ai, bi)
}

// compress with an empty output name puts the output beside the input
func (a *app) compress(inName, outName string) error {
	in, err := a.openInput(inName)
	if err != nil {
		return err
	}
	defer in.Close()

	if outName == "" {
		outName = compressedName(inName, in.format)
	}
	if samePath(inName, outName) {
		return fmt.Errorf("%s: %w", inName, errSameFile)
	}
	out, err := a.createOutput(outName)
	if err != nil {
		return err
	}
	defer out.abort()

	t := time.Now()
	st, err := huffman.Compress(in, out, a.options(outName)...)
	if err != nil {
		a.forget(outName)
		return fmt.Errorf("%s: %w", inName, err)
	}
	if err := out.commit(); err != nil {
		a.forget(outName)
		return err
	}

	a.log.Debug("compressed", "path", inName, "format", in.format, "duration", time.Since(t).String())
	a.record(inName, outName, st)
	a.report(outName, "%s: %d -> %d bytes, %.3f bits per byte\n",
		inName, st.InputBytes, st.OutputBytes, bitsPerByte(st))
	return nil
}

func bitsPerByte(st *huffman.Stats) float64 {
	if st.InputBytes == 0 {
		return 0
	}
	return float64(st.OutputBytes*8) / float64(st.InputBytes)
}

func (a *app) expand(inName, outName string) error {
	var src io.Reader = a.stdin
	if inName != "-" {
		f, err := os.Open(inName)
		if err != nil {
			return err
		}
		defer f.Close()
		adviseSequential(f)
		src = f
	}

	if outName == "" {
		outName = expandedName(inName)
	}
	if samePath(inName, outName) {
		return fmt.Errorf("%s: %w", inName, errSameFile)
	}
	out, err := a.createOutput(outName)
	if err != nil {
		return err
	}
	defer out.abort()

	st, err := huffman.Expand(src, out, a.options(outName)...)
	if err != nil {
		return fmt.Errorf("%s: %w", inName, err)
	}
	if err := a.verify(inName, st); err != nil {
		return err
	}
	if err := out.commit(); err != nil {
		return err
	}

	a.report(outName, "%s: %d -> %d bytes\n", inName, st.OutputBytes, st.InputBytes)
	return nil
}

// identify finds the catalog key and file identity for a path
func identify(name string) (string, fileid.ID, error) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return "", fileid.ID{}, err
	}
	id, err := fileid.Get(os.DirFS(filepath.Dir(abs)), filepath.Base(abs))
	return abs, id, err
}

func (a *app) record(inName, outName string, st *huffman.Stats) {
	if a.cat == nil || outName == "-" {
		return
	}
	key, id, err := identify(outName)
	if err != nil && !errors.Is(err, fileid.ErrNotOS) {
		a.log.Warn("fileIDError", "path", outName, "err", err)
		return
	}
	source := inName
	if inName != "-" {
		if abs, err := filepath.Abs(inName); err == nil {
			source = abs
		}
	}
	err = a.cat.Put(catalog.Entry{
		Path:        key,
		Source:      source,
		ID:          id,
		InputBytes:  st.InputBytes,
		OutputBytes: st.OutputBytes,
		PayloadBits: st.PayloadBits,
		Fingerprint: st.Fingerprint,
		Checksum:    st.Checksum,
		Time:        time.Now(),
	})
	if err != nil {
		a.log.Warn("catalogPutError", "path", key, "err", err)
	}
}

// forget drops the entry for an output that could not be written
func (a *app) forget(outName string) {
	if a.cat == nil || outName == "-" {
		return
	}
	if abs, err := filepath.Abs(outName); err == nil {
		a.cat.Delete(abs)
	}
}

// verify checks an expansion against the catalog, if the compressed file is
// provably the one that was recorded
func (a *app) verify(inName string, st *huffman.Stats) error {
	if a.cat == nil || inName == "-" {
		return nil
	}
	key, id, err := identify(inName)
	if err != nil {
		a.log.Debug("catalogSkip", "path", inName, "err", err)
		return nil
	}
	e, ok, err := a.cat.Get(key)
	if err != nil {
		return err
	} else if !ok {
		return nil
	} else if e.ID != id {
		a.log.Debug("catalogStale", "path", key, "recorded", e.ID.String(), "actual", id.String())
		return nil
	}

	if e.Checksum != st.Checksum || e.InputBytes != st.InputBytes {
		return fmt.Errorf("%s: %w: %d bytes %016x, expected %d bytes %016x",
			inName, errChecksum, st.InputBytes, st.Checksum, e.InputBytes, e.Checksum)
	}
	a.log.Debug("catalogVerified", "path", key, "source", e.Source)
	return nil
}

func (a *app) batch(cmd string, patterns []string, jobs int) error {
	waysort, paths, err := walk.Glob(patterns)
	if err != nil {
		return err
	}
	a.log.Info("batchStart", "files", len(paths), "sortorder", waysort)
	t := time.Now()

	g := new(errgroup.Group)
	g.SetLimit(jobs)
	for _, p := range paths {
		switch {
		case cmd == "compress" && strings.HasSuffix(p, ".huff"):
			a.log.Debug("batchSkip", "path", p)
			continue
		case cmd == "compress":
			g.Go(func() error { return a.compress(p, "") })
		default:
			g.Go(func() error { return a.expand(p, "") })
		}
	}
	err = g.Wait()
	a.log.Info("batchStop", "duration", time.Since(t).Truncate(time.Millisecond).String())
	return err
}

func (a *app) list() error {
	tw := tabwriter.NewWriter(a.stdout, 0, 8, 2, ' ', 0)
	a.printer.Fprintf(tw, "PATH\tSOURCE\tIN\tOUT\tBITS/BYTE\tWEIGHTS\tTIME\n")
	err := a.cat.Each(func(e catalog.Entry) error {
		st := huffman.Stats{InputBytes: e.InputBytes, OutputBytes: e.OutputBytes}
		_, err := a.printer.Fprintf(tw, "%s\t%s\t%d\t%d\t%.3f\t%016x\t%s\n",
			e.Path, e.Source, e.InputBytes, e.OutputBytes, bitsPerByte(&st),
			e.Fingerprint, e.Time.Format(time.DateTime))
		return err
	})
	if err != nil {
		return err
	}
	return tw.Flush()
}
