// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sync"

	"github.com/elliotnunn/statichuff/internal/catalog"
	"github.com/elliotnunn/statichuff/internal/huffman"
	"github.com/elliotnunn/statichuff/internal/reader2readerat"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const usage = `usage:
  statichuff huffman compress [-d] [-db DIR] [-q] [-raw] IN OUT
  statichuff huffman compress [-db DIR] [-j N] [-q] [-raw] -batch PATTERN...
  statichuff huffman expand   [-d] [-db DIR] [-q] IN OUT
  statichuff huffman expand   [-db DIR] [-j N] [-q] -batch PATTERN...
  statichuff list -db DIR

IN and OUT may be - for stdin and stdout. Patterns may use ** for any depth.
HUFFGB sets the memory used to rewind compressed input, in gigabytes.
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var cmd string
	switch {
	case len(args) >= 2 && args[0] == "huffman" && (args[1] == "compress" || args[1] == "expand"):
		cmd, args = args[1], args[2:]
	case len(args) >= 1 && args[0] == "list":
		cmd, args = args[0], args[1:]
	default:
		fmt.Fprint(stderr, usage)
		return 2
	}

	flags := flag.NewFlagSet(cmd, flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() { fmt.Fprint(stderr, usage) }
	dump := flags.Bool("d", false, "print the Huffman model")
	dbDir := flags.String("db", "", "catalog `directory`")
	jobs := flags.Int("j", runtime.NumCPU(), "files to work on at once with -batch")
	quiet := flags.Bool("q", false, "only log warnings and errors")
	batch := flags.Bool("batch", false, "arguments are patterns, and each output goes beside its input")
	raw := flags.Bool("raw", false, "do not decompress gzip, bzip2, xz or zstd input")

	// flags may come after the file names
	var pos []string
	for {
		if err := flags.Parse(args); err != nil {
			return 2
		}
		if flags.NArg() == 0 {
			break
		}
		pos = append(pos, flags.Arg(0))
		args = flags.Args()[1:]
	}

	switch {
	case cmd == "list" && (*dbDir == "" || len(pos) != 0),
		cmd != "list" && *batch && (len(pos) == 0 || *dump || *jobs < 1),
		cmd != "list" && !*batch && len(pos) != 2:
		fmt.Fprint(stderr, usage)
		return 2
	}

	level := slog.LevelInfo
	if *quiet {
		level = slog.LevelWarn
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	a := &app{
		stdin:   stdin,
		stdout:  stdout,
		stderr:  stderr,
		log:     logger,
		quiet:   *quiet,
		dump:    *dump,
		raw:     *raw,
		codes:   huffman.NewCodeCache(64),
		printer: message.NewPrinter(language.English), // For commas between thousands
	}

	if err := a.start(*dbDir); err != nil {
		logger.Error("startError", "err", err)
		return 1
	}
	defer a.stop()

	var err error
	switch {
	case cmd == "list":
		err = a.list()
	case *batch:
		err = a.batch(cmd, pos, *jobs)
	case cmd == "compress":
		err = a.compress(pos[0], pos[1])
	case cmd == "expand":
		err = a.expand(pos[0], pos[1])
	}
	if err != nil {
		logger.Error(cmd+"Error", "err", err)
		return 1
	}
	return 0
}

type app struct {
	stdin          io.Reader
	stdout, stderr io.Writer
	log            *slog.Logger
	quiet          bool
	dump           bool
	raw            bool
	codes          *huffman.CodeCache
	printer        *message.Printer
	reportMu       sync.Mutex
	cat            *catalog.Catalog
	blocks         *reader2readerat.Cache
}

func (a *app) start(dbDir string) error {
	if dbDir != "" {
		cat, err := catalog.Open(dbDir, nil)
		if err != nil {
			return err
		}
		a.cat = cat
	}
	blocks, err := reader2readerat.NewCache(memLimit)
	if err != nil {
		a.stop()
		return err
	}
	a.blocks = blocks
	return nil
}

func (a *app) stop() {
	if a.blocks != nil {
		a.blocks.Close()
	}
	if a.cat != nil {
		if err := a.cat.Close(); err != nil {
			a.log.Error("catalogCloseError", "err", err)
		}
	}
	hits, total := a.codes.Stats()
	a.log.Debug("codeCache", "hits", hits, "lookups", total)
}
