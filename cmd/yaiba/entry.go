package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/LyricLy/yaiba/pkg/driver"
	"github.com/LyricLy/yaiba/pkg/interpreter"
	"github.com/LyricLy/yaiba/pkg/ioport"
)

const exitInterrupted = 130

// session is the resolved configuration for one invocation.
type session struct {
	manifest *driver.Manifest
	source   *driver.Source
	inputs   []int64
	ascii    bool
	echo     bool
	stats    bool
	logLevel string
}

func runEntry(args []string) int {
	flags, positional, err := parseRunFlags(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	s, code, ok := resolveSession(flags, positional, true)
	if !ok {
		return code
	}
	return execute(s)
}

func runCheck(args []string) int {
	flags, positional, err := parseRunFlags(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if len(positional) > 1 {
		fmt.Fprintf(os.Stderr, "yaiba check takes at most one program (received %d arguments)\n", len(positional))
		return 1
	}
	s, code, ok := resolveSession(flags, positional, false)
	if !ok {
		return code
	}
	prog := s.source.Program()
	problems := interpreter.Check(prog)
	for _, problem := range problems {
		fmt.Fprintln(os.Stderr, interpreter.DescribeError(prog, problem))
	}
	if len(problems) > 0 {
		return 1
	}
	fmt.Fprintf(os.Stdout, "check: ok (%d lines, %d characters)\n", prog.Lines().Len(), prog.Len())
	return 0
}

func resolveSession(flags runFlags, positional []string, withInputs bool) (*session, int, bool) {
	manifest, err := resolveManifest(flags.manifest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load manifest: %v\n", err)
		return nil, 1, false
	}

	loader := &driver.Loader{}
	programArg := ""
	if len(positional) > 0 {
		programArg = positional[0]
		positional = positional[1:]
	} else if manifest != nil && manifest.Program != "" {
		programArg = manifest.Program
		loader = manifest.Loader()
		lock, err := driver.LoadOrCreateLockfile(filepath.Join(manifest.Dir(), driver.LockfileName), cliToolVersion)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load lockfile: %v\n", err)
			return nil, 1, false
		}
		loader.Lock = lock
	}
	if programArg == "" {
		printUsage()
		return nil, 1, false
	}

	s := &session{manifest: manifest, echo: true}
	if manifest != nil {
		s.inputs = append(s.inputs, manifest.Inputs...)
		s.logLevel = manifest.LogLevel
		applyBool(&s.ascii, manifest.ASCII)
		applyBool(&s.echo, manifest.Echo)
		applyBool(&s.stats, manifest.Stats)
	}
	applyBool(&s.ascii, flags.ascii)
	applyBool(&s.echo, flags.echo)
	applyBool(&s.stats, flags.stats)
	if flags.logLevel != "" {
		s.logLevel = flags.logLevel
	}

	if withInputs {
		for _, arg := range positional {
			value, err := ioport.ParseValue(arg)
			if err != nil {
				fmt.Fprintf(os.Stderr, "invalid input %q: %v\n", arg, err)
				return nil, 1, false
			}
			s.inputs = append(s.inputs, value)
		}
	}

	src, err := loader.Load(programArg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load program: %v\n", err)
		return nil, 1, false
	}
	if loader.Lock.Changed() {
		if err := driver.WriteLockfile(loader.Lock, ""); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write lockfile: %v\n", err)
			return nil, 1, false
		}
	}
	s.source = src
	return s, 0, true
}

func resolveManifest(path string) (*driver.Manifest, error) {
	if path != "" {
		return driver.LoadManifest(path)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	found, err := driver.FindManifest(cwd)
	if err != nil {
		if errors.Is(err, driver.ErrManifestNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return driver.LoadManifest(found)
}

func applyBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func execute(s *session) int {
	logger, err := newLogger(os.Stderr, s.logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	prog := s.source.Program()
	logger.Debug().
		Str("program", prog.Name).
		Str("source", s.source.Kind.String()).
		Int("lines", prog.Lines().Len()).
		Msg("program loaded")

	console := ioport.NewConsole(ioport.ConsoleOptions{
		In:          os.Stdin,
		Out:         os.Stdout,
		Inputs:      s.inputs,
		ASCII:       s.ascii,
		Echo:        s.echo,
		Interactive: ioport.IsTerminal(os.Stdin),
		Prompt:      "> ",
	})
	defer console.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	interp := interpreter.New(prog, interpreter.Options{Port: console, Logger: logger})
	err = interp.Run(ctx)
	if s.stats {
		printStats(interp.Stats())
	}
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(os.Stderr, "yaiba: interrupted")
		return exitInterrupted
	default:
		fmt.Fprintf(os.Stderr, "yaiba: %s\n", interpreter.DescribeError(prog, err))
		return 1
	}
}

func printStats(stats interpreter.Stats) {
	fmt.Fprintf(os.Stderr, "sweeps: %d\n", stats.Sweeps)
	fmt.Fprintf(os.Stderr, "steps: %d\n", stats.Steps)
	fmt.Fprintf(os.Stderr, "spawned: %d\n", stats.Spawned)
	fmt.Fprintf(os.Stderr, "removed: %d\n", stats.Removed)
	fmt.Fprintf(os.Stderr, "peak strands: %d\n", stats.PeakPool)
}
