package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joiningdata/mdiff"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const usageLine = "usage: mdiff [flags] file1 file2"

// exit statuses
const (
	exitOK    = 0
	exitUsage = 1
	exitOpen  = -1
	exitRead  = -2
)

type options struct {
	verbose    bool
	compat     bool
	decompress bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line args and returns the process exit status.
func run(args []string, stdout, stderr io.Writer) int {
	var logger *zap.Logger
	defer func() {
		if logger != nil {
			_ = logger.Sync()
		}
	}()

	opts := &options{}
	cmd := &cobra.Command{
		Use:   "mdiff [flags] file1 file2",
		Short: "Report every byte offset at which two files differ",
		Long: `mdiff reads two files in lockstep and prints one line per differing
offset. Printable bytes are shown as characters next to their hex value.

The comparison is strictly positional: there is no resynchronization after
a difference. Arguments after the second file are ignored.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return mdiff.ErrUsage
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger = newLogger(stderr, opts.verbose)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return compare(cmd.OutOrStdout(), args[0], args[1], opts, logger)
		},
	}
	if args == nil {
		// cobra falls back to os.Args on nil
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", mdiff.ErrUsage, err)
	})

	flags := cmd.Flags()
	// flags stop at the first path so trailing arguments stay ignored
	flags.SetInterspersed(false)
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging and input digests")
	flags.BoolVar(&opts.compat, "compat", false, "double-advance offsets, scan until file1 ends")
	flags.BoolVarP(&opts.decompress, "decompress", "z", false, "decompress gzip, bzip2 or xz inputs before comparing")

	err := cmd.Execute()
	return exitStatus(stderr, err)
}

func compare(w io.Writer, fn1, fn2 string, opts *options, logger *zap.Logger) error {
	left, err := mdiff.OpenSource(fn1, opts.decompress, logger)
	if err != nil {
		return err
	}
	defer left.Close()

	right, err := mdiff.OpenSource(fn2, opts.decompress, logger)
	if err != nil {
		return err
	}
	defer right.Close()

	c := &mdiff.Comparator{}
	c.SetCompat(opts.compat)
	c.SetDigest(opts.verbose)
	c.SetLogger(logger)

	_, err = c.Compare(left, right, w)
	return err
}

// exitStatus prints err, if any, and maps it to an exit status.
func exitStatus(stderr io.Writer, err error) int {
	if err == nil {
		return exitOK
	}

	var (
		oerr *mdiff.OpenError
		rerr *mdiff.ReadError
		werr *mdiff.WriteError
	)
	switch {
	case errors.Is(err, mdiff.ErrUsage):
		if err != mdiff.ErrUsage {
			fmt.Fprintln(stderr, err.Error())
		}
		fmt.Fprintln(stderr, usageLine)
		return exitUsage
	case errors.As(err, &oerr):
		fmt.Fprintln(stderr, oerr.Error())
		return exitOpen
	case errors.As(err, &rerr), errors.As(err, &werr):
		fmt.Fprintln(stderr, err.Error())
		return exitRead
	}
	// anything cobra itself rejects is a usage problem
	fmt.Fprintln(stderr, err.Error())
	fmt.Fprintln(stderr, usageLine)
	return exitUsage
}

func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose {
		level.SetLevel(zapcore.DebugLevel)
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.Lock(zapcore.AddSync(w)),
		level,
	)
	return zap.New(core).Named("mdiff")
}
