// Package cli parses the viewer's command line: one target path plus a few
// flags.
package cli

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// Parsed is the decoded command line.
type Parsed struct {
	TargetPath  string
	SocketPath  string
	ShowVersion bool
	ShowHelp    bool
}

// Parse decodes args (without the program name).
func Parse(args []string) (Parsed, error) {
	fs := flag.NewFlagSet("lumava", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var parsed Parsed
	fs.StringVar(&parsed.SocketPath, "socket", "", "rendezvous socket path override")
	fs.BoolVar(&parsed.ShowVersion, "version", false, "print version information")
	help := fs.BoolP("help", "h", false, "show help")

	if err := fs.Parse(args); err != nil {
		return Parsed{}, err
	}
	parsed.ShowHelp = *help

	rest := fs.Args()
	if parsed.ShowHelp || parsed.ShowVersion {
		return parsed, nil
	}

	switch len(rest) {
	case 0:
		return Parsed{}, errors.New("missing image path argument")
	case 1:
		parsed.TargetPath = rest[0]
		return parsed, nil
	default:
		return Parsed{}, fmt.Errorf("unexpected arguments after %q", rest[0])
	}
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [flags] <image_path>

The first invocation opens the viewer window. Later invocations hand their
image path to the running instance and exit.

Flags:
  --socket PATH   Rendezvous socket path (default: $XDG_RUNTIME_DIR/lumava.sock)
  --version       Show version
  -h, --help      Show help
`, binaryName)
}
