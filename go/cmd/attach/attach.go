package attach

import (
	"flag"
	"fmt"
	"os"

	"github.com/lunixbochs/regio/go/cmd"
	"github.com/lunixbochs/regio/go/debug"
)

func Main(args []string) int {
	fs := flag.NewFlagSet("attach", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s HOST:PORT\n", args[0])
	}
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	if err := debug.RunClient(fs.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func init() { cmd.Register("attach", "connect to a 'regio repl -listen' server", Main) }
