package repl

import (
	"github.com/lunixbochs/regio/go/cmd"
	"github.com/lunixbochs/regio/go/debug"
	"github.com/lunixbochs/regio/go/ui"
)

func Main(args []string) int {
	c := cmd.NewRegioCmd("")
	var listen *string
	c.SetupFlags = func() error {
		listen = c.Flags.String("listen", "", "serve the shell to 'regio attach' clients on host:port instead")
		return nil
	}
	c.RunRegio = func(args []string) error {
		if *listen != "" {
			return debug.NewServer(c.Config, c.Accessor, c.Region).Listen(*listen)
		}
		r, err := ui.NewRepl(c.Config, c.Accessor, c.Region)
		if err != nil {
			return err
		}
		return r.Run()
	}
	return c.Run(args)
}

func init() { cmd.Register("repl", "interactive register shell", Main) }
