package regs

import (
	"github.com/pkg/errors"

	"github.com/lunixbochs/regio/go/cmd"
)

type shellCmd struct {
	name, args, desc string
	min, max         int
}

var shellCmds = []shellCmd{
	{"read", "OFFSET [SIZE]", "read a register and print it in hex", 1, 2},
	{"write", "OFFSET VALUE [SIZE]", "write a register", 2, 3},
	{"update", "OFFSET CLR SET [SIZE]", "read-modify-write a register: (value & CLR) | SET", 3, 4},
	{"dump", "OFFSET COUNT", "hex dump COUNT words", 2, 2},
	{"save", "OFFSET COUNT FILE", "save COUNT words to an image file", 3, 3},
	{"load", "FILE [diff]", "restore an image file, or diff it against the device", 1, 2},
	{"info", "", "print the accessor configuration", 0, 0},
}

func (s shellCmd) Main(argv []string) int {
	c := cmd.NewRegioCmd(s.args)
	c.RunRegio = func(args []string) error {
		if len(args) < s.min || len(args) > s.max {
			c.Flags.Usage()
			return errors.Errorf("%s takes %s", s.name, s.args)
		}
		return c.Exec(s.name, args)
	}
	return c.Run(argv)
}

func init() {
	for _, s := range shellCmds {
		cmd.Register(s.name, s.desc, s.Main)
	}
}
