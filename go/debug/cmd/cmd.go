package cmd

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/lunixbochs/argjoy"
	"github.com/mattn/go-shellwords"
	"github.com/pkg/errors"
)

type Command struct {
	Name string
	Desc string
	Run  interface{}
}

var Commands = make(map[string]*Command)

func cmd(c *Command) *Command {
	fn := reflect.ValueOf(c.Run)
	if !fn.IsValid() || fn.Kind() != reflect.Func {
		panic(fmt.Sprintf("Command.Run must be a func: got (%T) %#v\n", c.Run, c.Run))
	}
	Commands[c.Name] = c
	return c
}

// strings must be matched before RadStrToInt tries to parse them
func strToStr(arg interface{}, vals []interface{}) error {
	if s, ok := vals[0].(string); ok {
		if v, ok := arg.(*string); ok {
			*v = s
			return nil
		}
	}
	return argjoy.NoMatch
}

var aj = argjoy.NewArgjoy(strToStr, argjoy.RadStrToInt)

var ErrNotFound = errors.New("command not found.")

// Exec runs a single command and returns its error.
func Exec(c *Context, name string, args []string) error {
	cmd, ok := Commands[name]
	if !ok {
		return ErrNotFound
	}
	out, err := aj.Call(cmd.Run, c, args)
	if err != nil {
		return err
	}
	if len(out) > 0 {
		if err, ok := out[0].(error); ok {
			return err
		}
	}
	return nil
}

// Run parses and executes one command line. Command errors are printed to
// the context; the returned error is reserved for the session itself.
func Run(c *Context, line string) error {
	args, err := shellwords.Parse(line)
	if err != nil {
		c.Printf("parse error: %v\n", err)
		return nil
	}
	if len(args) == 0 {
		return nil
	}
	if err := Exec(c, args[0], args[1:]); err == ErrNotFound {
		c.Printf("%v\n", err)
	} else if err != nil {
		c.Printf("error: %v\n", err)
	}
	return nil
}

func names() []string {
	ret := make([]string, 0, len(Commands))
	for name := range Commands {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

var HelpCmd = cmd(&Command{
	Name: "help",
	Desc: "List commands.",
	Run: func(c *Context) {
		pad := 0
		for _, name := range names() {
			if len(name) > pad {
				pad = len(name)
			}
		}
		fstr := fmt.Sprintf("  %%-%ds | %%s\n", pad)
		for _, name := range names() {
			c.Printf(fstr, name, Commands[name].Desc)
		}
	},
})
