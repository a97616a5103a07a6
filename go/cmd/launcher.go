package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
)

type command struct {
	name, desc string
	main       func(args []string) int
}

var commands = make(map[string]*command)
var order []string
var pad int

// Register adds a subcommand. main receives os.Args with the program and
// command names joined into args[0], and returns the exit status.
func Register(name, desc string, main func(args []string) int) {
	if _, ok := commands[name]; ok {
		panic("duplicate command: " + name)
	}
	if len(name) > pad {
		pad = len(name)
	}
	commands[name] = &command{name, desc, main}
	order = append(order, name)
}

func usage(w io.Writer, prog string) {
	fmt.Fprintln(w, "Commands:")
	fstr := fmt.Sprintf("  %%-%ds | %%s\n", pad)
	for _, name := range order {
		cmd := commands[name]
		fmt.Fprintf(w, fstr, cmd.name, cmd.desc)
	}
	fmt.Fprintf(w, "\nRun '%s <command> -h' for command options.\n", prog)
	fmt.Fprintf(w, "Example: %s read -dev /dev/uio0 -size 0x1000 0x10\n\n", prog)
}

// Dispatch runs the subcommand named by argv[1] and returns its exit status.
func Dispatch(argv []string) int {
	if len(argv) < 2 {
		usage(os.Stderr, argv[0])
		return 1
	}
	switch argv[1] {
	case "help", "-h", "-help", "--help":
		usage(os.Stdout, argv[0])
		return 0
	}
	cmd, ok := commands[argv[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Command '%s' not found.\n\n", argv[1])
		usage(os.Stderr, argv[0])
		return 1
	}
	args := append([]string{strings.Join(argv[:2], " ")}, argv[2:]...)
	return cmd.main(args)
}

func Main() {
	os.Exit(Dispatch(os.Args))
}
