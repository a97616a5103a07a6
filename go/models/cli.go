package models

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// wrap splits s into lines of at most width bytes, breaking on spaces.
func wrap(s string, width int) []string {
	var lines []string
	for len(s) > width {
		cut := strings.LastIndexByte(s[:width+1], ' ')
		if cut <= 0 {
			cut = width
		}
		lines = append(lines, s[:cut])
		s = strings.TrimLeft(s[cut:], " ")
	}
	return append(lines, s)
}

// PrintFlags prints one flag per line as "-name (default) usage", with the
// usage column wrapped to 80 columns.
func PrintFlags(w io.Writer, flags []*flag.Flag) {
	wname, wdef := 0, 0
	for _, f := range flags {
		if len(f.Name) > wname {
			wname = len(f.Name)
		}
		if len(f.DefValue)+2 > wdef {
			wdef = len(f.DefValue) + 2
		}
	}
	indent := wname + wdef + 5
	wdesc := 80 - indent
	if wdesc < 20 {
		wdesc = 20
	}
	for _, f := range flags {
		def := ""
		if f.DefValue != "" && f.DefValue != "0" && f.DefValue != "false" {
			def = "(" + f.DefValue + ")"
		}
		for i, line := range wrap(f.Usage, wdesc) {
			if i == 0 {
				fmt.Fprintf(w, "  -%-*s %-*s %s\n", wname, f.Name, wdef, def, line)
			} else {
				fmt.Fprintf(w, "%s%s\n", strings.Repeat(" ", indent), line)
			}
		}
	}
}
