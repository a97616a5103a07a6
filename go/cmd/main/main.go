package main

import (
	"github.com/lunixbochs/regio/go/cmd"

	_ "github.com/lunixbochs/regio/go/cmd/attach"
	_ "github.com/lunixbochs/regio/go/cmd/regs"
	_ "github.com/lunixbochs/regio/go/cmd/repl"
	_ "github.com/lunixbochs/regio/go/cmd/watch"
)

func main() { cmd.Main() }
