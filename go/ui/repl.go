package ui

import (
	"io"
	"os"
	"path/filepath"

	"github.com/chzyer/readline"
	"github.com/shibukawa/configdir"

	"github.com/lunixbochs/regio/go/debug/cmd"
	"github.com/lunixbochs/regio/go/mmio"
	"github.com/lunixbochs/regio/go/models"
)

type Repl struct {
	config *models.Config
	ctx    *cmd.Context
	rl     *readline.Instance
}

type nullCloser struct{ io.Writer }

func (n *nullCloser) Close() error { return nil }

func historyPath() string {
	configDirs := configdir.New("regio", "repl")
	cacheDir := configDirs.QueryCacheFolder()
	if err := cacheDir.MkdirAll(); err != nil {
		return ""
	}
	return filepath.Join(cacheDir.Path, "history")
}

func NewRepl(config *models.Config, a *mmio.Accessor, region cmd.Bounds) (*Repl, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "regio> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		HistoryFile:     historyPath(),
	})
	if err != nil {
		return nil, err
	}
	// route diagnostics through readline so the prompt is redrawn after them
	if config.Output == os.Stderr {
		config.Output = &nullCloser{rl.Stderr()}
	}
	return &Repl{
		config: config,
		ctx:    cmd.NewContext(rl.Stdout(), config, a, region),
		rl:     rl,
	}, nil
}

func (r *Repl) setPrompt() {
	if b := r.ctx.Buffered(); b != nil && b.Len() > 0 {
		r.rl.SetPrompt("regio*> ")
	} else {
		r.rl.SetPrompt("regio> ")
	}
}

// Run reads commands until EOF. An interrupt clears the current line.
func (r *Repl) Run() error {
	defer r.Close()
	for {
		r.setPrompt()
		ln := r.rl.Line()
		if ln.CanContinue() {
			continue
		} else if ln.CanBreak() {
			break
		}
		if err := cmd.Run(r.ctx, ln.Line); err != nil {
			return err
		}
	}
	if b := r.ctx.Buffered(); b != nil && b.Len() > 0 {
		r.config.Logf("discarding %d buffered writes\n", b.Len())
	}
	return nil
}

func (r *Repl) Close() {
	r.rl.Close()
}
