package debug

import (
	"github.com/chzyer/readline"
	"github.com/pkg/errors"
)

func RunClient(addr string) error {
	if err := readline.DialRemote("tcp", addr); err != nil {
		return errors.Wrap(err, "error connecting to debug server")
	}
	return nil
}
