package watch

import (
	"context"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/lunixbochs/argjoy"
	"github.com/pkg/errors"

	"github.com/lunixbochs/regio/go/cmd"
	"github.com/lunixbochs/regio/go/ui"
)

func parseArgs(args []string) (offset, count uint64, err error) {
	if len(args) != 2 {
		return 0, 0, errors.New("watch takes OFFSET COUNT")
	}
	if err = argjoy.RadStrToInt(&offset, []interface{}{args[0]}); err != nil {
		return 0, 0, errors.Wrap(err, "offset")
	}
	if err = argjoy.RadStrToInt(&count, []interface{}{args[1]}); err != nil {
		return 0, 0, errors.Wrap(err, "count")
	}
	if count == 0 {
		return 0, 0, errors.New("count must be positive")
	}
	return offset, count, nil
}

func Main(args []string) int {
	c := cmd.NewRegioCmd("OFFSET COUNT")
	var interval *time.Duration
	var limit *int
	c.SetupFlags = func() error {
		interval = c.Flags.Duration("interval", 100*time.Millisecond, "poll interval")
		limit = c.Flags.Int("n", 0, "stop after this many polls (0 polls forever)")
		return nil
	}
	c.RunRegio = func(args []string) error {
		offset, count, err := parseArgs(args)
		if err != nil {
			c.Flags.Usage()
			return err
		}
		if err := c.Context(io.Discard).CheckRange(offset, count); err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return ui.NewStreamUI(c.Config, c.Accessor, offset, count).Run(ctx, *interval, *limit)
	}
	return c.Run(args)
}

func init() { cmd.Register("watch", "poll a window of words and print changes", Main) }
