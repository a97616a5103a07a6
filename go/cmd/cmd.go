package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	dcmd "github.com/lunixbochs/regio/go/debug/cmd"
	"github.com/lunixbochs/regio/go/mmap"
	"github.com/lunixbochs/regio/go/mmio"
	"github.com/lunixbochs/regio/go/models"
)

type RegioCmd struct {
	Config *models.Config

	// Args describes the positional arguments for usage output.
	Args       string
	SetupFlags func() error
	RunRegio   func(args []string) error
	Teardown   func()

	Region   *mmap.Region
	Accessor *mmio.Accessor
	Flags    *flag.FlagSet

	profile, profiles *string
}

func NewRegioCmd(args string) *RegioCmd {
	fs := flag.NewFlagSet("cli", flag.ContinueOnError)
	return &RegioCmd{Flags: fs, Args: args}
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

func (c *RegioCmd) PrintError(err error) {
	// print an error, and a stacktrace if available
	fmt.Fprintf(os.Stderr, "%s\n", strings.Repeat("-", 40))
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	if c.Config == nil || !c.Config.Verbose {
		return
	}
	if err, ok := errors.Cause(err).(stackTracer); ok {
		printStack(err.StackTrace())
	} else if err, ok := err.(stackTracer); ok {
		printStack(err.StackTrace())
	}
}

func printStack(st errors.StackTrace) {
	// parse full path and method name for each stack frame
	var frames [][]string
	for _, f := range st {
		fullpath := ""
		fileline := fmt.Sprintf("%s:%d", f, f)
		method := fmt.Sprintf("%n", f)

		frame := fmt.Sprintf("%+s", f)
		tmp := strings.SplitN(frame, "\n", 3)
		if len(tmp) == 2 {
			pathsplit := strings.Split(tmp[0], "/")
			method = pathsplit[len(pathsplit)-1]
			fullpath = strings.TrimSpace(tmp[1])
		}
		frames = append(frames, []string{fullpath, fileline, method})
		if method == "main.main" {
			break
		}
	}
	// calculate column widths
	widths := make([]int, 2)
	for _, f := range frames {
		for i, s := range f[:2] {
			if len(s) > widths[i] {
				widths[i] = len(s)
			}
		}
	}
	for _, f := range frames {
		for i := 0; i < 2; i++ {
			if widths[i] > 0 {
				pad := strings.Repeat(" ", widths[i]-len(f[i]))
				fmt.Fprintf(os.Stderr, "%s%s | ", f[i], pad)
			}
		}
		fmt.Fprintf(os.Stderr, "%s()\n", f[2])
	}
}

type usageError struct{ error }

type flagValues struct {
	dev, pci       string
	bar            uint
	offset, size   int64
	word, bulk     uint
	endian         string
	create, sync   bool
	color, verbose bool
	buffered       bool
}

// Parse parses argv[1:] into c.Config. Values from -profile fill in
// everything not given explicitly on the command line.
func (c *RegioCmd) Parse(argv []string) error {
	fs := c.Flags
	defaults := models.NewConfig()
	var v flagValues
	c.profile = fs.String("profile", "", "use a named register window from profiles.yaml")
	c.profiles = fs.String("profiles", "", "profiles file (default: search config folders)")
	fs.StringVar(&v.dev, "dev", "", "device or file to map (e.g. /dev/mem, /dev/uio0)")
	fs.StringVar(&v.pci, "pci", "", "map a BAR of a PCI function (domain:bus:device.function) or the first vendor:device match")
	fs.UintVar(&v.bar, "bar", defaults.BAR, "PCI BAR to map with -pci")
	fs.Int64Var(&v.offset, "offset", 0, "byte offset of the register window")
	fs.Int64Var(&v.size, "size", 0, "size of the register window (default: to end of file)")
	fs.UintVar(&v.word, "word", defaults.WordWidth, "word width in bits (8, 16, 32, 64)")
	fs.UintVar(&v.bulk, "bulk", 0, "bulk width in bits (default: word width)")
	fs.StringVar(&v.endian, "endian", defaults.Endian, "register byte order: little, big or native")
	fs.BoolVar(&v.create, "create", false, "create or extend a regular file to offset+size")
	fs.BoolVar(&v.sync, "sync", false, "open the device with O_SYNC")
	fs.BoolVar(&v.color, "color", false, "highlight changed values")
	fs.BoolVar(&v.verbose, "v", false, "verbose output")
	fs.BoolVar(&v.buffered, "buffer", false, "buffer writes until sync")

	fs.Usage = func() {
		usage := "Usage: %s [options]"
		if c.Args != "" {
			usage += " " + c.Args
		}
		usage += "\n\nOptions:\n"
		fmt.Fprintf(os.Stderr, usage, argv[0])
		var flags []*flag.Flag
		fs.VisitAll(func(f *flag.Flag) { flags = append(flags, f) })
		models.PrintFlags(os.Stderr, flags)
		fmt.Fprintf(os.Stderr, "\nExample:\n  %s -dev /dev/uio0 -size 0x1000 -word 32 %s\n", argv[0], c.Args)
	}
	if c.SetupFlags != nil {
		if err := c.SetupFlags(); err != nil {
			return err
		}
	}
	if err := fs.Parse(argv[1:]); err != nil {
		// the flag package already printed it
		return &usageError{err}
	}

	config := defaults
	if *c.profile != "" {
		var profiles *models.Profiles
		var err error
		if *c.profiles != "" {
			profiles, err = models.LoadProfiles(*c.profiles)
		} else {
			profiles, err = models.FindProfiles()
		}
		if err != nil {
			return err
		}
		prof, err := profiles.Get(*c.profile)
		if err != nil {
			return err
		}
		prof.Apply(config)
	}
	// explicit flags win over the profile
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
		switch f.Name {
		case "dev":
			config.Dev, config.PCI = v.dev, ""
		case "pci":
			config.Dev, config.PCI = "", v.pci
		case "bar":
			config.BAR = v.bar
		case "offset":
			config.Offset = v.offset
		case "size":
			config.Size = v.size
		case "word":
			config.WordWidth = v.word
		case "bulk":
			config.BulkWidth = v.bulk
		case "endian":
			config.Endian = v.endian
		case "create":
			config.Create = v.create
		case "sync":
			config.Sync = v.sync
		}
	})
	config.Color = v.color
	config.Verbose = v.verbose
	config.Buffered = v.buffered
	c.Config = config
	if set["dev"] && set["pci"] {
		return errors.New("-dev and -pci can't be used together")
	}
	if err := config.ResolvePCI(); err != nil {
		return err
	}
	return config.Validate()
}

// Open maps the configured window and builds its accessor.
func (c *RegioCmd) Open() error {
	config := c.Config
	region, err := mmap.Open(config.Dev, mmap.Options{
		Offset: config.Offset,
		Size:   config.Size,
		Create: config.Create,
		Sync:   config.Sync,
	})
	if err != nil {
		return err
	}
	a, err := region.Accessor(config.WordWidth, config.Bulk(), config.LittleEndian())
	if err != nil {
		region.Close()
		return err
	}
	config.Logf("mapped %s as %s\n", region, a)
	c.Region, c.Accessor = region, a
	return nil
}

// Context returns a command context over the open window.
func (c *RegioCmd) Context(w io.Writer) *dcmd.Context {
	return dcmd.NewContext(w, c.Config, c.Accessor, c.Region)
}

func (c *RegioCmd) Close() {
	if c.Region != nil {
		c.Region.Close()
		c.Region, c.Accessor = nil, nil
	}
}

// Run returns the process exit status.
func (c *RegioCmd) Run(argv []string) int {
	if err := c.Parse(argv); err != nil {
		if e, ok := err.(*usageError); ok {
			if e.error == flag.ErrHelp {
				return 0
			}
			return 2
		}
		fmt.Fprintf(os.Stderr, "%v\n\n", err)
		c.Flags.Usage()
		return 2
	}
	if err := c.Open(); err != nil {
		c.PrintError(err)
		return 1
	}
	defer c.Close()
	if c.Teardown != nil {
		defer c.Teardown()
	}
	if c.RunRegio == nil {
		return 0
	}
	if err := c.RunRegio(c.Flags.Args()); err != nil {
		c.PrintError(err)
		return 1
	}
	return 0
}

// Exec runs the named shell command with the positional arguments. Buffered
// writes are flushed before returning.
func (c *RegioCmd) Exec(name string, args []string) error {
	ctx := c.Context(os.Stdout)
	if err := dcmd.Exec(ctx, name, args); err != nil {
		return err
	}
	if b := ctx.Buffered(); b != nil {
		return b.Flush()
	}
	return nil
}
