package debug

import (
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/chzyer/readline"
	"github.com/pkg/errors"

	"github.com/lunixbochs/regio/go/debug/cmd"
	"github.com/lunixbochs/regio/go/mmio"
	"github.com/lunixbochs/regio/go/models"
)

// Server exposes the command shell to remote clients. Every connection gets
// its own Context, and commands from different connections never overlap.
type Server struct {
	config   *models.Config
	accessor *mmio.Accessor
	region   cmd.Bounds

	mu sync.Mutex
}

func NewServer(config *models.Config, a *mmio.Accessor, region cmd.Bounds) *Server {
	return &Server{config: config, accessor: a, region: region}
}

// Listen blocks until the listener fails.
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrap(err, "listen")
	}
	defer ln.Close()
	fmt.Fprintf(s.config.Output, "Waiting for connections on %s\n", ln.Addr())
	return s.Serve(ln)
}

func (s *Server) Serve(ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()
	s.config.Logf("Debug connection from %s\n", conn.RemoteAddr())
	rl, err := readline.HandleConn(readline.Config{Prompt: "regio> "}, conn)
	if err != nil {
		s.config.Logf("error opening readline for %s: %v\n", conn.RemoteAddr(), err)
		return
	}
	defer rl.Close()
	s.Session(rl.Stdout(), rl.Readline)
	s.config.Logf("%s disconnected\n", conn.RemoteAddr())
}

// Session runs commands read by next until it returns an error. Pending
// buffered writes are dropped when the session ends.
func (s *Server) Session(w io.Writer, next func() (string, error)) {
	c := cmd.NewContext(w, s.config, s.accessor, s.region)
	for {
		line, err := next()
		if err != nil {
			if err != io.EOF && err != readline.ErrInterrupt {
				s.config.Logf("error in readline: %v\n", err)
			}
			break
		}
		s.mu.Lock()
		err = cmd.Run(c, line)
		s.mu.Unlock()
		if err != nil {
			fmt.Fprintf(w, "error in command: %v\n", err)
			break
		}
	}
}
