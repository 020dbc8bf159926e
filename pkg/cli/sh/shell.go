// Package sh provides an interactive shell issuing BFIO gate requests.
package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/robotalks/bfio.go/pkg/bfio"
	"github.com/robotalks/bfio.go/pkg/bfio/device"
	"github.com/robotalks/bfio.go/pkg/bfio/stream"
	"github.com/robotalks/bfio.go/pkg/config"
	fx "github.com/robotalks/bfio.go/pkg/framework"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	Loopback    bool

	Shell  *ishell.Shell
	Config *config.Config
	Link   *Link
}

// Link is a running loop driving a device on an open stream.
type Link struct {
	Name   string
	Ctx    context.Context
	Cancel func()
	Loop   *fx.Loop
	Device *device.Device
	// Peer is the simulated device in loopback mode.
	Peer *device.Device
}

const (
	shellKey     = "$shell"
	closedPrompt = "[closed] > "
	loopbackName = "loopback"
)

var (
	// flags

	evalOnly   bool
	outputJSON bool
	loopback   bool

	// commands
	commands = []*ishell.Cmd{
		&OpenCmd,
		&LoopbackCmd,
		&CloseCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
	flag.BoolVar(&loopback, "loopback", loopback, "Talk to an in-process simulated peer.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *config.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,
		Loopback:    loopback,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(closedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeOpen wraps command func requiring an open link.
func MustBeOpen(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Link == nil {
			c.Err(errors.New("link not open"))
			return
		}
		fn(c)
	}
}

// WaitTimeout is how long a command waits for its answer.
func (s *Shell) WaitTimeout() time.Duration {
	return 2*s.Config.Timeout + time.Second
}

// Wait waits for the Result of a Future.
func (s *Shell) Wait(f device.Future) device.Result {
	select {
	case r := <-f.ResultChan():
		return r
	case <-time.After(s.WaitTimeout()):
		return device.Result{Err: bfio.Errorf(bfio.NoConnection, "shell", "no result within %v", s.WaitTimeout())}
	}
}

// DoGate requests a gate with text values and prints the answer.
func DoGate(c *ishell.Context, id bfio.FunctionID, args ...string) error {
	s := ShellFrom(c)
	if s.Link == nil {
		err := errors.New("link not open")
		c.Err(err)
		return err
	}
	r := s.Wait(s.Link.Device.DoArgs(id, args...))
	if r.Err != nil {
		c.Err(r.Err)
		return r.Err
	}
	s.Print(c, id, r.Values)
	return nil
}

// Print prints the values answered by a gate.
func (s *Shell) Print(c *ishell.Context, id bfio.FunctionID, vals []interface{}) {
	if s.OutputJSON {
		out, err := json.Marshal(map[string]interface{}{
			"id":     byte(id),
			"gate":   id.String(),
			"values": vals,
		})
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	if len(vals) == 0 {
		c.Println("OK")
		return
	}
	c.Printf("%s %s\n", id, strings.Join(bfio.FormatValues(vals), " "))
}

// Query runs fn inside the loop of the open link and waits for it.
func (s *Shell) Query(fn func(*device.Device)) error {
	if s.Link == nil {
		return errors.New("link not open")
	}
	done := make(chan struct{})
	s.Link.Device.Post(func(d *device.Device) {
		fn(d)
		close(done)
	})
	select {
	case <-done:
		return nil
	case <-time.After(s.WaitTimeout()):
		return errors.New("device loop not responding")
	}
}

// Open opens the link at url.
func (s *Shell) Open(url string) error {
	port, err := stream.Open(url)
	if err != nil {
		return err
	}
	dev, err := s.Config.NewDevice(port)
	if err != nil {
		port.Close()
		return err
	}
	s.start(&Link{Name: url, Device: dev})
	return nil
}

// OpenLoopback opens a link to a simulated peer over a pipe.
func (s *Shell) OpenLoopback() error {
	local, remote := stream.Pipe()
	dev, err := s.Config.NewDevice(local)
	if err != nil {
		return err
	}
	peerConf := *s.Config
	peerConf.Name, peerConf.ID = loopbackName, s.Config.ID+1
	peer, err := peerConf.NewDevice(remote)
	if err != nil {
		return err
	}
	s.start(&Link{Name: loopbackName, Device: dev, Peer: peer})
	return nil
}

func (s *Shell) start(link *Link) {
	link.Ctx, link.Cancel = context.WithCancel(context.Background())
	link.Loop = fx.NewLoop()
	link.Loop.Interval = s.Config.Interval
	link.Loop.Add(link.Device)
	if link.Peer != nil {
		link.Loop.Add(link.Peer)
	}
	s.Close()
	s.Link = link
	go func() {
		if err := link.Loop.Run(link.Ctx); err != nil && err != context.Canceled {
			glog.Errorf("link %s: %v", link.Name, err)
		}
	}()
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", link.Name))
}

// Close closes the current link.
func (s *Shell) Close() {
	if s.Link != nil {
		s.Link.Cancel()
		s.Link = nil
		s.Shell.SetPrompt(closedPrompt)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	var err error
	switch {
	case s.Loopback:
		err = s.OpenLoopback()
	case s.Config.Port != "":
		if s.Interactive {
			s.Shell.Printf("Opening %s ...\n", s.Config.Port)
		}
		err = s.Open(s.Config.Port)
	}
	if err != nil {
		glog.Fatalf("open link failed: %v", err)
	}

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			glog.Fatal(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	glog.Fatal("command expected")
}

var (
	// OpenCmd opens a link.
	OpenCmd = ishell.Cmd{
		Name:    "open",
		Aliases: []string{"o"},
		Help:    "URL (serial://, tcp://, ws://)",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(errors.New("URL required"))
				return
			}
			if err := ShellFrom(c).Open(c.Args[0]); err != nil {
				c.Err(err)
			}
		},
	}

	// LoopbackCmd opens a link to a simulated peer.
	LoopbackCmd = ishell.Cmd{
		Name: "loopback",
		Help: "",
		Func: func(c *ishell.Context) {
			if err := ShellFrom(c).OpenLoopback(); err != nil {
				c.Err(err)
			}
		},
	}

	// CloseCmd closes the current link.
	CloseCmd = ishell.Cmd{
		Name:    "close",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Close()
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	config.SetupFlags()
	flag.Parse()
	conf := config.NewConfig()
	if err := conf.Load(); err != nil {
		glog.Fatal(err)
	}
	New(conf).Run(flag.Args()...)
}
