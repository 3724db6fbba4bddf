// Package console drives a terminal from typed operator commands.
package console

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/bft-labs/pencen/pkg/terminal"
)

// ErrQuit is returned by Execute when the operator asks to leave.
var ErrQuit = errors.New("quit")

// Terminal is the subset of *terminal.Terminal the console drives.
type Terminal interface {
	SetAgentID(id string) error
	Login() error
	BeginScan() error
	AcquireLocation() error
	SetCondition(value string) error
	BeginBiometricCapture() error
	Logout() error
	StartNewCycle() error
	Snapshot() (terminal.Snapshot, error)
}

// Console parses operator commands and renders their results.
type Console struct {
	term Terminal
	out  *Renderer
	lang language.Tag
	root *cobra.Command
}

// New returns a Console driving term. Output goes through out, which should
// also be registered as the terminal's event handler so both share a writer.
func New(term Terminal, out *Renderer, lang language.Tag) *Console {
	c := &Console{term: term, out: out, lang: lang}
	c.root = c.commands()
	return c
}

func (c *Console) commands() *cobra.Command {
	root := &cobra.Command{
		Use:           "pencen",
		Short:         "Pension verification terminal commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.SetOut(c.out)
	root.SetErr(c.out)

	noArgs := func(use, short string, run func() error, aliases ...string) *cobra.Command {
		return &cobra.Command{
			Use:     use,
			Short:   short,
			Aliases: aliases,
			Args:    cobra.NoArgs,
			RunE:    func(*cobra.Command, []string) error { return run() },
		}
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "agent <id>",
			Short: "Set the agent id (Login stage)",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				return c.term.SetAgentID(args[0])
			},
		},
		noArgs("login", "Submit agent credentials", c.term.Login),
		noArgs("scan", "Read the beneficiary's identity card", c.term.BeginScan),
		noArgs("gps", "Verify the visit location", c.term.AcquireLocation, "location"),
		&cobra.Command{
			Use:       "condition <bedridden|mobile|deceased>",
			Short:     "Record the beneficiary condition",
			Args:      cobra.ExactArgs(1),
			ValidArgs: []string{"bedridden", "mobile", "deceased"},
			RunE: func(_ *cobra.Command, args []string) error {
				return c.term.SetCondition(args[0])
			},
		},
		noArgs("thumb", "Capture the beneficiary's thumbprint", c.term.BeginBiometricCapture, "capture"),
		noArgs("logout", "Disconnect and return to agent login", c.term.Logout),
		noArgs("new", "Start the next transaction", c.term.StartNewCycle),
		noArgs("status", "Show the terminal state", c.status),
		noArgs("quit", "Leave the terminal", func() error { return ErrQuit }, "exit"),
	)
	return root
}

func (c *Console) status() error {
	snap, err := c.term.Snapshot()
	if err != nil {
		return err
	}
	c.out.Printf("%s", FormatSnapshot(snap, c.lang))
	return nil
}

// Execute runs one command line. Blank lines do nothing. Rejected commands
// are returned; the renderer has already reported them through the event
// stream.
func (c *Console) Execute(line string) error {
	args := strings.Fields(line)
	if len(args) == 0 {
		return nil
	}
	// Parsed flags such as --help stay set on a command; start each line fresh.
	c.root = c.commands()
	c.root.SetArgs(args)
	return c.root.Execute()
}

// Run reads commands from in until EOF, quit or ctx is done. Command errors
// are printed and do not end the loop.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	stop := make(chan struct{})
	defer close(stop)

	// A blocked read cannot be interrupted; the reader exits on its next line.
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-stop:
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			err := c.Execute(line)
			if errors.Is(err, ErrQuit) {
				return nil
			}
			if err != nil && !isRejection(err) {
				c.out.Printf("error: %v", err)
			}
		}
	}
}

// isRejection reports whether err already reached the operator as a
// command-rejected event.
func isRejection(err error) bool {
	var rej *terminal.RejectionError
	return errors.As(err, &rej)
}
