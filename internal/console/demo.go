package console

import (
	"context"
	"fmt"
	"time"

	"github.com/bft-labs/pencen/pkg/terminal"
)

// demoPoll is how often the demo checks whether a step has finished.
const demoPoll = 10 * time.Millisecond

type demoStep struct {
	line  string
	until func(terminal.Snapshot) bool
}

func stageIs(want terminal.Stage) func(terminal.Snapshot) bool {
	return func(s terminal.Snapshot) bool { return s.Stage == want }
}

// demoScript is the reference visit: login, card read, GPS fix, condition
// update and thumbprint, ending on the receipt.
var demoScript = []demoStep{
	{"login", stageIs(terminal.StageScan)},
	{"scan", stageIs(terminal.StageVerify)},
	{"gps", func(s terminal.Snapshot) bool { return s.Location.Status == terminal.LocationVerified }},
	{"condition mobile", nil},
	{"thumb", stageIs(terminal.StageSuccess)},
	{"status", nil},
}

// Demo plays the reference visit, echoing each command as if typed. It
// waits for every step to finish before issuing the next one.
func (c *Console) Demo(ctx context.Context) error {
	for _, step := range demoScript {
		c.out.Printf("> %s", step.line)
		if err := c.Execute(step.line); err != nil {
			return fmt.Errorf("demo %q: %w", step.line, err)
		}
		if step.until == nil {
			continue
		}
		if err := c.waitFor(ctx, step.until); err != nil {
			return fmt.Errorf("demo %q: %w", step.line, err)
		}
	}
	return nil
}

func (c *Console) waitFor(ctx context.Context, done func(terminal.Snapshot) bool) error {
	ticker := time.NewTicker(demoPoll)
	defer ticker.Stop()
	for {
		snap, err := c.term.Snapshot()
		if err != nil {
			return err
		}
		if done(snap) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
