package terminal_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/pencen/pkg/terminal"
)

func testConfig() terminal.Config {
	cfg := terminal.DefaultConfig()
	cfg.AgentID = "AGT-8821-X"
	return cfg
}

func newStarted(t *testing.T, opts ...terminal.Option) *terminal.Terminal {
	t.Helper()
	opts = append([]terminal.Option{terminal.WithDelayer(instant{})}, opts...)
	term, err := terminal.New(testConfig(), opts...)
	require.NoError(t, err)
	require.NoError(t, term.Start(context.Background()))
	t.Cleanup(func() { _ = term.Stop() })
	return term
}

func waitStage(t *testing.T, term *terminal.Terminal, want terminal.Stage) {
	t.Helper()
	require.Eventually(t, func() bool {
		snap, err := term.Snapshot()
		return err == nil && snap.Stage == want
	}, 2*time.Second, time.Millisecond, "never reached %s", want)
}

// eventLog records terminal events.
type eventLog struct {
	terminal.BaseEventHandler

	mu       sync.Mutex
	stages   []terminal.Stage
	receipts []terminal.TransactionReceipt
	rejected []string
}

func (l *eventLog) OnStageChange(e terminal.StageChangeEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stages = append(l.stages, e.Current)
}

func (l *eventLog) OnReceiptIssued(e terminal.ReceiptIssuedEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.receipts = append(l.receipts, e.Receipt)
}

func (l *eventLog) OnCommandRejected(e terminal.CommandRejectedEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rejected = append(l.rejected, e.Command)
}

func (l *eventLog) snapshot() (stages []terminal.Stage, receipts int, rejected []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]terminal.Stage(nil), l.stages...), len(l.receipts), append([]string(nil), l.rejected...)
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*terminal.Config)
	}{
		{"missing agent id", func(c *terminal.Config) { c.AgentID = " " }},
		{"missing beneficiary name", func(c *terminal.Config) { c.Beneficiary.Name = "" }},
		{"missing beneficiary id", func(c *terminal.Config) { c.Beneficiary.IDNumber = "" }},
		{"negative amount", func(c *terminal.Config) { c.Amount = terminal.Money{MinorUnits: -1, Currency: "MYR"} }},
		{"negative delay", func(c *terminal.Config) { c.Timing.ScanDuration = -time.Second }},
		{"zero capture step", func(c *terminal.Config) { c.Timing.CaptureStep = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			_, err := terminal.New(cfg)
			assert.ErrorIs(t, err, terminal.ErrInvalidConfig)
		})
	}
}

func TestTerminal_CommandsBeforeStart(t *testing.T) {
	term, err := terminal.New(testConfig())
	require.NoError(t, err)

	assert.Equal(t, terminal.StateStopped, term.Status())
	assert.False(t, term.Running())
	assert.ErrorIs(t, term.Login(), terminal.ErrNotRunning)
	_, err = term.Snapshot()
	assert.ErrorIs(t, err, terminal.ErrNotRunning)
	assert.ErrorIs(t, term.Stop(), terminal.ErrNotRunning)
}

func TestTerminal_StartTwice(t *testing.T) {
	term := newStarted(t)
	assert.ErrorIs(t, term.Start(context.Background()), terminal.ErrAlreadyRunning)
	assert.True(t, term.Running())
}

func TestTerminal_FullCycle(t *testing.T) {
	events := &eventLog{}
	term := newStarted(t, terminal.WithEventHandler(events))

	require.NoError(t, term.Login())
	waitStage(t, term, terminal.StageScan)

	require.NoError(t, term.BeginScan())
	waitStage(t, term, terminal.StageVerify)

	snap, err := term.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "Haji Abu Bakar", snap.Beneficiary.Name)
	assert.Equal(t, terminal.ConditionBedridden, snap.Beneficiary.Condition)
	assert.False(t, snap.CaptureAllowed())

	require.NoError(t, term.AcquireLocation())
	require.Eventually(t, func() bool {
		snap, err := term.Snapshot()
		return err == nil && snap.Location.Status == terminal.LocationVerified
	}, 2*time.Second, time.Millisecond)

	require.NoError(t, term.SetCondition("mobile"))
	require.NoError(t, term.BeginBiometricCapture())
	waitStage(t, term, terminal.StageSuccess)

	snap, err = term.Snapshot()
	require.NoError(t, err)
	require.NotNil(t, snap.Receipt)
	assert.Equal(t, "AGT-8821-X", snap.Receipt.AgentID)
	assert.Equal(t, terminal.Money{MinorUnits: 125000, Currency: "MYR"}, snap.Receipt.Amount)
	assert.Regexp(t, `^TXN-[0-9A-F]{4}-[0-9A-F]{3}$`, snap.Receipt.TransactionID)

	require.NoError(t, term.StartNewCycle())
	waitStage(t, term, terminal.StageScan)

	stages, receipts, _ := events.snapshot()
	assert.Equal(t, []terminal.Stage{
		terminal.StageScan, terminal.StageVerify, terminal.StageSuccess, terminal.StageScan,
	}, stages)
	assert.Equal(t, 1, receipts)
}

func TestTerminal_Rejections(t *testing.T) {
	events := &eventLog{}
	term := newStarted(t, terminal.WithEventHandler(events))

	err := term.BeginScan()
	var rej *terminal.RejectionError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, "begin scan", rej.Command)
	assert.ErrorIs(t, err, terminal.ErrInvalidTransition)

	assert.ErrorIs(t, term.SetAgentID(""), terminal.ErrInvalidInput)

	_, _, rejected := events.snapshot()
	assert.Equal(t, []string{"begin scan", "set agent id"}, rejected)
}

func TestTerminal_LogoutKeepsAgentID(t *testing.T) {
	term := newStarted(t)

	require.NoError(t, term.SetAgentID("AGT-0001-Z"))
	require.NoError(t, term.Login())
	waitStage(t, term, terminal.StageScan)
	require.NoError(t, term.Logout())

	snap, err := term.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, terminal.StageLogin, snap.Stage)
	assert.Equal(t, "AGT-0001-Z", snap.AgentID)
}

func TestTerminal_StopAndRestart(t *testing.T) {
	term, err := terminal.New(testConfig(), terminal.WithDelayer(instant{}))
	require.NoError(t, err)

	require.NoError(t, term.Start(context.Background()))
	require.NoError(t, term.Login())
	waitStage(t, term, terminal.StageScan)
	require.NoError(t, term.Stop())

	assert.Equal(t, terminal.StateStopped, term.Status())
	assert.ErrorIs(t, term.BeginScan(), terminal.ErrNotRunning)

	// A new session starts over at Login.
	require.NoError(t, term.Start(context.Background()))
	defer func() { _ = term.Stop() }()
	snap, err := term.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, terminal.StageLogin, snap.Stage)
}

func TestTerminal_SetTiming(t *testing.T) {
	term, err := terminal.New(testConfig())
	require.NoError(t, err)

	bad := terminal.DefaultTiming()
	bad.CaptureStep = 101
	assert.ErrorIs(t, term.SetTiming(bad), terminal.ErrInvalidConfig)

	fast := terminal.DefaultTiming()
	fast.LoginDelay = 0
	fast.CaptureStep = 50
	require.NoError(t, term.SetTiming(fast))
	assert.Equal(t, fast, term.Timing())

	require.NoError(t, term.Start(context.Background()))
	defer func() { _ = term.Stop() }()

	// Zero login delay on the wall clock still completes.
	require.NoError(t, term.Login())
	waitStage(t, term, terminal.StageScan)
}

// fakePlugin records its lifecycle calls into a shared journal.
type fakePlugin struct {
	name    string
	journal *[]string
	initErr error
	cfg     terminal.PluginConfig
}

func (p *fakePlugin) Name() string { return p.name }

func (p *fakePlugin) Initialize(_ context.Context, cfg terminal.PluginConfig) error {
	*p.journal = append(*p.journal, "init "+p.name)
	p.cfg = cfg
	return p.initErr
}

func (p *fakePlugin) Shutdown(context.Context) error {
	*p.journal = append(*p.journal, "shutdown "+p.name)
	return nil
}

// listeningPlugin is a plugin that also handles events.
type listeningPlugin struct {
	fakePlugin
	eventLog
}

func TestTerminal_PluginOrder(t *testing.T) {
	var journal []string
	a := &fakePlugin{name: "a", journal: &journal}
	b := &fakePlugin{name: "b", journal: &journal}

	cfg := testConfig()
	cfg.ConfigPath = "/etc/pencen/config.toml"
	term, err := terminal.New(cfg, terminal.WithDelayer(instant{}), terminal.WithPlugin(a), terminal.WithPlugin(b))
	require.NoError(t, err)

	require.NoError(t, term.Start(context.Background()))
	assert.Equal(t, "/etc/pencen/config.toml", a.cfg.ConfigPath)
	assert.NotNil(t, a.cfg.Logger)

	fast := terminal.DefaultTiming()
	fast.ScanDuration = time.Millisecond
	require.NoError(t, a.cfg.SetTiming(fast))
	assert.Equal(t, fast, b.cfg.Timing())

	require.NoError(t, term.Stop())
	assert.Equal(t, []string{"init a", "init b", "shutdown b", "shutdown a"}, journal)
}

func TestTerminal_PluginInitFailure(t *testing.T) {
	var journal []string
	a := &fakePlugin{name: "a", journal: &journal}
	b := &fakePlugin{name: "b", journal: &journal, initErr: errors.New("boom")}
	c := &fakePlugin{name: "c", journal: &journal}

	term, err := terminal.New(testConfig(),
		terminal.WithPlugin(a), terminal.WithPlugin(b), terminal.WithPlugin(c))
	require.NoError(t, err)

	err = term.Start(context.Background())
	assert.EqualError(t, err, "boom")
	assert.Equal(t, terminal.StateFailed, term.Status())
	assert.Equal(t, []string{"init a", "init b", "shutdown a"}, journal)
	assert.ErrorIs(t, term.Login(), terminal.ErrNotRunning)
}

func TestTerminal_PluginReceivesEvents(t *testing.T) {
	var journal []string
	p := &listeningPlugin{fakePlugin: fakePlugin{name: "listener", journal: &journal}}
	term := newStarted(t, terminal.WithPlugin(p))

	require.NoError(t, term.Login())
	waitStage(t, term, terminal.StageScan)

	stages, _, _ := p.snapshot()
	assert.Equal(t, []terminal.Stage{terminal.StageScan}, stages)
}
