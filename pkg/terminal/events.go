package terminal

import (
	"github.com/bft-labs/pencen/internal/app"
	"github.com/bft-labs/pencen/internal/domain"
)

// StageChangeEvent is delivered when the workflow moves between stages.
type StageChangeEvent struct {
	Previous Stage
	Current  Stage
	Reason   string
}

// LocationPhaseEvent is delivered as the GPS fix enters each phase.
type LocationPhaseEvent struct {
	Phase LocationPhase
}

// ConditionChangeEvent is delivered when the beneficiary condition changes.
type ConditionChangeEvent struct {
	Condition ConditionStatus
}

// CaptureProgressEvent carries thumbprint progress in percent.
type CaptureProgressEvent struct {
	Progress int
}

// CaptureAbortedEvent is delivered when a running capture is cancelled.
type CaptureAbortedEvent struct {
	Reason string
}

// ReceiptIssuedEvent is delivered on entering Success.
type ReceiptIssuedEvent struct {
	Receipt TransactionReceipt
}

// CommandRejectedEvent is delivered for every refused command.
type CommandRejectedEvent struct {
	Command string
	Err     error
}

// EventHandler receives terminal notifications. Calls are made in order,
// outside the workflow lock, so handlers may read Snapshot or issue
// commands. Slow handlers delay later events.
type EventHandler interface {
	OnStageChange(StageChangeEvent)
	OnLocationPhase(LocationPhaseEvent)
	OnLocationVerified()
	OnConditionChange(ConditionChangeEvent)
	OnCaptureProgress(CaptureProgressEvent)
	OnCaptureConfirmed()
	OnCaptureAborted(CaptureAbortedEvent)
	OnReceiptIssued(ReceiptIssuedEvent)
	OnCommandRejected(CommandRejectedEvent)
}

// BaseEventHandler implements EventHandler with no-ops. Embed it and
// override what you need.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStageChange(StageChangeEvent)         {}
func (BaseEventHandler) OnLocationPhase(LocationPhaseEvent)     {}
func (BaseEventHandler) OnLocationVerified()                    {}
func (BaseEventHandler) OnConditionChange(ConditionChangeEvent) {}
func (BaseEventHandler) OnCaptureProgress(CaptureProgressEvent) {}
func (BaseEventHandler) OnCaptureConfirmed()                    {}
func (BaseEventHandler) OnCaptureAborted(CaptureAbortedEvent)   {}
func (BaseEventHandler) OnReceiptIssued(ReceiptIssuedEvent)     {}
func (BaseEventHandler) OnCommandRejected(CommandRejectedEvent) {}

// fanout adapts a list of EventHandlers to the workflow's emitter.
type fanout []EventHandler

var _ app.EventEmitter = fanout(nil)

func (f fanout) OnStageChange(previous, current domain.Stage, reason string) {
	e := StageChangeEvent{Previous: previous, Current: current, Reason: reason}
	for _, h := range f {
		h.OnStageChange(e)
	}
}

func (f fanout) OnLocationPhase(phase domain.LocationPhase) {
	for _, h := range f {
		h.OnLocationPhase(LocationPhaseEvent{Phase: phase})
	}
}

func (f fanout) OnLocationVerified() {
	for _, h := range f {
		h.OnLocationVerified()
	}
}

func (f fanout) OnConditionChange(c domain.ConditionStatus) {
	for _, h := range f {
		h.OnConditionChange(ConditionChangeEvent{Condition: c})
	}
}

func (f fanout) OnCaptureProgress(progress int) {
	for _, h := range f {
		h.OnCaptureProgress(CaptureProgressEvent{Progress: progress})
	}
}

func (f fanout) OnCaptureConfirmed() {
	for _, h := range f {
		h.OnCaptureConfirmed()
	}
}

func (f fanout) OnCaptureAborted(reason string) {
	for _, h := range f {
		h.OnCaptureAborted(CaptureAbortedEvent{Reason: reason})
	}
}

func (f fanout) OnReceiptIssued(r domain.TransactionReceipt) {
	for _, h := range f {
		h.OnReceiptIssued(ReceiptIssuedEvent{Receipt: r})
	}
}

func (f fanout) OnCommandRejected(command string, err error) {
	e := CommandRejectedEvent{Command: command, Err: err}
	for _, h := range f {
		h.OnCommandRejected(e)
	}
}
