// Package framework drives the protocol with a fixed period loop.
//
// Each iteration (a tick) runs the registered controllers level by level,
// lower levels first. Work from other goroutines enters the loop as
// messages which controllers take during the tick.
package framework

import (
	"context"
	"time"
)

// Named is implemented by things with a name.
type Named interface {
	Name() string
}

// Runnable runs in the background until the context is done.
type Runnable interface {
	Run(context.Context) error
}

// Message is posted into the loop by other goroutines.
type Message interface {
	// NewMessage creates an empty message of the same type.
	NewMessage() Message
}

// Controller is invoked once per tick.
type Controller interface {
	Control(ControlContext) error
}

// ControlFunc is the func form of Controller.
type ControlFunc func(ControlContext) error

// Control implements Controller.
func (f ControlFunc) Control(cc ControlContext) error {
	return f(cc)
}

// ControlContext describes the current tick.
type ControlContext interface {
	// Time is the time the tick started.
	Time() time.Time
	// Tick is the sequence number of the tick, starting at 1.
	Tick() uint64
	Context() context.Context
	PriorityLevel() int
	// Messages holds the messages collected when the tick started.
	Messages() MessageStore
	// PostRun installs one-shot hooks after the controllers of the
	// current level. Installed from a hook, they run next tick.
	PostRun(hooks ...Controller)

	LoopControl
}

// PriorityLevels is the number of priority levels.
const PriorityLevels int = 16

// Priority levels.
const (
	PrLvTop    int = 0
	PrLvHigh   int = 4
	PrLvNormal int = 8
	PrLvLow    int = 12
	PrLvIdle   int = PriorityLevels - 1

	// PrLvLink is for transports.
	PrLvLink = PrLvHigh
	// PrLvProtocol is for the BFIO tick of devices.
	PrLvProtocol = PrLvNormal
	// PrLvApp is for consumers of gate answers.
	PrLvApp = PrLvLow
	// PrLvPostProc is for post-processing.
	PrLvPostProc = PrLvIdle - 1
)

// LoopControl is the access to the loop from any goroutine.
type LoopControl interface {
	// PreRunAt installs one-shot hooks before the controllers of a level.
	PreRunAt(priorityLevel int, hooks ...Controller)
	// PostRunAt installs one-shot hooks after the controllers of a level.
	PostRunAt(priorityLevel int, hooks ...Controller)
	// PostMessage queues msg for the next tick.
	PostMessage(msg Message)
	// TriggerNext runs the next tick without waiting for the interval.
	TriggerNext()
}

// MessageStore holds the messages of a tick.
type MessageStore interface {
	ProcessMessages(MessageProcessor)
	MessageAppender
}

// MessageAppender appends messages to a store.
type MessageAppender interface {
	// AddMessages appends messages, processed by the controllers following.
	AddMessages(msgs ...Message)
}

// MessageProcessor visits messages.
type MessageProcessor interface {
	ProcessMessage(MessageProcessingContext)
}

// ProcessMessageFunc is the func form of MessageProcessor.
type ProcessMessageFunc func(MessageProcessingContext)

// ProcessMessage implements MessageProcessor.
func (f ProcessMessageFunc) ProcessMessage(mc MessageProcessingContext) {
	f(mc)
}

// MessageProcessingContext is the message being visited.
type MessageProcessingContext interface {
	CurrentMessage() Message
	// MessageTaken removes the message from the store.
	MessageTaken()
	// StopProcessing skips the remaining messages.
	StopProcessing()

	MessageAppender
}
