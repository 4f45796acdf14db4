package constant

import "time"

// Session Timing
const (
	// PollInterval is the cadence of both the session clock and the reminder check
	PollInterval = 1000 * time.Millisecond

	// ReminderMinInterval is the lower bound of the randomized reminder window
	ReminderMinInterval = 180 * time.Second

	// ReminderMaxInterval is the upper bound of the randomized reminder window
	ReminderMaxInterval = 300 * time.Second
)

// Completion Sequence
const (
	// CompletionRepeats is how many times the selected tone plays at session end
	CompletionRepeats = 3

	// CompletionSpacing separates consecutive completion tones
	CompletionSpacing = 500 * time.Millisecond

	// CompletionAckDelay is the wait before the completion acknowledgment is presented
	CompletionAckDelay = 2000 * time.Millisecond
)

// Timeline
const (
	// LoopQueueSize is the serial timeline's pending callback capacity
	LoopQueueSize = 256
)
