package engine

import "time"

// CompletionMessage is presented with the completion acknowledgment
const CompletionMessage = "Great job! Your focus session is complete."

// SessionInfo identifies one countdown run
type SessionInfo struct {
	ID           string
	TotalSeconds int
	Start        time.Time
	End          time.Time
	Sound        string
}

// AudioStatus mirrors the tone engine device status for display
type AudioStatus struct {
	Status string
	OK     bool
}

// Listener receives controller notifications on the Timeline goroutine
type Listener interface {
	Tick(t Tick)
	AudioStatus(s AudioStatus)
	SessionStarted(info SessionInfo)
	SessionStopped(info SessionInfo)
	SessionCompleted(info SessionInfo, final Tick)
	CompletionAcknowledged(info SessionInfo)
	InputRejected(err error)
}

// NopListener ignores every notification, embed to implement a subset
type NopListener struct{}

func (NopListener) Tick(Tick) {}
func (NopListener) AudioStatus(AudioStatus) {}
func (NopListener) SessionStarted(SessionInfo) {}
func (NopListener) SessionStopped(SessionInfo) {}
func (NopListener) SessionCompleted(SessionInfo, Tick) {}
func (NopListener) CompletionAcknowledged(SessionInfo) {}
func (NopListener) InputRejected(error) {}

// MultiListener fans notifications out in order
type MultiListener []Listener

func (m MultiListener) Tick(t Tick) {
	for _, l := range m {
		l.Tick(t)
	}
}

func (m MultiListener) AudioStatus(s AudioStatus) {
	for _, l := range m {
		l.AudioStatus(s)
	}
}

func (m MultiListener) SessionStarted(info SessionInfo) {
	for _, l := range m {
		l.SessionStarted(info)
	}
}

func (m MultiListener) SessionStopped(info SessionInfo) {
	for _, l := range m {
		l.SessionStopped(info)
	}
}

func (m MultiListener) SessionCompleted(info SessionInfo, final Tick) {
	for _, l := range m {
		l.SessionCompleted(info, final)
	}
}

func (m MultiListener) CompletionAcknowledged(info SessionInfo) {
	for _, l := range m {
		l.CompletionAcknowledged(info)
	}
}

func (m MultiListener) InputRejected(err error) {
	for _, l := range m {
		l.InputRejected(err)
	}
}
