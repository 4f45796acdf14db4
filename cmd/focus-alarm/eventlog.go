package main

import (
	"log"

	"github.com/lixenwraith/focus-alarm/engine"
)

// eventLog records what the user saw: audio status changes, rejected input and the acknowledgment
// Session start, stop and completion are logged by the controller itself
type eventLog struct {
	engine.NopListener
}

func (eventLog) AudioStatus(s engine.AudioStatus) {
	log.Printf("[audio] status %s (ok=%t)", s.Status, s.OK)
}

func (eventLog) InputRejected(err error) {
	log.Printf("[input] rejected: %v", err)
}

func (eventLog) CompletionAcknowledged(info engine.SessionInfo) {
	log.Printf("[session] %s acknowledged", info.ID)
}

// withEventLog fans controller notifications out to view and the debug log
func withEventLog(view engine.Listener) engine.Listener {
	return engine.MultiListener{view, eventLog{}}
}
