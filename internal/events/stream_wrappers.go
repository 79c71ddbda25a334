package events

import (
	"time"

	"commitsonic/internal/models"
)

func (e *Emitter) StreamConnected(listener, repo, transport, subscriptionID string) {
	if e == nil {
		return
	}

	evt := models.Event{
		Action:     "stream.connected",
		ActorRole:  ActorListener,
		ActorID:    listener,
		TargetType: TargetRepository,
		TargetID:   repo,
		Props: map[string]any{
			"transport":      transport,
			"subscriptionID": subscriptionID,
		},
	}

	e.Emit(evt)
}

func (e *Emitter) StreamDisconnected(listener, repo, transport, subscriptionID string, lasted time.Duration) {
	if e == nil {
		return
	}

	evt := models.Event{
		Action:     "stream.disconnected",
		ActorRole:  ActorListener,
		ActorID:    listener,
		TargetType: TargetRepository,
		TargetID:   repo,
		Props: map[string]any{
			"transport":      transport,
			"subscriptionID": subscriptionID,
			"seconds":        lasted.Seconds(),
		},
	}

	e.Emit(evt)
}
