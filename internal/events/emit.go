package events

import (
	"context"
	"time"

	"commitsonic/internal/models"
)

const (
	ActorListener = "listener"
	ActorGitHub   = "github"
	ActorSystem   = "system"
)

const (
	TargetRepository = "repository"
	TargetListener   = "listener"
)

func (e *Emitter) Emit(evt models.Event) {
	if e == nil {
		return
	}

	evt.TimeStamp = time.Now().UTC()

	select {
	case e.buf <- evt:
	default:
		ctx, cancel := context.WithTimeout(
			context.Background(),
			2*time.Second,
		)
		defer cancel()

		_ = e.insertOne(ctx, evt)
	}
}
