package events

import "commitsonic/internal/models"

func (e *Emitter) ListenerLogin(username string) {
	if e == nil {
		return
	}

	evt := models.Event{
		Action: "listener.login",

		ActorRole: ActorListener,
		ActorID:   username,

		TargetType: TargetListener,
		TargetID:   username,

		Props: nil,
	}

	e.Emit(evt)
}

func (e *Emitter) RepoRegistered(username, repo string, hookID int64) {
	if e == nil {
		return
	}

	evt := models.Event{
		Action: "repo.registered",

		ActorRole: ActorListener,
		ActorID:   username,

		TargetType: TargetRepository,
		TargetID:   repo,

		Props: map[string]any{
			"hookID": hookID,
		},
	}

	e.Emit(evt)
}
