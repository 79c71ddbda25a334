package events

import "commitsonic/internal/models"

// GitHubPushReceived records one processed push delivery.
func (e *Emitter) GitHubPushReceived(deliveryID, repo, ref string, commitIDs []string) {
	if e == nil {
		return
	}

	evt := models.Event{
		Action: "github.push.received",

		ActorRole: ActorGitHub,
		ActorID:   deliveryID,

		TargetType: TargetRepository,
		TargetID:   repo,

		Props: map[string]any{
			"ref":       ref,
			"commits":   commitIDs,
			"processed": len(commitIDs),
		},
	}

	e.Emit(evt)
}

// GitHubPingReceived records a webhook ping for repo.
func (e *Emitter) GitHubPingReceived(deliveryID, repo string, hookID int64) {
	if e == nil {
		return
	}

	evt := models.Event{
		Action: "github.ping.received",

		ActorRole: ActorGitHub,
		ActorID:   deliveryID,

		TargetType: TargetRepository,
		TargetID:   repo,

		Props: map[string]any{
			"hookID": hookID,
		},
	}

	e.Emit(evt)
}
