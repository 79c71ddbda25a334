package music

import "commitsonic/internal/models"

const maxPan = 0.8

// GenerateAuthorMotif derives the pan, rhythm and color of an author.
func GenerateAuthorMotif(login string) models.AuthorMotif {
	return models.AuthorMotif{
		Login:         login,
		PanPosition:   HashToRange(login, -maxPan, maxPan),
		RhythmPattern: HashToRhythmPattern(login),
		Color:         HashToColor(login),
	}
}
