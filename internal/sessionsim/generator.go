package sessionsim

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

var vocabulary = []string{ //nolint:gochecknoglobals // read-only word pool
	"I", "usually", "travel", "with", "my", "family", "every", "summer",
	"because", "we", "enjoy", "trying", "new", "food", "and", "meeting",
	"people", "the", "city", "was", "crowded", "but", "museums", "were",
	"quiet", "think", "learning", "languages", "helps", "me", "understand",
	"culture", "better", "last", "year", "visited", "friends", "abroad",
}

var topics = []string{"Travel", "Work", "Education", "Technology", "Health", "Hometown"} //nolint:gochecknoglobals // read-only topic pool

var coachLines = []string{ //nolint:gochecknoglobals // read-only coach replies
	"Could you tell me more about that?",
	"Why do you think so?",
	"How did that make you feel?",
	"Can you give me an example?",
}

// randomInt returns a uniform value in [0, n) using crypto/rand.
func randomInt(n int) int {
	if n <= 1 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// generateText builds a user answer of 1 to maxWords words.
func generateText(maxWords int) string {
	n := 1 + randomInt(max(1, maxWords))
	words := make([]string, n)
	for i := range words {
		words[i] = vocabulary[randomInt(len(vocabulary))]
	}
	return strings.Join(words, " ")
}

// generatePlan creates the turn sequence for one session. Every user turn
// is followed by a coach turn; each carries a unique idempotency key.
func generatePlan(turns, maxWords int) plan {
	p := plan{
		Topic: topics[randomInt(len(topics))],
		Turns: make([]plannedTurn, 0, turns*2),
	}
	for range turns {
		p.Turns = append(p.Turns,
			plannedTurn{Who: "user", Text: generateText(maxWords), Key: uuid.NewString()},
			plannedTurn{Who: "coach", Text: coachLines[randomInt(len(coachLines))], Key: uuid.NewString()},
		)
	}
	return p
}
