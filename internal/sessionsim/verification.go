package sessionsim

import (
	"fmt"

	"github.com/okian/lingua/internal/domain/model"
	"github.com/okian/lingua/internal/domain/placement"
	"github.com/okian/lingua/internal/domain/scoring"
)

// expectedScore applies the volume heuristic to the planned turns.
func expectedScore(p plan) (int, error) {
	turns := make([]model.Turn, 0, len(p.Turns))
	for _, t := range p.Turns {
		who, err := model.ParseSpeaker(t.Who)
		if err != nil {
			return 0, err
		}
		turns = append(turns, model.Turn{Who: who, Text: t.Text})
	}
	return scoring.Score(turns), nil
}

// verifySession checks the end result and the stored log against the plan.
// The replayed turn must not appear twice.
func verifySession(p plan, ended endResponse, sess sessionResponse) error {
	want, err := expectedScore(p)
	if err != nil {
		return err
	}
	if ended.Score != want {
		return fmt.Errorf("%w: score %d, expected %d", ErrVerification, ended.Score, want)
	}
	if len(ended.Turns) != len(p.Turns) {
		return fmt.Errorf("%w: end returned %d turns, expected %d", ErrVerification, len(ended.Turns), len(p.Turns))
	}
	if len(sess.Turns) != len(p.Turns) {
		return fmt.Errorf("%w: stored %d turns, expected %d", ErrVerification, len(sess.Turns), len(p.Turns))
	}
	for i, t := range sess.Turns {
		if t.Who != p.Turns[i].Who || t.Text != p.Turns[i].Text {
			return fmt.Errorf("%w: turn %d is %s %q, expected %s %q",
				ErrVerification, i, t.Who, t.Text, p.Turns[i].Who, p.Turns[i].Text)
		}
	}
	if sess.State != model.StateEnded.String() {
		return fmt.Errorf("%w: session state %q after end", ErrVerification, sess.State)
	}
	return nil
}

// verifyPlacement compares the service's overall result with a local
// computation over the same scores.
func verifyPlacement(scores []placement.Score, got placementResponse) error {
	want, err := placement.Place(scores)
	if err != nil {
		return err
	}
	if float64(want.OverallBand) != got.OverallBand || string(want.OverallLevel) != got.OverallLevel {
		return fmt.Errorf("%w: placement %.1f %s, expected %.1f %s",
			ErrVerification, got.OverallBand, got.OverallLevel, float64(want.OverallBand), want.OverallLevel)
	}
	return nil
}
