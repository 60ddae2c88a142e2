package battle

import (
	"context"
	"errors"

	"github.com/looplab/fsm"
)

// Phase is the top-level game screen.
type Phase string

const (
	PhaseTitle   Phase = "title"
	PhasePlaying Phase = "playing"
	PhaseResult  Phase = "result"
)

const (
	eventStart  = "start"
	eventFinish = "finish"
	eventTitle  = "title"
)

func newPhaseMachine(onEnter func(from, to Phase)) *fsm.FSM {
	return fsm.NewFSM(
		string(PhaseTitle),
		fsm.Events{
			{Name: eventStart, Src: []string{string(PhaseTitle), string(PhasePlaying), string(PhaseResult)}, Dst: string(PhasePlaying)},
			{Name: eventFinish, Src: []string{string(PhasePlaying)}, Dst: string(PhaseResult)},
			{Name: eventTitle, Src: []string{string(PhaseTitle), string(PhasePlaying), string(PhaseResult)}, Dst: string(PhaseTitle)},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				onEnter(Phase(e.Src), Phase(e.Dst))
			},
		},
	)
}

// transition fires a phase event. Re-entering the current phase is not an
// error.
func (c *Controller) transition(event string) {
	err := c.phase.Event(context.Background(), event)
	if err == nil {
		return
	}

	var noTransition fsm.NoTransitionError
	if errors.As(err, &noTransition) {
		return
	}
	c.logger.Warn("phase transition rejected",
		"event", event,
		"phase", c.phase.Current(),
		"error", err)
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	return Phase(c.phase.Current())
}
