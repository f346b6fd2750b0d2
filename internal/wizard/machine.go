package wizard

import "pinnaclepm/pkg/types"

// NewDraft starts an empty draft at the first step.
func NewDraft(id string) *types.Draft {
	return &types.Draft{ID: id, CurrentStep: StepContact}
}

// CanEnter reports whether the applicant may be on the given step. Backward
// movement is always allowed; skipping ahead is not.
func CanEnter(d *types.Draft, step int) bool {
	return step >= StepContact && step <= StepCount && step <= d.CurrentStep
}

// Advance merges a step's submitted form into the draft and, when the step
// validates, moves the wizard forward. On validation failure the draft keeps
// the submitted values (so the applicant corrects in place) but the current
// step does not move. Re-submitting an earlier step never regresses
// progress, and already-entered later answers are kept.
func Advance(d *types.Draft, step int, form StepForm, rules Rules) map[string]string {
	form.Apply(d)

	if errs := ValidateStep(d, step, rules); len(errs) > 0 {
		return errs
	}

	if step == d.CurrentStep && d.CurrentStep < StepCount {
		d.CurrentStep++
	}

	return nil
}
