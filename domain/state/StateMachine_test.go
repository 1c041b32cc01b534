package state_test

import (
	"snagline/domain/state"
	"testing"

	. "github.com/onsi/gomega"
)

func TestStateMachine(t *testing.T) {
	RegisterTestingT(t)

	pending := state.State{Name: "pending"}
	inProgress := state.State{Name: "in_progress"}
	done := state.State{Name: "done"}

	sm := state.NewStateMachine(
		[]state.State{pending, inProgress, done},
		[]state.Transition{
			{Name: "start", From: pending, To: inProgress},
			{Name: "finish", From: inProgress, To: done},
			{Name: "reopen", From: done, To: inProgress},
		},
	)

	t.Run("should filter available transitions by from and to", func(t *testing.T) {
		Expect(sm.AvailableTransitions("pending", "")).To(Equal([]state.Transition{
			{Name: "start", From: pending, To: inProgress}}))
		Expect(sm.AvailableTransitions("", "in_progress")).To(Equal([]state.Transition{
			{Name: "start", From: pending, To: inProgress},
			{Name: "reopen", From: done, To: inProgress}}))
		Expect(sm.AvailableTransitions("pending", "done")).To(BeEmpty())
	})

	t.Run("should judge transition legality", func(t *testing.T) {
		Expect(sm.LegalTransition("pending", "in_progress")).To(BeTrue())
		Expect(sm.LegalTransition("pending", "done")).To(BeFalse())
		Expect(sm.LegalTransition("done", "in_progress")).To(BeTrue())
		Expect(sm.LegalTransition("unknown", "done")).To(BeFalse())
	})
}
