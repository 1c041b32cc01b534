package approval_test

import (
	"snagline/domain"
	"snagline/domain/approval"
	"strings"
	"testing"
	"time"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func TestFormatEntry(t *testing.T) {
	RegisterTestingT(t)

	ts := types.TimestampOfDate(2025, 3, 14, 9, 30, 0, 0, time.Now().Location())

	t.Run("should format approval block with notes", func(t *testing.T) {
		entry := approval.ApprovalEntry(ts, "Dana", "looks good")
		Expect(approval.FormatEntry(entry)).To(Equal(
			"\n\n--- 14/03/2025 09:30 - Dana (Developer) ---" +
				"\nAPPROVED" +
				"\nNotes: looks good" +
				"\nSTATUS: APPROVED - Work Accepted"))
	})

	t.Run("should omit notes line when notes are empty", func(t *testing.T) {
		entry := approval.ApprovalEntry(ts, "Dana", "")
		Expect(strings.Contains(approval.FormatEntry(entry), "Notes:")).To(BeFalse())
	})

	t.Run("should format rejection block", func(t *testing.T) {
		entry := approval.RejectionEntry(ts, "Dana", "grout cracked again")
		Expect(approval.FormatEntry(entry)).To(Equal(
			"\n\n--- 14/03/2025 09:30 - Dana (Developer) ---" +
				"\nREJECTED - REQUIRES REWORK" +
				"\nReason: grout cracked again" +
				"\nSTATUS: Returned to Builder"))
	})

	t.Run("should format submission block without role", func(t *testing.T) {
		planned := types.TimestampOfDate(2025, 3, 20, 0, 0, 0, 0, time.Now().Location())
		entry := approval.SubmissionEntry(ts, "Bob", "re-sealed the joints", planned)
		Expect(approval.FormatEntry(entry)).To(Equal(
			"\n\n--- 14/03/2025 09:30 - Bob ---" +
				"\nre-sealed the joints" +
				"\nPlanned Completion: 20/03/2025" +
				"\nSTATUS: COMPLETED - Awaiting Developer Approval"))
	})

	t.Run("should keep placeholder when submission has no notes", func(t *testing.T) {
		entry := approval.SubmissionEntry(ts, "Bob", "", types.Timestamp{})
		Expect(entry.Lines[0]).To(Equal("(no completion notes)"))
	})
}

func TestParseHistory(t *testing.T) {
	RegisterTestingT(t)

	ts := types.TimestampOfDate(2025, 3, 14, 9, 30, 0, 0, time.Now().Location())

	t.Run("should parse what AppendEntry writes", func(t *testing.T) {
		notes := ""
		notes = approval.AppendEntry(notes, approval.SubmissionEntry(ts, "Bob", "done", types.Timestamp{}))
		notes = approval.AppendEntry(notes, approval.RejectionEntry(ts, "Dana", "not level"))
		notes = approval.AppendEntry(notes, approval.ApprovalEntry(ts, "Dana", "ok now"))

		entries := approval.ParseHistory(notes)
		Expect(len(entries)).To(Equal(3))

		Expect(entries[0].Actor).To(Equal("Bob"))
		Expect(entries[0].Role).To(Equal(""))
		Expect(entries[0].Summary()).To(Equal("COMPLETED - Awaiting Developer Approval"))

		Expect(entries[1].Actor).To(Equal("Dana"))
		Expect(entries[1].Role).To(Equal("Developer"))
		Expect(entries[1].Timestamp).To(Equal("14/03/2025 09:30"))
		Expect(entries[1].IsRejection()).To(BeTrue())
		Expect(entries[1].Reason()).To(Equal("not level"))

		Expect(entries[2].IsApproval()).To(BeTrue())
		Expect(entries[2].IsRejection()).To(BeFalse())
		Expect(entries[2].Notes()).To(Equal("ok now"))
	})

	t.Run("should keep headerless leading text as a plain entry", func(t *testing.T) {
		notes := "started tiling, waiting on materials"
		notes = approval.AppendEntry(notes, approval.ApprovalEntry(ts, "Dana", ""))

		entries := approval.ParseHistory(notes)
		Expect(len(entries)).To(Equal(2))
		Expect(entries[0].Actor).To(Equal(""))
		Expect(entries[0].Lines).To(Equal([]string{"started tiling, waiting on materials"}))
		Expect(entries[1].IsApproval()).To(BeTrue())
	})

	t.Run("should return no entries for empty notes", func(t *testing.T) {
		Expect(approval.ParseHistory("")).To(BeEmpty())
	})
}

func TestIsRejected(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should require both in_progress status and the marker", func(t *testing.T) {
		Expect(approval.IsRejected(domain.StatusInProgress, "...REJECTED - REQUIRES REWORK...")).To(BeTrue())
		Expect(approval.IsRejected(domain.StatusInProgress, "no marker here")).To(BeFalse())
		Expect(approval.IsRejected(domain.StatusWaitingApproval, "...REJECTED...")).To(BeFalse())
		Expect(approval.IsRejected(domain.StatusApproved, "...REJECTED...")).To(BeFalse())
	})

	t.Run("should match the bare substring even in free text", func(t *testing.T) {
		// the derivation is substring-based over the whole log
		Expect(approval.IsRejected(domain.StatusInProgress, "builder wrote REJECTED in a comment")).To(BeTrue())
	})
}

func TestLatestRejection(t *testing.T) {
	RegisterTestingT(t)

	ts1 := types.TimestampOfDate(2025, 3, 10, 8, 0, 0, 0, time.Now().Location())
	ts2 := types.TimestampOfDate(2025, 3, 14, 9, 30, 0, 0, time.Now().Location())

	t.Run("should pick the most recent rejection block", func(t *testing.T) {
		notes := ""
		notes = approval.AppendEntry(notes, approval.RejectionEntry(ts1, "Dana", "first pass failed"))
		notes = approval.AppendEntry(notes, approval.SubmissionEntry(ts1, "Bob", "fixed", types.Timestamp{}))
		notes = approval.AppendEntry(notes, approval.RejectionEntry(ts2, "Erin", "still leaking"))

		info, found := approval.LatestRejection(notes)
		Expect(found).To(BeTrue())
		Expect(info.By).To(Equal("Erin"))
		Expect(info.On).To(Equal("14/03/2025 09:30"))
		Expect(info.Reason).To(Equal("still leaking"))
	})

	t.Run("should fall back to defaults on a bare marker", func(t *testing.T) {
		info, found := approval.LatestRejection("work was REJECTED by phone")
		Expect(found).To(BeTrue())
		Expect(info.By).To(Equal("Developer"))
		Expect(info.Reason).To(Equal("No reason provided"))
	})

	t.Run("should report not found without any marker", func(t *testing.T) {
		_, found := approval.LatestRejection("all fine")
		Expect(found).To(BeFalse())
	})
}
