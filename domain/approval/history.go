package approval

import (
	"snagline/domain"
	"strings"

	"github.com/fundwit/go-commons/types"
)

// The builder_notes column is an append-only text log. Every transition
// appends one block:
//
//	\n\n--- 02/01/2006 15:04 - Actor (Developer) ---
//	APPROVED | REJECTED - REQUIRES REWORK
//	Notes: ... | Reason: ...
//	STATUS: ...
//
// Blocks are delimited by the literal "\n\n---" and carry no escaping, so a
// comment containing the delimiter corrupts later parsing. The format is kept
// byte-compatible with stored data; everything above the storage boundary
// works on parsed Entry values.
const (
	EntrySeparator  = "\n\n---"
	TimestampLayout = "02/01/2006 15:04"
	DateLayout      = "02/01/2006"

	MarkerApproved = "APPROVED"
	MarkerRejected = "REJECTED - REQUIRES REWORK"

	// substring the rejection derivation searches for
	RejectedMarker = "REJECTED"

	RoleDeveloper = "Developer"

	SummaryApproved  = "APPROVED - Work Accepted"
	SummaryRejected  = "Returned to Builder"
	SummarySubmitted = "COMPLETED - Awaiting Developer Approval"
)

type Entry struct {
	Timestamp string   `json:"timestamp"`
	Actor     string   `json:"actor"`
	Role      string   `json:"role"`
	Lines     []string `json:"lines"`
}

func (e Entry) Marker() string {
	if len(e.Lines) == 0 {
		return ""
	}
	return e.Lines[0]
}

func (e Entry) IsApproval() bool {
	return e.contains(MarkerApproved) && !e.IsRejection()
}

func (e Entry) IsRejection() bool {
	return e.contains(RejectedMarker)
}

func (e Entry) contains(marker string) bool {
	for _, line := range e.Lines {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}

func (e Entry) Notes() string {
	return e.fieldValue("Notes:")
}

func (e Entry) Reason() string {
	return e.fieldValue("Reason:")
}

func (e Entry) Summary() string {
	return e.fieldValue("STATUS:")
}

func (e Entry) fieldValue(prefix string) string {
	for _, line := range e.Lines {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix))
		}
	}
	return ""
}

func ApprovalEntry(ts types.Timestamp, actor, notes string) Entry {
	lines := []string{MarkerApproved}
	if notes != "" {
		lines = append(lines, "Notes: "+notes)
	}
	lines = append(lines, "STATUS: "+SummaryApproved)
	return Entry{Timestamp: ts.Time().Format(TimestampLayout), Actor: actor, Role: RoleDeveloper, Lines: lines}
}

func RejectionEntry(ts types.Timestamp, actor, reason string) Entry {
	lines := []string{MarkerRejected, "Reason: " + reason, "STATUS: " + SummaryRejected}
	return Entry{Timestamp: ts.Time().Format(TimestampLayout), Actor: actor, Role: RoleDeveloper, Lines: lines}
}

func SubmissionEntry(ts types.Timestamp, actor, notes string, planned types.Timestamp) Entry {
	lines := []string{}
	if notes != "" {
		lines = append(lines, notes)
	} else {
		lines = append(lines, "(no completion notes)")
	}
	if !planned.IsZero() {
		lines = append(lines, "Planned Completion: "+planned.Time().Format(DateLayout))
	}
	lines = append(lines, "STATUS: "+SummarySubmitted)
	return Entry{Timestamp: ts.Time().Format(TimestampLayout), Actor: actor, Lines: lines}
}

func FormatEntry(e Entry) string {
	var b strings.Builder
	b.WriteString(EntrySeparator)
	b.WriteString(" ")
	b.WriteString(e.Timestamp)
	b.WriteString(" - ")
	b.WriteString(e.Actor)
	if e.Role != "" {
		b.WriteString(" (" + e.Role + ")")
	}
	b.WriteString(" ---")
	for _, line := range e.Lines {
		b.WriteString("\n")
		b.WriteString(line)
	}
	return b.String()
}

// AppendEntry is the only writer of the legacy format. The concatenation is
// computed from a previously read value, not an atomic append; see the
// approve/reject operations for the resulting race.
func AppendEntry(builderNotes string, e Entry) string {
	return builderNotes + FormatEntry(e)
}

// ParseHistory splits builder_notes into entries. A leading chunk without a
// parseable header (free progress text predating the block format) is kept as
// an Entry with empty Timestamp/Actor.
func ParseHistory(builderNotes string) []Entry {
	entries := []Entry{}
	for _, chunk := range strings.Split(builderNotes, EntrySeparator) {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		lines := strings.Split(chunk, "\n")
		entry := Entry{}
		header := strings.TrimSpace(strings.ReplaceAll(lines[0], "---", ""))
		if idx := strings.Index(header, " - "); idx > 0 {
			entry.Timestamp = strings.TrimSpace(header[:idx])
			actor := strings.TrimSpace(header[idx+len(" - "):])
			if strings.HasSuffix(actor, ")") {
				if open := strings.LastIndex(actor, "("); open >= 0 {
					entry.Role = strings.TrimSuffix(actor[open+1:], ")")
					actor = strings.TrimSpace(actor[:open])
				}
			}
			entry.Actor = actor
			for _, line := range lines[1:] {
				entry.Lines = append(entry.Lines, strings.TrimRight(line, "\r"))
			}
		} else {
			entry.Lines = lines
		}
		entries = append(entries, entry)
	}
	return entries
}

// IsRejected derives the rejected state: the status machine has no stored
// rejected value, a rejection returns the order to in_progress with the
// REJECTED marker in its notes. The substring rule is deliberately identical
// to the stored data's convention, including its false-positive potential on
// free text containing "REJECTED"; keep this function the single derivation
// point so a dedicated status value can replace it without touching callers.
func IsRejected(status, builderNotes string) bool {
	return status == domain.StatusInProgress && strings.Contains(builderNotes, RejectedMarker)
}

type RejectionInfo struct {
	By     string `json:"by"`
	On     string `json:"on"`
	Reason string `json:"reason"`
}

// LatestRejection extracts actor, date and reason from the most recent
// rejection block.
func LatestRejection(builderNotes string) (RejectionInfo, bool) {
	entries := ParseHistory(builderNotes)
	for i := len(entries) - 1; i >= 0; i-- {
		if !entries[i].IsRejection() {
			continue
		}
		info := RejectionInfo{By: entries[i].Actor, On: entries[i].Timestamp, Reason: entries[i].Reason()}
		if info.By == "" {
			info.By = RoleDeveloper
		}
		if info.Reason == "" {
			info.Reason = "No reason provided"
		}
		return info, true
	}
	return RejectionInfo{}, false
}
