// Package activity builds the append-only entries of a patient's activity log.
package activity

import (
	"fmt"
	"strings"
	"time"

	"github.com/drfrankproulx-cmd/OProom/internal/model"
)

const (
	// SystemUser signs entries written by the auto-archive sweeper.
	SystemUser = "system"

	commentPreviewLen = 50
	emptyValue        = "None"
)

// Change is one field difference rendered into an "updated" entry.
type Change struct {
	Field string
	Old   string
	New   string
}

type Recorder struct {
	now func() time.Time
}

func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

// NewRecorderWithClock is used by tests and tools that need fixed timestamps.
func NewRecorderWithClock(now func() time.Time) *Recorder {
	if now == nil {
		now = time.Now
	}
	return &Recorder{now: now}
}

// Now returns the recorder's clock in UTC.
func (r *Recorder) Now() time.Time {
	return r.now().UTC()
}

func (r *Recorder) entry(action, user, details string) model.ActivityEntry {
	return model.ActivityEntry{
		Action:    action,
		User:      user,
		Timestamp: r.Now().Format(time.RFC3339Nano),
		Details:   details,
	}
}

func (r *Recorder) Created(user string) model.ActivityEntry {
	return r.entry(model.ActionCreated, user, "Patient record created")
}

// Updated returns false when there is nothing to record.
func (r *Recorder) Updated(user string, changes []Change) (model.ActivityEntry, bool) {
	if len(changes) == 0 {
		return model.ActivityEntry{}, false
	}
	return r.entry(model.ActionUpdated, user, FormatChanges(changes)), true
}

func (r *Recorder) CommentAdded(user, text string) model.ActivityEntry {
	return r.entry(model.ActionCommentAdded, user, fmt.Sprintf("Added comment: %s...", truncate(text, commentPreviewLen)))
}

func (r *Recorder) ChecklistUpdated(user, item string, checked bool) model.ActivityEntry {
	state := "unchecked"
	if checked {
		state = "checked"
	}
	return r.entry(model.ActionChecklistUpdated, user, fmt.Sprintf("Updated %s: %s", model.ChecklistLabel(item), state))
}

func (r *Recorder) SentToOR(user string, from model.PatientStatus) model.ActivityEntry {
	return r.entry(model.ActionStatusChanged, user,
		fmt.Sprintf("Patient sent to OR - Status changed from '%s' to '%s'", from, model.PatientStatusInOR))
}

func (r *Recorder) ProcedureCompleted(user string, from model.PatientStatus) model.ActivityEntry {
	return r.entry(model.ActionProcedureCompleted, user,
		fmt.Sprintf("Procedure completed - Status changed from '%s' to '%s'", from, model.PatientStatusCompleted))
}

func (r *Recorder) Archived(user string) model.ActivityEntry {
	return r.entry(model.ActionArchived, user, "Patient record manually archived")
}

func (r *Recorder) AutoArchived(delayHours int) model.ActivityEntry {
	return r.entry(model.ActionAutoArchived, SystemUser,
		fmt.Sprintf("Automatically archived %d hours after procedure completion", delayHours))
}

func (r *Recorder) Restored(user string) model.ActivityEntry {
	return r.entry(model.ActionRestored, user, "Patient record restored from archive")
}

// FormatChanges renders "field: old → new" pairs joined by ", ".
func FormatChanges(changes []Change) string {
	parts := make([]string, 0, len(changes))
	for _, c := range changes {
		parts = append(parts, fmt.Sprintf("%s: %s → %s", c.Field, display(c.Old), display(c.New)))
	}
	return strings.Join(parts, ", ")
}

func display(v string) string {
	if v == "" {
		return emptyValue
	}
	return v
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
