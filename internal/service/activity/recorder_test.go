package activity

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/drfrankproulx-cmd/OProom/internal/model"
)

var fixed = time.Date(2025, 4, 2, 15, 4, 5, 123456789, time.FixedZone("CDT", -5*3600))

func newTestRecorder() *Recorder {
	return NewRecorderWithClock(func() time.Time { return fixed })
}

func TestEntriesAreStampedInUTC(t *testing.T) {
	e := newTestRecorder().Created("dr@umn.edu")

	assert.Equal(t, model.ActionCreated, e.Action)
	assert.Equal(t, "dr@umn.edu", e.User)
	assert.Equal(t, "Patient record created", e.Details)
	assert.Equal(t, "2025-04-02T20:04:05.123456789Z", e.Timestamp)
}

func TestUpdated(t *testing.T) {
	r := newTestRecorder()

	_, ok := r.Updated("u", nil)
	assert.False(t, ok)

	e, ok := r.Updated("u", []Change{
		{Field: "diagnosis", Old: "", New: "Cleft lip"},
		{Field: "status", Old: "pending", New: "confirmed"},
	})
	assert.True(t, ok)
	assert.Equal(t, model.ActionUpdated, e.Action)
	assert.Equal(t, "diagnosis: None → Cleft lip, status: pending → confirmed", e.Details)
}

func TestCommentPreview(t *testing.T) {
	r := newTestRecorder()

	assert.Equal(t, "Added comment: short...", r.CommentAdded("u", "short").Details)

	long := strings.Repeat("é", 60)
	assert.Equal(t, "Added comment: "+strings.Repeat("é", 50)+"...", r.CommentAdded("u", long).Details)
}

func TestStatusEntries(t *testing.T) {
	r := newTestRecorder()

	assert.Equal(t, "Updated Insurance Approval: checked", r.ChecklistUpdated("u", model.ChecklistInsuranceApproval, true).Details)
	assert.Equal(t, "Updated Lab Tests: unchecked", r.ChecklistUpdated("u", model.ChecklistLabTests, false).Details)
	assert.Equal(t, "Patient sent to OR - Status changed from 'confirmed' to 'in_or'", r.SentToOR("u", model.PatientStatusConfirmed).Details)
	assert.Equal(t, "Procedure completed - Status changed from 'in_or' to 'completed'", r.ProcedureCompleted("u", model.PatientStatusInOR).Details)

	auto := r.AutoArchived(48)
	assert.Equal(t, SystemUser, auto.User)
	assert.Equal(t, model.ActionAutoArchived, auto.Action)
	assert.Equal(t, "Automatically archived 48 hours after procedure completion", auto.Details)

	assert.Equal(t, model.ActionRestored, r.Restored("u").Action)
	assert.Equal(t, "Patient record manually archived", r.Archived("u").Details)
}
