package model

import (
	"fmt"
	"strings"
	"time"
)

type PatientStatus string

const (
	PatientStatusPending   PatientStatus = "pending"
	PatientStatusConfirmed PatientStatus = "confirmed"
	PatientStatusDeficient PatientStatus = "deficient"
	PatientStatusInOR      PatientStatus = "in_or"
	PatientStatusCompleted PatientStatus = "completed"

	// PatientStatusArchived is never stored; it names membership in the archive collection.
	PatientStatusArchived PatientStatus = "archived"
)

// PatientStatuses lists the statuses an active patient may hold.
var PatientStatuses = []PatientStatus{
	PatientStatusPending,
	PatientStatusConfirmed,
	PatientStatusDeficient,
	PatientStatusInOR,
	PatientStatusCompleted,
}

func (s PatientStatus) Valid() bool {
	for _, v := range PatientStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Archive reasons
const (
	ArchiveReasonManual = "manual_archive"
)

// AutoArchiveReason is the reason recorded by the sweeper.
func AutoArchiveReason(delayHours int) string {
	return fmt.Sprintf("auto_archive_after_%dh", delayHours)
}

// Checklist item names
const (
	ChecklistXRays               = "xrays"
	ChecklistLabTests            = "lab_tests"
	ChecklistInsuranceApproval   = "insurance_approval"
	ChecklistMedicalOptimization = "medical_optimization"
)

var ChecklistItems = []string{
	ChecklistXRays,
	ChecklistLabTests,
	ChecklistInsuranceApproval,
	ChecklistMedicalOptimization,
}

// PrepChecklist tracks pre-op preparation.
type PrepChecklist struct {
	XRays               bool `bson:"xrays" json:"xrays"`
	LabTests            bool `bson:"lab_tests" json:"lab_tests"`
	InsuranceApproval   bool `bson:"insurance_approval" json:"insurance_approval"`
	MedicalOptimization bool `bson:"medical_optimization" json:"medical_optimization"`
}

// IsChecklistItem reports whether item names one of the four flags.
func IsChecklistItem(item string) bool {
	for _, v := range ChecklistItems {
		if v == item {
			return true
		}
	}
	return false
}

// Set updates a flag by name and reports whether the name was known.
func (c *PrepChecklist) Set(item string, checked bool) bool {
	switch item {
	case ChecklistXRays:
		c.XRays = checked
	case ChecklistLabTests:
		c.LabTests = checked
	case ChecklistInsuranceApproval:
		c.InsuranceApproval = checked
	case ChecklistMedicalOptimization:
		c.MedicalOptimization = checked
	default:
		return false
	}
	return true
}

// ChecklistLabel renders an item name for display, e.g. "Insurance Approval".
func ChecklistLabel(item string) string {
	words := strings.Split(item, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
		}
	}
	return strings.Join(words, " ")
}

type Comment struct {
	CommentText   string    `bson:"comment_text" json:"comment_text"`
	CreatedBy     string    `bson:"created_by" json:"created_by"`
	CreatedByName string    `bson:"created_by_name,omitempty" json:"created_by_name,omitempty"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
}

// ActivityEntry is one append-only line of a patient's history.
type ActivityEntry struct {
	Action    string `bson:"action" json:"action"`
	User      string `bson:"user" json:"user"`
	Timestamp string `bson:"timestamp" json:"timestamp"`
	Details   string `bson:"details" json:"details"`
}

// Activity actions
const (
	ActionCreated            = "created"
	ActionUpdated            = "updated"
	ActionCommentAdded       = "comment_added"
	ActionChecklistUpdated   = "checklist_updated"
	ActionStatusChanged      = "status_changed"
	ActionProcedureCompleted = "procedure_completed"
	ActionArchived           = "archived"
	ActionAutoArchived       = "auto_archived"
	ActionRestored           = "restored"
)

type Patient struct {
	MRN           string          `bson:"mrn" json:"mrn"`
	PatientName   string          `bson:"patient_name" json:"patient_name"`
	DOB           string          `bson:"dob" json:"dob"`
	Diagnosis     string          `bson:"diagnosis,omitempty" json:"diagnosis,omitempty"`
	Procedures    string          `bson:"procedures,omitempty" json:"procedures,omitempty"`
	ProcedureCode string          `bson:"procedure_code,omitempty" json:"procedure_code,omitempty"`
	Attending     string          `bson:"attending,omitempty" json:"attending,omitempty"`
	Status        PatientStatus   `bson:"status" json:"status"`
	PrepChecklist PrepChecklist   `bson:"prep_checklist" json:"prep_checklist"`
	Comments      []Comment       `bson:"comments" json:"comments"`
	ActivityLog   []ActivityEntry `bson:"activity_log" json:"activity_log"`
	CompletedAt   *time.Time      `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	CreatedBy     string          `bson:"created_by" json:"created_by"`
	CreatedAt     time.Time       `bson:"created_at" json:"created_at"`
	UpdatedBy     string          `bson:"updated_by,omitempty" json:"updated_by,omitempty"`
	UpdatedAt     *time.Time      `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
	// Version guards conditional replaces. Legacy documents without it read as 0.
	Version int64 `bson:"version" json:"version"`
}

// LastActivity returns the newest log entry, if any.
func (p *Patient) LastActivity() (ActivityEntry, bool) {
	if len(p.ActivityLog) == 0 {
		return ActivityEntry{}, false
	}
	return p.ActivityLog[len(p.ActivityLog)-1], true
}

// ExtendsLog reports whether p's log starts with prefix and has more entries after it.
func (p *Patient) ExtendsLog(prefix []ActivityEntry) bool {
	if len(p.ActivityLog) <= len(prefix) {
		return false
	}
	for i, e := range prefix {
		if p.ActivityLog[i] != e {
			return false
		}
	}
	return true
}

// RestoredAfter reports whether a restored entry follows the first n log entries.
func (p *Patient) RestoredAfter(n int) bool {
	for i := n; i < len(p.ActivityLog); i++ {
		if p.ActivityLog[i].Action == ActionRestored {
			return true
		}
	}
	return false
}

// Clone returns a deep copy safe to mutate.
func (p *Patient) Clone() *Patient {
	c := *p
	if p.Comments != nil {
		c.Comments = append(make([]Comment, 0, len(p.Comments)), p.Comments...)
	}
	if p.ActivityLog != nil {
		c.ActivityLog = append(make([]ActivityEntry, 0, len(p.ActivityLog)), p.ActivityLog...)
	}
	if p.CompletedAt != nil {
		t := *p.CompletedAt
		c.CompletedAt = &t
	}
	if p.UpdatedAt != nil {
		t := *p.UpdatedAt
		c.UpdatedAt = &t
	}
	return &c
}

// ArchivedPatient is a patient document moved to the archive collection.
type ArchivedPatient struct {
	Patient        `bson:",inline"`
	ArchivedAt     time.Time `bson:"archived_at" json:"archived_at"`
	ArchivedBy     string    `bson:"archived_by" json:"archived_by"`
	ArchivedReason string    `bson:"archived_reason" json:"archived_reason"`
}

type CreatePatientRequest struct {
	MRN           string         `json:"mrn" validate:"required"`
	PatientName   string         `json:"patient_name" validate:"required"`
	DOB           string         `json:"dob" validate:"required"`
	Diagnosis     string         `json:"diagnosis"`
	Procedures    string         `json:"procedures"`
	ProcedureCode string         `json:"procedure_code"`
	Attending     string         `json:"attending"`
	Status        PatientStatus  `json:"status"`
	PrepChecklist *PrepChecklist `json:"prep_checklist"`
}

// UpdatePatientRequest carries only the fields the caller wants changed.
type UpdatePatientRequest struct {
	PatientName   *string        `json:"patient_name"`
	DOB           *string        `json:"dob"`
	Diagnosis     *string        `json:"diagnosis"`
	Procedures    *string        `json:"procedures"`
	ProcedureCode *string        `json:"procedure_code"`
	Attending     *string        `json:"attending"`
	Status        *PatientStatus `json:"status"`
}

type AddCommentRequest struct {
	CommentText string `json:"comment_text" binding:"required"`
}

type ChecklistUpdateRequest struct {
	ChecklistItem string `json:"checklist_item" form:"checklist_item"`
	Checked       *bool  `json:"checked" form:"checked"`
}

type ChecklistUpdateResponse struct {
	Message       string `json:"message"`
	ChecklistItem string `json:"checklist_item"`
	Checked       bool   `json:"checked"`
}

type StatusChangeResponse struct {
	Message            string        `json:"message"`
	Status             PatientStatus `json:"status"`
	CompletedAt        *time.Time    `json:"completed_at,omitempty"`
	AutoArchiveInHours *int          `json:"auto_archive_in_hours,omitempty"`
}

type ArchiveResponse struct {
	Message    string    `json:"message"`
	MRN        string    `json:"mrn"`
	ArchivedAt time.Time `json:"archived_at"`
}

type RestoreResponse struct {
	Message string `json:"message"`
	MRN     string `json:"mrn"`
}

type SweepResponse struct {
	Message       string `json:"message"`
	ArchivedCount int    `json:"archived_count"`
	DelayHours    int    `json:"delay_hours"`
}
