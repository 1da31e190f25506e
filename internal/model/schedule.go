package model

import "time"

const (
	ScheduleStatusScheduled = "scheduled"
	PriorityMedium          = "medium"
)

// Schedule is an OR case. PatientMRN is a weak reference.
type Schedule struct {
	ID            string     `bson:"_id" json:"id"`
	PatientMRN    string     `bson:"patient_mrn" json:"patient_mrn"`
	PatientName   string     `bson:"patient_name" json:"patient_name"`
	Procedure     string     `bson:"procedure" json:"procedure"`
	Staff         string     `bson:"staff" json:"staff"`
	ScheduledDate string     `bson:"scheduled_date" json:"scheduled_date"`
	ScheduledTime string     `bson:"scheduled_time,omitempty" json:"scheduled_time,omitempty"`
	Status        string     `bson:"status" json:"status"`
	IsAddon       bool       `bson:"is_addon" json:"is_addon"`
	Priority      string     `bson:"priority" json:"priority"`
	Diagnosis     string     `bson:"diagnosis,omitempty" json:"diagnosis,omitempty"`
	Archived      bool       `bson:"archived" json:"archived"`
	ArchivedAt    *time.Time `bson:"archived_at,omitempty" json:"archived_at,omitempty"`
	Audit         `bson:",inline"`
}

type ScheduleRequest struct {
	PatientMRN    string `json:"patient_mrn" binding:"required"`
	PatientName   string `json:"patient_name" binding:"required"`
	Procedure     string `json:"procedure" binding:"required"`
	Staff         string `json:"staff" binding:"required"`
	ScheduledDate string `json:"scheduled_date" binding:"omitempty,datetime=2006-01-02"`
	ScheduledTime string `json:"scheduled_time" binding:"omitempty,datetime=15:04"`
	Status        string `json:"status"`
	IsAddon       bool   `json:"is_addon"`
	Priority      string `json:"priority"`
	Diagnosis     string `json:"diagnosis"`
}

// Apply copies the request onto s, filling defaults.
func (r *ScheduleRequest) Apply(s *Schedule) {
	s.PatientMRN = r.PatientMRN
	s.PatientName = r.PatientName
	s.Procedure = r.Procedure
	s.Staff = r.Staff
	s.ScheduledDate = r.ScheduledDate
	s.ScheduledTime = r.ScheduledTime
	s.Status = r.Status
	if s.Status == "" {
		s.Status = ScheduleStatusScheduled
	}
	s.IsAddon = r.IsAddon
	s.Priority = r.Priority
	if s.Priority == "" {
		s.Priority = PriorityMedium
	}
	s.Diagnosis = r.Diagnosis
}
