package model

import "time"

const VSPStatusScheduled = "scheduled"

// VSPSession is a virtual surgical planning session.
type VSPSession struct {
	ID              string    `bson:"_id" json:"id"`
	PatientName     string    `bson:"patient_name" json:"patient_name"`
	MRN             string    `bson:"mrn,omitempty" json:"mrn,omitempty"`
	Procedure       string    `bson:"procedure" json:"procedure"`
	Attending       string    `bson:"attending,omitempty" json:"attending,omitempty"`
	Start           time.Time `bson:"start" json:"start"`
	End             time.Time `bson:"end" json:"end"`
	ConferenceLink  string    `bson:"conference_link,omitempty" json:"conference_link,omitempty"`
	Attendees       []string  `bson:"attendees" json:"attendees"`
	Notes           string    `bson:"notes" json:"notes"`
	Status          string    `bson:"status" json:"status"`
	CalendarEventID string    `bson:"calendar_event_id,omitempty" json:"calendar_event_id,omitempty"`
	CalendarError   string    `bson:"calendar_error,omitempty" json:"calendar_error,omitempty"`
	Audit           `bson:",inline"`
}

type VSPSessionRequest struct {
	PatientName    string    `json:"patient_name" binding:"required"`
	MRN            string    `json:"mrn"`
	Procedure      string    `json:"procedure" binding:"required"`
	Attending      string    `json:"attending"`
	Start          time.Time `json:"start" binding:"required"`
	End            time.Time `json:"end" binding:"required,gtfield=Start"`
	ConferenceLink string    `json:"conference_link" binding:"omitempty,url"`
	Attendees      []string  `json:"attendees" binding:"omitempty,dive,email"`
	Notes          string    `json:"notes"`
}

type VSPSessionResponse struct {
	Message    string      `json:"message"`
	VSPSession *VSPSession `json:"vsp_session"`
}
