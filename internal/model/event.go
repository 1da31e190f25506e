package model

// PatientEvent is published on every lifecycle change.
type PatientEvent struct {
	MRN    string        `json:"mrn"`
	Actor  string        `json:"actor"`
	Status PatientStatus `json:"status,omitempty"`
	Reason string        `json:"reason,omitempty"`
}
