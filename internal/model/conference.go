package model

type Conference struct {
	ID        string   `bson:"_id" json:"id"`
	Title     string   `bson:"title" json:"title"`
	Date      string   `bson:"date" json:"date"`
	Time      string   `bson:"time" json:"time"`
	Attendees []string `bson:"attendees" json:"attendees"`
	Notes     string   `bson:"notes,omitempty" json:"notes,omitempty"`
	Audit     `bson:",inline"`
}

type ConferenceRequest struct {
	Title     string   `json:"title" binding:"required"`
	Date      string   `json:"date" binding:"required,datetime=2006-01-02"`
	Time      string   `json:"time" binding:"omitempty,datetime=15:04"`
	Attendees []string `json:"attendees" binding:"omitempty,dive,email"`
	Notes     string   `json:"notes"`
}

func (r *ConferenceRequest) Apply(c *Conference) {
	c.Title = r.Title
	c.Date = r.Date
	c.Time = r.Time
	c.Attendees = append([]string{}, r.Attendees...)
	c.Notes = r.Notes
}
