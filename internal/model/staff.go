package model

type Resident struct {
	ID        string `bson:"_id" json:"id"`
	Name      string `bson:"name" json:"name"`
	Email     string `bson:"email" json:"email"`
	Hospital  string `bson:"hospital" json:"hospital"`
	Specialty string `bson:"specialty,omitempty" json:"specialty,omitempty"`
	Year      string `bson:"year,omitempty" json:"year,omitempty"`
	IsActive  bool   `bson:"is_active" json:"is_active"`
	Audit     `bson:",inline"`
}

type Attending struct {
	ID        string `bson:"_id" json:"id"`
	Name      string `bson:"name" json:"name"`
	Email     string `bson:"email,omitempty" json:"email,omitempty"`
	Hospital  string `bson:"hospital" json:"hospital"`
	Specialty string `bson:"specialty,omitempty" json:"specialty,omitempty"`
	IsActive  bool   `bson:"is_active" json:"is_active"`
	Audit     `bson:",inline"`
}

// StaffFilter narrows directory listings.
type StaffFilter struct {
	Hospital   string
	ActiveOnly bool
}

type ResidentRequest struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Hospital  string `json:"hospital" binding:"required"`
	Specialty string `json:"specialty"`
	Year      string `json:"year"`
	IsActive  *bool  `json:"is_active"`
}

func (r *ResidentRequest) Apply(res *Resident) {
	res.Name = r.Name
	res.Email = r.Email
	res.Hospital = r.Hospital
	res.Specialty = r.Specialty
	res.Year = r.Year
	res.IsActive = r.IsActive == nil || *r.IsActive
}

type AttendingRequest struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"omitempty,email"`
	Hospital  string `json:"hospital" binding:"required"`
	Specialty string `json:"specialty"`
	IsActive  *bool  `json:"is_active"`
}

func (r *AttendingRequest) Apply(a *Attending) {
	a.Name = r.Name
	a.Email = r.Email
	a.Hospital = r.Hospital
	a.Specialty = r.Specialty
	a.IsActive = r.IsActive == nil || *r.IsActive
}
