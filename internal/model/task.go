package model

const (
	TaskStatusPending   = "pending"
	TaskStatusCompleted = "completed"
	UrgencyMedium       = "medium"
)

// Task is a prep task. Completed and Status always agree.
type Task struct {
	ID              string `bson:"_id" json:"id"`
	PatientMRN      string `bson:"patient_mrn" json:"patient_mrn"`
	TaskDescription string `bson:"task_description" json:"task_description"`
	Urgency         string `bson:"urgency" json:"urgency"`
	AssignedTo      string `bson:"assigned_to" json:"assigned_to"`
	AssignedToEmail string `bson:"assigned_to_email,omitempty" json:"assigned_to_email,omitempty"`
	DueDate         string `bson:"due_date,omitempty" json:"due_date,omitempty"`
	Status          string `bson:"status" json:"status"`
	Completed       bool   `bson:"completed" json:"completed"`
	Audit           `bson:",inline"`
}

// Normalize derives Status from Completed.
func (t *Task) Normalize() {
	if t.Completed {
		t.Status = TaskStatusCompleted
	} else {
		t.Status = TaskStatusPending
	}
	if t.Urgency == "" {
		t.Urgency = UrgencyMedium
	}
}

type TaskRequest struct {
	PatientMRN      string `json:"patient_mrn" binding:"required"`
	TaskDescription string `json:"task_description" binding:"required"`
	Urgency         string `json:"urgency"`
	AssignedTo      string `json:"assigned_to" binding:"required"`
	AssignedToEmail string `json:"assigned_to_email" binding:"omitempty,email"`
	DueDate         string `json:"due_date"`
	Status          string `json:"status" binding:"omitempty,oneof=pending completed"`
	Completed       bool   `json:"completed"`
}

func (r *TaskRequest) Apply(t *Task) {
	t.PatientMRN = r.PatientMRN
	t.TaskDescription = r.TaskDescription
	t.Urgency = r.Urgency
	t.AssignedTo = r.AssignedTo
	t.AssignedToEmail = r.AssignedToEmail
	t.DueDate = r.DueDate
	t.Completed = r.Completed
	t.Normalize()
}

type ToggleTaskResponse struct {
	Message   string `json:"message"`
	Completed bool   `json:"completed"`
	Status    string `json:"status"`
}
