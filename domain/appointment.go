package domain

import "strings"

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

func ParseStatus(value string) (Status, bool) {
	switch s := Status(strings.ToLower(strings.TrimSpace(value))); s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return s, true
	default:
		return "", false
	}
}

// IsTerminal reports whether no further transition is sanctioned.
func (s Status) IsTerminal() bool {
	return s == StatusConfirmed || s == StatusCancelled
}

// CanTransitionTo encodes pending -> confirmed | cancelled.
func (s Status) CanTransitionTo(next Status) bool {
	return s == StatusPending && next.IsTerminal()
}

// Appointment is a scheduled visit between a patient and a doctor.
type Appointment struct {
	ID          string `json:"id"`
	PatientID   string `json:"patientId"`
	PatientName string `json:"patientName"`
	DoctorID    string `json:"doctorId"`
	DoctorName  string `json:"doctorName"`
	Specialty   string `json:"specialty"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Status      Status `json:"status"`
}

// AppointmentDraft is an appointment before the store assigns its id and status.
type AppointmentDraft struct {
	PatientID   string `json:"patientId"`
	PatientName string `json:"patientName"`
	DoctorID    string `json:"doctorId"`
	DoctorName  string `json:"doctorName"`
	Specialty   string `json:"specialty"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

// Validate checks the fields a record cannot be filtered or shown without.
func (d AppointmentDraft) Validate() error {
	switch {
	case strings.TrimSpace(d.PatientID) == "":
		return Invalid("patientId is required")
	case strings.TrimSpace(d.DoctorID) == "":
		return Invalid("doctorId is required")
	case strings.TrimSpace(d.Date) == "":
		return Invalid("date is required")
	case strings.TrimSpace(d.Time) == "":
		return Invalid("time is required")
	}
	return nil
}

// Pending materializes the draft as a new pending appointment.
func (d AppointmentDraft) Pending(id string) Appointment {
	return Appointment{
		ID:          id,
		PatientID:   d.PatientID,
		PatientName: d.PatientName,
		DoctorID:    d.DoctorID,
		DoctorName:  d.DoctorName,
		Specialty:   d.Specialty,
		Date:        d.Date,
		Time:        d.Time,
		Status:      StatusPending,
	}
}
