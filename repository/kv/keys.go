package kv

// Storage keys shared with records written by the mobile app.
const (
	KeySessionUser  = "@MedicalApp:user"
	KeySessionToken = "@MedicalApp:token"
	KeyPatients     = "@MedicalApp:registeredUsers"
	KeyAppointments = "@MedicalApp:appointments"
)
