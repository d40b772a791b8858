package transport

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CreateAppointmentRequest is posted by a signed-in patient; patient fields come
// from the session and doctor fields from the directory.
type CreateAppointmentRequest struct {
	DoctorID string `json:"doctorId"`
	Date     string `json:"date"`
	Time     string `json:"time"`
}

type StatusRequest struct {
	Status string `json:"status"`
}
