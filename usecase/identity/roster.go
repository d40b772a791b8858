package identity

import (
	"fmt"

	"github.com/fastygo/medsched/domain"
)

// DefaultPassword is the shared password of every seeded and registered account.
const DefaultPassword = "123456"

// Roster is the fixed set of staff identities seeded at startup.
type Roster struct {
	Admin   domain.User
	Doctors []domain.User
}

// DefaultRoster returns the staff accounts the app ships with.
func DefaultRoster() Roster {
	return Roster{
		Admin: domain.User{
			ID:    "admin",
			Name:  "Administrador",
			Email: "admin@example.com",
			Role:  domain.RoleAdmin,
			Image: "https://randomuser.me/api/portraits/men/3.jpg",
		},
		Doctors: []domain.User{
			{
				ID:        "1",
				Name:      "Dr. João Silva",
				Email:     "joao@example.com",
				Role:      domain.RoleDoctor,
				Specialty: "Cardiologia",
				Image:     "https://randomuser.me/api/portraits/men/1.jpg",
			},
			{
				ID:        "2",
				Name:      "Dra. Maria Santos",
				Email:     "maria@example.com",
				Role:      domain.RoleDoctor,
				Specialty: "Pediatria",
				Image:     "https://randomuser.me/api/portraits/women/1.jpg",
			},
			{
				ID:        "3",
				Name:      "Dr. Pedro Oliveira",
				Email:     "pedro@example.com",
				Role:      domain.RoleDoctor,
				Specialty: "Ortopedia",
				Image:     "https://randomuser.me/api/portraits/men/2.jpg",
			},
		},
	}
}

func patientImage(seq int) string {
	gender := "men"
	if seq%2 == 0 {
		gender = "women"
	}
	return fmt.Sprintf("https://randomuser.me/api/portraits/%s/%d.jpg", gender, seq)
}
