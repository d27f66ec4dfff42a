package domain

import "time"

// Rangos de edad aceptados para un perfil infantil.
const (
	AgeGroupToddler = "3-5"
	AgeGroupEarly   = "6-8"
	AgeGroupMiddle  = "9-12"
)

// Child es el perfil de un nino asociado a la cuenta de un padre.
type Child struct {
	ID           string    `json:"id"`
	ParentID     string    `json:"parent_id"`
	Name         string    `json:"name"`
	Age          int       `json:"age"`
	AgeGroup     string    `json:"age_group"`
	Interests    []string  `json:"interests"`
	ReadingLevel string    `json:"reading_level"`
	CreatedAt    time.Time `json:"created_at"`
}

// AgeGroupFor deriva el rango de edad a partir de la edad en anios.
func AgeGroupFor(age int) string {
	switch {
	case age <= 5:
		return AgeGroupToddler
	case age <= 8:
		return AgeGroupEarly
	default:
		return AgeGroupMiddle
	}
}
