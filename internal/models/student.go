package models

// Classes is the closed set of class levels handled by the application.
var Classes = []string{"Kelas 1", "Kelas 2", "Kelas 3", "Kelas 4", "Kelas 5", "Kelas 6"}

// Student is a pupil record. Mutation is by whole-record replacement; the
// storage layer never patches individual fields.
type Student struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	NISN       string `json:"nisn"`
	NIPD       string `json:"nipd"`
	Gender     string `json:"gender"`
	ClassLevel string `json:"classLevel"`
	Fase       string `json:"fase"`

	BirthPlace        string `json:"birthPlace,omitempty"`
	BirthDate         string `json:"birthDate,omitempty"`
	Religion          string `json:"religion,omitempty"`
	PreviousEducation string `json:"previousEducation,omitempty"`
	Address           string `json:"address,omitempty"`

	FatherName string `json:"fatherName,omitempty"`
	MotherName string `json:"motherName,omitempty"`
	FatherJob  string `json:"fatherJob,omitempty"`
	MotherJob  string `json:"motherJob,omitempty"`

	ParentAddressStreet   string `json:"parentAddressStreet,omitempty"`
	ParentAddressVillage  string `json:"parentAddressVillage,omitempty"`
	ParentAddressDistrict string `json:"parentAddressDistrict,omitempty"`
	ParentAddressCity     string `json:"parentAddressCity,omitempty"`
	ParentAddressProvince string `json:"parentAddressProvince,omitempty"`

	GuardianName    string `json:"guardianName,omitempty"`
	GuardianJob     string `json:"guardianJob,omitempty"`
	GuardianAddress string `json:"guardianAddress,omitempty"`
}

// IsValidClass reports whether the class level belongs to the fixed class set.
func IsValidClass(classLevel string) bool {
	for _, c := range Classes {
		if c == classLevel {
			return true
		}
	}
	return false
}

// FaseForClass derives the curricular phase from a class level:
// Kelas 1-2 -> A, Kelas 3-4 -> B, Kelas 5-6 -> C.
func FaseForClass(classLevel string) string {
	switch classLevel {
	case "Kelas 3", "Kelas 4":
		return "B"
	case "Kelas 5", "Kelas 6":
		return "C"
	default:
		return "A"
	}
}
