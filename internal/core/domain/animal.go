package domain

import "time"

type Animal struct {
	ID                  string         `json:"id"`
	AnimalType          string         `json:"animal_type"`
	Name                string         `json:"name"`
	Breed               string         `json:"breed"`
	DateOfBirth         *time.Time     `json:"date_of_birth,omitempty"`
	Gender              string         `json:"gender"`
	WeightLbs           *float64       `json:"weight_lbs,omitempty"`
	Story               string         `json:"story"`
	AdoptionStatus      AdoptionStatus `json:"adoption_status"`
	CurrentFosterUserID *string        `json:"current_foster_user_id,omitempty"`
	CreatedBy           *string        `json:"created_by,omitempty"`
	UpdatedBy           *string        `json:"updated_by,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

const (
	SortByName        = "name"
	SortByCreatedAt   = "created_at"
	SortByDateOfBirth = "date_of_birth"

	DefaultPageSize = 50
	MaxPageSize     = 200
)

type AnimalFilter struct {
	AnimalType string
	Breed      string
	Gender     string
	Status     *AdoptionStatus
	Name       string
	SortBy     string
	Descending bool
	Limit      int
	Offset     int
}

// Normalize clamps paging and defaults the sort column.
func (f *AnimalFilter) Normalize() {
	switch f.SortBy {
	case SortByName, SortByCreatedAt, SortByDateOfBirth:
	default:
		f.SortBy = SortByCreatedAt
	}
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

type AdoptionHistory struct {
	ID             string     `json:"id"`
	AnimalID       string     `json:"animal_id"`
	AdopterUserID  *string    `json:"adopter_user_id,omitempty"`
	AdopterName    string     `json:"adopter_name"`
	AdopterEmail   string     `json:"adopter_email"`
	AdopterPhone   string     `json:"adopter_phone"`
	AdopterAddress string     `json:"adopter_address"`
	AdoptionDate   time.Time  `json:"adoption_date"`
	ReturnDate     *time.Time `json:"return_date"`
	Notes          string     `json:"notes"`
	CreatedBy      *string    `json:"created_by,omitempty"`
	UpdatedBy      *string    `json:"updated_by,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (h AdoptionHistory) IsActive() bool {
	return h.ReturnDate == nil
}
