package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

type ApplicationKind string

const (
	KindFoster      ApplicationKind = "foster"
	KindVolunteer   ApplicationKind = "volunteer"
	KindAdoption    ApplicationKind = "adoption"
	KindPartnership ApplicationKind = "partnership"
)

func ParseApplicationKind(s string) (ApplicationKind, error) {
	switch k := ApplicationKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindFoster, KindVolunteer, KindAdoption, KindPartnership:
		return k, nil
	}
	return "", Validationf("unknown application kind %q", s)
}

type ApplicationStatus string

const (
	AppPendingReview ApplicationStatus = "Pending Review"
	AppApproved      ApplicationStatus = "Approved"
	AppRejected      ApplicationStatus = "Rejected"
	AppOnHold        ApplicationStatus = "On Hold"
	AppWithdrawn     ApplicationStatus = "Withdrawn"
)

var applicationStatuses = []ApplicationStatus{AppPendingReview, AppApproved, AppRejected, AppOnHold, AppWithdrawn}

func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	s = strings.TrimSpace(s)
	for _, st := range applicationStatuses {
		if strings.EqualFold(string(st), s) {
			return st, nil
		}
	}
	return "", Validationf("unknown application status %q", s)
}

// IsOpen reports whether a reviewer may still change the decision.
func (s ApplicationStatus) IsOpen() bool {
	return s == AppPendingReview || s == AppOnHold
}

type Application struct {
	ID                 string            `json:"id"`
	Kind               ApplicationKind   `json:"kind"`
	Status             ApplicationStatus `json:"status"`
	ApplicantFirstName string            `json:"applicant_first_name"`
	ApplicantLastName  string            `json:"applicant_last_name"`
	ApplicantEmail     string            `json:"applicant_email"`
	ApplicantPhone     string            `json:"applicant_phone"`
	AnimalID           *string           `json:"animal_id,omitempty"`
	Form               json.RawMessage   `json:"form"`
	ReviewedBy         *string           `json:"reviewed_by,omitempty"`
	ReviewedAt         *time.Time        `json:"reviewed_at,omitempty"`
	InternalNotes      string            `json:"internal_notes,omitempty"`
	SubmittedAt        time.Time         `json:"submitted_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

type ApplicationFilter struct {
	Kind   *ApplicationKind
	Status *ApplicationStatus
	Limit  int
	Offset int
}

type ApplicantContact struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

func (c ApplicantContact) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&c.LastName, validation.Required, validation.Length(1, 100)),
		validation.Field(&c.Email, validation.Required, is.Email, validation.Length(3, 254)),
		validation.Field(&c.Phone, validation.Length(0, 40)),
	)
}

type FosterForm struct {
	HomeType             string   `json:"home_type"`
	OwnsHome             bool     `json:"owns_home"`
	LandlordPermission   bool     `json:"landlord_permission"`
	HasYard              bool     `json:"has_yard"`
	HouseholdAdults      int      `json:"household_adults"`
	HouseholdChildren    int      `json:"household_children"`
	CurrentPets          string   `json:"current_pets"`
	PetExperience        string   `json:"pet_experience"`
	PreferredAnimalTypes []string `json:"preferred_animal_types"`
	MaxAnimals           int      `json:"max_animals"`
	AvailabilityNotes    string   `json:"availability_notes"`
	AgreesToHomeVisit    bool     `json:"agrees_to_home_visit"`
}

func (f FosterForm) Validate() error {
	err := validation.ValidateStruct(&f,
		validation.Field(&f.HomeType, validation.Required, validation.Length(1, 50)),
		validation.Field(&f.HouseholdAdults, validation.Required, validation.Min(1), validation.Max(20)),
		validation.Field(&f.HouseholdChildren, validation.Min(0), validation.Max(20)),
		validation.Field(&f.MaxAnimals, validation.Required, validation.Min(1), validation.Max(20)),
		validation.Field(&f.PetExperience, validation.Length(0, 4000)),
		validation.Field(&f.AvailabilityNotes, validation.Length(0, 2000)),
	)
	if f.AgreesToHomeVisit {
		return err
	}
	errs, ok := err.(validation.Errors)
	if !ok {
		if err != nil {
			return err
		}
		errs = validation.Errors{}
	}
	errs["agrees_to_home_visit"] = errors.New("must be accepted")
	return errs
}

type VolunteerForm struct {
	Interests             []string `json:"interests"`
	Availability          string   `json:"availability"`
	Experience            string   `json:"experience"`
	EmergencyContactName  string   `json:"emergency_contact_name"`
	EmergencyContactPhone string   `json:"emergency_contact_phone"`
	IsAdult               bool     `json:"is_adult"`
}

func (f VolunteerForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Interests, validation.Required),
		validation.Field(&f.Availability, validation.Required, validation.Length(1, 2000)),
		validation.Field(&f.Experience, validation.Length(0, 4000)),
		validation.Field(&f.EmergencyContactName, validation.Required, validation.Length(1, 100)),
		validation.Field(&f.EmergencyContactPhone, validation.Required, validation.Length(1, 40)),
	)
}

type AdoptionForm struct {
	AnimalID          string `json:"animal_id"`
	HomeType          string `json:"home_type"`
	HasYard           bool   `json:"has_yard"`
	HouseholdAdults   int    `json:"household_adults"`
	HouseholdChildren int    `json:"household_children"`
	CurrentPets       string `json:"current_pets"`
	VeterinarianName  string `json:"veterinarian_name"`
	VeterinarianPhone string `json:"veterinarian_phone"`
	ReasonForAdopting string `json:"reason_for_adopting"`
}

func (f AdoptionForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.AnimalID, validation.Required, is.UUID),
		validation.Field(&f.HomeType, validation.Required, validation.Length(1, 50)),
		validation.Field(&f.HouseholdAdults, validation.Required, validation.Min(1), validation.Max(20)),
		validation.Field(&f.HouseholdChildren, validation.Min(0), validation.Max(20)),
		validation.Field(&f.ReasonForAdopting, validation.Required, validation.Length(1, 4000)),
	)
}

type PartnershipForm struct {
	OrganizationName     string `json:"organization_name"`
	ContactRole          string `json:"contact_role"`
	Website              string `json:"website"`
	PartnershipType      string `json:"partnership_type"`
	ProposedContribution string `json:"proposed_contribution"`
	Message              string `json:"message"`
}

func (f PartnershipForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.OrganizationName, validation.Required, validation.Length(1, 200)),
		validation.Field(&f.Website, is.URL),
		validation.Field(&f.PartnershipType, validation.Required,
			validation.In("Sponsorship", "Partnership", "Event", "Donation")),
		validation.Field(&f.Message, validation.Length(0, 4000)),
	)
}

type FosterProfile struct {
	ID                string     `json:"id"`
	UserID            string     `json:"user_id"`
	ApplicationID     *string    `json:"application_id,omitempty"`
	IsActive          bool       `json:"is_active"`
	Capacity          int        `json:"capacity"`
	AvailabilityNotes string     `json:"availability_notes"`
	HomeVisitDate     *time.Time `json:"home_visit_date,omitempty"`
	HomeVisitNotes    string     `json:"home_visit_notes"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
