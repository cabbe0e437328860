package domain

import "strings"

// AdoptionStatus is the lifecycle state of an animal.
type AdoptionStatus string

const (
	StatusNotYetAvailable   AdoptionStatus = "Not Yet Available"
	StatusAvailable         AdoptionStatus = "Available"
	StatusAvailableInFoster AdoptionStatus = "Available - In Foster"
	StatusAdoptionPending   AdoptionStatus = "Adoption Pending"
	StatusAdopted           AdoptionStatus = "Adopted"
	StatusMedicalHold       AdoptionStatus = "Medical Hold"
	StatusBehavioralHold    AdoptionStatus = "Behavioral Hold"
	StatusTransferred       AdoptionStatus = "Transferred"
	StatusDeceased          AdoptionStatus = "Deceased"
)

// AllAdoptionStatuses lists every known status in display order.
var AllAdoptionStatuses = []AdoptionStatus{
	StatusNotYetAvailable,
	StatusAvailable,
	StatusAvailableInFoster,
	StatusAdoptionPending,
	StatusAdopted,
	StatusMedicalHold,
	StatusBehavioralHold,
	StatusTransferred,
	StatusDeceased,
}

var adoptable = map[AdoptionStatus]bool{
	StatusAvailable:         true,
	StatusAvailableInFoster: true,
	StatusAdoptionPending:   true,
}

func ParseAdoptionStatus(s string) (AdoptionStatus, error) {
	s = strings.TrimSpace(s)
	for _, st := range AllAdoptionStatuses {
		if strings.EqualFold(string(st), s) {
			return st, nil
		}
	}
	return "", Validationf("unknown adoption status %q", s)
}

// CanFinalizeAdoption reports whether an adoption may be finalized from s.
func (s AdoptionStatus) CanFinalizeAdoption() bool {
	return adoptable[s]
}

// CanProcessReturn reports whether a return may be processed from s.
func (s AdoptionStatus) CanProcessReturn() bool {
	return s == StatusAdopted
}

// CanSetManually reports whether an operator edit may move an animal from s
// to next. Adopted is entered and left only through finalize and return so
// the adoption history stays consistent with the status.
func (s AdoptionStatus) CanSetManually(next AdoptionStatus) bool {
	if s == next {
		return true
	}
	return s != StatusAdopted && next != StatusAdopted
}

// ValidPostReturn reports whether s may be chosen as the status after a return.
func (s AdoptionStatus) ValidPostReturn() bool {
	return s != StatusAdopted && s != ""
}
