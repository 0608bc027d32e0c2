package model

// MatchRequest represents a caregiver matching request.
// Empty fields mean "no preference".
type MatchRequest struct {
	MedicalNeeds          string `json:"medical_needs"`
	Location              string `json:"location"`
	GenderPreference      string `json:"gender_preference"`
	PreferredAvailability string `json:"preferred_availability"`
}

// MatchResult represents a caregiver matching response
type MatchResult struct {
	Matches        []CaregiverMatch `json:"matches"`
	TotalAvailable int              `json:"total_available"`
}

// CaregiverCreateRequest represents an admin request to register a caregiver
type CaregiverCreateRequest struct {
	Name            string     `json:"name"`
	Qualifications  StringList `json:"qualifications"`
	FocusConditions StringList `json:"focus_conditions"`
	Location        string     `json:"location"`
	Gender          string     `json:"gender"`
	Availability    StringList `json:"availability"`
	IsAvailable     *bool      `json:"is_available"`
}

