package models

type Specialization struct {
	ID   ID     `json:"id"`
	Name string `json:"specializations"`
}

type Language struct {
	ID   ID     `json:"id"`
	Name string `json:"languages"`
}

// TimeOption is one bookable time on an availability date.
type TimeOption struct {
	ID       ID     `json:"id"`
	Time     string `json:"time"`
	IsBooked bool   `json:"is_booked"`
}

// AvailabilitySlot is a date offered by a therapist with its times.
type AvailabilitySlot struct {
	ID             ID           `json:"id"`
	Date           string       `json:"date"`
	AvailableTimes []TimeOption `json:"available_times"`
}

// OpenTimes returns the unbooked times of the slot.
func (s AvailabilitySlot) OpenTimes() []TimeOption {
	open := make([]TimeOption, 0, len(s.AvailableTimes))
	for _, t := range s.AvailableTimes {
		if !t.IsBooked {
			open = append(open, t)
		}
	}
	return open
}

type TherapistUser struct {
	ID       ID     `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type TherapistProfile struct {
	ID                ID                 `json:"id"`
	FullName          string             `json:"fullname"`
	ProfessionalTitle string             `json:"professionalTitle"`
	YearsOfExperience FlexInt            `json:"yearsOfExperience"`
	Gender            string             `json:"gender,omitempty"`
	State             string             `json:"state,omitempty"`
	Country           string             `json:"country,omitempty"`
	Degree            string             `json:"degree,omitempty"`
	University        string             `json:"university,omitempty"`
	ProfileImage      *string            `json:"profile_image,omitempty"`
	Specializations   []Specialization   `json:"specializations"`
	Languages         []Language         `json:"languages"`
	Rating            *float64           `json:"rating"`
	Availabilities    []AvailabilitySlot `json:"availabilities,omitempty"`
	User              *TherapistUser     `json:"user,omitempty"`
}

// RatingValue treats a missing rating as 0.
func (t TherapistProfile) RatingValue() float64 {
	if t.Rating == nil {
		return 0
	}
	return *t.Rating
}

func (t TherapistProfile) SpecialtyNames() []string {
	names := make([]string, 0, len(t.Specializations))
	for _, s := range t.Specializations {
		names = append(names, s.Name)
	}
	return names
}

// PriceTable maps each session mode to its price in whole rupees.
type PriceTable map[SessionMode]int64
