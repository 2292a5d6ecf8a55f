package booking

import (
	"time"

	"mindease/models"
)

// SelectableDates lists the therapist's dates that still have at least one
// unbooked time, each reduced to its open times.
func SelectableDates(f *models.BookingFlow) []models.AvailabilitySlot {
	out := make([]models.AvailabilitySlot, 0, len(f.Therapist.Availabilities))
	for _, slot := range f.Therapist.Availabilities {
		open := slot.OpenTimes()
		if len(open) == 0 {
			continue
		}
		out = append(out, models.AvailabilitySlot{ID: slot.ID, Date: slot.Date, AvailableTimes: open})
	}
	return out
}

func findSlot(f *models.BookingFlow, dateID models.ID) (models.AvailabilitySlot, bool) {
	for _, slot := range f.Therapist.Availabilities {
		if slot.ID == dateID {
			return slot, true
		}
	}
	return models.AvailabilitySlot{}, false
}

func guardOpen(f *models.BookingFlow) error {
	if f.Step == models.StepSubmitted {
		return ErrAlreadySubmitted
	}
	if f.PaymentIntent != "" {
		return ErrSelectionLocked
	}
	if CheckoutActive(f, time.Now()) {
		return ErrCheckoutInProgress
	}
	return nil
}

// CheckoutActive reports a processing flag younger than the checkout lock.
// A flag left behind by a crashed checkout stops blocking once the lock
// would have expired.
func CheckoutActive(f *models.BookingFlow, now time.Time) bool {
	return f.Processing && now.Sub(f.ProcessingSince) < checkoutLockTTL
}

// SelectDate chooses a date and clears every downstream selection.
func SelectDate(f *models.BookingFlow, dateID models.ID) error {
	if err := guardOpen(f); err != nil {
		return err
	}
	slot, ok := findSlot(f, dateID)
	if !ok {
		return newFlowError("unknownDate", "The selected date is not offered by this therapist.")
	}
	if len(slot.OpenTimes()) == 0 {
		return newFlowError("dateFullyBooked", "No times are left on the selected date.")
	}
	f.DateID = slot.ID
	f.DateValue = slot.Date
	f.TimeID = ""
	f.TimeValue = ""
	f.Mode = ""
	f.Type = models.TypeNew
	f.ShowSummary = false
	f.Step = models.StepSelectTime
	return nil
}

// SelectTime chooses an unbooked time on the selected date and reveals the summary.
func SelectTime(f *models.BookingFlow, timeID models.ID) error {
	if err := guardOpen(f); err != nil {
		return err
	}
	if f.DateID == "" {
		return newFlowError("dateRequired", "Choose a date first.")
	}
	slot, ok := findSlot(f, f.DateID)
	if !ok {
		return newFlowError("unknownDate", "The selected date is no longer offered.")
	}
	for _, t := range slot.AvailableTimes {
		if t.ID != timeID {
			continue
		}
		if t.IsBooked {
			return newFlowError("timeBooked", "That time has already been booked.")
		}
		f.TimeID = t.ID
		f.TimeValue = t.Time
		f.ShowSummary = true
		f.Step = advance(f)
		return nil
	}
	return newFlowError("unknownTime", "The selected time is not offered on this date.")
}

func SelectMode(f *models.BookingFlow, mode models.SessionMode) error {
	if err := guardOpen(f); err != nil {
		return err
	}
	if f.TimeID == "" {
		return newFlowError("timeRequired", "Choose a time first.")
	}
	if !mode.Valid() {
		return newFlowError("invalidMode", "Session mode must be video, voice or message.")
	}
	f.Mode = mode
	f.Step = advance(f)
	return nil
}

// SelectType sets new or follow-up. Choosing it explicitly moves the flow to review.
func SelectType(f *models.BookingFlow, t models.SessionType) error {
	if err := guardOpen(f); err != nil {
		return err
	}
	if f.TimeID == "" {
		return newFlowError("timeRequired", "Choose a time first.")
	}
	if !t.Valid() {
		return newFlowError("invalidType", "Session type must be new or followup.")
	}
	f.Type = t
	if f.Mode != "" {
		f.Step = models.StepReview
	}
	return nil
}

// advance computes the step implied by the current selections.
func advance(f *models.BookingFlow) models.BookingStep {
	switch {
	case f.DateID == "":
		return models.StepSelectDate
	case f.TimeID == "":
		return models.StepSelectTime
	case f.Mode == "":
		return models.StepSelectMode
	case f.Step == models.StepReview:
		return models.StepReview
	default:
		return models.StepSelectType
	}
}

// ReviewUnlocked is true once date, time and mode are chosen; the type
// defaults to new.
func ReviewUnlocked(f *models.BookingFlow) bool {
	return f.DateID != "" && f.TimeID != "" && f.Mode.Valid()
}

// Summarize builds the review summary. It fails until the summary is visible.
func Summarize(f *models.BookingFlow) (models.BookingSummary, error) {
	if !f.ShowSummary || f.TimeID == "" {
		return models.BookingSummary{}, newFlowError("summaryHidden", "Choose a date and time to see the summary.")
	}
	s := models.BookingSummary{
		TherapistID:   f.Therapist.ID,
		TherapistName: f.Therapist.FullName,
		Date:          f.DateValue,
		Time:          f.TimeValue,
		Mode:          f.Mode,
		Type:          f.Type,
	}
	if f.Mode != "" {
		s.Price = f.Prices[f.Mode]
	}
	return s, nil
}

// appointmentRequest is the creation payload for a reviewed flow.
func appointmentRequest(f *models.BookingFlow) models.NewAppointmentRequest {
	t := f.Type
	if !t.Valid() {
		t = models.TypeNew
	}
	return models.NewAppointmentRequest{
		Therapist: f.Therapist.ID,
		Date:      f.DateID,
		Time:      f.TimeID,
		Mode:      f.Mode,
		Type:      t,
		Price:     f.Prices[f.Mode],
	}
}
