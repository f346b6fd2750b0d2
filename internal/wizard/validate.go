package wizard

import (
	"encoding/base64"
	"math"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"pinnaclepm/pkg/types"
)

const (
	dateLayout = "2006-01-02"

	maxReceiptBytes = 5 * 1024 * 1024
)

var receiptTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

// Rules carries the settings-derived context a validation pass needs: the
// minimum selectable tour date and the payment channels currently enabled.
type Rules struct {
	MinTourDate    time.Time
	PaymentMethods []string
}

// ValidateStep checks one step's required fields against the draft. An empty
// map means the step passes.
func ValidateStep(d *types.Draft, step int, rules Rules) map[string]string {
	switch step {
	case StepContact:
		return validateContact(d)
	case StepFinancial:
		return validateFinancial(d)
	case StepHousehold:
		return validateHousehold(d)
	case StepTour:
		return validateTour(d, rules)
	case StepPayment:
		return validatePayment(d, rules)
	default:
		return map[string]string{"step": "unknown step"}
	}
}

// Validate runs every step in order and reports the first step that fails,
// so a submission can be rejected before any notification is dispatched.
func Validate(d *types.Draft, rules Rules) (int, map[string]string) {
	for step := StepContact; step <= StepPayment; step++ {
		if errs := ValidateStep(d, step, rules); len(errs) > 0 {
			return step, errs
		}
	}
	return 0, nil
}

func validateContact(d *types.Draft) map[string]string {
	errs := map[string]string{}

	if !required(d.FullName) {
		errs["fullName"] = "Full name is required."
	}

	if !required(d.Email) {
		errs["email"] = "Email is required."
	} else if _, err := mail.ParseAddress(d.Email); err != nil {
		errs["email"] = "Enter a valid email address."
	}

	if !required(d.PhoneNumber) {
		errs["phoneNumber"] = "Phone number is required."
	}

	if !required(d.CurrentAddress) {
		errs["currentAddress"] = "Current address is required."
	}

	return errs
}

func validateFinancial(d *types.Draft) map[string]string {
	errs := map[string]string{}

	checkAmount(errs, "monthlyIncome", d.MonthlyIncome)
	checkAmount(errs, "annualIncome", d.AnnualIncome)
	checkAmount(errs, "outstandingDebts", d.OutstandingDebts)

	checkYesNo(errs, "missedRentPayments", d.MissedRentPayments)
	checkYesNo(errs, "hasEvictionHistory", d.HasEvictionHistory)
	checkYesNo(errs, "hasBankruptcy", d.HasBankruptcy)

	// creditScore and landlordReferences are optional free text.

	return errs
}

func validateHousehold(d *types.Draft) map[string]string {
	errs := map[string]string{}

	if !required(d.NumberOfOccupants) {
		errs["numberOfOccupants"] = "Number of occupants is required."
	} else if n, err := strconv.Atoi(d.NumberOfOccupants); err != nil || n <= 0 {
		errs["numberOfOccupants"] = "Number of occupants must be a positive whole number."
	}

	checkYesNo(errs, "hasChildren", d.HasChildren)
	checkYesNo(errs, "hasPets", d.HasPets)
	checkYesNo(errs, "hasSmoking", d.HasSmoking)
	checkYesNo(errs, "needsFlexibility", d.NeedsFlexibility)
	checkYesNo(errs, "hasConsent", d.HasConsent)

	if d.HasPets == types.Yes && !required(d.PetDetails) {
		errs["petDetails"] = "Pet details are required when you have pets."
	}

	if !required(d.PlannedStayDuration) {
		errs["plannedStayDuration"] = "Planned stay duration is required."
	}

	if !required(d.MoveInDate) {
		errs["moveInDate"] = "Move-in date is required."
	} else if _, err := time.Parse(dateLayout, d.MoveInDate); err != nil {
		errs["moveInDate"] = "Enter a valid move-in date."
	}

	return errs
}

func validateTour(d *types.Draft, rules Rules) map[string]string {
	errs := map[string]string{}

	if !required(d.TourDate) {
		errs["tourDate"] = "Tour date is required."
	} else if t, err := time.Parse(dateLayout, d.TourDate); err != nil {
		errs["tourDate"] = "Enter a valid tour date."
	} else if !rules.MinTourDate.IsZero() {
		// Compare at midday, matching the eligibility convention.
		picked := time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, rules.MinTourDate.Location())
		if picked.Before(rules.MinTourDate) {
			errs["tourDate"] = "The selected tour date is before the earliest available date."
		}
	}

	if !required(d.TourTime) {
		errs["tourTime"] = "Tour time is required."
	}

	return errs
}

func validatePayment(d *types.Draft, rules Rules) map[string]string {
	errs := map[string]string{}

	if !required(d.PaymentMethod) {
		errs["paymentMethod"] = "Payment method is required."
	} else if !contains(rules.PaymentMethods, d.PaymentMethod) {
		errs["paymentMethod"] = "The selected payment method is not available."
	}

	// Every channel currently collects proof of payment.
	if d.PaymentReceipt == nil {
		errs["paymentReceipt"] = "Payment receipt is required."
		return errs
	}

	r := d.PaymentReceipt
	if !required(r.Name) {
		errs["paymentReceipt"] = "Payment receipt file name is missing."
	} else if !receiptTypes[r.Type] {
		errs["paymentReceipt"] = "Unsupported receipt file type. Accepted formats: PDF, JPG, PNG."
	} else if decoded, err := base64.StdEncoding.DecodeString(r.Content); err != nil || len(decoded) == 0 {
		errs["paymentReceipt"] = "Payment receipt content is missing or unreadable."
	} else if len(decoded) > maxReceiptBytes {
		errs["paymentReceipt"] = "Receipt file size must be less than 5MB."
	}

	return errs
}

func checkAmount(errs map[string]string, field, value string) {
	if !required(value) {
		errs[field] = "This field is required."
		return
	}
	n, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		errs[field] = "Enter a number."
		return
	}
	if n < 0 {
		errs[field] = "Must be zero or more."
	}
}

func checkYesNo(errs map[string]string, field string, v types.YesNo) {
	if !v.Valid() {
		errs[field] = "Select yes or no."
	}
}

func required(v string) bool {
	return strings.TrimSpace(v) != ""
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
