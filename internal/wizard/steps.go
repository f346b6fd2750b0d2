// Package wizard holds the five-step application state machine: per-step
// forms, validation, and forward/backward transition rules. The machine is
// pure; persistence of the draft between steps belongs to the caller.
package wizard

import (
	"strings"

	"pinnaclepm/pkg/types"
)

const (
	StepContact   = 1
	StepFinancial = 2
	StepHousehold = 3
	StepTour      = 4
	StepPayment   = 5

	StepCount = 5
)

// StepForm is a single step's submitted fields, merged into the draft before
// validation.
type StepForm interface {
	Apply(d *types.Draft)
}

type ContactForm struct {
	FullName       string `form:"fullName"`
	Email          string `form:"email"`
	PhoneNumber    string `form:"phoneNumber"`
	CurrentAddress string `form:"currentAddress"`
}

func (f *ContactForm) Apply(d *types.Draft) {
	d.FullName = strings.TrimSpace(f.FullName)
	d.Email = strings.TrimSpace(f.Email)
	d.PhoneNumber = strings.TrimSpace(f.PhoneNumber)
	d.CurrentAddress = strings.TrimSpace(f.CurrentAddress)
}

type FinancialForm struct {
	MonthlyIncome      string      `form:"monthlyIncome"`
	AnnualIncome       string      `form:"annualIncome"`
	OutstandingDebts   string      `form:"outstandingDebts"`
	CreditScore        string      `form:"creditScore"`
	MissedRentPayments types.YesNo `form:"missedRentPayments"`
	HasEvictionHistory types.YesNo `form:"hasEvictionHistory"`
	HasBankruptcy      types.YesNo `form:"hasBankruptcy"`
	LandlordReferences string      `form:"landlordReferences"`
}

func (f *FinancialForm) Apply(d *types.Draft) {
	d.MonthlyIncome = strings.TrimSpace(f.MonthlyIncome)
	d.AnnualIncome = strings.TrimSpace(f.AnnualIncome)
	d.OutstandingDebts = strings.TrimSpace(f.OutstandingDebts)
	d.CreditScore = strings.TrimSpace(f.CreditScore)
	d.MissedRentPayments = f.MissedRentPayments
	d.HasEvictionHistory = f.HasEvictionHistory
	d.HasBankruptcy = f.HasBankruptcy
	d.LandlordReferences = strings.TrimSpace(f.LandlordReferences)
}

type HouseholdForm struct {
	NumberOfOccupants   string      `form:"numberOfOccupants"`
	HasChildren         types.YesNo `form:"hasChildren"`
	HasPets             types.YesNo `form:"hasPets"`
	PetDetails          string      `form:"petDetails"`
	HasSmoking          types.YesNo `form:"hasSmoking"`
	PlannedStayDuration string      `form:"plannedStayDuration"`
	MoveInDate          string      `form:"moveInDate"`
	NeedsFlexibility    types.YesNo `form:"needsFlexibility"`
	HasConsent          types.YesNo `form:"hasConsent"`
}

func (f *HouseholdForm) Apply(d *types.Draft) {
	d.NumberOfOccupants = strings.TrimSpace(f.NumberOfOccupants)
	d.HasChildren = f.HasChildren
	d.HasPets = f.HasPets
	d.PetDetails = strings.TrimSpace(f.PetDetails)
	d.HasSmoking = f.HasSmoking
	d.PlannedStayDuration = strings.TrimSpace(f.PlannedStayDuration)
	d.MoveInDate = strings.TrimSpace(f.MoveInDate)
	d.NeedsFlexibility = f.NeedsFlexibility
	d.HasConsent = f.HasConsent

	// Pet details only exist while pets are declared.
	if d.HasPets != types.Yes {
		d.PetDetails = ""
	}
}

type TourForm struct {
	TourDate string `form:"tourDate"`
	TourTime string `form:"tourTime"`
}

func (f *TourForm) Apply(d *types.Draft) {
	d.TourDate = strings.TrimSpace(f.TourDate)
	d.TourTime = strings.TrimSpace(f.TourTime)
}

type PaymentForm struct {
	PaymentMethod string `form:"paymentMethod"`
}

func (f *PaymentForm) Apply(d *types.Draft) {
	d.PaymentMethod = strings.TrimSpace(f.PaymentMethod)
}

// FormFor returns an empty form for the given step, ready for decoding, or
// nil for an unknown step.
func FormFor(step int) StepForm {
	switch step {
	case StepContact:
		return &ContactForm{}
	case StepFinancial:
		return &FinancialForm{}
	case StepHousehold:
		return &HouseholdForm{}
	case StepTour:
		return &TourForm{}
	case StepPayment:
		return &PaymentForm{}
	default:
		return nil
	}
}
