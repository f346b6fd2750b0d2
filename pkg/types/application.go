package types

import (
	"errors"
	"time"
)

var (
	ErrDraftNotFound       = errors.New("draft not found")
	ErrAdminNotFound       = errors.New("admin user not found")
	ErrApplicationNotFound = errors.New("application not found")
)

// YesNo is the closed answer enum used across the disclosure questions.
type YesNo string

const (
	Yes YesNo = "yes"
	No  YesNo = "no"
)

func (v YesNo) Valid() bool {
	return v == Yes || v == No
}

// Receipt is an uploaded proof-of-payment attachment as it travels over the
// wire: the content is base64 encoded.
type Receipt struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Draft accumulates the applicant's answers across the five wizard steps. It
// is persisted between steps and destroyed on successful submission or an
// explicit start-over.
type Draft struct {
	ID          string `json:"draftId"`
	CurrentStep int    `json:"currentStep"`

	// Step 1: contact information
	FullName       string `json:"fullName" form:"fullName"`
	Email          string `json:"email" form:"email"`
	PhoneNumber    string `json:"phoneNumber" form:"phoneNumber"`
	CurrentAddress string `json:"currentAddress" form:"currentAddress"`

	// Step 2: financial and personal disclosures
	MonthlyIncome      string `json:"monthlyIncome" form:"monthlyIncome"`
	AnnualIncome       string `json:"annualIncome" form:"annualIncome"`
	OutstandingDebts   string `json:"outstandingDebts" form:"outstandingDebts"`
	CreditScore        string `json:"creditScore" form:"creditScore"`
	MissedRentPayments YesNo  `json:"missedRentPayments" form:"missedRentPayments"`
	HasEvictionHistory YesNo  `json:"hasEvictionHistory" form:"hasEvictionHistory"`
	HasBankruptcy      YesNo  `json:"hasBankruptcy" form:"hasBankruptcy"`
	LandlordReferences string `json:"landlordReferences" form:"landlordReferences"`

	// Step 3: household and move-in plans
	NumberOfOccupants   string `json:"numberOfOccupants" form:"numberOfOccupants"`
	HasChildren         YesNo  `json:"hasChildren" form:"hasChildren"`
	HasPets             YesNo  `json:"hasPets" form:"hasPets"`
	PetDetails          string `json:"petDetails" form:"petDetails"`
	HasSmoking          YesNo  `json:"hasSmoking" form:"hasSmoking"`
	PlannedStayDuration string `json:"plannedStayDuration" form:"plannedStayDuration"`
	MoveInDate          string `json:"moveInDate" form:"moveInDate"`
	NeedsFlexibility    YesNo  `json:"needsFlexibility" form:"needsFlexibility"`
	HasConsent          YesNo  `json:"hasConsent" form:"hasConsent"`

	// Step 4: tour scheduling
	TourDate string `json:"tourDate" form:"tourDate"`
	TourTime string `json:"tourTime" form:"tourTime"`

	// Step 5: payment
	PaymentMethod  string   `json:"paymentMethod" form:"paymentMethod"`
	PaymentReceipt *Receipt `json:"paymentReceipt,omitempty"`
}

// Application is the record kept after a successful submission so the
// operator can review applications without digging through email. No receipt
// content is retained here, only the object storage key.
type Application struct {
	ID               string    `db:"id" json:"id"`
	ConfirmationCode string    `db:"confirmation_code" json:"confirmationCode"`
	FullName         string    `db:"full_name" json:"fullName"`
	Email            string    `db:"email" json:"email"`
	PhoneNumber      string    `db:"phone_number" json:"phoneNumber"`
	TourDate         string    `db:"tour_date" json:"tourDate"`
	TourTime         string    `db:"tour_time" json:"tourTime"`
	PaymentMethod    string    `db:"payment_method" json:"paymentMethod"`
	ReceiptKey       *string   `db:"receipt_key" json:"receiptKey"`
	SubmittedAt      time.Time `db:"submitted_at" json:"submittedAt"`
}
