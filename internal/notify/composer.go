// Package notify turns a completed application into the two outbound
// emails: the operator's copy of the application and the applicant's
// confirmation.
package notify

import (
	"fmt"
	"strings"

	"pinnaclepm/pkg/types"
)

// Role selects which of the two renderings of a submission to build.
type Role string

const (
	RoleOperator  Role = "operator"
	RoleApplicant Role = "applicant"
)

const notProvided = "Not provided"

// Message is a composed outbound email, ready for a Sender.
type Message struct {
	FromName   string
	FromEmail  string
	To         string
	Subject    string
	Body       string
	Attachment *types.Receipt
}

// Composer renders both notification roles from one place so the two
// messages cannot drift apart.
type Composer struct {
	FromName       string
	FromEmail      string
	OperatorEmail  string
	DocumentsEmail string
}

func (c *Composer) Compose(role Role, d *types.Draft, confirmationCode string) *Message {
	switch role {
	case RoleApplicant:
		return c.applicantMessage(d, confirmationCode)
	default:
		return c.operatorMessage(d)
	}
}

func (c *Composer) operatorMessage(d *types.Draft) *Message {
	var b strings.Builder

	b.WriteString("New Rental Application Received\n\n")
	fmt.Fprintf(&b, "A new application has been received from %s.\n\n", orNot(d.FullName))

	b.WriteString("Personal Information:\n")
	writeField(&b, "Full Name", d.FullName)
	writeField(&b, "Email", d.Email)
	writeField(&b, "Phone Number", d.PhoneNumber)
	writeField(&b, "Current Address", d.CurrentAddress)

	b.WriteString("\nFinancial Information:\n")
	writeCurrency(&b, "Monthly Income", d.MonthlyIncome)
	writeCurrency(&b, "Annual Income", d.AnnualIncome)
	writeCurrency(&b, "Outstanding Debts", d.OutstandingDebts)
	writeField(&b, "Credit Score Range", d.CreditScore)
	writeField(&b, "Missed Rent Payments", string(d.MissedRentPayments))
	writeField(&b, "Has Eviction History", string(d.HasEvictionHistory))
	writeField(&b, "Has Bankruptcy", string(d.HasBankruptcy))
	writeField(&b, "Landlord References", d.LandlordReferences)

	b.WriteString("\nAdditional Information:\n")
	writeField(&b, "Number of Occupants", d.NumberOfOccupants)
	writeField(&b, "Has Children", string(d.HasChildren))
	writeField(&b, "Planned Stay Duration", d.PlannedStayDuration)
	writeField(&b, "Has Pets", string(d.HasPets))
	if d.HasPets == types.Yes {
		writeField(&b, "Pet Details", d.PetDetails)
	}
	writeField(&b, "Has Smoking", string(d.HasSmoking))
	writeField(&b, "Needs Flexibility", string(d.NeedsFlexibility))
	writeField(&b, "Move-in Date", d.MoveInDate)

	b.WriteString("\nTour & Payment:\n")
	writeField(&b, "Tour Date", d.TourDate)
	writeField(&b, "Tour Time", d.TourTime)
	writeField(&b, "Payment Method", d.PaymentMethod)
	if d.PaymentReceipt != nil {
		b.WriteString("- Payment Receipt: Attached\n")
	}

	return &Message{
		FromName:   c.FromName,
		FromEmail:  c.FromEmail,
		To:         c.OperatorEmail,
		Subject:    "New Rental Application Received",
		Body:       b.String(),
		Attachment: d.PaymentReceipt,
	}
}

func (c *Composer) applicantMessage(d *types.Draft, confirmationCode string) *Message {
	var b strings.Builder

	b.WriteString("Application Confirmation\n\n")
	fmt.Fprintf(&b, "Dear %s,\n\n", d.FullName)
	b.WriteString("Thank you for submitting your rental application. Your application has been received and is being processed.\n\n")
	fmt.Fprintf(&b, "Your unique access code is: %s\n\n", confirmationCode)
	fmt.Fprintf(&b, "For faster processing, please send the following documents to %s:\n", c.DocumentsEmail)
	b.WriteString("- Most recent W2\n")
	b.WriteString("- Any valid government ID (front & back clear pictures)\n\n")
	b.WriteString("Tour Details:\n")
	writeField(&b, "Date", d.TourDate)
	writeField(&b, "Time", d.TourTime)
	b.WriteString("\nWe will review your application within 1-3 business days. If you have any questions, please don't hesitate to contact us.\n\n")
	fmt.Fprintf(&b, "Best regards,\n%s\n", c.FromName)

	return &Message{
		FromName:  c.FromName,
		FromEmail: c.FromEmail,
		To:        d.Email,
		Subject:   "Application Confirmation and Access Code",
		Body:      b.String(),
	}
}

func writeField(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "- %s: %s\n", label, orNot(value))
}

// Currency amounts get a literal "$" prefix and no separators.
func writeCurrency(b *strings.Builder, label, value string) {
	if strings.TrimSpace(value) == "" {
		writeField(b, label, "")
		return
	}
	fmt.Fprintf(b, "- %s: $%s\n", label, value)
}

func orNot(v string) string {
	if strings.TrimSpace(v) == "" {
		return notProvided
	}
	return v
}
