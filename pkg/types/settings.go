package types

import "errors"

var ErrSettingsNotFound = errors.New("settings not found")

// Payment channel identifiers, as submitted in Draft.PaymentMethod.
const (
	PaymentMethodZelle   = "zelle"
	PaymentMethodCashApp = "cash_app"
	PaymentMethodGoDaddy = "godaddy"
)

type ZelleInstructions struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type CashAppInstructions struct {
	Cashtag string `json:"cashtag"`
}

type PaymentInstructions struct {
	Zelle          ZelleInstructions   `json:"zelle"`
	CashApp        CashAppInstructions `json:"cashApp"`
	ApplicationFee float64             `json:"applicationFee"`
	RefundAmount   float64             `json:"refundAmount"`
}

// Settings is the single operator-editable record governing the tour-date
// policy and payment channels. Latest write wins; there is no versioning.
type Settings struct {
	TourDateNote        string              `json:"tourDateNote"`
	TourDateDescription string              `json:"tourDateDescription"`
	PaymentInstructions PaymentInstructions `json:"paymentInstructions"`

	GoDaddyPaymentEnabled bool   `json:"godaddyPaymentEnabled"`
	GoDaddyPayLink        string `json:"godaddyPayLink"`
	ZelleEnabled          bool   `json:"zelleEnabled"`
	CashAppEnabled        bool   `json:"cashAppEnabled"`
}

// DefaultSettings is served whenever the settings store is empty or
// unreachable, so the application flow never blocks on configuration.
func DefaultSettings() Settings {
	return Settings{
		TourDateNote:        "Note: The current tenant's lease expires on September 15th. Please select a tour date after this date.",
		TourDateDescription: "The current tenant's lease expires on September 15th.",
		PaymentInstructions: PaymentInstructions{
			Zelle: ZelleInstructions{
				Email: "payments@example.com",
				Name:  "Property Management LLC",
			},
			CashApp:        CashAppInstructions{Cashtag: "$PropertyMgmt"},
			ApplicationFee: 99,
			RefundAmount:   75,
		},
		ZelleEnabled:   true,
		CashAppEnabled: true,
	}
}

// EnabledPaymentMethods lists the channels an applicant may select.
func (s Settings) EnabledPaymentMethods() []string {
	methods := make([]string, 0, 3)
	if s.ZelleEnabled {
		methods = append(methods, PaymentMethodZelle)
	}
	if s.CashAppEnabled {
		methods = append(methods, PaymentMethodCashApp)
	}
	if s.GoDaddyPaymentEnabled {
		methods = append(methods, PaymentMethodGoDaddy)
	}
	return methods
}

type ZelleInstructionsPatch struct {
	Email *string `json:"email"`
	Name  *string `json:"name"`
}

type CashAppInstructionsPatch struct {
	Cashtag *string `json:"cashtag"`
}

type PaymentInstructionsPatch struct {
	Zelle          *ZelleInstructionsPatch   `json:"zelle"`
	CashApp        *CashAppInstructionsPatch `json:"cashApp"`
	ApplicationFee *float64                  `json:"applicationFee"`
	RefundAmount   *float64                  `json:"refundAmount"`
}

// SettingsPatch is a partial settings write; nil fields keep their stored
// value.
type SettingsPatch struct {
	TourDateNote        *string                   `json:"tourDateNote"`
	TourDateDescription *string                   `json:"tourDateDescription"`
	PaymentInstructions *PaymentInstructionsPatch `json:"paymentInstructions"`

	GoDaddyPaymentEnabled *bool   `json:"godaddyPaymentEnabled"`
	GoDaddyPayLink        *string `json:"godaddyPayLink"`
	ZelleEnabled          *bool   `json:"zelleEnabled"`
	CashAppEnabled        *bool   `json:"cashAppEnabled"`
}

func (s Settings) Apply(p SettingsPatch) Settings {
	if p.TourDateNote != nil {
		s.TourDateNote = *p.TourDateNote
	}
	if p.TourDateDescription != nil {
		s.TourDateDescription = *p.TourDateDescription
	}
	if p.GoDaddyPaymentEnabled != nil {
		s.GoDaddyPaymentEnabled = *p.GoDaddyPaymentEnabled
	}
	if p.GoDaddyPayLink != nil {
		s.GoDaddyPayLink = *p.GoDaddyPayLink
	}
	if p.ZelleEnabled != nil {
		s.ZelleEnabled = *p.ZelleEnabled
	}
	if p.CashAppEnabled != nil {
		s.CashAppEnabled = *p.CashAppEnabled
	}

	if pi := p.PaymentInstructions; pi != nil {
		if pi.ApplicationFee != nil {
			s.PaymentInstructions.ApplicationFee = *pi.ApplicationFee
		}
		if pi.RefundAmount != nil {
			s.PaymentInstructions.RefundAmount = *pi.RefundAmount
		}
		if pi.Zelle != nil {
			if pi.Zelle.Email != nil {
				s.PaymentInstructions.Zelle.Email = *pi.Zelle.Email
			}
			if pi.Zelle.Name != nil {
				s.PaymentInstructions.Zelle.Name = *pi.Zelle.Name
			}
		}
		if pi.CashApp != nil && pi.CashApp.Cashtag != nil {
			s.PaymentInstructions.CashApp.Cashtag = *pi.CashApp.Cashtag
		}
	}

	return s
}
