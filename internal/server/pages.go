package server

import (
	"net/http"
	"time"

	"pinnaclepm/internal/tour"
	"pinnaclepm/pkg/types"
)

type HomePageData struct {
	Title          string
	TourDateNote   string
	ApplicationFee float64
	RefundAmount   float64
	PaymentMethods []string
}

func (s *Service) handleHome(w http.ResponseWriter, r *http.Request) {
	settings := s.currentSettings(r.Context())

	data := HomePageData{
		Title:          "Pinnacle Property Management",
		TourDateNote:   settings.TourDateNote,
		ApplicationFee: settings.PaymentInstructions.ApplicationFee,
		RefundAmount:   settings.PaymentInstructions.RefundAmount,
		PaymentMethods: settings.EnabledPaymentMethods(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "page.home", data); err != nil {
		s.logger.WithError(err).Error("failed to render home page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type publicPaymentMethod struct {
	ID      string                     `json:"id"`
	Zelle   *types.ZelleInstructions   `json:"zelle,omitempty"`
	CashApp *types.CashAppInstructions `json:"cashApp,omitempty"`
	PayLink string                     `json:"payLink,omitempty"`
}

type publicSettings struct {
	TourDateNote        string                `json:"tourDateNote"`
	TourDateDescription string                `json:"tourDateDescription"`
	MinimumTourDate     string                `json:"minimumTourDate"`
	ApplicationFee      float64               `json:"applicationFee"`
	RefundAmount        float64               `json:"refundAmount"`
	PaymentMethods      []publicPaymentMethod `json:"paymentMethods"`
}

// minimumTourDate derives the earliest selectable tour date from the
// settings. The description is the canonical notice carrying the cutoff;
// the display note is consulted only when the description names no date.
func minimumTourDate(settings types.Settings, now time.Time) time.Time {
	if d, ok := tour.NoticeCutoff(settings.TourDateDescription, now); ok {
		return d
	}
	return tour.MinimumTourDate(settings.TourDateNote, now)
}

// handleGetPublicSettings returns the applicant-facing slice of the
// settings: the tour notice with its derived minimum date, and the enabled
// payment channels with their instructions.
func (s *Service) handleGetPublicSettings(w http.ResponseWriter, r *http.Request) {
	settings := s.currentSettings(r.Context())

	minDate := minimumTourDate(settings, time.Now())

	methods := make([]publicPaymentMethod, 0, 3)
	for _, id := range settings.EnabledPaymentMethods() {
		method := publicPaymentMethod{ID: id}
		switch id {
		case types.PaymentMethodZelle:
			zelle := settings.PaymentInstructions.Zelle
			method.Zelle = &zelle
		case types.PaymentMethodCashApp:
			cashApp := settings.PaymentInstructions.CashApp
			method.CashApp = &cashApp
		case types.PaymentMethodGoDaddy:
			method.PayLink = settings.GoDaddyPayLink
		}
		methods = append(methods, method)
	}

	s.respondJSON(w, http.StatusOK, publicSettings{
		TourDateNote:        settings.TourDateNote,
		TourDateDescription: settings.TourDateDescription,
		MinimumTourDate:     minDate.Format("2006-01-02"),
		ApplicationFee:      settings.PaymentInstructions.ApplicationFee,
		RefundAmount:        settings.PaymentInstructions.RefundAmount,
		PaymentMethods:      methods,
	})
}
