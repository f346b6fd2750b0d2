package server

import (
	"errors"
	"net/http"

	"pinnaclepm/internal/notify"
	"pinnaclepm/internal/wizard"
	"pinnaclepm/pkg/types"
)

type submitResponse struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	MessageIDs map[string]string `json:"messageIds,omitempty"`
	AccessCode string            `json:"accessCode,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// handleSubmitApplication takes the full application, including the payment
// step, dispatches both notification emails, and clears the draft. The
// draft survives any failure so the applicant can retry.
func (s *Service) handleSubmitApplication(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var draft types.Draft
	if err := decodeJSONBody(r, &draft); err != nil {
		s.logger.WithError(err).Warn("failed to decode application body")
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	draft.CurrentStep = wizard.StepPayment

	settings := s.currentSettings(ctx)

	result, err := s.pipeline.Submit(ctx, &draft, settings)
	if err != nil {
		var subErr *notify.SubmissionError
		if errors.As(err, &subErr) {
			s.respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"success": false,
				"message": "Validation failed",
				"step":    subErr.Step,
				"errors":  subErr.Fields,
			})
			return
		}

		s.logger.WithError(err).Error("application submission failed")
		s.respondJSON(w, http.StatusInternalServerError, submitResponse{
			Success: false,
			Message: "Failed to submit application. Please try again.",
			Error:   err.Error(),
		})
		return
	}

	if draft.ID != "" {
		if err := s.drafts.DeleteDraft(ctx, draft.ID); err != nil {
			s.logger.WithError(err).Warn("failed to clear submitted draft")
		}
	}

	s.respondJSON(w, http.StatusOK, submitResponse{
		Success: true,
		Message: "Application submitted successfully",
		MessageIDs: map[string]string{
			"userApplication":  result.OperatorMessageID,
			"userConfirmation": result.ApplicantMessageID,
		},
		AccessCode: result.ConfirmationCode,
	})
}
