package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"pinnaclepm/internal/utils"
	"pinnaclepm/internal/wizard"
	"pinnaclepm/pkg/types"
)

func (s *Service) handleCreateDraft(w http.ResponseWriter, r *http.Request) {
	draft := wizard.NewDraft(utils.NanoID())

	if err := s.drafts.SaveDraft(r.Context(), draft); err != nil {
		s.logger.WithError(err).Error("failed to create draft")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusCreated, map[string]any{
		"draftId":     draft.ID,
		"currentStep": draft.CurrentStep,
	})
}

func (s *Service) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	draftID := r.PathValue("draftID")

	draft, err := s.drafts.Draft(r.Context(), draftID)
	if err != nil {
		if errors.Is(err, types.ErrDraftNotFound) {
			s.respondError(w, http.StatusNotFound, "Draft not found")
			return
		}
		s.logger.WithError(err).Error("failed to fetch draft")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, draft)
}

// handlePostStep applies one wizard step's answers to the draft. The
// payment step travels with the final submission, so only steps 1-4 are
// accepted here.
func (s *Service) handlePostStep(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	draftID := r.PathValue("draftID")

	step, err := strconv.Atoi(r.PathValue("step"))
	if err != nil || step < wizard.StepContact || step >= wizard.StepPayment {
		s.respondError(w, http.StatusBadRequest, "Invalid step")
		return
	}

	draft, err := s.drafts.Draft(ctx, draftID)
	if err != nil {
		if errors.Is(err, types.ErrDraftNotFound) {
			s.respondError(w, http.StatusNotFound, "Draft not found")
			return
		}
		s.logger.WithError(err).Error("failed to fetch draft")
		s.internalServerError(w)
		return
	}

	if !wizard.CanEnter(draft, step) {
		s.respondError(w, http.StatusConflict, "Step not yet reachable")
		return
	}

	if err := r.ParseForm(); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	stepForm := wizard.FormFor(step)
	if err := decoder.Decode(stepForm, r.Form); err != nil {
		s.logger.WithError(err).Warn("failed to decode step form")
		s.respondError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	settings := s.currentSettings(ctx)
	rules := wizard.Rules{
		MinTourDate:    minimumTourDate(settings, time.Now()),
		PaymentMethods: settings.EnabledPaymentMethods(),
	}

	if fieldErrors := wizard.Advance(draft, step, stepForm, rules); fieldErrors != nil {
		s.respondFieldErrors(w, fieldErrors)
		return
	}

	if err := s.drafts.SaveDraft(ctx, draft); err != nil {
		s.logger.WithError(err).Error("failed to save draft")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"draftId":     draft.ID,
		"currentStep": draft.CurrentStep,
	})
}

func (s *Service) handleDeleteDraft(w http.ResponseWriter, r *http.Request) {
	draftID := r.PathValue("draftID")

	if err := s.drafts.DeleteDraft(r.Context(), draftID); err != nil {
		s.logger.WithError(err).Error("failed to delete draft")
		s.internalServerError(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
