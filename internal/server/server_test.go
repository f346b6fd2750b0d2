package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"pinnaclepm/internal/notify"
	"pinnaclepm/internal/wizard"
	"pinnaclepm/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSettingsStore struct {
	stored *types.Settings
	err    error
	saved  []types.Settings
}

func (f *fakeSettingsStore) Settings(context.Context) (types.Settings, error) {
	if f.err != nil {
		return types.Settings{}, f.err
	}
	if f.stored == nil {
		return types.Settings{}, types.ErrSettingsNotFound
	}
	return *f.stored, nil
}

func (f *fakeSettingsStore) SaveSettings(_ context.Context, settings types.Settings) error {
	f.saved = append(f.saved, settings)
	f.stored = &settings
	return nil
}

type fakeDraftStore struct {
	drafts  map[string]*types.Draft
	saves   int
	deletes []string
}

func newFakeDraftStore() *fakeDraftStore {
	return &fakeDraftStore{drafts: map[string]*types.Draft{}}
}

func (f *fakeDraftStore) Draft(_ context.Context, draftID string) (*types.Draft, error) {
	d, ok := f.drafts[draftID]
	if !ok {
		return nil, types.ErrDraftNotFound
	}
	copied := *d
	return &copied, nil
}

func (f *fakeDraftStore) SaveDraft(_ context.Context, draft *types.Draft) error {
	copied := *draft
	f.drafts[draft.ID] = &copied
	f.saves++
	return nil
}

func (f *fakeDraftStore) DeleteDraft(_ context.Context, draftID string) error {
	delete(f.drafts, draftID)
	f.deletes = append(f.deletes, draftID)
	return nil
}

type credentialUpdate struct {
	adminID  string
	email    string
	password string
}

type fakeAdminStore struct {
	admin    types.AdminUser
	password string
	updated  *credentialUpdate
}

func (f *fakeAdminStore) Authenticate(_ context.Context, email, password string) (*types.AdminUser, error) {
	if !strings.EqualFold(email, f.admin.Email) || password != f.password {
		return nil, types.ErrInvalidCredentials
	}
	admin := f.admin
	return &admin, nil
}

func (f *fakeAdminStore) UpdateCredentials(_ context.Context, adminID, email, password string) error {
	f.updated = &credentialUpdate{adminID: adminID, email: email, password: password}
	return nil
}

type fakeApplicationStore struct {
	apps     []types.Application
	gotLimit uint64
}

func (f *fakeApplicationStore) LatestApplications(_ context.Context, limit uint64) ([]*types.Application, error) {
	f.gotLimit = limit
	apps := make([]*types.Application, len(f.apps))
	for i := range f.apps {
		apps[i] = &f.apps[i]
	}
	return apps, nil
}

func (f *fakeApplicationStore) ApplicationByConfirmationCode(_ context.Context, code string) (*types.Application, error) {
	for i := range f.apps {
		if f.apps[i].ConfirmationCode == code {
			app := f.apps[i]
			return &app, nil
		}
	}
	return nil, types.ErrApplicationNotFound
}

type fakeSubmitter struct {
	result *notify.Result
	err    error
	got    *types.Draft
}

func (f *fakeSubmitter) Submit(_ context.Context, draft *types.Draft, _ types.Settings) (*notify.Result, error) {
	f.got = draft
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type testEnv struct {
	service      *Service
	settings     *fakeSettingsStore
	drafts       *fakeDraftStore
	admins       *fakeAdminStore
	applications *fakeApplicationStore
	pipeline     *fakeSubmitter
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	key := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0x2a}, 32))
	config := &types.Config{
		Environment:       "test",
		ServerPort:        0,
		SessionCookieName: "admin_session",
		SessionMaxAgeSec:  3600,
		CookieHashKey:     key,
		CookieBlockKey:    key,
	}

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	env := &testEnv{
		settings: &fakeSettingsStore{},
		drafts:   newFakeDraftStore(),
		admins: &fakeAdminStore{
			admin:    types.AdminUser{ID: "admin-1", Email: "admin@example.com"},
			password: "hunter22",
		},
		applications: &fakeApplicationStore{},
		pipeline: &fakeSubmitter{
			result: &notify.Result{
				ConfirmationCode:   "12345678",
				OperatorMessageID:  "op-1",
				ApplicantMessageID: "ap-1",
			},
		},
	}

	service, err := New(config, logger, env.settings, env.drafts, env.admins, env.applications, env.pipeline)
	require.NoError(t, err)
	env.service = service

	return env
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.service.server.Handler.ServeHTTP(rec, req)
	return rec
}

func jsonReq(method, target string, payload any) *http.Request {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func formReq(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestPublicSettings_DefaultsWhenStoreEmpty(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/settings", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Contains(t, body["tourDateNote"], "September 15th")
	assert.Equal(t, float64(99), body["applicationFee"])
	assert.Equal(t, float64(75), body["refundAmount"])

	// "expires on" means the day after is the first valid tour date, in
	// the current year.
	wantMin := fmt.Sprintf("%d-09-16", time.Now().Year())
	assert.Equal(t, wantMin, body["minimumTourDate"])

	methods, ok := body["paymentMethods"].([]any)
	require.True(t, ok)
	assert.Len(t, methods, 2)
}

func TestPublicSettings_DescriptionDrivesMinimumTourDate(t *testing.T) {
	env := newTestEnv(t)

	stored := types.DefaultSettings()
	stored.TourDateNote = "Please schedule a tour soon."
	stored.TourDateDescription = "The current tenant's lease expires before March 3rd. Tours start after that."
	env.settings.stored = &stored

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/settings", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	// The description names the cutoff, so the note's tomorrow fallback
	// must not apply.
	wantMin := fmt.Sprintf("%d-03-03", time.Now().Year())
	assert.Equal(t, wantMin, decodeBody(t, rec)["minimumTourDate"])
}

func TestPublicSettings_NoteFallbackWhenDescriptionSilent(t *testing.T) {
	env := newTestEnv(t)

	stored := types.DefaultSettings()
	stored.TourDateNote = "Note: The current tenant's lease expires before July 10th."
	stored.TourDateDescription = "Schedule a tour at your convenience."
	env.settings.stored = &stored

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/settings", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	wantMin := fmt.Sprintf("%d-07-10", time.Now().Year())
	assert.Equal(t, wantMin, decodeBody(t, rec)["minimumTourDate"])
}

func TestNew_RejectsMalformedCookieKeys(t *testing.T) {
	config := &types.Config{
		Environment:       "test",
		SessionCookieName: "admin_session",
		CookieHashKey:     "%%% not base64 %%%",
		CookieBlockKey:    base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0x2a}, 32)),
	}

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	_, err := New(config, logger, &fakeSettingsStore{}, newFakeDraftStore(), &fakeAdminStore{}, &fakeApplicationStore{}, &fakeSubmitter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cookie hash key")
}

func TestCreateAndFetchDraft(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodPost, "/api/apply/draft", nil))
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	draftID, _ := body["draftId"].(string)
	require.NotEmpty(t, draftID)
	assert.Equal(t, float64(wizard.StepContact), body["currentStep"])

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/apply/draft/"+draftID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, draftID, decodeBody(t, rec)["draftId"])
}

func TestGetDraft_NotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/apply/draft/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Draft not found", decodeBody(t, rec)["message"])
}

func contactValues() url.Values {
	return url.Values{
		"fullName":       {"Jane Applicant"},
		"email":          {"jane@example.com"},
		"phoneNumber":    {"555-0100"},
		"currentAddress": {"12 Elm Street, Springfield"},
	}
}

func TestPostStep_AdvancesAndPersists(t *testing.T) {
	env := newTestEnv(t)
	env.drafts.drafts["d1"] = wizard.NewDraft("d1")

	rec := env.do(formReq("/api/apply/draft/d1/step/1", contactValues()))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(wizard.StepFinancial), decodeBody(t, rec)["currentStep"])

	saved := env.drafts.drafts["d1"]
	assert.Equal(t, "Jane Applicant", saved.FullName)
	assert.Equal(t, wizard.StepFinancial, saved.CurrentStep)
}

func TestPostStep_ValidationFailureNotPersisted(t *testing.T) {
	env := newTestEnv(t)
	env.drafts.drafts["d1"] = wizard.NewDraft("d1")

	values := contactValues()
	values.Set("email", "not-an-email")

	rec := env.do(formReq("/api/apply/draft/d1/step/1", values))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	body := decodeBody(t, rec)
	errs, ok := body["errors"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, errs, "email")

	assert.Zero(t, env.drafts.saves, "a failed step leaves the stored draft untouched")
	assert.Equal(t, wizard.StepContact, env.drafts.drafts["d1"].CurrentStep)
}

func TestPostStep_SkipAheadRejected(t *testing.T) {
	env := newTestEnv(t)
	env.drafts.drafts["d1"] = wizard.NewDraft("d1")

	rec := env.do(formReq("/api/apply/draft/d1/step/3", url.Values{}))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPostStep_PaymentStepNotAccepted(t *testing.T) {
	env := newTestEnv(t)
	env.drafts.drafts["d1"] = wizard.NewDraft("d1")

	rec := env.do(formReq("/api/apply/draft/d1/step/5", url.Values{}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteDraft(t *testing.T) {
	env := newTestEnv(t)
	env.drafts.drafts["d1"] = wizard.NewDraft("d1")

	rec := env.do(httptest.NewRequest(http.MethodDelete, "/api/apply/draft/d1", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotContains(t, env.drafts.drafts, "d1")
}

func TestSubmitApplication_Success(t *testing.T) {
	env := newTestEnv(t)
	env.drafts.drafts["d1"] = wizard.NewDraft("d1")

	rec := env.do(jsonReq(http.MethodPost, "/api/applications", map[string]any{
		"draftId":  "d1",
		"fullName": "Jane Applicant",
	}))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "12345678", body["accessCode"])

	ids, ok := body["messageIds"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "op-1", ids["userApplication"])
	assert.Equal(t, "ap-1", ids["userConfirmation"])

	assert.Contains(t, env.drafts.deletes, "d1", "the draft is cleared after a successful submission")
	require.NotNil(t, env.pipeline.got)
	assert.Equal(t, "Jane Applicant", env.pipeline.got.FullName)
}

func TestSubmitApplication_DispatchFailureKeepsDraft(t *testing.T) {
	env := newTestEnv(t)
	env.drafts.drafts["d1"] = wizard.NewDraft("d1")
	env.pipeline.err = fmt.Errorf("%w: ses unavailable", notify.ErrDispatchFailed)

	rec := env.do(jsonReq(http.MethodPost, "/api/applications", map[string]any{"draftId": "d1"}))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Failed to submit application. Please try again.", body["message"])
	assert.NotEmpty(t, body["error"])

	assert.Empty(t, env.drafts.deletes, "the draft survives a failed submission")
}

func TestSubmitApplication_IncompleteRejected(t *testing.T) {
	env := newTestEnv(t)
	env.pipeline.err = &notify.SubmissionError{
		Step:   5,
		Fields: map[string]string{"paymentReceipt": "Payment receipt is required"},
	}

	rec := env.do(jsonReq(http.MethodPost, "/api/applications", map[string]any{}))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, float64(5), body["step"])
}

func (e *testEnv) loginCookie(t *testing.T) *http.Cookie {
	t.Helper()

	rec := e.do(jsonReq(http.MethodPost, "/api/admin/login", loginRequest{
		Email:    "admin@example.com",
		Password: "hunter22",
	}))
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0]
}

func TestAdminLogin_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(jsonReq(http.MethodPost, "/api/admin/login", loginRequest{
		Email:    "admin@example.com",
		Password: "wrong",
	}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", decodeBody(t, rec)["message"])
}

func TestAdminSettings_RequiresSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/admin/settings", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminSettings_PartialUpdateMerges(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.loginCookie(t)

	req := jsonReq(http.MethodPut, "/api/admin/settings", map[string]any{
		"zelleEnabled": false,
	})
	req.AddCookie(cookie)

	rec := env.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, env.settings.saved, 1)
	merged := env.settings.saved[0]
	assert.False(t, merged.ZelleEnabled)
	assert.True(t, merged.CashAppEnabled, "untouched fields keep their value")
	assert.Equal(t, float64(99), merged.PaymentInstructions.ApplicationFee)
}

func TestAdminCredentials_WrongCurrentPair(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.loginCookie(t)

	req := jsonReq(http.MethodPost, "/api/admin/credentials", updateCredentialsRequest{
		CurrentEmail:    "admin@example.com",
		CurrentPassword: "wrong",
		NewPassword:     "new-password",
	})
	req.AddCookie(cookie)

	rec := env.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Current credentials are incorrect", decodeBody(t, rec)["message"])
	assert.Nil(t, env.admins.updated)
}

func TestAdminCredentials_Update(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.loginCookie(t)

	req := jsonReq(http.MethodPost, "/api/admin/credentials", updateCredentialsRequest{
		CurrentEmail:    "admin@example.com",
		CurrentPassword: "hunter22",
		NewEmail:        "owner@example.com",
		NewPassword:     "correct-horse",
	})
	req.AddCookie(cookie)

	rec := env.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, env.admins.updated)
	assert.Equal(t, "admin-1", env.admins.updated.adminID)
	assert.Equal(t, "owner@example.com", env.admins.updated.email)
	assert.Equal(t, "correct-horse", env.admins.updated.password)
}

func TestAdminApplications_RequiresSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/admin/applications", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminListApplications(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.loginCookie(t)

	env.applications.apps = []types.Application{
		{ID: "app-2", ConfirmationCode: "22222222", FullName: "Second Applicant"},
		{ID: "app-1", ConfirmationCode: "11111111", FullName: "First Applicant"},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/applications", nil)
	req.AddCookie(cookie)

	rec := env.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(50), env.applications.gotLimit)

	var apps []types.Application
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apps))
	require.Len(t, apps, 2)
	assert.Equal(t, "22222222", apps[0].ConfirmationCode)
}

func TestAdminListApplications_InvalidLimit(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.loginCookie(t)

	for _, limit := range []string{"abc", "0", "-5"} {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/applications?limit="+limit, nil)
		req.AddCookie(cookie)

		rec := env.do(req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "limit=%s", limit)
	}
}

func TestAdminGetApplication(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.loginCookie(t)

	env.applications.apps = []types.Application{
		{ID: "app-1", ConfirmationCode: "11111111", FullName: "Jane Applicant"},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/applications/11111111", nil)
	req.AddCookie(cookie)

	rec := env.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Jane Applicant", decodeBody(t, rec)["fullName"])

	req = httptest.NewRequest(http.MethodGet, "/api/admin/applications/99999999", nil)
	req.AddCookie(cookie)

	rec = env.do(req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Application not found", decodeBody(t, rec)["message"])
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
