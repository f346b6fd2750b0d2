package server

import (
	"context"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"pinnaclepm/internal/notify"
	"pinnaclepm/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/sirupsen/logrus"
)

//go:embed templates static
var uiFS embed.FS
var decoder = form.NewDecoder()

// SettingsStore reads and writes the operator settings document.
type SettingsStore interface {
	Settings(ctx context.Context) (types.Settings, error)
	SaveSettings(ctx context.Context, settings types.Settings) error
}

// DraftStore persists in-progress applications between wizard steps.
type DraftStore interface {
	Draft(ctx context.Context, draftID string) (*types.Draft, error)
	SaveDraft(ctx context.Context, draft *types.Draft) error
	DeleteDraft(ctx context.Context, draftID string) error
}

// AdminStore authenticates and maintains the operator account.
type AdminStore interface {
	Authenticate(ctx context.Context, email, password string) (*types.AdminUser, error)
	UpdateCredentials(ctx context.Context, adminID, email, password string) error
}

// ApplicationStore reads submitted-application records for the operator's
// review pages.
type ApplicationStore interface {
	LatestApplications(ctx context.Context, limit uint64) ([]*types.Application, error)
	ApplicationByConfirmationCode(ctx context.Context, code string) (*types.Application, error)
}

// Submitter turns a complete draft into the outbound notifications.
type Submitter interface {
	Submit(ctx context.Context, draft *types.Draft, settings types.Settings) (*notify.Result, error)
}

type Service struct {
	logger    *logrus.Logger
	config    *types.Config
	templates *template.Template

	settings     SettingsStore
	drafts       DraftStore
	admins       AdminStore
	applications ApplicationStore
	pipeline     Submitter

	cookie *securecookie.SecureCookie

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	settings SettingsStore,
	drafts DraftStore,
	admins AdminStore,
	applications ApplicationStore,
	pipeline Submitter,
) (*Service, error) {
	mux := flow.New()

	hashKey, err := base64.StdEncoding.DecodeString(config.CookieHashKey)
	if err != nil {
		return nil, fmt.Errorf("decode cookie hash key: %w", err)
	}
	blockKey, err := base64.StdEncoding.DecodeString(config.CookieBlockKey)
	if err != nil {
		return nil, fmt.Errorf("decode cookie block key: %w", err)
	}

	s := &Service{
		logger: logger,
		config: config,
		cookie: securecookie.New(hashKey, blockKey),

		settings:     settings,
		drafts:       drafts,
		admins:       admins,
		applications: applications,
		pipeline:     pipeline,

		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	s.templates = templates

	s.buildRouter(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/", s.handleHome, http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	r.HandleFunc("/api/settings", s.handleGetPublicSettings, http.MethodGet)

	r.HandleFunc("/api/apply/draft", s.handleCreateDraft, http.MethodPost)
	r.HandleFunc("/api/apply/draft/:draftID", s.handleGetDraft, http.MethodGet)
	r.HandleFunc("/api/apply/draft/:draftID", s.handleDeleteDraft, http.MethodDelete)
	r.HandleFunc("/api/apply/draft/:draftID/step/:step", s.handlePostStep, http.MethodPost)

	r.HandleFunc("/api/applications", s.handleSubmitApplication, http.MethodPost)

	r.HandleFunc("/api/admin/login", s.handleAdminLogin, http.MethodPost)
	r.HandleFunc("/api/admin/logout", s.handleAdminLogout, http.MethodPost)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAdmin)

		r.HandleFunc("/api/admin/settings", s.handleAdminGetSettings, http.MethodGet)
		r.HandleFunc("/api/admin/settings", s.handleAdminPutSettings, http.MethodPut)
		r.HandleFunc("/api/admin/credentials", s.handleAdminUpdateCredentials, http.MethodPost)
		r.HandleFunc("/api/admin/applications", s.handleAdminListApplications, http.MethodGet)
		r.HandleFunc("/api/admin/applications/:code", s.handleAdminGetApplication, http.MethodGet)
	})

	staticRoot, err := fs.Sub(uiFS, "static")
	if err != nil {
		s.logger.WithError(err).Fatal("failed to mount static assets")
	}
	r.Handle("/static/...", http.StripPrefix("/static/", http.FileServer(http.FS(staticRoot))), http.MethodGet)
}

func loadTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"currency": func(v float64) string {
			if v == float64(int64(v)) {
				return fmt.Sprintf("$%d", int64(v))
			}
			return fmt.Sprintf("$%.2f", v)
		},
	}

	t := template.New("").Funcs(funcMap)
	err := fs.WalkDir(uiFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}

		data, err := fs.ReadFile(uiFS, path)
		if err != nil {
			return fmt.Errorf("read template %s: %w", path, err)
		}

		if _, err := t.Parse(string(data)); err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}

// currentSettings returns the stored settings, falling back to the defaults
// when the store is empty or unreachable. The application flow never blocks
// on configuration.
func (s *Service) currentSettings(ctx context.Context) types.Settings {
	settings, err := s.settings.Settings(ctx)
	if err != nil {
		if err != types.ErrSettingsNotFound {
			s.logger.WithError(err).Warn("failed to load settings, using defaults")
		}
		return types.DefaultSettings()
	}
	return settings
}
