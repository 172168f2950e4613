package translations

import (
	"context"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-translatable/internal/logging"
	"github.com/goliatone/go-translatable/internal/registry"
	"github.com/goliatone/go-translatable/pkg/interfaces"
)

const translateRequestCode = "TRANSLATE_REQUEST_INVALID"

// Service is the moderation-facing surface over the translation store.
type Service interface {
	// Translate finds or creates the entry for the request's owner attribute
	// and stores the translator and text. The last writer wins. Blank text is
	// a validation failure and never removes an existing entry.
	Translate(ctx context.Context, req TranslateRequest) (*Entry, error)
	Get(ctx context.Context, key Key) (*Entry, error)
	List(ctx context.Context, opts ListOptions) ([]*Entry, error)
	ListByOwner(ctx context.Context, owner Owner) ([]*Entry, error)
	DeleteByOwner(ctx context.Context, owner Owner) (int, error)
}

// AttributeLookup resolves translatable attribute declarations.
type AttributeLookup interface {
	Attribute(recordType, name string) (registry.Attribute, error)
}

// TranslateRequest carries one translator submission.
type TranslateRequest struct {
	TranslatorID uuid.UUID
	OwnerType    string
	OwnerID      uuid.UUID
	Attribute    string
	Text         string
}

// Validate checks the request payload.
func (r TranslateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OwnerType, validation.By(notBlank("owner_type"))),
		validation.Field(&r.OwnerID, validation.By(notNilUUID)),
		validation.Field(&r.Attribute, validation.By(notBlank("attribute_name"))),
		validation.Field(&r.Text, validation.By(notBlank("text"))),
	)
}

// ServiceOption configures the translation service.
type ServiceOption func(*service)

// WithRegistry rejects attributes the registry does not declare translatable.
func WithRegistry(lookup AttributeLookup) ServiceOption {
	return func(s *service) {
		if lookup != nil {
			s.registry = lookup
		}
	}
}

// WithLogger attaches a logger used for structured diagnostics.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type service struct {
	repo     Repository
	registry AttributeLookup
	logger   interfaces.Logger
}

// NewService constructs the translation service over repo.
func NewService(repo Repository, opts ...ServiceOption) Service {
	s := &service{
		repo:   repo,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Translate(ctx context.Context, req TranslateRequest) (*Entry, error) {
	req.OwnerType = strings.TrimSpace(req.OwnerType)
	req.Attribute = strings.TrimSpace(req.Attribute)
	logger := logging.WithRecord(s.baseLogger(ctx), req.OwnerType, req.OwnerID, req.Attribute)

	if err := req.Validate(); err != nil {
		logger.Warn("translations.translate.invalid", "error", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "translate request is invalid").
			WithTextCode(translateRequestCode)
	}
	if s.registry != nil {
		if _, err := s.registry.Attribute(req.OwnerType, req.Attribute); err != nil {
			logger.Warn("translations.translate.rejected", "error", err)
			return nil, fmt.Errorf("translations: translate: %w", err)
		}
	}

	entry := &Entry{
		OwnerType:     req.OwnerType,
		OwnerID:       req.OwnerID,
		AttributeName: req.Attribute,
		Text:          req.Text,
	}
	if req.TranslatorID != uuid.Nil {
		translator := req.TranslatorID
		entry.TranslatorID = &translator
	}

	stored, err := s.repo.Upsert(ctx, entry)
	if err != nil {
		logger.Error("translations.translate.failed", "error", err)
		return nil, err
	}
	logger.Debug("translations.translate.stored", "entry_id", stored.ID, "verified", stored.Verified())
	return stored, nil
}

func (s *service) Get(ctx context.Context, key Key) (*Entry, error) {
	return s.repo.GetByKey(ctx, key)
}

func (s *service) List(ctx context.Context, opts ListOptions) ([]*Entry, error) {
	return s.repo.List(ctx, opts)
}

func (s *service) ListByOwner(ctx context.Context, owner Owner) ([]*Entry, error) {
	return s.repo.ListByOwner(ctx, owner)
}

func (s *service) DeleteByOwner(ctx context.Context, owner Owner) (int, error) {
	removed, err := s.repo.DeleteByOwner(ctx, owner)
	if err != nil {
		logging.WithRecord(s.baseLogger(ctx), owner.Type, owner.ID, "").
			Error("translations.delete_owner.failed", "error", err)
		return 0, err
	}
	return removed, nil
}

func (s *service) baseLogger(ctx context.Context) interfaces.Logger {
	logger := logging.OrNoOp(s.logger)
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	return logger
}

// Verified lists entries signed off by a translator.
func Verified() ListOptions {
	v := true
	return ListOptions{Verified: &v}
}

// Unverified lists entries nobody has signed off yet.
func Unverified() ListOptions {
	v := false
	return ListOptions{Verified: &v}
}

// ForTranslator lists entries signed off by translator.
func ForTranslator(translator uuid.UUID) ListOptions {
	return ListOptions{TranslatorID: &translator}
}
