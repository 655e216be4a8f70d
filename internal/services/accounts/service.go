package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harborexpo/backend/internal/domain/enums"
	"github.com/harborexpo/backend/internal/domain/model"
	"github.com/harborexpo/backend/internal/infra/mailer"
	pgrepo "github.com/harborexpo/backend/internal/repo/postgres"
)

const signedURLTTL = 10 * time.Minute

var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("registrant not found")
	ErrInvalidState      = errors.New("invalid status transition")
	ErrInvalidReasonCode = errors.New("invalid rejection reason code")
)

type RegistrantStore interface {
	GetByID(ctx context.Context, id string) (model.Registrant, error)
	List(ctx context.Context, filter pgrepo.RegistrantFilter, page, perPage int) ([]model.Registrant, int, error)
	ListAll(ctx context.Context, filter pgrepo.RegistrantFilter) ([]model.Registrant, error)
	MarkValidated(ctx context.Context, id string) error
	MarkRejected(ctx context.Context, id string, reason enums.RejectionReason, comment string) error
	MarkDeactivated(ctx context.Context, id string) error
	TouchReminded(ctx context.Context, id string) error
	CountPending(ctx context.Context) (int, error)
}

type URLSigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type ListQuery struct {
	Page        int
	PerPage     int
	AccountType string
	Status      string
	Search      string
}

type Page struct {
	Records    []model.Registrant
	Total      int
	TotalPages int
	Page       int
	PerPage    int
}

type Detail struct {
	model.Registrant
	DocumentURLs []string
}

type Service struct {
	registrants     RegistrantStore
	signer          URLSigner
	notifier        mailer.Sender
	defaultPageSize int
	maxPageSize     int
	now             func() time.Time
}

func NewService(registrants RegistrantStore, signer URLSigner, notifier mailer.Sender, defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize <= 0 {
		defaultPageSize = 20
	}
	if maxPageSize <= 0 {
		maxPageSize = 100
	}

	return &Service{
		registrants:     registrants,
		signer:          signer,
		notifier:        notifier,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
		now:             time.Now,
	}
}

// ListPending returns the validation queue page: pending registrants only,
// oldest first.
func (s *Service) ListPending(ctx context.Context, page, perPage int) (Page, error) {
	status := enums.ApprovalStatusPending
	return s.list(ctx, pgrepo.RegistrantFilter{ApprovalStatus: &status}, page, perPage)
}

func (s *Service) List(ctx context.Context, q ListQuery) (Page, error) {
	filter, err := buildFilter(q.AccountType, q.Status)
	if err != nil {
		return Page{}, err
	}
	filter.Search = strings.TrimSpace(q.Search)

	return s.list(ctx, filter, q.Page, q.PerPage)
}

func (s *Service) Get(ctx context.Context, id string) (Detail, error) {
	if s.registrants == nil {
		return Detail{}, fmt.Errorf("registrant store is not configured")
	}
	if strings.TrimSpace(id) == "" {
		return Detail{}, ErrValidation
	}

	registrant, err := s.registrants.GetByID(ctx, id)
	if err != nil {
		return Detail{}, mapStoreError(err)
	}

	detail := Detail{Registrant: registrant}
	for _, key := range registrant.AttachedDocuments {
		url, signErr := s.signKey(ctx, key)
		if signErr != nil {
			return Detail{}, signErr
		}
		if url != "" {
			detail.DocumentURLs = append(detail.DocumentURLs, url)
		}
	}

	return detail, nil
}

// Validate moves a pending registrant to validated and emails the welcome
// notice. The transition is applied exactly once; callers hitting a registrant
// that already left pending get ErrInvalidState.
func (s *Service) Validate(ctx context.Context, id string) (model.Registrant, error) {
	if s.registrants == nil {
		return model.Registrant{}, fmt.Errorf("registrant store is not configured")
	}
	if strings.TrimSpace(id) == "" {
		return model.Registrant{}, ErrValidation
	}

	if err := s.registrants.MarkValidated(ctx, id); err != nil {
		return model.Registrant{}, mapStoreError(err)
	}

	registrant, err := s.registrants.GetByID(ctx, id)
	if err != nil {
		return model.Registrant{}, mapStoreError(err)
	}

	s.notify(ctx, registrant,
		"Your account has been approved",
		fmt.Sprintf("Hello %s,\n\nYour %s account has been approved. You can now sign in and complete your event preparation.\n", registrant.FullName(), registrant.AccountType),
	)

	return registrant, nil
}

// Reject moves a pending registrant to rejected. The reason code must belong
// to the fixed reject reason set; the optional comment is stored alongside and
// appended to the notification mail.
func (s *Service) Reject(ctx context.Context, id, reasonCode, comment string) (model.Registrant, error) {
	if s.registrants == nil {
		return model.Registrant{}, fmt.Errorf("registrant store is not configured")
	}
	if strings.TrimSpace(id) == "" {
		return model.Registrant{}, ErrValidation
	}

	reason, ok := enums.ParseRejectionReason(strings.TrimSpace(reasonCode))
	if !ok {
		return model.Registrant{}, ErrInvalidReasonCode
	}

	if err := s.registrants.MarkRejected(ctx, id, reason, comment); err != nil {
		return model.Registrant{}, mapStoreError(err)
	}

	registrant, err := s.registrants.GetByID(ctx, id)
	if err != nil {
		return model.Registrant{}, mapStoreError(err)
	}

	template := rejectReasonTemplates[reason]
	body := fmt.Sprintf("Hello %s,\n\nYour registration could not be approved.\n\nReason: %s\nNext step: %s\n",
		registrant.FullName(), template.ReasonText, template.RequiredFixStep)
	if trimmed := strings.TrimSpace(comment); trimmed != "" {
		body += "\nReviewer note: " + trimmed + "\n"
	}
	s.notify(ctx, registrant, "Your registration was not approved", body)

	return registrant, nil
}

// Remind re-sends the profile completion notice to a pending registrant. The
// approval status is not touched; only reminded_at moves.
func (s *Service) Remind(ctx context.Context, id string) (model.Registrant, error) {
	if s.registrants == nil {
		return model.Registrant{}, fmt.Errorf("registrant store is not configured")
	}
	if strings.TrimSpace(id) == "" {
		return model.Registrant{}, ErrValidation
	}

	if err := s.registrants.TouchReminded(ctx, id); err != nil {
		return model.Registrant{}, mapStoreError(err)
	}

	registrant, err := s.registrants.GetByID(ctx, id)
	if err != nil {
		return model.Registrant{}, mapStoreError(err)
	}

	s.notify(ctx, registrant,
		"Reminder: complete your registration",
		fmt.Sprintf("Hello %s,\n\nYour registration is still under review. Your profile is %d%% complete; finishing it speeds up validation.\n",
			registrant.FullName(), registrant.ProfileCompletionPercent),
	)

	return registrant, nil
}

// Deactivate disables a previously validated account.
func (s *Service) Deactivate(ctx context.Context, id string) (model.Registrant, error) {
	if s.registrants == nil {
		return model.Registrant{}, fmt.Errorf("registrant store is not configured")
	}
	if strings.TrimSpace(id) == "" {
		return model.Registrant{}, ErrValidation
	}

	if err := s.registrants.MarkDeactivated(ctx, id); err != nil {
		return model.Registrant{}, mapStoreError(err)
	}

	registrant, err := s.registrants.GetByID(ctx, id)
	if err != nil {
		return model.Registrant{}, mapStoreError(err)
	}

	s.notify(ctx, registrant,
		"Your account has been deactivated",
		fmt.Sprintf("Hello %s,\n\nYour account has been deactivated by an administrator. Contact the event office if you believe this is a mistake.\n", registrant.FullName()),
	)

	return registrant, nil
}

func (s *Service) CountPending(ctx context.Context) (int, error) {
	if s.registrants == nil {
		return 0, fmt.Errorf("registrant store is not configured")
	}
	return s.registrants.CountPending(ctx)
}

func (s *Service) list(ctx context.Context, filter pgrepo.RegistrantFilter, page, perPage int) (Page, error) {
	if s.registrants == nil {
		return Page{}, fmt.Errorf("registrant store is not configured")
	}

	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = s.defaultPageSize
	}
	if perPage > s.maxPageSize {
		perPage = s.maxPageSize
	}

	records, total, err := s.registrants.List(ctx, filter, page, perPage)
	if err != nil {
		return Page{}, mapStoreError(err)
	}

	return Page{
		Records:    records,
		Total:      total,
		TotalPages: totalPages(total, perPage),
		Page:       page,
		PerPage:    perPage,
	}, nil
}

func (s *Service) signKey(ctx context.Context, key string) (string, error) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return "", nil
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return trimmed, nil
	}
	if s.signer == nil {
		return "", nil
	}
	url, err := s.signer.PresignGet(ctx, trimmed, signedURLTTL)
	if err != nil {
		return "", fmt.Errorf("sign document key: %w", err)
	}
	return url, nil
}

// notify sends a workflow email. Delivery failures are already logged by the
// sender and never fail the transition that triggered them.
func (s *Service) notify(ctx context.Context, registrant model.Registrant, subject, body string) {
	if s.notifier == nil {
		return
	}
	_ = s.notifier.Send(ctx, registrant.Email, subject, body)
}

func buildFilter(accountType, status string) (pgrepo.RegistrantFilter, error) {
	var filter pgrepo.RegistrantFilter

	if trimmed := strings.TrimSpace(accountType); trimmed != "" {
		parsed, ok := enums.ParseAccountType(trimmed)
		if !ok {
			return pgrepo.RegistrantFilter{}, fmt.Errorf("%w: unknown account type %q", ErrValidation, trimmed)
		}
		filter.AccountType = &parsed
	}
	if trimmed := strings.TrimSpace(status); trimmed != "" {
		parsed, ok := enums.ParseApprovalStatus(trimmed)
		if !ok {
			return pgrepo.RegistrantFilter{}, fmt.Errorf("%w: unknown approval status %q", ErrValidation, trimmed)
		}
		filter.ApprovalStatus = &parsed
	}

	return filter, nil
}

func totalPages(total, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, pgrepo.ErrRegistrantNotFound):
		return ErrNotFound
	case errors.Is(err, pgrepo.ErrStatusConflict):
		return fmt.Errorf("%w: %s", ErrInvalidState, err)
	default:
		return err
	}
}
