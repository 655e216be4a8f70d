package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/harborexpo/backend/internal/domain/enums"
	"github.com/harborexpo/backend/internal/domain/model"
	"github.com/harborexpo/backend/internal/infra/mailer"
	pgrepo "github.com/harborexpo/backend/internal/repo/postgres"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("report not found")
	ErrAlreadyResolved = errors.New("report already resolved")
	ErrInvalidAction   = errors.New("invalid resolution action")
)

type ReportStore interface {
	GetByID(ctx context.Context, id string) (model.Report, error)
	List(ctx context.Context, page, perPage int) ([]model.Report, int, error)
	MarkResolved(ctx context.Context, id string, action enums.ResolutionAction) error
	CountOpen(ctx context.Context) (int, error)
}

type Page struct {
	Records    []model.Report
	Total      int
	TotalPages int
	Page       int
	PerPage    int
}

type Service struct {
	reports         ReportStore
	notifier        mailer.Sender
	defaultPageSize int
	maxPageSize     int
}

func NewService(reports ReportStore, notifier mailer.Sender, defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize <= 0 {
		defaultPageSize = 20
	}
	if maxPageSize <= 0 {
		maxPageSize = 100
	}

	return &Service{
		reports:         reports,
		notifier:        notifier,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// List returns one page of the moderation queue. Open reports lead the list
// so the queue can be worked top to bottom.
func (s *Service) List(ctx context.Context, page, perPage int) (Page, error) {
	if s.reports == nil {
		return Page{}, fmt.Errorf("report store is not configured")
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

	records, total, err := s.reports.List(ctx, page, perPage)
	if err != nil {
		return Page{}, err
	}

	return Page{
		Records:    records,
		Total:      total,
		TotalPages: totalPages(total, perPage),
		Page:       page,
		PerPage:    perPage,
	}, nil
}

func (s *Service) Get(ctx context.Context, id string) (model.Report, error) {
	if s.reports == nil {
		return model.Report{}, fmt.Errorf("report store is not configured")
	}
	if strings.TrimSpace(id) == "" {
		return model.Report{}, ErrValidation
	}

	report, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return model.Report{}, mapStoreError(err)
	}
	return report, nil
}

// Resolve closes an open report with one of the fixed actions. A report is
// resolved exactly once; repeats fail with ErrAlreadyResolved and keep the
// first recorded action.
func (s *Service) Resolve(ctx context.Context, id, actionCode string) (model.Report, error) {
	if s.reports == nil {
		return model.Report{}, fmt.Errorf("report store is not configured")
	}
	if strings.TrimSpace(id) == "" {
		return model.Report{}, ErrValidation
	}

	action, ok := enums.ParseResolutionAction(strings.TrimSpace(actionCode))
	if !ok {
		return model.Report{}, ErrInvalidAction
	}

	if err := s.reports.MarkResolved(ctx, id, action); err != nil {
		return model.Report{}, mapStoreError(err)
	}

	report, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return model.Report{}, mapStoreError(err)
	}

	if action == enums.ResolutionActionUserWarned {
		s.warnReportedUser(ctx, report)
	}

	return report, nil
}

func (s *Service) CountOpen(ctx context.Context) (int, error) {
	if s.reports == nil {
		return 0, fmt.Errorf("report store is not configured")
	}
	return s.reports.CountOpen(ctx)
}

func (s *Service) warnReportedUser(ctx context.Context, report model.Report) {
	if s.notifier == nil {
		return
	}
	email := strings.TrimSpace(report.ReportedUser.Email)
	if email == "" {
		return
	}

	name := strings.TrimSpace(report.ReportedUser.GivenName + " " + report.ReportedUser.FamilyName)
	body := fmt.Sprintf("Hello %s,\n\nA moderator reviewed a report about your account (%s) and issued a formal warning. Repeated violations can lead to deactivation.\n",
		name, report.Reason)
	_ = s.notifier.Send(ctx, email, "Moderation warning", body)
}

func totalPages(total, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, pgrepo.ErrReportNotFound):
		return ErrNotFound
	case errors.Is(err, pgrepo.ErrReportResolved):
		return ErrAlreadyResolved
	default:
		return err
	}
}
