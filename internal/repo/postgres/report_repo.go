package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/harborexpo/backend/internal/domain/enums"
	"github.com/harborexpo/backend/internal/domain/model"
)

var (
	ErrReportNotFound = errors.New("report not found")
	// ErrReportResolved reports that a resolve hit a report that is no longer
	// open. The recorded resolution_action is left untouched.
	ErrReportResolved = errors.New("report already resolved")
)

type ReportRepo struct {
	pool *pgxpool.Pool
}

func NewReportRepo(pool *pgxpool.Pool) *ReportRepo {
	return &ReportRepo{pool: pool}
}

const reportColumns = `
rp.id,
rp.reported_user_id,
COALESCE(rg.given_name, ''),
COALESCE(rg.family_name, ''),
COALESCE(rg.email, ''),
rp.reason,
COALESCE(rp.description, ''),
rp.submitted_at,
rp.status,
rp.resolution_action,
rp.resolved_at
`

func (r *ReportRepo) GetByID(ctx context.Context, id string) (model.Report, error) {
	if r.pool == nil {
		return model.Report{}, fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(id) == "" {
		return model.Report{}, fmt.Errorf("report id is required")
	}

	row := r.pool.QueryRow(ctx, `
SELECT `+reportColumns+`
FROM reports rp
LEFT JOIN registrants rg ON rg.id = rp.reported_user_id
WHERE rp.id = $1
`, id)

	report, err := scanReport(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Report{}, ErrReportNotFound
		}
		return model.Report{}, fmt.Errorf("get report: %w", err)
	}

	return report, nil
}

// List returns one page of reports plus the total count. Open reports come
// first (oldest first), resolved ones after (newest resolution first).
func (r *ReportRepo) List(ctx context.Context, page, perPage int) ([]model.Report, int, error) {
	if r.pool == nil {
		return nil, 0, fmt.Errorf("postgres pool is nil")
	}
	if page <= 0 || perPage <= 0 {
		return nil, 0, fmt.Errorf("invalid pagination: page=%d per_page=%d", page, perPage)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM reports`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reports: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+reportColumns+`
FROM reports rp
LEFT JOIN registrants rg ON rg.id = rp.reported_user_id
ORDER BY (rp.status = 'open') DESC,
         CASE WHEN rp.status = 'open' THEN rp.submitted_at END ASC,
         rp.resolved_at DESC,
         rp.id ASC
LIMIT $1 OFFSET $2
`, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	records := make([]model.Report, 0)
	for rows.Next() {
		report, scanErr := scanReport(rows)
		if scanErr != nil {
			return nil, 0, fmt.Errorf("scan report: %w", scanErr)
		}
		records = append(records, report)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate reports: %w", err)
	}

	return records, total, nil
}

// MarkResolved applies a resolution exactly once. The UPDATE is conditional on
// status='open'; a second resolve is classified inside the same transaction.
func (r *ReportRepo) MarkResolved(ctx context.Context, id string, action enums.ResolutionAction) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("report id is required")
	}
	if strings.TrimSpace(string(action)) == "" {
		return fmt.Errorf("resolution action is required")
	}

	return WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
UPDATE reports
SET status = 'resolved',
    resolution_action = $2,
    resolved_at = NOW(),
    updated_at = NOW()
WHERE id = $1
  AND status = 'open'
`, id, string(action))
		if err != nil {
			return fmt.Errorf("resolve report: %w", err)
		}
		if tag.RowsAffected() > 0 {
			return nil
		}

		var status string
		err = tx.QueryRow(ctx, `
SELECT status
FROM reports
WHERE id = $1
`, id).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrReportNotFound
			}
			return fmt.Errorf("read report status: %w", err)
		}

		return ErrReportResolved
	})
}

func (r *ReportRepo) CountOpen(ctx context.Context) (int, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var count int
	if err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM reports
WHERE status = 'open'
`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count open reports: %w", err)
	}

	return count, nil
}

func scanReport(row rowScanner) (model.Report, error) {
	var (
		report           model.Report
		status           string
		resolutionAction *string
		resolvedAt       *time.Time
	)

	err := row.Scan(
		&report.ID,
		&report.ReportedUser.ID,
		&report.ReportedUser.GivenName,
		&report.ReportedUser.FamilyName,
		&report.ReportedUser.Email,
		&report.Reason,
		&report.Description,
		&report.SubmittedAt,
		&status,
		&resolutionAction,
		&resolvedAt,
	)
	if err != nil {
		return model.Report{}, err
	}

	report.Status = enums.ReportStatus(status)
	if resolutionAction != nil {
		action := enums.ResolutionAction(*resolutionAction)
		report.ResolutionAction = &action
	}
	if resolvedAt != nil {
		utc := resolvedAt.UTC()
		report.ResolvedAt = &utc
	}
	report.SubmittedAt = report.SubmittedAt.UTC()

	return report, nil
}
