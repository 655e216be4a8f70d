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
	ErrRegistrantNotFound = errors.New("registrant not found")
	// ErrStatusConflict reports that a state-changing update found the row in
	// a status that does not satisfy the transition's precondition.
	ErrStatusConflict = errors.New("registrant status conflict")
)

type RegistrantRepo struct {
	pool *pgxpool.Pool
}

type RegistrantFilter struct {
	AccountType    *enums.AccountType
	ApprovalStatus *enums.ApprovalStatus
	Search         string
}

func NewRegistrantRepo(pool *pgxpool.Pool) *RegistrantRepo {
	return &RegistrantRepo{pool: pool}
}

const registrantColumns = `
id,
given_name,
family_name,
email,
COALESCE(organization, ''),
COALESCE(phone, ''),
account_type,
approval_status,
profile_completion,
registered_at,
validated_at,
reminded_at,
rejection_reason,
rejection_comment,
COALESCE(documents, '{}'::text[])
`

func (r *RegistrantRepo) GetByID(ctx context.Context, id string) (model.Registrant, error) {
	if r.pool == nil {
		return model.Registrant{}, fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(id) == "" {
		return model.Registrant{}, fmt.Errorf("registrant id is required")
	}

	row := r.pool.QueryRow(ctx, `
SELECT `+registrantColumns+`
FROM registrants
WHERE id = $1
`, id)

	registrant, err := scanRegistrant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Registrant{}, ErrRegistrantNotFound
		}
		return model.Registrant{}, fmt.Errorf("get registrant: %w", err)
	}

	return registrant, nil
}

// List returns one page of registrants matching the filter plus the total
// match count. Pages are ordered oldest-first so the validation queue is
// worked in arrival order.
func (r *RegistrantRepo) List(ctx context.Context, filter RegistrantFilter, page, perPage int) ([]model.Registrant, int, error) {
	if r.pool == nil {
		return nil, 0, fmt.Errorf("postgres pool is nil")
	}
	if page <= 0 || perPage <= 0 {
		return nil, 0, fmt.Errorf("invalid pagination: page=%d per_page=%d", page, perPage)
	}

	where, args := buildRegistrantPredicates(filter)

	var total int
	countQuery := "SELECT COUNT(*) FROM registrants" + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count registrants: %w", err)
	}

	query := fmt.Sprintf(`
SELECT `+registrantColumns+`
FROM registrants%s
ORDER BY registered_at ASC, id ASC
LIMIT $%d OFFSET $%d
`, where, len(args)+1, len(args)+2)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list registrants: %w", err)
	}
	defer rows.Close()

	records, err := collectRegistrants(rows)
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// ListAll returns every registrant matching the type/status pair, unpaginated.
// Used by the export path only.
func (r *RegistrantRepo) ListAll(ctx context.Context, filter RegistrantFilter) ([]model.Registrant, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	where, args := buildRegistrantPredicates(filter)
	rows, err := r.pool.Query(ctx, `
SELECT `+registrantColumns+`
FROM registrants`+where+`
ORDER BY registered_at ASC, id ASC
`, args...)
	if err != nil {
		return nil, fmt.Errorf("list registrants for export: %w", err)
	}
	defer rows.Close()

	return collectRegistrants(rows)
}

// MarkValidated performs the pending -> validated transition. validated_at is
// written exactly once; a repeat call fails with ErrStatusConflict.
func (r *RegistrantRepo) MarkValidated(ctx context.Context, id string) error {
	return r.transition(ctx, id, `
UPDATE registrants
SET approval_status = 'validated',
    validated_at = NOW(),
    updated_at = NOW()
WHERE id = $1
  AND approval_status = 'pending'
`)
}

func (r *RegistrantRepo) MarkRejected(ctx context.Context, id string, reason enums.RejectionReason, comment string) error {
	if strings.TrimSpace(string(reason)) == "" {
		return fmt.Errorf("rejection reason is required")
	}

	return r.transitionArgs(ctx, id, `
UPDATE registrants
SET approval_status = 'rejected',
    rejection_reason = $2,
    rejection_comment = NULLIF($3, ''),
    updated_at = NOW()
WHERE id = $1
  AND approval_status = 'pending'
`, string(reason), strings.TrimSpace(comment))
}

func (r *RegistrantRepo) MarkDeactivated(ctx context.Context, id string) error {
	return r.transition(ctx, id, `
UPDATE registrants
SET approval_status = 'deactivated',
    updated_at = NOW()
WHERE id = $1
  AND approval_status = 'validated'
`)
}

// TouchReminded stamps the last completion-reminder time. Reminders are only
// meaningful while the registrant is still pending.
func (r *RegistrantRepo) TouchReminded(ctx context.Context, id string) error {
	return r.transition(ctx, id, `
UPDATE registrants
SET reminded_at = NOW(),
    updated_at = NOW()
WHERE id = $1
  AND approval_status = 'pending'
`)
}

func (r *RegistrantRepo) CountPending(ctx context.Context) (int, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var count int
	if err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM registrants
WHERE approval_status = 'pending'
`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count pending registrants: %w", err)
	}

	return count, nil
}

func (r *RegistrantRepo) CountByApprovalStatus(ctx context.Context) (map[enums.ApprovalStatus]int, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT approval_status, COUNT(*)
FROM registrants
GROUP BY approval_status
`)
	if err != nil {
		return nil, fmt.Errorf("count registrants by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[enums.ApprovalStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[enums.ApprovalStatus(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status counts: %w", err)
	}

	return counts, nil
}

func (r *RegistrantRepo) CountByAccountType(ctx context.Context) (map[enums.AccountType]int, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT account_type, COUNT(*)
FROM registrants
GROUP BY account_type
`)
	if err != nil {
		return nil, fmt.Errorf("count registrants by type: %w", err)
	}
	defer rows.Close()

	counts := make(map[enums.AccountType]int)
	for rows.Next() {
		var accountType string
		var count int
		if err := rows.Scan(&accountType, &count); err != nil {
			return nil, fmt.Errorf("scan type count: %w", err)
		}
		counts[enums.AccountType(accountType)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate type counts: %w", err)
	}

	return counts, nil
}

// ListPendingForReminder returns pending registrants that registered before
// registeredBefore and were last reminded before remindedBefore (or never).
func (r *RegistrantRepo) ListPendingForReminder(ctx context.Context, registeredBefore, remindedBefore time.Time, limit int) ([]model.Registrant, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+registrantColumns+`
FROM registrants
WHERE approval_status = 'pending'
  AND registered_at < $1
  AND (reminded_at IS NULL OR reminded_at < $2)
ORDER BY registered_at ASC, id ASC
LIMIT $3
`, registeredBefore, remindedBefore, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending registrants for reminder: %w", err)
	}
	defer rows.Close()

	return collectRegistrants(rows)
}

func (r *RegistrantRepo) transition(ctx context.Context, id, query string) error {
	return r.transitionArgs(ctx, id, query)
}

// transitionArgs runs a conditional status update and classifies a zero-row
// result as not-found or status-conflict inside one transaction, so the
// classification cannot race a concurrent transition.
func (r *RegistrantRepo) transitionArgs(ctx context.Context, id, query string, extra ...any) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("registrant id is required")
	}

	args := append([]any{id}, extra...)
	return WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("update registrant status: %w", err)
		}
		if tag.RowsAffected() > 0 {
			return nil
		}

		var current string
		err = tx.QueryRow(ctx, `
SELECT approval_status
FROM registrants
WHERE id = $1
`, id).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrRegistrantNotFound
			}
			return fmt.Errorf("read registrant status: %w", err)
		}

		return fmt.Errorf("%w: current status %q", ErrStatusConflict, current)
	})
}

func buildRegistrantPredicates(filter RegistrantFilter) (string, []any) {
	var conditions []string
	var args []any

	if filter.AccountType != nil {
		args = append(args, string(*filter.AccountType))
		conditions = append(conditions, fmt.Sprintf("account_type = $%d", len(args)))
	}
	if filter.ApprovalStatus != nil {
		args = append(args, string(*filter.ApprovalStatus))
		conditions = append(conditions, fmt.Sprintf("approval_status = $%d", len(args)))
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		args = append(args, "%"+strings.ToLower(term)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(LOWER(given_name) LIKE $%d OR LOWER(family_name) LIKE $%d OR LOWER(email) LIKE $%d OR LOWER(COALESCE(organization, '')) LIKE $%d)",
			n, n, n, n,
		))
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return "\nWHERE " + strings.Join(conditions, "\n  AND "), args
}

func collectRegistrants(rows pgx.Rows) ([]model.Registrant, error) {
	records := make([]model.Registrant, 0)
	for rows.Next() {
		registrant, err := scanRegistrant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registrant: %w", err)
		}
		records = append(records, registrant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registrants: %w", err)
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegistrant(row rowScanner) (model.Registrant, error) {
	var (
		registrant      model.Registrant
		accountType     string
		approvalStatus  string
		validatedAt     *time.Time
		remindedAt      *time.Time
		rejectionReason *string
	)

	err := row.Scan(
		&registrant.ID,
		&registrant.GivenName,
		&registrant.FamilyName,
		&registrant.Email,
		&registrant.Organization,
		&registrant.Phone,
		&accountType,
		&approvalStatus,
		&registrant.ProfileCompletionPercent,
		&registrant.RegisteredAt,
		&validatedAt,
		&remindedAt,
		&rejectionReason,
		&registrant.RejectionComment,
		&registrant.AttachedDocuments,
	)
	if err != nil {
		return model.Registrant{}, err
	}

	registrant.AccountType = enums.AccountType(accountType)
	registrant.ApprovalStatus = enums.ApprovalStatus(approvalStatus)
	if validatedAt != nil {
		utc := validatedAt.UTC()
		registrant.ValidatedAt = &utc
	}
	if remindedAt != nil {
		utc := remindedAt.UTC()
		registrant.RemindedAt = &utc
	}
	if rejectionReason != nil {
		reason := enums.RejectionReason(*rejectionReason)
		registrant.RejectionReason = &reason
	}
	registrant.RegisteredAt = registrant.RegisteredAt.UTC()

	return registrant, nil
}
