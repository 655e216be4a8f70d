package accounts

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

var exportHeader = []string{
	"id",
	"given_name",
	"family_name",
	"email",
	"organization",
	"phone",
	"account_type",
	"approval_status",
	"profile_completion_percent",
	"registered_at",
	"validated_at",
	"rejection_reason",
}

type ExportResult struct {
	Filename string
	Content  []byte
}

// Export renders every registrant matching the type/status pair as CSV. The
// export is intentionally unpaginated; it is the offline counterpart of the
// management list.
func (s *Service) Export(ctx context.Context, accountType, status string) (ExportResult, error) {
	if s.registrants == nil {
		return ExportResult{}, fmt.Errorf("registrant store is not configured")
	}

	filter, err := buildFilter(accountType, status)
	if err != nil {
		return ExportResult{}, err
	}

	records, err := s.registrants.ListAll(ctx, filter)
	if err != nil {
		return ExportResult{}, mapStoreError(err)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(exportHeader); err != nil {
		return ExportResult{}, fmt.Errorf("write export header: %w", err)
	}
	for _, registrant := range records {
		validatedAt := ""
		if registrant.ValidatedAt != nil {
			validatedAt = registrant.ValidatedAt.Format(time.RFC3339)
		}
		rejectionReason := ""
		if registrant.RejectionReason != nil {
			rejectionReason = string(*registrant.RejectionReason)
		}

		row := []string{
			registrant.ID,
			registrant.GivenName,
			registrant.FamilyName,
			registrant.Email,
			registrant.Organization,
			registrant.Phone,
			string(registrant.AccountType),
			string(registrant.ApprovalStatus),
			strconv.Itoa(registrant.ProfileCompletionPercent),
			registrant.RegisteredAt.Format(time.RFC3339),
			validatedAt,
			rejectionReason,
		}
		if err := writer.Write(row); err != nil {
			return ExportResult{}, fmt.Errorf("write export row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return ExportResult{}, fmt.Errorf("flush export: %w", err)
	}

	filename := fmt.Sprintf("registrants_%s_%s.csv", s.now().UTC().Format("20060102"), uuid.NewString()[:8])
	return ExportResult{Filename: filename, Content: buf.Bytes()}, nil
}
