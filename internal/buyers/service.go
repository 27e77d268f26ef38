package buyers

import (
	"context"
	stdErrors "errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/leadfolio/leadfolio-backend/internal/auth"
	"github.com/leadfolio/leadfolio-backend/pkg/db/models"
	dbtypes "github.com/leadfolio/leadfolio-backend/pkg/db/types"
	"github.com/leadfolio/leadfolio-backend/pkg/enums"
	pkgerrors "github.com/leadfolio/leadfolio-backend/pkg/errors"
	"github.com/leadfolio/leadfolio-backend/pkg/pagination"
)

const (
	notOwnerMessage    = "you do not own this buyer"
	staleRecordMessage = "record changed, please refresh"
	detailHistoryLimit = 10
	defaultImportLimit = 200
)

// Service defines the behavior needed by the buyers controllers.
type Service interface {
	Create(ctx context.Context, actor auth.Principal, in Input) (*BuyerDTO, error)
	Update(ctx context.Context, actor auth.Principal, id uuid.UUID, in Input) (*BuyerDTO, error)
	Delete(ctx context.Context, actor auth.Principal, id uuid.UUID) error
	SetStatus(ctx context.Context, actor auth.Principal, id uuid.UUID, status string) error
	Get(ctx context.Context, id uuid.UUID) (*BuyerDetail, error)
	List(ctx context.Context, f Filters, page pagination.Params) (*ListResult, error)
	Import(ctx context.Context, actor auth.Principal, r io.Reader) (*ImportResult, error)
	Export(ctx context.Context, f Filters, w io.Writer) error
}

type repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Buyer, error)
	List(ctx context.Context, f Filters, offset, limit int) ([]models.Buyer, int64, error)
	ListAll(ctx context.Context, f Filters) ([]models.Buyer, error)
	CreateWithHistory(ctx context.Context, buyer *models.Buyer, diff dbtypes.JSONMap, changedByID string) (*models.Buyer, error)
	UpdateWithHistory(ctx context.Context, buyer *models.Buyer, diff dbtypes.JSONMap, changedByID string) (*models.Buyer, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.BuyerStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	InsertBatch(ctx context.Context, buyers []*models.Buyer) error
	ListHistory(ctx context.Context, buyerID uuid.UUID, limit int) ([]models.BuyerHistory, error)
}

type service struct {
	repo          repository
	importMaxRows int
}

// ServiceParams bundles the dependencies required to build a buyers service.
type ServiceParams struct {
	Repo          repository
	ImportMaxRows int
}

// NewService constructs a buyers service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("buyers repository is required")
	}
	maxRows := params.ImportMaxRows
	if maxRows <= 0 {
		maxRows = defaultImportLimit
	}
	return &service{
		repo:          params.Repo,
		importMaxRows: maxRows,
	}, nil
}

// Create validates the payload and persists a new lead owned by the actor,
// appending a creation-marker history entry in the same transaction.
func (s *service) Create(ctx context.Context, actor auth.Principal, in Input) (*BuyerDTO, error) {
	rec, issues := Validate(in)
	if issues != nil {
		return nil, validationError(issues)
	}

	buyer := rec.toModel()
	buyer.OwnerID = actor.ID

	created, err := s.repo.CreateWithHistory(ctx, buyer, CreationDiff(buyer), actor.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create buyer")
	}
	return FromModel(created), nil
}

// Update runs the full edit pipeline: validation, existence, ownership,
// concurrency-token comparison, diffing, and the transactional write plus
// history append.
func (s *service) Update(ctx context.Context, actor auth.Principal, id uuid.UUID, in Input) (*BuyerDTO, error) {
	rec, issues := Validate(in)
	if issues != nil {
		return nil, validationError(issues)
	}

	existing, err := s.findBuyer(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwnerOrAdmin(actor, existing); err != nil {
		return nil, err
	}
	if !tokenMatches(in.UpdatedAt, existing.UpdatedAt) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, staleRecordMessage)
	}

	diff := BuildDiff(existing, rec)
	rec.applyTo(existing)

	updated, err := s.repo.UpdateWithHistory(ctx, existing, diff, actor.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update buyer")
	}
	return FromModel(updated), nil
}

// Delete removes the lead. Its history entries remain untouched.
func (s *service) Delete(ctx context.Context, actor auth.Principal, id uuid.UUID) error {
	existing, err := s.findBuyer(ctx, id)
	if err != nil {
		return err
	}
	if err := requireOwnerOrAdmin(actor, existing); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete buyer")
	}
	return nil
}

// SetStatus moves the lead through the pipeline with a direct column write.
// No concurrency token, no history entry.
func (s *service) SetStatus(ctx context.Context, actor auth.Principal, id uuid.UUID, status string) error {
	parsed, err := enums.ParseBuyerStatus(status)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
	}

	existing, err := s.findBuyer(ctx, id)
	if err != nil {
		return err
	}
	if err := requireOwnerOrAdmin(actor, existing); err != nil {
		return err
	}
	if err := s.repo.UpdateStatus(ctx, id, parsed); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update status")
	}
	return nil
}

// Get returns the lead together with its most recent history entries.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*BuyerDetail, error) {
	buyer, err := s.findBuyer(ctx, id)
	if err != nil {
		return nil, err
	}
	entries, err := s.repo.ListHistory(ctx, id, detailHistoryLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list history")
	}
	history := make([]HistoryDTO, 0, len(entries))
	for _, entry := range entries {
		history = append(history, historyFromModel(entry))
	}
	return &BuyerDetail{Buyer: FromModel(buyer), History: history}, nil
}

// List returns one page of leads matching the filters, most recently
// updated first.
func (s *service) List(ctx context.Context, f Filters, page pagination.Params) (*ListResult, error) {
	params := pagination.Normalize(page)
	rows, total, err := s.repo.List(ctx, f, params.Offset(), params.PageSize)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list buyers")
	}
	items := make([]BuyerDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	return &ListResult{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: pagination.TotalPages(total, params.PageSize),
	}, nil
}

// Import validates every CSV row, collecting per-row errors, and inserts
// all valid rows in one all-or-nothing batch owned by the actor. Without an
// authenticated actor the upload still parses, but every valid row comes
// back as an error and nothing is inserted. Imported rows get no history
// entries.
func (s *service) Import(ctx context.Context, actor auth.Principal, r io.Reader) (*ImportResult, error) {
	inputs, err := ReadCSV(r)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "CSV parse error")
	}
	if len(inputs) > s.importMaxRows {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Max %d rows allowed", s.importMaxRows))
	}

	var rowErrors []RowError
	var valid []*models.Buyer
	for i, in := range inputs {
		rec, issues := Validate(in)
		if issues != nil {
			var merr error
			for _, issue := range issues {
				merr = multierr.Append(merr, stdErrors.New(issue.Message))
			}
			// +2 accounts for 1-indexing plus the header row.
			rowErrors = append(rowErrors, RowError{Row: i + 2, Message: merr.Error()})
			continue
		}
		if actor.ID == "" {
			rowErrors = append(rowErrors, RowError{Row: i + 2, Message: "Missing ownerId (user not authenticated)"})
			continue
		}
		buyer := rec.toModel()
		buyer.OwnerID = actor.ID
		valid = append(valid, buyer)
	}

	if err := s.repo.InsertBatch(ctx, valid); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "import buyers")
	}
	if rowErrors == nil {
		rowErrors = []RowError{}
	}
	return &ImportResult{Inserted: len(valid), Errors: rowErrors}, nil
}

// Export streams every lead matching the filters as CSV.
func (s *service) Export(ctx context.Context, f Filters, w io.Writer) error {
	rows, err := s.repo.ListAll(ctx, f)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "export buyers")
	}
	if err := WriteCSV(w, rows); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv")
	}
	return nil
}

func (s *service) findBuyer(ctx context.Context, id uuid.UUID) (*models.Buyer, error) {
	buyer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "buyer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup buyer")
	}
	return buyer, nil
}

func requireOwnerOrAdmin(actor auth.Principal, buyer *models.Buyer) error {
	if buyer.OwnerID != actor.ID && !actor.IsAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, notOwnerMessage)
	}
	return nil
}

func validationError(issues []FieldIssue) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(issues)
}

// tokenMatches compares the echoed concurrency token against the stored
// UpdatedAt at millisecond precision. A missing or unparsable token counts
// as a mismatch.
func tokenMatches(token string, stored time.Time) bool {
	parsed, err := time.Parse(time.RFC3339Nano, token)
	if err != nil {
		return false
	}
	return parsed.UnixMilli() == stored.UnixMilli()
}
