package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/models"
	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/repository"
	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/storage"
	"github.com/wangsirgan-jpg/fapiaobaoxiao/pkg/utils"
)

const (
	snStampLayout = "200601021504"

	// PaidAtLayout is the accepted form of a payment time, as sent by a
	// datetime-local input
	PaidAtLayout = "2006-01-02T15:04"
)

// ApplicationService manages the lifecycle of reimbursement applications:
// created as draft, submitted, then marked paid with a transfer receipt.
type ApplicationService struct {
	apps    ApplicationWriter
	users   UserStore
	uploads UploadStore
	now     func() time.Time
	logger  *zap.Logger
}

// NewApplicationService creates a new application service
func NewApplicationService(apps ApplicationWriter, users UserStore, uploads UploadStore, logger *zap.Logger) *ApplicationService {
	return &ApplicationService{
		apps:    apps,
		users:   users,
		uploads: uploads,
		now:     time.Now,
		logger:  logger,
	}
}

// NewApplication is the input of Create
type NewApplication struct {
	Name                string
	ReimbursementPerson string
	Remarks             string
	UserID              int64 // optional owner
}

// CreateUser registers an account that applications can belong to
func (s *ApplicationService) CreateUser(ctx context.Context, login, name string) (*models.User, error) {
	login = utils.SanitizeString(login)
	if login == "" {
		return nil, fmt.Errorf("%w: login is required", ErrInvalidInput)
	}
	user := &models.User{Login: login, Name: utils.SanitizeString(name)}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("User created", zap.Int64("user_id", user.ID), zap.String("login", login))
	return user, nil
}

// Create opens a draft application. The serial number is the creation
// minute followed by the owner's ID.
func (s *ApplicationService) Create(ctx context.Context, in NewApplication) (*models.Application, error) {
	name := utils.SanitizeString(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	app := &models.Application{
		Name:                name,
		ReimbursementPerson: utils.SanitizeString(in.ReimbursementPerson),
		Remarks:             strings.TrimSpace(in.Remarks),
		Status:              models.ApplicationStatusDraft,
		CreatedAt:           s.now(),
	}
	app.SN = app.CreatedAt.Format(snStampLayout)

	if in.UserID > 0 {
		user, err := s.users.GetByID(ctx, in.UserID)
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		if err != nil {
			return nil, err
		}
		app.UserID = user.ID
		app.CreatorName = user.Name
		app.SN += strconv.FormatInt(user.ID, 10)
	}

	if err := s.apps.Create(ctx, app); err != nil {
		return nil, err
	}
	s.logger.Info("Application created",
		zap.Int64("application_id", app.ID),
		zap.String("sn", app.SN))
	return app, nil
}

// Get returns an application with its invoice details
func (s *ApplicationService) Get(ctx context.Context, id int64) (*models.Application, error) {
	app, err := s.apps.GetWithDetails(ctx, id)
	if errors.Is(err, repository.ErrApplicationNotFound) {
		return nil, ErrApplicationNotFound
	}
	return app, err
}

// Submit hands a draft over for payment. Paid applications stay paid.
func (s *ApplicationService) Submit(ctx context.Context, id int64) error {
	app, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if app.IsPaid {
		return ErrApplicationPaid
	}
	if err := s.apps.UpdateStatus(ctx, id, models.ApplicationStatusSubmitted); err != nil {
		return err
	}
	s.logger.Info("Application submitted", zap.Int64("application_id", id))
	return nil
}

// Payment is the proof recorded when an application is paid
type Payment struct {
	PaidAt   string // PaidAtLayout
	Filename string // transfer receipt
	Content  []byte
}

// MarkPaid stores the transfer receipt and closes the application. A paid
// application no longer accepts invoices.
func (s *ApplicationService) MarkPaid(ctx context.Context, id int64, p Payment) (*models.Application, error) {
	if p.PaidAt == "" {
		return nil, fmt.Errorf("%w: reimbursement date is required", ErrInvalidInput)
	}
	paidAt, err := time.ParseInLocation(PaidAtLayout, p.PaidAt, time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: reimbursement date %q", ErrInvalidInput, p.PaidAt)
	}
	if p.Filename == "" || len(p.Content) == 0 {
		return nil, fmt.Errorf("%w: transfer receipt is required", ErrInvalidInput)
	}

	app, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.IsPaid {
		return nil, ErrApplicationPaid
	}

	stored, err := s.uploads.SaveUpload(storage.KindReceipts, p.Filename, p.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.apps.MarkPaid(ctx, id, paidAt, stored.Filename, stored.URL); err != nil {
		return nil, err
	}

	s.logger.Info("Application marked paid",
		zap.Int64("application_id", id),
		zap.Time("paid_at", paidAt),
		zap.String("receipt_url", stored.URL))

	app.Status = models.ApplicationStatusPaid
	app.IsPaid = true
	app.PaidAt = &paidAt
	app.ReceiptFilename = stored.Filename
	app.ReceiptURL = stored.URL
	return app, nil
}
