package service

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/invoice"
	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/models"
	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/report"
	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/repository"
	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/storage"
)

type fakeApps struct {
	apps          map[int64]*models.Application
	details       *fakeInvoices
	totalsUpdated []int64
	nextID        int64
}

func newFakeApps(apps ...*models.Application) *fakeApps {
	f := &fakeApps{apps: make(map[int64]*models.Application)}
	for _, a := range apps {
		f.apps[a.ID] = a
	}
	return f
}

func (f *fakeApps) GetByID(_ context.Context, id int64) (*models.Application, error) {
	app, ok := f.apps[id]
	if !ok {
		return nil, repository.ErrApplicationNotFound
	}
	return app, nil
}

func (f *fakeApps) GetWithDetails(ctx context.Context, id int64) (*models.Application, error) {
	app, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.details != nil {
		app.Details = f.details.byApp(id)
	}
	return app, nil
}

func (f *fakeApps) UpdateTotals(_ context.Context, id int64) error {
	f.totalsUpdated = append(f.totalsUpdated, id)
	return nil
}

func (f *fakeApps) Create(_ context.Context, app *models.Application) error {
	f.nextID++
	app.ID = 100 + f.nextID
	f.apps[app.ID] = app
	return nil
}

func (f *fakeApps) UpdateStatus(_ context.Context, id int64, status string) error {
	app, ok := f.apps[id]
	if !ok {
		return repository.ErrApplicationNotFound
	}
	app.Status = status
	app.IsPaid = status == models.ApplicationStatusPaid
	return nil
}

func (f *fakeApps) MarkPaid(_ context.Context, id int64, paidAt time.Time, receiptFilename, receiptURL string) error {
	app, ok := f.apps[id]
	if !ok {
		return repository.ErrApplicationNotFound
	}
	app.Status = models.ApplicationStatusPaid
	app.IsPaid = true
	app.PaidAt = &paidAt
	app.ReceiptFilename, app.ReceiptURL = receiptFilename, receiptURL
	return nil
}

type fakeUsers struct {
	users map[int64]*models.User
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	if f.users == nil {
		f.users = make(map[int64]*models.User)
	}
	u.ID = int64(len(f.users) + 1)
	u.Role = "user"
	f.users[u.ID] = u
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

type fakeInvoices struct {
	rows   []*models.InvoiceDetail
	nextID int64
}

func (f *fakeInvoices) Create(_ context.Context, d *models.InvoiceDetail) error {
	for _, r := range f.rows {
		if r.InvoiceNumber == d.InvoiceNumber {
			return repository.ErrDuplicateInvoice
		}
	}
	f.nextID++
	d.ID = f.nextID
	f.rows = append(f.rows, d)
	return nil
}

func (f *fakeInvoices) GetByInvoiceNumber(_ context.Context, number string) (*models.InvoiceDetail, error) {
	for _, r := range f.rows {
		if r.InvoiceNumber == number {
			return r, nil
		}
	}
	return nil, repository.ErrInvoiceNotFound
}

func (f *fakeInvoices) GetByID(_ context.Context, id int64) (*models.InvoiceDetail, error) {
	for _, r := range f.rows {
		if r.ID == id {
			copied := *r
			return &copied, nil
		}
	}
	return nil, repository.ErrInvoiceNotFound
}

func (f *fakeInvoices) Update(_ context.Context, d *models.InvoiceDetail) error {
	if d.Category != "" && !d.Category.IsValid() {
		return fmt.Errorf("%w: category", repository.ErrInvalidDetail)
	}
	for _, r := range f.rows {
		if r.ID != d.ID && r.InvoiceNumber == d.InvoiceNumber {
			return repository.ErrDuplicateInvoice
		}
	}
	for i, r := range f.rows {
		if r.ID == d.ID {
			copied := *d
			f.rows[i] = &copied
			return nil
		}
	}
	return repository.ErrInvoiceNotFound
}

func (f *fakeInvoices) UpdateCategory(_ context.Context, ids []int64, c models.Category) (int64, error) {
	var n int64
	for _, id := range ids {
		for _, r := range f.rows {
			if r.ID == id {
				r.Category = c
				n++
			}
		}
	}
	return n, nil
}

func (f *fakeInvoices) UpdateFile(_ context.Context, id int64, filename, fileURL string) error {
	for _, r := range f.rows {
		if r.ID == id {
			r.Filename, r.FileURL = filename, fileURL
			return nil
		}
	}
	return repository.ErrInvoiceNotFound
}

func (f *fakeInvoices) byApp(appID int64) []*models.InvoiceDetail {
	var out []*models.InvoiceDetail
	for _, r := range f.rows {
		if r.ApplicationID == appID {
			out = append(out, r)
		}
	}
	return out
}

type fakeUploads struct {
	dir   string
	saved []string
	err   error
}

func (f *fakeUploads) SaveUpload(kind, name string, _ []byte) (*storage.StoredFile, error) {
	if f.err != nil {
		return nil, f.err
	}
	stored := fmt.Sprintf("20251104093001_%s", name)
	f.saved = append(f.saved, stored)
	return &storage.StoredFile{
		Path:     filepath.Join(f.dir, kind, stored),
		URL:      storage.URLPrefix + kind + "/" + stored,
		Filename: name,
	}, nil
}

type fakeExtractor struct {
	fields  *invoice.ExtractedFields
	paths   []string
	keyword string
}

func (f *fakeExtractor) Extract(path, keyword string) *invoice.ExtractedFields {
	f.paths = append(f.paths, path)
	f.keyword = keyword
	if f.fields == nil {
		return &invoice.ExtractedFields{}
	}
	return f.fields
}

type fakeReports struct {
	result *report.Result
	err    error
	got    *models.Application
}

func (f *fakeReports) Generate(_ context.Context, app *models.Application) (*report.Result, error) {
	f.got = app
	return f.result, f.err
}

type fakeWorkbooks struct {
	path string
	err  error
}

func (f *fakeWorkbooks) Export(_ *models.Application, outputPath string) error {
	f.path = outputPath
	return f.err
}
