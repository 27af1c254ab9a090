package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/invoice"
	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/models"
	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/service"
	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/storage"
)

// InvoiceService is what the invoice endpoints call
type InvoiceService interface {
	UploadInvoice(ctx context.Context, appID int64, filename string, content []byte) (*service.UploadResult, error)
	AddManual(ctx context.Context, in service.ManualInvoice) (*models.InvoiceDetail, error)
	ExtractFile(filename string, content []byte) (*invoice.ExtractedFields, *storage.StoredFile, error)
	UpdateInvoice(ctx context.Context, id int64, in service.InvoiceUpdate) (*models.InvoiceDetail, error)
	BatchUpdateCategory(ctx context.Context, ids []int64, category models.Category) (int64, error)
}

// ApplicationService is what the application and user endpoints call
type ApplicationService interface {
	CreateUser(ctx context.Context, login, name string) (*models.User, error)
	Create(ctx context.Context, in service.NewApplication) (*models.Application, error)
	Get(ctx context.Context, id int64) (*models.Application, error)
	Submit(ctx context.Context, id int64) error
	MarkPaid(ctx context.Context, id int64, p service.Payment) (*models.Application, error)
}

// ReportService is what the download endpoints call
type ReportService interface {
	GenerateReport(ctx context.Context, appID int64) (*service.ReportFile, error)
	ExportWorkbook(ctx context.Context, appID int64) (*service.ReportFile, error)
}

// Handlers contains all HTTP request handlers
type Handlers struct {
	applications  ApplicationService
	invoices      InvoiceService
	reports       ReportService
	maxUploadSize int64
	logger        *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(applications ApplicationService, invoices InvoiceService, reports ReportService, maxUploadSize int64, logger *zap.Logger) *Handlers {
	return &Handlers{
		applications:  applications,
		invoices:      invoices,
		reports:       reports,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// UploadResponse is returned for a recorded upload
type UploadResponse struct {
	Filename string                `json:"filename"`
	Detail   *models.InvoiceDetail `json:"detail"`
	Fields   map[string]any        `json:"fields"`
}

// ManualEntryResponse tells the client where the stored file lives when
// fields have to be typed in
type ManualEntryResponse struct {
	FileURL  string         `json:"file_url"`
	Filename string         `json:"filename"`
	Fields   map[string]any `json:"fields,omitempty"`
}

// ManualInvoiceRequest is the multipart form of POST /api/invoices/manual
type ManualInvoiceRequest struct {
	ApplicationID int64  `form:"application_id" binding:"required,gt=0"`
	InvoiceNumber string `form:"invoice_number" binding:"required"`
	InvoiceDate   string `form:"invoice_date"`
	Issuer        string `form:"issuer"`
	Amount        string `form:"amount"`
	Category      string `form:"reimbursement_type"`
}

// CreateUserRequest is the body of POST /api/users
type CreateUserRequest struct {
	Login string `json:"login" form:"login" binding:"required"`
	Name  string `json:"name" form:"name"`
}

// CreateApplicationRequest is the form of POST /api/applications
type CreateApplicationRequest struct {
	Name                string `form:"name" binding:"required"`
	ReimbursementPerson string `form:"reimbursement_person"`
	Remarks             string `form:"remarks"`
	UserID              int64  `form:"user_id"`
}

// BatchUpdateRequest is the body of POST /api/invoices/batch_update
type BatchUpdateRequest struct {
	InvoiceIDs []int64 `json:"invoice_ids"`
	Category   string  `json:"reimbursement_type"`
}

// BatchUpdateResponse reports how many invoices changed
type BatchUpdateResponse struct {
	UpdatedCount int64 `json:"updated_count"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// UploadInvoice handles POST /api/invoices/upload
func (h *Handlers) UploadInvoice(c *gin.Context) {
	appID, err := strconv.ParseInt(c.PostForm("application_id"), 10, 64)
	if err != nil || appID <= 0 {
		h.fail(c, http.StatusBadRequest, "invalid application_id")
		return
	}

	filename, content, ok := h.readUpload(c, "file")
	if !ok {
		return
	}

	result, err := h.invoices.UploadInvoice(c.Request.Context(), appID, filename, content)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: UploadResponse{
			Filename: result.Detail.Filename,
			Detail:   result.Detail,
			Fields:   result.Fields.Map(),
		},
	})
}

// AddManualInvoice handles POST /api/invoices/manual
func (h *Handlers) AddManualInvoice(c *gin.Context) {
	var req ManualInvoiceRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "invalid form: "+err.Error())
		return
	}

	in := service.ManualInvoice{
		ApplicationID: req.ApplicationID,
		InvoiceNumber: req.InvoiceNumber,
		InvoiceDate:   req.InvoiceDate,
		Issuer:        req.Issuer,
		Amount:        req.Amount,
		Category:      models.Category(req.Category),
	}
	if _, err := c.FormFile("file"); err == nil {
		filename, content, ok := h.readUpload(c, "file")
		if !ok {
			return
		}
		in.Filename, in.Content = filename, content
	}

	detail, err := h.invoices.AddManual(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: detail})
}

// ExtractInvoice handles POST /api/invoices/extract
func (h *Handlers) ExtractInvoice(c *gin.Context) {
	filename, content, ok := h.readUpload(c, "file")
	if !ok {
		return
	}

	fields, stored, err := h.invoices.ExtractFile(filename, content)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: ManualEntryResponse{
			FileURL:  stored.URL,
			Filename: stored.Filename,
			Fields:   fields.Map(),
		},
	})
}

// UpdateInvoice handles POST /api/invoices/:id/update with a JSON body of
// the fields to change
func (h *Handlers) UpdateInvoice(c *gin.Context) {
	id, ok := h.pathID(c, "invalid invoice ID")
	if !ok {
		return
	}
	var req service.InvoiceUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	detail, err := h.invoices.UpdateInvoice(c.Request.Context(), id, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: detail})
}

// BatchUpdateInvoices handles POST /api/invoices/batch_update
func (h *Handlers) BatchUpdateInvoices(c *gin.Context) {
	var req BatchUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.InvoiceIDs) == 0 {
		h.fail(c, http.StatusBadRequest, "请选择至少一个发票")
		return
	}
	if req.Category == "" {
		h.fail(c, http.StatusBadRequest, "请选择报销类型")
		return
	}

	n, err := h.invoices.BatchUpdateCategory(c.Request.Context(), req.InvoiceIDs, models.Category(req.Category))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: BatchUpdateResponse{UpdatedCount: n}})
}

// CreateUser handles POST /api/users
func (h *Handlers) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "login is required")
		return
	}
	user, err := h.applications.CreateUser(c.Request.Context(), req.Login, req.Name)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: user})
}

// CreateApplication handles POST /api/applications
func (h *Handlers) CreateApplication(c *gin.Context) {
	var req CreateApplicationRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "name is required")
		return
	}
	app, err := h.applications.Create(c.Request.Context(), service.NewApplication{
		Name:                req.Name,
		ReimbursementPerson: req.ReimbursementPerson,
		Remarks:             req.Remarks,
		UserID:              req.UserID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: app})
}

// GetApplication handles GET /api/applications/:id
func (h *Handlers) GetApplication(c *gin.Context) {
	id, ok := h.pathID(c, "invalid application ID")
	if !ok {
		return
	}
	app, err := h.applications.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: app})
}

// SubmitApplication handles POST /api/applications/:id/submit
func (h *Handlers) SubmitApplication(c *gin.Context) {
	id, ok := h.pathID(c, "invalid application ID")
	if !ok {
		return
	}
	if err := h.applications.Submit(c.Request.Context(), id); err != nil {
		h.respondLifecycleError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// MarkApplicationPaid handles POST /api/applications/:id/mark_paid with the
// form fields reimbursement_date and receipt_file
func (h *Handlers) MarkApplicationPaid(c *gin.Context) {
	id, ok := h.pathID(c, "invalid application ID")
	if !ok {
		return
	}
	paidAt := c.PostForm("reimbursement_date")
	if paidAt == "" {
		h.fail(c, http.StatusBadRequest, "请选择报销日期时间")
		return
	}
	if _, err := c.FormFile("receipt_file"); err != nil {
		h.fail(c, http.StatusBadRequest, "请上传转账回单文件")
		return
	}
	filename, content, ok := h.readUpload(c, "receipt_file")
	if !ok {
		return
	}

	app, err := h.applications.MarkPaid(c.Request.Context(), id, service.Payment{
		PaidAt:   paidAt,
		Filename: filename,
		Content:  content,
	})
	if err != nil {
		h.respondLifecycleError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: app})
}

// DownloadReport handles GET /api/applications/:id/report
func (h *Handlers) DownloadReport(c *gin.Context) {
	h.download(c, h.reports.GenerateReport)
}

// DownloadWorkbook handles GET /api/applications/:id/workbook
func (h *Handlers) DownloadWorkbook(c *gin.Context) {
	h.download(c, h.reports.ExportWorkbook)
}

func (h *Handlers) download(c *gin.Context, produce func(context.Context, int64) (*service.ReportFile, error)) {
	id, ok := h.pathID(c, "invalid application ID")
	if !ok {
		return
	}

	file, err := produce(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.FileAttachment(file.Path, file.DownloadName)
}

func (h *Handlers) pathID(c *gin.Context, msg string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.fail(c, http.StatusBadRequest, msg)
		return 0, false
	}
	return id, true
}

func (h *Handlers) readUpload(c *gin.Context, field string) (string, []byte, bool) {
	header, err := c.FormFile(field)
	if err != nil {
		h.fail(c, http.StatusBadRequest, "没有文件")
		return "", nil, false
	}
	if header.Filename == "" {
		h.fail(c, http.StatusBadRequest, "没有选择文件")
		return "", nil, false
	}
	if h.maxUploadSize > 0 && header.Size > h.maxUploadSize {
		h.fail(c, http.StatusRequestEntityTooLarge, "文件过大")
		return "", nil, false
	}

	content, err := readAll(header)
	if err != nil {
		h.logger.Error("Failed to read upload", zap.String("filename", header.Filename), zap.Error(err))
		h.fail(c, http.StatusBadRequest, "failed to read file")
		return "", nil, false
	}
	return header.Filename, content, true
}

func readAll(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// respondError maps service errors onto status codes
func (h *Handlers) respondError(c *gin.Context, err error) {
	var upErr *service.UploadError
	switch {
	case errors.As(err, &upErr) && errors.Is(err, service.ErrExtractionIncomplete):
		// the upload itself succeeded; the client continues with manual entry
		c.JSON(http.StatusOK, Response{
			Success: false,
			Error:   "无法提取发票信息，请手动填写",
			Data: ManualEntryResponse{
				FileURL:  upErr.FileURL,
				Filename: upErr.Filename,
				Fields:   upErr.Fields.Map(),
			},
		})
	case errors.As(err, &upErr) && errors.Is(err, service.ErrDuplicateInvoice):
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   fmt.Sprintf("发票号码 %s 已存在，已更新文件", upErr.InvoiceNumber),
			Data:    ManualEntryResponse{FileURL: upErr.FileURL, Filename: upErr.Filename},
		})
	case errors.Is(err, service.ErrDuplicateInvoice):
		h.fail(c, http.StatusBadRequest, "发票号码已存在")
	case errors.Is(err, service.ErrApplicationNotFound):
		h.fail(c, http.StatusNotFound, "application not found")
	case errors.Is(err, service.ErrInvoiceNotFound):
		h.fail(c, http.StatusNotFound, "未找到发票")
	case errors.Is(err, service.ErrUserNotFound):
		h.fail(c, http.StatusBadRequest, "user not found")
	case errors.Is(err, service.ErrApplicationPaid):
		h.fail(c, http.StatusBadRequest, "已付款的申请不能添加发票")
	case errors.Is(err, service.ErrInvalidInput):
		h.fail(c, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("Request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		h.fail(c, http.StatusInternalServerError, "internal error")
	}
}

// respondLifecycleError is respondError for status changes, where a paid
// application is reported as such
func (h *Handlers) respondLifecycleError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrApplicationPaid) {
		h.fail(c, http.StatusBadRequest, "申请已付款")
		return
	}
	h.respondError(c, err)
}

func (h *Handlers) fail(c *gin.Context, status int, msg string) {
	c.JSON(status, Response{Success: false, Error: msg})
}
