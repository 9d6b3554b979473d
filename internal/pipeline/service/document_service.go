package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang-deal-scout/internal/entity"
	"golang-deal-scout/internal/pipeline/config"
	"golang-deal-scout/internal/pipeline/dto"
	"golang-deal-scout/internal/pipeline/repository"
	"golang-deal-scout/pkg/htmltext"
	"golang-deal-scout/pkg/logger"
	"golang-deal-scout/pkg/utils"

	"github.com/google/uuid"
)

// ErrUnsupportedDocument is returned by ExtractText for types without a text extractor.
var ErrUnsupportedDocument = errors.New("unsupported document type")

// UploadInput describes a document received from a client.
type UploadInput struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// DocumentService stores company attachments and their extracted text.
type DocumentService interface {
	Upload(ctx context.Context, companyID uuid.UUID, in UploadInput, actor string) (*entity.CompanyDocument, error)
	List(ctx context.Context, companyID uuid.UUID) ([]entity.CompanyDocument, error)
	// DownloadURL presigns a GET for the document. attachment forces a
	// browser download under the original file name.
	DownloadURL(ctx context.Context, id uuid.UUID, attachment bool) (*dto.SignedURLResponse, error)
	UploadURL(ctx context.Context, companyID uuid.UUID, req *dto.UploadURLRequest) (*dto.SignedURLResponse, error)
	Delete(ctx context.Context, id uuid.UUID, actor string) error
}

type documentService struct {
	cfg         config.Storage
	storage     repository.ObjectStorage
	docRepo     repository.DocumentRepository
	companyRepo repository.CompanyRepository
	auditRepo   repository.AuditRepository
	logger      *logger.Logger
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(
	cfg *config.Config,
	storage repository.ObjectStorage,
	docRepo repository.DocumentRepository,
	companyRepo repository.CompanyRepository,
	auditRepo repository.AuditRepository,
	log *logger.Logger,
) DocumentService {
	return &documentService{
		cfg:         cfg.Storage,
		storage:     storage,
		docRepo:     docRepo,
		companyRepo: companyRepo,
		auditRepo:   auditRepo,
		logger:      log,
	}
}

func (s *documentService) Upload(ctx context.Context, companyID uuid.UUID, in UploadInput, actor string) (*entity.CompanyDocument, error) {
	fileName := SafeFileName(in.FileName)
	if fileName == "" {
		return nil, dto.NewFieldError("file", "file name is required")
	}
	if _, err := s.companyRepo.FindByID(ctx, companyID); err != nil {
		return nil, err
	}

	limit := s.cfg.MaxUploadMB << 20
	data, err := io.ReadAll(io.LimitReader(in.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, dto.NewFieldError("file", fmt.Sprintf("file exceeds %d MB", s.cfg.MaxUploadMB))
	}

	contentType := in.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = detectContentType(fileName, data)
	}

	key := DocumentKey(companyID, fileName)
	if err := s.storage.Upload(ctx, key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		return nil, err
	}

	doc := &entity.CompanyDocument{
		CompanyID:   companyID,
		FileName:    fileName,
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
		StorageKey:  key,
		UploadedBy:  actor,
	}
	text, err := ExtractText(contentType, data)
	switch {
	case err == nil:
		doc.ProcessingStatus = entity.DocumentProcessed
		doc.ExtractedText = &text
	case errors.Is(err, ErrUnsupportedDocument):
		doc.ProcessingStatus = entity.DocumentUnsupported
	default:
		s.logger.Warn("Document text extraction failed", logger.ErrorField(err), logger.StringField("key", key))
		doc.ProcessingStatus = entity.DocumentFailed
		doc.ProcessingError = utils.ToPointer(err.Error())
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.logger.Error("Failed to remove orphaned object", logger.ErrorField(delErr), logger.StringField("key", key))
		}
		return nil, fmt.Errorf("failed to record document: %w", err)
	}

	appendAudit(ctx, s.auditRepo, s.logger, &entity.DealAuditLog{
		CompanyID: companyID,
		Action:    entity.AuditDocumentUploaded,
		Actor:     actor,
	}, map[string]any{"document_id": doc.ID, "file_name": fileName})
	return doc, nil
}

func (s *documentService) List(ctx context.Context, companyID uuid.UUID) ([]entity.CompanyDocument, error) {
	if _, err := s.companyRepo.FindByID(ctx, companyID); err != nil {
		return nil, err
	}
	return s.docRepo.ListByCompany(ctx, companyID)
}

func (s *documentService) DownloadURL(ctx context.Context, id uuid.UUID, attachment bool) (*dto.SignedURLResponse, error) {
	doc, err := s.docRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	downloadName := ""
	if attachment {
		downloadName = doc.FileName
	}
	url, expiresAt, err := s.storage.PresignGet(ctx, doc.StorageKey, downloadName)
	if err != nil {
		return nil, err
	}
	return &dto.SignedURLResponse{URL: url, Method: http.MethodGet, Key: doc.StorageKey, ExpiresAt: expiresAt}, nil
}

func (s *documentService) UploadURL(ctx context.Context, companyID uuid.UUID, req *dto.UploadURLRequest) (*dto.SignedURLResponse, error) {
	fileName := SafeFileName(req.FileName)
	if fileName == "" {
		return nil, dto.NewFieldError("file_name", "file name is required")
	}
	if _, err := s.companyRepo.FindByID(ctx, companyID); err != nil {
		return nil, err
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = detectContentType(fileName, nil)
	}

	key := DocumentKey(companyID, fileName)
	url, expiresAt, err := s.storage.PresignPut(ctx, key, contentType)
	if err != nil {
		return nil, err
	}
	return &dto.SignedURLResponse{URL: url, Method: http.MethodPut, Key: key, ExpiresAt: expiresAt}, nil
}

func (s *documentService) Delete(ctx context.Context, id uuid.UUID, actor string) error {
	doc, err := s.docRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, doc.StorageKey); err != nil {
		return err
	}
	if err := s.docRepo.Delete(ctx, id); err != nil {
		return err
	}
	appendAudit(ctx, s.auditRepo, s.logger, &entity.DealAuditLog{
		CompanyID: doc.CompanyID,
		Action:    entity.AuditDocumentDeleted,
		Actor:     actor,
	}, map[string]any{"document_id": doc.ID, "file_name": doc.FileName})
	return nil
}

// DocumentKey is the object key of a new upload for a company.
func DocumentKey(companyID uuid.UUID, fileName string) string {
	return fmt.Sprintf("companies/%s/%s-%s", companyID, uuid.NewString(), fileName)
}

var unsafeFileChars = regexp.MustCompile(`[^\w.\- ]+`)

// SafeFileName strips directories and characters that do not belong in an object key.
func SafeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	if name == "." || name == "/" {
		return ""
	}
	name = strings.TrimSpace(unsafeFileChars.ReplaceAllString(name, "_"))
	return strings.Trim(name, ".")
}

func detectContentType(fileName string, data []byte) string {
	if ct := mime.TypeByExtension(strings.ToLower(path.Ext(fileName))); ct != "" {
		return ct
	}
	switch strings.ToLower(path.Ext(fileName)) {
	case ".md", ".markdown":
		return "text/markdown"
	case ".csv":
		return "text/csv"
	}
	if len(data) > 0 {
		return http.DetectContentType(data)
	}
	return "application/octet-stream"
}

// ExtractText returns the searchable text of a document. Plain text, markdown,
// CSV and JSON are returned as-is; HTML goes through the readability extractor.
func ExtractText(contentType string, data []byte) (string, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedDocument, contentType)
	}

	switch mediaType {
	case "text/plain", "text/markdown", "text/x-markdown", "text/csv", "application/json":
		if !utf8.Valid(data) {
			return "", fmt.Errorf("document is not valid UTF-8")
		}
		return string(data), nil
	case "text/html", "application/xhtml+xml":
		text, err := htmltext.Extract(string(data))
		if err != nil {
			return "", err
		}
		return text, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedDocument, mediaType)
	}
}
