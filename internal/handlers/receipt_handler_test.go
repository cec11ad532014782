package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"centsible/internal/dto"
	"centsible/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

// fakeReceiptService implements services.ReceiptServiceInterface
type fakeReceiptService struct {
	ingest func(ctx context.Context, userID uuid.UUID, image []byte, mimeType string) (*dto.ReceiptUploadResponse, error)
}

func (f *fakeReceiptService) IngestReceipt(ctx context.Context, userID uuid.UUID, image []byte, mimeType string) (*dto.ReceiptUploadResponse, error) {
	return f.ingest(ctx, userID, image, mimeType)
}

func TestReceiptHandler(t *testing.T) {
	suite.Run(t, new(ReceiptHandlerSuite))
}

type ReceiptHandlerSuite struct {
	suite.Suite
	e      *echo.Echo
	userID uuid.UUID
}

func (s *ReceiptHandlerSuite) SetupTest() {
	s.e = echo.New()
	s.userID = uuid.New()
}

func (s *ReceiptHandlerSuite) multipartRequest(fieldName, contentType string, payload []byte) (echo.Context, *httptest.ResponseRecorder) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="`+fieldName+`"; filename="receipt.jpg"`)
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	s.Require().NoError(err)
	_, err = part.Write(payload)
	s.Require().NoError(err)
	s.Require().NoError(writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/receipts", body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	c := s.e.NewContext(req, rec)
	c.Set("user_id", s.userID)
	return c, rec
}

func (s *ReceiptHandlerSuite) TestUploadReceipt() {
	service := &fakeReceiptService{
		ingest: func(ctx context.Context, userID uuid.UUID, image []byte, mimeType string) (*dto.ReceiptUploadResponse, error) {
			s.Equal(s.userID, userID)
			s.Equal([]byte("jpeg-bytes"), image)
			s.Equal("image/jpeg", mimeType)
			return &dto.ReceiptUploadResponse{
				TransactionID: uuid.NewString(),
				StoreName:     "Corner Market",
				Amount:        "12.40",
				ItemCount:     3,
			}, nil
		},
	}
	handler := NewReceiptHandler(service)

	c, rec := s.multipartRequest("receipt", "image/jpeg", []byte("jpeg-bytes"))

	s.Require().NoError(handler.UploadReceipt(c))
	s.Equal(http.StatusCreated, rec.Code)
	s.Contains(rec.Body.String(), "Corner Market")
}

func (s *ReceiptHandlerSuite) TestUploadReceipt_MissingFile() {
	handler := NewReceiptHandler(&fakeReceiptService{})

	c, rec := s.multipartRequest("wrong_field", "image/jpeg", []byte("jpeg-bytes"))

	s.Require().NoError(handler.UploadReceipt(c))
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(rec.Body.String(), "RECEIPT_001")
}

func (s *ReceiptHandlerSuite) TestUploadReceipt_UnsupportedType() {
	handler := NewReceiptHandler(&fakeReceiptService{})

	c, rec := s.multipartRequest("receipt", "application/pdf", []byte("%PDF-"))

	s.Require().NoError(handler.UploadReceipt(c))
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *ReceiptHandlerSuite) TestUploadReceipt_NoUsableItems() {
	service := &fakeReceiptService{
		ingest: func(ctx context.Context, userID uuid.UUID, image []byte, mimeType string) (*dto.ReceiptUploadResponse, error) {
			return nil, services.ErrReceiptNoItems
		},
	}
	handler := NewReceiptHandler(service)

	c, rec := s.multipartRequest("receipt", "image/png", []byte("png-bytes"))

	s.Require().NoError(handler.UploadReceipt(c))
	s.Equal(http.StatusUnprocessableEntity, rec.Code)
	s.Contains(rec.Body.String(), "RECEIPT_003")
}

func (s *ReceiptHandlerSuite) TestUploadReceipt_ExtractionFailure() {
	service := &fakeReceiptService{
		ingest: func(ctx context.Context, userID uuid.UUID, image []byte, mimeType string) (*dto.ReceiptUploadResponse, error) {
			return nil, services.ErrReceiptExtraction
		},
	}
	handler := NewReceiptHandler(service)

	c, rec := s.multipartRequest("receipt", "image/webp", []byte("webp-bytes"))

	s.Require().NoError(handler.UploadReceipt(c))
	s.Equal(http.StatusBadGateway, rec.Code)
	s.Contains(rec.Body.String(), "RECEIPT_002")
}
