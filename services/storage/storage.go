package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"estatepro/models"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxImageBytes caps a single request photo.
const MaxImageBytes = 10 << 20

var ErrEmptyImage = errors.New("image has no content")

const (
	KindInvalid     = "invalid_image"
	KindUnavailable = "image_unavailable"
)

// Error is returned by UploadRequestImage. KindInvalid means the image
// itself was refused; KindUnavailable means Cloudinary could not store it.
type Error struct {
	Kind    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a storage Error of the given kind.
func IsKind(err error, kind string) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == kind
}

func invalid(format string, args ...any) *Error {
	return &Error{Kind: KindInvalid, Message: fmt.Sprintf(format, args...)}
}

func unavailable(err error, format string, args ...any) *Error {
	return &Error{Kind: KindUnavailable, Message: fmt.Sprintf(format, args...), Err: err}
}

// uploadAPI is the part of the Cloudinary uploader used here.
type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
}

// ImageStore uploads request photos to Cloudinary and hands back their
// secure URL, which is what the gateway stores as image_url.
type ImageStore struct {
	upload uploadAPI
	folder string
	logger *zap.Logger
}

// NewImageStore connects to Cloudinary with the given credentials.
func NewImageStore(cloudName, apiKey, apiSecret, folder string, logger *zap.Logger) (*ImageStore, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("cloudinary credentials not set in configuration")
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return newImageStore(&cld.Upload, folder, logger), nil
}

func newImageStore(api uploadAPI, folder string, logger *zap.Logger) *ImageStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImageStore{upload: api, folder: folder, logger: logger}
}

// UploadRequestImage stores image under a fresh public id and returns its URL.
func (s *ImageStore) UploadRequestImage(ctx context.Context, image models.Image) (string, error) {
	if len(image.Data) == 0 {
		return "", &Error{Kind: KindInvalid, Message: "empty upload", Err: ErrEmptyImage}
	}
	if len(image.Data) > MaxImageBytes {
		return "", invalid("image is %d bytes, limit is %d", len(image.Data), MaxImageBytes)
	}
	if image.ContentType != "" && !strings.HasPrefix(image.ContentType, "image/") {
		return "", invalid("unsupported content type %q", image.ContentType)
	}

	params := uploader.UploadParams{
		Folder:   s.folder,
		PublicID: publicID(image.Filename),
	}
	result, err := s.upload.Upload(ctx, bytes.NewReader(image.Data), params)
	if err != nil {
		s.logger.Warn("cloudinary upload failed", zap.String("publicID", params.PublicID), zap.Error(err))
		return "", unavailable(err, "failed to upload image")
	}
	if result.Error.Message != "" {
		// Cloudinary answers with an error body when it cannot decode the file.
		return "", invalid("cloudinary rejected upload: %s", result.Error.Message)
	}
	if result.SecureURL == "" {
		return "", unavailable(nil, "no secure URL returned for %s", params.PublicID)
	}
	s.logger.Debug("request image uploaded",
		zap.String("publicID", result.PublicID),
		zap.Int("bytes", len(image.Data)))
	return result.SecureURL, nil
}

// publicID keeps the original base name readable and makes it unique.
func publicID(filename string) string {
	base := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	if base == "" || base == "." || base == "/" {
		base = "request"
	}
	return fmt.Sprintf("%s-%s", base, uuid.New().String()[:8])
}
