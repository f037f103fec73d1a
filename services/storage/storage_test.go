package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"estatepro/models"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	params uploader.UploadParams
	body   []byte
	result *uploader.UploadResult
	err    error
}

func (f *fakeUploader) Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	f.params = params
	if r, ok := file.(io.Reader); ok {
		f.body, _ = io.ReadAll(r)
	}
	return f.result, f.err
}

func jpeg() models.Image {
	return models.Image{Filename: "kitchen sink.jpg", ContentType: "image/jpeg", Data: []byte{0xff, 0xd8, 0xff}}
}

func TestUploadRequestImage(t *testing.T) {
	fake := &fakeUploader{result: &uploader.UploadResult{
		PublicID:  "service-requests/kitchen sink-1234",
		SecureURL: "https://res.cloudinary.com/demo/image/upload/kitchen.jpg",
	}}
	s := newImageStore(fake, "service-requests", nil)

	url, err := s.UploadRequestImage(context.Background(), jpeg())
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/kitchen.jpg", url)
	assert.Equal(t, "service-requests", fake.params.Folder)
	assert.Regexp(t, `^kitchen sink-[0-9a-f]{8}$`, fake.params.PublicID)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, fake.body)
}

func TestUploadRequestImage_Failures(t *testing.T) {
	ctx := context.Background()

	s := newImageStore(&fakeUploader{}, "f", nil)
	_, err := s.UploadRequestImage(ctx, models.Image{Filename: "a.jpg"})
	assert.ErrorIs(t, err, ErrEmptyImage)
	assert.True(t, IsKind(err, KindInvalid))

	_, err = s.UploadRequestImage(ctx, models.Image{Filename: "a.pdf", ContentType: "application/pdf", Data: []byte("x")})
	assert.ErrorContains(t, err, "unsupported content type")
	assert.True(t, IsKind(err, KindInvalid))

	_, err = s.UploadRequestImage(ctx, models.Image{Filename: "big.jpg", ContentType: "image/jpeg", Data: make([]byte, MaxImageBytes+1)})
	assert.True(t, IsKind(err, KindInvalid))

	timeout := errors.New("timeout")
	s = newImageStore(&fakeUploader{err: timeout}, "f", nil)
	_, err = s.UploadRequestImage(ctx, jpeg())
	assert.ErrorIs(t, err, timeout)
	assert.True(t, IsKind(err, KindUnavailable))

	s = newImageStore(&fakeUploader{result: &uploader.UploadResult{Error: api.ErrorResp{Message: "Invalid image file"}}}, "f", nil)
	_, err = s.UploadRequestImage(ctx, jpeg())
	assert.ErrorContains(t, err, "Invalid image file")
	assert.True(t, IsKind(err, KindInvalid))

	s = newImageStore(&fakeUploader{result: &uploader.UploadResult{PublicID: "x"}}, "f", nil)
	_, err = s.UploadRequestImage(ctx, jpeg())
	assert.ErrorContains(t, err, "no secure URL")
	assert.True(t, IsKind(err, KindUnavailable))
}

func TestPublicID(t *testing.T) {
	assert.Regexp(t, `^request-[0-9a-f]{8}$`, publicID(""))
	assert.Regexp(t, `^photo-[0-9a-f]{8}$`, publicID("dir/photo.png"))
}
