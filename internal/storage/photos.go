package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/chai2010/webp"
	"github.com/google/uuid"
	"golang.org/x/image/draw"

	"github.com/cutclub/cutclub-backend/internal/config"
)

const (
	// maxPhotoEdge caps the longest side of a stored photo.
	maxPhotoEdge = 800
	webpQuality  = 85
	presignTTL   = 15 * time.Minute
)

// PhotoStore converts uploaded profile photos to WebP and keeps them in S3.
// Objects stay private; reads go through short-lived presigned URLs.
type PhotoStore struct {
	s3     *s3.Client
	presig *s3.PresignClient
	bucket string
}

func NewPhotoStore(cfg *config.Config) (*PhotoStore, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3: bucket name is required")
	}

	cli := s3.New(s3.Options{
		Region: cfg.S3Region,
		Credentials: aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)),
	})

	return &PhotoStore{
		s3:     cli,
		presig: s3.NewPresignClient(cli),
		bucket: cfg.S3Bucket,
	}, nil
}

// Save decodes the upload (JPEG or PNG), downscales it to maxPhotoEdge,
// re-encodes as WebP and uploads under {kind}/{ownerID}/{uuid}.webp.
// Returns the object key to persist on the user row.
func (p *PhotoStore) Save(ctx context.Context, kind string, ownerID uint, r io.Reader) (string, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("decode photo: %w", err)
	}

	img = downscale(img)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: webpQuality}); err != nil {
		return "", fmt.Errorf("encode webp: %w", err)
	}

	key := fmt.Sprintf("%s/%d/%s.webp", kind, ownerID, uuid.NewString())

	_, err = p.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(buf.Bytes()),
		ContentLength: aws.Int64(int64(buf.Len())),
		ContentType:   aws.String("image/webp"),
		ACL:           types.ObjectCannedACLPrivate,
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload %q: %w", key, err)
	}
	return key, nil
}

// URL generates a presigned GET URL for a stored photo.
func (p *PhotoStore) URL(ctx context.Context, key string) (string, error) {
	req, err := p.presig.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignTTL))
	if err != nil {
		return "", fmt.Errorf("s3 presign %q: %w", key, err)
	}
	return req.URL, nil
}

// Delete removes a replaced photo. Callers may ignore the error; a stale
// object costs cents, a failed upload costs a support ticket.
func (p *PhotoStore) Delete(ctx context.Context, key string) error {
	_, err := p.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %q: %w", key, err)
	}
	return nil
}

func downscale(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxPhotoEdge && h <= maxPhotoEdge {
		return img
	}

	if w >= h {
		h = h * maxPhotoEdge / w
		w = maxPhotoEdge
	} else {
		w = w * maxPhotoEdge / h
		h = maxPhotoEdge
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
