package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/coursekit/coursekit-backend/internal/apperr"
	"github.com/coursekit/coursekit-backend/internal/logger"
)

type fakeBucket struct {
	uploads  int
	lastKey  string
	lastType string
	err      error
}

func (f *fakeBucket) UploadFile(_ context.Context, key, contentType string, file io.Reader) error {
	f.uploads++
	f.lastKey = key
	f.lastType = contentType
	if f.err != nil {
		return f.err
	}
	_, err := io.Copy(io.Discard, file)
	return err
}

func (f *fakeBucket) DeleteFile(_ context.Context, _ string) error { return nil }

func (f *fakeBucket) GetPublicURL(key string) string { return "https://cdn.example/" + key }

func newMedia(t *testing.T, bucket BucketService) MediaService {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger init failed: %v", err)
	}
	return NewMediaService(log, bucket)
}

func TestUpload_ConstraintTable(t *testing.T) {
	cases := []struct {
		name        string
		kind        UploadKind
		contentType string
		size        int64
		wantOK      bool
	}{
		{"jpeg in bounds", UploadKindImage, "image/jpeg", 1024, true},
		{"png at limit", UploadKindImage, "image/png", maxImageBytes, true},
		{"gif accepted", UploadKindImage, "image/gif", 512, true},
		{"image over 5MB", UploadKindImage, "image/jpeg", maxImageBytes + 1, false},
		{"image zero bytes", UploadKindImage, "image/jpeg", 0, false},
		{"webp rejected", UploadKindImage, "image/webp", 1024, false},
		{"video type wrong", UploadKindImage, "video/mp4", 1024, false},
		{"mp4 in bounds", UploadKindVideo, "video/mp4", 10 << 20, true},
		{"video at limit", UploadKindVideo, "video/webm", maxVideoBytes, true},
		{"video over 100MB", UploadKindVideo, "video/mp4", maxVideoBytes + 1, false},
		{"video with image type", UploadKindVideo, "image/png", 1024, false},
		{"unknown kind", UploadKind("audio"), "audio/mpeg", 1024, false},
	}
	for _, tc := range cases {
		bucket := &fakeBucket{}
		svc := newMedia(t, bucket)
		_, err := svc.Upload(context.Background(), tc.kind, "file.bin", tc.contentType, tc.size, bytes.NewReader(nil), nil)
		if tc.wantOK && err != nil {
			t.Fatalf("%s: expected success, got %v", tc.name, err)
		}
		if !tc.wantOK {
			if err == nil || !apperr.IsValidation(err) {
				t.Fatalf("%s: expected validation error, got %v", tc.name, err)
			}
			if bucket.uploads != 0 {
				t.Fatalf("%s: rejected upload must not reach the bucket", tc.name)
			}
		}
	}
}

func TestUpload_KeyAndURL(t *testing.T) {
	bucket := &fakeBucket{}
	svc := newMedia(t, bucket)

	res, err := svc.Upload(context.Background(), UploadKindImage, "Photo.JPG", "image/jpeg", 1024, bytes.NewReader(make([]byte, 1024)), nil)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if !strings.HasPrefix(res.Key, "image/") || !strings.HasSuffix(res.Key, ".jpg") {
		t.Fatalf("key should be kind-prefixed with a lowercased extension, got %q", res.Key)
	}
	if res.URL != "https://cdn.example/"+res.Key {
		t.Fatalf("url should come from the bucket, got %q", res.URL)
	}
	if bucket.lastType != "image/jpeg" {
		t.Fatalf("content type not forwarded, got %q", bucket.lastType)
	}
}

func TestUpload_BucketFailureIsTransient(t *testing.T) {
	bucket := &fakeBucket{err: errors.New("gcs unreachable")}
	svc := newMedia(t, bucket)

	_, err := svc.Upload(context.Background(), UploadKindVideo, "clip.mp4", "video/mp4", 2048, bytes.NewReader(make([]byte, 2048)), nil)
	if err == nil || !apperr.IsTransient(err) {
		t.Fatalf("bucket failure should surface as transient, got %v", err)
	}
}

func TestUpload_ProgressReaches100(t *testing.T) {
	bucket := &fakeBucket{}
	svc := newMedia(t, bucket)

	var reported []int
	payload := make([]byte, 4096)
	_, err := svc.Upload(context.Background(), UploadKindImage, "p.png", "image/png", int64(len(payload)), bytes.NewReader(payload), func(pct int) {
		reported = append(reported, pct)
	})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if len(reported) == 0 || reported[len(reported)-1] != 100 {
		t.Fatalf("progress should finish at 100, got %v", reported)
	}
	for _, pct := range reported {
		if pct < 0 || pct > 100 {
			t.Fatalf("progress out of range: %v", reported)
		}
	}
}
