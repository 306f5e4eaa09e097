package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cfg "github.com/mentorconnect/goaltracker/internal/config"
)

func TestNewDisabledWithoutBucket(t *testing.T) {
	st, err := New(context.Background(), &cfg.Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if st != nil {
		t.Errorf("New() = %v, want nil storage", st)
	}
}

func TestPresignedURL(t *testing.T) {
	client := s3.New(s3.Options{
		Region:       "us-east-1",
		BaseEndpoint: aws.String("http://localhost:9000"),
		UsePathStyle: true,
		Credentials:  credentials.NewStaticCredentialsProvider("key", "secret", ""),
	})
	st := &S3Storage{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		bucket:        "attachments",
		presignExpiry: 15 * time.Minute,
	}

	raw, err := st.PresignedURL(context.Background(), "goals/g1/file.pdf")
	if err != nil {
		t.Fatalf("PresignedURL() error = %v", err)
	}

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse() error = %v", err)
	}
	if !strings.HasSuffix(u.Path, "/attachments/goals/g1/file.pdf") {
		t.Errorf("path = %q", u.Path)
	}
	if got := u.Query().Get("X-Amz-Expires"); got != "900" {
		t.Errorf("X-Amz-Expires = %q, want 900", got)
	}
}
