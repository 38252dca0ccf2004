package archive

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pbaille/toolcat/internal/domain"
)

func TestKeyUsesCreatedAt(t *testing.T) {
	rec := domain.Record{"id": "abc", "created_at": "2026-03-04T05:06:07Z"}
	got := Key(domain.Queries, rec, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	if got != "queries/2026/03/abc.json" {
		t.Fatalf("got %q", got)
	}

	got = Key(domain.Entries, domain.Record{"id": "x"}, time.Date(2030, 11, 1, 0, 0, 0, 0, time.UTC))
	if got != "entries/2030/11/x.json" {
		t.Fatalf("got %q", got)
	}
}

func TestDirWritesJSON(t *testing.T) {
	root := t.TempDir()
	rec := domain.Record{"id": "q1", "email": "a@b.co", "created_at": "2026-03-04T05:06:07Z"}

	if err := NewDir(root).Archive(context.Background(), domain.Queries, rec); err != nil {
		t.Fatalf("archive: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, "queries", "2026", "03", "q1.json"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal(data, &back); err != nil || back["email"] != "a@b.co" {
		t.Fatalf("got %s, %v", data, err)
	}
}

type fakePutter struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3Archive(t *testing.T) {
	fake := &fakePutter{}
	a := &S3{client: fake, bucket: "follow-up", prefix: "toolcat", now: time.Now}

	rec := domain.Record{"id": "e1", "name": "DataSense", "created_at": "2026-07-01T00:00:00Z"}
	if err := a.Archive(context.Background(), domain.Entries, rec); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if aws.ToString(fake.in.Bucket) != "follow-up" || aws.ToString(fake.in.Key) != "toolcat/entries/2026/07/e1.json" {
		t.Fatalf("unexpected put %s/%s", aws.ToString(fake.in.Bucket), aws.ToString(fake.in.Key))
	}
	if aws.ToString(fake.in.ContentType) != "application/json" || len(fake.body) == 0 {
		t.Fatalf("unexpected body %q", fake.body)
	}

	fake.err = errors.New("access denied")
	if err := a.Archive(context.Background(), domain.Entries, rec); err == nil {
		t.Fatal("expected put error")
	}
}

func TestNewS3RequiresBucket(t *testing.T) {
	if _, err := NewS3(context.Background(), S3Config{}); err == nil {
		t.Fatal("expected error without bucket")
	}
}
