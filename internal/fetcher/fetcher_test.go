package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func serve(t *testing.T, status int, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestDescribePrefersMetaDescription(t *testing.T) {
	url := serve(t, http.StatusOK, `<html><head>
		<meta property="og:description" content="From open graph">
		<meta name="Description" content="  Contract review
			for legal teams ">
	</head><body><p>First paragraph</p></body></html>`)

	got, err := New(5*time.Second).Describe(context.Background(), url)
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if got != "Contract review for legal teams" {
		t.Fatalf("got %q", got)
	}
}

func TestDescribeFallsBack(t *testing.T) {
	c := New(5 * time.Second)

	url := serve(t, http.StatusOK, `<head><meta property="og:description" content="OG text"></head>`)
	if got, _ := c.Describe(context.Background(), url); got != "OG text" {
		t.Fatalf("og fallback: got %q", got)
	}

	url = serve(t, http.StatusOK, `<body><nav><p>Menu</p></nav><p>Sales <b>forecasting</b> made easy</p></body>`)
	if got, _ := c.Describe(context.Background(), url); got != "Sales forecasting made easy" {
		t.Fatalf("paragraph fallback: got %q", got)
	}
}

func TestDescribeTruncates(t *testing.T) {
	url := serve(t, http.StatusOK, `<p>`+strings.Repeat("a", 2*maxDescription)+`</p>`)
	got, err := New(5*time.Second).Describe(context.Background(), url)
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if len([]rune(got)) != maxDescription || !strings.HasSuffix(got, "...") {
		t.Fatalf("unexpected length %d", len(got))
	}
}

func TestDescribeErrors(t *testing.T) {
	c := New(5 * time.Second)
	if _, err := c.Describe(context.Background(), serve(t, http.StatusNotFound, "")); err == nil {
		t.Fatal("expected error on 404")
	}
	if _, err := c.Describe(context.Background(), serve(t, http.StatusOK, "<html></html>")); err == nil {
		t.Fatal("expected error without description")
	}
	if _, err := c.Describe(context.Background(), "ftp://example.com"); err == nil {
		t.Fatal("expected error on unsupported scheme")
	}
}
