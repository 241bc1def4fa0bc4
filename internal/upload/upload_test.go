package upload

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func newClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := New(Config{URL: url, RetryDelay: time.Millisecond}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestUpload_Multipart(t *testing.T) {
	type got struct {
		Filename, ContentType, Body, Auth string
	}
	var seen got
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(f)
		seen = got{hdr.Filename, hdr.Header.Get("Content-Type"), string(data), r.Header.Get("Authorization")}
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id":1}`)
	}))
	defer srv.Close()

	c, err := New(Config{URL: srv.URL, Token: "t0k"}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	var progress []int
	resp, err := c.Upload(context.Background(), File{Name: "photo.jpg", MIME: "image/jpeg", Data: []byte("jpegdata")},
		func(p int) { progress = append(progress, p) })
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if resp.Status != http.StatusCreated || string(resp.Body) != `{"id":1}` {
		t.Errorf("response: %d %s", resp.Status, resp.Body)
	}
	want := got{"photo.jpg", "image/jpeg", "jpegdata", "Bearer t0k"}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Errorf("server saw (-want +got):\n%s", diff)
	}
	if len(progress) == 0 || progress[len(progress)-1] != 100 {
		t.Fatalf("progress should end at 100: %v", progress)
	}
	for i := 1; i < len(progress); i++ {
		if progress[i] <= progress[i-1] {
			t.Errorf("progress went backwards: %v", progress)
		}
	}
}

func TestUpload_RetriesOnceOn5xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if _, err := newClient(t, srv.URL).Upload(context.Background(), File{Name: "a.png", Data: []byte("x")}, nil); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("calls: got %d, want 2", n)
	}
}

func TestUpload_GivesUpAfterOneRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL).Upload(context.Background(), File{Name: "a.png", Data: []byte("x")}, nil)
	var se *StatusError
	if !errors.As(err, &se) || se.Status != http.StatusBadGateway {
		t.Fatalf("got %v, want 502 StatusError", err)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("calls: got %d, want 2", n)
	}
}

func TestUpload_NoRetryOn4xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "too big", http.StatusRequestEntityTooLarge)
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL).Upload(context.Background(), File{Name: "a.png", Data: []byte("x")}, nil)
	var se *StatusError
	if !errors.As(err, &se) || se.Status != http.StatusRequestEntityTooLarge {
		t.Fatalf("got %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("calls: got %d, want 1", n)
	}
}

func TestNew_RequiresURL(t *testing.T) {
	if _, err := New(Config{}, nil, nil); err == nil {
		t.Error("missing url accepted")
	}
}
