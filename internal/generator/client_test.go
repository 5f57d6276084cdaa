package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestSubmitSendsModelAndSize(t *testing.T) {
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"id": "gen-123", "status": "pending"})
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL)
	id, err := client.Submit(context.Background(), "a calm beach at dawn", Options{AspectRatio: "9:16"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if id != "gen-123" {
		t.Errorf("id = %q, want gen-123", id)
	}
	if body["model"] != DefaultModel {
		t.Errorf("model = %v, want default", body["model"])
	}
	if body["size"] != "720x1280" {
		t.Errorf("size = %v, want portrait", body["size"])
	}
}

func TestSubmitProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"invalid prompt"}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient("k", srv.URL)
	if _, err := client.Submit(context.Background(), "p", Options{}); err == nil {
		t.Fatal("want error on 400 response")
	} else if !strings.Contains(err.Error(), "400") {
		t.Errorf("err = %v, want status code included", err)
	}
}

func TestStatusMapsProviderFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/gen-9") {
			t.Errorf("path = %q, want /gen-9 suffix", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":         "gen-9",
			"status":     "completed",
			"prompt":     "p",
			"created_at": 1700000000,
			"video":      map[string]string{"url": "https://cdn.example.com/v.mp4"},
		})
	}))
	defer srv.Close()

	client := NewClient("k", srv.URL)
	video, err := client.Status(context.Background(), "gen-9")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if video.Status != StatusCompleted {
		t.Errorf("Status = %q", video.Status)
	}
	if video.VideoURL != "https://cdn.example.com/v.mp4" {
		t.Errorf("VideoURL = %q", video.VideoURL)
	}
}

func TestAwaitPollsUntilCompleted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := "processing"
		if calls.Add(1) >= 3 {
			status = "completed"
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"id": "gen-1", "status": status})
	}))
	defer srv.Close()

	client := NewClient("k", srv.URL)
	video, err := client.Await(context.Background(), "gen-1", 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Await: %v", err)
	}
	if video.Status != StatusCompleted {
		t.Errorf("Status = %q, want completed", video.Status)
	}
	if calls.Load() < 3 {
		t.Errorf("polled %d times, want at least 3", calls.Load())
	}
}

func TestAwaitReturnsFailedJob(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "gen-2",
			"status": "failed",
			"error":  map[string]string{"message": "content policy"},
		})
	}))
	defer srv.Close()

	client := NewClient("k", srv.URL)
	video, err := client.Await(context.Background(), "gen-2", 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Await: %v", err)
	}
	if video.Status != StatusFailed || video.Error != "content policy" {
		t.Errorf("video = %+v, want failed with error message", video)
	}
}

func TestAwaitHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"id": "gen-3", "status": "processing"})
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := NewClient("k", srv.URL)
	if _, err := client.Await(ctx, "gen-3", 10*time.Millisecond); err == nil {
		t.Fatal("want context error")
	}
}
