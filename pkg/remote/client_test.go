package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type doc struct {
	Layout string `json:"layout"`
}

func TestClientSavePostsJSON(t *testing.T) {
	var received doc
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != DefaultPath {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("X-CSRF-TOKEN"); got != "token" {
			t.Fatalf("expected csrf header, got %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Fatalf("expected auth header, got %q", got)
		}
		_ = json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Config{BaseURL: server.URL + "/", APIKey: "secret", CSRFToken: "token"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if err := client.Save(context.Background(), doc{Layout: "grid-2"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if received.Layout != "grid-2" {
		t.Fatalf("unexpected payload %#v", received)
	}
}

func TestClientLoad(t *testing.T) {
	status := http.StatusOK
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Fatalf("expected GET, got %s", r.Method)
		}
		if status != http.StatusOK {
			http.Error(w, "nope", status)
			return
		}
		_ = json.NewEncoder(w).Encode(doc{Layout: "grid-4"})
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Config{BaseURL: server.URL, Path: DefaultPath})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	var out doc
	if err := client.Load(context.Background(), &out); err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.Layout != "grid-4" {
		t.Fatalf("unexpected document %#v", out)
	}

	status = http.StatusNotFound
	if err := client.Load(context.Background(), &out); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	status = http.StatusInternalServerError
	err = client.Load(context.Background(), &out)
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected remote error, got %v", err)
	}
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatalf("expected error without base url")
	}
}
