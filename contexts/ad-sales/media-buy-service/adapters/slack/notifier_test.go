package slackadapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"adbroker/contexts/ad-sales/media-buy-service/ports"
)

func testNote() ports.Notification {
	return ports.Notification{
		Title:       "Zonal approval required",
		Description: "approval needed before the entity is turned on",
		Color:       "#FFD700",
		Fields: []ports.NotificationField{
			{Title: "Step ID", Value: "a1234"},
			{Title: "Platform", Value: "Zonal"},
		},
		Footer:    "ad sales workflow",
		Timestamp: time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestSendPostsAttachmentPayload(t *testing.T) {
	var got payload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected json content type, got %q", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	if err := NewNotifier().Send(context.Background(), server.URL, testNote()); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(got.Attachments) != 1 {
		t.Fatalf("expected one attachment, got %d", len(got.Attachments))
	}
	att := got.Attachments[0]
	if att.Title != "Zonal approval required" || att.Color != "#FFD700" {
		t.Fatalf("unexpected attachment %+v", att)
	}
	if len(att.Fields) != 2 || !att.Fields[0].Short {
		t.Fatalf("expected short fields, got %+v", att.Fields)
	}
	if att.Timestamp == 0 {
		t.Fatal("expected unix timestamp in attachment")
	}
}

func TestSendTreatsNon2xxAsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	if err := NewNotifier().Send(context.Background(), server.URL, testNote()); err == nil {
		t.Fatal("expected error for 404 response")
	}
}
