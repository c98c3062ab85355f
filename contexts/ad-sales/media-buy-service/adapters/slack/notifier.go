// Package slackadapter delivers workflow notifications to Slack incoming
// webhooks using the legacy attachment format.
package slackadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"adbroker/contexts/ad-sales/media-buy-service/ports"
)

const defaultSendTimeout = 10 * time.Second

type Notifier struct {
	httpClient *http.Client
}

func NewNotifier() *Notifier {
	return &Notifier{
		httpClient: &http.Client{Timeout: defaultSendTimeout},
	}
}

type attachmentField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type attachment struct {
	Title     string            `json:"title"`
	Text      string            `json:"text"`
	Color     string            `json:"color,omitempty"`
	Fields    []attachmentField `json:"fields,omitempty"`
	Footer    string            `json:"footer,omitempty"`
	Timestamp int64             `json:"ts,omitempty"`
}

type payload struct {
	Attachments []attachment `json:"attachments"`
}

func (n *Notifier) Send(ctx context.Context, webhookURL string, note ports.Notification) error {
	fields := make([]attachmentField, 0, len(note.Fields))
	for _, field := range note.Fields {
		fields = append(fields, attachmentField{
			Title: field.Title,
			Value: field.Value,
			Short: true,
		})
	}

	body := payload{
		Attachments: []attachment{{
			Title:     note.Title,
			Text:      note.Description,
			Color:     note.Color,
			Fields:    fields,
			Footer:    note.Footer,
			Timestamp: note.Timestamp.Unix(),
		}},
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post slack webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 300 {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}
	return nil
}

var _ ports.NotificationSender = (*Notifier)(nil)
