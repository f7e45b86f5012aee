package entity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPTagger calls a named entity recognition service. It POSTs
// {"text": ..., "labels": [...]} and expects {"entities": [{"text", "label"}]}.
type HTTPTagger struct {
	Endpoint string
	// Labels restricts the entity types, when the service supports it.
	Labels []string
	Client *http.Client
}

// NewHTTPTagger returns a tagger for endpoint with a bounded client timeout.
func NewHTTPTagger(endpoint string, labels []string) *HTTPTagger {
	return &HTTPTagger{
		Endpoint: endpoint,
		Labels:   labels,
		Client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type tagRequest struct {
	Text   string   `json:"text"`
	Labels []string `json:"labels,omitempty"`
}

type tagResponse struct {
	Entities []Span `json:"entities"`
}

func (t *HTTPTagger) Tag(ctx context.Context, text string) ([]Span, error) {
	body, err := json.Marshal(tagRequest{Text: text, Labels: t.Labels})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("entity: tagger request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("entity: tagger returned %s: %s", resp.Status, bytes.TrimSpace(msg))
	}
	var out tagResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("entity: decode tagger response: %w", err)
	}
	return out.Entities, nil
}
