package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"casasapi/src/services/validation"
)

// SourceClient lê os anúncios de outra instância da API.
type SourceClient struct {
	baseURL string
	client  *http.Client
}

func NewSourceClient(baseURL string, timeout time.Duration) *SourceClient {
	return &SourceClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// FetchCandidates devolve os anúncios na ordem em que a origem os lista (mais novo primeiro).
func (c *SourceClient) FetchCandidates(ctx context.Context) ([]validation.Candidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/propiedades", nil)
	if err != nil {
		return nil, fmt.Errorf("SourceClient.FetchCandidates - failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("SourceClient.FetchCandidates - request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("SourceClient.FetchCandidates - unexpected status %d", resp.StatusCode)
	}

	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()

	var listings []validation.Candidate
	if err := decoder.Decode(&listings); err != nil {
		return nil, fmt.Errorf("SourceClient.FetchCandidates - failed to decode body: %w", err)
	}

	for i := range listings {
		listings[i].Galeria = normalizeGaleria(listings[i].Galeria)
	}
	return listings, nil
}

// Instâncias antigas devolvem galeria como texto JSON.
func normalizeGaleria(raw any) any {
	text, ok := raw.(string)
	if !ok {
		return raw
	}
	if strings.TrimSpace(text) == "" {
		return []any{}
	}

	var items []any
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return raw
	}
	return items
}
