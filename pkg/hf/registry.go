// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package hf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/gomlx/gomlx/pkg/support/xslices"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// DefaultEndpoint is the Hugging Face Hub address.
const DefaultEndpoint = "https://huggingface.co"

// CustomCodeTag marks models that need their own Python code to be instantiated.
const CustomCodeTag = "custom_code"

// ModelInfo is the subset of the Hub model listing used here.
type ModelInfo struct {
	// ID of the model, e.g. "google-bert/bert-base-uncased".
	ID string `json:"id"`

	// Gated is true if access to the model files requires accepting conditions.
	// The Hub reports it as false, true, or the gating mode ("auto", "manual").
	Gated GatedFlag `json:"gated"`

	Tags []string `json:"tags"`
}

// UnmarshalJSON accepts both "id" and the older "modelId" keys.
func (m *ModelInfo) UnmarshalJSON(data []byte) error {
	type plain ModelInfo
	var aux struct {
		plain
		ModelID string `json:"modelId"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*m = ModelInfo(aux.plain)
	if m.ID == "" {
		m.ID = aux.ModelID
	}
	return nil
}

// GatedFlag normalizes the Hub's "gated" field to a boolean.
type GatedFlag bool

// UnmarshalJSON implements json.Unmarshaler.
func (g *GatedFlag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")), bytes.Equal(data, []byte("false")), bytes.Equal(data, []byte(`""`)):
		*g = false
	case bytes.Equal(data, []byte("true")):
		*g = true
	case len(data) > 0 && data[0] == '"':
		// Any gating mode ("auto", "manual") means gated.
		*g = true
	default:
		return errors.Errorf("invalid value for gated: %s", data)
	}
	return nil
}

// Client queries the Hub model registry.
type Client struct {
	endpoint, authToken string
	httpClient          *http.Client
}

// NewClient creates a registry client for the given endpoint. If endpoint is empty, DefaultEndpoint is used.
func NewClient(endpoint string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: time.Minute},
	}
}

// WithAuthToken sets the authentication token to use in the requests.
// It is passed in the header "Authorization" and prefixed with "Bearer ".
func (c *Client) WithAuthToken(authToken string) *Client {
	c.authToken = authToken
	return c
}

// WithHTTPClient sets the http.Client used for the requests.
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	c.httpClient = httpClient
	return c
}

// ListModels returns up to limit models, sorted (descending) by the sortBy key (e.g. "trending_score",
// "likes", "downloads").
func (c *Client) ListModels(ctx context.Context, limit int, sortBy string) ([]ModelInfo, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	if sortBy != "" {
		query.Set("sort", sortBy)
		query.Set("direction", "-1")
	}
	listURL := fmt.Sprintf("%s/api/models?%s", c.endpoint, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create request for %q", listURL)
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
	req.Header.Set("Accept", "application/json")

	klog.V(1).Infof("Listing models: %s", listURL)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list models from %q", c.endpoint)
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read model listing from %q", c.endpoint)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("model listing from %q failed with status %s: %s", c.endpoint, resp.Status, truncateBody(body))
	}
	var models []ModelInfo
	if err := json.Unmarshal(body, &models); err != nil {
		return nil, errors.Wrapf(err, "failed to parse model listing from %q", c.endpoint)
	}
	return models, nil
}

// FilterValid keeps the models that can be inspected without special access: not gated, and not
// requiring custom code.
func FilterValid(models []ModelInfo) []ModelInfo {
	valid := make([]ModelInfo, 0, len(models))
	for _, m := range models {
		if bool(m.Gated) || slices.Contains(m.Tags, CustomCodeTag) {
			continue
		}
		valid = append(valid, m)
	}
	return valid
}

// ModelIDs returns the IDs of the given models, in order.
func ModelIDs(models []ModelInfo) []string {
	return xslices.Map(models, func(m ModelInfo) string { return m.ID })
}

func truncateBody(body []byte) string {
	const maxLen = 200
	if len(body) > maxLen {
		return string(body[:maxLen]) + "..."
	}
	return string(body)
}
