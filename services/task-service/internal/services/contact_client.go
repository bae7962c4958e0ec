package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/edulearn/platform/services/task-service/internal/models"
)

// ContactClient resolves user contacts through the learn service internal API
type ContactClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewContactClient creates a contact client. A nil httpClient uses a 10 second timeout.
func NewContactClient(baseURL, apiKey string, httpClient *http.Client) *ContactClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &ContactClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  httpClient,
	}
}

// GetContact fetches the contact of one user
func (c *ContactClient) GetContact(ctx context.Context, userID string) (*models.Contact, error) {
	endpoint := fmt.Sprintf("%s/api/v1/internal/users/%s/contact", c.baseURL, url.PathEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build contact request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("user not found")
	default:
		return nil, fmt.Errorf("contact lookup failed with status %d", resp.StatusCode)
	}

	var contact models.Contact
	if err := json.NewDecoder(resp.Body).Decode(&contact); err != nil {
		return nil, fmt.Errorf("failed to decode contact: %w", err)
	}
	return &contact, nil
}
