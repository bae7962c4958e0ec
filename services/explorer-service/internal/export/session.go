package export

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/edulearn/platform/services/explorer-service/internal/charts"
	"github.com/edulearn/platform/services/explorer-service/internal/dataset"
)

// ErrInvalidShare is returned for share tokens that do not decode to a session
var ErrInvalidShare = errors.New("invalid session share token")

// SessionState is a portable snapshot of an exploration
type SessionState struct {
	DataShape           [2]int            `json:"data_shape"`
	DataColumns         []string          `json:"data_columns"`
	DataDTypes          map[string]string `json:"data_dtypes"`
	FiltersApplied      []dataset.Filter  `json:"filters_applied"`
	ChartConfigurations []charts.Config   `json:"chart_configurations"`
	Timestamp           string            `json:"timestamp"`
}

// NewSessionState snapshots the frame shape with the filters and charts in use
func NewSessionState(f *dataset.Frame, filters []dataset.Filter, chartConfigs []charts.Config, now time.Time) SessionState {
	dtypes := make(map[string]string, len(f.Columns))
	for i, c := range f.Columns {
		dtypes[c] = f.DType(i)
	}
	if filters == nil {
		filters = []dataset.Filter{}
	}
	if chartConfigs == nil {
		chartConfigs = []charts.Config{}
	}
	return SessionState{
		DataShape:           [2]int{f.Len(), len(f.Columns)},
		DataColumns:         f.Columns,
		DataDTypes:          dtypes,
		FiltersApplied:      filters,
		ChartConfigurations: chartConfigs,
		Timestamp:           now.Format(time.RFC3339Nano),
	}
}

// SessionJSON encodes the state with two space indentation
func SessionJSON(state SessionState) ([]byte, error) {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode session state: %w", err)
	}
	return data, nil
}

// ShareToken encodes the state as base64 JSON
func ShareToken(state SessionState) (string, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("failed to encode session state: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// ShareURL appends the share token to base as the session query parameter
func ShareURL(base string, state SessionState) (string, error) {
	token, err := ShareToken(state)
	if err != nil {
		return "", err
	}
	return base + "?session=" + url.QueryEscape(token), nil
}

// DecodeShareToken reverses ShareToken
func DecodeShareToken(token string) (*SessionState, error) {
	data, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidShare, err)
	}
	var state SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidShare, err)
	}
	return &state, nil
}

// DecodeShareURL reads the session query parameter of a share URL
func DecodeShareURL(raw string) (*SessionState, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidShare, err)
	}
	token := u.Query().Get("session")
	if token == "" {
		return nil, fmt.Errorf("%w: session parameter is required", ErrInvalidShare)
	}
	return DecodeShareToken(token)
}
