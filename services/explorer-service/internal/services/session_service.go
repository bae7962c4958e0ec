package services

import (
	"context"
	"strings"
	"time"

	"github.com/edulearn/platform/services/explorer-service/internal/charts"
	"github.com/edulearn/platform/services/explorer-service/internal/dataset"
	"github.com/edulearn/platform/services/explorer-service/internal/export"
	"github.com/edulearn/platform/services/explorer-service/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const sharedSessionPath = "/api/v1/sessions/shared"

// SessionRepository is the interface that wraps methods for sessions table data access
type SessionRepository interface {
	// Create inserts a session
	Create(ctx context.Context, s *models.Session) error
	// GetByID returns the session or the "session not found" error
	GetByID(ctx context.Context, id string) (*models.Session, error)
}

// FrameSource loads the parsed rows of a dataset
type FrameSource interface {
	Frame(ctx context.Context, id string) (*dataset.Frame, *models.Dataset, error)
}

// sessionService implements SessionService
type sessionService struct {
	repo    SessionRepository
	frames  FrameSource
	baseURL string
	logger  *zap.Logger
	now     func() time.Time
}

// NewSessionService creates a new session service.
// baseURL is the public address used to build share links.
func NewSessionService(repo SessionRepository, frames FrameSource, baseURL string, logger *zap.Logger) *sessionService {
	return &sessionService{
		repo:    repo,
		frames:  frames,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
		now:     time.Now,
	}
}

// CreateSession stores filters and charts for a dataset after checking the filters apply
func (s *sessionService) CreateSession(ctx context.Context, req models.CreateSessionRequest) (*models.Session, error) {
	frame, _, err := s.frames.Frame(ctx, req.DatasetID)
	if err != nil {
		return nil, err
	}
	if _, err := dataset.Apply(frame, req.Filters); err != nil {
		return nil, err
	}

	session := &models.Session{
		ID:        uuid.New().String(),
		DatasetID: req.DatasetID,
		Name:      strings.TrimSpace(req.Name),
		Filters:   req.Filters,
		Charts:    req.Charts,
		CreatedAt: s.now().UTC(),
	}
	if session.Filters == nil {
		session.Filters = []dataset.Filter{}
	}
	if session.Charts == nil {
		session.Charts = []charts.Config{}
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, err
	}
	s.logger.Info("session saved", zap.String("session_id", session.ID), zap.String("dataset_id", session.DatasetID))
	return session, nil
}

// GetSession returns a saved session
func (s *sessionService) GetSession(ctx context.Context, id string) (*models.Session, error) {
	return s.repo.GetByID(ctx, id)
}

// ShareSession snapshots the filtered dataset of a session into a shareable URL
func (s *sessionService) ShareSession(ctx context.Context, id string) (*models.ShareLink, error) {
	session, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	frame, _, err := s.frames.Frame(ctx, session.DatasetID)
	if err != nil {
		return nil, err
	}
	filtered, err := dataset.Apply(frame, session.Filters)
	if err != nil {
		return nil, err
	}

	state := export.NewSessionState(filtered, session.Filters, session.Charts, s.now())
	link, err := export.ShareURL(s.baseURL+sharedSessionPath, state)
	if err != nil {
		return nil, err
	}
	return &models.ShareLink{URL: link, State: state}, nil
}

// DecodeShared reads the state carried by a share token
func (s *sessionService) DecodeShared(token string) (*export.SessionState, error) {
	if strings.TrimSpace(token) == "" {
		return nil, export.ErrInvalidShare
	}
	return export.DecodeShareToken(token)
}
