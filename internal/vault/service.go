package vault

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"vanish-go/internal/config"
	"vanish-go/internal/metrics"
	"vanish-go/internal/storage"
)

// Service ties the lifecycle engine to the metadata and payload stores.
// Evaluation is always computed from freshly loaded state; the service
// never caches availability.
type Service struct {
	meta     MetadataStore
	payloads storage.Provider
	config   config.Config
	validate *validator.Validate
	metrics  *metrics.Metrics
}

func NewService(meta MetadataStore, payloads storage.Provider, cfg *config.Config, m *metrics.Metrics) *Service {
	return &Service{
		meta:     meta,
		payloads: payloads,
		config:   *cfg,
		validate: validator.New(),
		metrics:  m,
	}
}

// CreateRequest carries the payload and its policy fields.
type CreateRequest struct {
	Name         string        `validate:"required,max=255"`
	Password     string        `validate:"omitempty,min=1,max=128"`
	SelfDestruct bool          // destroy on first wrong password submission
	Countdown    int           `validate:"min=0"` // permitted serves; 0 means unlimited
	Lifetime     time.Duration `validate:"min=0"` // time budget; 0 means no time limit
	Data         io.Reader     `validate:"-"`
}

// CreateResponse is returned after a successful creation.
type CreateResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

// ServeInfo is returned for a Serve decision; the caller owns Body.
type ServeInfo struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.ReadCloser
}

// SweepResult reports what one reconciliation pass found.
type SweepResult struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Cleaned   int `json:"cleaned"`
	Gone      int `json:"gone"`
}

// Create persists payload and metadata together under a fresh token.
// If the metadata write fails the payload is rolled back so that no
// payload ever exists without a record.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*CreateResponse, error) {
	if req.Data == nil {
		return nil, ErrNoFile
	}
	req.Name = filepath.Base(req.Name)
	if req.Name == "" || req.Name == "." || req.Name == string(filepath.Separator) {
		return nil, ErrEmptyName
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}

	id, err := NewToken()
	if err != nil {
		return nil, err
	}

	// Sniff the content type from the first payload bytes, then splice
	// them back in front of the stream.
	head := make([]byte, 512)
	n, err := io.ReadFull(req.Data, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("reading payload: %w", err)
	}
	contentType := http.DetectContentType(head[:n])
	data := io.MultiReader(bytes.NewReader(head[:n]), req.Data)

	size, err := s.payloads.Put(ctx, id, data)
	if err != nil {
		return nil, fmt.Errorf("storing payload: %w", err)
	}

	obj := &Object{
		ID:           id,
		Name:         req.Name,
		SelfDestruct: req.SelfDestruct,
		CreatedAt:    time.Now(),
		Size:         size,
		ContentType:  contentType,
	}
	if req.Password != "" {
		hash, err := HashPassword(req.Password)
		if err != nil {
			_ = s.payloads.Delete(ctx, id)
			return nil, fmt.Errorf("hashing password: %w", err)
		}
		obj.PasswordHash = hash
	}
	if req.Countdown > 0 {
		countdown := req.Countdown
		obj.Countdown = &countdown
	}
	if req.Lifetime > 0 {
		until := obj.CreatedAt.Add(req.Lifetime)
		obj.ValidUntil = &until
	}

	if err := s.meta.Save(ctx, obj); err != nil {
		// Roll back so no payload is left without a record.
		if delErr := s.payloads.Delete(ctx, id); delErr != nil {
			log.Error().Err(delErr).Str("id", id).Msg("rolling back payload after failed metadata save")
		}
		return nil, fmt.Errorf("saving record: %w", err)
	}

	if s.metrics != nil {
		s.metrics.ObjectsCreated.WithLabelValues(guardLabel(obj)).Inc()
	}
	log.Info().
		Str("id", id).
		Str("name", obj.Name).
		Str("size", humanize.Bytes(uint64(size))).
		Bool("guarded", obj.HasPassword()).
		Msg("object created")

	return &CreateResponse{
		ID:   id,
		Name: obj.Name,
		Size: size,
		URL:  fmt.Sprintf("%s/s/%s/%s", s.config.BaseURL, id, url.PathEscape(obj.Name)),
	}, nil
}

// Resolve evaluates one requested access and acts on the decision:
// a serve records the access before the payload is opened, a deny destroys
// whatever remains. The caller only ever sees ErrPasswordRequired or the
// uniform ErrUnavailable.
func (s *Service) Resolve(ctx context.Context, id string, req AccessRequest) (*ServeInfo, error) {
	obj, err := s.meta.Load(ctx, id)
	if err != nil && !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrCorruptRecord) {
		return nil, fmt.Errorf("loading record: %w", err)
	}

	var exists bool
	if obj != nil {
		exists, err = s.payloads.Exists(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("checking payload: %w", err)
		}
	}

	decision := Evaluate(obj, exists, req, time.Now())
	switch decision.Verdict {
	case VerdictServe:
		if err := s.recordAccess(ctx, obj); err != nil {
			return nil, fmt.Errorf("recording access: %w", err)
		}
		body, err := s.payloads.Open(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("opening payload: %w", err)
		}
		if s.metrics != nil {
			s.metrics.ObjectsServed.Inc()
		}
		return &ServeInfo{
			Name:        obj.Name,
			ContentType: obj.ContentType,
			Size:        obj.Size,
			Body:        body,
		}, nil

	case VerdictChallenge:
		return nil, ErrPasswordRequired

	default:
		if obj != nil {
			if err := s.Destroy(ctx, obj, decision.Reason); err != nil {
				log.Error().Err(err).Str("id", id).Msg("destroying unavailable object")
			}
		}
		if s.metrics != nil {
			s.metrics.AccessDenied.WithLabelValues(string(decision.Reason)).Inc()
		}
		log.Debug().
			Str("id", id).
			Str("reason", string(decision.Reason)).
			Msg("access denied")
		return nil, ErrUnavailable
	}
}

// recordAccess is the only mutation path that does not destroy the object.
// The countdown has no floor here; the next evaluation reports over once
// it reaches zero.
func (s *Service) recordAccess(ctx context.Context, obj *Object) error {
	if obj.Countdown != nil {
		*obj.Countdown--
	}
	obj.AccessedTimes++
	now := time.Now()
	obj.AccessedAt = &now
	return s.meta.Save(ctx, obj)
}

// Destroy stamps the removal on the record, persists it, then deletes the
// payload. Metadata first: a crash in between leaves a record that
// correctly describes removal, and the sweep completes the deletion later.
// Destroying an already destroyed object is a no-op.
func (s *Service) Destroy(ctx context.Context, obj *Object, reason Reason) error {
	if !obj.Removed() {
		now := time.Now()
		obj.RemovedAt = &now
		obj.RemovedBecause = reason
		if err := s.meta.Save(ctx, obj); err != nil {
			return fmt.Errorf("stamping removal: %w", err)
		}
		log.Info().
			Str("id", obj.ID).
			Str("reason", string(reason)).
			Msg("object destroyed")
	}
	if err := s.payloads.Delete(ctx, obj.ID); err != nil {
		return fmt.Errorf("deleting payload: %w", err)
	}
	return nil
}

// Sweep reconciles every known object with its expiry policy. Failures on
// one object never abort the pass; counters reflect final outcomes only.
func (s *Service) Sweep(ctx context.Context) (*SweepResult, error) {
	ids, err := s.meta.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing objects: %w", err)
	}

	result := &SweepResult{}
	now := time.Now()
	for _, id := range ids {
		result.Total++

		obj, loadErr := s.meta.Load(ctx, id)
		exists, err := s.payloads.Exists(ctx, id)
		if err != nil {
			log.Error().Err(err).Str("id", id).Msg("sweep: checking payload")
			continue
		}
		if !exists {
			// Nothing left to destroy; the record stays as audit trail.
			result.Gone++
			continue
		}

		reason := ReasonNone
		if loadErr != nil {
			// A payload with a malformed or missing record is eligible
			// for cleanup immediately.
			reason = ReasonMissing
		} else {
			reason = Availability(obj, true, now)
		}

		if reason == ReasonNone {
			result.Available++
			continue
		}

		if obj != nil {
			err = s.Destroy(ctx, obj, reason)
		} else {
			err = s.payloads.Delete(ctx, id)
		}
		if err != nil {
			log.Error().Err(err).Str("id", id).Msg("sweep: destroying object")
			continue
		}
		if s.metrics != nil {
			s.metrics.SweepCleaned.WithLabelValues(string(reason)).Inc()
		}
		result.Cleaned++
	}

	if s.metrics != nil {
		s.metrics.SweepRuns.Inc()
	}
	log.Info().
		Int("total", result.Total).
		Int("available", result.Available).
		Int("cleaned", result.Cleaned).
		Int("gone", result.Gone).
		Msg("sweep completed")
	return result, nil
}

// ReconcileOrphans deletes payloads that have no metadata record, healing
// the created-together invariant after a crash between the two writes.
func (s *Service) ReconcileOrphans(ctx context.Context) error {
	keys, err := s.payloads.List(ctx)
	if err != nil {
		return fmt.Errorf("listing payloads: %w", err)
	}

	var removed int
	for _, key := range keys {
		_, err := s.meta.Load(ctx, key)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			log.Error().Err(err).Str("id", key).Msg("orphan check: loading record")
			continue
		}
		if err := s.payloads.Delete(ctx, key); err != nil {
			log.Error().Err(err).Str("id", key).Msg("orphan check: deleting payload")
			continue
		}
		removed++
	}
	if removed > 0 {
		log.Info().Int("removed", removed).Msg("orphaned payloads deleted")
	}
	return nil
}

func guardLabel(obj *Object) string {
	if obj.HasPassword() {
		return "password"
	}
	return "none"
}
