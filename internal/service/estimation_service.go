package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/planchais/chantiers-backend/internal/ai"
	"github.com/planchais/chantiers-backend/internal/logger"
)

const estimateCacheTTL = 24 * time.Hour

// Vision is the AI provider used for estimates. *ai.Client satisfies it.
type Vision interface {
	Configured() bool
	Analyze(ctx context.Context, image []byte, mimeType string, ec ai.EstimateContext) (*ai.Estimate, error)
	Visualize(ctx context.Context, projectType, style string) (*ai.Visualization, error)
}

// Photo is one uploaded image.
type Photo struct {
	Data     []byte
	MimeType string
}

type EstimationService interface {
	// Analyze estimates a chantier from its photos. Only the first photo is
	// sent to the provider.
	Analyze(ctx context.Context, photos []Photo, ec ai.EstimateContext) (*ai.Estimate, error)
	Visualize(ctx context.Context, projectType, style string) (*ai.Visualization, error)
}

type estimationService struct {
	vision Vision
	cache  Cache
}

func NewEstimationService(vision *ai.Client, cache Cache) EstimationService {
	var v Vision
	if vision != nil {
		v = vision
	}
	return newEstimationService(v, cache)
}

func newEstimationService(vision Vision, cache Cache) *estimationService {
	return &estimationService{vision: vision, cache: cache}
}

func (s *estimationService) Analyze(ctx context.Context, photos []Photo, ec ai.EstimateContext) (*ai.Estimate, error) {
	if len(photos) == 0 || len(photos[0].Data) == 0 {
		return nil, &ValidationError{Fields: map[string]string{"images": "at least one image is required"}}
	}
	if s.vision == nil || !s.vision.Configured() {
		return nil, fmt.Errorf("estimation: %w", ErrUnavailable)
	}

	photo := photos[0]
	key := estimateKey(photo.Data, ec)
	if s.cache != nil {
		var cached ai.Estimate
		if err := s.cache.GetCache(ctx, key, &cached); err == nil {
			logger.Debug("[AI] estimate served from cache", "key", key)
			return &cached, nil
		}
	}

	estimate, err := s.vision.Analyze(ctx, photo.Data, photo.MimeType, ec)
	if err != nil {
		if errors.Is(err, ai.ErrNotConfigured) {
			return nil, fmt.Errorf("estimation: %w", ErrUnavailable)
		}
		return nil, fmt.Errorf("failed to analyze image: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetCache(ctx, key, estimate, estimateCacheTTL); err != nil {
			logger.Warn("[AI] failed to cache estimate", "error", err)
		}
	}
	return estimate, nil
}

func (s *estimationService) Visualize(ctx context.Context, projectType, style string) (*ai.Visualization, error) {
	v := violations{}
	v.require("projectType", projectType)
	v.require("style", style)
	if err := v.err(); err != nil {
		return nil, err
	}
	if s.vision == nil || !s.vision.Configured() {
		return nil, fmt.Errorf("visualization: %w", ErrUnavailable)
	}

	vis, err := s.vision.Visualize(ctx, strings.TrimSpace(projectType), strings.TrimSpace(style))
	if err != nil {
		if errors.Is(err, ai.ErrNotConfigured) {
			return nil, fmt.Errorf("visualization: %w", ErrUnavailable)
		}
		return nil, fmt.Errorf("failed to generate visualization: %w", err)
	}
	return vis, nil
}

func estimateKey(image []byte, ec ai.EstimateContext) string {
	h := sha256.New()
	h.Write(image)
	ctxJSON, _ := json.Marshal(ec)
	h.Write(ctxJSON)
	return "estimate:" + hex.EncodeToString(h.Sum(nil))
}
