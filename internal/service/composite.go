// Package service holds the domain services wired into the HTTP server.
package service

import (
	"context"

	"github.com/jknauernever/salish-prop/internal/earthengine"
	"github.com/jknauernever/salish-prop/internal/sentinel"
)

// CompositeService turns a date range into an NDVI tile URL template. All
// image processing runs on Earth Engine; the service only assembles the
// request and resolves the session lazily.
type CompositeService struct {
	ee *earthengine.Client
}

// NewCompositeService creates a composite service backed by the given
// Earth Engine client.
func NewCompositeService(ee *earthengine.Client) *CompositeService {
	return &CompositeService{ee: ee}
}

// TileURL returns the {z}/{x}/{y} tile template for the cloud-free NDVI
// composite over [start, end). Any credential or remote failure is
// returned as-is; there are no retries.
func (s *CompositeService) TileURL(ctx context.Context, start, end string) (string, error) {
	if err := s.ee.Initialize(ctx); err != nil {
		return "", err
	}
	return s.ee.CreateMap(ctx, sentinel.NDVIExpression(start, end))
}
