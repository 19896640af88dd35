// Package handlers implements the HTTP surface of Stockroom.
//
// Handlers bind and validate transport payloads, delegate to the services,
// and push failures to the centralized error middleware via c.Error().
// Business rules never live here.
package handlers

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"stockroom.io/stockroom/internal/api/middleware"
	"stockroom.io/stockroom/internal/domain"
	"stockroom.io/stockroom/internal/imaging"
	apperrors "stockroom.io/stockroom/internal/pkg/errors"
	"stockroom.io/stockroom/internal/service"
)

// UserDirectory lists assignable users for picker surfaces.
type UserDirectory interface {
	ListActiveUsers(ctx context.Context) ([]domain.User, error)
}

// ImageResolver maps stored image names to web paths.
type ImageResolver interface {
	WebPath(name string) string
}

// Pinger reports database liveness for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server carries the handler dependencies.
type Server struct {
	assets *service.AssetService
	refs   *service.ReferenceService
	maint  *service.MaintenanceService
	trail  *service.AuditService
	users  UserDirectory
	images ImageResolver
	db     Pinger
}

// NewServer creates the HTTP handler set.
func NewServer(
	assets *service.AssetService,
	refs *service.ReferenceService,
	maint *service.MaintenanceService,
	trail *service.AuditService,
	users UserDirectory,
	images ImageResolver,
	db Pinger,
) *Server {
	return &Server{
		assets: assets,
		refs:   refs,
		maint:  maint,
		trail:  trail,
		users:  users,
		images: images,
		db:     db,
	}
}

// actor returns the authenticated user id, already guaranteed non-empty by
// the JWT middleware on protected routes.
func actor(c *gin.Context) string {
	return middleware.GetUserID(c.Request.Context())
}

// fail pushes an error to the error-handling middleware and aborts.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// pageParam parses the ?page query parameter; absent or malformed values
// fall back to the first page.
func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil {
		return 1
	}
	return page
}

func badRequest(message string) *apperrors.AppError {
	return apperrors.BadRequest(apperrors.CodeInvalidRequest, message)
}

// pagedResponse is the envelope for every list endpoint.
type pagedResponse struct {
	Items any             `json:"items"`
	Page  domain.PageInfo `json:"page"`
}

// assetResponse is an asset with its resolved image paths. Assets without
// an image resolve to the placeholder path, never to a broken link.
type assetResponse struct {
	domain.Asset
	ImageURL string `json:"image_url"`
	ThumbURL string `json:"thumb_url"`
}

func (s *Server) assetView(a *domain.Asset) assetResponse {
	return assetResponse{
		Asset:    *a,
		ImageURL: s.images.WebPath(a.ImageName),
		ThumbURL: s.thumbPath(a.ImageName),
	}
}

func (s *Server) thumbPath(name string) string {
	if name == "" {
		return s.images.WebPath("")
	}
	return s.images.WebPath(imaging.ThumbName(name))
}
