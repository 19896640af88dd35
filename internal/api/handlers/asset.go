package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"stockroom.io/stockroom/internal/domain"
	apperrors "stockroom.io/stockroom/internal/pkg/errors"
	"stockroom.io/stockroom/internal/service"
	"stockroom.io/stockroom/internal/store"
)

const dateLayout = "2006-01-02"

// assetPayload is the create/update request body. Bound from JSON or, for
// requests carrying an image file, from multipart form fields.
type assetPayload struct {
	Tag            string  `json:"tag" form:"tag"`
	CategoryID     *string `json:"category_id" form:"category_id"`
	SupplierID     *string `json:"supplier_id" form:"supplier_id"`
	Model          string  `json:"model" form:"model"`
	Serial         string  `json:"serial" form:"serial"`
	PurchaseDate   *string `json:"purchase_date" form:"purchase_date"`
	WarrantyExpiry *string `json:"warranty_expiry" form:"warranty_expiry"`
	AssignedUserID *string `json:"assigned_user_id" form:"assigned_user_id"`
	Status         string  `json:"status" form:"status"`
}

func (p assetPayload) toInput() (service.AssetInput, error) {
	purchase, err := parseOptionalDate("purchase_date", p.PurchaseDate)
	if err != nil {
		return service.AssetInput{}, err
	}
	warranty, err := parseOptionalDate("warranty_expiry", p.WarrantyExpiry)
	if err != nil {
		return service.AssetInput{}, err
	}
	return service.AssetInput{
		Tag:            strings.TrimSpace(p.Tag),
		CategoryID:     normalizeRef(p.CategoryID),
		SupplierID:     normalizeRef(p.SupplierID),
		Model:          strings.TrimSpace(p.Model),
		Serial:         strings.TrimSpace(p.Serial),
		PurchaseDate:   purchase,
		WarrantyExpiry: warranty,
		AssignedUserID: normalizeRef(p.AssignedUserID),
		Status:         domain.Status(p.Status),
	}, nil
}

func parseOptionalDate(field string, v *string) (*time.Time, error) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(*v))
	if err != nil {
		return nil, apperrors.Validation("invalid date", apperrors.FieldError{
			Field: field, Code: "INVALID_DATE",
			Message: fmt.Sprintf("%s must be formatted as %s", field, dateLayout),
		})
	}
	return &t, nil
}

// normalizeRef treats blank reference ids as absent so empty form fields do
// not turn into dangling foreign keys.
func normalizeRef(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// bindAssetRequest binds the payload and, for multipart requests, reads the
// attached image file.
func (s *Server) bindAssetRequest(c *gin.Context) (service.AssetInput, *service.Upload, error) {
	var payload assetPayload
	if err := c.ShouldBind(&payload); err != nil {
		return service.AssetInput{}, nil, badRequest("malformed request body")
	}
	in, err := payload.toInput()
	if err != nil {
		return service.AssetInput{}, nil, err
	}

	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return in, nil, nil
	}
	fh, err := c.FormFile("image")
	if err != nil {
		// No file part attached; the payload alone is fine.
		return in, nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return service.AssetInput{}, nil, badRequest("unreadable image upload")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return service.AssetInput{}, nil, badRequest("unreadable image upload")
	}
	return in, &service.Upload{Data: data, Filename: fh.Filename}, nil
}

// CreateAsset handles POST /assets.
func (s *Server) CreateAsset(c *gin.Context) {
	in, upload, err := s.bindAssetRequest(c)
	if err != nil {
		fail(c, err)
		return
	}

	asset, err := s.assets.Create(c.Request.Context(), actor(c), in, upload)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, s.assetView(asset))
}

// GetAsset handles GET /assets/:id.
func (s *Server) GetAsset(c *gin.Context) {
	asset, err := s.assets.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.assetView(asset))
}

// UpdateAsset handles PUT /assets/:id.
func (s *Server) UpdateAsset(c *gin.Context) {
	in, upload, err := s.bindAssetRequest(c)
	if err != nil {
		fail(c, err)
		return
	}

	asset, err := s.assets.Update(c.Request.Context(), actor(c), c.Param("id"), in, upload)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.assetView(asset))
}

// DeleteAsset handles DELETE /assets/:id.
func (s *Server) DeleteAsset(c *gin.Context) {
	if err := s.assets.Delete(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// assetListItemResponse is one list row with resolved image paths.
type assetListItemResponse struct {
	domain.AssetListItem
	ImageURL string `json:"image_url"`
	ThumbURL string `json:"thumb_url"`
}

// ListAssets handles GET /assets with filter and pagination query params.
func (s *Server) ListAssets(c *gin.Context) {
	filter := store.AssetFilter{
		Search:         c.Query("search"),
		Status:         domain.Status(c.Query("status")),
		CategoryID:     c.Query("category_id"),
		SupplierID:     c.Query("supplier_id"),
		AssignedUserID: c.Query("assigned_user_id"),
		Page:           pageParam(c),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		fail(c, apperrors.Validation("unknown status filter "+string(filter.Status)))
		return
	}

	items, info, err := s.assets.List(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}

	rows := make([]assetListItemResponse, 0, len(items))
	for _, it := range items {
		rows = append(rows, assetListItemResponse{
			AssetListItem: it,
			ImageURL:      s.images.WebPath(it.ImageName),
			ThumbURL:      s.thumbPath(it.ImageName),
		})
	}
	c.JSON(http.StatusOK, pagedResponse{Items: rows, Page: info})
}

type checkOutRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// CheckOutAsset handles POST /assets/:id/checkout.
func (s *Server) CheckOutAsset(c *gin.Context) {
	var req checkOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, badRequest("user_id is required"))
		return
	}

	asset, err := s.assets.CheckOut(c.Request.Context(), actor(c), c.Param("id"), req.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.assetView(asset))
}

// CheckInAsset handles POST /assets/:id/checkin.
func (s *Server) CheckInAsset(c *gin.Context) {
	asset, err := s.assets.CheckIn(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.assetView(asset))
}

// AssetHistory handles GET /assets/:id/history.
func (s *Server) AssetHistory(c *gin.Context) {
	events, info, err := s.trail.AssetHistory(c.Request.Context(), c.Param("id"), pageParam(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pagedResponse{Items: events, Page: info})
}

// ListUsers handles GET /users: active users for assignment pickers.
func (s *Server) ListUsers(c *gin.Context) {
	users, err := s.users.ListActiveUsers(c.Request.Context())
	if err != nil {
		fail(c, apperrors.Internal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": users})
}
