package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"stockroom.io/stockroom/internal/service"
	"stockroom.io/stockroom/internal/store"
)

type categoryPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type supplierPayload struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Notes   string `json:"notes"`
}

func refFilter(c *gin.Context) store.RefFilter {
	return store.RefFilter{
		Search: c.Query("search"),
		Page:   pageParam(c),
	}
}

// CreateCategory handles POST /categories.
func (s *Server) CreateCategory(c *gin.Context) {
	var p categoryPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		fail(c, badRequest("malformed request body"))
		return
	}
	category, err := s.refs.CreateCategory(c.Request.Context(), actor(c), c.ClientIP(),
		service.CategoryInput{Name: strings.TrimSpace(p.Name), Description: p.Description})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// GetCategory handles GET /categories/:id.
func (s *Server) GetCategory(c *gin.Context) {
	category, err := s.refs.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// UpdateCategory handles PUT /categories/:id.
func (s *Server) UpdateCategory(c *gin.Context) {
	var p categoryPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		fail(c, badRequest("malformed request body"))
		return
	}
	category, err := s.refs.UpdateCategory(c.Request.Context(), actor(c), c.ClientIP(), c.Param("id"),
		service.CategoryInput{Name: strings.TrimSpace(p.Name), Description: p.Description})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// DeleteCategory handles DELETE /categories/:id.
func (s *Server) DeleteCategory(c *gin.Context) {
	if err := s.refs.DeleteCategory(c.Request.Context(), actor(c), c.ClientIP(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListCategories handles GET /categories.
func (s *Server) ListCategories(c *gin.Context) {
	items, info, err := s.refs.ListCategories(c.Request.Context(), refFilter(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pagedResponse{Items: items, Page: info})
}

// CreateSupplier handles POST /suppliers.
func (s *Server) CreateSupplier(c *gin.Context) {
	var p supplierPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		fail(c, badRequest("malformed request body"))
		return
	}
	supplier, err := s.refs.CreateSupplier(c.Request.Context(), actor(c), c.ClientIP(),
		service.SupplierInput{Name: strings.TrimSpace(p.Name), Contact: p.Contact, Notes: p.Notes})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, supplier)
}

// GetSupplier handles GET /suppliers/:id.
func (s *Server) GetSupplier(c *gin.Context) {
	supplier, err := s.refs.GetSupplier(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, supplier)
}

// UpdateSupplier handles PUT /suppliers/:id.
func (s *Server) UpdateSupplier(c *gin.Context) {
	var p supplierPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		fail(c, badRequest("malformed request body"))
		return
	}
	supplier, err := s.refs.UpdateSupplier(c.Request.Context(), actor(c), c.ClientIP(), c.Param("id"),
		service.SupplierInput{Name: strings.TrimSpace(p.Name), Contact: p.Contact, Notes: p.Notes})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, supplier)
}

// DeleteSupplier handles DELETE /suppliers/:id.
func (s *Server) DeleteSupplier(c *gin.Context) {
	if err := s.refs.DeleteSupplier(c.Request.Context(), actor(c), c.ClientIP(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListSuppliers handles GET /suppliers.
func (s *Server) ListSuppliers(c *gin.Context) {
	items, info, err := s.refs.ListSuppliers(c.Request.Context(), refFilter(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pagedResponse{Items: items, Page: info})
}
