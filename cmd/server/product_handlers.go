package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/davilamx/comandas/internal/product"
)

// GET /products        → full catalog
// GET /products?id=X   → one product
func listProductsHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := c.Query("id"); id != "" {
			p, err := repo.GetByID(c.Request.Context(), id)
			if err != nil {
				errJSON(c, http.StatusNotFound, "product not found")
				return
			}
			c.JSON(http.StatusOK, p)
			return
		}
		items, err := repo.List(c.Request.Context())
		if err != nil {
			log.Printf("[products] list: %v", err)
			errJSON(c, http.StatusInternalServerError, "internal error")
			return
		}
		if items == nil {
			items = []product.Product{}
		}
		c.JSON(http.StatusOK, items)
	}
}

func createProductHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req product.CreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errJSON(c, http.StatusBadRequest, "invalid json")
			return
		}
		if req.Name == "" || req.Category == "" {
			errJSON(c, http.StatusBadRequest, "name and category are required")
			return
		}
		available := true
		if req.Available != nil {
			available = *req.Available
		}
		p := &product.Product{
			ID:          uuid.NewString(),
			Name:        req.Name,
			Category:    req.Category,
			Description: req.Description,
			Price:       req.Price,
			Sizes:       req.Sizes,
			Extras:      req.Extras,
			Flavors:     req.Flavors,
			Options:     req.Options,
			Available:   available,
			Image:       req.Image,
		}
		if err := repo.Create(c.Request.Context(), p); err != nil {
			log.Printf("[products] create: %v", err)
			errJSON(c, http.StatusInternalServerError, "internal error")
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

// PUT /products — partial update by id in body; nil fields keep their
// current value.
func updateProductHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req product.UpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errJSON(c, http.StatusBadRequest, "invalid json")
			return
		}
		if req.ID == "" {
			errJSON(c, http.StatusBadRequest, "id is required")
			return
		}
		p, err := repo.GetByID(c.Request.Context(), req.ID)
		if err != nil {
			errJSON(c, http.StatusNotFound, "product not found")
			return
		}
		if req.Name != nil {
			p.Name = *req.Name
		}
		if req.Category != nil {
			p.Category = *req.Category
		}
		if req.Description != nil {
			p.Description = *req.Description
		}
		if req.Price != nil {
			p.Price = req.Price
		}
		if req.Sizes != nil {
			p.Sizes = *req.Sizes
		}
		if req.Extras != nil {
			p.Extras = *req.Extras
		}
		if req.Flavors != nil {
			p.Flavors = *req.Flavors
		}
		if req.Options != nil {
			p.Options = req.Options
		}
		if req.Available != nil {
			p.Available = *req.Available
		}
		if req.Image != nil {
			p.Image = *req.Image
		}
		if err := repo.Update(c.Request.Context(), p); err != nil {
			log.Printf("[products] update: %v", err)
			errJSON(c, http.StatusInternalServerError, "internal error")
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func deleteProductHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Query("id")
		if id == "" {
			errJSON(c, http.StatusBadRequest, "id is required")
			return
		}
		ok, err := repo.Delete(c.Request.Context(), id)
		if err != nil {
			log.Printf("[products] delete: %v", err)
			errJSON(c, http.StatusInternalServerError, "internal error")
			return
		}
		if !ok {
			errJSON(c, http.StatusNotFound, "product not found")
			return
		}
		c.Status(http.StatusNoContent)
	}
}
