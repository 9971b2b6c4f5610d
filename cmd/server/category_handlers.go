package main

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/davilamx/comandas/internal/category"
	"github.com/davilamx/comandas/internal/product"
)

func listCategoriesHandler(repo category.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := repo.List(c.Request.Context())
		if err != nil {
			log.Printf("[categories] list: %v", err)
			errJSON(c, http.StatusInternalServerError, "internal error")
			return
		}
		if items == nil {
			items = []category.Category{}
		}
		c.JSON(http.StatusOK, items)
	}
}

func createCategoryHandler(repo category.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req category.CreateRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
			errJSON(c, http.StatusBadRequest, "name is required")
			return
		}
		cat := &category.Category{ID: uuid.NewString(), Name: req.Name}
		if err := repo.Create(c.Request.Context(), cat); err != nil {
			if errors.Is(err, category.ErrDuplicate) {
				errJSON(c, http.StatusBadRequest, "category already exists")
				return
			}
			log.Printf("[categories] create: %v", err)
			errJSON(c, http.StatusInternalServerError, "internal error")
			return
		}
		c.JSON(http.StatusCreated, cat)
	}
}

// DELETE /categories?id=X — refuses when any product still references the
// category (by name), reporting the blocking count.
func deleteCategoryHandler(repo category.Repository, products product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Query("id")
		if id == "" {
			errJSON(c, http.StatusBadRequest, "id is required")
			return
		}
		cat, err := repo.GetByID(c.Request.Context(), id)
		if err != nil {
			errJSON(c, http.StatusNotFound, "category not found")
			return
		}
		n, err := products.CountInCategory(c.Request.Context(), cat.Name)
		if err != nil {
			log.Printf("[categories] count in use: %v", err)
			errJSON(c, http.StatusInternalServerError, "internal error")
			return
		}
		if n > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "category in use", "products": n})
			return
		}
		if _, err := repo.Delete(c.Request.Context(), id); err != nil {
			log.Printf("[categories] delete: %v", err)
			errJSON(c, http.StatusInternalServerError, "internal error")
			return
		}
		c.Status(http.StatusNoContent)
	}
}
