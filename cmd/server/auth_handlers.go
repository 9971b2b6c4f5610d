package main

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/davilamx/comandas/internal/httpx"
	"github.com/davilamx/comandas/internal/user"
)

func loginHandler(repo user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req user.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
			errJSON(c, http.StatusBadRequest, "username and password are required")
			return
		}
		u, err := repo.GetByUsername(c.Request.Context(), req.Username)
		if err != nil || !user.CheckPassword(u.PasswordHash, req.Password) {
			errJSON(c, http.StatusUnauthorized, "invalid credentials")
			return
		}
		s := sessions.Default(c)
		s.Set(httpx.SessionUserKey, u.ID)
		s.Set(httpx.SessionRoleKey, string(u.Role))
		if err := s.Save(); err != nil {
			log.Printf("[auth] session save: %v", err)
			errJSON(c, http.StatusInternalServerError, "internal error")
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

func logoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessions.Default(c)
		s.Clear()
		_ = s.Save()
		c.Status(http.StatusNoContent)
	}
}

func listUsersHandler(repo user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := repo.List(c.Request.Context())
		if err != nil {
			log.Printf("[users] list: %v", err)
			errJSON(c, http.StatusInternalServerError, "internal error")
			return
		}
		if items == nil {
			items = []user.User{}
		}
		c.JSON(http.StatusOK, items)
	}
}

func createUserHandler(repo user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req user.CreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errJSON(c, http.StatusBadRequest, "invalid json")
			return
		}
		if req.Username == "" || req.Password == "" {
			errJSON(c, http.StatusBadRequest, "username and password are required")
			return
		}
		if !req.Role.Valid() {
			errJSON(c, http.StatusBadRequest, "invalid role")
			return
		}
		hash, err := user.HashPassword(req.Password)
		if err != nil {
			log.Printf("[users] hash: %v", err)
			errJSON(c, http.StatusInternalServerError, "internal error")
			return
		}
		u := &user.User{
			ID:           uuid.NewString(),
			Username:     req.Username,
			Name:         req.Name,
			Role:         req.Role,
			PasswordHash: hash,
		}
		if err := repo.Create(c.Request.Context(), u); err != nil {
			if errors.Is(err, user.ErrAlreadyExist) {
				errJSON(c, http.StatusBadRequest, "username already exists")
				return
			}
			log.Printf("[users] create: %v", err)
			errJSON(c, http.StatusInternalServerError, "internal error")
			return
		}
		c.JSON(http.StatusCreated, u)
	}
}

func deleteUserHandler(repo user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Query("id")
		if id == "" {
			errJSON(c, http.StatusBadRequest, "id is required")
			return
		}
		ok, err := repo.Delete(c.Request.Context(), id)
		if err != nil {
			log.Printf("[users] delete: %v", err)
			errJSON(c, http.StatusInternalServerError, "internal error")
			return
		}
		if !ok {
			errJSON(c, http.StatusNotFound, "user not found")
			return
		}
		c.Status(http.StatusNoContent)
	}
}
