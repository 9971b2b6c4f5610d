package main

import "github.com/gin-gonic/gin"

func errJSON(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{"error": msg})
}
