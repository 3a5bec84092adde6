package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindBodyWith(dst, binding.JSON); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

// resolveID 依次从 JSON 请求体、路径参数、查询参数中读取 id
func resolveID(c *gin.Context, fromBody bool) string {
	if fromBody {
		var body struct {
			ID string `json:"id"`
		}
		if err := c.ShouldBindBodyWith(&body, binding.JSON); err == nil {
			if id := strings.TrimSpace(body.ID); id != "" {
				return id
			}
		}
	}
	if id := strings.TrimSpace(c.Param("id")); id != "" {
		return id
	}
	return strings.TrimSpace(c.Query("id"))
}

func wantsHTML(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}

func userPayload(id, email, name string) gin.H {
	return gin.H{
		"id":    id,
		"email": email,
		"name":  name,
	}
}
