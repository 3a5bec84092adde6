package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetAbout 返回最近更新的“关于我”，没有记录时返回 null。
// 带 ?id= 时按 id 读取单条。
func (a *API) GetAbout(c *gin.Context) {
	if c.Query("id") != "" || c.Param("id") != "" {
		a.About.Get(c)
		return
	}

	view, err := a.deps.About.Current(c.Request.Context())
	if err != nil {
		a.About.fail(c, "fetch", "about", err)
		return
	}
	if view == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, view)
}
