package handler

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

const maxUploadBytes = 10 << 20

var imageExtensions = map[string]string{
	"jpeg": ".jpg",
	"png":  ".png",
	"gif":  ".gif",
	"webp": ".webp",
}

// UploadImage 保存后台上传的图片并返回可公开访问的 URL。
// 文件类型由解码结果决定，不信任客户端声明的 Content-Type 与扩展名。
func (a *API) UploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Image file is required")
		return
	}
	if file.Size > maxUploadBytes {
		respondError(c, http.StatusBadRequest, "Image is too large")
		return
	}

	format, err := detectImageFormat(file)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Only image files are allowed")
		return
	}
	ext, ok := imageExtensions[format]
	if !ok {
		respondError(c, http.StatusBadRequest, "Only image files are allowed")
		return
	}

	if err := os.MkdirAll(a.deps.UploadDir, 0o755); err != nil {
		a.log.ErrorContext(c.Request.Context(), "create upload dir failed", "error", err)
		respondError(c, http.StatusInternalServerError, "Failed to upload image")
		return
	}

	name := fmt.Sprintf("%s-%s%s", time.Now().Format("20060102"), uuid.NewString(), ext)
	if err := c.SaveUploadedFile(file, filepath.Join(a.deps.UploadDir, name)); err != nil {
		a.log.ErrorContext(c.Request.Context(), "save upload failed", "error", err)
		respondError(c, http.StatusInternalServerError, "Failed to upload image")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": path.Join(a.deps.UploadURL, name)})
}

func detectImageFormat(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	_, format, err := image.DecodeConfig(src)
	if err != nil {
		return "", err
	}
	return format, nil
}
