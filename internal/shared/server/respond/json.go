package respond

import (
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// OK writes a 200 OK JSON response.
func OK(c *gin.Context, payload any) {
	JSON(c, http.StatusOK, payload)
}

// Attachment writes body as a download named fileName.
func Attachment(c *gin.Context, fileName, contentType string, body []byte) {
	c.Header("Content-Disposition", disposition(fileName))
	c.Data(http.StatusOK, contentType, body)
}

// AttachmentStream copies r to the response as a download named fileName.
func AttachmentStream(c *gin.Context, fileName, contentType string, r io.Reader) {
	c.Header("Content-Disposition", disposition(fileName))
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, r)
}

// disposition quotes or RFC 2231-encodes the name; accented franchise names
// need the latter.
func disposition(fileName string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": fileName}); v != "" {
		return v
	}
	return `attachment; filename="download"`
}
