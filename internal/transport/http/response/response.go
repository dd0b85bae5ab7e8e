// Package response writes the JSON envelopes shared by handlers and middleware.
package response

import (
	"github.com/ErlanBelekov/velora-api/internal/i18n"
	"github.com/gin-gonic/gin"
)

// Writer renders localized error bodies. Details are only attached when
// exposeDetails is set, which config enables outside production.
type Writer struct {
	msgs          *i18n.Translator
	exposeDetails bool
}

func NewWriter(msgs *i18n.Translator, exposeDetails bool) *Writer {
	return &Writer{msgs: msgs, exposeDetails: exposeDetails}
}

// Error aborts the request with {"success": false, "error": <message>}.
// A non-nil cause is added as "details" when details are exposed.
func (w *Writer) Error(c *gin.Context, status int, key i18n.Key, cause error) {
	body := gin.H{"success": false, "error": w.msgs.T(key)}
	if cause != nil && w.exposeDetails {
		body["details"] = cause.Error()
	}
	c.AbortWithStatusJSON(status, body)
}

// OK writes {"success": true} merged with fields.
func OK(c *gin.Context, status int, fields gin.H) {
	body := gin.H{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(status, body)
}
