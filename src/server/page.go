package server

import (
	"bytes"
	_ "embed"
	"html/template"
	"net/http"

	"market-dashboard/src/models"

	"github.com/gin-gonic/gin"
)

//go:embed templates/index.html
var indexHTML string

var pageTemplate = template.Must(template.New("dashboard").Parse(indexHTML))

type pageData struct {
	Title      string
	AssetClass string
	Response   *models.MDashboardResponse
	Error      string
}

// -----------------------------------------------------------------------------

// getPage renders the dashboard page. The charts are drawn client side from
// the same response the API returns.
func (s *DashboardServer) getPage(c *gin.Context) {
	assetClass := c.Query("asset_class")
	if assetClass == "" {
		assetClass = s.Renderer.DefaultAssetClass
	}

	data := pageData{Title: "Live Market Dashboard", AssetClass: assetClass}
	status := http.StatusOK

	resp, err := s.Renderer.Render(c.Request.Context(), assetClass)
	if err != nil {
		s.Errors.Handle(err, "page render")
		status = statusForError(err)
		data.Error = err.Error()
	} else {
		s.lastRender.Store(resp.Timestamp)
		data.Response = resp
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		s.Logger.Error("Template exec error: %v", err)
		c.String(http.StatusInternalServerError, "template error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}
