package http

import (
	"html/template"
	"net/http"

	"go.uber.org/zap"
)

var statusPage = template.Must(template.New("status").Parse(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Code}} - {{.Title}}</title>
    <style>
      body {
        font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Arial, sans-serif;
        text-align: center;
        padding: 100px 20px;
        background: {{.Background}};
        color: white;
        margin: 0;
        min-height: 100vh;
        display: flex;
        align-items: center;
        justify-content: center;
      }
      .container { max-width: 600px; }
      h1 { font-size: 72px; margin: 0; }
      p { font-size: 20px; margin: 20px 0; }
      a { color: white; text-decoration: underline; }
    </style>
  </head>
  <body>
    <div class="container">
      <h1>{{.Code}}</h1>
      <p>{{.Title}}</p>
      <p>{{.Message}}</p>
      <a href="/">Go back home</a>
    </div>
  </body>
</html>
`))

type pageData struct {
	Code       int
	Title      string
	Message    string
	Background template.CSS
}

var (
	notFoundPage = pageData{
		Code:       http.StatusNotFound,
		Title:      "Short URL Not Found",
		Message:    "The short URL you're looking for doesn't exist.",
		Background: "linear-gradient(135deg, #667eea 0%, #764ba2 100%)",
	}
	expiredPage = pageData{
		Code:       http.StatusGone,
		Title:      "Link Expired",
		Message:    "This short URL has expired and is no longer available.",
		Background: "linear-gradient(135deg, #f093fb 0%, #f5576c 100%)",
	}
)

func (h *Handler) writePage(w http.ResponseWriter, page pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(page.Code)
	if err := statusPage.Execute(w, page); err != nil {
		h.logger.Error("failed to render page", zap.Int("status", page.Code), zap.Error(err))
	}
}
