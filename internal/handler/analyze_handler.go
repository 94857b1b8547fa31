package handler

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ProductJudge/internal/domain"
	"ProductJudge/internal/usecase"
)

type ProductAnalyzer interface {
	Analyze(ctx context.Context, req domain.Request) (domain.Report, error)
}

type AnalyzeHandler struct {
	analyzer ProductAnalyzer
	logger   *slog.Logger
}

func NewAnalyzeHandler(analyzer ProductAnalyzer, logger *slog.Logger) *AnalyzeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyzeHandler{analyzer: analyzer, logger: logger}
}

// Register mounts the form, the JSON API and the health probe.
func (h *AnalyzeHandler) Register(r *gin.Engine) {
	r.SetHTMLTemplate(pageTemplate)
	r.GET("/", h.GetForm)
	r.POST("/analyze", h.PostForm)
	r.POST("/api/analyze", h.PostAnalyze)
	r.GET("/health", h.GetHealth)
}

type pageData struct {
	URL      string
	Keywords string
	Error    string
	Result   *AnalyzeResponse
}

func (h *AnalyzeHandler) GetForm(c *gin.Context) {
	c.HTML(http.StatusOK, "index", pageData{})
}

func (h *AnalyzeHandler) PostForm(c *gin.Context) {
	rawKeywords := c.PostForm("keywords")
	req := domain.Request{
		URL:      strings.TrimSpace(c.PostForm("url")),
		Keywords: domain.ParseKeywords(rawKeywords),
	}
	data := pageData{URL: req.URL, Keywords: rawKeywords}

	report, err := h.analyzer.Analyze(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("error analyzing product", "url", req.URL, "error", err)
		data.Error = usecase.UserMessage(err)
		c.HTML(statusFor(err), "index", data)
		return
	}

	res := toAnalyzeResponse(report)
	data.Result = &res
	c.HTML(http.StatusOK, "index", data)
}

func (h *AnalyzeHandler) PostAnalyze(c *gin.Context) {
	var body AnalyzeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	keywords := make([]string, 0, len(body.Keywords))
	for _, k := range body.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	req := domain.Request{URL: strings.TrimSpace(body.URL), Keywords: keywords}

	report, err := h.analyzer.Analyze(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("error analyzing product", "url", req.URL, "error", err)
		c.JSON(statusFor(err), gin.H{"error": usecase.UserMessage(err)})
		return
	}

	c.JSON(http.StatusOK, toAnalyzeResponse(report))
}

func (h *AnalyzeHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func statusFor(err error) int {
	switch usecase.Classify(err) {
	case usecase.FailureInput:
		return http.StatusBadRequest
	case usecase.FailureFetch:
		return http.StatusBadGateway
	case usecase.FailureAnalysis:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

var pageTemplate = template.Must(template.New("index").Funcs(template.FuncMap{
	"isBuy": func(v string) bool { return v == string(domain.VerdictBuy) },
}).Parse(`<!doctype html>
<html>
<head>
  <meta charset="utf-8">
  <title>Product Purchase Decision Maker</title>
  <style>
    body { font-family: sans-serif; max-width: 720px; margin: 2rem auto; }
    label { display: block; margin-top: 1rem; }
    input { width: 100%; padding: .4rem; }
    .box { padding: 1rem; margin-top: 1.5rem; border-radius: 6px; }
    .buy { background: #e6f6e6; border: 1px solid #3a3; }
    .skip { background: #fbe9e9; border: 1px solid #c33; }
  </style>
</head>
<body>
  <h1>Product Purchase Decision Maker</h1>
  <p>Enter the product details below to get a decision on whether to buy or skip the product.</p>
  <form method="post" action="/analyze">
    <label>Product URL <input name="url" value="{{.URL}}"></label>
    <label>Keywords (comma-separated) <input name="keywords" value="{{.Keywords}}"></label>
    <p><button type="submit">Analyze Product</button></p>
  </form>
  {{with .Error}}<div class="box skip">{{.}}</div>{{end}}
  {{with .Result}}
  <div class="box {{if isBuy .Verdict}}buy{{else}}skip{{end}}">
    <h2>Decision: {{.Verdict}}</h2>
    <p>Pro {{.ProScore}} · Con {{.ConScore}} · Gap {{.Gap}}</p>
    <p>Reasoning: {{.Rationale}}</p>
    <h3>For</h3>
    <ul>{{range .Pros}}<li>{{.Text}} ({{.Score}})</li>{{else}}<li>none</li>{{end}}</ul>
    <h3>Against</h3>
    <ul>{{range .Cons}}<li>{{.Text}} ({{.Score}})</li>{{else}}<li>none</li>{{end}}</ul>
  </div>
  {{end}}
</body>
</html>`))
