package handler

import "ProductJudge/internal/domain"

type AnalyzeRequest struct {
	URL      string   `json:"url"`
	Keywords []string `json:"keywords"`
}

type ArgumentResponse struct {
	Text  string `json:"text"`
	Score int    `json:"score"`
}

type AnalyzeResponse struct {
	URL       string             `json:"url"`
	Keywords  []string           `json:"keywords"`
	Verdict   string             `json:"verdict"`
	ProScore  int                `json:"pro_score"`
	ConScore  int                `json:"con_score"`
	Gap       int                `json:"gap"`
	Rationale string             `json:"rationale"`
	Cited     []ArgumentResponse `json:"cited"`
	Pros      []ArgumentResponse `json:"pros"`
	Cons      []ArgumentResponse `json:"cons"`
	Source    string             `json:"source"`
	ElapsedMs int64              `json:"elapsed_ms"`
}

func toArgumentResponses(args []domain.Argument) []ArgumentResponse {
	res := make([]ArgumentResponse, len(args))
	for i, a := range args {
		res[i] = ArgumentResponse{Text: a.Text, Score: a.Score}
	}
	return res
}

func toAnalyzeResponse(r domain.Report) AnalyzeResponse {
	return AnalyzeResponse{
		URL:       r.Request.URL,
		Keywords:  r.Request.Keywords,
		Verdict:   string(r.Decision.Verdict),
		ProScore:  r.Decision.ProScore,
		ConScore:  r.Decision.ConScore,
		Gap:       r.Decision.Gap,
		Rationale: r.Decision.Rationale,
		Cited:     toArgumentResponses(r.Decision.Cited),
		Pros:      toArgumentResponses(r.Pros.Arguments),
		Cons:      toArgumentResponses(r.Cons.Arguments),
		Source:    r.Source,
		ElapsedMs: r.Elapsed.Milliseconds(),
	}
}
