package llm

import (
	"fmt"
	"strings"

	"ProductJudge/internal/domain"
)

const argumentFormat = `Output as JSON only, no other text:
{
  "arguments": [
    {"text": "one concrete statement about the product", "score": %s}
  ]
}`

const proSystemPrompt = `You are a product manager. Using only the product information provided, write the strongest positive arguments for why the product is worth buying.

Rules:
1. Each argument is one concrete statement grounded in the provided text
2. Give at most %d arguments, strongest first
3. Assign each argument a sentiment score from 0 to 100 (100 = overwhelmingly positive)
4. If the text contains nothing positive, return an empty "arguments" list

`

const conSystemPrompt = `You are a critic. Using only the product information provided, write the strongest negative arguments for why the product is not worth buying.

Rules:
1. Each argument is one concrete statement grounded in the provided text
2. Give at most %d arguments, strongest first
3. Assign each argument a sentiment score from -100 to 0 (-100 = overwhelmingly negative)
4. If the text contains nothing negative, return an empty "arguments" list

`

const rationaleSystemPrompt = `You are a product reviewer. A verdict has already been reached from sentiment scores; do not change it.
Explain the verdict in one short paragraph (at most four sentences) for a shopper.
Quote at least one of the listed arguments verbatim in double quotes.
Output the paragraph only, no headings or lists.`

func argumentSystemPrompt(p domain.Polarity, maxArgs int) string {
	if p == domain.Con {
		return fmt.Sprintf(conSystemPrompt, maxArgs) + fmt.Sprintf(argumentFormat, "-100..0")
	}
	return fmt.Sprintf(proSystemPrompt, maxArgs) + fmt.Sprintf(argumentFormat, "0..100")
}

func argumentUserPrompt(text string) string {
	return "Product information:\n" + text
}

func rationaleUserPrompt(req domain.Request, pros, cons domain.ArgumentSet, d domain.Decision) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Product URL: %s\nKeywords: %s\n", req.URL, strings.Join(req.Keywords, ", "))
	fmt.Fprintf(&b, "Verdict: %s\nPro score: %d, Con score: %d, Gap: %d\n", d.Verdict, d.ProScore, d.ConScore, d.Gap)
	b.WriteString("\nArguments for:\n")
	writeArguments(&b, pros)
	b.WriteString("\nArguments against:\n")
	writeArguments(&b, cons)
	return b.String()
}

func writeArguments(b *strings.Builder, set domain.ArgumentSet) {
	if set.Len() == 0 {
		b.WriteString("- none\n")
		return
	}
	for _, a := range set.Arguments {
		fmt.Fprintf(b, "- %s (score %d)\n", a.Text, a.Score)
	}
}
