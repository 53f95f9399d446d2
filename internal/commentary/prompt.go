package commentary

import (
	"fmt"

	"github.com/goccy/go-json"
)

const systemPrompt = "You are a witty music analyst. Write punchy, affectionate commentary. " +
	"No cringe. Avoid moralizing. Keep it concise."

const userPromptTemplate = `
Here are stats from my Spotify listening history. Create:
1) A 1-sentence tagline (funny, accurate)
2) A short paragraph (80-140 words) describing my listening personality
3) 3 quirky superlatives (like awards), each with a short reason

Stats (JSON):
%s
`

// userPrompt embeds the report as indented JSON.
func userPrompt(report any) (string, error) {
	stats, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}
	return fmt.Sprintf(userPromptTemplate, stats), nil
}
