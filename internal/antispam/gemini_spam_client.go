package antispam

import (
	"context"
	"fmt"
	"log"
	"time"

	"google.golang.org/genai"
)

// SpamThreshold is the score above which a message is flagged.
const SpamThreshold = 80.0

type SpamClient struct {
	model string
}

func NewSpamClient(model string) *SpamClient {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &SpamClient{model: model}
}

// Score asks Gemini how likely a contact-form message is spam, on a
// 0-100 scale. The check is advisory; callers must treat a failure as
// "not spam" rather than rejecting the submission.
func (c *SpamClient) Score(ctx context.Context, subject, body string) (float64, error) {
	start := time.Now()
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		log.Printf("[spam] stage=client_init err=%v", err)
		return 0, err
	}

	prompt := `You rate contact-form messages for spam. Given a subject and
message, answer with a single number from 0 to 100 where 0 means
certainly legitimate and 100 means certainly spam (unsolicited
advertising, link farms, scams, gibberish). Answer with the number only,
no words, no punctuation.`

	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		genai.NewPartFromText(fmt.Sprintf("Subject: %s\nMessage: %s", subject, body)),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}
	temp := float32(0)
	config := &genai.GenerateContentConfig{
		Temperature: &temp,
	}
	res, err := client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		log.Printf("[spam] stage=gemini_fail model=%s err=%v", c.model, err)
		return 0, fmt.Errorf("gemini generate: %w", err)
	}
	rawText := res.Text()
	score, err := ParseScore(rawText)
	if err != nil {
		log.Printf("[spam] stage=parse_fail len=%d err=%v", len(rawText), err)
		return 0, err
	}
	log.Printf("[spam] stage=done model=%s score=%.1f totalMs=%d", c.model, score, time.Since(start).Milliseconds())
	return score, nil
}
