package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/comparaprecos/backend/internal/domain"
	"golang.org/x/time/rate"
)

// Batch shape defaults. Sized so one prompt stays well inside the request
// and token limits of the gateway's free tier.
const (
	defaultBatchSizeA = 15
	defaultBatchSizeB = 30
	defaultBatchDelay = 200 * time.Millisecond
)

// jsonObjectRegex extracts the first JSON-object-shaped substring from the
// model's reply, which routinely wraps the payload in prose or code fences.
var jsonObjectRegex = regexp.MustCompile(`(?s)\{.*\}`)

// Config holds settings for the semantic matching client.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	BatchSizeA int
	BatchSizeB int
	BatchDelay time.Duration
}

// Client implements domain.SemanticMatcher against a chat-completions style
// gateway. It owns batching, pacing, and the wire format; every per-batch
// failure degrades to zero matches from that batch and is never escalated.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	model       string
	batchSizeA  int
	batchSizeB  int
	batchDelay  time.Duration
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a semantic matching client. Returns an error when no
// API key is configured; callers use that to disable the stage entirely.
func NewClient(config Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, domain.ErrAIUnavailable
	}
	if config.BatchSizeA <= 0 {
		config.BatchSizeA = defaultBatchSizeA
	}
	if config.BatchSizeB <= 0 {
		config.BatchSizeB = defaultBatchSizeB
	}
	if config.BatchDelay <= 0 {
		config.BatchDelay = defaultBatchDelay
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiKey:     config.APIKey,
		baseURL:    strings.TrimSuffix(config.BaseURL, "/"),
		model:      config.Model,
		batchSizeA: config.BatchSizeA,
		batchSizeB: config.BatchSizeB,
		batchDelay: config.BatchDelay,
		// One request per second with a small burst keeps a full comparison
		// run under typical gateway per-minute limits.
		rateLimiter: rate.NewLimiter(rate.Limit(1), 3),
	}, nil
}

// SetDebug enables request/response logging.
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// chat-completions wire types
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// matchPayload is the strict schema the model is instructed to reply with.
type matchPayload struct {
	Matches []struct {
		Idx1  int     `json:"idx1"`
		Idx2  int     `json:"idx2"`
		Score float64 `json:"score"`
	} `json:"matches"`
}

// ProposeMatches compares two product-name lists in batches and returns the
// union of all proposed equivalences, with indices mapped back into the full
// lists. The only returned errors are context cancellation; every other
// failure mode contributes an empty batch.
func (c *Client) ProposeMatches(ctx context.Context, listA, listB []string) ([]domain.MatchProposal, error) {
	var proposals []domain.MatchProposal
	first := true

	for offA := 0; offA < len(listA); offA += c.batchSizeA {
		endA := offA + c.batchSizeA
		if endA > len(listA) {
			endA = len(listA)
		}
		for offB := 0; offB < len(listB); offB += c.batchSizeB {
			endB := offB + c.batchSizeB
			if endB > len(listB) {
				endB = len(listB)
			}

			if !first {
				select {
				case <-ctx.Done():
					return proposals, ctx.Err()
				case <-time.After(c.batchDelay):
				}
			}
			first = false

			batch := c.compareBatch(ctx, listA[offA:endA], listB[offB:endB])
			if ctx.Err() != nil {
				return proposals, ctx.Err()
			}
			for _, p := range batch {
				proposals = append(proposals, domain.MatchProposal{
					IdxA:  p.IdxA + offA,
					IdxB:  p.IdxB + offB,
					Score: p.Score,
				})
			}
		}
	}

	return proposals, nil
}

// compareBatch issues one chat-completion call for a batch pair. Any failure
// (rate limiter, HTTP error, non-200, unparsable content) logs and returns
// nil, since the comparison must still succeed from the deterministic stages.
func (c *Client) compareBatch(ctx context.Context, namesA, namesB []string) []domain.MatchProposal {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil
	}

	reqBody, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildUserPrompt(namesA, namesB)},
		},
		Temperature: 0,
	})
	if err != nil {
		log.Printf("[AI] failed to marshal request: %v", err)
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		log.Printf("[AI] failed to create request: %v", err)
		return nil
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[AI] request failed: %v", err)
		return nil
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[AI] status %d: %s", resp.StatusCode, truncate(string(body), 200))
		return nil
	}

	var chat chatResponse
	if err := json.Unmarshal(body, &chat); err != nil {
		log.Printf("[AI] failed to decode response: %v", err)
		return nil
	}
	if chat.Error != nil {
		log.Printf("[AI] gateway error: %s", chat.Error.Message)
		return nil
	}
	if len(chat.Choices) == 0 {
		log.Printf("[AI] empty choices in response")
		return nil
	}

	proposals := parseMatchContent(chat.Choices[0].Message.Content, len(namesA), len(namesB))
	if c.debug {
		log.Printf("[AI] batch %dx%d -> %d proposals", len(namesA), len(namesB), len(proposals))
	}
	return proposals
}

// parseMatchContent pulls the JSON object out of the model's free-form reply
// and validates every tuple: indices in range, score within the accepted
// band. A reply that doesn't parse yields nothing.
func parseMatchContent(content string, lenA, lenB int) []domain.MatchProposal {
	raw := jsonObjectRegex.FindString(content)
	if raw == "" {
		return nil
	}

	var payload matchPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		log.Printf("[AI] unparsable match payload: %v", err)
		return nil
	}

	var proposals []domain.MatchProposal
	for _, m := range payload.Matches {
		if m.Idx1 < 0 || m.Idx1 >= lenA || m.Idx2 < 0 || m.Idx2 >= lenB {
			continue
		}
		if m.Score < 0.85 || m.Score > 1 {
			continue
		}
		proposals = append(proposals, domain.MatchProposal{IdxA: m.Idx1, IdxB: m.Idx2, Score: m.Score})
	}
	return proposals
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
