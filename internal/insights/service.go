package insights

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"ledger/internal/cache"
)

const generateTimeout = 90 * time.Second

// Service deduplicates identical prompts in flight and remembers answers by
// the hash of the prompt.
type Service struct {
	gen    Generator
	cache  *cache.LRUCache[string]
	group  singleflight.Group
	logger *slog.Logger
}

func NewService(gen Generator, c *cache.LRUCache[string], logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{gen: gen, cache: c, logger: logger}
}

// Insight returns advice for req. Concurrent callers with the same data share
// one upstream call; a caller that gives up does not cancel it for the others.
func (s *Service) Insight(ctx context.Context, req Request) (string, error) {
	prompt, err := BuildPrompt(req)
	if err != nil {
		return "", err
	}
	key := promptKey(prompt)

	if s.cache != nil {
		if text, ok := s.cache.Get(key); ok {
			s.logger.DebugContext(ctx, "Insight served from cache", "month", req.Month)
			return text, nil
		}
	}

	ch := s.group.DoChan(key, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), generateTimeout)
		defer cancel()

		start := time.Now()
		text, err := s.gen.Generate(callCtx, prompt)
		if err != nil {
			s.logger.ErrorContext(ctx, "Insight generation failed", "error", err)
			return "", err
		}
		s.logger.InfoContext(ctx, "Insight generated", "month", req.Month, "duration", time.Since(start))
		if s.cache != nil && text != NoInsight {
			s.cache.Set(key, text)
		}
		return text, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func promptKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}
