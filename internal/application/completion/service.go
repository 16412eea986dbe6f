package completion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/quest/internal/domain"
	"github.com/doeshing/quest/internal/ports"
)

// Service runs one completion call and keeps a record of it.
type Service struct {
	Completer    ports.Completer
	HistoryStore ports.HistoryRepository
	Logger       ports.Logger

	// now is overridden in tests.
	now func() time.Time
}

// Complete forwards messages to the completer exactly once. The completer's
// error is returned wrapped; a failed history write is only logged.
func (s *Service) Complete(ctx context.Context, messages []domain.Message) (domain.CompletionResult, error) {
	if s.Completer == nil || s.Logger == nil {
		return domain.CompletionResult{}, errors.New("completion.Service dependencies not satisfied")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	id := uuid.NewString()
	started := s.clock()
	s.Logger.Debug("requesting completion", map[string]interface{}{
		"id":       id,
		"model":    domain.CompletionModel,
		"messages": len(messages),
	})

	s.warnUnknownRoles(id, messages)

	content, err := s.Completer.GetCompletion(ctx, messages)
	elapsed := s.clock().Sub(started)

	s.record(domain.HistoryRecord{
		ID:        id,
		Timestamp: started,
		Model:     domain.CompletionModel,
		Messages:  messages,
		Reply:     content,
		Success:   err == nil,
		Error:     errorText(err),
		LatencyMS: elapsed.Milliseconds(),
	})

	if err != nil {
		s.Logger.Error("completion failed", err, map[string]interface{}{"id": id})
		return domain.CompletionResult{}, fmt.Errorf("get completion: %w", err)
	}

	s.Logger.Info("completion received", map[string]interface{}{
		"id":         id,
		"latency_ms": elapsed.Milliseconds(),
	})
	return domain.CompletionResult{
		ID:       id,
		Content:  content,
		Model:    domain.CompletionModel,
		Duration: elapsed,
	}, nil
}

// warnUnknownRoles logs roles outside system/user/assistant. They are still
// sent; the endpoint decides whether to accept them.
func (s *Service) warnUnknownRoles(id string, messages []domain.Message) {
	for i, msg := range messages {
		if msg.Role.Known() {
			continue
		}
		s.Logger.Warn("unknown message role", map[string]interface{}{
			"id":    id,
			"index": i,
			"role":  string(msg.Role),
		})
	}
}

func (s *Service) record(rec domain.HistoryRecord) {
	if s.HistoryStore == nil {
		return
	}
	if err := s.HistoryStore.Save(rec); err != nil {
		s.Logger.Warn("history save failed", map[string]interface{}{
			"id":    rec.ID,
			"error": err.Error(),
		})
	}
}

func (s *Service) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
