package usecase

import (
	"context"
	"sync"

	authdomain "repairhub-backend/internal/auth/domain"
	"repairhub-backend/internal/notification/domain"
	pushdomain "repairhub-backend/internal/pushtoken/domain"
	"repairhub-backend/pkg/apperr"
	"repairhub-backend/pkg/fcm"
	"repairhub-backend/pkg/logger"
	"repairhub-backend/pkg/metrics"
)

// Sender delivers one message to one device token. *fcm.Client implements it.
type Sender interface {
	SendToDevice(ctx context.Context, token string, n fcm.NotificationData) (string, error)
}

// TokenStore is the part of the token registry the dispatcher needs.
type TokenStore interface {
	GetActiveTokens(ctx context.Context, userID string, userType authdomain.Role) ([]pushdomain.PushToken, error)
	DeactivateToken(ctx context.Context, token string) error
	TouchTokens(ctx context.Context, tokens []string) error
}

// PushDispatcher sends a push to every active device of a recipient.
type PushDispatcher interface {
	Send(ctx context.Context, userID string, userType authdomain.Role, msg domain.PushMessage) (*domain.DispatchResult, error)
}

type dispatcher struct {
	sender Sender
	tokens TokenStore
}

func NewDispatcher(sender Sender, tokens TokenStore) PushDispatcher {
	return &dispatcher{sender: sender, tokens: tokens}
}

// Send fans out one provider call per active token and waits for all of them.
// Having no tokens is not an error.
func (d *dispatcher) Send(ctx context.Context, userID string, userType authdomain.Role, msg domain.PushMessage) (*domain.DispatchResult, error) {
	tokens, err := d.tokens.GetActiveTokens(ctx, userID, userType)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.ErrDatabase, "failed to load push tokens")
	}

	entry := log.WithField("user_id", userID).WithField("user_type", userType)
	result := &domain.DispatchResult{Results: make([]domain.TokenResult, len(tokens))}
	if len(tokens) == 0 {
		entry.Debug("no active push tokens")
		return result, nil
	}

	payload := fcm.NotificationData{
		Title:        msg.Title,
		Body:         msg.Body,
		Data:         msg.Data,
		ClickAction:  msg.ClickAction,
		HighPriority: msg.HighPriority,
	}

	var wg sync.WaitGroup
	for i, t := range tokens {
		wg.Add(1)
		go func(i int, token string) {
			defer wg.Done()
			res := domain.TokenResult{Token: token}
			id, err := d.sender.SendToDevice(ctx, token, payload)
			if err != nil {
				res.Error = err.Error()
				res.Unregistered = fcm.IsTokenNotRegistered(err)
			} else {
				res.Success = true
				res.MessageID = id
			}
			// Each goroutine owns its slot.
			result.Results[i] = res
		}(i, t.Token)
	}
	wg.Wait()

	for _, res := range result.Results {
		metrics.PushSend(res.Success)
		if res.Success {
			result.SuccessCount++
		} else {
			result.FailureCount++
			result.FailedTokens = append(result.FailedTokens, res.Token)
		}
	}

	d.applyRecoveryPolicy(ctx, result)

	entry.WithField("success", result.SuccessCount).WithField("failure", result.FailureCount).Info("push dispatched")
	return result, nil
}

// applyRecoveryPolicy is the only failure handling for push delivery: tokens the provider no
// longer recognises are deactivated once, delivered tokens are stamped as used. Nothing is retried.
func (d *dispatcher) applyRecoveryPolicy(ctx context.Context, result *domain.DispatchResult) {
	deactivated := 0
	for _, token := range result.Deactivated() {
		if err := d.tokens.DeactivateToken(ctx, token); err != nil {
			log.WithError(err).WithField("token", logger.ShortToken(token)).Error("failed to deactivate unregistered token")
			continue
		}
		deactivated++
		log.WithField("token", logger.ShortToken(token)).Info("deactivated unregistered token")
	}
	metrics.TokenDeactivated("unregistered_by_provider", deactivated)

	if delivered := result.Succeeded(); len(delivered) > 0 {
		if err := d.tokens.TouchTokens(ctx, delivered); err != nil {
			log.WithError(err).Warn("failed to stamp last used time on push tokens")
		}
	}
}
