// Package dispatch issues generation requests across a pool of rate-limited
// API keys and reconciles every response with the task's answerability.
//
// The dispatcher owns the retry and rotation logic: transient failures are
// retried on the same key within a bounded budget, quota-exhausted keys are
// retired for the run, and when the rotation budget is spent a fixed
// fallback response keeps the batch moving. The only fatal condition is a
// pool with no attemptable keys left.
package dispatch

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ragbenchco/ragbench/pkg/keypool"
	"github.com/ragbenchco/ragbench/pkg/prompt"
	"github.com/ragbenchco/ragbench/pkg/task"
)

// ErrAllKeysExhausted indicates every key in the pool has spent its quota.
// Fatal for the batch: no further task can be attempted this run.
var ErrAllKeysExhausted = errors.New("all API keys exhausted")

const (
	// answerableTemperature biases toward synthesis from the passages.
	answerableTemperature = 0.3

	// refusalTemperature biases toward the templated refusal phrasing.
	refusalTemperature = 0.1

	// fallbackRefusal is returned when the rotation budget is spent on an
	// unanswerable task.
	fallbackRefusal = "I don't have the information needed to answer your question."

	// fallbackAnswer is returned when the rotation budget is spent on an
	// answerable task.
	fallbackAnswer = "Based on the available information, I can provide context on this topic."
)

// Completer is the per-key generation client. *groq.Client satisfies it.
type Completer interface {
	Complete(ctx context.Context, prompt string, temperature float64) (string, error)
}

// Dispatcher generates one response per task, rotating across keys.
type Dispatcher struct {
	clients  []Completer
	pool     *keypool.Pool
	policy   Policy
	enforcer *Enforcer
	logger   *zap.Logger
}

// New creates a Dispatcher over one client per key. The pool and client
// slice must be the same size and non-empty.
func New(clients []Completer, pool *keypool.Pool, policy Policy, logger *zap.Logger) (*Dispatcher, error) {
	if len(clients) == 0 {
		return nil, keypool.ErrEmptyPool
	}
	if len(clients) != pool.Size() {
		return nil, errors.New("client count does not match key pool size")
	}

	return &Dispatcher{
		clients:  clients,
		pool:     pool,
		policy:   policy,
		enforcer: NewEnforcer(),
		logger:   logger,
	}, nil
}

// Generate produces the final response text for a task. It never fails
// silently: the result is either an enforced model response, a fixed
// fallback once the rotation budget is spent, or ErrAllKeysExhausted when no
// key can even be attempted.
func (d *Dispatcher) Generate(ctx context.Context, conversation []task.Message, contexts []task.Passage, collection string) (string, error) {
	promptText, err := prompt.Build(conversation, contexts, collection)
	if err != nil {
		return "", err
	}

	answerable := len(contexts) > 0
	temperature := refusalTemperature
	if answerable {
		temperature = answerableTemperature
	}

	maxSwitches := d.pool.Size()
	for switches := 0; switches < maxSwitches; switches++ {
		keyIndex, ok := d.pool.NextAvailable()
		if !ok {
			d.logger.Error("no active API keys remain",
				zap.Int("pool_size", d.pool.Size()),
			)
			return "", ErrAllKeysExhausted
		}

		text, ok := d.attemptKey(ctx, keyIndex, promptText, temperature)
		if ok {
			return d.enforcer.Enforce(text, answerable), nil
		}

		d.pool.Advance()
		d.logger.Debug("rotating to next key",
			zap.Int("from_key", keyIndex),
			zap.Int("active_keys", d.pool.ActiveCount()),
		)
	}

	d.logger.Warn("rotation budget spent, returning fallback response",
		zap.Bool("answerable", answerable),
	)

	if answerable {
		return fallbackAnswer, nil
	}
	return fallbackRefusal, nil
}

// attemptKey runs the bounded per-key attempt loop. Quota errors retire the
// key immediately; rate limits back off between attempts; anything else gets
// a short pause and one more try. A rate-limited key that spends its budget
// is left active but is not revisited within this Generate call.
func (d *Dispatcher) attemptKey(ctx context.Context, keyIndex int, promptText string, temperature float64) (string, bool) {
	for attempt := 0; attempt < d.policy.MaxAttemptsPerKey; attempt++ {
		text, err := d.clients[keyIndex].Complete(ctx, promptText, temperature)
		if err == nil {
			return text, true
		}

		switch {
		case d.policy.IsQuotaExhausted(err):
			d.pool.MarkExhausted(keyIndex)
			d.logger.Warn("key quota exhausted for the run",
				zap.Int("key", keyIndex),
				zap.Int("active_keys", d.pool.ActiveCount()),
			)
			return "", false

		case d.policy.IsRateLimited(err):
			if attempt < d.policy.MaxAttemptsPerKey-1 {
				wait := d.policy.Backoff(attempt)
				d.logger.Debug("rate limited, backing off",
					zap.Int("key", keyIndex),
					zap.Duration("wait", wait),
				)
				time.Sleep(wait)
				continue
			}
			d.logger.Warn("key rate limited, trying next key",
				zap.Int("key", keyIndex),
			)
			return "", false

		default:
			d.logger.Warn("request failed",
				zap.Int("key", keyIndex),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			if attempt < d.policy.MaxAttemptsPerKey-1 {
				time.Sleep(d.policy.RetryDelay)
				continue
			}
			return "", false
		}
	}

	return "", false
}
