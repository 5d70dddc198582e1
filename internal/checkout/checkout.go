// Package checkout plays the scripted payment sequence shown to the
// shopper and then places the order exactly once.
package checkout

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/crimson-storefront/internal/model"
)

// Method is the payment method picked at checkout.
type Method string

const (
	MethodCard       Method = "card"
	MethodUPI        Method = "upi"
	MethodNetBanking Method = "netbanking"
	MethodCOD        Method = "cod"
)

// ParseMethod maps user input to a Method, defaulting to card.
func ParseMethod(s string) Method {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case MethodUPI, MethodNetBanking, MethodCOD:
		return m
	}
	return MethodCard
}

var (
	onlineScript = []string{
		"Verifying Crimson credentials...",
		"Connecting to Bank Gateway...",
		"Securing transaction layer...",
		"Validating payment tokens...",
		"Finalizing Crimson Order...",
	}
	codScript = []string{
		"Verifying serviceability...",
		"Confirming address availability...",
		"Securing order allocation...",
		"Scheduling priority dispatch...",
		"Finalizing Crimson Order...",
	}
)

// Script returns the status messages for m.
func Script(m Method) []string {
	if m == MethodCOD {
		return append([]string(nil), codScript...)
	}
	return append([]string(nil), onlineScript...)
}

// ErrNotPlaced is returned when the store refuses the order (empty cart or
// nobody signed in).
var ErrNotPlaced = errors.New("checkout: order not placed")

// Placer places the current cart as an order.  *store.Store satisfies it.
type Placer interface {
	PlaceOrder() (model.Order, bool)
}

// Step is one progress update.
type Step struct {
	Message string
	Percent int
}

// Runner paces the script.
type Runner struct {
	Interval time.Duration // between messages
	Pause    time.Duration // after the last message, before placing
}

// DefaultRunner uses the storefront's timings.
func DefaultRunner() Runner {
	return Runner{Interval: 800 * time.Millisecond, Pause: time.Second}
}

// Run emits every step of m's script to progress, waits for the final
// pause and calls PlaceOrder once.  Cancelling ctx before that point
// abandons the checkout without placing anything.
func (r Runner) Run(ctx context.Context, m Method, p Placer, progress func(Step)) (model.Order, error) {
	script := Script(m)
	for i, msg := range script {
		if err := sleep(ctx, r.Interval); err != nil {
			return model.Order{}, err
		}
		if progress != nil {
			progress(Step{Message: msg, Percent: (i + 1) * 100 / len(script)})
		}
	}
	if err := sleep(ctx, r.Pause); err != nil {
		return model.Order{}, err
	}
	o, ok := p.PlaceOrder()
	if !ok {
		return model.Order{}, ErrNotPlaced
	}
	return o, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
