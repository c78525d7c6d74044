// Package paymenttest provides an in-memory payment processor for tests.
package paymenttest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	dompay "github.com/Zhima-Mochi/minishop-payments/internal/domain/payment"
)

// Processor records every call and answers with deterministic ids.
// ConstructEvent accepts the literal Signature and decodes payload as {id,type,data:{object:{...}}}.
type Processor struct {
	mu sync.Mutex

	Signature string
	Err       error

	Customers []dompay.CustomerParams
	Intents   []dompay.IntentParams
	Sessions  []dompay.SessionParams
}

func New() *Processor {
	return &Processor{Signature: "valid"}
}

func (p *Processor) CreateCustomer(_ context.Context, params dompay.CustomerParams) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return "", p.Err
	}
	p.Customers = append(p.Customers, params)
	return fmt.Sprintf("cus_%d", len(p.Customers)), nil
}

func (p *Processor) CreatePaymentIntent(_ context.Context, params dompay.IntentParams) (*dompay.Intent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return nil, p.Err
	}
	p.Intents = append(p.Intents, params)
	id := fmt.Sprintf("pi_%d", len(p.Intents))
	return &dompay.Intent{ID: id, ClientSecret: id + "_secret"}, nil
}

func (p *Processor) CreateCheckoutSession(_ context.Context, params dompay.SessionParams) (*dompay.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return nil, p.Err
	}
	p.Sessions = append(p.Sessions, params)
	id := fmt.Sprintf("cs_test_%d", len(p.Sessions))
	return &dompay.Session{
		ID:        id,
		URL:       "https://checkout.example.com/pay/" + id,
		ExpiresAt: params.ExpiresAt,
	}, nil
}

func (p *Processor) ConstructEvent(payload []byte, signature string) (*dompay.Event, error) {
	if signature != p.Signature {
		return nil, fmt.Errorf("%w: no signatures found matching the expected signature for payload", dompay.ErrSignatureInvalid)
	}
	var raw struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Data struct {
			Object struct {
				ID            string            `json:"id"`
				Metadata      map[string]string `json:"metadata"`
				LatestCharge  string            `json:"latest_charge"`
				PaymentIntent string            `json:"payment_intent"`
			} `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", dompay.ErrSignatureInvalid, err)
	}
	obj := raw.Data.Object
	return &dompay.Event{
		ID:   raw.ID,
		Type: dompay.EventType(raw.Type),
		Object: dompay.Object{
			ID:            obj.ID,
			Metadata:      obj.Metadata,
			LatestCharge:  obj.LatestCharge,
			PaymentIntent: obj.PaymentIntent,
		},
	}, nil
}

// Calls returns how many remote create operations were issued.
func (p *Processor) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Customers) + len(p.Intents) + len(p.Sessions)
}

// EventPayload builds a webhook body in the processor's wire shape.
func EventPayload(id string, typ dompay.EventType, object map[string]any) []byte {
	b, err := json.Marshal(map[string]any{
		"id":      id,
		"object":  "event",
		"type":    string(typ),
		"created": time.Now().Unix(),
		"data":    map[string]any{"object": object},
	})
	if err != nil {
		panic(err)
	}
	return b
}
