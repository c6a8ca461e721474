// Package identity publishes who is signed in. Account management itself
// (sign-up, sign-in, token issuance) lives outside this module; the client
// only learns about an identity through a bearer token and reacts to
// login/logout transitions.
package identity

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/MKhiriev/go-note-keeper/internal/utils"
	"github.com/MKhiriev/go-note-keeper/models"
)

var ErrInvalidToken = errors.New("invalid identity token")

// Provider notifies subscribers when the signed-in identity changes.
type Provider interface {
	// Current returns the signed-in identity or nil.
	Current() *models.Identity

	// OnIdentityChange registers fn. fn receives the new identity on login
	// and nil on logout. The returned function removes the subscription.
	OnIdentityChange(fn func(*models.Identity)) (unsubscribe func())
}

// FromToken builds an identity from a JWT issued by the account service.
// The owner is the token's "sub" claim.
func FromToken(token string) (*models.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", ErrInvalidToken)
	}
	// tokens copied from an Authorization header keep their scheme
	if strings.Contains(token, " ") {
		raw, err := utils.ParseBearerToken(token)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
		}
		token = raw
	}

	sub, err := utils.SubjectFromToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	return &models.Identity{OwnerID: sub, Token: token}, nil
}

// Broker is the in-process [Provider]. Subscribers are called synchronously
// in registration order, outside the broker's lock.
type Broker struct {
	mu          sync.Mutex
	current     *models.Identity
	subscribers map[int]func(*models.Identity)
	order       []int
	nextID      int
}

func NewBroker() *Broker {
	return &Broker{subscribers: make(map[int]func(*models.Identity))}
}

func (b *Broker) Current() *models.Identity {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

func (b *Broker) OnIdentityChange(fn func(*models.Identity)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subscribers[id] = fn
	b.order = append(b.order, id)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subscribers, id)
			for i, v := range b.order {
				if v == id {
					b.order = append(b.order[:i], b.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Login parses token and publishes the identity it carries.
func (b *Broker) Login(token string) (*models.Identity, error) {
	id, err := FromToken(token)
	if err != nil {
		return nil, err
	}

	b.publish(id)
	return id, nil
}

// Logout publishes nil. It is a no-op when nobody is signed in.
func (b *Broker) Logout() {
	if b.Current() == nil {
		return
	}
	b.publish(nil)
}

func (b *Broker) publish(id *models.Identity) {
	b.mu.Lock()
	b.current = id
	fns := make([]func(*models.Identity), 0, len(b.order))
	for _, sid := range b.order {
		fns = append(fns, b.subscribers[sid])
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(id)
	}
}
