package remote

import (
	"time"

	"github.com/iliyamo/crimson-storefront/internal/model"
)

// The API is backed by a document-style store; records may carry a
// storage-assigned "_id" next to (or instead of) the business "id".  The
// wire types below accept both and project them into the single id the
// rest of the program sees.

type wireUser struct {
	model.User
	MongoID string `json:"_id,omitempty"`
}

func (w wireUser) canonical() model.User {
	u := w.User
	if u.ID == "" {
		u.ID = w.MongoID
	}
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	return u
}

type wireProduct struct {
	model.Product
	MongoID string `json:"_id,omitempty"`
}

func (w wireProduct) canonical() model.Product {
	p := w.Product
	if p.ID == "" {
		p.ID = w.MongoID
	}
	return p
}

type wireOrder struct {
	model.Order
	MongoID string `json:"_id,omitempty"`
}

func (w wireOrder) canonical() model.Order {
	o := w.Order
	if o.ID == "" {
		o.ID = w.MongoID
	}
	if o.Status == "" {
		o.Status = model.OrderStatusPending
	}
	return o
}

// Health is the body of GET /health.  Code 1 means the backing store is
// connected; nothing else counts as online.
type Health struct {
	Status  string    `json:"status"`
	Code    int       `json:"code"`
	Service string    `json:"service,omitempty"`
	Time    time.Time `json:"time,omitempty"`
}

// ConnectedCode is the only health code treated as online.
const ConnectedCode = 1

// Healthy reports whether the API says its store is connected.
func (h Health) Healthy() bool { return h.Code == ConnectedCode }

type loginReq struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type signupReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
