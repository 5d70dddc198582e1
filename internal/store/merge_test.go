package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/crimson-storefront/internal/model"
)

func productIDs(ps []model.Product) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func TestMergeProducts(t *testing.T) {
	e := newEdits()
	local := []model.Product{product("mine", 1), product("p1", 1), product("edited", 50)}
	e.mark("mine")
	e.mark("edited")
	since := e.rev
	e.mark("gone")

	fetched := []model.Product{product("srv", 2), product("edited", 5), product("gone", 3), product("srv", 2)}
	got := mergeProducts(local, fetched, e, since)

	assert.Equal(t, []string{"mine", "srv", "edited"}, productIDs(got))
	assert.Equal(t, 50.0, got[2].Price, "unconfirmed edit wins")
}

func TestMergeProductsFollowsRemoteOnceConfirmed(t *testing.T) {
	e := newEdits()
	rev := e.mark("mine")
	e.settle("mine", rev)

	got := mergeProducts([]model.Product{product("mine", 1)}, []model.Product{product("srv", 2)}, e, e.rev)

	assert.Equal(t, []string{"srv"}, productIDs(got))
	assert.Empty(t, e.touched, "confirmed edits are forgotten")
}

func TestMergeOrdersNewestFirst(t *testing.T) {
	e := newEdits()
	at := func(h int) time.Time { return fixedNow.Add(time.Duration(h) * time.Hour) }
	local := []model.Order{
		{ID: "new", CreatedAt: at(2), Status: model.OrderStatusPending},
		{ID: "both", CreatedAt: at(0), Status: model.OrderStatusShipped},
	}
	e.mark("both")
	fetched := []model.Order{
		{ID: "old", CreatedAt: at(-3), Status: model.OrderStatusDelivered},
		{ID: "both", CreatedAt: at(0), Status: model.OrderStatusPending},
		{ID: "mid", CreatedAt: at(1), Status: model.OrderStatusPending},
	}

	got := mergeOrders(local, fetched, e, 0)

	ids := make([]string, len(got))
	for i, o := range got {
		ids[i] = o.ID
	}
	assert.Equal(t, []string{"new", "mid", "both", "old"}, ids)
	assert.Equal(t, model.OrderStatusShipped, got[2].Status)
}
