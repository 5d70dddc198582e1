package store

import (
	"sort"

	"github.com/iliyamo/crimson-storefront/internal/model"
)

// edits tracks local changes per entity id so that a list fetched from the
// remote never overwrites work the remote has not confirmed yet.  Every
// local change gets a revision; a successful mirror settles it.
type edits struct {
	rev     uint64
	touched map[string]uint64
	settled map[string]uint64
}

func newEdits() *edits {
	return &edits{touched: map[string]uint64{}, settled: map[string]uint64{}}
}

// mark records a local change to id and returns its revision.
func (e *edits) mark(id string) uint64 {
	e.rev++
	e.touched[id] = e.rev
	return e.rev
}

// settle records that the remote accepted the change made at rev.
func (e *edits) settle(id string, rev uint64) {
	if rev > e.settled[id] {
		e.settled[id] = rev
	}
}

// latest reports whether rev is still the newest local change to id.
func (e *edits) latest(id string, rev uint64) bool { return e.touched[id] == rev }

// local reports whether the local copy of id must win over a list the
// remote produced once revision since had been handed out: either the
// change came after the fetch started or the remote has not confirmed it.
func (e *edits) local(id string, since uint64) bool {
	t, ok := e.touched[id]
	return ok && (t > since || t > e.settled[id])
}

// prune forgets changes that were confirmed before since.
func (e *edits) prune(since uint64) {
	for id, t := range e.touched {
		if t <= since && e.settled[id] >= t {
			delete(e.touched, id)
			delete(e.settled, id)
		}
	}
}

// mergeProducts folds a fetched catalog into the local one.  Products
// added locally and still unconfirmed stay at the head, local edits and
// deletions win over the fetched copy, and everything else follows the
// remote.
func mergeProducts(local, fetched []model.Product, e *edits, since uint64) []model.Product {
	mine := make(map[string]model.Product, len(local))
	for _, p := range local {
		mine[p.ID] = p
	}

	seen := make(map[string]bool, len(fetched))
	rest := make([]model.Product, 0, len(fetched))
	for _, p := range fetched {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		if e.local(p.ID, since) {
			q, ok := mine[p.ID]
			if !ok {
				continue
			}
			p = q
		}
		rest = append(rest, p)
	}

	var added []model.Product
	for _, p := range local {
		if !seen[p.ID] && e.local(p.ID, since) {
			added = append(added, p)
		}
	}
	e.prune(since)
	return append(added, rest...)
}

// mergeOrders folds a fetched order history into the local one.  Orders
// the remote does not know yet are kept, unconfirmed status changes win,
// and the result is newest-first.
func mergeOrders(local, fetched []model.Order, e *edits, since uint64) []model.Order {
	mine := make(map[string]model.Order, len(local))
	for _, o := range local {
		mine[o.ID] = o
	}

	seen := make(map[string]bool, len(fetched)+len(local))
	out := make([]model.Order, 0, len(fetched)+len(local))
	for _, o := range fetched {
		if seen[o.ID] {
			continue
		}
		seen[o.ID] = true
		if q, ok := mine[o.ID]; ok && e.local(o.ID, since) {
			o = q
		}
		out = append(out, o)
	}
	for _, o := range local {
		if !seen[o.ID] {
			seen[o.ID] = true
			out = append(out, o)
		}
	}
	e.prune(since)

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}
