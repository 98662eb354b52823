package cart

import (
	"context"
	"log/slog"

	"go-shop-client/internal/event"
	"go-shop-client/internal/model"
	"go-shop-client/internal/store"
	"go-shop-client/internal/token"
)

// clearKey serializes whole-cart mutations, which are not tied to one line.
const clearKey = "*"

// Facade is the component the rest of the application talks to. Every
// operation routes to the guest store or the server gateway depending on
// whether a credential exists right now; the decision is re-evaluated per
// call because authentication state can change underneath us.
type Facade struct {
	tokens *token.Manager
	guest  *store.GuestCartStore
	server *ServerGateway
	cache  *OptimisticCache
	bus    *event.InMemoryBus
}

func NewFacade(tokens *token.Manager, guest *store.GuestCartStore, server *ServerGateway, bus *event.InMemoryBus) *Facade {
	return &Facade{
		tokens: tokens,
		guest:  guest,
		server: server,
		cache:  NewOptimisticCache(bus),
		bus:    bus,
	}
}

// Cached returns the last published snapshot without any network I/O.
func (f *Facade) Cached() model.CartSnapshot {
	return f.cache.Snapshot()
}

// Snapshot fetches the authoritative cart from whichever store owns it and
// publishes it.
func (f *Facade) Snapshot(ctx context.Context) (model.CartSnapshot, error) {
	snapshot, err := f.authoritative(ctx)
	if err != nil {
		return model.CartSnapshot{}, err
	}

	f.cache.Set(snapshot)
	return snapshot, nil
}

// Add puts quantity units of the product in the cart, merging with an
// existing line for the same product.
func (f *Facade) Add(ctx context.Context, product model.Product, quantity int) error {
	if quantity < 1 {
		return model.ErrInvalidQuantity
	}

	// The server assigns line IDs; until it does, the product ID stands in
	// as the line key for both backends.
	tx := f.cache.Begin(product.ID)
	tx.Stage(func(s model.CartSnapshot) model.CartSnapshot {
		return applyAdd(s, product, quantity)
	})

	if f.tokens.HasCredential() {
		if _, err := f.server.AddLine(ctx, product.ID, quantity); err != nil {
			tx.Rollback()
			return err
		}
		f.confirmFromServer(ctx, tx)
		return nil
	}

	if _, err := f.guest.Add(guestLineFromProduct(product), quantity); err != nil {
		tx.Rollback()
		return err
	}

	return f.confirmFromGuest(tx)
}

// UpdateQuantity sets a line to an absolute quantity. Zero or less means
// remove: a line below quantity one must not exist.
func (f *Facade) UpdateQuantity(ctx context.Context, lineID string, quantity int) error {
	if quantity < 1 {
		return f.Remove(ctx, lineID)
	}

	tx := f.cache.Begin(lineID)
	tx.Stage(func(s model.CartSnapshot) model.CartSnapshot {
		return applySetQuantity(s, lineID, quantity)
	})

	if f.tokens.HasCredential() {
		if _, err := f.server.UpdateLine(ctx, lineID, quantity); err != nil {
			tx.Rollback()
			return err
		}
		f.confirmFromServer(ctx, tx)
		return nil
	}

	if _, err := f.guest.SetQuantity(lineID, quantity); err != nil {
		tx.Rollback()
		return err
	}

	return f.confirmFromGuest(tx)
}

func (f *Facade) Remove(ctx context.Context, lineID string) error {
	tx := f.cache.Begin(lineID)
	tx.Stage(func(s model.CartSnapshot) model.CartSnapshot {
		return applyRemove(s, lineID)
	})

	if f.tokens.HasCredential() {
		if err := f.server.RemoveLine(ctx, lineID); err != nil {
			tx.Rollback()
			return err
		}
		f.confirmFromServer(ctx, tx)
		return nil
	}

	if err := f.guest.Remove(lineID); err != nil {
		tx.Rollback()
		return err
	}

	return f.confirmFromGuest(tx)
}

func (f *Facade) Clear(ctx context.Context) error {
	tx := f.cache.Begin(clearKey)
	tx.Stage(func(model.CartSnapshot) model.CartSnapshot {
		return model.CartSnapshot{}
	})

	if f.tokens.HasCredential() {
		if err := f.server.ClearCart(ctx); err != nil {
			tx.Rollback()
			return err
		}
		tx.Confirm(model.CartSnapshot{})
		return nil
	}

	if err := f.guest.Clear(); err != nil {
		tx.Rollback()
		return err
	}

	tx.Confirm(model.CartSnapshot{})
	return nil
}

// MergeOnLogin carries the guest cart into the server cart. Additive on
// purpose: the server cart may already hold lines from another device, so
// every guest line is added rather than set. A line the server refuses
// (inactive product, out of stock) is skipped and logged; it never aborts
// the rest of the merge. The guest store is cleared unconditionally once
// every line has been attempted - a guest cart is single-use and must not
// replay on a later login.
func (f *Facade) MergeOnLogin(ctx context.Context) (model.CartSnapshot, error) {
	guestLines, err := f.guest.GetAll()
	if err != nil {
		return model.CartSnapshot{}, err
	}

	if len(guestLines) > 0 {
		for _, line := range guestLines {
			if _, err := f.server.AddLine(ctx, line.ProductID, line.Quantity); err != nil {
				slog.Warn("cart merge: line skipped",
					"product_id", line.ProductID,
					"quantity", line.Quantity,
					"error", err,
				)
				if f.bus != nil {
					f.bus.Emit(event.TypeMergeLineSkipped, line.CartLine())
				}
				continue
			}
		}

		if err := f.guest.Clear(); err != nil {
			slog.Warn("cart merge: clearing guest cart failed", "error", err)
		}
	}

	serverCart, err := f.server.GetCart(ctx)
	if err != nil {
		return model.CartSnapshot{}, err
	}

	snapshot := serverCart.Snapshot()
	f.cache.Set(snapshot)
	if f.bus != nil {
		f.bus.Emit(event.TypeCartMerged, snapshot)
	}

	return snapshot, nil
}

func (f *Facade) authoritative(ctx context.Context) (model.CartSnapshot, error) {
	if f.tokens.HasCredential() {
		serverCart, err := f.server.GetCart(ctx)
		if err != nil {
			return model.CartSnapshot{}, err
		}
		return serverCart.Snapshot(), nil
	}

	return guestSnapshot(f.guest)
}

// confirmFromServer finishes a mutation with the authoritative server cart.
// The mutation itself already succeeded; if the follow-up fetch fails the
// staged snapshot stands and a later Snapshot call corrects it.
func (f *Facade) confirmFromServer(ctx context.Context, tx *Mutation) {
	serverCart, err := f.server.GetCart(ctx)
	if err != nil {
		slog.Warn("cart refresh after mutation failed", "error", err)
		tx.Confirm(f.cache.Snapshot())
		return
	}

	tx.Confirm(serverCart.Snapshot())
}

func (f *Facade) confirmFromGuest(tx *Mutation) error {
	snapshot, err := guestSnapshot(f.guest)
	if err != nil {
		tx.Rollback()
		return err
	}

	tx.Confirm(snapshot)
	return nil
}

func applyAdd(s model.CartSnapshot, product model.Product, quantity int) model.CartSnapshot {
	lines := s.Lines
	for i := range lines {
		if lines[i].ProductID == product.ID {
			lines[i].Quantity += quantity
			return model.BuildSnapshot(lines)
		}
	}

	lines = append(lines, model.CartLine{
		ID:             product.ID,
		ProductID:      product.ID,
		Name:           product.Name,
		UnitPrice:      product.Price,
		Image:          product.Image(),
		Quantity:       quantity,
		Category:       product.Category,
		StockAvailable: product.StockQuantity,
	})

	return model.BuildSnapshot(lines)
}

func applySetQuantity(s model.CartSnapshot, lineID string, quantity int) model.CartSnapshot {
	lines := s.Lines
	for i := range lines {
		if lines[i].ID == lineID {
			lines[i].Quantity = quantity
			break
		}
	}

	return model.BuildSnapshot(lines)
}

func applyRemove(s model.CartSnapshot, lineID string) model.CartSnapshot {
	kept := make([]model.CartLine, 0, len(s.Lines))
	for _, line := range s.Lines {
		if line.ID != lineID {
			kept = append(kept, line)
		}
	}

	return model.BuildSnapshot(kept)
}
