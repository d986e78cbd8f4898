package catalog

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

// Catalog is the ordered set of known products keyed by case-insensitive
// name. It holds no locks and performs no I/O; callers that share a Catalog
// across goroutines serialize access themselves.
type Catalog struct {
	products []Product
	index    map[string]int
	now      func() time.Time
	newID    func() uuid.UUID
}

// Option configures a Catalog
type Option func(*Catalog)

// WithClock overrides the time source used for CreatedAt/UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) {
		c.now = now
	}
}

// WithIDGenerator overrides the product id source.
func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(c *Catalog) {
		c.newID = fn
	}
}

// New creates an empty catalog
func New(opts ...Option) *Catalog {
	c := &Catalog{
		index: make(map[string]int),
		now:   time.Now,
		newID: uuid.New,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NameKey folds name for case-insensitive matching. A Caser keeps internal
// state, so one is built per call.
func NameKey(name string) string {
	return cases.Fold().String(name)
}

func (c *Catalog) key(name string) string {
	return NameKey(name)
}

// Upsert inserts draft as a new product, or merges it into the product that
// already carries the same name. On merge the existing id, name, position,
// category, unit price and image are kept and only the customer name is
// taken from the draft. It reports whether a merge happened.
func (c *Catalog) Upsert(draft ProductDraft) (Product, bool) {
	p, idx := c.resolve(draft, true)
	if idx >= 0 {
		c.products[idx] = p
		return p.Clone(), true
	}
	c.index[c.key(p.Name)] = len(c.products)
	c.products = append(c.products, p)
	return p.Clone(), false
}

// PreviewUpsert returns what Upsert would store for draft without touching
// the catalog.
func (c *Catalog) PreviewUpsert(draft ProductDraft) (Product, bool) {
	p, idx := c.resolve(draft, false)
	return p, idx >= 0
}

// resolve computes the record stored for draft and the slot it replaces, or
// -1 for a new product. New products only get an id when allocate is set.
func (c *Catalog) resolve(draft ProductDraft, allocate bool) (Product, int) {
	now := c.now()
	if idx, ok := c.index[c.key(draft.Name)]; ok {
		merged := c.products[idx].Clone()
		merged.CustomerName = draft.CustomerName
		merged.UpdatedAt = now
		return merged, idx
	}
	p := Product{
		Name:         draft.Name,
		Category:     draft.Category,
		UnitPrice:    draft.Price(),
		CustomerName: draft.CustomerName,
		Image:        draft.Image.clone(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if allocate {
		p.ID = c.allocateID()
	}
	return p, -1
}

// allocateID returns an id no product in the catalog currently uses.
func (c *Catalog) allocateID() uuid.UUID {
	for {
		id := c.newID()
		if id == uuid.Nil {
			continue
		}
		if _, taken := c.indexOfID(id); !taken {
			return id
		}
	}
}

// Remove deletes the product with the given id. Unknown ids are a no-op
// returning false.
func (c *Catalog) Remove(id uuid.UUID) bool {
	idx, ok := c.indexOfID(id)
	if !ok {
		return false
	}
	c.products = append(c.products[:idx], c.products[idx+1:]...)
	c.reindex()
	return true
}

// FindByName looks a product up by case-insensitive exact name.
func (c *Catalog) FindByName(name string) (Product, bool) {
	idx, ok := c.index[c.key(name)]
	if !ok {
		return Product{}, false
	}
	return c.products[idx].Clone(), true
}

// Get returns the product with the given id.
func (c *Catalog) Get(id uuid.UUID) (Product, bool) {
	idx, ok := c.indexOfID(id)
	if !ok {
		return Product{}, false
	}
	return c.products[idx].Clone(), true
}

// List returns the products in insertion order.
func (c *Catalog) List() []Product {
	out := make([]Product, len(c.products))
	for i, p := range c.products {
		out[i] = p.Clone()
	}
	return out
}

// Len returns the number of products
func (c *Catalog) Len() int {
	return len(c.products)
}

// Replace swaps the catalog contents for a loaded snapshot. Products without
// an id get one; later entries whose name collides with an earlier one are
// dropped. It returns the number of dropped entries.
func (c *Catalog) Replace(products []Product) int {
	c.products = make([]Product, 0, len(products))
	c.index = make(map[string]int, len(products))
	dropped := 0
	for _, p := range products {
		k := c.key(p.Name)
		if _, dup := c.index[k]; dup {
			dropped++
			continue
		}
		p = p.Clone()
		if p.ID == uuid.Nil {
			p.ID = c.allocateID()
		}
		c.index[k] = len(c.products)
		c.products = append(c.products, p)
	}
	return dropped
}

func (c *Catalog) indexOfID(id uuid.UUID) (int, bool) {
	for i := range c.products {
		if c.products[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

func (c *Catalog) reindex() {
	c.index = make(map[string]int, len(c.products))
	for i, p := range c.products {
		c.index[c.key(p.Name)] = i
	}
}
