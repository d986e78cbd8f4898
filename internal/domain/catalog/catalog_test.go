package catalog

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zantech/instantorder/internal/domain/shared"
)

func draft(name, category, price, customer string) ProductDraft {
	return ProductDraft{
		Name:         name,
		Category:     category,
		UnitPrice:    decimal.NewNullDecimal(decimal.RequireFromString(price)),
		CustomerName: customer,
	}
}

func TestCatalog_Upsert(t *testing.T) {
	t.Run("new name allocates a fresh id", func(t *testing.T) {
		c := New()
		a, merged := c.Upsert(draft("Pen", "Books", "1.50", "Alice"))
		assert.False(t, merged)
		b, merged := c.Upsert(draft("Notebook", "Books", "3.00", "Alice"))
		assert.False(t, merged)

		assert.NotEqual(t, uuid.Nil, a.ID)
		assert.NotEqual(t, a.ID, b.ID)
		assert.Equal(t, 2, c.Len())
	})

	t.Run("matching name keeps id and existing data", func(t *testing.T) {
		c := New()
		first, _ := c.Upsert(draft("Pen", "Office", "1.50", "Alice"))

		second, merged := c.Upsert(draft("pen", "Books", "9.99", "Bob"))
		require.True(t, merged)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "Pen", second.Name)
		assert.Equal(t, "Office", second.Category)
		assert.True(t, second.UnitPrice.Equal(decimal.RequireFromString("1.50")))
		assert.Equal(t, "Bob", second.CustomerName)

		list := c.List()
		require.Len(t, list, 1)
		assert.Equal(t, second, list[0])
	})

	t.Run("existing image wins on merge", func(t *testing.T) {
		c := New()
		c.Upsert(ProductDraft{Name: "Lamp", Category: "Other", CustomerName: "A", Image: &Image{MIME: "image/png", Data: "b2xk"}})

		merged, _ := c.Upsert(ProductDraft{Name: "LAMP", Category: "Other", CustomerName: "B", Image: &Image{MIME: "image/jpeg", Data: "bmV3"}})
		require.NotNil(t, merged.Image)
		assert.Equal(t, "image/png", merged.Image.MIME)
	})

	t.Run("re-upserted product keeps its position", func(t *testing.T) {
		c := New()
		c.Upsert(draft("A", "Other", "1", "x"))
		c.Upsert(draft("B", "Other", "1", "x"))
		c.Upsert(draft("C", "Other", "1", "x"))
		c.Upsert(draft("b", "Other", "5", "y"))

		names := []string{}
		for _, p := range c.List() {
			names = append(names, p.Name)
		}
		assert.Equal(t, []string{"A", "B", "C"}, names)
	})

	t.Run("skips ids already in use", func(t *testing.T) {
		taken := uuid.New()
		fresh := uuid.New()
		ids := []uuid.UUID{taken, taken, uuid.Nil, fresh}
		c := New(WithIDGenerator(func() uuid.UUID {
			id := ids[0]
			ids = ids[1:]
			return id
		}))

		a, _ := c.Upsert(draft("A", "Other", "1", "x"))
		b, _ := c.Upsert(draft("B", "Other", "1", "x"))
		assert.Equal(t, taken, a.ID)
		assert.Equal(t, fresh, b.ID)
	})

	t.Run("stamps timestamps from the clock", func(t *testing.T) {
		t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		now := t0
		c := New(WithClock(func() time.Time { return now }))
		p, _ := c.Upsert(draft("A", "Other", "1", "x"))
		assert.Equal(t, t0, p.CreatedAt)

		now = t0.Add(time.Hour)
		p, _ = c.Upsert(draft("a", "Other", "1", "y"))
		assert.Equal(t, t0, p.CreatedAt)
		assert.Equal(t, t0.Add(time.Hour), p.UpdatedAt)
	})

	t.Run("returned products do not alias stored images", func(t *testing.T) {
		c := New()
		p, _ := c.Upsert(ProductDraft{Name: "Cup", Category: "Other", CustomerName: "A", Image: &Image{MIME: "image/png", Data: "AAAA"}})
		p.Image.Data = "mutated"

		stored, ok := c.FindByName("cup")
		require.True(t, ok)
		assert.Equal(t, "AAAA", stored.Image.Data)
	})
}

func TestCatalog_Remove(t *testing.T) {
	c := New()
	a, _ := c.Upsert(draft("A", "Other", "1", "x"))
	c.Upsert(draft("B", "Other", "1", "x"))

	t.Run("unknown id returns false and leaves list unchanged", func(t *testing.T) {
		before := c.List()
		assert.False(t, c.Remove(uuid.New()))
		assert.Equal(t, before, c.List())
	})

	t.Run("removes existing product", func(t *testing.T) {
		assert.True(t, c.Remove(a.ID))
		assert.False(t, c.Remove(a.ID))
		_, ok := c.FindByName("a")
		assert.False(t, ok)
		_, ok = c.FindByName("b")
		assert.True(t, ok)
	})

	t.Run("removed name can be added again as a new product", func(t *testing.T) {
		p, merged := c.Upsert(draft("a", "Books", "2", "z"))
		assert.False(t, merged)
		assert.NotEqual(t, a.ID, p.ID)
		assert.Equal(t, "Books", p.Category)
	})
}

func TestCatalog_FindByName(t *testing.T) {
	c := New()
	c.Upsert(draft("Widget", "Other", "2.00", "x"))

	p, ok := c.FindByName("wIDGET")
	require.True(t, ok)
	assert.Equal(t, "Widget", p.Name)

	_, ok = c.FindByName("Widgets")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())
}

func TestCatalog_PreviewUpsert(t *testing.T) {
	c := New()
	existing, _ := c.Upsert(draft("Pen", "Office", "1.50", "Alice"))

	preview, merged := c.PreviewUpsert(draft("PEN", "Books", "3", "Bob"))
	assert.True(t, merged)
	assert.Equal(t, existing.ID, preview.ID)
	assert.Equal(t, "Bob", preview.CustomerName)

	stored, _ := c.Get(existing.ID)
	assert.Equal(t, "Alice", stored.CustomerName)

	preview, merged = c.PreviewUpsert(draft("Ink", "Office", "3", "Bob"))
	assert.False(t, merged)
	assert.Equal(t, uuid.Nil, preview.ID)
	assert.Equal(t, 1, c.Len())
}

func TestCatalog_Replace(t *testing.T) {
	id := uuid.New()
	c := New()
	dropped := c.Replace([]Product{
		{ID: id, Name: "Pen", Category: "Office"},
		{Name: "Ink", Category: "Office"},
		{ID: uuid.New(), Name: "PEN", Category: "Books"},
	})

	assert.Equal(t, 1, dropped)
	list := c.List()
	require.Len(t, list, 2)
	assert.Equal(t, id, list[0].ID)
	assert.NotEqual(t, uuid.Nil, list[1].ID)

	p, ok := c.FindByName("pen")
	require.True(t, ok)
	assert.Equal(t, "Office", p.Category)
}

func TestProductDraft_Validate(t *testing.T) {
	valid := draft("Pen", "Books", "1.50", "Alice")

	t.Run("accepts a complete draft", func(t *testing.T) {
		assert.NoError(t, valid.Validate(true))
	})

	t.Run("reports every missing field", func(t *testing.T) {
		err := ProductDraft{UnitPrice: decimal.NewNullDecimal(decimal.NewFromInt(-1))}.Validate(false)
		require.Error(t, err)
		for _, field := range []string{"name", "category", "unitPrice", "customerName"} {
			assert.Contains(t, err.Error(), field)
		}
	})

	t.Run("rejects unknown category only in strict mode", func(t *testing.T) {
		d := draft("Pen", "Office", "1.50", "Alice")
		assert.Error(t, d.Validate(true))
		assert.NoError(t, d.Validate(false))
	})

	t.Run("rejects non image payloads", func(t *testing.T) {
		d := valid
		d.Image = &Image{MIME: "text/plain", Data: "aGk="}
		assert.Error(t, d.Validate(true))
	})

	t.Run("zero price is allowed", func(t *testing.T) {
		d := draft("Free", "Other", "0", "A")
		assert.NoError(t, d.Validate(true))
	})

	t.Run("missing price is required", func(t *testing.T) {
		d := valid
		d.UnitPrice = decimal.NullDecimal{}
		err := d.Validate(true)
		require.Error(t, err)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "unit price is required", de.Details["unitPrice"])
	})
}

func TestProductDraft_ValidateColumnLimits(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ProductDraft)
		field  string
	}{
		{"name over 200 runes", func(d *ProductDraft) { d.Name = strings.Repeat("é", 201) }, "name"},
		{"name whose folded key outgrows 200 runes", func(d *ProductDraft) { d.Name = strings.Repeat("ß", 150) }, "name"},
		{"category over 100 runes", func(d *ProductDraft) { d.Category = strings.Repeat("c", 101) }, "category"},
		{"customer over 200 runes", func(d *ProductDraft) { d.CustomerName = strings.Repeat("a", 201) }, "customerName"},
		{"price beyond decimal(12,2)", func(d *ProductDraft) {
			d.UnitPrice = decimal.NewNullDecimal(decimal.RequireFromString("10000000000"))
		}, "unitPrice"},
		{"price rounding up to the bound", func(d *ProductDraft) {
			d.UnitPrice = decimal.NewNullDecimal(decimal.RequireFromString("9999999999.999"))
		}, "unitPrice"},
		{"image type over 50 bytes", func(d *ProductDraft) {
			d.Image = &Image{MIME: "image/" + strings.Repeat("x", 45), Data: "AAAA"}
		}, "image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := draft("Pen", "Books", "1.50", "Alice")
			tt.mutate(&d)
			err := d.Validate(false)
			require.Error(t, err)
			var de *shared.DomainError
			require.ErrorAs(t, err, &de)
			assert.Contains(t, de.Details, tt.field)
		})
	}

	t.Run("values at the limits pass", func(t *testing.T) {
		d := draft(strings.Repeat("n", 200), strings.Repeat("c", 100), "9999999999.99", strings.Repeat("a", 200))
		assert.NoError(t, d.Validate(false))
	})
}

func TestProductDraft_Normalize(t *testing.T) {
	d := ProductDraft{Name: "  Pen ", Category: " Books", CustomerName: "Alice  ", UnitPrice: decimal.NewNullDecimal(decimal.RequireFromString("1.005"))}.Normalize()
	assert.Equal(t, "Pen", d.Name)
	assert.Equal(t, "Books", d.Category)
	assert.Equal(t, "Alice", d.CustomerName)
	assert.True(t, d.UnitPrice.Valid)
	assert.Equal(t, "1.01", d.UnitPrice.Decimal.StringFixed(2))

	empty := ProductDraft{Name: "Pen"}.Normalize()
	assert.False(t, empty.UnitPrice.Valid)
	assert.True(t, empty.Price().IsZero())
}

func TestCanonicalCategory(t *testing.T) {
	c, ok := CanonicalCategory("home & garden")
	assert.True(t, ok)
	assert.Equal(t, "Home & Garden", c)

	_, ok = CanonicalCategory("Office")
	assert.False(t, ok)
}

func TestImage_DataURL(t *testing.T) {
	var img *Image
	assert.Empty(t, img.DataURL())
	assert.Equal(t, "data:image/png;base64,AAAA", (&Image{MIME: "image/png", Data: "AAAA"}).DataURL())
}
