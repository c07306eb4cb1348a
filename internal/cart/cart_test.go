package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bakery/internal/domain"
)

func price(v float64) *float64 { return &v }

func chocoCake() domain.Product {
	return domain.Product{
		ID:        "c1",
		Name:      "Choco Cake",
		Category:  "Cakes",
		Price500g: price(450),
		Price1kg:  price(850),
		Available: true,
	}
}

func TestAddItem_AggregatesQuantity(t *testing.T) {
	c := New()
	p := chocoCake()

	c.AddItem(p, domain.Size500g)
	c.AddItem(p, domain.Size500g)

	assert.Equal(t, 2, c.Count())
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, "900", c.Total().String())
}

func TestAddItem_PinnedPriceSurvivesProductWrites(t *testing.T) {
	c := New()
	p := chocoCake()
	c.AddItem(p, domain.Size500g)

	// in-place write to the product's price storage
	*p.Price500g = 1

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 450.0, *items[0].UnitPrice)
	assert.Equal(t, "450", c.Total().String())
}

func TestAddItem_LegacyTierTotal(t *testing.T) {
	c := New()
	c.AddItem(chocoCake(), domain.Size500g)
	assert.Equal(t, "450", c.Total().String())
}

func TestAddItem_PricePinnedAtFirstAdd(t *testing.T) {
	c := New()
	p := chocoCake()
	c.AddItem(p, domain.Size500g)

	p.Price500g = price(999)
	c.AddItem(p, domain.Size500g)

	items := c.Items()
	require.Len(t, items, 1)
	require.NotNil(t, items[0].UnitPrice)
	assert.Equal(t, 450.0, *items[0].UnitPrice)
	assert.Equal(t, "900", c.Total().String())
}

func TestAddItem_DistinctSizesAreDistinctLines(t *testing.T) {
	c := New()
	p := chocoCake()
	c.AddItem(p, domain.Size500g)
	c.AddItem(p, domain.Size1kg)

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 2, c.Count())

	c.RemoveItem("c1", domain.Size500g)
	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, domain.Size1kg, items[0].Size)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestAddItem_IDlessProductUsesName(t *testing.T) {
	c := New()
	p := chocoCake()
	p.ID = ""
	c.AddItem(p, domain.Size500g)

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Choco Cake", items[0].ProductID)
}

func TestRemoveItem_AbsentKeyIsNoop(t *testing.T) {
	c := New()
	c.AddItem(chocoCake(), domain.Size500g)
	before := c.Items()

	c.RemoveItem("nope", domain.Size500g)
	c.RemoveItem("c1", domain.Size2kg)

	assert.Equal(t, before, c.Items())
}

func TestUpdateQuantity_FloorRemoves(t *testing.T) {
	for _, q := range []int{0, -5} {
		c := New()
		c.AddItem(chocoCake(), domain.Size500g)
		c.UpdateQuantity("c1", domain.Size500g, q)
		assert.Equal(t, 0, c.Len(), "quantity %d", q)
		assert.Equal(t, 0, c.Count())
	}
}

func TestUpdateQuantity_Sets(t *testing.T) {
	c := New()
	c.AddItem(chocoCake(), domain.Size500g)
	c.UpdateQuantity("c1", domain.Size500g, 4)
	assert.Equal(t, 4, c.Count())
	assert.Equal(t, "1800", c.Total().String())

	// unknown line: nothing happens
	c.UpdateQuantity("c1", domain.Size2kg, 3)
	assert.Equal(t, 1, c.Len())
}

func TestTotal_UnpricedLinesCountAsZero(t *testing.T) {
	c := New()
	c.AddItem(chocoCake(), domain.Size2kg)
	c.AddItem(chocoCake(), domain.Size500g)

	items := c.Items()
	require.Len(t, items, 2)
	assert.Nil(t, items[0].UnitPrice)
	assert.Equal(t, 2, c.Count())
	assert.Equal(t, "450", c.Total().String())
}

func TestClear(t *testing.T) {
	c := New()
	c.AddItem(chocoCake(), domain.Size500g)
	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.True(t, c.Total().IsZero())
}

func TestNotices(t *testing.T) {
	notes := &Collector{}
	c := New(WithNotifier(notes))
	p := chocoCake()

	c.AddItem(p, domain.Size500g)
	c.AddItem(p, domain.Size500g)
	c.RemoveItem("missing", domain.Size500g)
	c.RemoveItem("c1", domain.Size500g)
	c.Clear()

	kinds := make([]NoticeKind, 0, len(notes.Notices))
	for _, n := range notes.Notices {
		kinds = append(kinds, n.Kind)
	}
	assert.Equal(t, []NoticeKind{NoticeAdded, NoticeUpdated, NoticeRemoved, NoticeCleared}, kinds)
	assert.Equal(t, "Choco Cake added to cart!", notes.Notices[0].Message)
	assert.Equal(t, "Choco Cake quantity updated!", notes.Notices[1].Message)
}

func TestRestore_DropsNonPositiveAndMergesDuplicates(t *testing.T) {
	c := Restore([]domain.CartItem{
		{ProductID: "c1", Size: domain.Size500g, UnitPrice: price(450), Quantity: 1},
		{ProductID: "c2", Size: domain.Size500g, UnitPrice: price(100), Quantity: 0},
		{ProductID: "c1", Size: domain.Size500g, UnitPrice: price(450), Quantity: 2},
		{ProductID: "c3", Size: domain.Size1kg, UnitPrice: price(10), Quantity: -1},
	})
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 3, c.Count())
}

func TestItems_ReturnsCopies(t *testing.T) {
	c := New()
	c.AddItem(chocoCake(), domain.Size500g)
	items := c.Items()
	*items[0].UnitPrice = 1
	items[0].Quantity = 10

	assert.Equal(t, "450", c.Total().String())
}
