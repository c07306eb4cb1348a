package domain

import "testing"

func f(v float64) *float64 { return &v }

func TestUnitPrice_PerPoundWinsOverTiers(t *testing.T) {
	p := Product{
		ID:                    "c2",
		PricePerPound:         f(300),
		PricePerPoundDiscount: f(250),
		Price500g:             f(450),
		Price1kg:              f(800),
		Price2kg:              f(1500),
	}
	for _, size := range []Size{Size500g, Size1kg, Size2kg, SizePerPound} {
		got := p.UnitPrice(size)
		if got == nil || *got != 250 {
			t.Fatalf("size %s: expected 250, got %v", size, got)
		}
	}
	if s := p.DisplayPrice("₹"); s != "₹250 / lb" {
		t.Fatalf("display price %q", s)
	}
}

func TestUnitPrice_Tiers(t *testing.T) {
	p := Product{Price500g: f(450), Price1kg: f(800), Price1kgDiscount: f(750)}

	if got := p.UnitPrice(Size500g); got == nil || *got != 450 {
		t.Fatalf("500g: %v", got)
	}
	if got := p.UnitPrice(Size1kg); got == nil || *got != 750 {
		t.Fatalf("1kg discount not applied: %v", got)
	}
	if got := p.UnitPrice(Size2kg); got != nil {
		t.Fatalf("2kg expected nil, got %v", *got)
	}
	if got := p.UnitPrice(SizePerPound); got != nil {
		t.Fatalf("pound expected nil, got %v", *got)
	}
	if got := p.UnitPrice("3kg"); got != nil {
		t.Fatalf("unknown size expected nil, got %v", *got)
	}
}

func TestDisplayPrice_FallbackOrder(t *testing.T) {
	tests := []struct {
		name string
		p    Product
		want string
	}{
		{"500g first", Product{Price500g: f(450), Price2kg: f(1500)}, "₹450 / 500g"},
		{"1kg when no 500g", Product{Price1kg: f(800), Price2kg: f(1500)}, "₹800 / 1kg"},
		{"2kg last", Product{Price2kg: f(1499.5)}, "₹1499.5 / 2kg"},
		{"zero is a real price", Product{Price500g: f(0)}, "₹0 / 500g"},
		{"no price", Product{}, PriceOnRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.DisplayPrice("₹"); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestProductKey_FallsBackToName(t *testing.T) {
	if k := (Product{ID: "c1", Name: "Choco"}).Key(); k != "c1" {
		t.Fatalf("key %q", k)
	}
	if k := (Product{Name: "Choco"}).Key(); k != "Choco" {
		t.Fatalf("key %q", k)
	}
}

func TestHasFlag(t *testing.T) {
	p := Product{FlavorType: true, Attributes: map[string]bool{"eggless": true}}
	if !p.HasFlag("flavor-wise") || !p.HasFlag("flavor_type") {
		t.Fatalf("flavor flag")
	}
	if p.HasFlag("occasion-wise") || p.HasFlag("customer-cake") {
		t.Fatalf("unexpected flag")
	}
	if !p.HasFlag("eggless") || p.HasFlag("vegan") {
		t.Fatalf("attribute flags")
	}
}

func TestSizeLabel(t *testing.T) {
	if SizePerPound.Label() != "per pound" || Size1kg.Label() != "1kg" {
		t.Fatalf("labels")
	}
}

func TestUnitPrice_DoesNotAliasProduct(t *testing.T) {
	p := Product{Price500g: f(450)}
	got := p.UnitPrice(Size500g)
	*got = 1
	if *p.Price500g != 450 {
		t.Fatalf("writing through UnitPrice changed the product: %v", *p.Price500g)
	}

	q := Product{PricePerPound: f(300), PricePerPoundDiscount: f(250)}
	*q.PerPoundPrice() = 2
	if *q.PricePerPoundDiscount != 250 {
		t.Fatalf("writing through PerPoundPrice changed the product")
	}
}

func TestClone_Deep(t *testing.T) {
	p := Product{Name: "Cookie Box", Price1kg: f(600), Attributes: map[string]bool{"eggless": true}}
	c := p.Clone()
	*c.Price1kg = 1
	c.Attributes["eggless"] = false
	c.Name = "x"

	if *p.Price1kg != 600 || !p.Attributes["eggless"] || p.Name != "Cookie Box" {
		t.Fatalf("clone shares state with original: %#v", p)
	}
	if (Product{}).Clone().Attributes != nil {
		t.Fatalf("nil attributes must stay nil")
	}
}
