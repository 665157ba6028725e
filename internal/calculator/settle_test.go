package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestSettle(t *testing.T) {
	tests := []struct {
		name         string
		items        []Item
		tax          string
		tip          string
		wantErr      bool
		validateFunc func(t *testing.T, settlements map[string]*Settlement, summary Summary)
	}{
		{
			name: "two members, one item each, proportional tax and tip",
			items: []Item{
				{ID: "burger", Price: dec("12.00"), Quantity: 1, Claimants: []string{"a"}},
				{ID: "fries", Price: dec("4.00"), Quantity: 2, Claimants: []string{"b"}},
			},
			tax: "1.60",
			tip: "3.00",
			validateFunc: func(t *testing.T, settlements map[string]*Settlement, summary Summary) {
				// a: 12/20 of the bill -> tax 0.96, tip 1.80, total 14.76
				// b: 8/20 of the bill -> tax 0.64, tip 1.20, total 9.84
				a := settlements["a"]
				if !a.Subtotal.Equal(dec("12.00")) {
					t.Errorf("a subtotal = %s, want 12.00", a.Subtotal)
				}
				if !a.TaxShare.Equal(dec("0.96")) {
					t.Errorf("a taxShare = %s, want 0.96", a.TaxShare)
				}
				if !a.TipShare.Equal(dec("1.80")) {
					t.Errorf("a tipShare = %s, want 1.80", a.TipShare)
				}
				if !a.Total.Equal(dec("14.76")) {
					t.Errorf("a total = %s, want 14.76", a.Total)
				}

				b := settlements["b"]
				if !b.Total.Equal(dec("9.84")) {
					t.Errorf("b total = %s, want 9.84", b.Total)
				}

				if !summary.BillSubtotal.Equal(dec("20.00")) {
					t.Errorf("billSubtotal = %s, want 20.00", summary.BillSubtotal)
				}
				if !summary.Unclaimed.IsZero() {
					t.Errorf("unclaimed = %s, want 0", summary.Unclaimed)
				}
			},
		},
		{
			name: "shared item splits evenly",
			items: []Item{
				{ID: "fries", Price: dec("4.00"), Quantity: 2, Claimants: []string{"a", "b"}},
			},
			tax: "0",
			tip: "0",
			validateFunc: func(t *testing.T, settlements map[string]*Settlement, summary Summary) {
				for _, id := range []string{"a", "b"} {
					if !settlements[id].Subtotal.Equal(dec("4.00")) {
						t.Errorf("%s subtotal = %s, want 4.00", id, settlements[id].Subtotal)
					}
				}
			},
		},
		{
			name: "unclaimed item stays in the denominator but belongs to nobody",
			items: []Item{
				{ID: "burger", Price: dec("12.00"), Quantity: 1, Claimants: []string{"a"}},
				{ID: "fries", Price: dec("4.00"), Quantity: 2},
			},
			tax: "1.60",
			tip: "3.00",
			validateFunc: func(t *testing.T, settlements map[string]*Settlement, summary Summary) {
				a := settlements["a"]
				if !a.TaxShare.Equal(dec("0.96")) {
					t.Errorf("a taxShare = %s, want 0.96 (12/20 of 1.60)", a.TaxShare)
				}
				if !summary.Unclaimed.Equal(dec("9.84")) {
					t.Errorf("unclaimed = %s, want 9.84", summary.Unclaimed)
				}
				// Conservation: member totals + unclaimed = subtotal + tax + tip.
				sum := a.Total.Add(summary.Unclaimed)
				if !sum.Equal(dec("24.60")) {
					t.Errorf("total + unclaimed = %s, want 24.60", sum)
				}
			},
		},
		{
			name: "cent remainders assigned deterministically",
			items: []Item{
				{ID: "platter", Price: dec("10.00"), Quantity: 1, Claimants: []string{"c", "a", "b"}},
			},
			tax: "1.00",
			tip: "0",
			validateFunc: func(t *testing.T, settlements map[string]*Settlement, summary Summary) {
				// 1000 cents / 3 = 333 each, extra cent to "a" (lowest id).
				if !settlements["a"].Subtotal.Equal(dec("3.34")) {
					t.Errorf("a subtotal = %s, want 3.34", settlements["a"].Subtotal)
				}
				if !settlements["b"].Subtotal.Equal(dec("3.33")) {
					t.Errorf("b subtotal = %s, want 3.33", settlements["b"].Subtotal)
				}
				// Tax reconciles to exactly 1.00 across the three.
				taxSum := decimal.Zero
				for _, s := range settlements {
					taxSum = taxSum.Add(s.TaxShare)
				}
				if !taxSum.Equal(dec("1.00")) {
					t.Errorf("tax sum = %s, want 1.00", taxSum)
				}
				if !summary.Unclaimed.IsZero() {
					t.Errorf("unclaimed = %s, want 0", summary.Unclaimed)
				}
			},
		},
		{
			name:  "no items yields empty settlements",
			items: []Item{},
			tax:   "0",
			tip:   "0",
			validateFunc: func(t *testing.T, settlements map[string]*Settlement, summary Summary) {
				if len(settlements) != 0 {
					t.Errorf("expected no settlements, got %d", len(settlements))
				}
				if !summary.BillSubtotal.IsZero() {
					t.Errorf("billSubtotal = %s, want 0", summary.BillSubtotal)
				}
			},
		},
		{
			name:    "negative tax rejected",
			items:   []Item{{ID: "x", Price: dec("1.00"), Quantity: 1}},
			tax:     "-1.00",
			tip:     "0",
			wantErr: true,
		},
		{
			name:    "zero quantity rejected",
			items:   []Item{{ID: "x", Price: dec("1.00"), Quantity: 0}},
			tax:     "0",
			tip:     "0",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settlements, summary, err := Settle(tt.items, dec(tt.tax), dec(tt.tip))
			if (err != nil) != tt.wantErr {
				t.Errorf("Settle() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && tt.validateFunc != nil {
				tt.validateFunc(t, settlements, summary)
			}
		})
	}
}

// TestSettleConservation sweeps awkward amounts and checks the invariant
// that member totals plus the unclaimed remainder always reconcile with
// billSubtotal + tax + tip.
func TestSettleConservation(t *testing.T) {
	cases := []struct {
		price string
		tax   string
		tip   string
	}{
		{"0.01", "0.01", "0.01"},
		{"3.33", "1.07", "2.99"},
		{"19.99", "0.37", "5.55"},
		{"100.00", "8.25", "18.00"},
	}

	for _, c := range cases {
		items := []Item{
			{ID: "i1", Price: dec(c.price), Quantity: 3, Claimants: []string{"a", "b", "c"}},
			{ID: "i2", Price: dec(c.price), Quantity: 1, Claimants: []string{"b"}},
			{ID: "i3", Price: dec(c.price), Quantity: 2},
		}
		settlements, summary, err := Settle(items, dec(c.tax), dec(c.tip))
		if err != nil {
			t.Fatalf("Settle failed: %v", err)
		}

		sum := summary.Unclaimed
		for _, s := range settlements {
			sum = sum.Add(s.Total)
		}
		grand := summary.BillSubtotal.Add(dec(c.tax)).Add(dec(c.tip))
		if !sum.Equal(grand) {
			t.Errorf("price=%s tax=%s tip=%s: totals %s != grand %s", c.price, c.tax, c.tip, sum, grand)
		}
	}
}

// TestSettleDeterministic runs the same input twice and expects identical
// cents; every device must agree on who pays the extra cent.
func TestSettleDeterministic(t *testing.T) {
	items := []Item{
		{ID: "i1", Price: dec("10.00"), Quantity: 1, Claimants: []string{"b", "a", "c"}},
		{ID: "i2", Price: dec("7.77"), Quantity: 2, Claimants: []string{"c", "a"}},
	}

	first, _, err := Settle(items, dec("2.13"), dec("4.01"))
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	second, _, err := Settle(items, dec("2.13"), dec("4.01"))
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}

	for id, want := range first {
		got := second[id]
		if got == nil || !got.Total.Equal(want.Total) || !got.TaxShare.Equal(want.TaxShare) {
			t.Errorf("member %s: second run differs from first", id)
		}
	}
}
