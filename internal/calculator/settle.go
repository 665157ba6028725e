// Package calculator implements the fair-split settlement math.
//
// Settle is a pure function: every device runs it locally against its
// reconciled copy of the session, so the same inputs must yield the same
// cents on every machine. All arithmetic happens in integer minor units;
// rounding remainders are assigned by the largest-remainder method with
// ties broken by ascending member id.
package calculator

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Item carries the slice of a receipt line the settlement needs.
type Item struct {
	ID        string
	Price     decimal.Decimal // unit price
	Quantity  int
	Claimants []string // member IDs splitting this item; empty = unclaimed
}

// Settlement is one member's computed share of the bill.
type Settlement struct {
	Subtotal decimal.Decimal
	TaxShare decimal.Decimal
	TipShare decimal.Decimal
	Total    decimal.Decimal
}

// Summary reconciles the per-member settlements against the whole bill:
// the sum of member totals plus Unclaimed equals BillSubtotal + tax + tip.
type Summary struct {
	// BillSubtotal is the sum of price*quantity over all items, claimed
	// or not. It is the tax/tip allocation denominator.
	BillSubtotal decimal.Decimal

	// ClaimedSubtotal is the portion of BillSubtotal covered by claims.
	ClaimedSubtotal decimal.Decimal

	// Unclaimed is the liability attributed to nobody: unclaimed item
	// cost plus the tax/tip proportional to it.
	Unclaimed decimal.Decimal
}

// Settle computes each claiming member's owed amount.
//
// Each item's cost divides evenly across its claimants; unclaimed items
// contribute to nobody but stay in the tax/tip denominator, because tax
// and tip apply to the whole bill regardless of claim status. Tax and tip
// are absolute amounts, never percentages.
func Settle(items []Item, tax, tip decimal.Decimal) (map[string]*Settlement, Summary, error) {
	if tax.IsNegative() {
		return nil, Summary{}, fmt.Errorf("tax cannot be negative")
	}
	if tip.IsNegative() {
		return nil, Summary{}, fmt.Errorf("tip cannot be negative")
	}

	subCents := make(map[string]int64)
	var billSub, claimedSub int64

	for _, item := range items {
		if item.Quantity < 1 {
			return nil, Summary{}, fmt.Errorf("item %s has non-positive quantity %d", item.ID, item.Quantity)
		}
		if item.Price.IsNegative() {
			return nil, Summary{}, fmt.Errorf("item %s has negative price", item.ID)
		}

		total := toCents(item.Price) * int64(item.Quantity)
		billSub += total

		if len(item.Claimants) == 0 {
			continue
		}
		claimedSub += total

		// Even split; leftover cents go to the earliest claimants in
		// sorted member-id order so every device agrees on who pays
		// the extra cent.
		claimants := append([]string(nil), item.Claimants...)
		sort.Strings(claimants)
		n := int64(len(claimants))
		base, rem := total/n, total%n
		for i, memberID := range claimants {
			share := base
			if int64(i) < rem {
				share++
			}
			subCents[memberID] += share
		}
	}

	taxShares := allocate(toCents(tax), subCents, claimedSub, billSub)
	tipShares := allocate(toCents(tip), subCents, claimedSub, billSub)

	settlements := make(map[string]*Settlement, len(subCents))
	var memberTotal int64
	for memberID, sub := range subCents {
		total := sub + taxShares[memberID] + tipShares[memberID]
		memberTotal += total
		settlements[memberID] = &Settlement{
			Subtotal: fromCents(sub),
			TaxShare: fromCents(taxShares[memberID]),
			TipShare: fromCents(tipShares[memberID]),
			Total:    fromCents(total),
		}
	}

	grand := billSub + toCents(tax) + toCents(tip)
	summary := Summary{
		BillSubtotal:    fromCents(billSub),
		ClaimedSubtotal: fromCents(claimedSub),
		Unclaimed:       fromCents(grand - memberTotal),
	}
	return settlements, summary, nil
}

// allocate distributes amount across members proportionally to their
// subtotals (memberSub/billSub) using the largest-remainder method.
// The members' collective target is amount*claimedSub/billSub rounded
// half-up; the rest stays with the unclaimed remainder.
func allocate(amount int64, subCents map[string]int64, claimedSub, billSub int64) map[string]int64 {
	shares := make(map[string]int64, len(subCents))
	if amount == 0 || billSub == 0 || claimedSub == 0 {
		return shares
	}

	memberIDs := make([]string, 0, len(subCents))
	for memberID := range subCents {
		memberIDs = append(memberIDs, memberID)
	}
	sort.Strings(memberIDs)

	remainders := make(map[string]int64, len(subCents))
	var floored int64
	for _, memberID := range memberIDs {
		num := amount * subCents[memberID]
		shares[memberID] = num / billSub
		remainders[memberID] = num % billSub
		floored += shares[memberID]
	}

	target := roundHalfUp(amount*claimedSub, billSub)
	leftover := target - floored

	// Hand out leftover cents by descending remainder, member id ascending
	// on ties. Sorting member ids first makes the whole pass stable.
	sort.SliceStable(memberIDs, func(i, j int) bool {
		return remainders[memberIDs[i]] > remainders[memberIDs[j]]
	})
	for i := int64(0); i < leftover && i < int64(len(memberIDs)); i++ {
		shares[memberIDs[i]]++
	}
	return shares
}

func roundHalfUp(num, den int64) int64 {
	q, r := num/den, num%den
	if 2*r >= den {
		q++
	}
	return q
}

func toCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

func fromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}
