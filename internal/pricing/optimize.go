package pricing

import (
	"sort"

	"github.com/xtding233/gacha-wish/internal/token"
)

// variant is one way to buy a pack: the repeatable normal purchase, or the
// one-off first-time double.
type variant struct {
	id, name string
	tok      int
	price    int
}

// maxFirstTime bounds the subset enumeration over one-off variants.
const maxFirstTime = 16

const inf = int(^uint(0) >> 1)

func variants(cat Catalog, first FirstTimeState) (normal, once []variant) {
	for _, p := range cat.Packs {
		if p.FirstTimeX2 && first[p.ID] && len(once) < maxFirstTime {
			once = append(once, variant{id: p.ID + "#x2", name: p.Name + " (x2)", tok: p.Tokens * 2, price: p.PriceCents})
		}
		normal = append(normal, variant{id: p.ID, name: p.Name, tok: p.Tokens + p.BonusTokens, price: p.PriceCents})
	}
	return normal, once
}

// subset returns the one-off variants selected by mask and their totals.
func subset(once []variant, mask int) (picked []variant, tok, price int) {
	for i, v := range once {
		if mask&(1<<i) != 0 {
			picked = append(picked, v)
			tok += v.tok
			price += v.price
		}
	}
	return picked, tok, price
}

// MinCostAtLeastTokens finds the minimum-cost combination to obtain at least
// targetTokens. Normal packs may be bought any number of times; each
// available first-time double at most once.
func MinCostAtLeastTokens(cat Catalog, targetTokens int, first FirstTimeState) Plan {
	if targetTokens <= 0 || len(cat.Packs) == 0 {
		return Plan{Currency: cat.Currency}
	}
	normal, once := variants(cat, first)

	// cost[t] = min cost to obtain at least t tokens with normal packs
	cost := make([]int, targetTokens+1)
	choice := make([]int, targetTokens+1)
	for t := 1; t <= targetTokens; t++ {
		cost[t], choice[t] = inf, -1
		for i, v := range normal {
			if v.tok <= 0 {
				continue
			}
			prev := max(0, t-v.tok)
			if cost[prev] != inf && cost[prev]+v.price < cost[t] {
				cost[t], choice[t] = cost[prev]+v.price, i
			}
		}
	}

	bestMask, bestCost := -1, inf
	for mask := 0; mask < 1<<len(once); mask++ {
		_, tok, price := subset(once, mask)
		rest := max(0, targetTokens-tok)
		if cost[rest] == inf {
			continue
		}
		if c := price + cost[rest]; c < bestCost {
			bestMask, bestCost = mask, c
		}
	}
	if bestMask < 0 {
		return Plan{Currency: cat.Currency}
	}

	picked, tok, _ := subset(once, bestMask)
	for t := max(0, targetTokens-tok); t > 0 && choice[t] >= 0; {
		v := normal[choice[t]]
		picked = append(picked, v)
		t = max(0, t-v.tok)
	}
	return buildPlan(cat, picked)
}

// MaxTokensUnderBudget computes the maximum tokens purchasable with budgetCents.
// When the store adds tax on top, the budget is reduced to its pre-tax equivalent.
func MaxTokensUnderBudget(cat Catalog, budgetCents int, first FirstTimeState) Plan {
	if budgetCents <= 0 || len(cat.Packs) == 0 {
		return Plan{Currency: cat.Currency}
	}
	normal, once := variants(cat, first)

	effBudget := budgetCents
	if cat.TaxRate > 0 {
		effBudget = int(float64(budgetCents) / (1 + cat.TaxRate))
	}

	// best[c] = max tokens with cost <= c; choice -1 carries best[c-1]
	best := make([]int, effBudget+1)
	choice := make([]int, effBudget+1)
	choice[0] = -1
	for c := 1; c <= effBudget; c++ {
		best[c], choice[c] = best[c-1], -1
		for i, v := range normal {
			if v.price > 0 && v.price <= c && best[c-v.price]+v.tok > best[c] {
				best[c], choice[c] = best[c-v.price]+v.tok, i
			}
		}
	}

	bestMask, bestTok := 0, -1
	for mask := 0; mask < 1<<len(once); mask++ {
		_, tok, price := subset(once, mask)
		if price > effBudget {
			continue
		}
		if total := tok + best[effBudget-price]; total > bestTok {
			bestMask, bestTok = mask, total
		}
	}

	picked, _, price := subset(once, bestMask)
	for c := effBudget - price; c > 0; {
		if choice[c] < 0 {
			c--
			continue
		}
		v := normal[choice[c]]
		picked = append(picked, v)
		c -= v.price
	}
	return buildPlan(cat, picked)
}

// MinCostForWishes plans the cheapest top-up that buys at least wishes fates.
func MinCostForWishes(cat Catalog, wishes int, first FirstTimeState) Plan {
	return MinCostAtLeastTokens(cat, token.Primogems(wishes), first)
}

func buildPlan(cat Catalog, picked []variant) Plan {
	type key struct {
		id, name   string
		price, tok int
	}
	counts := map[key]int{}
	for _, v := range picked {
		counts[key{v.id, v.name, v.price, v.tok}]++
	}

	plan := Plan{Currency: cat.Currency}
	for k, qty := range counts {
		sub := k.price * qty
		plan.Purchases = append(plan.Purchases, Purchase{
			PackID:     k.id,
			Name:       k.name,
			Qty:        qty,
			UnitPrice:  k.price,
			UnitTokens: k.tok,
			Subtotal:   sub,
		})
		plan.SubCents += sub
		plan.TotalTokens += k.tok * qty
	}
	sort.Slice(plan.Purchases, func(i, j int) bool {
		return plan.Purchases[i].PackID < plan.Purchases[j].PackID
	})
	plan.TaxCents, plan.TotalCents = applyTax(plan.SubCents, cat.TaxRate)
	plan.Wishes = plan.TotalTokens / token.PrimogemsPerFate
	return plan
}
