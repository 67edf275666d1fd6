package agent

import "strings"

// Price holds per-million-token USD rates for one model.
type Price struct {
	PromptUSDPerMTok     float64
	CompletionUSDPerMTok float64
}

// PriceTable maps model name prefixes to rates. The runtime converts
// token usage into the cumulative USD figure reported at end of turn.
type PriceTable map[string]Price

// DefaultPriceTable returns published rates for the common chat models.
// Entries are matched by longest prefix, so dated snapshots such as
// "gpt-4o-2024-08-06" resolve to their base model.
func DefaultPriceTable() PriceTable {
	return PriceTable{
		"gpt-4o-mini":  {PromptUSDPerMTok: 0.15, CompletionUSDPerMTok: 0.60},
		"gpt-4o":       {PromptUSDPerMTok: 2.50, CompletionUSDPerMTok: 10.00},
		"gpt-4.1-mini": {PromptUSDPerMTok: 0.40, CompletionUSDPerMTok: 1.60},
		"gpt-4.1-nano": {PromptUSDPerMTok: 0.10, CompletionUSDPerMTok: 0.40},
		"gpt-4.1":      {PromptUSDPerMTok: 2.00, CompletionUSDPerMTok: 8.00},
		"o3-mini":      {PromptUSDPerMTok: 1.10, CompletionUSDPerMTok: 4.40},
	}
}

// Cost returns the USD cost of one completion call. Unknown models cost
// zero; the caller keeps working with cost tracking disabled rather
// than failing the turn.
func (t PriceTable) Cost(model string, u Usage) float64 {
	var best string
	for prefix := range t {
		if strings.HasPrefix(model, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return 0
	}
	p := t[best]
	return float64(u.PromptTokens)/1e6*p.PromptUSDPerMTok +
		float64(u.CompletionTokens)/1e6*p.CompletionUSDPerMTok
}
