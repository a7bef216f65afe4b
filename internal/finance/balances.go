package finance

import (
	"balancebooks/internal/core"

	"github.com/shopspring/decimal"
)

// Beginning resolves the opening balance of p.
//
// An explicit beginning override wins. Otherwise the balance carries forward
// from the previous period's ending (its override, or its own beginning plus
// net). The chain bottoms out at zero on the first period of the ledger.
func (e *Engine) Beginning(p core.Period) decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.beginningLocked(p)
}

// Ending resolves the closing balance of p, honouring an ending override.
func (e *Engine) Ending(p core.Period) decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.endingLocked(p)
}

func (e *Engine) beginningLocked(p core.Period) decimal.Decimal {
	if o, ok := e.snap.Override(p); ok && o.Beginning.Valid {
		return o.Beginning.Decimal
	}
	if !e.hasFirst || !e.first.Before(p) {
		return decimal.Zero
	}
	return e.endingLocked(p.Prev())
}

// endingLocked walks back to the nearest resolved anchor and fills the memo
// forward from there, so long chains cost one pass.
func (e *Engine) endingLocked(p core.Period) decimal.Decimal {
	if v, ok := e.endings[p]; ok {
		return v
	}

	chain := []core.Period{p}
	for q := p; ; {
		if o, ok := e.snap.Override(q); ok && (o.Beginning.Valid || o.Ending.Valid) {
			break
		}
		if !e.hasFirst || !e.first.Before(q) {
			break
		}
		q = q.Prev()
		if _, ok := e.endings[q]; ok {
			break
		}
		chain = append(chain, q)
	}

	for i := len(chain) - 1; i >= 0; i-- {
		q := chain[i]
		if _, ok := e.endings[q]; ok {
			continue
		}
		var ending decimal.Decimal
		o, _ := e.snap.Override(q)
		switch {
		case o.Ending.Valid:
			ending = o.Ending.Decimal
		default:
			var begin decimal.Decimal
			switch {
			case o.Beginning.Valid:
				begin = o.Beginning.Decimal
			case !e.hasFirst || !e.first.Before(q):
				begin = decimal.Zero
			default:
				begin = e.endings[q.Prev()]
			}
			ending = begin.Add(e.totalsLocked(q).Net)
		}
		e.endings[q] = ending
	}
	return e.endings[p]
}
