// Package classify maps transactions to balancing ledger postings through
// an ordered pattern rule set.
package classify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/eivindsb/dnbimport/pkg/models"
)

var oneHundred = decimal.NewFromInt(100)

// Options configures the fallback behavior for transactions no pattern
// matches. When SplitPercentage and SharedAccount are both set, the
// unmatched amount is split between Account and SharedAccount.
type Options struct {
	DefaultAccount  string
	SplitPercentage *decimal.Decimal
	SharedAccount   string
}

type compiledPattern struct {
	account string
	splits  []AccountSplit
	needle  string         // lowercased substring, when re is nil
	re      *regexp.Regexp // set for regex patterns
}

func (c *compiledPattern) matches(description string) bool {
	if c.re != nil {
		return c.re.MatchString(description)
	}
	return strings.Contains(strings.ToLower(description), c.needle)
}

// Engine is the rule-based classifier. It evaluates patterns in order and
// produces postings that sum to the exact negation of the primary posting.
type Engine struct {
	patterns []compiledPattern
	opts     Options
}

// New compiles the pattern list. Invalid regexes and split lists that do
// not sum to 100 are rejected here rather than per transaction.
func New(patterns []Pattern, opts Options) (*Engine, error) {
	compiled := make([]compiledPattern, 0, len(patterns))
	for i, p := range patterns {
		if p.Account == "" && len(p.Splits) == 0 {
			return nil, fmt.Errorf("pattern %d (%q): no destination account", i, p.Match)
		}
		if len(p.Splits) > 0 {
			total := decimal.Zero
			for _, s := range p.Splits {
				total = total.Add(decimal.NewFromFloat(s.Percentage))
			}
			if !total.Equal(oneHundred) {
				return nil, fmt.Errorf("pattern %d (%q): split percentages sum to %s, want 100", i, p.Match, total)
			}
		}

		cp := compiledPattern{account: p.Account, splits: p.Splits}
		if p.Regex {
			re, err := regexp.Compile(p.Match)
			if err != nil {
				return nil, fmt.Errorf("pattern %d: invalid regex %q: %w", i, p.Match, err)
			}
			cp.re = re
		} else {
			cp.needle = strings.ToLower(p.Match)
		}
		compiled = append(compiled, cp)
	}

	if opts.SplitPercentage != nil {
		pct := *opts.SplitPercentage
		if pct.IsNegative() || pct.GreaterThan(oneHundred) {
			return nil, fmt.Errorf("default split percentage %s out of range", pct)
		}
	}

	return &Engine{patterns: compiled, opts: opts}, nil
}

// Classify returns the balancing postings for one transaction. A nil, nil
// return means no pattern matched and no default account is configured;
// the caller keeps the entry with only its primary posting.
func (e *Engine) Classify(txn models.ParsedTransaction, raw models.RawTransaction, primary models.Posting) ([]models.Posting, error) {
	balance := primary.Negated()

	for _, p := range e.patterns {
		if !p.matches(txn.Description) {
			continue
		}
		if len(p.splits) > 0 {
			return splitPostings(balance, p.splits)
		}
		return []models.Posting{{Account: p.account, Amount: balance.Amount, Currency: balance.Currency}}, nil
	}

	if e.opts.DefaultAccount == "" {
		return nil, nil
	}

	if e.opts.SplitPercentage != nil && e.opts.SharedAccount != "" {
		pct, _ := e.opts.SplitPercentage.Float64()
		return splitPostings(balance, []AccountSplit{
			{Account: e.opts.DefaultAccount, Percentage: pct},
			{Account: e.opts.SharedAccount, Percentage: 100 - pct},
		})
	}

	return []models.Posting{{Account: e.opts.DefaultAccount, Amount: balance.Amount, Currency: balance.Currency}}, nil
}

// splitPostings divides the balancing amount by percentage. Every leg but
// the last rounds to two places; the last takes the exact remainder so the
// entry always balances.
func splitPostings(balance models.Posting, splits []AccountSplit) ([]models.Posting, error) {
	postings := make([]models.Posting, 0, len(splits))
	remainder := balance.Amount

	for i, s := range splits {
		var amount decimal.Decimal
		if i == len(splits)-1 {
			amount = remainder
		} else {
			pct := decimal.NewFromFloat(s.Percentage)
			amount = balance.Amount.Mul(pct).Div(oneHundred).Round(2)
			remainder = remainder.Sub(amount)
		}
		postings = append(postings, models.Posting{
			Account:  s.Account,
			Amount:   amount,
			Currency: balance.Currency,
		})
	}

	return postings, nil
}
