package coupon

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

var _ Repository = (*StaticRepository)(nil)

// StaticRepository is an in-memory rule table.
type StaticRepository struct {
	mu    sync.Mutex
	rules map[string]*Rule
}

// NewStaticRepository indexes rules by normalized code.
func NewStaticRepository(rules []Rule) *StaticRepository {
	r := &StaticRepository{rules: make(map[string]*Rule, len(rules))}
	for i := range rules {
		rule := rules[i]
		rule.Code = NormalizeCode(rule.Code)
		r.rules[rule.Code] = &rule
	}
	return r
}

// FindByCode returns a copy of the rule, or ErrInvalidCoupon.
func (r *StaticRepository) FindByCode(_ context.Context, code string) (*Rule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rule, ok := r.rules[NormalizeCode(code)]
	if !ok {
		return nil, ErrInvalidCoupon
	}
	c := *rule
	return &c, nil
}

// IncrementUses records one redemption.
func (r *StaticRepository) IncrementUses(_ context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rule, ok := r.rules[NormalizeCode(code)]
	if !ok {
		return ErrInvalidCoupon
	}
	rule.Uses++
	return nil
}

// DefaultRules are the promo codes advertised on the cart page.
func DefaultRules() []Rule {
	return []Rule{
		{
			Code:         "SAVE10",
			DiscountType: DiscountPercentage,
			Value:        decimal.NewFromInt(10),
			Description:  "10% off your order",
		},
		{
			Code:         "WELCOME20",
			DiscountType: DiscountPercentage,
			Value:        decimal.NewFromInt(20),
			Description:  "20% off for new customers",
		},
		{
			Code:         "FREESHIP",
			DiscountType: DiscountFreeShipping,
			Description:  "Free delivery",
		},
	}
}
