package stripe

import (
	"github.com/leengari/stripetable/internal/domain/errors"
)

// StripeList is an ordered list of rows or of columns
type StripeList struct {
	kind    StripeType
	stripes []*Stripe
}

// NewStripeList creates an empty list of the given kind
func NewStripeList(kind StripeType) *StripeList {
	return &StripeList{kind: kind}
}

// Kind returns whether this list holds rows or columns
func (l *StripeList) Kind() StripeType {
	return l.kind
}

// Len returns the number of stripes
func (l *StripeList) Len() int {
	return len(l.stripes)
}

// Get returns the stripe at index i
func (l *StripeList) Get(i int) (*Stripe, error) {
	if err := errors.CheckIndex(l.kind.String(), i, len(l.stripes)); err != nil {
		return nil, err
	}
	return l.stripes[i], nil
}

// Append adds s at the end
func (l *StripeList) Append(s *Stripe) {
	l.stripes = append(l.stripes, s)
}

// Insert places s at index i; i == Len appends
func (l *StripeList) Insert(i int, s *Stripe) error {
	if err := errors.CheckIndex(l.kind.String(), i, len(l.stripes)+1); err != nil {
		return err
	}
	l.stripes = append(l.stripes, nil)
	copy(l.stripes[i+1:], l.stripes[i:])
	l.stripes[i] = s
	return nil
}

// Remove deletes and returns the stripe at index i
func (l *StripeList) Remove(i int) (*Stripe, error) {
	s, err := l.Get(i)
	if err != nil {
		return nil, err
	}
	l.stripes = append(l.stripes[:i], l.stripes[i+1:]...)
	return s, nil
}

// Swap exchanges the stripes at i and j
func (l *StripeList) Swap(i, j int) error {
	if err := errors.CheckIndex(l.kind.String(), i, len(l.stripes)); err != nil {
		return err
	}
	if err := errors.CheckIndex(l.kind.String(), j, len(l.stripes)); err != nil {
		return err
	}
	l.stripes[i], l.stripes[j] = l.stripes[j], l.stripes[i]
	return nil
}

// All returns the stripes in order. The slice must not be modified.
func (l *StripeList) All() []*Stripe {
	return l.stripes
}

// Titles returns every stripe title in order (nil for untitled stripes)
func (l *StripeList) Titles() []any {
	titles := make([]any, len(l.stripes))
	for i, s := range l.stripes {
		titles[i] = s.Title
	}
	return titles
}

// HasTitles reports whether at least one stripe carries a title
func (l *StripeList) HasTitles() bool {
	for _, s := range l.stripes {
		if s.Title != nil {
			return true
		}
	}
	return false
}

// Clone deep-copies the list
func (l *StripeList) Clone() *StripeList {
	c := &StripeList{kind: l.kind, stripes: make([]*Stripe, len(l.stripes))}
	for i, s := range l.stripes {
		c.stripes[i] = s.Clone()
	}
	return c
}
