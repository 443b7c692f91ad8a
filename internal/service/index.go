package service

import (
	"fmt"

	"github.com/pageza/drinkbook/backend/internal/remote"
)

// Index is a composite index over an equality field and an order field.
type Index struct {
	Equal string
	Order string
}

// Name is the index name migrations create.
func (i Index) Name() string {
	return fmt.Sprintf("idx_recipes_%s_%s", i.Equal, i.Order)
}

// IndexSet lists the composite indexes the database is known to carry.
// Queries mixing an equality filter with ordering on another field are only
// served when a matching index is declared.
type IndexSet []Index

// DefaultIndexes is the set created by migrations.
func DefaultIndexes() IndexSet {
	return IndexSet{{Equal: "category", Order: remote.OrderCreatedAt}}
}

// Has reports whether idx is declared.
func (s IndexSet) Has(idx Index) bool {
	for _, i := range s {
		if i == idx {
			return true
		}
	}
	return false
}

// Check returns remote.ErrMissingIndex naming the first index q would need.
func (s IndexSet) Check(q remote.Query) error {
	if q.OrderBy == "" {
		return nil
	}
	for _, f := range q.Equal {
		if f.Field == q.OrderBy {
			continue
		}
		need := Index{Equal: f.Field, Order: q.OrderBy}
		if !s.Has(need) {
			return fmt.Errorf("%w: create index %s on recipes(%s, %s)",
				remote.ErrMissingIndex, need.Name(), need.Equal, need.Order)
		}
	}
	return nil
}
