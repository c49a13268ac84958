package descriptor

// Order selects how List sorts descriptors.
type Order string

const (
	OrderByIdentifier Order = "identifier"
	// OrderByLastUsed puts the most recently used first; never-used descriptors go last.
	OrderByLastUsed  Order = "last_used"
	OrderByUsedCount Order = "used_count"
)

// ListOptions provides ordering and paging for listing descriptors.
type ListOptions struct {
	OrderBy Order
	Limit   int
	Offset  int
}

// Valid reports whether o is a known order. The empty order is valid.
func (o Order) Valid() bool {
	switch o {
	case "", OrderByIdentifier, OrderByLastUsed, OrderByUsedCount:
		return true
	default:
		return false
	}
}
