package accounts

// Tree is an in-memory parent-pointer view over a tenant's chart of accounts.
// It is read-only once built; callers rebuild it after account changes.
type Tree struct {
	byID    map[int64]Account
	ordered []Account
}

// NewTree builds a tree from an account slice. The input is re-sorted by code
// so traversal order is stable regardless of source ordering.
func NewTree(list []Account) *Tree {
	ordered := append([]Account(nil), list...)
	SortByCode(ordered)
	byID := make(map[int64]Account, len(ordered))
	for _, a := range ordered {
		byID[a.ID] = a
	}
	return &Tree{byID: byID, ordered: ordered}
}

// Get returns the account by id.
func (t *Tree) Get(id int64) (Account, bool) {
	a, ok := t.byID[id]
	return a, ok
}

// Accounts returns all accounts in code order.
func (t *Tree) Accounts() []Account {
	return t.ordered
}

// Len returns the number of accounts in the tree.
func (t *Tree) Len() int {
	return len(t.ordered)
}

// ParentOf returns the parent account, or false for roots and unknown ids.
func (t *Tree) ParentOf(id int64) (Account, bool) {
	a, ok := t.byID[id]
	if !ok || a.ParentID == nil {
		return Account{}, false
	}
	parent, ok := t.byID[*a.ParentID]
	return parent, ok
}

// Ancestors returns the strict ancestor chain, parent first, root last.
// Unknown ids and roots yield an empty slice. A broken parent link stops the
// walk rather than erroring.
func (t *Tree) Ancestors(id int64) []Account {
	var chain []Account
	current, ok := t.byID[id]
	if !ok {
		return nil
	}
	for current.ParentID != nil {
		parent, ok := t.byID[*current.ParentID]
		if !ok {
			break
		}
		chain = append(chain, parent)
		current = parent
	}
	return chain
}

// Depth returns the number of ancestors above the account; roots sit at zero.
func (t *Tree) Depth(id int64) int {
	return len(t.Ancestors(id))
}

// IsLeaf reports whether the account is analytical, the only kind that may
// receive entry items.
func (t *Tree) IsLeaf(id int64) bool {
	a, ok := t.byID[id]
	return ok && a.IsLeaf()
}
