package core

import (
	"strings"

	"golang.org/x/text/cases"
)

// RefItem is one row of a reference table: an id and its display name.
type RefItem struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Account is a chart-of-accounts row. Group accounts only aggregate and cannot be posted to.
type Account struct {
	ID      int    `json:"id"`
	Code    string `json:"code"`
	Name    string `json:"name"`
	IsGroup bool   `json:"is_group"`
}

// BankAccount is a bank or cash account with its associated GL account.
type BankAccount struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	GLAccountID int    `json:"gl_account_id"`
}

// Selection returns the balancing-leg selection for b.
func (b BankAccount) Selection() *BankAccountSelection {
	return &BankAccountSelection{ID: b.ID, Name: b.Name, GLCode: b.GLAccountID}
}

// ReferenceData holds the lookup tables for one form session. It is never mutated.
type ReferenceData struct {
	Accounts     []Account     `json:"accounts"`
	CostCenters  []RefItem     `json:"cost_centers"`
	Departments  []RefItem     `json:"departments"`
	Partners     []RefItem     `json:"partners"`
	Employees    []RefItem     `json:"employees"`
	BankAccounts []BankAccount `json:"bank_accounts"`
}

// SelectableAccounts returns the leaf accounts a line may post to.
func (r *ReferenceData) SelectableAccounts() []Account {
	out := make([]Account, 0, len(r.Accounts))
	for _, a := range r.Accounts {
		if !a.IsGroup {
			out = append(out, a)
		}
	}
	return out
}

// BankAccountByID returns the bank account with id, or nil.
func (r *ReferenceData) BankAccountByID(id int) *BankAccount {
	for i := range r.BankAccounts {
		if r.BankAccounts[i].ID == id {
			return &r.BankAccounts[i]
		}
	}
	return nil
}

// nameKey folds case and trims so "  Cash at Bank " matches "cash at bank".
func nameKey(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// nameIndex maps folded names to ids. When two rows fold to the same name the first
// one in table order wins.
type nameIndex map[string]int

func (idx nameIndex) add(name string, id int) {
	k := nameKey(name)
	if k == "" {
		return
	}
	if _, seen := idx[k]; !seen {
		idx[k] = id
	}
}

// lookup returns the id for name and whether it was found. A blank name is "not set"
// rather than unresolved.
func (idx nameIndex) lookup(name string) (id int, blank, ok bool) {
	k := nameKey(name)
	if k == "" {
		return 0, true, true
	}
	id, ok = idx[k]
	return id, false, ok
}

type referenceIndex struct {
	accounts     nameIndex
	costCenters  nameIndex
	departments  nameIndex
	partners     nameIndex
	employees    nameIndex
	bankAccounts nameIndex
}

func itemIndex(items []RefItem) nameIndex {
	idx := make(nameIndex, len(items))
	for _, it := range items {
		idx.add(it.Name, it.ID)
	}
	return idx
}

func newReferenceIndex(r *ReferenceData) *referenceIndex {
	ri := &referenceIndex{
		accounts:     make(nameIndex, len(r.Accounts)),
		costCenters:  itemIndex(r.CostCenters),
		departments:  itemIndex(r.Departments),
		partners:     itemIndex(r.Partners),
		employees:    itemIndex(r.Employees),
		bankAccounts: make(nameIndex, len(r.BankAccounts)),
	}
	for _, a := range r.Accounts {
		ri.accounts.add(a.Name, a.ID)
	}
	for _, b := range r.BankAccounts {
		ri.bankAccounts.add(b.Name, b.ID)
	}
	return ri
}
