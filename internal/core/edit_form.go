package core

// EditableForm is a persisted voucher split back into header, editable lines and bank leg.
type EditableForm struct {
	VoucherID   int                   `json:"voucher_id"`
	Header      VoucherHeader         `json:"header"`
	Lines       []VoucherLine         `json:"lines"`
	BankAccount *BankAccountSelection `json:"bank_account,omitempty"`
	// BankLeg is the persisted balancing line, kept out of Lines.
	BankLeg *VoucherLine `json:"bank_leg,omitempty"`
	// Unresolved lists names that had no reference match. The matching ids are 0.
	Unresolved []UnresolvedReferenceError `json:"unresolved,omitempty"`
}

// Complete reports whether every reference name was resolved.
func (f *EditableForm) Complete() bool {
	return len(f.Unresolved) == 0
}

// FlatLines returns the editable lines followed by the bank leg, which is the shape the
// voucher had when it was persisted.
func (f *EditableForm) FlatLines() []VoucherLine {
	out := make([]VoucherLine, 0, len(f.Lines)+1)
	out = append(out, f.Lines...)
	if f.BankLeg != nil {
		out = append(out, *f.BankLeg)
	}
	return out
}

// MapPersistedLinesToEditableForm rebuilds an editable voucher from the flat line list of a
// stored one. Names are matched case-insensitively after trimming; a name with no match
// leaves its id at 0 and is recorded in Unresolved so historical vouchers stay editable.
func MapPersistedLinesToEditableForm(persisted []PersistedLine, ref *ReferenceData) (*EditableForm, error) {
	if len(persisted) == 0 {
		return nil, ErrEmptyVoucher
	}
	if ref == nil {
		ref = &ReferenceData{}
	}
	idx := newReferenceIndex(ref)

	first := persisted[0]
	form := &EditableForm{
		VoucherID: first.VoucherID,
		Header: VoucherHeader{
			ID:           first.VoucherID,
			CompanyID:    first.CompanyID,
			LocationID:   first.LocationID,
			CurrencyID:   first.CurrencyID,
			ExchangeRate: first.ExchangeRate,
			Date:         first.Date,
			Notes:        first.Notes,
			PaidTo:       first.PaidTo,
			Reference:    first.Reference,
			State:        first.State,
			FormType:     DirectionCredit,
		},
		Lines: make([]VoucherLine, 0, len(persisted)),
	}

	resolve := func(line int, kind string, index nameIndex, name string) int {
		id, blank, ok := index.lookup(name)
		if !ok && !blank {
			form.Unresolved = append(form.Unresolved, UnresolvedReferenceError{Line: line, Kind: kind, Name: name})
		}
		return id
	}

	editable := 0
	for _, p := range persisted {
		if p.IsBankLeg && form.BankLeg == nil {
			form.BankLeg = mapBankLeg(p, ref, idx, form)
			continue
		}
		form.Lines = append(form.Lines, VoucherLine{
			ID:           p.LineID,
			AccountID:    resolve(editable, "account", idx.accounts, p.AccountName),
			CostCenterID: resolve(editable, "cost center", idx.costCenters, p.CostCenterName),
			DepartmentID: resolve(editable, "department", idx.departments, p.DepartmentName),
			PartnerID:    resolve(editable, "partner", idx.partners, p.PartnerName),
			EmployeeID:   resolve(editable, "employee", idx.employees, p.EmployeeName),
			ChequeNo:     p.ChequeNo,
			Note:         p.Note,
			Debit:        p.Debit,
			Credit:       p.Credit,
		})
		editable++
	}

	side := form.Header.FormType.ActiveSide()
	form.Header.AmountTotal = SumSide(form.Lines, side).Round2()
	return form, nil
}

// mapBankLeg resolves the bank leg and derives the form type from it: a debit on the bank
// leg means money came in, so the voucher is a Debit voucher.
func mapBankLeg(p PersistedLine, ref *ReferenceData, idx *referenceIndex, form *EditableForm) *VoucherLine {
	if p.Debit.IsPositive() {
		form.Header.FormType = DirectionDebit
	}

	leg := &VoucherLine{
		ID:       p.LineID,
		ChequeNo: p.ChequeNo,
		Note:     p.Note,
		Debit:    p.Debit,
		Credit:   p.Credit,
	}

	bankID, blank, ok := idx.bankAccounts.lookup(p.BankAccountName)
	if !ok && !blank {
		form.Unresolved = append(form.Unresolved, UnresolvedReferenceError{Line: -1, Kind: "bank account", Name: p.BankAccountName})
	}
	accountID, _, _ := idx.accounts.lookup(p.AccountName)

	if bank := ref.BankAccountByID(bankID); bank != nil {
		form.BankAccount = bank.Selection()
		if accountID == 0 {
			accountID = bank.GLAccountID
		}
	}
	leg.AccountID = accountID
	leg.BankAccountID = bankID
	return leg
}
