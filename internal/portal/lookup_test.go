package portal

import (
	"errors"
	"testing"

	"gcesync/internal"
)

const testCode = "0001.0002.000003"

func newDetailPage() *fakePage {
	page := newFakePage()
	page.visible[searchMarker] = true
	page.entries[resultEntrySel] = []string{"9999 - " + testCode + " - Caneta"}
	page.visible[nameInput] = true
	page.attrs[nameInput+"|value"] = "Caneta esferográfica azul"
	page.visible[refValidityInput] = true
	page.values[refValidityInput] = "23/08/2025 00:00:00"
	page.visible[refPriceInput] = true
	page.values[refPriceInput] = "2.315,315"
	page.visible[activeFlagInput] = true
	return page
}

func fastLookup(page Page) *Lookup {
	l := NewLookup(page, "https://portal/search")
	l.OpenSettle = 0
	l.InputWait = 0
	l.ResultWait = 0
	l.FieldWait = 0
	l.TableWait = 0
	return l
}

func TestLookupWithActiveAgreement(t *testing.T) {
	page := newDetailPage()
	page.values[activeFlagInput] = "Sim"
	page.onClick = func(p *fakePage, selector string) {
		if selector == agreementsButton {
			p.visible[agreementRowsSel] = true
		}
	}
	page.rows[agreementRowsSel] = []string{"181/2024", "Fornecedor", "31/12/2025", "UN", "1.234,567"}

	detail, err := fastLookup(page).Fetch(testCode)
	if err != nil {
		t.Fatal(err)
	}

	if detail.DisplayName == nil || *detail.DisplayName != "Caneta esferográfica azul" {
		t.Fatalf("name = %v", detail.DisplayName)
	}
	if detail.AgreementRef == nil || *detail.AgreementRef != "181/2024" {
		t.Fatalf("ata = %v", detail.AgreementRef)
	}
	if detail.AgreementValidity == nil || *detail.AgreementValidity != "2025-12-31" {
		t.Fatalf("validade = %v", detail.AgreementValidity)
	}
	// The agreement price path does not round.
	if detail.AgreementPrice == nil || *detail.AgreementPrice != 1234.567 {
		t.Fatalf("valor = %v", detail.AgreementPrice)
	}
	// The reference price path does.
	if detail.ReferencePrice == nil || *detail.ReferencePrice != 2315.32 {
		t.Fatalf("reference price = %v", detail.ReferencePrice)
	}
	if detail.ReferenceValidity == nil || *detail.ReferenceValidity != "2025-08-23" {
		t.Fatalf("reference validity = %v", detail.ReferenceValidity)
	}
}

func TestLookupWithoutActiveAgreement(t *testing.T) {
	page := newDetailPage()
	page.values[activeFlagInput] = "Não"

	detail, err := fastLookup(page).Fetch(testCode)
	if err != nil {
		t.Fatal(err)
	}

	if detail.AgreementRef == nil || *detail.AgreementRef != internal.NoActiveAgreement {
		t.Fatalf("ata = %v, want sentinel", detail.AgreementRef)
	}
	if detail.AgreementValidity != nil || detail.AgreementPrice != nil {
		t.Fatalf("agreement fields set without an agreement: %+v", detail)
	}
	if detail.ReferenceValidity == nil || detail.ReferencePrice == nil {
		t.Fatal("reference fields must still be read")
	}
}

func TestLookupNotFound(t *testing.T) {
	page := newDetailPage()
	page.entries[resultEntrySel] = nil

	_, err := fastLookup(page).Fetch(testCode)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	// Cleanup guarantee: back on the search view after the failure.
	if page.gotos[len(page.gotos)-1] != "https://portal/search" {
		t.Fatalf("gotos = %v", page.gotos)
	}
}

func TestLookupMissingDetailFields(t *testing.T) {
	page := newDetailPage()
	page.visible[nameInput] = false
	page.visible[refValidityInput] = false
	page.visible[refPriceInput] = false
	page.values[activeFlagInput] = "Não"

	detail, err := fastLookup(page).Fetch(testCode)
	if err != nil {
		t.Fatal(err)
	}
	if detail.DisplayName != nil || detail.ReferenceValidity != nil || detail.ReferencePrice != nil {
		t.Fatalf("unreadable fields must stay nil: %+v", detail)
	}
}

func TestLookupAgreementTableTimeout(t *testing.T) {
	page := newDetailPage()
	page.values[activeFlagInput] = "Sim"
	// btnAtasVigentes click never makes the table visible.

	_, err := fastLookup(page).Fetch(testCode)
	if err == nil {
		t.Fatal("expected error from missing agreements table")
	}
	if page.gotos[len(page.gotos)-1] != "https://portal/search" {
		t.Fatalf("must return to the search view on failure, gotos = %v", page.gotos)
	}
}
