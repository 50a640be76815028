package portal

import (
	"fmt"
	"strings"
	"time"

	"gcesync/internal"
	"gcesync/internal/classify"
)

// Detail view selectors. These ids are stable across portal releases.
const (
	nameInput         = "#NomeModificador"
	refValidityInput  = "#DataValidadeVuma"
	refPriceInput     = "#ValorVumaGlobal"
	activeFlagInput   = "#ItemAtaVigente"
	agreementsButton  = "#btnAtasVigentes"
	agreementRowsSel  = "tr.odd, tr.even"
	resultEntrySel    = "li"
	activeFlagYes     = "Sim"
	minAgreementCells = 5
)

// Lookup searches the portal for one external code at a time and reads the
// item's detail view.
type Lookup struct {
	page      Page
	searchURL string

	// InputWait bounds the wait for the search input on the search view.
	InputWait time.Duration
	// ResultWait bounds the wait for a result entry containing the code.
	ResultWait time.Duration
	// FieldWait bounds each detail field read.
	FieldWait time.Duration
	// TableWait bounds the wait for the active agreements table.
	TableWait time.Duration
	// OpenSettle is a fixed delay after opening the detail view.
	OpenSettle time.Duration
}

func NewLookup(page Page, searchURL string) *Lookup {
	return &Lookup{
		page:       page,
		searchURL:  searchURL,
		InputWait:  10 * time.Second,
		ResultWait: 15 * time.Second,
		FieldWait:  5 * time.Second,
		TableWait:  12 * time.Second,
		OpenSettle: time.Second,
	}
}

// Fetch searches for code and reads its detail. It returns ErrNotFound when
// the result list never shows the code; any other error aborts only this
// item. On every exit path the page is returned to the search view so the
// next lookup starts from a known state.
func (l *Lookup) Fetch(code string) (detail internal.ItemDetail, err error) {
	defer func() {
		_ = l.page.Goto(l.searchURL)
	}()

	if err := l.page.Goto(l.searchURL); err != nil {
		return detail, err
	}
	if err := l.page.WaitVisible(searchMarker, l.InputWait); err != nil {
		return detail, fmt.Errorf("portal: search input: %w", err)
	}
	if err := l.page.Fill(searchMarker, code); err != nil {
		return detail, err
	}
	if err := l.page.PressEnter(); err != nil {
		return detail, err
	}

	if err := l.page.WaitContains(resultEntrySel, code, l.ResultWait); err != nil {
		return detail, fmt.Errorf("%w: %s", ErrNotFound, code)
	}
	if err := l.page.DoubleClickContains(resultEntrySel, code); err != nil {
		return detail, err
	}
	time.Sleep(l.OpenSettle)

	// Name and reference fields are best-effort: a missing input leaves the
	// field nil and the lookup carries on.
	detail.DisplayName = l.readName()
	detail.ReferenceValidity = l.readReferenceValidity()
	detail.ReferencePrice = l.readReferencePrice()

	// The active-agreement flag is mandatory; without it the record would be
	// ambiguous, so a timeout here fails the whole item.
	if err := l.page.WaitVisible(activeFlagInput, l.ResultWait); err != nil {
		return detail, fmt.Errorf("portal: agreement flag: %w", err)
	}
	flag, err := l.page.InputValue(activeFlagInput)
	if err != nil {
		return detail, err
	}

	if strings.TrimSpace(flag) != activeFlagYes {
		detail.AgreementRef = internal.StringPtr(internal.NoActiveAgreement)
		return detail, nil
	}

	if err := l.readAgreement(&detail); err != nil {
		return detail, err
	}
	return detail, nil
}

func (l *Lookup) readName() *string {
	if err := l.page.WaitVisible(nameInput, l.FieldWait); err != nil {
		return nil
	}
	value, err := l.page.Attribute(nameInput, "value")
	if err != nil || value == nil || strings.TrimSpace(*value) == "" {
		return nil
	}
	return value
}

func (l *Lookup) readReferenceValidity() *string {
	if err := l.page.WaitVisible(refValidityInput, l.FieldWait); err != nil {
		return nil
	}
	raw, err := l.page.InputValue(refValidityInput)
	if err != nil || !strings.Contains(raw, "/") {
		return nil
	}
	// The input carries "23/08/2025 00:00:00"; only the date part matters.
	datePart, _, _ := strings.Cut(strings.TrimSpace(raw), " ")
	return classify.ParseDate(datePart)
}

func (l *Lookup) readReferencePrice() *float64 {
	if err := l.page.WaitVisible(refPriceInput, l.FieldWait); err != nil {
		return nil
	}
	raw, err := l.page.InputValue(refPriceInput)
	if err != nil {
		return nil
	}
	return classify.ParseMoney(raw)
}

// readAgreement opens the active agreements table and maps the first row:
// column 0 is the agreement reference, column 2 the validity date, column 4
// the unit price. The price is stored unrounded on this path.
func (l *Lookup) readAgreement(detail *internal.ItemDetail) error {
	if err := l.page.Click(agreementsButton); err != nil {
		return err
	}
	if err := l.page.WaitVisible(agreementRowsSel, l.TableWait); err != nil {
		return fmt.Errorf("portal: agreements table: %w", err)
	}
	cells, err := l.page.FirstRowCells(agreementRowsSel)
	if err != nil {
		return err
	}
	if len(cells) < minAgreementCells {
		return fmt.Errorf("portal: agreements row has %d cells, want at least %d", len(cells), minAgreementCells)
	}

	ref := strings.TrimSpace(cells[0])
	detail.AgreementRef = &ref
	detail.AgreementValidity = classify.ParseDate(strings.TrimSpace(cells[2]))
	detail.AgreementPrice = classify.ParseDecimal(cells[4])
	return nil
}
