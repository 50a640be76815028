package internal

// NoActiveAgreement is the sentinel stored in the ata column when the portal
// reports no agreement in force for the item.
const NoActiveAgreement = "Sem Ata Vigente"

// CatalogItem mirrors one row of the items table. The portal correlates rows
// by ExternalCode (dddd.dddd.dddddd); everything else is nullable because
// extraction is best-effort.
type CatalogItem struct {
	ID                int
	ExternalCode      *string
	DisplayName       *string
	AgreementRef      *string
	AgreementValidity *string
	AgreementPrice    *float64
	ReferenceValidity *string
	ReferencePrice    *float64
	UpdatedAt         *string
}

// ItemRef is the minimal handle the refresh loop needs per stored item.
type ItemRef struct {
	ID           int
	ExternalCode string
}

// ItemDetail carries everything the per-item lookup reads from the detail
// view. DisplayName stays nil when the name input could not be read so a
// known name is never clobbered by absence of data.
type ItemDetail struct {
	DisplayName       *string
	AgreementRef      *string
	AgreementValidity *string
	AgreementPrice    *float64
	ReferenceValidity *string
	ReferencePrice    *float64
}

func StringPtr(v string) *string  { return &v }
func FloatPtr(v float64) *float64 { return &v }
