package doctypes

import "time"

// Category groups document types by what they attest to.
type Category string

const (
	CategoryIdentification Category = "identification"
	CategoryFinancial      Category = "financial"
	CategoryProperty       Category = "property"
	CategoryEmployment     Category = "employment"
	CategoryTax            Category = "tax"
	CategoryInsurance      Category = "insurance"
	CategoryLegal          Category = "legal"
	CategoryOther          Category = "other"
	CategoryUnknown        Category = "unknown"
)

// ParseCategory maps a stored value to a Category, falling back to
// CategoryUnknown rather than failing on unrecognized input.
func ParseCategory(s string) Category {
	switch Category(s) {
	case CategoryIdentification, CategoryFinancial, CategoryProperty,
		CategoryEmployment, CategoryTax, CategoryInsurance,
		CategoryLegal, CategoryOther:
		return Category(s)
	}
	return CategoryUnknown
}

// TargetObject names the kind of business entity a document is evidence for.
type TargetObject string

const (
	TargetCase        TargetObject = "case"
	TargetPerson      TargetObject = "person"
	TargetBankAccount TargetObject = "bank_account"
	TargetCreditCard  TargetObject = "credit_card"
	TargetLoan        TargetObject = "loan"
	TargetAsset       TargetObject = "asset"
	TargetIncome      TargetObject = "income"
	TargetCompany     TargetObject = "company"
	TargetUnknown     TargetObject = "unknown"
)

// ParseTargetObject maps a stored value to a TargetObject with an unknown
// fallback.
func ParseTargetObject(s string) TargetObject {
	switch TargetObject(s) {
	case TargetCase, TargetPerson, TargetBankAccount, TargetCreditCard,
		TargetLoan, TargetAsset, TargetIncome, TargetCompany:
		return TargetObject(s)
	}
	return TargetUnknown
}

// Mutability says whether a document's file is expected to be replaced.
// Updatable types keep version history when their file is swapped.
type Mutability string

const (
	MutabilityOneTime   Mutability = "one_time"
	MutabilityUpdatable Mutability = "updatable"
	MutabilityRecurring Mutability = "recurring"
	MutabilityUnknown   Mutability = "unknown"
)

// ParseMutability maps a stored value to a Mutability with an unknown
// fallback.
func ParseMutability(s string) Mutability {
	switch Mutability(s) {
	case MutabilityOneTime, MutabilityUpdatable, MutabilityRecurring:
		return Mutability(s)
	}
	return MutabilityUnknown
}

// Frequency is the expected cadence for recurring document types.
type Frequency string

const (
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
	FrequencyNone      Frequency = ""
)

// ParseFrequency maps a stored value to a Frequency; anything unrecognized
// (including NULL) reads as FrequencyNone.
func ParseFrequency(s string) Frequency {
	switch Frequency(s) {
	case FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return Frequency(s)
	}
	return FrequencyNone
}

// DocType is a read-only descriptor for a kind of case document.
type DocType struct {
	ID           string
	DisplayName  string
	Category     Category
	CategoryCode int
	TargetObject TargetObject
	Mutability   Mutability
	IsRecurring  bool
	Frequency    Frequency
	RequiredFor  []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsUpdatable reports whether replacing the document's file must archive the
// previous version.
func (d DocType) IsUpdatable() bool {
	return d.Mutability == MutabilityUpdatable
}
