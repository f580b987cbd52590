package internal

import "time"

type Tier string

const (
	TierAutoOK  Tier = "AUTO_OK"
	TierCheck   Tier = "CHECK"
	TierNoMatch Tier = "NO_MATCH"
)

type MatchSource string

const (
	SourceEnsemble MatchSource = "ENSEMBLE"
	SourceLearned  MatchSource = "LEARNED"
	SourceOverride MatchSource = "OVERRIDE"
)

type ListPriceStatus string

const (
	ListPriceUnknown     ListPriceStatus = ""
	ListPriceOK          ListPriceStatus = "OK"
	ListPriceCheck       ListPriceStatus = "CHECK"
	ListPriceOvercharged ListPriceStatus = "OVERCHARGED"
)

// ParsedName is the structured view of a product description.
type ParsedName struct {
	Tokens    []string
	Dosages   []string
	Form      string
	PackSize  string
	CleanText string
	FullClean string
}

type CatalogItem struct {
	Code      string
	Name      string
	CleanName string
	Parsed    ParsedName
	Cost      *float64
	Retail    *float64
}

type InvoiceLine struct {
	RowNo     int
	InvoiceNo string
	LineNo    string
	ItemName  string
	Supplier  string

	Qty       *float64
	Bonus     *float64
	UnitPrice *float64
	ListPrice *float64
	Tax       *float64

	QtyRaw       string
	BonusRaw     string
	UnitPriceRaw string
	ListPriceRaw string
	TaxRaw       string
}

type PurchaseRecord struct {
	Item        string
	CleanItem   string
	Supplier    string
	SupplierKey string
	Date        time.Time
	Rate        *float64
	BillNo      string
}

type LearnedMapping struct {
	ID                  int64
	InvoicePattern      string
	InvoicePatternClean string
	SupplierPattern     *string
	ItemCode            string
	ItemName            string
	Confidence          float64
	TimesSeen           int
	TimesConfirmed      int
	LearnedAt           time.Time
	LastConfirmedAt     time.Time
}

type CorrectionRecord struct {
	InvoiceNo       string
	LineNo          string
	InvoiceItemName string
	Supplier        string
	SuggestedCode   string
	SuggestedName   string
	SuggestedScore  *float64
	CorrectedCode   string
	CorrectedName   string
	Note            string
	CorrectedAt     time.Time
}

type NameSignals struct {
	Sequence       float64
	Levenshtein    float64
	Jaccard        float64
	Phonetic       float64
	ComponentBonus float64
}

type BusinessSignals struct {
	Supplier     float64
	Cost         float64
	ListPrice    float64
	HasListPrice bool
}

type MatchResult struct {
	Line        InvoiceLine
	CleanName   string
	SupplierKey string

	Item      *CatalogItem
	Name      NameSignals
	NameScore float64
	Business  BusinessSignals
	Final     float64
	Tier      Tier
	Source    MatchSource
	Details   string
	Comment   string

	EffectiveUnitPrice *float64
	AdjustedListPrice  *float64
	ListPriceDiff      *float64
	ListPriceStatus    ListPriceStatus
	LastPurchase       *PurchaseRecord
}

type LearningStats struct {
	TotalMappings          int
	HighConfidenceMappings int
	TotalCorrections       int
	LastCorrectionAt       *time.Time
}

type RunSummary struct {
	RunID             string
	Total             int
	Skipped           int
	Learned           int
	Overrides         int
	AutoOK            int
	Check             int
	NoMatch           int
	ListPriceWarnings int
}
