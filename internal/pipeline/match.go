package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"pharmamatch/internal"
	"pharmamatch/internal/catalog"
	"pharmamatch/internal/config"
	"pharmamatch/internal/history"
	"pharmamatch/internal/overrides"
	"pharmamatch/internal/pharma"
	"pharmamatch/internal/scoring"
	"pharmamatch/internal/similarity"
	"pharmamatch/internal/util"
)

// MappingLookup is the read side of the learning store.
type MappingLookup interface {
	LookupMapping(patternClean, supplier string, minConfidence float64) (*internal.LearnedMapping, error)
}

type Matcher struct {
	cfg        config.Config
	parser     *pharma.Parser
	index      *catalog.Index
	history    *history.Index
	business   *scoring.BusinessScorer
	learned    MappingLookup
	overrides  *overrides.Set
	thresholds scoring.Thresholds
	log        *zap.Logger
}

// NewMatcher wires the decision chain. learned and rules may be nil.
func NewMatcher(cfg config.Config, index *catalog.Index, hist *history.Index, learned MappingLookup, rules *overrides.Set, log *zap.Logger) *Matcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Matcher{
		cfg:        cfg,
		parser:     pharma.NewParser(),
		index:      index,
		history:    hist,
		business:   scoring.NewBusinessScorer(hist),
		learned:    learned,
		overrides:  rules,
		thresholds: scoring.Thresholds{AutoOK: cfg.MatchAutoOKThreshold, Check: cfg.MatchCheckThreshold},
		log:        log,
	}
}

type candidateScore struct {
	item      *internal.CatalogItem
	name      internal.NameSignals
	nameScore float64
	business  internal.BusinessSignals
	final     float64
}

type lineContext struct {
	parsed   internal.ParsedName
	clean    string
	supplier string
	prices   scoring.LinePrices
}

// Match decides one line: override rules first, then a learned mapping, then
// the ensemble. ok is false when the line has no usable item name.
func (m *Matcher) Match(line internal.InvoiceLine) (internal.MatchResult, bool, error) {
	lc := lineContext{
		clean:    util.CleanBasic(line.ItemName),
		supplier: util.SimplifySupplier(line.Supplier),
		prices:   scoring.PricesFor(line),
	}
	if lc.clean == "" {
		return internal.MatchResult{}, false, nil
	}
	lc.parsed = m.parser.Parse(line.ItemName)

	res := internal.MatchResult{
		Line:               line,
		CleanName:          lc.clean,
		SupplierKey:        lc.supplier,
		EffectiveUnitPrice: lc.prices.Effective,
		AdjustedListPrice:  lc.prices.Adjusted,
		Source:             internal.SourceEnsemble,
	}

	if item, rule, ok := m.overrides.Apply(m.index, lc.clean, lc.supplier); ok {
		c := m.evaluate(item, lc)
		if c.final < m.cfg.OverrideMinConfidence {
			c.final = m.cfg.OverrideMinConfidence
		}
		m.fill(&res, c, lc)
		res.Source = internal.SourceOverride
		res.Details = fmt.Sprintf("OVERRIDE %s | %s", rule.Name, similarity.Details(c.name))
		return res, true, nil
	}

	if m.learned != nil && m.cfg.LearningEnabled {
		mapping, err := m.learned.LookupMapping(lc.clean, lc.supplier, m.cfg.LearningConfidenceThreshold)
		if err != nil {
			return internal.MatchResult{}, false, fmt.Errorf("learned lookup for %q: %w", line.ItemName, err)
		}
		if mapping != nil {
			if item, ok := m.index.Lookup(mapping.ItemCode); ok {
				c := m.evaluate(item, lc)
				c.final = mapping.Confidence
				m.fill(&res, c, lc)
				res.Source = internal.SourceLearned
				res.Details = fmt.Sprintf("LEARNED (seen %dx, confirmed %dx)", mapping.TimesSeen, mapping.TimesConfirmed)
				return res, true, nil
			}
			m.log.Warn("learned mapping points outside the catalog",
				zap.String("pattern", lc.clean),
				zap.String("code", mapping.ItemCode))
		}
	}

	best, found := m.bestCandidate(lc)
	if !found {
		res.Tier = internal.TierNoMatch
		return res, true, nil
	}
	m.fill(&res, best, lc)
	res.Details = similarity.Details(best.name)
	return res, true, nil
}

// bestCandidate keeps the first candidate of any tie.
func (m *Matcher) bestCandidate(lc lineContext) (candidateScore, bool) {
	best := candidateScore{final: -1}
	found := false
	for _, i := range m.index.Retrieve(lc.parsed.CleanText, m.cfg.TopKCandidates) {
		c := m.evaluate(&m.index.Items[i], lc)
		if c.final > best.final {
			best = c
			found = true
		}
	}
	return best, found
}

func (m *Matcher) evaluate(item *internal.CatalogItem, lc lineContext) candidateScore {
	name := similarity.Compare(lc.parsed, item.Parsed)
	nameScore := scoring.NameScore(name)
	business := m.business.Score(*item, lc.supplier, lc.prices)
	return candidateScore{
		item:      item,
		name:      name,
		nameScore: nameScore,
		business:  business,
		final:     scoring.Fuse(nameScore, business),
	}
}

func (m *Matcher) fill(res *internal.MatchResult, c candidateScore, lc lineContext) {
	res.Item = c.item
	res.Name = c.name
	res.NameScore = c.nameScore
	res.Business = c.business
	res.Final = c.final
	res.Tier = m.thresholds.Classify(c.final)
	res.ListPriceDiff, res.ListPriceStatus = scoring.CompareListPrice(lc.prices.Adjusted, c.item.Retail)
	if res.ListPriceStatus == internal.ListPriceOvercharged {
		res.Comment = "list price differs from catalog by more than 10%"
	}
	if p, ok := m.history.LastPurchase(c.item.CleanName, lc.supplier); ok {
		res.LastPurchase = &p
	}
}
