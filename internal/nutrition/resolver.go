package nutrition

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/nutrical/backend/internal/domain"
)

// ResolveRequest carries everything needed to lay out one label panel
type ResolveRequest struct {
	LabelType *domain.LabelType
	Summary   *domain.NutritionSummary
	// Catalog is the nutrient catalog keyed by nutrient key
	Catalog map[string]domain.NutrientDefinition
	// Table is the label type's linked reference table. When the label type links
	// none, a region default may be passed instead; nil means no table tier.
	Table    *domain.ReferenceTable
	Language string
}

// ResolveDisplay returns the visible rows of a label in display order: configs
// shown by default or mandatory, sorted by display order, then catalog default
// order, then key. Each row's daily value comes from the config override, then
// the reference table, else %DV is unavailable.
func (e *Engine) ResolveDisplay(req ResolveRequest) ([]domain.DisplayEntry, error) {
	lt := req.LabelType
	if lt == nil {
		return nil, domain.InvalidInput("label type", "", "", "label type is required")
	}
	if req.Summary == nil {
		return nil, domain.InvalidInput("label type", lt.Code, "", "nutrition summary is required")
	}
	table := req.Table
	if lt.ReferenceTableID != "" && (table == nil || table.ID != lt.ReferenceTableID) {
		return nil, domain.Configuration("label type", lt.Code, "linked reference table %q does not exist", lt.ReferenceTableID)
	}

	visible := make([]domain.LabelTypeNutrient, 0, len(lt.Nutrients))
	for _, cfg := range lt.Nutrients {
		if !cfg.ShowByDefault && !cfg.IsMandatory {
			continue
		}
		if _, ok := req.Catalog[cfg.NutrientKey]; !ok {
			return nil, domain.Configuration("label type", lt.Code, "nutrient %q is not in the catalog", cfg.NutrientKey)
		}
		visible = append(visible, cfg)
	}

	sort.SliceStable(visible, func(i, j int) bool {
		a, b := visible[i], visible[j]
		if a.DisplayOrder != b.DisplayOrder {
			return a.DisplayOrder < b.DisplayOrder
		}
		da, db := req.Catalog[a.NutrientKey].DefaultOrder, req.Catalog[b.NutrientKey].DefaultOrder
		if da != db {
			return da < db
		}
		return a.NutrientKey < b.NutrientKey
	})

	entries := make([]domain.DisplayEntry, 0, len(visible))
	for _, cfg := range visible {
		def := req.Catalog[cfg.NutrientKey]
		amount, ok := req.Summary.Get(cfg.NutrientKey)
		if !ok {
			return nil, domain.Configuration("label type", lt.Code, "nutrient %q was not computed for this product", cfg.NutrientKey)
		}

		entry := domain.DisplayEntry{
			NutrientKey:      cfg.NutrientKey,
			Name:             def.DisplayName(req.Language),
			Unit:             def.Unit,
			Amount:           amount.Rounded,
			Display:          amount.Display,
			ShowPercentDV:    cfg.ShowPercentDV,
			IndentLevel:      cfg.Indent(),
			IsBold:           cfg.IsBold,
			IsMandatory:      cfg.IsMandatory,
			DailyValueSource: domain.DailyValueNone,
			PercentDV:        domain.PercentUnavailable,
		}

		var dv decimal.Decimal
		switch {
		case cfg.DailyValue != nil:
			dv = *cfg.DailyValue
			entry.DailyValueSource = domain.DailyValueOverride
			entry.DailyValueUnit = firstNonEmpty(cfg.DailyValueUnit, def.Unit)
		default:
			if v, ok := table.DailyValue(cfg.NutrientKey); ok {
				dv = v
				entry.DailyValueSource = domain.DailyValueTable
				entry.DailyValueUnit = firstNonEmpty(table.Units[cfg.NutrientKey], def.Unit)
			}
		}
		if entry.DailyValueSource != domain.DailyValueNone {
			v := dv
			entry.DailyValue = &v
			entry.PercentDV = PercentOf(e.percentBasis(amount.Raw, amount.Rounded), dv)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
