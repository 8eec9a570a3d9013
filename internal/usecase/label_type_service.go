package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/nutrical/backend/internal/domain"
	"github.com/nutrical/backend/internal/nutrition"
)

// LabelPanel is a label type laid out over one nutrition summary. Text is
// filled by LabelService, which knows the product.
type LabelPanel struct {
	LabelType *domain.LabelType        `json:"labelType"`
	Language  string                   `json:"language"`
	Summary   *domain.NutritionSummary `json:"summary"`
	Entries   []domain.DisplayEntry    `json:"entries"`
	Text      domain.LabelText         `json:"text"`
}

// LabelTypeService manages label types and resolves them into display rows
type LabelTypeService struct {
	labelTypes    domain.LabelTypeRepository
	tables        domain.ReferenceTableRepository
	nutrients     domain.NutrientRepository
	engine        *nutrition.Engine
	defaultRegion string
	logger        *slog.Logger
}

// NewLabelTypeService creates a label type service. defaultRegion supplies the
// reference table for label types that link none and declare no region.
func NewLabelTypeService(
	labelTypes domain.LabelTypeRepository,
	tables domain.ReferenceTableRepository,
	nutrients domain.NutrientRepository,
	engine *nutrition.Engine,
	defaultRegion string,
) *LabelTypeService {
	if engine == nil {
		engine = nutrition.NewEngine(nil)
	}
	return &LabelTypeService{
		labelTypes:    labelTypes,
		tables:        tables,
		nutrients:     nutrients,
		engine:        engine,
		defaultRegion: domain.NormalizeRegion(defaultRegion),
		logger:        slog.Default().With("component", "label_types"),
	}
}

func (s *LabelTypeService) List(ctx context.Context, activeOnly bool) ([]domain.LabelType, error) {
	return s.labelTypes.List(ctx, activeOnly)
}

func (s *LabelTypeService) Get(ctx context.Context, id string) (*domain.LabelType, error) {
	return s.labelTypes.Get(ctx, id)
}

func (s *LabelTypeService) GetByCode(ctx context.Context, code string) (*domain.LabelType, error) {
	return s.labelTypes.GetByCode(ctx, code)
}

// Create stores lt with its nutrient configs
func (s *LabelTypeService) Create(ctx context.Context, lt *domain.LabelType) error {
	applyLabelDefaults(lt)
	if err := lt.Validate(); err != nil {
		return err
	}
	if err := s.checkTableLink(ctx, lt); err != nil {
		return err
	}
	if err := s.prepareConfigs(ctx, lt.Code, lt.Nutrients); err != nil {
		return err
	}
	if err := s.labelTypes.Create(ctx, lt); err != nil {
		return err
	}
	s.logger.Info("label type created", "code", lt.Code, "nutrients", len(lt.Nutrients))
	return nil
}

// Update saves label-level fields; configs change through ReplaceNutrients
func (s *LabelTypeService) Update(ctx context.Context, id string, lt *domain.LabelType) error {
	lt.ID = id
	lt.Nutrients = nil
	applyLabelDefaults(lt)
	if err := lt.Validate(); err != nil {
		return err
	}
	if err := s.checkTableLink(ctx, lt); err != nil {
		return err
	}
	return s.labelTypes.Update(ctx, lt)
}

// Delete removes a label type with its configs. System label types are kept.
func (s *LabelTypeService) Delete(ctx context.Context, id string) error {
	lt, err := s.labelTypes.Get(ctx, id)
	if err != nil {
		return err
	}
	if lt.IsSystem {
		return domain.Conflict("label type", lt.Code, "system label types cannot be deleted")
	}
	return s.labelTypes.Delete(ctx, id)
}

// Duplicate copies a label type and all its configs under a new code
func (s *LabelTypeService) Duplicate(ctx context.Context, id, code, name string) (*domain.LabelType, error) {
	src, err := s.labelTypes.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if code == "" {
		code = src.Code + "_COPY"
	}
	if name == "" {
		name = src.Name + " (copy)"
	}

	dup := *src
	dup.ID = ""
	dup.Code = code
	dup.Name = name
	dup.IsSystem = false
	dup.Languages = append([]string(nil), src.Languages...)
	dup.DisplayModes = append([]domain.DisplayMode(nil), src.DisplayModes...)
	dup.Footnotes = append([]domain.Footnote(nil), src.Footnotes...)
	dup.Nutrients = make([]domain.LabelTypeNutrient, len(src.Nutrients))
	for i, cfg := range src.Nutrients {
		cfg.ID = ""
		cfg.LabelTypeID = ""
		if cfg.DailyValue != nil {
			v := *cfg.DailyValue
			cfg.DailyValue = &v
		}
		if cfg.IndentLevel != nil {
			cfg.IndentLevel = domain.Indent(*cfg.IndentLevel)
		}
		dup.Nutrients[i] = cfg
	}

	if err := s.labelTypes.Create(ctx, &dup); err != nil {
		return nil, err
	}
	return &dup, nil
}

// Nutrients returns the configs of a label type in display order
func (s *LabelTypeService) Nutrients(ctx context.Context, id string) ([]domain.LabelTypeNutrient, error) {
	lt, err := s.labelTypes.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return lt.Nutrients, nil
}

// ReplaceNutrients swaps the whole config set of a label type
func (s *LabelTypeService) ReplaceNutrients(ctx context.Context, id string, configs []domain.LabelTypeNutrient) ([]domain.LabelTypeNutrient, error) {
	lt, err := s.labelTypes.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	candidate := domain.LabelType{Code: lt.Code, Name: lt.Name, Nutrients: configs}
	if err := candidate.Validate(); err != nil {
		return nil, err
	}
	if err := s.prepareConfigs(ctx, lt.Code, configs); err != nil {
		return nil, err
	}
	if err := s.labelTypes.ReplaceNutrients(ctx, id, configs); err != nil {
		return nil, err
	}
	return s.Nutrients(ctx, id)
}

// Reorder assigns display orders following keys. Configured nutrients missing
// from keys keep their relative order after the listed ones.
func (s *LabelTypeService) Reorder(ctx context.Context, id string, keys []string) ([]domain.LabelTypeNutrient, error) {
	lt, err := s.labelTypes.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	position := make(map[string]int, len(keys))
	for i, k := range keys {
		if _, dup := position[k]; dup {
			return nil, domain.InvalidInput("label type", lt.Code, "keys", "nutrient %q listed twice", k)
		}
		position[k] = i
	}
	configured := make(map[string]bool, len(lt.Nutrients))
	for _, cfg := range lt.Nutrients {
		configured[cfg.NutrientKey] = true
	}
	for _, k := range keys {
		if !configured[k] {
			return nil, domain.InvalidInput("label type", lt.Code, "keys", "nutrient %q is not configured", k)
		}
	}

	configs := append([]domain.LabelTypeNutrient(nil), lt.Nutrients...)
	sort.SliceStable(configs, func(i, j int) bool {
		pi, iok := position[configs[i].NutrientKey]
		pj, jok := position[configs[j].NutrientKey]
		switch {
		case iok && jok:
			return pi < pj
		case iok != jok:
			return iok
		}
		return configs[i].DisplayOrder < configs[j].DisplayOrder
	})
	for i := range configs {
		configs[i].DisplayOrder = i + 1
	}

	if err := s.labelTypes.ReplaceNutrients(ctx, id, configs); err != nil {
		return nil, err
	}
	return s.Nutrients(ctx, id)
}

// ResolveLabelDisplay lays out the label type identified by code over summary.
// A linked reference table must exist; a label type linking none uses the
// default table of its region, or of the service default region.
func (s *LabelTypeService) ResolveLabelDisplay(ctx context.Context, code string, summary *domain.NutritionSummary, language string) (*LabelPanel, error) {
	lt, err := s.labelTypes.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	table, err := s.tableFor(ctx, lt)
	if err != nil {
		return nil, err
	}
	defs, err := s.nutrients.List(ctx, domain.NutrientFilter{})
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	catalog := make(map[string]domain.NutrientDefinition, len(defs))
	for _, d := range defs {
		catalog[d.Key] = d
	}
	if language == "" && len(lt.Languages) > 0 {
		language = lt.Languages[0]
	}

	entries, err := s.engine.ResolveDisplay(nutrition.ResolveRequest{
		LabelType: lt,
		Summary:   summary,
		Catalog:   catalog,
		Table:     table,
		Language:  language,
	})
	if err != nil {
		return nil, err
	}
	return &LabelPanel{LabelType: lt, Language: language, Summary: summary, Entries: entries}, nil
}

func (s *LabelTypeService) tableFor(ctx context.Context, lt *domain.LabelType) (*domain.ReferenceTable, error) {
	if lt.ReferenceTableID != "" {
		table, err := s.tables.Get(ctx, lt.ReferenceTableID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Configuration("label type", lt.Code, "linked reference table %q does not exist", lt.ReferenceTableID)
		}
		return table, err
	}
	region := domain.NormalizeRegion(lt.Region)
	if region == "" {
		region = s.defaultRegion
	}
	if region == "" {
		return nil, nil
	}
	table, err := s.tables.GetDefault(ctx, region)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return table, err
}

func (s *LabelTypeService) checkTableLink(ctx context.Context, lt *domain.LabelType) error {
	if lt.ReferenceTableID == "" {
		return nil
	}
	if _, err := s.tables.Get(ctx, lt.ReferenceTableID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Configuration("label type", lt.Code, "reference table %q does not exist", lt.ReferenceTableID)
		}
		return err
	}
	return nil
}

// prepareConfigs checks every config names a catalog nutrient and gives
// configs without an explicit indent their catalog depth
func (s *LabelTypeService) prepareConfigs(ctx context.Context, code string, configs []domain.LabelTypeNutrient) error {
	if len(configs) == 0 {
		return nil
	}
	defs, err := s.nutrients.List(ctx, domain.NutrientFilter{})
	if err != nil {
		return fmt.Errorf("list catalog: %w", err)
	}
	tree, err := nutrition.BuildTree(defs)
	if err != nil {
		return err
	}
	for i := range configs {
		cfg := &configs[i]
		def, ok := tree.Get(cfg.NutrientKey)
		if !ok {
			return domain.InvalidInput("label type", code, cfg.NutrientKey, "unknown nutrient")
		}
		if cfg.IndentLevel == nil {
			cfg.IndentLevel = domain.Indent(nutrition.DefaultIndent(tree, cfg.NutrientKey))
		}
		if cfg.DisplayOrder == 0 {
			cfg.DisplayOrder = def.DefaultOrder
		}
	}
	return nil
}

func applyLabelDefaults(lt *domain.LabelType) {
	lt.Region = domain.NormalizeRegion(lt.Region)
	if len(lt.Languages) == 0 {
		lt.Languages = []string{"en"}
	}
	if len(lt.DisplayModes) == 0 {
		lt.DisplayModes = []domain.DisplayMode{domain.DisplayPerServing}
	}
	if lt.EnergyUnit == "" {
		lt.EnergyUnit = "kcal"
	}
	if lt.SodiumDisplay == "" {
		lt.SodiumDisplay = "sodium"
	}
	if lt.Category == "" {
		lt.Category = "custom"
	}
	lt.Typography = lt.Typography.WithDefaults()
	lt.Border = lt.Border.WithDefaults()
	lt.ColorScheme = lt.ColorScheme.WithDefaults()
}
