package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/nutrical/backend/internal/domain"
	"github.com/nutrical/backend/internal/nutrition"
)

// LabelRequest selects the label type, language and summary basis of a label
type LabelRequest struct {
	LabelTypeCode string
	Language      string
	Summary       SummaryRequest
}

// LabelService renders product labels and keeps generated ones as snapshots
type LabelService struct {
	labels      domain.LabelRepository
	products    domain.ProductRepository
	ingredients domain.IngredientRepository
	nutrition   *NutritionService
	labelTypes  *LabelTypeService
	logger      *slog.Logger
}

// NewLabelService creates a label service on top of the nutrition and label
// type services
func NewLabelService(
	labels domain.LabelRepository,
	products domain.ProductRepository,
	ingredients domain.IngredientRepository,
	nutrition *NutritionService,
	labelTypes *LabelTypeService,
) *LabelService {
	return &LabelService{
		labels:      labels,
		products:    products,
		ingredients: ingredients,
		nutrition:   nutrition,
		labelTypes:  labelTypes,
		logger:      slog.Default().With("component", "labels"),
	}
}

// Preview computes the product's summary, lays it out with the requested label
// type and adds the ingredient and allergen statements. Nothing is stored.
func (s *LabelService) Preview(ctx context.Context, ownerID, productID string, req LabelRequest) (*LabelPanel, error) {
	if strings.TrimSpace(req.LabelTypeCode) == "" {
		return nil, domain.InvalidInput("label", productID, "labelTypeCode", "label type is required")
	}
	summary, err := s.nutrition.ComputeNutritionSummary(ctx, ownerID, productID, req.Summary)
	if err != nil {
		return nil, err
	}
	panel, err := s.labelTypes.ResolveLabelDisplay(ctx, req.LabelTypeCode, summary, req.Language)
	if err != nil {
		return nil, err
	}
	text, err := s.labelText(ctx, ownerID, productID, panel.Language)
	if err != nil {
		return nil, err
	}
	panel.Text = text
	return panel, nil
}

// Generate renders a label and saves it as the product's next label version.
// The snapshot keeps the values printed at generation time.
func (s *LabelService) Generate(ctx context.Context, ownerID, productID, name string, req LabelRequest) (*domain.Label, error) {
	panel, err := s.Preview(ctx, ownerID, productID, req)
	if err != nil {
		return nil, err
	}
	if name = strings.TrimSpace(name); name == "" {
		name = panel.LabelType.Name
	}
	label := &domain.Label{
		OwnerID:       ownerID,
		ProductID:     productID,
		LabelTypeID:   panel.LabelType.ID,
		LabelTypeCode: panel.LabelType.Code,
		Name:          name,
		Snapshot: domain.LabelSnapshot{
			Summary:  panel.Summary,
			Entries:  panel.Entries,
			Text:     panel.Text,
			Language: panel.Language,
		},
	}
	if err := s.labels.Create(ctx, label); err != nil {
		return nil, err
	}
	s.logger.Info("label generated",
		"product_id", productID,
		"label_type", label.LabelTypeCode,
		"version", label.Version)
	return label, nil
}

// List returns the owner's saved labels for productID
func (s *LabelService) List(ctx context.Context, ownerID, productID string) ([]domain.Label, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if _, err := s.products.Get(ctx, ownerID, productID); err != nil {
		return nil, err
	}
	return s.labels.List(ctx, ownerID, productID)
}

// Get returns a saved label; it must belong to productID
func (s *LabelService) Get(ctx context.Context, ownerID, productID, id string) (*domain.Label, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	l, err := s.labels.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if l.ProductID != productID {
		return nil, domain.NotFound("label", id)
	}
	return l, nil
}

func (s *LabelService) Delete(ctx context.Context, ownerID, productID, id string) error {
	if _, err := s.Get(ctx, ownerID, productID, id); err != nil {
		return err
	}
	return s.labels.Delete(ctx, ownerID, id)
}

func (s *LabelService) labelText(ctx context.Context, ownerID, productID, language string) (domain.LabelText, error) {
	p, err := s.products.Get(ctx, ownerID, productID)
	if err != nil {
		return domain.LabelText{}, err
	}
	ids := make([]string, 0, len(p.Components))
	for _, c := range p.Components {
		ids = append(ids, c.IngredientID)
	}
	ingredients, err := s.ingredients.GetMany(ctx, ids)
	if err != nil {
		return domain.LabelText{}, err
	}
	return nutrition.BuildLabelText(p, ingredients, language), nil
}
