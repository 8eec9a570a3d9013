package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/nutrical/backend/internal/domain"
)

// Base is embedded by every row: a UUID primary key plus gorm-managed timestamps
type Base struct {
	ID        string `gorm:"primaryKey;size:36"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (m *Base) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

type nutrientRow struct {
	Base
	Key               string `gorm:"column:nutrient_key;size:64;uniqueIndex;not null"`
	Names             datatypes.JSONType[domain.NutrientNames]
	Unit              string `gorm:"size:16;not null"`
	Category          string `gorm:"size:32;index;not null"`
	ParentKey         string `gorm:"size:64;index"`
	IsMandatoryGlobal bool
	DefaultOrder      int  `gorm:"index"`
	IsActive          bool `gorm:"not null"`
}

func (nutrientRow) TableName() string { return "nutrient_definitions" }

func newNutrientRow(d *domain.NutrientDefinition) *nutrientRow {
	return &nutrientRow{
		Base:              Base{ID: d.ID, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt},
		Key:               d.Key,
		Names:             datatypes.NewJSONType(d.Names),
		Unit:              d.Unit,
		Category:          string(d.Category),
		ParentKey:         d.ParentKey,
		IsMandatoryGlobal: d.IsMandatoryGlobal,
		DefaultOrder:      d.DefaultOrder,
		IsActive:          d.IsActive,
	}
}

func (r *nutrientRow) toDomain() domain.NutrientDefinition {
	return domain.NutrientDefinition{
		ID:                r.ID,
		Key:               r.Key,
		Names:             r.Names.Data(),
		Unit:              r.Unit,
		Category:          domain.NutrientCategory(r.Category),
		ParentKey:         r.ParentKey,
		IsMandatoryGlobal: r.IsMandatoryGlobal,
		DefaultOrder:      r.DefaultOrder,
		IsActive:          r.IsActive,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

type ingredientRow struct {
	Base
	Name       string `gorm:"size:255;index;not null"`
	NameAr     string `gorm:"size:255"`
	Category   string `gorm:"size:64;index"`
	Nutrients  datatypes.JSONType[map[string]decimal.Decimal]
	PerAmount  decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	PerUnit    string          `gorm:"size:16;not null"`
	IsVerified bool
	Source     string `gorm:"size:255"`
}

func (ingredientRow) TableName() string { return "ingredients" }

func newIngredientRow(i *domain.Ingredient) *ingredientRow {
	nutrients := i.Nutrients
	if nutrients == nil {
		nutrients = map[string]decimal.Decimal{}
	}
	return &ingredientRow{
		Base:       Base{ID: i.ID, CreatedAt: i.CreatedAt, UpdatedAt: i.UpdatedAt},
		Name:       i.Name,
		NameAr:     i.NameAr,
		Category:   i.Category,
		Nutrients:  datatypes.NewJSONType(nutrients),
		PerAmount:  i.PerAmount,
		PerUnit:    i.PerUnit,
		IsVerified: i.IsVerified,
		Source:     i.Source,
	}
}

func (r *ingredientRow) toDomain() *domain.Ingredient {
	nutrients := r.Nutrients.Data()
	if nutrients == nil {
		nutrients = map[string]decimal.Decimal{}
	}
	return &domain.Ingredient{
		ID:         r.ID,
		Name:       r.Name,
		NameAr:     r.NameAr,
		Category:   r.Category,
		Nutrients:  nutrients,
		PerAmount:  r.PerAmount,
		PerUnit:    r.PerUnit,
		IsVerified: r.IsVerified,
		Source:     r.Source,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

type productRow struct {
	Base
	OwnerID              string               `gorm:"size:64;index;not null"`
	Name                 string               `gorm:"size:255;not null"`
	NameAr               string               `gorm:"size:255"`
	Description          string
	ServingSize          decimal.Decimal      `gorm:"type:decimal(14,4);not null"`
	ServingUnit          string               `gorm:"size:16;not null"`
	ServingDescription   string               `gorm:"size:255"`
	ServingsPerContainer decimal.Decimal      `gorm:"type:decimal(14,4)"`
	TotalWeight          decimal.Decimal      `gorm:"type:decimal(14,4)"`
	Components           []componentRow       `gorm:"foreignKey:ProductID"`
	Allergens            []productAllergenRow `gorm:"foreignKey:ProductID"`
}

func (productRow) TableName() string { return "products" }

type componentRow struct {
	ID            string          `gorm:"primaryKey;size:36"`
	ProductID     string          `gorm:"size:36;index;not null"`
	IngredientID  string          `gorm:"size:36;index;not null"`
	Quantity      decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	Unit          string          `gorm:"size:16;not null"`
	DisplayName   string          `gorm:"size:255"`
	DisplayNameAr string          `gorm:"size:255"`
	DisplayOrder  int
}

func (componentRow) TableName() string { return "recipe_components" }

func (c *componentRow) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

func newComponentRow(c *domain.RecipeComponent) componentRow {
	return componentRow{
		ID:            c.ID,
		ProductID:     c.ProductID,
		IngredientID:  c.IngredientID,
		Quantity:      c.Quantity,
		Unit:          c.Unit,
		DisplayName:   c.DisplayName,
		DisplayNameAr: c.DisplayNameAr,
		DisplayOrder:  c.DisplayOrder,
	}
}

func (c *componentRow) toDomain() domain.RecipeComponent {
	return domain.RecipeComponent{
		ID:            c.ID,
		ProductID:     c.ProductID,
		IngredientID:  c.IngredientID,
		Quantity:      c.Quantity,
		Unit:          c.Unit,
		DisplayName:   c.DisplayName,
		DisplayNameAr: c.DisplayNameAr,
		DisplayOrder:  c.DisplayOrder,
	}
}

func newProductRow(p *domain.Product) *productRow {
	row := &productRow{
		Base:                 Base{ID: p.ID, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt},
		OwnerID:              p.OwnerID,
		Name:                 p.Name,
		NameAr:               p.NameAr,
		Description:          p.Description,
		ServingSize:          p.ServingSize,
		ServingUnit:          p.ServingUnit,
		ServingDescription:   p.ServingDescription,
		ServingsPerContainer: p.ServingsPerContainer,
		TotalWeight:          p.TotalWeight,
	}
	for i := range p.Components {
		row.Components = append(row.Components, newComponentRow(&p.Components[i]))
	}
	return row
}

func (r *productRow) toDomain() *domain.Product {
	p := &domain.Product{
		ID:                   r.ID,
		OwnerID:              r.OwnerID,
		Name:                 r.Name,
		NameAr:               r.NameAr,
		Description:          r.Description,
		ServingSize:          r.ServingSize,
		ServingUnit:          r.ServingUnit,
		ServingDescription:   r.ServingDescription,
		ServingsPerContainer: r.ServingsPerContainer,
		TotalWeight:          r.TotalWeight,
		Components:           make([]domain.RecipeComponent, 0, len(r.Components)),
		Allergens:            make([]domain.ProductAllergen, 0, len(r.Allergens)),
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
	for i := range r.Components {
		p.Components = append(p.Components, r.Components[i].toDomain())
	}
	for i := range r.Allergens {
		p.Allergens = append(p.Allergens, r.Allergens[i].toDomain())
	}
	return p
}

type referenceTableRow struct {
	Base
	Code          string `gorm:"size:64;uniqueIndex;not null"`
	Name          string `gorm:"size:255;not null"`
	Description   string
	Region        string `gorm:"size:16;index;index:idx_reference_tables_region_default,unique,where:is_default = true"`
	EffectiveDate time.Time
	CalorieBase   int
	Values        datatypes.JSONType[map[string]*decimal.Decimal]
	Units         datatypes.JSONType[map[string]string]
	IsActive      bool `gorm:"not null"`
	IsDefault     bool `gorm:"not null;default:false"`
}

func (referenceTableRow) TableName() string { return "reference_tables" }

func newReferenceTableRow(t *domain.ReferenceTable) *referenceTableRow {
	values := t.Values
	if values == nil {
		values = map[string]*decimal.Decimal{}
	}
	units := t.Units
	if units == nil {
		units = map[string]string{}
	}
	return &referenceTableRow{
		Base:          Base{ID: t.ID, CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt},
		Code:          t.Code,
		Name:          t.Name,
		Description:   t.Description,
		Region:        t.Region,
		EffectiveDate: t.EffectiveDate,
		CalorieBase:   t.CalorieBase,
		Values:        datatypes.NewJSONType(values),
		Units:         datatypes.NewJSONType(units),
		IsActive:      t.IsActive,
		IsDefault:     t.IsDefault,
	}
}

func (r *referenceTableRow) toDomain() *domain.ReferenceTable {
	return &domain.ReferenceTable{
		ID:            r.ID,
		Code:          r.Code,
		Name:          r.Name,
		Description:   r.Description,
		Region:        r.Region,
		EffectiveDate: r.EffectiveDate,
		CalorieBase:   r.CalorieBase,
		Values:        r.Values.Data(),
		Units:         r.Units.Data(),
		IsActive:      r.IsActive,
		IsDefault:     r.IsDefault,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

type labelTypeRow struct {
	Base
	Code             string `gorm:"size:64;uniqueIndex;not null"`
	Name             string `gorm:"size:255;not null"`
	Category         string `gorm:"size:32"`
	Description      string
	Region           string `gorm:"size:16;index"`
	Languages        datatypes.JSONType[[]string]
	DisplayModes     datatypes.JSONType[[]domain.DisplayMode]
	DailyCalorieBase int
	EnergyUnit       string `gorm:"size:8"`
	SodiumDisplay    string `gorm:"size:8"`
	Width            int
	Height           int
	Typography       datatypes.JSONType[domain.Typography]
	Border           datatypes.JSONType[domain.BorderConfig]
	ColorScheme      datatypes.JSONType[domain.ColorScheme]
	Footnotes        datatypes.JSONType[[]domain.Footnote]
	ReferenceTableID *string `gorm:"size:36;index"`
	IsActive         bool    `gorm:"not null"`
	IsSystem         bool
	Nutrients        []labelNutrientRow `gorm:"foreignKey:LabelTypeID"`
}

func (labelTypeRow) TableName() string { return "label_types" }

type labelNutrientRow struct {
	ID             string `gorm:"primaryKey;size:36"`
	LabelTypeID    string `gorm:"size:36;not null;uniqueIndex:idx_label_type_nutrient"`
	NutrientKey    string `gorm:"size:64;not null;index;uniqueIndex:idx_label_type_nutrient"`
	IsMandatory    bool
	ShowByDefault  bool
	ShowPercentDV  bool `gorm:"column:show_percent_dv"`
	DisplayOrder   int
	IndentLevel    int
	IsBold         bool
	DailyValue     decimal.NullDecimal `gorm:"type:decimal(14,4)"`
	DailyValueUnit string              `gorm:"size:16"`
}

func (labelNutrientRow) TableName() string { return "label_type_nutrients" }

func (n *labelNutrientRow) BeforeCreate(*gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

func newLabelNutrientRow(labelTypeID string, n *domain.LabelTypeNutrient) labelNutrientRow {
	row := labelNutrientRow{
		ID:             n.ID,
		LabelTypeID:    labelTypeID,
		NutrientKey:    n.NutrientKey,
		IsMandatory:    n.IsMandatory,
		ShowByDefault:  n.ShowByDefault,
		ShowPercentDV:  n.ShowPercentDV,
		DisplayOrder:   n.DisplayOrder,
		IndentLevel:    n.Indent(),
		IsBold:         n.IsBold,
		DailyValueUnit: n.DailyValueUnit,
	}
	if n.DailyValue != nil {
		row.DailyValue = decimal.NewNullDecimal(*n.DailyValue)
	}
	return row
}

func (n *labelNutrientRow) toDomain() domain.LabelTypeNutrient {
	out := domain.LabelTypeNutrient{
		ID:             n.ID,
		LabelTypeID:    n.LabelTypeID,
		NutrientKey:    n.NutrientKey,
		IsMandatory:    n.IsMandatory,
		ShowByDefault:  n.ShowByDefault,
		ShowPercentDV:  n.ShowPercentDV,
		DisplayOrder:   n.DisplayOrder,
		IndentLevel:    domain.Indent(n.IndentLevel),
		IsBold:         n.IsBold,
		DailyValueUnit: n.DailyValueUnit,
	}
	if n.DailyValue.Valid {
		v := n.DailyValue.Decimal
		out.DailyValue = &v
	}
	return out
}

func newLabelTypeRow(lt *domain.LabelType) *labelTypeRow {
	row := &labelTypeRow{
		Base:             Base{ID: lt.ID, CreatedAt: lt.CreatedAt, UpdatedAt: lt.UpdatedAt},
		Code:             lt.Code,
		Name:             lt.Name,
		Category:         lt.Category,
		Description:      lt.Description,
		Region:           lt.Region,
		Languages:        datatypes.NewJSONType(lt.Languages),
		DisplayModes:     datatypes.NewJSONType(lt.DisplayModes),
		DailyCalorieBase: lt.DailyCalorieBase,
		EnergyUnit:       lt.EnergyUnit,
		SodiumDisplay:    lt.SodiumDisplay,
		Width:            lt.Width,
		Height:           lt.Height,
		Typography:       datatypes.NewJSONType(lt.Typography),
		Border:           datatypes.NewJSONType(lt.Border),
		ColorScheme:      datatypes.NewJSONType(lt.ColorScheme),
		Footnotes:        datatypes.NewJSONType(lt.Footnotes),
		IsActive:         lt.IsActive,
		IsSystem:         lt.IsSystem,
	}
	if lt.ReferenceTableID != "" {
		id := lt.ReferenceTableID
		row.ReferenceTableID = &id
	}
	for i := range lt.Nutrients {
		row.Nutrients = append(row.Nutrients, newLabelNutrientRow(lt.ID, &lt.Nutrients[i]))
	}
	return row
}

func (r *labelTypeRow) toDomain() *domain.LabelType {
	lt := &domain.LabelType{
		ID:               r.ID,
		Code:             r.Code,
		Name:             r.Name,
		Category:         r.Category,
		Description:      r.Description,
		Region:           r.Region,
		Languages:        r.Languages.Data(),
		DisplayModes:     r.DisplayModes.Data(),
		DailyCalorieBase: r.DailyCalorieBase,
		EnergyUnit:       r.EnergyUnit,
		SodiumDisplay:    r.SodiumDisplay,
		Width:            r.Width,
		Height:           r.Height,
		Typography:       r.Typography.Data().WithDefaults(),
		Border:           r.Border.Data().WithDefaults(),
		ColorScheme:      r.ColorScheme.Data().WithDefaults(),
		Footnotes:        r.Footnotes.Data(),
		IsActive:         r.IsActive,
		IsSystem:         r.IsSystem,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
	if r.ReferenceTableID != nil {
		lt.ReferenceTableID = *r.ReferenceTableID
	}
	for i := range r.Nutrients {
		lt.Nutrients = append(lt.Nutrients, r.Nutrients[i].toDomain())
	}
	return lt
}

type allergenRow struct {
	Base
	Name     string `gorm:"size:100;uniqueIndex;not null"`
	NameAr   string `gorm:"size:100"`
	Icon     string `gorm:"size:50"`
	Color    string `gorm:"size:7"`
	IsMajor  bool   `gorm:"index"`
	IsActive bool   `gorm:"not null"`
}

func (allergenRow) TableName() string { return "allergens" }

func newAllergenRow(a *domain.Allergen) *allergenRow {
	return &allergenRow{
		Base:     Base{ID: a.ID, CreatedAt: a.CreatedAt},
		Name:     a.Name,
		NameAr:   a.NameAr,
		Icon:     a.Icon,
		Color:    a.Color,
		IsMajor:  a.IsMajor,
		IsActive: a.IsActive,
	}
}

func (r *allergenRow) toDomain() *domain.Allergen {
	return &domain.Allergen{
		ID:        r.ID,
		Name:      r.Name,
		NameAr:    r.NameAr,
		Icon:      r.Icon,
		Color:     r.Color,
		IsMajor:   r.IsMajor,
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt,
	}
}

type productAllergenRow struct {
	ID         string       `gorm:"primaryKey;size:36"`
	ProductID  string       `gorm:"size:36;not null;uniqueIndex:idx_product_allergen"`
	AllergenID string       `gorm:"size:36;not null;index;uniqueIndex:idx_product_allergen"`
	Status     string       `gorm:"size:20;not null"`
	Allergen   *allergenRow `gorm:"foreignKey:AllergenID"`
}

func (productAllergenRow) TableName() string { return "product_allergens" }

func (r *productAllergenRow) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

func (r *productAllergenRow) toDomain() domain.ProductAllergen {
	out := domain.ProductAllergen{
		ID:         r.ID,
		ProductID:  r.ProductID,
		AllergenID: r.AllergenID,
		Status:     domain.AllergenStatus(r.Status),
	}
	if r.Allergen != nil {
		out.Allergen = r.Allergen.toDomain()
	}
	return out
}

type labelRow struct {
	Base
	OwnerID       string `gorm:"size:64;index;not null"`
	ProductID     string `gorm:"size:36;not null;uniqueIndex:idx_label_product_version"`
	LabelTypeID   string `gorm:"size:36;index"`
	LabelTypeCode string `gorm:"size:64"`
	Name          string `gorm:"size:255"`
	Version       int    `gorm:"not null;uniqueIndex:idx_label_product_version"`
	Snapshot      datatypes.JSONType[domain.LabelSnapshot]
}

func (labelRow) TableName() string { return "labels" }

func newLabelRow(l *domain.Label) *labelRow {
	return &labelRow{
		Base:          Base{ID: l.ID, CreatedAt: l.CreatedAt},
		OwnerID:       l.OwnerID,
		ProductID:     l.ProductID,
		LabelTypeID:   l.LabelTypeID,
		LabelTypeCode: l.LabelTypeCode,
		Name:          l.Name,
		Version:       l.Version,
		Snapshot:      datatypes.NewJSONType(l.Snapshot),
	}
}

func (r *labelRow) toDomain() *domain.Label {
	return &domain.Label{
		ID:            r.ID,
		OwnerID:       r.OwnerID,
		ProductID:     r.ProductID,
		LabelTypeID:   r.LabelTypeID,
		LabelTypeCode: r.LabelTypeCode,
		Name:          r.Name,
		Version:       r.Version,
		Snapshot:      r.Snapshot.Data(),
		CreatedAt:     r.CreatedAt,
	}
}
