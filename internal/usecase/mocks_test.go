package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nutrical/backend/internal/domain"
)

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	data      map[string]interface{}
	getError  error
	setError  error
	getCalled bool
	setCalled bool
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{data: make(map[string]interface{})}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) (interface{}, error) {
	m.getCalled = true
	if m.getError != nil {
		return nil, m.getError
	}
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.setCalled = true
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.data[key]
	return ok, nil
}

// MockUSDAClient is a mock implementation of domain.USDAClient
type MockUSDAClient struct {
	searchResult *domain.USDASearchResponse
	searchError  error
	foodResult   *domain.USDAFood
	foodError    error
	searchCalls  int
	foodCalls    int
	lastQuery    string
}

func NewMockUSDAClient() *MockUSDAClient {
	return &MockUSDAClient{}
}

func (m *MockUSDAClient) SearchFoods(ctx context.Context, query string) (*domain.USDASearchResponse, error) {
	m.searchCalls++
	m.lastQuery = query
	if m.searchError != nil {
		return nil, m.searchError
	}
	return m.searchResult, nil
}

func (m *MockUSDAClient) GetFoodDetails(ctx context.Context, fdcID string) (*domain.USDAFood, error) {
	m.foodCalls++
	if m.foodError != nil {
		return nil, m.foodError
	}
	return m.foodResult, nil
}

var mockSeq struct {
	sync.Mutex
	n int
}

func nextID(prefix string) string {
	mockSeq.Lock()
	defer mockSeq.Unlock()
	mockSeq.n++
	return fmt.Sprintf("%s-%d", prefix, mockSeq.n)
}

// MockNutrientRepository keeps the catalog in memory
type MockNutrientRepository struct {
	mu      sync.Mutex
	defs    map[string]domain.NutrientDefinition
	configs map[string]int64
	listErr error
	updates int
}

func NewMockNutrientRepository(defs ...domain.NutrientDefinition) *MockNutrientRepository {
	m := &MockNutrientRepository{
		defs:    make(map[string]domain.NutrientDefinition),
		configs: make(map[string]int64),
	}
	for _, d := range defs {
		if d.ID == "" {
			d.ID = nextID("nutrient")
		}
		m.defs[d.Key] = d
	}
	return m
}

func (m *MockNutrientRepository) List(ctx context.Context, filter domain.NutrientFilter) ([]domain.NutrientDefinition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.NutrientDefinition, 0, len(m.defs))
	for _, d := range m.defs {
		if filter.Category != "" && d.Category != filter.Category {
			continue
		}
		if filter.ActiveOnly && !d.IsActive {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DefaultOrder != out[j].DefaultOrder {
			return out[i].DefaultOrder < out[j].DefaultOrder
		}
		return out[i].Key < out[j].Key
	})
	return out, nil
}

func (m *MockNutrientRepository) GetByKey(ctx context.Context, key string) (*domain.NutrientDefinition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.defs[key]
	if !ok {
		return nil, domain.NotFound("nutrient", key)
	}
	return &d, nil
}

func (m *MockNutrientRepository) Create(ctx context.Context, defs ...*domain.NutrientDefinition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range defs {
		if _, ok := m.defs[d.Key]; ok {
			return domain.Conflict("nutrient", d.Key, "duplicate key")
		}
	}
	for _, d := range defs {
		d.ID = nextID("nutrient")
		m.defs[d.Key] = *d
	}
	return nil
}

func (m *MockNutrientRepository) Update(ctx context.Context, def *domain.NutrientDefinition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.defs[def.Key]
	if !ok {
		return domain.NotFound("nutrient", def.Key)
	}
	def.ID = existing.ID
	m.defs[def.Key] = *def
	m.updates++
	return nil
}

func (m *MockNutrientRepository) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.defs[key]; !ok {
		return domain.NotFound("nutrient", key)
	}
	delete(m.defs, key)
	return nil
}

func (m *MockNutrientRepository) CountReferences(ctx context.Context, key string) (int64, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var children int64
	for _, d := range m.defs {
		if d.ParentKey == key {
			children++
		}
	}
	return m.configs[key], children, nil
}

// MockIngredientRepository keeps ingredients in memory
type MockIngredientRepository struct {
	mu    sync.Mutex
	items map[string]*domain.Ingredient
	inUse map[string]bool
}

func NewMockIngredientRepository(items ...*domain.Ingredient) *MockIngredientRepository {
	m := &MockIngredientRepository{items: make(map[string]*domain.Ingredient), inUse: make(map[string]bool)}
	for _, ing := range items {
		if ing.ID == "" {
			ing.ID = nextID("ingredient")
		}
		m.items[ing.ID] = ing
	}
	return m
}

func (m *MockIngredientRepository) List(ctx context.Context, search string, offset, limit int) ([]domain.Ingredient, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []domain.Ingredient
	for _, ing := range m.items {
		if search == "" || strings.Contains(strings.ToLower(ing.Name), strings.ToLower(search)) {
			all = append(all, *ing)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	total := int64(len(all))
	if offset >= len(all) {
		return []domain.Ingredient{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *MockIngredientRepository) Get(ctx context.Context, id string) (*domain.Ingredient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ing, ok := m.items[id]
	if !ok {
		return nil, domain.NotFound("ingredient", id)
	}
	c := *ing
	return &c, nil
}

func (m *MockIngredientRepository) GetMany(ctx context.Context, ids []string) (map[string]*domain.Ingredient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]*domain.Ingredient, len(ids))
	for _, id := range ids {
		if ing, ok := m.items[id]; ok {
			c := *ing
			out[id] = &c
		}
	}
	return out, nil
}

func (m *MockIngredientRepository) Create(ctx context.Context, ing *domain.Ingredient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ing.ID = nextID("ingredient")
	c := *ing
	m.items[ing.ID] = &c
	return nil
}

func (m *MockIngredientRepository) Update(ctx context.Context, ing *domain.Ingredient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[ing.ID]; !ok {
		return domain.NotFound("ingredient", ing.ID)
	}
	c := *ing
	m.items[ing.ID] = &c
	return nil
}

func (m *MockIngredientRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return domain.NotFound("ingredient", id)
	}
	if m.inUse[id] {
		return domain.Conflict("ingredient", id, "used by recipes")
	}
	delete(m.items, id)
	return nil
}

// MockProductRepository keeps products in memory
type MockProductRepository struct {
	mu        sync.Mutex
	products  map[string]*domain.Product
	allergens *MockAllergenRepository
}

func NewMockProductRepository(products ...*domain.Product) *MockProductRepository {
	m := &MockProductRepository{products: make(map[string]*domain.Product)}
	for _, p := range products {
		if p.ID == "" {
			p.ID = nextID("product")
		}
		m.products[p.ID] = p
	}
	return m
}

func (m *MockProductRepository) owned(ownerID, id string) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok || p.OwnerID != ownerID {
		return nil, domain.NotFound("product", id)
	}
	return p, nil
}

func (m *MockProductRepository) List(ctx context.Context, ownerID string, offset, limit int) ([]domain.Product, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Product
	for _, p := range m.products {
		if p.OwnerID == ownerID {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (m *MockProductRepository) Get(ctx context.Context, ownerID, id string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := m.owned(ownerID, id)
	if err != nil {
		return nil, err
	}
	c := *p
	c.Components = append([]domain.RecipeComponent(nil), p.Components...)
	c.Allergens = append([]domain.ProductAllergen(nil), p.Allergens...)
	return &c, nil
}

func (m *MockProductRepository) Create(ctx context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = nextID("product")
	for i := range p.Components {
		p.Components[i].ID = nextID("component")
		p.Components[i].ProductID = p.ID
	}
	c := *p
	m.products[p.ID] = &c
	return nil
}

func (m *MockProductRepository) Update(ctx context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, err := m.owned(p.OwnerID, p.ID)
	if err != nil {
		return err
	}
	p.Components = existing.Components
	p.Allergens = existing.Allergens
	c := *p
	m.products[p.ID] = &c
	return nil
}

func (m *MockProductRepository) Delete(ctx context.Context, ownerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.owned(ownerID, id); err != nil {
		return err
	}
	delete(m.products, id)
	return nil
}

func (m *MockProductRepository) AddComponent(ctx context.Context, ownerID string, c *domain.RecipeComponent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := m.owned(ownerID, c.ProductID)
	if err != nil {
		return err
	}
	c.ID = nextID("component")
	p.Components = append(p.Components, *c)
	return nil
}

func (m *MockProductRepository) RemoveComponent(ctx context.Context, ownerID, productID, componentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := m.owned(ownerID, productID)
	if err != nil {
		return err
	}
	for i, c := range p.Components {
		if c.ID == componentID {
			p.Components = append(p.Components[:i], p.Components[i+1:]...)
			return nil
		}
	}
	return domain.NotFound("component", componentID)
}

// SetAllergens replaces the links and resolves them against the attached
// allergen mock when there is one
func (m *MockProductRepository) SetAllergens(ctx context.Context, ownerID, productID string, links []domain.ProductAllergen) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := m.owned(ownerID, productID)
	if err != nil {
		return err
	}
	out := make([]domain.ProductAllergen, 0, len(links))
	for _, l := range links {
		l.ID = nextID("product-allergen")
		l.ProductID = productID
		if m.allergens != nil {
			a, err := m.allergens.Get(ctx, l.AllergenID)
			if err != nil {
				return err
			}
			l.Allergen = a
		}
		out = append(out, l)
	}
	p.Allergens = out
	return nil
}

// MockReferenceTableRepository keeps tables in memory and enforces the
// one-default-per-region rule under its mutex
type MockReferenceTableRepository struct {
	mu     sync.Mutex
	tables map[string]*domain.ReferenceTable
}

func NewMockReferenceTableRepository(tables ...*domain.ReferenceTable) *MockReferenceTableRepository {
	m := &MockReferenceTableRepository{tables: make(map[string]*domain.ReferenceTable)}
	for _, t := range tables {
		if t.ID == "" {
			t.ID = nextID("table")
		}
		m.tables[t.ID] = t
	}
	return m
}

func (m *MockReferenceTableRepository) List(ctx context.Context, region string, activeOnly bool) ([]domain.ReferenceTable, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ReferenceTable
	for _, t := range m.tables {
		if (region == "" || t.Region == region) && (!activeOnly || t.IsActive) {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *MockReferenceTableRepository) Get(ctx context.Context, id string) (*domain.ReferenceTable, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[id]
	if !ok {
		return nil, domain.NotFound("reference table", id)
	}
	c := *t
	return &c, nil
}

func (m *MockReferenceTableRepository) GetByCode(ctx context.Context, code string) (*domain.ReferenceTable, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tables {
		if t.Code == code {
			c := *t
			return &c, nil
		}
	}
	return nil, domain.NotFound("reference table", code)
}

func (m *MockReferenceTableRepository) GetDefault(ctx context.Context, region string) (*domain.ReferenceTable, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tables {
		if t.Region == region && t.IsDefault {
			c := *t
			return &c, nil
		}
	}
	return nil, domain.NotFound("default reference table", region)
}

func (m *MockReferenceTableRepository) Create(ctx context.Context, t *domain.ReferenceTable) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.tables {
		if existing.Code == t.Code {
			return domain.Conflict("reference table", t.Code, "duplicate code")
		}
	}
	t.ID = nextID("table")
	if t.IsDefault {
		m.clearDefaults(t.Region)
	}
	c := *t
	m.tables[t.ID] = &c
	return nil
}

func (m *MockReferenceTableRepository) Update(ctx context.Context, t *domain.ReferenceTable) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tables[t.ID]; !ok {
		return domain.NotFound("reference table", t.ID)
	}
	if t.IsDefault {
		m.clearDefaults(t.Region)
	}
	c := *t
	m.tables[t.ID] = &c
	return nil
}

func (m *MockReferenceTableRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tables[id]; !ok {
		return domain.NotFound("reference table", id)
	}
	delete(m.tables, id)
	return nil
}

func (m *MockReferenceTableRepository) Regions(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, t := range m.tables {
		if t.Region != "" && !seen[t.Region] {
			seen[t.Region] = true
			out = append(out, t.Region)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *MockReferenceTableRepository) SetDefault(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[id]
	if !ok {
		return domain.NotFound("reference table", id)
	}
	m.clearDefaults(t.Region)
	t.IsDefault = true
	return nil
}

func (m *MockReferenceTableRepository) clearDefaults(region string) {
	for _, t := range m.tables {
		if t.Region == region {
			t.IsDefault = false
		}
	}
}

func (m *MockReferenceTableRepository) defaults(region string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var codes []string
	for _, t := range m.tables {
		if t.Region == region && t.IsDefault {
			codes = append(codes, t.Code)
		}
	}
	return codes
}

// MockLabelTypeRepository keeps label types in memory
type MockLabelTypeRepository struct {
	mu    sync.Mutex
	types map[string]*domain.LabelType
}

func NewMockLabelTypeRepository(types ...*domain.LabelType) *MockLabelTypeRepository {
	m := &MockLabelTypeRepository{types: make(map[string]*domain.LabelType)}
	for _, lt := range types {
		if lt.ID == "" {
			lt.ID = nextID("label")
		}
		m.types[lt.ID] = lt
	}
	return m
}

func copyLabelType(lt *domain.LabelType) *domain.LabelType {
	c := *lt
	c.Nutrients = append([]domain.LabelTypeNutrient(nil), lt.Nutrients...)
	sort.SliceStable(c.Nutrients, func(i, j int) bool {
		if c.Nutrients[i].DisplayOrder != c.Nutrients[j].DisplayOrder {
			return c.Nutrients[i].DisplayOrder < c.Nutrients[j].DisplayOrder
		}
		return c.Nutrients[i].NutrientKey < c.Nutrients[j].NutrientKey
	})
	return &c
}

func (m *MockLabelTypeRepository) List(ctx context.Context, activeOnly bool) ([]domain.LabelType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.LabelType
	for _, lt := range m.types {
		if !activeOnly || lt.IsActive {
			out = append(out, *copyLabelType(lt))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *MockLabelTypeRepository) Get(ctx context.Context, id string) (*domain.LabelType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lt, ok := m.types[id]
	if !ok {
		return nil, domain.NotFound("label type", id)
	}
	return copyLabelType(lt), nil
}

func (m *MockLabelTypeRepository) GetByCode(ctx context.Context, code string) (*domain.LabelType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, lt := range m.types {
		if lt.Code == code {
			return copyLabelType(lt), nil
		}
	}
	return nil, domain.NotFound("label type", code)
}

func (m *MockLabelTypeRepository) Create(ctx context.Context, lt *domain.LabelType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.types {
		if existing.Code == lt.Code {
			return domain.Conflict("label type", lt.Code, "duplicate code")
		}
	}
	lt.ID = nextID("label")
	for i := range lt.Nutrients {
		lt.Nutrients[i].ID = nextID("config")
		lt.Nutrients[i].LabelTypeID = lt.ID
	}
	m.types[lt.ID] = copyLabelType(lt)
	return nil
}

func (m *MockLabelTypeRepository) Update(ctx context.Context, lt *domain.LabelType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.types[lt.ID]
	if !ok {
		return domain.NotFound("label type", lt.ID)
	}
	c := *lt
	c.Nutrients = existing.Nutrients
	m.types[lt.ID] = &c
	return nil
}

func (m *MockLabelTypeRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.types[id]; !ok {
		return domain.NotFound("label type", id)
	}
	delete(m.types, id)
	return nil
}

func (m *MockLabelTypeRepository) ReplaceNutrients(ctx context.Context, labelTypeID string, configs []domain.LabelTypeNutrient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	lt, ok := m.types[labelTypeID]
	if !ok {
		return domain.NotFound("label type", labelTypeID)
	}
	lt.Nutrients = make([]domain.LabelTypeNutrient, len(configs))
	for i, cfg := range configs {
		cfg.ID = nextID("config")
		cfg.LabelTypeID = labelTypeID
		lt.Nutrients[i] = cfg
	}
	return nil
}

func (m *MockLabelTypeRepository) ApplyDailyValues(ctx context.Context, labelTypeID string, table *domain.ReferenceTable) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lt, ok := m.types[labelTypeID]
	if !ok {
		return 0, domain.NotFound("label type", labelTypeID)
	}
	applied := 0
	for i := range lt.Nutrients {
		v, ok := table.DailyValue(lt.Nutrients[i].NutrientKey)
		if !ok {
			continue
		}
		value := v
		lt.Nutrients[i].DailyValue = &value
		if unit := table.Units[lt.Nutrients[i].NutrientKey]; unit != "" {
			lt.Nutrients[i].DailyValueUnit = unit
		}
		applied++
	}
	lt.ReferenceTableID = table.ID
	return applied, nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// MockAllergenRepository keeps the allergen list in memory
type MockAllergenRepository struct {
	mu    sync.Mutex
	items map[string]*domain.Allergen
	inUse map[string]bool
}

func NewMockAllergenRepository(items ...*domain.Allergen) *MockAllergenRepository {
	m := &MockAllergenRepository{
		items: make(map[string]*domain.Allergen),
		inUse: make(map[string]bool),
	}
	for _, a := range items {
		if a.ID == "" {
			a.ID = nextID("allergen")
		}
		m.items[a.ID] = a
	}
	return m
}

func (m *MockAllergenRepository) List(ctx context.Context, filter domain.AllergenFilter) ([]domain.Allergen, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Allergen
	for _, a := range m.items {
		if filter.MajorOnly && !a.IsMajor {
			continue
		}
		if filter.ActiveOnly && !a.IsActive {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsMajor != out[j].IsMajor {
			return out[i].IsMajor
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (m *MockAllergenRepository) Get(ctx context.Context, id string) (*domain.Allergen, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok {
		return nil, domain.NotFound("allergen", id)
	}
	c := *a
	return &c, nil
}

func (m *MockAllergenRepository) Create(ctx context.Context, a *domain.Allergen) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.items {
		if strings.EqualFold(existing.Name, a.Name) {
			return domain.Conflict("allergen", a.Name, "already exists")
		}
	}
	a.ID = nextID("allergen")
	c := *a
	m.items[a.ID] = &c
	return nil
}

func (m *MockAllergenRepository) Update(ctx context.Context, a *domain.Allergen) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[a.ID]; !ok {
		return domain.NotFound("allergen", a.ID)
	}
	c := *a
	m.items[a.ID] = &c
	return nil
}

func (m *MockAllergenRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return domain.NotFound("allergen", id)
	}
	if m.inUse[id] {
		return domain.Conflict("allergen", id, "declared by products")
	}
	delete(m.items, id)
	return nil
}

// MockLabelRepository numbers labels per product like the database does
type MockLabelRepository struct {
	mu        sync.Mutex
	labels    map[string]*domain.Label
	versions  map[string]int
	createErr error
}

func NewMockLabelRepository() *MockLabelRepository {
	return &MockLabelRepository{
		labels:   make(map[string]*domain.Label),
		versions: make(map[string]int),
	}
}

func (m *MockLabelRepository) List(ctx context.Context, ownerID, productID string) ([]domain.Label, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Label
	for _, l := range m.labels {
		if l.OwnerID == ownerID && (productID == "" || l.ProductID == productID) {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version > out[j].Version })
	return out, nil
}

func (m *MockLabelRepository) Get(ctx context.Context, ownerID, id string) (*domain.Label, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.labels[id]
	if !ok || l.OwnerID != ownerID {
		return nil, domain.NotFound("label", id)
	}
	c := *l
	return &c, nil
}

func (m *MockLabelRepository) Create(ctx context.Context, l *domain.Label) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.versions[l.ProductID]++
	l.ID = nextID("label")
	l.Version = m.versions[l.ProductID]
	l.CreatedAt = time.Now()
	c := *l
	m.labels[l.ID] = &c
	return nil
}

func (m *MockLabelRepository) Delete(ctx context.Context, ownerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.labels[id]
	if !ok || l.OwnerID != ownerID {
		return domain.NotFound("label", id)
	}
	delete(m.labels, id)
	return nil
}
