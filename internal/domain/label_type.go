package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DisplayMode selects the basis nutrient amounts are expressed against
type DisplayMode string

const (
	DisplayPerServing DisplayMode = "per_serving"
	DisplayPer100     DisplayMode = "per_100"
)

// Typography configures label fonts. Zero values fall back to DefaultTypography.
type Typography struct {
	FontFamily     string `json:"fontFamily"`
	TitleFontSize  int    `json:"titleFontSize"`
	HeaderFontSize int    `json:"headerFontSize"`
	BodyFontSize   int    `json:"bodyFontSize"`
	FootnoteSize   int    `json:"footnoteSize"`
}

// BorderConfig configures the label frame
type BorderConfig struct {
	Width int    `json:"width"`
	Color string `json:"color"`
	Style string `json:"style"` // solid, dashed, none
}

// ColorScheme configures label colours
type ColorScheme struct {
	Background string `json:"background"`
	Text       string `json:"text"`
	Accent     string `json:"accent"`
	Divider    string `json:"divider"`
}

// Footnote is one disclaimer line printed under the panel
type Footnote struct {
	Text     string `json:"text"`
	TextAr   string `json:"textAr,omitempty"`
	Required bool   `json:"required"`
}

var (
	DefaultTypography  = Typography{FontFamily: "Arial", TitleFontSize: 24, HeaderFontSize: 14, BodyFontSize: 12, FootnoteSize: 8}
	DefaultBorder      = BorderConfig{Width: 2, Color: "#000000", Style: "solid"}
	DefaultColorScheme = ColorScheme{Background: "#ffffff", Text: "#000000", Accent: "#000000", Divider: "#000000"}
)

// WithDefaults fills zero fields from DefaultTypography
func (t Typography) WithDefaults() Typography {
	d := DefaultTypography
	if t.FontFamily != "" {
		d.FontFamily = t.FontFamily
	}
	if t.TitleFontSize > 0 {
		d.TitleFontSize = t.TitleFontSize
	}
	if t.HeaderFontSize > 0 {
		d.HeaderFontSize = t.HeaderFontSize
	}
	if t.BodyFontSize > 0 {
		d.BodyFontSize = t.BodyFontSize
	}
	if t.FootnoteSize > 0 {
		d.FootnoteSize = t.FootnoteSize
	}
	return d
}

// WithDefaults fills zero fields from DefaultBorder
func (b BorderConfig) WithDefaults() BorderConfig {
	d := DefaultBorder
	if b.Width > 0 {
		d.Width = b.Width
	}
	if b.Color != "" {
		d.Color = b.Color
	}
	if b.Style != "" {
		d.Style = b.Style
	}
	return d
}

// WithDefaults fills zero fields from DefaultColorScheme
func (c ColorScheme) WithDefaults() ColorScheme {
	d := DefaultColorScheme
	if c.Background != "" {
		d.Background = c.Background
	}
	if c.Text != "" {
		d.Text = c.Text
	}
	if c.Accent != "" {
		d.Accent = c.Accent
	}
	if c.Divider != "" {
		d.Divider = c.Divider
	}
	return d
}

// LabelType is a regulatory or stylistic label profile (FDA, GSO, EU...)
type LabelType struct {
	ID               string              `json:"id"`
	Code             string              `json:"code"`
	Name             string              `json:"name"`
	Category         string              `json:"category"` // regulatory, marketing, custom
	Description      string              `json:"description,omitempty"`
	Region           string              `json:"region,omitempty"`
	Languages        []string            `json:"languages"`
	DisplayModes     []DisplayMode       `json:"displayModes"`
	DailyCalorieBase int                 `json:"dailyCalorieBase"`
	EnergyUnit       string              `json:"energyUnit"`    // kcal, kJ, both
	SodiumDisplay    string              `json:"sodiumDisplay"` // sodium, salt
	Width            int                 `json:"width"`
	Height           int                 `json:"height"`
	Typography       Typography          `json:"typography"`
	Border           BorderConfig        `json:"border"`
	ColorScheme      ColorScheme         `json:"colorScheme"`
	Footnotes        []Footnote          `json:"footnotes"`
	ReferenceTableID string              `json:"referenceTableId,omitempty"`
	IsActive         bool                `json:"isActive"`
	IsSystem         bool                `json:"isSystem"`
	Nutrients        []LabelTypeNutrient `json:"nutrients,omitempty"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}

// LabelTypeNutrient configures how one nutrient appears on one label type
type LabelTypeNutrient struct {
	ID             string           `json:"id"`
	LabelTypeID    string           `json:"labelTypeId"`
	NutrientKey    string           `json:"nutrientKey"`
	IsMandatory    bool             `json:"isMandatory"`
	ShowByDefault  bool             `json:"showByDefault"`
	ShowPercentDV  bool             `json:"showPercentDv"`
	DisplayOrder   int              `json:"displayOrder"`
	IndentLevel    *int             `json:"indentLevel"` // nil takes the nutrient's catalog depth
	IsBold         bool             `json:"isBold"`
	DailyValue     *decimal.Decimal `json:"dailyValue,omitempty"` // overrides the linked reference table
	DailyValueUnit string           `json:"dailyValueUnit,omitempty"`
}

// MaxIndentLevel is the deepest indentation a label config may request
const MaxIndentLevel = 3

// Indent returns a pointer to level for LabelTypeNutrient.IndentLevel
func Indent(level int) *int {
	return &level
}

// Indent returns the configured indentation, 0 when unset
func (n *LabelTypeNutrient) Indent() int {
	if n.IndentLevel == nil {
		return 0
	}
	return *n.IndentLevel
}

// Validate checks label type fields and every nested nutrient config
func (lt *LabelType) Validate() error {
	if lt.Code == "" {
		return InvalidInput("label type", lt.ID, "code", "code is required")
	}
	if lt.Name == "" {
		return InvalidInput("label type", lt.Code, "name", "name is required")
	}
	for _, m := range lt.DisplayModes {
		if m != DisplayPerServing && m != DisplayPer100 {
			return InvalidInput("label type", lt.Code, "displayModes", "unknown display mode %q", m)
		}
	}
	seen := make(map[string]bool, len(lt.Nutrients))
	for _, n := range lt.Nutrients {
		if seen[n.NutrientKey] {
			return Conflict("label type", lt.Code, "nutrient %q configured twice", n.NutrientKey)
		}
		seen[n.NutrientKey] = true
		if err := n.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks indent bounds and a strictly positive override value
func (n *LabelTypeNutrient) Validate() error {
	if n.NutrientKey == "" {
		return InvalidInput("label type nutrient", n.ID, "nutrientKey", "nutrient key is required")
	}
	if lvl := n.IndentLevel; lvl != nil && (*lvl < 0 || *lvl > MaxIndentLevel) {
		return InvalidInput("label type nutrient", n.NutrientKey, "indentLevel", "must be between 0 and %d, got %d", MaxIndentLevel, *lvl)
	}
	if n.DailyValue != nil && !n.DailyValue.IsPositive() {
		return InvalidInput("label type nutrient", n.NutrientKey, "dailyValue", "must be greater than zero, got %s", n.DailyValue)
	}
	return nil
}
