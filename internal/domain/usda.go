package domain

import "encoding/json"

// USDAFood represents a food item from the USDA FoodData Central API
type USDAFood struct {
	FdcID       int            `json:"fdcId"`
	Description string         `json:"description"`
	DataType    string         `json:"dataType"`
	FoodClass   string         `json:"foodClass,omitempty"`
	BrandOwner  string         `json:"brandOwner,omitempty"`
	Nutrients   []USDANutrient `json:"foodNutrients"`
}

// USDANutrient represents a single nutrient from USDA data.
// Values are expressed per 100 g of the food.
type USDANutrient struct {
	NutrientID     int     `json:"nutrientId"`
	NutrientName   string  `json:"nutrientName"`
	NutrientNumber string  `json:"nutrientNumber,omitempty"`
	UnitName       string  `json:"unitName"`
	Value          float64 `json:"value"`
}

// UnmarshalJSON accepts both the flat search shape and the nested
// {"nutrient": {...}, "amount": n} shape returned by the food details endpoint.
func (n *USDANutrient) UnmarshalJSON(data []byte) error {
	var raw struct {
		NutrientID     int      `json:"nutrientId"`
		NutrientName   string   `json:"nutrientName"`
		NutrientNumber string   `json:"nutrientNumber"`
		UnitName       string   `json:"unitName"`
		Value          *float64 `json:"value"`
		Amount         *float64 `json:"amount"`
		Nutrient       *struct {
			ID       int    `json:"id"`
			Number   string `json:"number"`
			Name     string `json:"name"`
			UnitName string `json:"unitName"`
		} `json:"nutrient"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*n = USDANutrient{
		NutrientID:     raw.NutrientID,
		NutrientName:   raw.NutrientName,
		NutrientNumber: raw.NutrientNumber,
		UnitName:       raw.UnitName,
	}
	if raw.Nutrient != nil {
		n.NutrientID = raw.Nutrient.ID
		n.NutrientName = raw.Nutrient.Name
		n.NutrientNumber = raw.Nutrient.Number
		n.UnitName = raw.Nutrient.UnitName
	}
	switch {
	case raw.Value != nil:
		n.Value = *raw.Value
	case raw.Amount != nil:
		n.Value = *raw.Amount
	}
	return nil
}

// USDASearchResponse represents the response from USDA search API
type USDASearchResponse struct {
	Foods       []USDAFood `json:"foods"`
	TotalHits   int        `json:"totalHits"`
	CurrentPage int        `json:"currentPage"`
	TotalPages  int        `json:"totalPages"`
}

// USDACandidate is a trimmed search hit offered to the admin before an import
type USDACandidate struct {
	FdcID       int     `json:"fdcId"`
	Description string  `json:"description"`
	DataType    string  `json:"dataType"`
	BrandOwner  string  `json:"brandOwner,omitempty"`
	Calories    float64 `json:"calories,omitempty"` // kcal per 100 g as reported
	MatchScore  float64 `json:"matchScore"`
}
