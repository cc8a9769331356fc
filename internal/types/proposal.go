package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Proposal is a candidate 7-day plan returned by the planner.
//
//	{"user_id": "...", "meal_plan": [{"day": 1, "date": "2024-01-08",
//	  "meals": {"breakfast": [{"id": 12, "name": "Poha"}]}}]}
type Proposal struct {
	UserID   string        `json:"user_id"`
	MealPlan []ProposalDay `json:"meal_plan"`
}

// ProposalDay holds the proposed items for one date, keyed by meal type name.
type ProposalDay struct {
	Day   int                       `json:"day"`
	Date  string                    `json:"date"`
	Meals map[string][]ProposedItem `json:"meals"`
}

// UnmarshalJSON accepts both the nested "meals" object and the older shape
// where meal type keys sit directly on the day.
func (d *ProposalDay) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid day entry: %w", err)
	}

	d.Meals = make(map[string][]ProposedItem)
	for key, value := range raw {
		switch key {
		case "day":
			var n FlexibleID
			if err := json.Unmarshal(value, &n); err != nil {
				return fmt.Errorf("invalid day number: %w", err)
			}
			d.Day = int(n)
		case "date":
			if err := json.Unmarshal(value, &d.Date); err != nil {
				return fmt.Errorf("invalid date: %w", err)
			}
		case "meals":
			var meals map[string][]ProposedItem
			if err := json.Unmarshal(value, &meals); err != nil {
				return fmt.Errorf("invalid meals: %w", err)
			}
			for name, items := range meals {
				d.Meals[name] = append(d.Meals[name], items...)
			}
		default:
			trimmed := strings.TrimSpace(string(value))
			if !strings.HasPrefix(trimmed, "[") {
				continue
			}
			var items []ProposedItem
			if err := json.Unmarshal(value, &items); err != nil {
				return fmt.Errorf("invalid items for %s: %w", key, err)
			}
			d.Meals[key] = append(d.Meals[key], items...)
		}
	}
	return nil
}

// ProposedItem references a catalog item by id.
type ProposedItem struct {
	ID   FlexibleID `json:"id"`
	Name string     `json:"name"`
}

// FlexibleID accepts ids written as JSON numbers or numeric strings.
type FlexibleID uint

func (f *FlexibleID) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		if num < 0 || num != float64(uint64(num)) {
			return fmt.Errorf("invalid id %v", num)
		}
		*f = FlexibleID(num)
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		n, err := strconv.ParseUint(strings.TrimSpace(str), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", str)
		}
		*f = FlexibleID(n)
		return nil
	}

	return fmt.Errorf("invalid id format")
}
