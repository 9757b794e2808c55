package models

// Yes/No values accepted for the boolean form fields.
const (
	Yes = "Yes"
	No  = "No"
)

// CustomerInput is the raw form payload for a single churn prediction.
// Every field must be supplied; zero values are validated, not defaulted.
type CustomerInput struct {
	CreditScore     int     `json:"credit_score" form:"credit_score" validate:"gte=300,lte=850"`
	Geography       string  `json:"geography" form:"geography" validate:"required"`
	Gender          string  `json:"gender" form:"gender" validate:"required"`
	Age             int     `json:"age" form:"age" validate:"gte=18,lte=99"`
	Tenure          int     `json:"tenure" form:"tenure" validate:"gte=1,lte=10"`
	Balance         float64 `json:"balance" form:"balance" validate:"gte=0"`
	NumOfProducts   int     `json:"num_of_products" form:"num_of_products" validate:"gte=1,lte=4"`
	HasCrCard       string  `json:"has_cr_card" form:"has_cr_card" validate:"required,oneof=Yes No"`
	IsActiveMember  string  `json:"is_active_member" form:"is_active_member" validate:"required,oneof=Yes No"`
	EstimatedSalary float64 `json:"estimated_salary" form:"estimated_salary" validate:"gte=10000,lte=100000"`
}

// FormDefaults returns the initial values of the prediction form widgets,
// which start at their minimum value or first option.
func FormDefaults() CustomerInput {
	return CustomerInput{
		CreditScore:     300,
		Age:             18,
		Tenure:          1,
		NumOfProducts:   1,
		HasCrCard:       Yes,
		IsActiveMember:  Yes,
		EstimatedSalary: 10000,
	}
}

// FormOptions describes the choices and ranges a client needs to render
// the prediction form.
type FormOptions struct {
	Geographies []string         `json:"geographies"`
	Genders     []string         `json:"genders"`
	YesNo       []string         `json:"yes_no"`
	Ranges      map[string]Range `json:"ranges"`
}

// Range is an inclusive numeric bound. Max of zero means unbounded.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max,omitempty"`
}

// InputRanges returns the numeric domains enforced on CustomerInput.
func InputRanges() map[string]Range {
	return map[string]Range{
		"credit_score":     {Min: 300, Max: 850},
		"age":              {Min: 18, Max: 99},
		"tenure":           {Min: 1, Max: 10},
		"balance":          {Min: 0},
		"num_of_products":  {Min: 1, Max: 4},
		"estimated_salary": {Min: 10000, Max: 100000},
	}
}
