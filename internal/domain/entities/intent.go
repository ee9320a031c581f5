package entities

// Intent categories for clinical queries. The set is fixed.
const (
	IntentDiagnosis     = "diagnosis"
	IntentLaboratory    = "laboratory"
	IntentMedication    = "medication"
	IntentSupplyService = "supply_service"
	IntentUnit          = "unit"
	IntentPhenotype     = "phenotype"
)

// IntentCategories lists all categories in canonical order.
var IntentCategories = []string{
	IntentDiagnosis,
	IntentLaboratory,
	IntentMedication,
	IntentSupplyService,
	IntentUnit,
	IntentPhenotype,
}

// IntentScores holds a confidence score in [0,1] per intent category.
type IntentScores struct {
	Diagnosis     float64 `json:"diagnosis"`
	Laboratory    float64 `json:"laboratory"`
	Medication    float64 `json:"medication"`
	SupplyService float64 `json:"supply_service"`
	Unit          float64 `json:"unit"`
	Phenotype     float64 `json:"phenotype"`
}

// Get returns the score for a category, zero for unknown categories.
func (s IntentScores) Get(category string) float64 {
	switch category {
	case IntentDiagnosis:
		return s.Diagnosis
	case IntentLaboratory:
		return s.Laboratory
	case IntentMedication:
		return s.Medication
	case IntentSupplyService:
		return s.SupplyService
	case IntentUnit:
		return s.Unit
	case IntentPhenotype:
		return s.Phenotype
	}
	return 0
}

// Set assigns the score for a category. Unknown categories are ignored.
func (s *IntentScores) Set(category string, score float64) {
	switch category {
	case IntentDiagnosis:
		s.Diagnosis = score
	case IntentLaboratory:
		s.Laboratory = score
	case IntentMedication:
		s.Medication = score
	case IntentSupplyService:
		s.SupplyService = score
	case IntentUnit:
		s.Unit = score
	case IntentPhenotype:
		s.Phenotype = score
	}
}

// Max returns the highest score and its category.
func (s IntentScores) Max() (string, float64) {
	best := IntentCategories[0]
	bestScore := s.Get(best)
	for _, cat := range IntentCategories[1:] {
		if s.Get(cat) > bestScore {
			best = cat
			bestScore = s.Get(cat)
		}
	}
	return best, bestScore
}

// Blend merges two score sets with the given weight on the receiver,
// per category independently.
func (s IntentScores) Blend(other IntentScores, weight float64) IntentScores {
	otherWeight := 1.0 - weight
	var merged IntentScores
	for _, cat := range IntentCategories {
		merged.Set(cat, s.Get(cat)*weight+other.Get(cat)*otherWeight)
	}
	return merged
}

// Expansion holds clinically related terms grouped by category,
// as returned by the query-expansion capability.
type Expansion struct {
	Diagnoses   []string `json:"diagnoses"`
	Labs        []string `json:"labs"`
	Medications []string `json:"medications"`
}
