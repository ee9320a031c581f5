package services

import (
	"context"
	"fmt"
	"regexp"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/clintables/codefinder/internal/adapters/terminology"
	"github.com/clintables/codefinder/internal/domain/entities"
	"github.com/clintables/codefinder/internal/domain/providers"
)

const (
	// ruleConfidenceBar is the rule score above which the semantic
	// classifier is skipped entirely.
	ruleConfidenceBar = 0.7

	// ruleBlendWeight weights the rule-based scores when blending with
	// semantic scores.
	ruleBlendWeight = 0.3
)

// intentPatterns drive the fast rule-based classification pass.
var intentPatterns = map[string][]*regexp.Regexp{
	entities.IntentDiagnosis: {
		regexp.MustCompile(`(?i)\b(disease|condition|syndrome|disorder)\b`),
		regexp.MustCompile(`(?i)\b\w+(itis|osis|emia|pathy|plasia)\b`),
		regexp.MustCompile(`(?i)\b(cancer|tumor|carcinoma|diabetes|hypertension)\b`),
	},
	entities.IntentLaboratory: {
		regexp.MustCompile(`(?i)\b(test|level|measurement|panel|assay)\b`),
		regexp.MustCompile(`(?i)\b(blood|urine|serum|plasma|specimen)\b`),
		regexp.MustCompile(`(?i)\b(glucose|hemoglobin|cholesterol|creatinine|a1c)\b`),
	},
	entities.IntentMedication: {
		regexp.MustCompile(`(?i)\b\d+\s*(mg|mcg|g|ml|unit)\b`),
		regexp.MustCompile(`(?i)\b(tablet|capsule|injection|oral|topical)\b`),
		regexp.MustCompile(`(?i)\b(metformin|aspirin|lisinopril|atorvastatin)\b`),
	},
	entities.IntentSupplyService: {
		regexp.MustCompile(`(?i)\b(wheelchair|crutch|walker|supply|DME|equipment)\b`),
		regexp.MustCompile(`(?i)\b(prosthetic|orthotic|brace|splint)\b`),
	},
	entities.IntentUnit: {
		regexp.MustCompile(`(?i)\b(mg/dL|mmol/L|mL|cm|mm|kg)\b`),
		regexp.MustCompile(`\b\w+/\w+\b`),
		regexp.MustCompile(`(?i)\bper\s+(liter|minute|hour|day)\b`),
	},
	entities.IntentPhenotype: {
		regexp.MustCompile(`(?i)\b(symptom|trait|feature|abnormal)\b`),
		regexp.MustCompile(`(?i)\b(ataxia|dystonia|seizure|tremor)\b`),
		regexp.MustCompile(`(?i)\b(phenotype|clinical feature)\b`),
	},
}

// Classifier maps free text to intent scores over the fixed categories and
// selects which coding systems to search. A fast pattern pass runs first;
// the semantic capability is consulted only when the rules are unsure.
type Classifier struct {
	semantic  providers.IntentClassifier
	threshold float64
}

// ClassifyOutcome is the classifier's full decision.
type ClassifyOutcome struct {
	Scores    entities.IntentScores
	Systems   []string
	Reasoning string
}

// NewClassifier creates a classifier. semantic may be nil, in which case
// classification is purely rule-based.
func NewClassifier(semantic providers.IntentClassifier, threshold float64) *Classifier {
	return &Classifier{semantic: semantic, threshold: threshold}
}

// Classify scores the query and selects coding systems. Semantic failures
// degrade to the rule-based scores alone; selection is always non-empty.
func (c *Classifier) Classify(ctx context.Context, query string) ClassifyOutcome {
	ruleScores := applyRules(query)
	_, maxRule := ruleScores.Max()

	var scores entities.IntentScores
	var reasoning string

	if maxRule >= ruleConfidenceBar || c.semantic == nil {
		scores = ruleScores
		reasoning = fmt.Sprintf("Classified query using pattern matching (high confidence: %.2f)", maxRule)
	} else {
		semanticScores, err := c.semantic.ClassifyIntent(ctx, query)
		if err != nil {
			// Treat the semantic contribution as all-zero.
			log.Warn().Err(err).Msg("semantic classification failed, using rules only")
			semanticScores = entities.IntentScores{}
		}
		scores = ruleScores.Blend(semanticScores, ruleBlendWeight)
		reasoning = "Classified query using semantic classifier + patterns (merged scores)"
	}

	systems := SelectSystems(scores, c.threshold)
	if len(systems) == 0 {
		highest, _ := scores.Max()
		systems = append([]string{}, terminology.SystemsForIntent(highest)...)
		reasoning += fmt.Sprintf("; defaulted to %s systems", highest)
	}

	return ClassifyOutcome{
		Scores:    scores,
		Systems:   systems,
		Reasoning: reasoning,
	}
}

// applyRules scores each category as min(0.3 + 0.2*matches, 0.9) where
// matches counts patterns that hit.
func applyRules(query string) entities.IntentScores {
	var scores entities.IntentScores
	for intent, patterns := range intentPatterns {
		matches := 0
		for _, p := range patterns {
			if p.MatchString(query) {
				matches++
			}
		}
		if matches > 0 {
			score := 0.3 + 0.2*float64(matches)
			if score > 0.9 {
				score = 0.9
			}
			scores.Set(intent, score)
		}
	}
	return scores
}

// SelectSystems returns the sorted union of systems mapped from every
// category scoring at or above threshold.
func SelectSystems(scores entities.IntentScores, threshold float64) []string {
	set := map[string]struct{}{}
	for _, cat := range entities.IntentCategories {
		if scores.Get(cat) >= threshold {
			for _, system := range terminology.SystemsForIntent(cat) {
				set[system] = struct{}{}
			}
		}
	}

	systems := make([]string, 0, len(set))
	for s := range set {
		systems = append(systems, s)
	}
	sort.Strings(systems)
	return systems
}
