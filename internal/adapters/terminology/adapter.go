package terminology

import (
	"context"

	"github.com/clintables/codefinder/internal/domain/entities"
	"github.com/clintables/codefinder/internal/infrastructure/clients/clinicaltables"
)

// Adapter is a uniform search interface over one Clinical Tables endpoint.
// The per-system differences are pure configuration: table name plus the
// search, display, and extra field lists.
type Adapter struct {
	system        string
	table         string
	searchFields  []string
	displayFields []string
	extraFields   []string
	client        *clinicaltables.Client
}

// System returns the coding-system name, e.g. "ICD-10-CM".
func (a *Adapter) System() string {
	return a.system
}

// Table returns the Clinical Tables table backing this adapter.
func (a *Adapter) Table() string {
	return a.table
}

// Search looks up codes matching term and normalizes the response into
// CodeRecords, each tagged with the term that found it.
func (a *Adapter) Search(ctx context.Context, term string, maxResults int) ([]entities.CodeRecord, error) {
	records, err := a.client.Search(ctx, clinicaltables.SearchParams{
		Table:         a.table,
		Term:          term,
		MaxResults:    maxResults,
		SearchFields:  a.searchFields,
		DisplayFields: a.displayFields,
		ExtraFields:   a.extraFields,
	})
	if err != nil {
		return nil, err
	}

	results := make([]entities.CodeRecord, 0, len(records))
	for _, r := range records {
		results = append(results, entities.CodeRecord{
			Code:       r.Code,
			Display:    r.Display,
			SearchTerm: term,
			Extra:      r.Extra,
			Source: entities.Source{
				Adapter: a.system,
				Term:    term,
			},
		})
	}
	return results, nil
}

// NewICD10 returns the ICD-10-CM diagnosis code adapter.
func NewICD10(client *clinicaltables.Client) *Adapter {
	return &Adapter{
		system:        SystemICD10,
		table:         "icd10cm",
		searchFields:  []string{"code", "name"},
		displayFields: []string{"code", "name"},
		client:        client,
	}
}

// NewLOINC returns the LOINC lab test code adapter.
func NewLOINC(client *clinicaltables.Client) *Adapter {
	return &Adapter{
		system:        SystemLOINC,
		table:         "loinc_items",
		searchFields:  []string{"text", "COMPONENT", "LONG_COMMON_NAME", "SHORTNAME", "RELATEDNAMES2"},
		displayFields: []string{"LOINC_NUM", "LONG_COMMON_NAME"},
		extraFields:   []string{"COMPONENT", "PROPERTY", "METHOD_TYP"},
		client:        client,
	}
}

// NewRxTerms returns the RxTerms drug code adapter.
func NewRxTerms(client *clinicaltables.Client) *Adapter {
	return &Adapter{
		system:        SystemRxTerms,
		table:         "rxterms",
		searchFields:  []string{"DISPLAY_NAME", "DISPLAY_NAME_SYNONYM"},
		displayFields: []string{"DISPLAY_NAME"},
		extraFields:   []string{"RXCUIS", "STRENGTHS_AND_FORMS", "SXDG_RXCUI"},
		client:        client,
	}
}

// NewHCPCS returns the HCPCS supply/service code adapter.
func NewHCPCS(client *clinicaltables.Client) *Adapter {
	return &Adapter{
		system:        SystemHCPCS,
		table:         "hcpcs",
		searchFields:  []string{"code", "short_desc", "long_desc"},
		displayFields: []string{"code", "long_desc"},
		client:        client,
	}
}

// NewUCUM returns the UCUM unit-of-measure code adapter.
func NewUCUM(client *clinicaltables.Client) *Adapter {
	return &Adapter{
		system:        SystemUCUM,
		table:         "ucum",
		searchFields:  []string{"cs_code", "name", "synonyms"},
		displayFields: []string{"cs_code", "name"},
		extraFields:   []string{"category", "loinc_property"},
		client:        client,
	}
}

// NewHPO returns the HPO phenotype code adapter.
func NewHPO(client *clinicaltables.Client) *Adapter {
	return &Adapter{
		system:        SystemHPO,
		table:         "hpo",
		searchFields:  []string{"id", "name", "synonym.term"},
		displayFields: []string{"id", "name"},
		extraFields:   []string{"definition"},
		client:        client,
	}
}
