package billing

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// MinSuggestionQueryLen caracteres mínimos del nombre antes de consultar.
	MinSuggestionQueryLen = 2
	// MaxSuggestions tope de sugerencias devueltas.
	MaxSuggestions = 10
	// MinPhoneLookupLen caracteres mínimos del teléfono para el auto-llenado exacto.
	MinPhoneLookupLen = 5
)

// CustomerSuggestion proyección de los datos de cliente de una factura previa.
type CustomerSuggestion struct {
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Address    string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`

	// Orden de recencia; no se serializa.
	InvoiceDate time.Time `json:"-"`
	CreatedAt   time.Time `json:"-"`
}

func (s CustomerSuggestion) key() string {
	return s.Name + "\x00" + s.Phone
}

// SearchTerm recorta el término y quita los caracteres reservados de los filtros remotos
// (`,()*"\`). El filtrado local usa el mismo término que la consulta al backend.
func SearchTerm(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ',', '(', ')', '"', '*', '\\':
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

// ShouldQuery indica si el nombre parcial alcanza el mínimo para consultar historial.
func ShouldQuery(partialName string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(partialName)) >= MinSuggestionQueryLen
}

// MatchSuggestions filtra, ordena (más reciente primero), deduplica por (nombre, teléfono)
// y trunca a MaxSuggestions. Con nombre parcial corto devuelve vacío.
func MatchSuggestions(history []CustomerSuggestion, partialName, partialPhone string) []CustomerSuggestion {
	if !ShouldQuery(partialName) {
		return []CustomerSuggestion{}
	}
	needle := strings.ToLower(SearchTerm(partialName))
	phone := strings.TrimSpace(partialPhone)

	filtered := make([]CustomerSuggestion, 0, len(history))
	for _, h := range history {
		if !strings.Contains(strings.ToLower(SearchTerm(h.Name)), needle) {
			continue
		}
		if phone != "" && strings.TrimSpace(h.Phone) != phone {
			continue
		}
		filtered = append(filtered, h)
	}
	SortByRecency(filtered)
	out := Dedupe(filtered)
	if len(out) > MaxSuggestions {
		out = out[:MaxSuggestions]
	}
	return out
}

// SortByRecency ordena por fecha de factura y luego creación, descendente.
func SortByRecency(list []CustomerSuggestion) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].InvoiceDate.Equal(list[j].InvoiceDate) {
			return list[i].InvoiceDate.After(list[j].InvoiceDate)
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}

// Dedupe conserva la primera aparición de cada par (nombre, teléfono), comparado tal cual.
func Dedupe(list []CustomerSuggestion) []CustomerSuggestion {
	seen := make(map[string]struct{}, len(list))
	out := make([]CustomerSuggestion, 0, len(list))
	for _, s := range list {
		k := s.key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}

// ExactMatch busca la sugerencia cuyo (nombre, teléfono) coincide exactamente.
// Requiere nombre no vacío y al menos MinPhoneLookupLen caracteres de teléfono.
func ExactMatch(history []CustomerSuggestion, name, phone string) (CustomerSuggestion, bool) {
	name, phone = strings.TrimSpace(name), strings.TrimSpace(phone)
	if name == "" || utf8.RuneCountInString(phone) < MinPhoneLookupLen {
		return CustomerSuggestion{}, false
	}
	for _, h := range history {
		if strings.TrimSpace(h.Name) == name && strings.TrimSpace(h.Phone) == phone {
			return h, true
		}
	}
	return CustomerSuggestion{}, false
}
