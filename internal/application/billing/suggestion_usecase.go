package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/invoice-manager/internal/application/dto"
	dbilling "github.com/jhoicas/invoice-manager/internal/domain/billing"
	"github.com/jhoicas/invoice-manager/internal/domain/repository"
)

// historyFetchLimit facturas leídas por consulta de sugerencias (antes de deduplicar).
const historyFetchLimit = 50

// SuggestionUseCase autocompletado de clientes a partir del historial de facturas.
type SuggestionUseCase struct {
	repo repository.InvoiceRepository
}

// NewSuggestionUseCase construye el caso de uso.
func NewSuggestionUseCase(repo repository.InvoiceRepository) *SuggestionUseCase {
	return &SuggestionUseCase{repo: repo}
}

// Suggest devuelve hasta 10 clientes únicos cuyo nombre contiene partialName.
// Con menos de 2 caracteres no consulta el backend.
func (uc *SuggestionUseCase) Suggest(ctx context.Context, partialName, partialPhone string) ([]dto.CustomerSuggestionDTO, error) {
	if !dbilling.ShouldQuery(partialName) {
		return []dto.CustomerSuggestionDTO{}, nil
	}
	history, err := uc.history(ctx, repository.CustomerHistoryFilter{
		NameContains: dbilling.SearchTerm(partialName),
		Phone:        strings.TrimSpace(partialPhone),
		Limit:        historyFetchLimit,
	})
	if err != nil {
		return nil, err
	}
	return toSuggestionDTOs(dbilling.MatchSuggestions(history, partialName, partialPhone)), nil
}

// AutoFill busca el cliente cuyo (nombre, teléfono) coincide exactamente.
func (uc *SuggestionUseCase) AutoFill(ctx context.Context, name, phone string) (*dto.CustomerMatchResponse, error) {
	name, phone = strings.TrimSpace(name), strings.TrimSpace(phone)
	if name == "" || len([]rune(phone)) < dbilling.MinPhoneLookupLen {
		return &dto.CustomerMatchResponse{Found: false}, nil
	}
	// El teléfono exacto acota la consulta; el nombre se compara en memoria.
	history, err := uc.history(ctx, repository.CustomerHistoryFilter{
		Phone: phone,
		Limit: historyFetchLimit,
	})
	if err != nil {
		return nil, err
	}
	dbilling.SortByRecency(history)
	match, ok := dbilling.ExactMatch(history, name, phone)
	if !ok {
		return &dto.CustomerMatchResponse{Found: false}, nil
	}
	c := toSuggestionDTO(match)
	return &dto.CustomerMatchResponse{Found: true, Customer: &c}, nil
}

// UniqueCustomers todos los clientes distintos del historial, del más reciente al más antiguo.
func (uc *SuggestionUseCase) UniqueCustomers(ctx context.Context) ([]dto.CustomerSuggestionDTO, error) {
	history, err := uc.history(ctx, repository.CustomerHistoryFilter{})
	if err != nil {
		return nil, err
	}
	dbilling.SortByRecency(history)
	return toSuggestionDTOs(dbilling.Dedupe(history)), nil
}

func (uc *SuggestionUseCase) history(ctx context.Context, f repository.CustomerHistoryFilter) ([]dbilling.CustomerSuggestion, error) {
	list, err := uc.repo.ListCustomerHistory(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("historial de clientes: %w", err)
	}
	out := make([]dbilling.CustomerSuggestion, 0, len(list))
	for _, inv := range list {
		if strings.TrimSpace(inv.Customer.Name) == "" {
			continue
		}
		out = append(out, toSuggestion(inv))
	}
	return out, nil
}

func toSuggestionDTOs(list []dbilling.CustomerSuggestion) []dto.CustomerSuggestionDTO {
	out := make([]dto.CustomerSuggestionDTO, 0, len(list))
	for _, s := range list {
		out = append(out, toSuggestionDTO(s))
	}
	return out
}
