package postgrest

import (
	"encoding/json"
	"fmt"

	"github.com/jhoicas/invoice-manager/internal/domain"
)

// APIError error devuelto por el backend REST (cuerpo JSON de PostgREST).
// errors.Is(err, domain.ErrRemote) es verdadero.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("postgrest: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("postgrest: %d: %s", e.Status, e.Message)
}

// Unwrap clasifica el error como remoto.
func (e *APIError) Unwrap() error { return domain.ErrRemote }

// Conflict indica violación de unicidad (23505) o 409.
func (e *APIError) Conflict() bool { return e.Status == 409 || e.Code == "23505" }

func parseAPIError(status int, body []byte) *APIError {
	e := &APIError{Status: status}
	if err := json.Unmarshal(body, e); err != nil || e.Message == "" {
		e.Message = string(body)
	}
	return e
}
