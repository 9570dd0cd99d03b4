// Package settings: datos de la empresa emisora. El servicio mantiene una instantánea
// inmutable; Reload la relee del almacén y Save valida, persiste, reemplaza y notifica.
package settings

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jhoicas/invoice-manager/internal/application/dto"
	"github.com/jhoicas/invoice-manager/internal/application/validation"
	"github.com/jhoicas/invoice-manager/internal/domain/entity"
)

// Store puerto del almacén clave-valor de ajustes.
type Store interface {
	// Load devuelve nil, nil si aún no hay ajustes guardados.
	Load(ctx context.Context) (*entity.CompanySettings, error)
	Save(ctx context.Context, s entity.CompanySettings) error
}

// Listener recibe la nueva instantánea tras un Save o Reload.
type Listener func(entity.CompanySettings)

// Service acceso concurrente a los datos de la empresa.
type Service struct {
	store    Store
	defaults entity.CompanySettings
	current  atomic.Pointer[entity.CompanySettings]

	mu        sync.Mutex
	listeners []Listener
}

// NewService crea el servicio con los valores por defecto como instantánea inicial.
// Llamar a Reload para leer el almacén.
func NewService(store Store, defaults entity.CompanySettings) *Service {
	s := &Service{store: store, defaults: defaults}
	d := defaults
	s.current.Store(&d)
	return s
}

// Current devuelve la instantánea vigente.
func (s *Service) Current() entity.CompanySettings { return *s.current.Load() }

// Defaults valores usados cuando el almacén está vacío ("restablecer").
func (s *Service) Defaults() entity.CompanySettings { return s.defaults }

// Reload relee el almacén y reemplaza la instantánea.
func (s *Service) Reload(ctx context.Context) (entity.CompanySettings, error) {
	loaded, err := s.store.Load(ctx)
	if err != nil {
		return s.Current(), fmt.Errorf("ajustes: leer almacén: %w", err)
	}
	next := s.defaults
	if loaded != nil {
		next = *loaded
	}
	s.swap(next)
	return next, nil
}

// Save valida y persiste los ajustes; sólo si el almacén acepta se publica la nueva instantánea.
func (s *Service) Save(ctx context.Context, in dto.CompanySettingsDTO) (entity.CompanySettings, error) {
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	in.CompanyEmail = strings.TrimSpace(in.CompanyEmail)
	if err := validation.Struct(in, nil).OrNil(); err != nil {
		return s.Current(), err
	}
	next := FromDTO(in)
	if err := s.store.Save(ctx, next); err != nil {
		return s.Current(), fmt.Errorf("ajustes: guardar: %w", err)
	}
	s.swap(next)
	return next, nil
}

// Subscribe registra l; se invoca de forma síncrona en orden de registro.
func (s *Service) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
	idx := len(s.listeners) - 1
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.listeners[idx] = nil
	}
}

func (s *Service) swap(next entity.CompanySettings) {
	s.current.Store(&next)
	s.mu.Lock()
	ls := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()
	for _, l := range ls {
		if l != nil {
			l(next)
		}
	}
}

// ToDTO convierte a la forma JSON de la API.
func ToDTO(c entity.CompanySettings) dto.CompanySettingsDTO {
	return dto.CompanySettingsDTO{
		CompanyName:    c.Name,
		CompanyAddress: c.Address,
		CompanyPhone:   c.Phone,
		CompanyEmail:   c.Email,
		CompanyWebsite: c.Website,
	}
}

// FromDTO convierte desde la forma JSON de la API.
func FromDTO(in dto.CompanySettingsDTO) entity.CompanySettings {
	return entity.CompanySettings{
		Name:    in.CompanyName,
		Address: in.CompanyAddress,
		Phone:   in.CompanyPhone,
		Email:   in.CompanyEmail,
		Website: in.CompanyWebsite,
	}
}
