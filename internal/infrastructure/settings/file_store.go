package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	appsettings "github.com/jhoicas/invoice-manager/internal/application/settings"
	"github.com/jhoicas/invoice-manager/internal/domain/entity"
)

var _ appsettings.Store = (*FileStore)(nil)

// FileStore guarda los ajustes en un archivo JSON local.
// La escritura pasa por un archivo temporal y rename para no dejar JSON truncado.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore construye el almacén sobre path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load devuelve nil, nil si el archivo no existe.
func (s *FileStore) Load(_ context.Context) (*entity.CompanySettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("leer %s: %w", s.path, err)
	}
	var out entity.CompanySettings
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decodificar %s: %w", s.path, err)
	}
	return &out, nil
}

// Save escribe el archivo completo.
func (s *FileStore) Save(_ context.Context, v entity.CompanySettings) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("serializar ajustes: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("crear %s: %w", dir, err)
		}
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".settings-*.json")
	if err != nil {
		return fmt.Errorf("crear temporal: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("escribir temporal: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cerrar temporal: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("reemplazar %s: %w", s.path, err)
	}
	return nil
}
