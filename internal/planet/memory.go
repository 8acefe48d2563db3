package planet

import (
	"context"
	"sort"
	"sync"
	"time"

	"planets-api/internal/shared/errors"
)

// MemoryRepository is an in-memory Repository implementation. It backs the
// handler tests and is a drop-in substitute anywhere the interface is
// accepted.
type MemoryRepository struct {
	mu      sync.RWMutex
	planets map[int]Planet
	nextID  int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		planets: make(map[int]Planet),
		nextID:  1,
	}
}

func (r *MemoryRepository) ListAll(_ context.Context) ([]Planet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	planets := make([]Planet, 0, len(r.planets))
	for _, p := range r.planets {
		planets = append(planets, p)
	}
	sort.Slice(planets, func(i, j int) bool { return planets[i].ID < planets[j].ID })
	return planets, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id int) (*Planet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.planets[id]
	if !ok {
		return nil, errors.NotFoundf("planet %d not found", id)
	}
	return &p, nil
}

func (r *MemoryRepository) Create(_ context.Context, data Data, createdBy, updatedBy string) (*Planet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	p := Planet{
		ID:          r.nextID,
		Name:        data.Name,
		Description: data.Description,
		Diameter:    data.Diameter,
		CreatedBy:   createdBy,
		UpdatedBy:   updatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.nextID++
	r.planets[p.ID] = p
	return &p, nil
}

func (r *MemoryRepository) UpdateByID(_ context.Context, id int, data Data, updatedBy string) (*Planet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.planets[id]
	if !ok {
		return nil, errors.NotFoundf("planet %d not found", id)
	}

	p.Name = data.Name
	p.Description = data.Description
	p.Diameter = data.Diameter
	p.UpdatedBy = updatedBy
	p.UpdatedAt = time.Now().UTC()
	r.planets[id] = p
	return &p, nil
}

func (r *MemoryRepository) DeleteByID(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.planets[id]; !ok {
		return errors.NotFoundf("planet %d not found", id)
	}
	delete(r.planets, id)
	return nil
}

func (r *MemoryRepository) SetPhotoFilename(_ context.Context, id int, filename string) (*Planet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.planets[id]
	if !ok {
		return nil, errors.NotFoundf("planet %d not found", id)
	}

	p.PhotoFilename = &filename
	p.UpdatedAt = time.Now().UTC()
	r.planets[id] = p
	return &p, nil
}
