// Package memory implementa el store del ledger en proceso. Sirve como driver local
// (LEDGER_STORE=memory) y como doble de prueba de la capa de aplicación; aplica el mismo
// ledger.Filter que el store PostgreSQL traduce a SQL.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	ledgerapp "github.com/jhoicas/bodega-api/internal/application/ledger"
	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
	"github.com/jhoicas/bodega-api/internal/domain/ledger"
	"github.com/jhoicas/bodega-api/internal/domain/repository"
)

var _ ledgerapp.Store = (*Store)(nil)

// Store ledger en memoria protegido por un RWMutex: las lecturas corren en paralelo,
// las altas se serializan (equivalente al SELECT FOR UPDATE del store PostgreSQL).
type Store struct {
	mu        sync.RWMutex
	types     []entity.MovementType
	resources map[int64]entity.Resource
	users     map[string]entity.User
	movements []entity.Movement
	nextID    int64
	readErr   error
}

// NewStore crea un ledger vacío con el catálogo de tipos dado.
func NewStore(types []entity.MovementType) *Store {
	return &Store{
		types:     append([]entity.MovementType(nil), types...),
		resources: make(map[int64]entity.Resource),
		users:     make(map[string]entity.User),
	}
}

// PutResource crea o reemplaza un recurso del catálogo.
func (s *Store) PutResource(r entity.Resource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources[r.ID] = r
}

// DeleteResource elimina un recurso; sus movimientos quedan colgando.
func (s *Store) DeleteResource(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.resources, id)
}

// Resource devuelve el recurso actual.
func (s *Store) Resource(id int64) (entity.Resource, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.resources[id]
	return r, ok
}

// PutUser registra un usuario para mostrar su nombre en los movimientos.
func (s *Store) PutUser(u entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// FailReads hace que las lecturas devuelvan err (nil restablece). Simula una BD caída.
func (s *Store) FailReads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readErr = err
}

// ListMovementTypes catálogo de tipos.
func (s *Store) ListMovementTypes(_ context.Context) ([]entity.MovementType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.readErr != nil {
		return nil, s.readErr
	}
	return append([]entity.MovementType(nil), s.types...), nil
}

func (s *Store) ListMovements(_ context.Context, filter ledger.Filter, limit, offset int) ([]entity.MovementView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return reader{s}.list(filter, limit, offset)
}

func (s *Store) CountMovements(_ context.Context, filter ledger.Filter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return reader{s}.count(filter)
}

func (s *Store) CountByType(_ context.Context, filter ledger.Filter) ([]ledger.TypeCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return reader{s}.countByType(filter)
}

func (s *Store) CountDistinctResources(_ context.Context, filter ledger.Filter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return reader{s}.countDistinct(filter)
}

// AppendMovement agrega un movimiento fuera de una transacción (cargas iniciales, tests).
// No toca el stock.
func (s *Store) AppendMovement(_ context.Context, m *entity.Movement) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.validate(m); err != nil {
		return 0, err
	}
	s.nextID++
	stored := *m
	stored.ID = s.nextID
	s.movements = append(s.movements, stored)
	return stored.ID, nil
}

// Snapshot ejecuta fn con el lock de lectura tomado: ninguna alta se intercala.
func (s *Store) Snapshot(_ context.Context, fn func(reader repository.MovementReader) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(snapshot{reader{s}})
}

// Run ejecuta fn con el lock de escritura. Los cambios se aplican solo si fn no falla.
func (s *Store) Run(_ context.Context, fn func(
	movRepo repository.MovementWriter,
	resourceRepo repository.ResourceRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &tx{store: s, stock: make(map[int64]decimal.Decimal)}
	if err := fn(tx, tx); err != nil {
		return err
	}
	for id, stock := range tx.stock {
		r := s.resources[id]
		r.Stock = stock
		s.resources[id] = r
	}
	s.movements = append(s.movements, tx.movements...)
	return nil
}

// validate reglas que en PostgreSQL imponen el CHECK de cantidad y la FK del tipo.
func (s *Store) validate(m *entity.Movement) error {
	if m.Quantity.IsNegative() {
		return domain.ErrNegativeQuantity
	}
	for _, t := range s.types {
		if t.ID == m.TypeID {
			return nil
		}
	}
	return domain.ErrUnknownMovementType
}

// reader lecturas sin lock; el llamador ya tiene el RLock.
type reader struct{ s *Store }

func (r reader) matching(filter ledger.Filter) ([]entity.MovementView, error) {
	if r.s.readErr != nil {
		return nil, r.s.readErr
	}
	types := make(map[int64]entity.MovementType, len(r.s.types))
	for _, t := range r.s.types {
		types[t.ID] = t
	}
	var out []entity.MovementView
	for _, m := range r.s.movements {
		v := entity.MovementView{Movement: m, Type: types[m.TypeID]}
		if res, ok := r.s.resources[m.ResourceID]; ok {
			v.Resource = &res
		}
		if m.ActorID != "" {
			if u, ok := r.s.users[m.ActorID]; ok {
				v.Actor = &u
			}
		}
		if filter.Matches(v) {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r reader) list(filter ledger.Filter, limit, offset int) ([]entity.MovementView, error) {
	all, err := r.matching(filter)
	if err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) || limit <= 0 {
		return []entity.MovementView{}, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], nil
}

func (r reader) count(filter ledger.Filter) (int64, error) {
	all, err := r.matching(filter)
	if err != nil {
		return 0, err
	}
	return int64(len(all)), nil
}

func (r reader) countByType(filter ledger.Filter) ([]ledger.TypeCount, error) {
	all, err := r.matching(filter)
	if err != nil {
		return nil, err
	}
	byType := make(map[int64]int64)
	for _, v := range all {
		byType[v.TypeID]++
	}
	counts := make([]ledger.TypeCount, 0, len(byType))
	for id, n := range byType {
		counts = append(counts, ledger.TypeCount{TypeID: id, Movements: n})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].TypeID < counts[j].TypeID })
	return counts, nil
}

func (r reader) countDistinct(filter ledger.Filter) (int64, error) {
	all, err := r.matching(filter)
	if err != nil {
		return 0, err
	}
	seen := make(map[int64]struct{})
	for _, v := range all {
		seen[v.ResourceID] = struct{}{}
	}
	return int64(len(seen)), nil
}

// snapshot adapta reader a repository.MovementReader dentro de Snapshot.
type snapshot struct{ r reader }

func (s snapshot) ListMovements(_ context.Context, filter ledger.Filter, limit, offset int) ([]entity.MovementView, error) {
	return s.r.list(filter, limit, offset)
}

func (s snapshot) CountMovements(_ context.Context, filter ledger.Filter) (int64, error) {
	return s.r.count(filter)
}

func (s snapshot) CountByType(_ context.Context, filter ledger.Filter) ([]ledger.TypeCount, error) {
	return s.r.countByType(filter)
}

func (s snapshot) CountDistinctResources(_ context.Context, filter ledger.Filter) (int64, error) {
	return s.r.countDistinct(filter)
}

// tx cambios pendientes de Run; el llamador tiene el lock de escritura.
type tx struct {
	store     *Store
	movements []entity.Movement
	stock     map[int64]decimal.Decimal
}

func (t *tx) AppendMovement(_ context.Context, m *entity.Movement) (int64, error) {
	if err := t.store.validate(m); err != nil {
		return 0, err
	}
	t.store.nextID++
	stored := *m
	stored.ID = t.store.nextID
	t.movements = append(t.movements, stored)
	return stored.ID, nil
}

func (t *tx) GetForUpdate(_ context.Context, id int64) (*entity.Resource, error) {
	r, ok := t.store.resources[id]
	if !ok {
		return nil, nil
	}
	if stock, staged := t.stock[id]; staged {
		r.Stock = stock
	}
	return &r, nil
}

func (t *tx) UpdateStock(_ context.Context, r *entity.Resource) error {
	if _, ok := t.store.resources[r.ID]; !ok {
		return domain.ErrNotFound
	}
	if r.Stock.IsNegative() {
		return domain.ErrInsufficientStock
	}
	t.stock[r.ID] = r.Stock
	return nil
}
