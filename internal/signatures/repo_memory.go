package signatures

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu     sync.RWMutex
	byID   map[string]Record
	byRole map[string]string // documentID|role -> signatureID
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:   make(map[string]Record),
		byRole: make(map[string]string),
	}
}

func roleKey(documentID string, role Role) string {
	return documentID + "|" + string(role)
}

func (r *MemoryRepo) Create(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := roleKey(rec.DocumentID, rec.Role)
	if _, taken := r.byRole[key]; taken {
		return ErrRoleAlreadySigned
	}
	r.byRole[key] = rec.ID
	r.byID[rec.ID] = rec
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, signatureID string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byID[signatureID]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (r *MemoryRepo) ListByDocument(ctx context.Context, documentID string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Record, 0, len(RequiredRoles))
	for _, role := range RequiredRoles {
		if id, ok := r.byRole[roleKey(documentID, role)]; ok {
			out = append(out, r.byID[id])
		}
	}
	r.mu.RUnlock()
	return out, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, signatureID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[signatureID]
	if !ok {
		return ErrNotFound
	}
	delete(r.byID, signatureID)
	delete(r.byRole, roleKey(rec.DocumentID, rec.Role))
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
