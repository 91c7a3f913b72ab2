package signrequests

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu      sync.RWMutex
	byID    map[string]Request
	byToken map[string]string // tokenHash -> requestID
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:    make(map[string]Request),
		byToken: make(map[string]string),
	}
}

func (r *MemoryRepo) Create(ctx context.Context, req Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[req.ID] = req
	r.byToken[req.TokenHash] = req.ID
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, requestID string) (Request, error) {
	if err := ctx.Err(); err != nil {
		return Request{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.byID[requestID]
	if !ok {
		return Request{}, ErrNotFound
	}
	return req, nil
}

func (r *MemoryRepo) GetByTokenHash(ctx context.Context, tokenHash string) (Request, error) {
	if err := ctx.Err(); err != nil {
		return Request{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byToken[tokenHash]
	if !ok {
		return Request{}, ErrNotFound
	}
	return r.byID[id], nil
}

// ListByDocument returns the document's requests, newest first.
func (r *MemoryRepo) ListByDocument(ctx context.Context, documentID string) ([]Request, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Request, 0)
	for _, req := range r.byID {
		if req.DocumentID == documentID {
			out = append(out, req)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) ClaimForSigning(ctx context.Context, requestID string, now time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.byID[requestID]
	if !ok {
		return false, ErrNotFound
	}
	if req.Status != StatusPending || now.After(req.ExpiresAt) {
		return false, nil
	}
	req.Status = StatusSigned
	req.SignedAt = &now
	r.byID[requestID] = req
	return true, nil
}

func (r *MemoryRepo) ReleaseClaim(ctx context.Context, requestID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.byID[requestID]
	if !ok {
		return ErrNotFound
	}
	if req.Status == StatusSigned && req.SignatureID == nil {
		req.Status = StatusPending
		req.SignedAt = nil
		r.byID[requestID] = req
	}
	return nil
}

func (r *MemoryRepo) AttachSignature(ctx context.Context, requestID, signatureID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.byID[requestID]
	if !ok {
		return ErrNotFound
	}
	req.SignatureID = &signatureID
	r.byID[requestID] = req
	return nil
}

func (r *MemoryRepo) Cancel(ctx context.Context, requestID string, at time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.byID[requestID]
	if !ok {
		return false, ErrNotFound
	}
	if req.Status != StatusPending {
		return false, nil
	}
	req.Status = StatusCancelled
	req.CancelledAt = &at
	r.byID[requestID] = req
	return true, nil
}

var _ Repo = (*MemoryRepo)(nil)
