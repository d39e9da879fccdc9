package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"sweetshop/internal/domain/model"
	repo "sweetshop/internal/repository"
)

// sweetEntryは1商品ぶんの状態。muを握ったまま確認と書き込みを行う。
type sweetEntry struct {
	mu      sync.Mutex
	sweet   model.Sweet
	deleted bool
}

// MemoryStoreはDBなしで動かすためのインメモリ実装。
// 全体ロックは map の出し入れだけに使い、数量の変更は商品ごとのロックで守る。
// 別の商品への操作同士は競合しない。
type MemoryStore struct {
	mu     sync.RWMutex
	sweets map[string]*sweetEntry
	users  map[string]*model.User

	auditMu sync.Mutex
	audits  []model.AuditLog
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sweets: make(map[string]*sweetEntry),
		users:  make(map[string]*model.User),
	}
}

// 削除済みを含めず1件取り出す
func (m *MemoryStore) entry(id string) (*sweetEntry, bool) {
	m.mu.RLock()
	e, ok := m.sweets[id]
	m.mu.RUnlock()
	return e, ok
}

func (m *MemoryStore) FindByID(ctx context.Context, id string) (model.Sweet, error) {
	e, ok := m.entry(id)
	if !ok {
		return model.Sweet{}, repo.ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return model.Sweet{}, repo.ErrNotFound
	}
	return e.sweet, nil
}

func (m *MemoryStore) List(ctx context.Context) ([]model.Sweet, error) {
	return m.Search(ctx, repo.SweetSearchQuery{})
}

func (m *MemoryStore) Search(ctx context.Context, q repo.SweetSearchQuery) ([]model.Sweet, error) {
	m.mu.RLock()
	entries := make([]*sweetEntry, 0, len(m.sweets))
	for _, e := range m.sweets {
		entries = append(entries, e)
	}
	m.mu.RUnlock()

	term := strings.ToLower(strings.TrimSpace(q.Term))

	sweets := make([]model.Sweet, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		s := e.sweet
		deleted := e.deleted
		e.mu.Unlock()

		if deleted {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(s.Name), term) &&
			!strings.Contains(strings.ToLower(s.Description), term) {
			continue
		}
		if q.Category != "" && s.Category != q.Category {
			continue
		}
		if q.MinPrice != nil && s.Price < *q.MinPrice {
			continue
		}
		if q.MaxPrice != nil && s.Price > *q.MaxPrice {
			continue
		}
		sweets = append(sweets, s)
	}

	//gorm実装と同じ並び（新しい順）
	sort.Slice(sweets, func(i, j int) bool {
		if !sweets[i].CreatedAt.Equal(sweets[j].CreatedAt) {
			return sweets[i].CreatedAt.After(sweets[j].CreatedAt)
		}
		return sweets[i].ID > sweets[j].ID
	})

	return sweets, nil
}

func (m *MemoryStore) Create(ctx context.Context, s model.Sweet) (model.Sweet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweets[s.ID] = &sweetEntry{sweet: s}
	return s, nil
}

func (m *MemoryStore) Update(ctx context.Context, s model.Sweet) (model.Sweet, error) {
	e, ok := m.entry(s.ID)
	if !ok {
		return model.Sweet{}, repo.ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return model.Sweet{}, repo.ErrNotFound
	}

	//idと作成時刻以外を置き換える
	e.sweet.Name = s.Name
	e.sweet.Category = s.Category
	e.sweet.Price = s.Price
	e.sweet.Quantity = s.Quantity
	e.sweet.Description = s.Description
	e.sweet.UpdatedAt = s.UpdatedAt
	return e.sweet, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	e, ok := m.entry(id)
	if !ok {
		return repo.ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return repo.ErrNotFound
	}
	e.deleted = true
	return nil
}

func (m *MemoryStore) IncreaseStock(ctx context.Context, sweetID string, qty int64) (model.Sweet, error) {
	e, ok := m.entry(sweetID)
	if !ok {
		return model.Sweet{}, repo.ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return model.Sweet{}, repo.ErrNotFound
	}
	e.sweet.Quantity += qty
	return e.sweet, nil
}

func (m *MemoryStore) DecreaseStockIfEnough(ctx context.Context, sweetID string, qty int64) (model.Sweet, error) {
	e, ok := m.entry(sweetID)
	if !ok {
		return model.Sweet{}, repo.ErrNotFound
	}

	//確認と減算をロック中に行う。途中で他の購入が割り込むことはない。
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return model.Sweet{}, repo.ErrNotFound
	}
	if e.sweet.Quantity < qty {
		return model.Sweet{}, repo.ErrInsufficientStock
	}
	e.sweet.Quantity -= qty
	return e.sweet, nil
}

// ---- UserRepository ----

func (m *MemoryStore) CreateUser(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := *user
	m.users[u.ID] = &u
	return nil
}

func (m *MemoryStore) FindUserByID(ctx context.Context, userID string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, repo.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (m *MemoryStore) FindUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return m.findUser(func(u *model.User) bool { return u.Username == username })
}

func (m *MemoryStore) FindUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return m.findUser(func(u *model.User) bool { return u.Email == email })
}

func (m *MemoryStore) findUser(match func(*model.User) bool) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if match(u) {
			out := *u
			return &out, nil
		}
	}
	return nil, repo.ErrUserNotFound
}

// ---- AuditLogRepository ----

func (m *MemoryStore) CreateAuditLog(ctx context.Context, log model.AuditLog) error {
	m.auditMu.Lock()
	defer m.auditMu.Unlock()
	m.audits = append(m.audits, log)
	return nil
}

func (m *MemoryStore) ListAuditLogs(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	m.auditMu.Lock()
	defer m.auditMu.Unlock()

	logs := make([]model.AuditLog, 0, len(m.audits))
	for _, l := range m.audits {
		if filter.ActorUserID != nil && l.ActorUserID != *filter.ActorUserID {
			continue
		}
		if filter.Action != nil && l.Action != *filter.Action {
			continue
		}
		if filter.ResourceID != nil && l.ResourceID != *filter.ResourceID {
			continue
		}
		if filter.CreatedFrom != nil && l.CreatedAt.Before(*filter.CreatedFrom) {
			continue
		}
		if filter.CreatedTo != nil && l.CreatedAt.After(*filter.CreatedTo) {
			continue
		}
		logs = append(logs, l)
	}
	return logs, nil
}

// UserRepository と AuditLogRepository はメソッド名が衝突するので
// 薄いビューを被せて公開する。
type memoryUserRepo struct{ s *MemoryStore }

func (r memoryUserRepo) Create(ctx context.Context, user *model.User) error {
	return r.s.CreateUser(ctx, user)
}
func (r memoryUserRepo) FindByID(ctx context.Context, userID string) (*model.User, error) {
	return r.s.FindUserByID(ctx, userID)
}
func (r memoryUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.s.FindUserByUsername(ctx, username)
}
func (r memoryUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.s.FindUserByEmail(ctx, email)
}

type memoryAuditRepo struct{ s *MemoryStore }

func (r memoryAuditRepo) Create(ctx context.Context, log model.AuditLog) error {
	return r.s.CreateAuditLog(ctx, log)
}
func (r memoryAuditRepo) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	return r.s.ListAuditLogs(ctx, filter)
}

func (m *MemoryStore) Users() repo.UserRepository {
	return memoryUserRepo{s: m}
}

func (m *MemoryStore) AuditLogs() repo.AuditLogRepository {
	return memoryAuditRepo{s: m}
}
