package mocks

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/SergeiKhy/utm-tracker/internal/models"
	"github.com/SergeiKhy/utm-tracker/internal/repository"
)

// MockLinkRepository implements repository.LinkRepository for testing
type MockLinkRepository struct {
	mu     sync.RWMutex
	links  map[int64]*models.Link
	slugs  map[string]int64
	nextID int64

	// Err is returned by every call when set (simulates an unavailable store)
	Err error
	// CreateConflicts makes the next N Create calls fail with ErrSlugExists
	CreateConflicts int
	CreateCalls     int
	SlugChecks      int
}

func NewMockLinkRepository() *MockLinkRepository {
	return &MockLinkRepository{
		links:  make(map[int64]*models.Link),
		slugs:  make(map[string]int64),
		nextID: 1,
	}
}

func (m *MockLinkRepository) Create(ctx context.Context, link *models.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCalls++
	if m.Err != nil {
		return m.Err
	}
	if m.CreateConflicts > 0 {
		m.CreateConflicts--
		return repository.ErrSlugExists
	}
	if _, exists := m.slugs[link.Slug]; exists && link.Slug != "" {
		return repository.ErrSlugExists
	}

	link.ID = m.nextID
	m.nextID++
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now()
	}

	stored := *link
	m.links[link.ID] = &stored
	if link.Slug != "" {
		m.slugs[link.Slug] = link.ID
	}
	return nil
}

func (m *MockLinkRepository) GetByID(ctx context.Context, id int64) (*models.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	link, exists := m.links[id]
	if !exists {
		return nil, repository.ErrLinkNotFound
	}
	cp := *link
	return &cp, nil
}

func (m *MockLinkRepository) GetBySlug(ctx context.Context, slug string) (*models.Link, error) {
	m.mu.RLock()
	id, exists := m.slugs[slug]
	m.mu.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if !exists {
		return nil, repository.ErrLinkNotFound
	}
	return m.GetByID(ctx, id)
}

func (m *MockLinkRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SlugChecks++
	if m.Err != nil {
		return false, m.Err
	}
	_, exists := m.slugs[slug]
	return exists, nil
}

func (m *MockLinkRepository) List(ctx context.Context, ownerID *int64) ([]*models.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}

	result := make([]*models.Link, 0)
	for _, link := range m.links {
		if ownerID == nil || link.UserID == *ownerID {
			cp := *link
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

func (m *MockLinkRepository) ListIDs(ctx context.Context, ownerID *int64) ([]int64, error) {
	links, err := m.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(links))
	for _, link := range links {
		ids = append(ids, link.ID)
	}
	slices.Sort(ids)
	return ids, nil
}

func (m *MockLinkRepository) ListWithOwner(ctx context.Context, ownerID *int64) ([]*models.LinkWithOwner, error) {
	links, err := m.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	rows := make([]*models.LinkWithOwner, 0, len(links))
	for _, link := range links {
		rows = append(rows, &models.LinkWithOwner{Link: *link})
	}
	return rows, nil
}

func (m *MockLinkRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	link, exists := m.links[id]
	if !exists {
		return repository.ErrLinkNotFound
	}
	delete(m.slugs, link.Slug)
	delete(m.links, id)
	return nil
}

func (m *MockLinkRepository) DeleteMatching(ctx context.Context, marker string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	marker = strings.ToLower(marker)
	slugs := make([]string, 0)
	for id, link := range m.links {
		fields := []string{link.DestinationURL, link.UTMSource, link.UTMCampaign, link.Hook, link.Angle}
		if !slices.ContainsFunc(fields, func(f string) bool { return strings.Contains(strings.ToLower(f), marker) }) {
			continue
		}
		slugs = append(slugs, link.Slug)
		delete(m.slugs, link.Slug)
		delete(m.links, id)
	}
	return slugs, nil
}

func (m *MockLinkRepository) IncrementClickCount(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	link, exists := m.links[id]
	if !exists {
		return repository.ErrLinkNotFound
	}
	link.ClickCount++
	return nil
}

func (m *MockLinkRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links = make(map[int64]*models.Link)
	m.slugs = make(map[string]int64)
	m.nextID = 1
	m.Err = nil
	m.CreateConflicts = 0
}

// MockCacheRepository implements repository.CacheRepository for testing
type MockCacheRepository struct {
	mu    sync.RWMutex
	cache map[string]*models.Link

	Err error
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{
		cache: make(map[string]*models.Link),
	}
}

func (m *MockCacheRepository) Get(ctx context.Context, slug string) (*models.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	link, exists := m.cache[slug]
	if !exists {
		return nil, repository.ErrCacheMiss
	}
	cp := *link
	return &cp, nil
}

func (m *MockCacheRepository) Set(ctx context.Context, slug string, link *models.Link, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	cp := *link
	m.cache[slug] = &cp
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	delete(m.cache, slug)
	return nil
}

func (m *MockCacheRepository) Has(slug string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.cache[slug]
	return ok
}

// MockClickRepository implements repository.ClickRepository for testing
type MockClickRepository struct {
	mu     sync.RWMutex
	clicks []models.Click
	nextID int64

	Err error
	// BulkCalls counts ListByLinks invocations
	BulkCalls int
}

func NewMockClickRepository() *MockClickRepository {
	return &MockClickRepository{nextID: 1}
}

func (m *MockClickRepository) Create(ctx context.Context, click *models.Click) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	click.ID = m.nextID
	m.nextID++
	if click.ClickedAt.IsZero() {
		click.ClickedAt = time.Now()
	}
	m.clicks = append(m.clicks, *click)
	return nil
}

func (m *MockClickRepository) ListByLink(ctx context.Context, linkID int64) ([]models.Click, error) {
	return m.filter(func(c models.Click) bool { return c.LinkID == linkID })
}

func (m *MockClickRepository) ListByLinks(ctx context.Context, linkIDs []int64) ([]models.Click, error) {
	m.mu.Lock()
	m.BulkCalls++
	m.mu.Unlock()

	return m.filter(func(c models.Click) bool { return slices.Contains(linkIDs, c.LinkID) })
}

func (m *MockClickRepository) filter(keep func(models.Click) bool) ([]models.Click, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}

	result := make([]models.Click, 0)
	for _, c := range m.clicks {
		if keep(c) {
			result = append(result, c)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].ClickedAt.After(result[j].ClickedAt) })
	return result, nil
}

// All returns a snapshot of every stored click
func (m *MockClickRepository) All() []models.Click {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.clicks)
}

func (m *MockClickRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clicks = nil
	m.nextID = 1
	m.Err = nil
}

// MockCatalogRepository implements repository.CatalogRepository for testing
type MockCatalogRepository struct {
	mu      sync.RWMutex
	entries map[models.CatalogKind][]*models.CatalogEntry
	nextID  int64

	Err error
}

func NewMockCatalogRepository() *MockCatalogRepository {
	return &MockCatalogRepository{
		entries: make(map[models.CatalogKind][]*models.CatalogEntry),
		nextID:  1,
	}
}

func visible(e *models.CatalogEntry, userID int64) bool {
	return e.UserID == nil || *e.UserID == userID
}

func (m *MockCatalogRepository) List(ctx context.Context, kind models.CatalogKind, userID int64) ([]*models.CatalogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	result := make([]*models.CatalogEntry, 0)
	for _, e := range m.entries[kind] {
		if visible(e, userID) {
			cp := *e
			result = append(result, &cp)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *MockCatalogRepository) GetByID(ctx context.Context, kind models.CatalogKind, id int64) (*models.CatalogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	for _, e := range m.entries[kind] {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, repository.ErrEntryNotFound
}

func (m *MockCatalogRepository) FindByName(ctx context.Context, kind models.CatalogKind, name string, userID *int64) (*models.CatalogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	var found *models.CatalogEntry
	for _, e := range m.entries[kind] {
		if e.Name != name {
			continue
		}
		if e.UserID == nil {
			cp := *e
			return &cp, nil
		}
		if userID != nil && *e.UserID == *userID && found == nil {
			found = e
		}
	}
	if found == nil {
		return nil, repository.ErrEntryNotFound
	}
	cp := *found
	return &cp, nil
}

func (m *MockCatalogRepository) Create(ctx context.Context, entry *models.CatalogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	entry.ID = m.nextID
	m.nextID++
	entry.CreatedAt = time.Now()
	cp := *entry
	m.entries[entry.Kind] = append(m.entries[entry.Kind], &cp)
	return nil
}

func (m *MockCatalogRepository) DeleteMatching(ctx context.Context, kind models.CatalogKind, marker string, includeSystem bool) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return 0, m.Err
	}
	marker = strings.ToLower(marker)
	before := len(m.entries[kind])
	m.entries[kind] = slices.DeleteFunc(m.entries[kind], func(e *models.CatalogEntry) bool {
		return (includeSystem || e.UserID != nil) && strings.Contains(strings.ToLower(e.Name), marker)
	})
	return int64(before - len(m.entries[kind])), nil
}

// MockUserRepository implements repository.UserRepository for testing
type MockUserRepository struct {
	mu     sync.RWMutex
	users  map[string]*models.User // open_id -> user
	nextID int64

	Err error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:  make(map[string]*models.User),
		nextID: 1,
	}
}

func (m *MockUserRepository) Upsert(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	if existing, ok := m.users[user.OpenID]; ok {
		user.ID = existing.ID
		user.CreatedAt = existing.CreatedAt
	} else {
		user.ID = m.nextID
		m.nextID++
		user.CreatedAt = time.Now()
	}
	cp := *user
	m.users[user.OpenID] = &cp
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	for _, u := range m.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *MockUserRepository) List(ctx context.Context) ([]*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	result := make([]*models.User, 0, len(m.users))
	for _, u := range m.users {
		cp := *u
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}
