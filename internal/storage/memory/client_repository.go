package memory

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/sales/internal/domain"
)

// ClientRepository — in-memory реализация domain.ClientRepository
// для локальной разработки и тестов.
type ClientRepository struct {
	mu    sync.RWMutex
	seq   int64
	items map[int64]domain.Client
}

// NewClientRepository возвращает пустой in-memory репозиторий клиентов.
func NewClientRepository() *ClientRepository {
	return &ClientRepository{items: make(map[int64]domain.Client)}
}

// Create сохраняет клиента, выдавая следующий id и дату регистрации.
func (r *ClientRepository) Create(client domain.Client) (domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if strings.EqualFold(existing.Email, client.Email) {
			return domain.Client{}, domain.ErrEmailTaken
		}
	}

	r.seq++
	client.ID = r.seq
	client.RegisteredAt = time.Now().UTC()
	r.items[client.ID] = client
	return client, nil
}

// Get возвращает клиента или ErrClientNotFound.
func (r *ClientRepository) Get(id int64) (domain.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, ok := r.items[id]
	if !ok {
		return domain.Client{}, domain.ErrClientNotFound
	}
	return client, nil
}

// FindByTerm ищет по точному id-как-тексту либо по подстроке имени.
func (r *ClientRepository) FindByTerm(term string) ([]domain.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, parseErr := strconv.ParseInt(term, 10, 64)
	needle := strings.ToLower(term)

	result := make([]domain.Client, 0)
	for _, client := range r.items {
		if parseErr == nil && client.ID == id {
			result = append(result, client)
			continue
		}
		if strings.Contains(strings.ToLower(client.Name), needle) {
			result = append(result, client)
		}
	}
	sortClientsByID(result)
	return result, nil
}

// List возвращает всех клиентов в порядке возрастания id.
func (r *ClientRepository) List() ([]domain.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Client, 0, len(r.items))
	for _, client := range r.items {
		result = append(result, client)
	}
	sortClientsByID(result)
	return result, nil
}

func sortClientsByID(clients []domain.Client) {
	sort.Slice(clients, func(i, j int) bool { return clients[i].ID < clients[j].ID })
}

var _ domain.ClientRepository = (*ClientRepository)(nil)
