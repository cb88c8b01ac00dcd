package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ============================================
// In-Memory Repository Implementations (Fallback)
// ============================================
//
// All in-memory repositories share one store so that foreign keys, unique
// constraints and cascading deletes behave like the PostgreSQL schema.

type table[T any] struct {
	rows  map[string]*T
	order []string
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]*T)}
}

func (t *table[T]) put(id string, v *T) {
	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}
	t.rows[id] = v
}

func (t *table[T]) get(id string) (*T, bool) {
	v, ok := t.rows[id]
	return v, ok
}

func (t *table[T]) remove(id string) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	for i, o := range t.order {
		if o == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

func (t *table[T]) list() []*T {
	out := make([]*T, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.rows[id])
	}
	return out
}

type memoryStore struct {
	mu          sync.RWMutex
	users       *table[User]
	tokens      map[string]*RefreshToken
	clients     *table[Client]
	chantiers   *table[Chantier]
	members     *table[TeamMember]
	assignments *table[Assignment]
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:       newTable[User](),
		tokens:      make(map[string]*RefreshToken),
		clients:     newTable[Client](),
		chantiers:   newTable[Chantier](),
		members:     newTable[TeamMember](),
		assignments: newTable[Assignment](),
	}
}

// deleteChantierLocked removes a chantier and its assignments.
func (s *memoryStore) deleteChantierLocked(id string) bool {
	if !s.chantiers.remove(id) {
		return false
	}
	for _, a := range s.assignments.list() {
		if a.ChantierID == id {
			s.assignments.remove(a.ID)
		}
	}
	return true
}

func (s *memoryStore) chantierCopyLocked(c *Chantier) *Chantier {
	cp := *c
	cp.Images = append([]string{}, c.Images...)
	if cl, ok := s.clients.get(c.ClientID); ok {
		cp.ClientName = cl.Name
	}
	return &cp
}

func (s *memoryStore) assignmentCopyLocked(a *Assignment) *Assignment {
	cp := *a
	if m, ok := s.members.get(a.TeamMemberID); ok {
		mc := *m
		cp.Member = &mc
	}
	return &cp
}

// In-memory User Repository
type inMemoryUserRepository struct {
	s *memoryStore
}

func (r *inMemoryUserRepository) Create(ctx context.Context, user *User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users.list() {
		if strings.EqualFold(u.Username, user.Username) {
			return ErrDuplicate
		}
	}
	user.ID = uuid.New().String()
	user.CreatedAt = time.Now()
	cp := *user
	r.s.users.put(user.ID, &cp)
	return nil
}

func (r *inMemoryUserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if u, ok := r.s.users.get(id); ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *inMemoryUserRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users.list() {
		if strings.EqualFold(u.Username, username) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryUserRepository) Count(ctx context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.users.list()), nil
}

func (r *inMemoryUserRepository) SaveRefreshToken(ctx context.Context, token *RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users.get(token.UserID); !ok {
		return ErrForeignKey
	}
	token.ID = uuid.New().String()
	token.CreatedAt = time.Now()
	cp := *token
	r.s.tokens[token.Token] = &cp
	return nil
}

func (r *inMemoryUserRepository) FindRefreshToken(ctx context.Context, token string) (*RefreshToken, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if rt, ok := r.s.tokens[token]; ok {
		cp := *rt
		return &cp, nil
	}
	return nil, nil
}

func (r *inMemoryUserRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tokens[token]; !ok {
		return ErrNotFound
	}
	delete(r.s.tokens, token)
	return nil
}

func (r *inMemoryUserRepository) DeleteExpiredRefreshTokens(ctx context.Context, before time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for token, rt := range r.s.tokens {
		if rt.ExpiresAt.Before(before) {
			delete(r.s.tokens, token)
			n++
		}
	}
	return n, nil
}

// In-memory Client Repository
type inMemoryClientRepository struct {
	s *memoryStore
}

func (r *inMemoryClientRepository) Create(ctx context.Context, client *Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	client.ID = uuid.New().String()
	client.CreatedAt = time.Now()
	client.UpdatedAt = client.CreatedAt
	cp := *client
	r.s.clients.put(client.ID, &cp)
	return nil
}

func (r *inMemoryClientRepository) FindByID(ctx context.Context, id string) (*Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if c, ok := r.s.clients.get(id); ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *inMemoryClientRepository) FindAll(ctx context.Context) ([]*Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*Client{}
	for _, c := range r.s.clients.list() {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (r *inMemoryClientRepository) Update(ctx context.Context, client *Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.clients.get(client.ID)
	if !ok {
		return ErrNotFound
	}
	client.CreatedAt = existing.CreatedAt
	client.UpdatedAt = time.Now()
	cp := *client
	r.s.clients.put(client.ID, &cp)
	return nil
}

func (r *inMemoryClientRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !r.s.clients.remove(id) {
		return ErrNotFound
	}
	for _, c := range r.s.chantiers.list() {
		if c.ClientID == id {
			r.s.deleteChantierLocked(c.ID)
		}
	}
	return nil
}

// In-memory Chantier Repository
type inMemoryChantierRepository struct {
	s *memoryStore
}

func (r *inMemoryChantierRepository) Create(ctx context.Context, chantier *Chantier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.clients.get(chantier.ClientID); !ok {
		return ErrForeignKey
	}
	chantier.ID = uuid.New().String()
	chantier.CreatedAt = time.Now()
	chantier.UpdatedAt = chantier.CreatedAt
	if chantier.Images == nil {
		chantier.Images = []string{}
	}
	stored := *chantier
	stored.Images = append([]string{}, chantier.Images...)
	r.s.chantiers.put(chantier.ID, &stored)
	return nil
}

func (r *inMemoryChantierRepository) FindByID(ctx context.Context, id string) (*Chantier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if c, ok := r.s.chantiers.get(id); ok {
		return r.s.chantierCopyLocked(c), nil
	}
	return nil, nil
}

func (r *inMemoryChantierRepository) FindAll(ctx context.Context) ([]*Chantier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*Chantier{}
	for _, c := range r.s.chantiers.list() {
		out = append(out, r.s.chantierCopyLocked(c))
	}
	return out, nil
}

func (r *inMemoryChantierRepository) Update(ctx context.Context, chantier *Chantier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.chantiers.get(chantier.ID)
	if !ok {
		return ErrNotFound
	}
	if _, ok := r.s.clients.get(chantier.ClientID); !ok {
		return ErrForeignKey
	}
	chantier.CreatedAt = existing.CreatedAt
	chantier.UpdatedAt = time.Now()
	stored := *chantier
	stored.Images = append([]string{}, chantier.Images...)
	r.s.chantiers.put(chantier.ID, &stored)
	return nil
}

func (r *inMemoryChantierRepository) UpdateStatus(ctx context.Context, id, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.chantiers.get(id)
	if !ok {
		return ErrNotFound
	}
	c.Status = status
	c.UpdatedAt = time.Now()
	return nil
}

func (r *inMemoryChantierRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !r.s.deleteChantierLocked(id) {
		return ErrNotFound
	}
	return nil
}

// In-memory Team Member Repository
type inMemoryTeamMemberRepository struct {
	s *memoryStore
}

func (r *inMemoryTeamMemberRepository) loginCodeTakenLocked(code, exceptID string) bool {
	for _, m := range r.s.members.list() {
		if m.LoginCode == code && m.ID != exceptID {
			return true
		}
	}
	return false
}

func (r *inMemoryTeamMemberRepository) Create(ctx context.Context, member *TeamMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.loginCodeTakenLocked(member.LoginCode, "") {
		return ErrDuplicate
	}
	member.ID = uuid.New().String()
	member.CreatedAt = time.Now()
	member.UpdatedAt = member.CreatedAt
	cp := *member
	r.s.members.put(member.ID, &cp)
	return nil
}

func (r *inMemoryTeamMemberRepository) FindByID(ctx context.Context, id string) (*TeamMember, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if m, ok := r.s.members.get(id); ok {
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

func (r *inMemoryTeamMemberRepository) FindByLoginCode(ctx context.Context, code string) (*TeamMember, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, m := range r.s.members.list() {
		if m.LoginCode == code {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryTeamMemberRepository) FindAll(ctx context.Context) ([]*TeamMember, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*TeamMember{}
	for _, m := range r.s.members.list() {
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

func (r *inMemoryTeamMemberRepository) Update(ctx context.Context, member *TeamMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.members.get(member.ID)
	if !ok {
		return ErrNotFound
	}
	if r.loginCodeTakenLocked(member.LoginCode, member.ID) {
		return ErrDuplicate
	}
	member.CreatedAt = existing.CreatedAt
	member.UpdatedAt = time.Now()
	cp := *member
	r.s.members.put(member.ID, &cp)
	return nil
}

func (r *inMemoryTeamMemberRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !r.s.members.remove(id) {
		return ErrNotFound
	}
	for _, a := range r.s.assignments.list() {
		if a.TeamMemberID == id {
			r.s.assignments.remove(a.ID)
		}
	}
	return nil
}

// In-memory Assignment Repository
type inMemoryAssignmentRepository struct {
	s *memoryStore
}

func (r *inMemoryAssignmentRepository) Create(ctx context.Context, assignment *Assignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.chantiers.get(assignment.ChantierID); !ok {
		return ErrForeignKey
	}
	if _, ok := r.s.members.get(assignment.TeamMemberID); !ok {
		return ErrForeignKey
	}
	for _, a := range r.s.assignments.list() {
		if a.ChantierID == assignment.ChantierID && a.TeamMemberID == assignment.TeamMemberID {
			return ErrDuplicate
		}
	}
	assignment.ID = uuid.New().String()
	assignment.CreatedAt = time.Now()
	cp := *assignment
	cp.Member = nil
	r.s.assignments.put(assignment.ID, &cp)
	return nil
}

func (r *inMemoryAssignmentRepository) FindByID(ctx context.Context, id string) (*Assignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if a, ok := r.s.assignments.get(id); ok {
		return r.s.assignmentCopyLocked(a), nil
	}
	return nil, nil
}

func (r *inMemoryAssignmentRepository) FindByChantierID(ctx context.Context, chantierID string) ([]*Assignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*Assignment{}
	for _, a := range r.s.assignments.list() {
		if a.ChantierID == chantierID {
			out = append(out, r.s.assignmentCopyLocked(a))
		}
	}
	return out, nil
}

func (r *inMemoryAssignmentRepository) FindAll(ctx context.Context, teamMemberID string) ([]*Assignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*Assignment{}
	for _, a := range r.s.assignments.list() {
		if teamMemberID == "" || a.TeamMemberID == teamMemberID {
			out = append(out, r.s.assignmentCopyLocked(a))
		}
	}
	return out, nil
}

func (r *inMemoryAssignmentRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !r.s.assignments.remove(id) {
		return ErrNotFound
	}
	return nil
}
