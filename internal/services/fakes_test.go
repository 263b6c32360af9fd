package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"eventcheckin/internal/domain"
)

// memStore backs the in-memory repositories used by the service tests. Every method takes the
// store lock, so conditional transitions behave like the single-row guarded updates in Postgres.
type memStore struct {
	mu        sync.Mutex
	seq       int
	users     map[string]*domain.User
	events    map[string]*domain.Event
	roles     map[string]domain.EventRole
	attendees map[string]*domain.Attendee
	tickets   map[string]*domain.Ticket
	checkIns  []*domain.CheckInRecord
}

func newMemStore() *memStore {
	return &memStore{
		users:     map[string]*domain.User{},
		events:    map[string]*domain.Event{},
		roles:     map[string]domain.EventRole{},
		attendees: map[string]*domain.Attendee{},
		tickets:   map[string]*domain.Ticket{},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func roleKey(eventID, userID string) string { return eventID + ":" + userID }

func (m *memStore) addUser(id, name, lastName, email string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[id] = &domain.User{ID: id, Name: name, LastName: lastName, Email: email}
}

func (m *memStore) ticketByCode(code string) *domain.Ticket {
	for _, t := range m.tickets {
		if t.Code == code {
			return t
		}
	}
	return nil
}

func (m *memStore) liveCheckIns(ticketID string) int {
	n := 0
	for _, c := range m.checkIns {
		if c.TicketID == ticketID && c.VoidedAt == nil {
			n++
		}
	}
	return n
}

func (m *memStore) details(t *domain.Ticket) *domain.TicketDetails {
	d := &domain.TicketDetails{Ticket: *t}
	if a, ok := m.attendees[t.AttendeeID]; ok {
		if u, ok := m.users[a.UserID]; ok {
			d.HolderName, d.HolderLastName, d.HolderEmail = u.Name, u.LastName, u.Email
		}
	}
	return d
}

func (m *memStore) voidLive(ticketID, operatorID string, at time.Time) {
	for _, c := range m.checkIns {
		if c.TicketID == ticketID && c.VoidedAt == nil {
			voidedAt, voidedBy := at, operatorID
			c.VoidedAt, c.VoidedBy = &voidedAt, &voidedBy
		}
	}
}

// events

type memEventRepo struct{ *memStore }

func (r memEventRepo) Create(ctx context.Context, e *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = r.nextID("ev")
	cp := *e
	r.events[e.ID] = &cp
	r.roles[roleKey(e.ID, e.OwnerID)] = domain.RoleCreator
	return nil
}

func (r memEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r memEventRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return domain.ErrNotFound
	}
	kept := r.checkIns[:0]
	for _, c := range r.checkIns {
		if c.EventID != id {
			kept = append(kept, c)
		}
	}
	r.checkIns = kept
	for k, t := range r.tickets {
		if t.EventID == id {
			delete(r.tickets, k)
		}
	}
	for k, a := range r.attendees {
		if a.EventID == id {
			delete(r.attendees, k)
		}
	}
	for k := range r.roles {
		if len(k) > len(id) && k[:len(id)+1] == id+":" {
			delete(r.roles, k)
		}
	}
	delete(r.events, id)
	return nil
}

func (r memEventRepo) GetCounts(ctx context.Context, id string) (*domain.EventCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := &domain.EventCounts{EventName: e.Name, LocationType: e.LocationType}
	for _, a := range r.attendees {
		if a.EventID == id && a.IsApproved {
			c.TotalAttendees++
		}
	}
	for _, t := range r.tickets {
		if t.EventID == id && t.IsCheckedIn && t.RevokedAt == nil {
			c.CheckedInCount++
		}
	}
	return c, nil
}

// attendees

type memAttendeeRepo struct{ *memStore }

func (r memAttendeeRepo) Create(ctx context.Context, a *domain.Attendee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.attendees {
		if x.EventID == a.EventID && x.UserID == a.UserID {
			return domain.ErrAlreadyRegistered
		}
	}
	a.ID = r.nextID("att")
	cp := *a
	r.attendees[a.ID] = &cp
	return nil
}

func (r memAttendeeRepo) GetByID(ctx context.Context, id string) (*domain.Attendee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attendees[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r memAttendeeRepo) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Attendee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.attendees {
		if a.EventID == eventID && a.UserID == userID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memAttendeeRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.AttendeeListItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := []*domain.AttendeeListItem{}
	for _, a := range r.attendees {
		if a.EventID != eventID {
			continue
		}
		u := r.users[a.UserID]
		items = append(items, &domain.AttendeeListItem{ID: a.ID, Name: u.FullName(), Email: u.Email, IsApproved: a.IsApproved})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (r memAttendeeRepo) Approve(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attendees[id]
	if !ok {
		return domain.ErrNotFound
	}
	if a.IsApproved {
		return nil
	}
	approved := 0
	for _, x := range r.attendees {
		if x.EventID == a.EventID && x.IsApproved {
			approved++
		}
	}
	if !r.events[a.EventID].HasCapacityFor(approved) {
		return domain.ErrCapacityReached
	}
	a.IsApproved = true
	a.UpdatedAt = at
	return nil
}

func (r memAttendeeRepo) Unapprove(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attendees[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.IsApproved = false
	a.UpdatedAt = at
	return nil
}

func (r memAttendeeRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.attendees[id]; !ok {
		return domain.ErrNotFound
	}
	for k, t := range r.tickets {
		if t.AttendeeID == id {
			kept := r.checkIns[:0]
			for _, c := range r.checkIns {
				if c.TicketID != t.ID {
					kept = append(kept, c)
				}
			}
			r.checkIns = kept
			delete(r.tickets, k)
		}
	}
	delete(r.attendees, id)
	return nil
}

// tickets

type memTicketRepo struct{ *memStore }

func (r memTicketRepo) Issue(ctx context.Context, t *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.tickets {
		if x.AttendeeID == t.AttendeeID {
			x.RevokedAt = nil
			*t = *x
			return nil
		}
	}
	if r.ticketByCode(t.Code) != nil {
		return domain.ErrTicketCodeTaken
	}
	t.ID = r.nextID("t")
	cp := *t
	r.tickets[t.ID] = &cp
	return nil
}

func (r memTicketRepo) Revoke(ctx context.Context, attendeeID, operatorID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tickets {
		if t.AttendeeID == attendeeID && t.RevokedAt == nil {
			revokedAt := at
			t.RevokedAt = &revokedAt
			t.IsCheckedIn = false
			t.CheckedInAt = nil
			r.voidLive(t.ID, operatorID, at)
		}
	}
	return nil
}

func (r memTicketRepo) GetByAttendeeID(ctx context.Context, attendeeID string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tickets {
		if t.AttendeeID == attendeeID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memTicketRepo) GetDetailsByCode(ctx context.Context, code string) (*domain.TicketDetails, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := r.ticketByCode(code)
	if t == nil || t.RevokedAt != nil {
		return nil, domain.ErrTicketNotFound
	}
	return r.details(t), nil
}

func (r memTicketRepo) classify(t *domain.Ticket, eventID string) error {
	if t == nil || t.RevokedAt != nil {
		return domain.ErrTicketNotFound
	}
	if t.EventID != eventID {
		return domain.ErrEventMismatch
	}
	return nil
}

func (r memTicketRepo) CheckIn(ctx context.Context, eventID, code, operatorID string, at time.Time) (*domain.TicketDetails, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := r.ticketByCode(code)
	if err := r.classify(t, eventID); err != nil {
		return nil, err
	}
	if t.IsCheckedIn {
		return nil, &domain.AlreadyCheckedInError{CheckedInAt: *t.CheckedInAt}
	}
	checkedInAt := at
	t.IsCheckedIn = true
	t.CheckedInAt = &checkedInAt
	r.checkIns = append(r.checkIns, &domain.CheckInRecord{
		ID: r.nextID("ci"), TicketID: t.ID, EventID: eventID, CheckedInAt: at, CheckedInBy: operatorID,
	})
	return r.details(t), nil
}

func (r memTicketRepo) UncheckIn(ctx context.Context, eventID, code, operatorID string, at time.Time) (*domain.TicketDetails, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := r.ticketByCode(code)
	if err := r.classify(t, eventID); err != nil {
		return nil, err
	}
	if !t.IsCheckedIn {
		return nil, domain.ErrNotCheckedIn
	}
	t.IsCheckedIn = false
	t.CheckedInAt = nil
	r.voidLive(t.ID, operatorID, at)
	return r.details(t), nil
}

// check-ins

type memCheckInRepo struct{ *memStore }

func (r memCheckInRepo) ListLiveByEventID(ctx context.Context, eventID string) ([]*domain.CheckInEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := []*domain.CheckInEntry{}
	for _, c := range r.checkIns {
		if c.EventID != eventID || c.VoidedAt != nil {
			continue
		}
		d := r.details(r.tickets[c.TicketID])
		entries = append(entries, &domain.CheckInEntry{
			ID:          c.ID,
			User:        domain.TicketUser{FullName: d.HolderFullName(), Email: d.HolderEmail},
			CheckInDate: c.CheckedInAt,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].CheckInDate.After(entries[j].CheckInDate) })
	return entries, nil
}

func (r memCheckInRepo) ListByTicketID(ctx context.Context, ticketID string) ([]*domain.CheckInRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	records := []*domain.CheckInRecord{}
	for _, c := range r.checkIns {
		if c.TicketID == ticketID {
			cp := *c
			records = append(records, &cp)
		}
	}
	return records, nil
}

// roles

type memRoleRepo struct{ *memStore }

func (r memRoleRepo) Assign(ctx context.Context, eventID, userID string, role domain.EventRole) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roles[roleKey(eventID, userID)] = role
	return nil
}

func (r memRoleRepo) GetRole(ctx context.Context, eventID, userID string) (domain.EventRole, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.roles[roleKey(eventID, userID)]
	if !ok {
		return "", domain.ErrNotFound
	}
	return role, nil
}

func (r memRoleRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.EventRoleAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.EventRoleAssignment{}
	for k, role := range r.roles {
		if len(k) <= len(eventID) || k[:len(eventID)+1] != eventID+":" {
			continue
		}
		userID := k[len(eventID)+1:]
		a := &domain.EventRoleAssignment{EventID: eventID, UserID: userID, Role: role}
		if u, ok := r.users[userID]; ok {
			a.Name, a.LastName, a.Email = u.Name, u.LastName, u.Email
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r memRoleRepo) Remove(ctx context.Context, eventID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.roles[roleKey(eventID, userID)]; !ok {
		return domain.ErrNotFound
	}
	delete(r.roles, roleKey(eventID, userID))
	return nil
}

// users

type memUserRepo struct{ *memStore }

func (r memUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// rolePolicy mirrors the production policy: CREATOR and ADMIN manage an event, MODERATOR only reads.
type rolePolicy map[domain.EventRole]map[string]bool

func (p rolePolicy) Allowed(role domain.EventRole, resource domain.Resource, action domain.Action) (bool, error) {
	return p[role][string(resource)+":"+string(action)], nil
}

func testPolicy() rolePolicy {
	manage := map[string]bool{
		"event:read": true, "event:write": true,
		"attendees:read": true, "attendees:write": true,
		"check-in:read": true, "check-in:write": true,
		"roles:read": true,
	}
	creator := map[string]bool{"event:delete": true, "roles:write": true}
	for k := range manage {
		creator[k] = true
	}
	return rolePolicy{
		domain.RoleCreator: creator,
		domain.RoleAdmin:   manage,
		domain.RoleModerator: {
			"event:read": true, "attendees:read": true, "check-in:read": true,
		},
	}
}

// fixture wires every service to one memStore.
type fixture struct {
	store     *memStore
	authz     domain.Authorizer
	events    domain.EventService
	attendees domain.AttendeeService
	tickets   domain.TicketService
	checkIns  domain.CheckInService
}

func newFixture() *fixture {
	store := newMemStore()
	eventRepo := memEventRepo{store}
	roleRepo := memRoleRepo{store}
	attendeeRepo := memAttendeeRepo{store}
	ticketRepo := memTicketRepo{store}
	authz := NewEventAuthorizer(eventRepo, roleRepo, testPolicy())
	timeout := 5 * time.Second
	return &fixture{
		store:     store,
		authz:     authz,
		events:    NewEventService(eventRepo, roleRepo, memUserRepo{store}, authz, timeout),
		attendees: NewAttendeeService(eventRepo, attendeeRepo, ticketRepo, authz, timeout),
		tickets:   NewTicketService(ticketRepo, attendeeRepo, authz, timeout),
		checkIns:  NewCheckInService(ticketRepo, memCheckInRepo{store}, eventRepo, authz, timeout),
	}
}

// createEvent creates an event owned by ownerID and returns its ID.
func (f *fixture) createEvent(ownerID string, requiresApproval bool, capacity *int) string {
	now := time.Now()
	e := domain.NewEvent("Launch Party", ownerID, now, now.Add(4*time.Hour), domain.LocationVenue, capacity, domain.VisibilityPublic, requiresApproval, now, now)
	if err := f.events.CreateEvent(context.Background(), e); err != nil {
		panic(err)
	}
	return e.ID
}

// ticketCode returns the live ticket code of the user's attendee record.
func (f *fixture) ticketCode(eventID, userID string) string {
	a, err := memAttendeeRepo{f.store}.GetByEventAndUser(context.Background(), eventID, userID)
	if err != nil {
		panic(err)
	}
	t, err := memTicketRepo{f.store}.GetByAttendeeID(context.Background(), a.ID)
	if err != nil {
		panic(err)
	}
	return t.Code
}
