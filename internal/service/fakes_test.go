package service

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/crm-service/internal/access"
	"github.com/spec-kit/crm-service/internal/auth"
	"github.com/spec-kit/crm-service/internal/config"
	"github.com/spec-kit/crm-service/internal/domain"
	"github.com/spec-kit/crm-service/internal/events"
	"github.com/spec-kit/crm-service/internal/otp"
	"github.com/spec-kit/crm-service/internal/session"
)

// memoryDB backs every fake repository so cascades can be observed across them.
type memoryDB struct {
	mu         sync.Mutex
	seq        int
	identities map[string]domain.Identity
	teams      map[string]domain.Team
	lists      map[string]domain.List
	contacts   map[string]domain.Contact
	failRemove error
	failTeam   error
}

func newMemoryDB() *memoryDB {
	return &memoryDB{
		identities: map[string]domain.Identity{},
		teams:      map[string]domain.Team{},
		lists:      map[string]domain.List{},
		contacts:   map[string]domain.Contact{},
	}
}

func (db *memoryDB) nextID(prefix string) string {
	db.seq++
	return fmt.Sprintf("%s-%d", prefix, db.seq)
}

func (db *memoryDB) insertIdentity(identity *domain.Identity) error {
	for _, existing := range db.identities {
		switch {
		case existing.Username == identity.Username:
			return &pgconn.PgError{Code: "23505", ConstraintName: "identities_username_key"}
		case existing.Email == identity.Email:
			return &pgconn.PgError{Code: "23505", ConstraintName: "identities_email_key"}
		case existing.Phone == identity.Phone:
			return &pgconn.PgError{Code: "23505", ConstraintName: "identities_phone_key"}
		}
	}
	identity.ID = db.nextID("identity")
	identity.CreatedAt = time.Now()
	identity.UpdatedAt = identity.CreatedAt
	db.identities[identity.ID] = cloneIdentity(*identity)
	return nil
}

func cloneIdentity(identity domain.Identity) domain.Identity {
	identity.Roles = slices.Clone(identity.Roles)
	return identity
}

type fakeIdentities struct{ db *memoryDB }

func (f fakeIdentities) Create(_ context.Context, identity *domain.Identity) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return f.db.insertIdentity(identity)
}

func (f fakeIdentities) CreateWithTeam(_ context.Context, identity *domain.Identity, team *domain.Team) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if err := f.db.insertIdentity(identity); err != nil {
		return err
	}
	if f.db.failTeam != nil {
		delete(f.db.identities, identity.ID)
		return f.db.failTeam
	}
	team.CreatorID = identity.ID
	team.ID = f.db.nextID("team")
	team.MemberIDs = []string{identity.ID}
	f.db.teams[team.ID] = *team
	return nil
}

func (f fakeIdentities) Update(_ context.Context, identity *domain.Identity) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.identities[identity.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.db.identities[identity.ID] = cloneIdentity(*identity)
	return nil
}

func (f fakeIdentities) find(match func(domain.Identity) bool) (*domain.Identity, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, identity := range f.db.identities {
		if match(identity) {
			cp := cloneIdentity(identity)
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f fakeIdentities) GetByID(_ context.Context, id string) (*domain.Identity, error) {
	return f.find(func(i domain.Identity) bool { return i.ID == id })
}

func (f fakeIdentities) GetByUsername(_ context.Context, username string) (*domain.Identity, error) {
	return f.find(func(i domain.Identity) bool { return i.Username == username })
}

func (f fakeIdentities) GetByEmail(_ context.Context, email string) (*domain.Identity, error) {
	return f.find(func(i domain.Identity) bool { return i.Email == email })
}

func (f fakeIdentities) GetByPhone(_ context.Context, phone domain.Phone) (*domain.Identity, error) {
	return f.find(func(i domain.Identity) bool { return i.Phone == phone })
}

func (f fakeIdentities) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := f.GetByUsername(ctx, username)
	return err == nil, nil
}

func (f fakeIdentities) MarkPhoneVerified(_ context.Context, id string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	identity, ok := f.db.identities[id]
	if !ok {
		return pgx.ErrNoRows
	}
	identity.IsPhoneNumberVerified = true
	f.db.identities[id] = identity
	return nil
}

func (f fakeIdentities) ListByCreator(_ context.Context, creatorID string) ([]domain.Identity, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []domain.Identity
	for _, identity := range f.db.identities {
		if identity.CreatedBy(creatorID) {
			out = append(out, cloneIdentity(identity))
		}
	}
	return out, nil
}

type fakeTeams struct{ db *memoryDB }

func (f fakeTeams) Create(_ context.Context, team *domain.Team) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	team.ID = f.db.nextID("team")
	team.MemberIDs = []string{team.CreatorID}
	f.db.teams[team.ID] = *team
	return nil
}

func (f fakeTeams) Update(_ context.Context, team *domain.Team) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	stored, ok := f.db.teams[team.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Name = team.Name
	stored.Description = team.Description
	f.db.teams[team.ID] = stored
	return nil
}

func (f fakeTeams) Delete(_ context.Context, id string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.teams[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.db.teams, id)
	return nil
}

func (f fakeTeams) GetByID(_ context.Context, id string) (*domain.Team, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	team, ok := f.db.teams[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	team.MemberIDs = slices.Clone(team.MemberIDs)
	return &team, nil
}

func (f fakeTeams) ListAccessible(_ context.Context, identityID string) ([]domain.Team, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []domain.Team
	for _, team := range f.db.teams {
		if team.CreatorID == identityID || slices.Contains(team.MemberIDs, identityID) {
			team.MemberIDs = slices.Clone(team.MemberIDs)
			out = append(out, team)
		}
	}
	return out, nil
}

func (f fakeTeams) AddMember(_ context.Context, teamID, identityID string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	team, ok := f.db.teams[teamID]
	if !ok {
		return pgx.ErrNoRows
	}
	team.MemberIDs = append(slices.Clone(team.MemberIDs), identityID)
	f.db.teams[teamID] = team
	return nil
}

type fakeLists struct{ db *memoryDB }

func (f fakeLists) Create(_ context.Context, list *domain.List) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	list.ID = f.db.nextID("list")
	list.MemberIDs = []string{list.CreatorID}
	f.db.lists[list.ID] = *list
	return nil
}

func (f fakeLists) Update(_ context.Context, list *domain.List) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	stored, ok := f.db.lists[list.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Name = list.Name
	f.db.lists[list.ID] = stored
	return nil
}

func (f fakeLists) Delete(_ context.Context, id string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.lists[id]; !ok {
		return pgx.ErrNoRows
	}
	f.db.deleteList(id)
	return nil
}

func (db *memoryDB) deleteList(id string) {
	delete(db.lists, id)
	for contactID, contact := range db.contacts {
		if contact.ListID == id {
			delete(db.contacts, contactID)
		}
	}
}

func (f fakeLists) GetByID(_ context.Context, id string) (*domain.List, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	list, ok := f.db.lists[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	list.MemberIDs = slices.Clone(list.MemberIDs)
	return &list, nil
}

func (f fakeLists) ListAccessible(_ context.Context, identityID string) ([]domain.List, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []domain.List
	for _, list := range f.db.lists {
		if list.CreatorID == identityID || slices.Contains(list.MemberIDs, identityID) {
			list.MemberIDs = slices.Clone(list.MemberIDs)
			out = append(out, list)
		}
	}
	return out, nil
}

func (f fakeLists) AddMember(_ context.Context, listID, identityID string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	list, ok := f.db.lists[listID]
	if !ok {
		return pgx.ErrNoRows
	}
	list.MemberIDs = append(slices.Clone(list.MemberIDs), identityID)
	f.db.lists[listID] = list
	return nil
}

type fakeContacts struct{ db *memoryDB }

func (f fakeContacts) Create(_ context.Context, contact *domain.Contact) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	contact.ID = f.db.nextID("contact")
	f.db.contacts[contact.ID] = *contact
	return nil
}

func (f fakeContacts) Update(_ context.Context, contact *domain.Contact) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.contacts[contact.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.db.contacts[contact.ID] = *contact
	return nil
}

func (f fakeContacts) Delete(_ context.Context, id string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.contacts[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.db.contacts, id)
	return nil
}

func (f fakeContacts) GetByID(_ context.Context, id string) (*domain.Contact, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	contact, ok := f.db.contacts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &contact, nil
}

func (f fakeContacts) ListByList(_ context.Context, listID string) ([]domain.Contact, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []domain.Contact
	for _, contact := range f.db.contacts {
		if contact.ListID == listID {
			out = append(out, contact)
		}
	}
	return out, nil
}

type fakeMembers struct{ db *memoryDB }

func (f fakeMembers) CreateInTeam(_ context.Context, member *domain.Identity, teamID string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	team, ok := f.db.teams[teamID]
	if !ok {
		return pgx.ErrNoRows
	}
	if err := f.db.insertIdentity(member); err != nil {
		return err
	}
	team.MemberIDs = append(slices.Clone(team.MemberIDs), member.ID)
	f.db.teams[teamID] = team
	return nil
}

func (f fakeMembers) ExecuteRemoval(_ context.Context, plan access.RemovalPlan) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.failRemove != nil {
		return f.db.failRemove
	}
	if _, ok := f.db.identities[plan.IdentityID]; !ok {
		return pgx.ErrNoRows
	}
	for _, id := range plan.DeleteTeamIDs {
		delete(f.db.teams, id)
	}
	for _, id := range plan.DeleteListIDs {
		f.db.deleteList(id)
	}
	for id, team := range f.db.teams {
		team.MemberIDs = slices.DeleteFunc(slices.Clone(team.MemberIDs), func(m string) bool { return m == plan.IdentityID })
		f.db.teams[id] = team
	}
	for id, list := range f.db.lists {
		list.MemberIDs = slices.DeleteFunc(slices.Clone(list.MemberIDs), func(m string) bool { return m == plan.IdentityID })
		f.db.lists[id] = list
	}
	delete(f.db.identities, plan.IdentityID)
	return nil
}

// failingStore wraps a session store and fails deletes on demand.
type failingStore struct {
	session.Store
	deleteErr error
}

func (s *failingStore) Delete(ctx context.Context, key string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	return s.Store.Delete(ctx, key)
}

type recordingSender struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (s *recordingSender) Send(_ context.Context, _ domain.Phone, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, message)
	return s.err
}

var otpPattern = regexp.MustCompile(`OTP (\d{6})\.`)

func (s *recordingSender) lastCode(t *testing.T) string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.messages)
	match := otpPattern.FindStringSubmatch(s.messages[len(s.messages)-1])
	require.Len(t, match, 2)
	return match[1]
}

// recordedEvents subscribes to every event type and keeps what was published.
type recordedEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func recordEvents(dispatcher events.Dispatcher) *recordedEvents {
	rec := &recordedEvents{}
	for _, eventType := range []events.EventType{
		events.EventIdentitySignedUp,
		events.EventIdentitySignedIn,
		events.EventSessionRefreshed,
		events.EventIdentitySignedOut,
		events.EventOTPRequested,
		events.EventMemberCreated,
		events.EventMemberDeleted,
	} {
		dispatcher.Subscribe(eventType, func(_ context.Context, event events.Event) error {
			rec.mu.Lock()
			defer rec.mu.Unlock()
			rec.events = append(rec.events, event)
			return nil
		})
	}
	return rec
}

func (r *recordedEvents) ofType(eventType events.EventType) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, event := range r.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

// harness wires every service against the in-memory fakes.
type harness struct {
	db       *memoryDB
	sessions *failingStore
	sender   *recordingSender
	events   *recordedEvents
	tokens   *auth.TokenIssuer
	auth     *AuthService
	members  *MemberService
	teams    *TeamService
	lists    *ListService
	contacts *ContactService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := newMemoryDB()
	store := &failingStore{Store: session.NewMemoryStore()}
	sender := &recordingSender{}
	dispatcher := events.NewInMemoryDispatcher()
	logger := zap.NewNop()

	cfg := config.AuthConfig{
		AccessSecret:  "access-secret",
		AccessTTL:     15 * time.Minute,
		RefreshSecret: "refresh-secret",
		RefreshTTL:    time.Hour,
		BcryptCost:    4,
		OTPTTL:        otp.DefaultTTL,
	}
	tokens := auth.NewTokenIssuer(
		auth.KeySet{Secret: []byte(cfg.AccessSecret), TTL: cfg.AccessTTL},
		auth.KeySet{Secret: []byte(cfg.RefreshSecret), TTL: cfg.RefreshTTL},
	)
	identities := fakeIdentities{db: db}
	flow := otp.NewFlow(identities, store, sender, cfg.OTPTTL, logger, nil)

	return &harness{
		db:       db,
		sessions: store,
		sender:   sender,
		events:   recordEvents(dispatcher),
		tokens:   tokens,
		auth: NewAuthService(cfg, AuthDependencies{
			Identities: identities,
			Sessions:   store,
			OTP:        flow,
			Tokens:     tokens,
			Dispatcher: dispatcher,
			Logger:     logger,
		}),
		members: NewMemberService(cfg.BcryptCost, MemberDependencies{
			Identities: identities,
			Teams:      fakeTeams{db: db},
			Lists:      fakeLists{db: db},
			Members:    fakeMembers{db: db},
			Sessions:   store,
			Dispatcher: dispatcher,
			Logger:     logger,
		}),
		teams:    NewTeamService(fakeTeams{db: db}),
		lists:    NewListService(fakeLists{db: db}),
		contacts: NewContactService(fakeLists{db: db}, fakeContacts{db: db}),
	}
}

var managerInput = SignupInput{
	Name:     "Asha Manager",
	Username: "asha",
	Email:    "asha@example.com",
	Phone:    domain.Phone{CountryCode: "+91", Number: "9876543210"},
	Password: "password123",
	Company:  "Acme Sales",
}

// signupManager registers a manager and returns it with its default team.
func (h *harness) signupManager(t *testing.T, in SignupInput) (*domain.Identity, *domain.Team) {
	t.Helper()
	manager, err := h.auth.Signup(context.Background(), in)
	require.NoError(t, err)
	teams, err := h.teams.ListTeams(context.Background(), manager)
	require.NoError(t, err)
	require.Len(t, teams, 1)
	return manager, &teams[0]
}
