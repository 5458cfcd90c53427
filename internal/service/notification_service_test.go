package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/gamewatch/notifier/internal/creator"
	"github.com/gamewatch/notifier/internal/domain"
	"github.com/gamewatch/notifier/internal/mail"
	"github.com/gamewatch/notifier/internal/ratelimiter"
	"github.com/gamewatch/notifier/internal/report"
	"github.com/gamewatch/notifier/internal/repository"
	"github.com/gamewatch/notifier/internal/service"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

var testTemplates = mail.Templates{
	domain.NotificationGameReduced:         "d-reduced",
	domain.NotificationGameReleased:        "d-released",
	domain.NotificationNewMetacriticRating: "d-rating",
	domain.NotificationNewStoreEntry:       "d-entry",
	domain.NotificationReleaseDateChanged:  "d-date",
}

type sentMail struct {
	to string
	m  *mail.Mail
}

// fakeSender records sends; set Err to force transport failures.
type fakeSender struct {
	mu   sync.Mutex
	sent []sentMail
	Err  error
}

func (f *fakeSender) Send(_ context.Context, to string, m *mail.Mail) error {
	if f.Err != nil {
		return f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{to: to, m: m})
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fixture struct {
	svc    *service.NotificationService
	repo   *repository.MockNotificationRepository
	sender *fakeSender
}

func newFixture(t *testing.T, creators []creator.Creator, user *domain.User) *fixture {
	t.Helper()

	sources := repository.NewMockSourceRepository()
	sources.Add(
		&domain.InfoSource{ID: "src-1", GameID: "game-1", Type: domain.SourceSteam, RemoteGameID: "620"},
		&domain.Game{ID: "game-1", UserID: "user-1", Name: "Portal 2"},
		user,
	)

	repo := repository.NewMockNotificationRepository()
	sender := &fakeSender{}

	svc := service.NewNotificationService(
		creators,
		sources,
		repo,
		sender,
		ratelimiter.New(100),
		report.Noop{},
		testTemplates,
		service.Timeouts{Lookup: time.Second, Mail: time.Second},
		zap.NewNop(),
	)
	svc.SetClock(func() time.Time { return testNow })

	return &fixture{svc: svc, repo: repo, sender: sender}
}

func mailingUser() *domain.User {
	return &domain.User{
		ID:                       "user-1",
		Email:                    "player@example.com",
		EnableEmailNotifications: true,
		InterestedInSources:      []domain.SourceType{domain.SourceSteam},
		Country:                  "DE",
		State:                    domain.UserStateRegistered,
	}
}

func steamRaw(t *testing.T, d *domain.SteamGameData) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	return raw
}

func steamSnapshot(price *domain.SteamPriceInformation, release domain.SteamReleaseDate, score *int) *domain.SteamGameData {
	return &domain.SteamGameData{
		StoreGameData: domain.StoreGameData{
			ID:           "620",
			FullName:     "Portal 2",
			StoreURL:     "https://store.steampowered.com/app/620",
			ThumbnailURL: "https://cdn.example.com/620.jpg",
		},
		ReleaseDate:      release,
		PriceInformation: price,
		MetacriticScore:  score,
	}
}

func job(existing, resolved json.RawMessage) *domain.Job {
	return &domain.Job{
		ID:           "job-1",
		SourceID:     "src-1",
		ExistingData: existing,
		ResolvedData: resolved,
		Status:       domain.JobStatusProcessing,
		MaxAttempts:  4,
	}
}

var releasedLongAgo = domain.SteamReleaseDate{Date: time.Date(2011, 4, 19, 0, 0, 0, 0, time.UTC)}

func TestCreateNotifications_NoChanges(t *testing.T) {
	f := newFixture(t, creator.Default(), mailingUser())

	snap := steamRaw(t, steamSnapshot(
		&domain.SteamPriceInformation{Initial: 1999, Final: 1999},
		releasedLongAgo, nil,
	))

	created, err := f.svc.CreateNotifications(context.Background(), job(snap, snap))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created) != 0 {
		t.Fatalf("expected no notifications, got %d", len(created))
	}
	if f.sender.count() != 0 {
		t.Fatal("no mail expected")
	}
}

func TestCreateNotifications_PriceReduced(t *testing.T) {
	f := newFixture(t, creator.Default(), mailingUser())

	prev := steamRaw(t, steamSnapshot(&domain.SteamPriceInformation{Initial: 6000, Final: 6000}, releasedLongAgo, nil))
	cur := steamRaw(t, steamSnapshot(&domain.SteamPriceInformation{Initial: 6000, Final: 4800}, releasedLongAgo, nil))

	created, err := f.svc.CreateNotifications(context.Background(), job(prev, cur))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(created))
	}
	n := created[0]
	if n.Type != domain.NotificationGameReduced {
		t.Fatalf("expected game-reduced, got %s", n.Type)
	}
	if n.GameID != "game-1" || n.SourceID != "src-1" {
		t.Fatalf("unexpected linkage %+v", n)
	}
	if !n.CreatedAt.Equal(testNow) {
		t.Fatalf("timestamp must come from the service clock, got %v", n.CreatedAt)
	}

	var p domain.GameReducedPayload
	if err := json.Unmarshal(n.Payload, &p); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if p.OldPriceCents != 6000 || p.NewPriceCents != 4800 || p.DiscountPercentage != 20 {
		t.Fatalf("unexpected payload %+v", p)
	}

	if f.sender.count() != 1 {
		t.Fatalf("expected one mail, got %d", f.sender.count())
	}
	if f.sender.sent[0].to != "player@example.com" {
		t.Fatalf("unexpected recipient %q", f.sender.sent[0].to)
	}
	if f.sender.sent[0].m.TemplateID != "d-reduced" {
		t.Fatalf("unexpected template %q", f.sender.sent[0].m.TemplateID)
	}
	if f.sender.sent[0].m.Data["gameName"] != "Portal 2" {
		t.Fatalf("mail data missing game name: %+v", f.sender.sent[0].m.Data)
	}
}

func TestCreateNotifications_Idempotent(t *testing.T) {
	f := newFixture(t, creator.Default(), mailingUser())

	prev := steamRaw(t, steamSnapshot(&domain.SteamPriceInformation{Initial: 6000, Final: 6000}, releasedLongAgo, nil))
	cur := steamRaw(t, steamSnapshot(&domain.SteamPriceInformation{Initial: 6000, Final: 4800}, releasedLongAgo, nil))

	first, err := f.svc.CreateNotifications(context.Background(), job(prev, cur))
	if err != nil || len(first) != 1 {
		t.Fatalf("first call: created=%d err=%v", len(first), err)
	}

	// Redelivered job: identical arguments.
	second, err := f.svc.CreateNotifications(context.Background(), job(prev, cur))
	if err != nil {
		t.Fatalf("second call: unexpected error: %v", err)
	}
	if len(second) != 0 {
		t.Fatalf("second call must create nothing, got %d", len(second))
	}
	if got := len(f.repo.All()); got != 1 {
		t.Fatalf("expected one stored notification, got %d", got)
	}
	if f.sender.count() != 1 {
		t.Fatalf("expected one mail total, got %d", f.sender.count())
	}
}

func TestCreateNotifications_ReleasePrecedence(t *testing.T) {
	f := newFixture(t, creator.Default(), mailingUser())

	prev := steamRaw(t, steamSnapshot(nil, domain.SteamReleaseDate{
		Date: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), ComingSoon: true,
	}, nil))
	cur := steamRaw(t, steamSnapshot(nil, domain.SteamReleaseDate{
		Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}, nil))

	created, err := f.svc.CreateNotifications(context.Background(), job(prev, cur))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(created))
	}
	if created[0].Type != domain.NotificationGameReleased {
		t.Fatalf("expected game-released, got %s", created[0].Type)
	}
	for _, n := range f.repo.All() {
		if n.Type == domain.NotificationReleaseDateChanged {
			t.Fatal("release-date-changed must be suppressed by the release event")
		}
	}
}

func TestCreateNotifications_NewStoreEntry(t *testing.T) {
	f := newFixture(t, creator.Default(), mailingUser())

	cur := steamRaw(t, steamSnapshot(nil, releasedLongAgo, nil))

	created, err := f.svc.CreateNotifications(context.Background(), job(nil, cur))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(created))
	}
	if created[0].Type != domain.NotificationNewStoreEntry {
		t.Fatalf("expected new-store-entry, got %s", created[0].Type)
	}
}

// faultyCreator always fails; used to prove creator isolation.
type faultyCreator struct{}

func (faultyCreator) Type() domain.NotificationType { return domain.NotificationGameReleased }
func (faultyCreator) Detect(creator.Pair) (any, error) {
	return nil, errors.New("detector exploded")
}

func TestCreateNotifications_CreatorIsolation(t *testing.T) {
	creators := append([]creator.Creator{faultyCreator{}}, creator.Default()...)
	f := newFixture(t, creators, mailingUser())

	prev := steamRaw(t, steamSnapshot(&domain.SteamPriceInformation{Initial: 6000, Final: 6000}, releasedLongAgo, nil))
	cur := steamRaw(t, steamSnapshot(&domain.SteamPriceInformation{Initial: 6000, Final: 4800}, releasedLongAgo, nil))

	created, err := f.svc.CreateNotifications(context.Background(), job(prev, cur))
	if err != nil {
		t.Fatalf("a failing creator must not fail the job: %v", err)
	}
	if len(created) != 1 || created[0].Type != domain.NotificationGameReduced {
		t.Fatalf("remaining creators must still run, got %+v", created)
	}
}

func TestCreateNotifications_MailFailureKeepsNotification(t *testing.T) {
	f := newFixture(t, creator.Default(), mailingUser())
	f.sender.Err = errors.New("smtp is on fire")

	prev := steamRaw(t, steamSnapshot(&domain.SteamPriceInformation{Initial: 6000, Final: 6000}, releasedLongAgo, nil))
	cur := steamRaw(t, steamSnapshot(&domain.SteamPriceInformation{Initial: 6000, Final: 4800}, releasedLongAgo, nil))

	created, err := f.svc.CreateNotifications(context.Background(), job(prev, cur))
	if err != nil {
		t.Fatalf("mail failure must not fail the job: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("expected one notification despite mail failure, got %d", len(created))
	}

	stored, err := f.repo.ListBySource(context.Background(), "src-1")
	if err != nil || len(stored) != 1 {
		t.Fatalf("notification must survive delivery failure: %d, %v", len(stored), err)
	}
}

func TestCreateNotifications_EmailDisabled(t *testing.T) {
	user := mailingUser()
	user.EnableEmailNotifications = false
	f := newFixture(t, creator.Default(), user)

	cur := steamRaw(t, steamSnapshot(nil, releasedLongAgo, nil))

	created, err := f.svc.CreateNotifications(context.Background(), job(nil, cur))
	if err != nil || len(created) != 1 {
		t.Fatalf("created=%d err=%v", len(created), err)
	}
	if f.sender.count() != 0 {
		t.Fatal("no mail may be sent when the user disabled email notifications")
	}
}

func TestCreateNotifications_UnknownSource(t *testing.T) {
	f := newFixture(t, creator.Default(), mailingUser())

	j := job(nil, steamRaw(t, steamSnapshot(nil, releasedLongAgo, nil)))
	j.SourceID = "missing"

	_, err := f.svc.CreateNotifications(context.Background(), j)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateNotifications_MalformedSnapshot(t *testing.T) {
	f := newFixture(t, creator.Default(), mailingUser())

	j := job(nil, json.RawMessage(`[42]`))
	_, err := f.svc.CreateNotifications(context.Background(), j)
	if !domain.IsSchemaError(err) {
		t.Fatalf("expected a schema error, got %v", err)
	}
}
