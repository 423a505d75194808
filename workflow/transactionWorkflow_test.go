package workflow

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/mkbenefits/benefits_backend/config"
	"github.com/mkbenefits/benefits_backend/models"
	"github.com/mkbenefits/benefits_backend/utils"
	"github.com/sirupsen/logrus"
)

// fakeStore backs an Ingestor with in-memory resolution and counters, so
// the state machine is exercised without a database or broker.
type fakeStore struct {
	providers map[int]*models.Provider
	members   map[int]*models.Member
	services  map[int]*models.ProviderService

	commits    int
	publishes  int
	parked     []config.NotificationEvent
	publishErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		providers: map[int]*models.Provider{42: {ID: 1, Number: 42, Name: "Dr. Adams"}},
		members:   map[int]*models.Member{7: {ID: 2, Number: 7, FirstName: "Sam", LastName: "Vale"}},
		services:  map[int]*models.ProviderService{100: {ID: 3, Code: 100, Name: "Checkup"}},
	}
}

func (f *fakeStore) ingestor() *Ingestor {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	return &Ingestor{
		Logger: quiet,
		ResolveProvider: func(ctx context.Context, number int) (*models.Provider, error) {
			if p, ok := f.providers[number]; ok {
				return p, nil
			}
			return nil, utils.ErrorRecordNotFound
		},
		ResolveMember: func(ctx context.Context, number int) (*models.Member, error) {
			if m, ok := f.members[number]; ok {
				return m, nil
			}
			return nil, utils.ErrorRecordNotFound
		},
		ResolveService: func(ctx context.Context, code int) (*models.ProviderService, error) {
			if s, ok := f.services[code]; ok {
				return s, nil
			}
			return nil, utils.ErrorRecordNotFound
		},
		Commit: func(ctx context.Context, tx *models.Transaction) error {
			f.commits++
			tx.ID = 1000 + f.commits
			return nil
		},
		Publish: func(ctx context.Context, event config.NotificationEvent) (string, error) {
			f.publishes++
			if f.publishErr != nil {
				return "", f.publishErr
			}
			return "msg-1", nil
		},
		ParkFailed: func(ctx context.Context, event config.NotificationEvent, publishErr error) error {
			f.parked = append(f.parked, event)
			return nil
		},
	}
}

func validInput() models.NewTransaction {
	return models.NewTransaction{
		ProviderNumber: 42,
		MemberNumber:   7,
		ServiceCode:    100,
		ServiceDate:    "2026-03-15",
		ServiceComment: "annual visit",
	}
}

func TestSubmitHappyPathNotifies(t *testing.T) {
	store := newFakeStore()
	result, err := store.ingestor().Submit(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if result.State != StateNotified {
		t.Fatalf("expected Notified, got %s", result.State)
	}
	if result.Degraded {
		t.Fatal("successful publish must not degrade the result")
	}
	if store.commits != 1 || store.publishes != 1 {
		t.Fatalf("expected 1 commit and 1 publish, got %d/%d", store.commits, store.publishes)
	}
	tx := result.Transaction
	if tx == nil || tx.ProviderId != 1 || tx.MemberId != 2 || tx.ServiceId != 3 {
		t.Fatalf("committed transaction carries wrong internal ids: %+v", tx)
	}
	if tx.Status != models.TransactionStatusCommitted {
		t.Fatalf("expected Committed status, got %s", tx.Status)
	}
	if tx.CorrelationId == "" {
		t.Fatal("expected a generated correlation id")
	}
}

func TestSubmitRejectsUnknownReferences(t *testing.T) {
	cases := []struct {
		name      string
		mutate    func(*models.NewTransaction)
		reference string
	}{
		{"unknown provider", func(in *models.NewTransaction) { in.ProviderNumber = 999 }, "provider"},
		{"unknown member", func(in *models.NewTransaction) { in.MemberNumber = 999 }, "member"},
		{"unknown service", func(in *models.NewTransaction) { in.ServiceCode = 999 }, "service"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStore()
			input := validInput()
			tc.mutate(&input)

			result, err := store.ingestor().Submit(context.Background(), input)
			if err != nil {
				t.Fatalf("Submit error: %v", err)
			}
			if result.State != StateRejected {
				t.Fatalf("expected Rejected, got %s", result.State)
			}
			if result.UnresolvedReference != tc.reference {
				t.Fatalf("expected unresolved %q, got %q", tc.reference, result.UnresolvedReference)
			}
			if store.commits != 0 || store.publishes != 0 || len(store.parked) != 0 {
				t.Fatalf("rejection must not commit, publish or park: %d/%d/%d",
					store.commits, store.publishes, len(store.parked))
			}
		})
	}
}

func TestSubmitStoreFailureIsNotRejection(t *testing.T) {
	store := newFakeStore()
	ing := store.ingestor()
	ing.ResolveMember = func(ctx context.Context, number int) (*models.Member, error) {
		return nil, utils.ErrorStoreUnavailable
	}

	_, err := ing.Submit(context.Background(), validInput())
	if !errors.Is(err, utils.ErrorStoreUnavailable) {
		t.Fatalf("expected ErrorStoreUnavailable, got %v", err)
	}
	if store.commits != 0 {
		t.Fatal("a failed resolution must not commit")
	}
}

func TestSubmitPublishFailureDegradesAndParks(t *testing.T) {
	store := newFakeStore()
	store.publishErr = errors.New("broker unreachable")

	result, err := store.ingestor().Submit(context.Background(), validInput())
	if err != nil {
		t.Fatalf("publish failure must not fail the submission: %v", err)
	}
	if result.State != StateCommitted {
		t.Fatalf("expected Committed, got %s", result.State)
	}
	if !result.Degraded {
		t.Fatal("expected a degraded result")
	}
	if store.commits != 1 {
		t.Fatalf("expected exactly one commit, got %d", store.commits)
	}
	if len(store.parked) != 1 {
		t.Fatalf("expected exactly one parked record, got %d", len(store.parked))
	}
	parked := store.parked[0]
	if parked.ChannelKey != TransactionChannelKey || parked.ReferenceId != result.Transaction.ID {
		t.Fatalf("parked event references the wrong transaction: %+v", parked)
	}
}

func TestSubmitUnconfiguredChannelIsNotParked(t *testing.T) {
	store := newFakeStore()
	store.publishErr = config.ErrChannelNotConfigured

	result, err := store.ingestor().Submit(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if !result.Degraded {
		t.Fatal("expected a degraded result")
	}
	if len(store.parked) != 0 {
		t.Fatal("a misconfigured channel must not be parked for retry")
	}
}

func TestSubmitHonoursCancellationBeforeCommit(t *testing.T) {
	store := newFakeStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.ingestor().Submit(ctx, validInput())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if store.commits != 0 || store.publishes != 0 {
		t.Fatal("cancellation before commit must leave no side effects")
	}
}

func TestSubmitRejectsMalformedServiceDate(t *testing.T) {
	store := newFakeStore()
	input := validInput()
	input.ServiceDate = "15/03/2026"

	_, err := store.ingestor().Submit(context.Background(), input)
	if !errors.Is(err, utils.ErrorValidation) {
		t.Fatalf("expected ErrorValidation, got %v", err)
	}
	if store.commits != 0 || store.publishes != 0 {
		t.Fatal("a malformed date must not commit or publish")
	}
}

func TestSubmitStampsTerminalId(t *testing.T) {
	store := newFakeStore()
	ctx := utils.SetTerminalIdInContext(context.Background(), "term-9")

	result, err := store.ingestor().Submit(ctx, validInput())
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if result.Transaction.TerminalId != "term-9" {
		t.Fatalf("expected terminal id from context, got %q", result.Transaction.TerminalId)
	}
}

func TestSubmitKeepsCallerCorrelationId(t *testing.T) {
	store := newFakeStore()
	ctx := utils.SetCorrelationIdInContext(context.Background(), "corr-abc")

	result, err := store.ingestor().Submit(ctx, validInput())
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if result.Transaction.CorrelationId != "corr-abc" {
		t.Fatalf("expected caller correlation id, got %q", result.Transaction.CorrelationId)
	}
}
