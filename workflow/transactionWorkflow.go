package workflow

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/mkbenefits/benefits_backend/config"
	"github.com/mkbenefits/benefits_backend/models"
	"github.com/mkbenefits/benefits_backend/repository"
	"github.com/mkbenefits/benefits_backend/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// TransactionChannelKey names the notification channel for committed
// point-of-service transactions. Bound to a topic via
// NOTIFY_CHANNEL_TRANSACTIONS.
const TransactionChannelKey = "TRANSACTIONS"

const transactionReferenceType = "TX"

type SubmissionState string

const (
	StateReceived          SubmissionState = "Received"
	StateProviderValidated SubmissionState = "ProviderValidated"
	StateMemberValidated   SubmissionState = "MemberValidated"
	StateServiceValidated  SubmissionState = "ServiceValidated"
	StateCommitted         SubmissionState = "Committed"
	StateNotified          SubmissionState = "Notified"
	StateRejected          SubmissionState = "Rejected"
)

// SubmitResult reports the terminal state of one submission. Degraded means
// the transaction committed but the notification attempt failed and was
// parked for background retry.
type SubmitResult struct {
	State               SubmissionState     `json:"state"`
	Transaction         *models.Transaction `json:"transaction,omitempty"`
	UnresolvedReference string              `json:"unresolved_reference,omitempty"` // provider|member|service
	Degraded            bool                `json:"degraded,omitempty"`
}

// Ingestor runs the validate-then-commit-then-notify sequence for submitted
// transactions. The resolver/commit/publish hooks default to the real
// repositories and Pub/Sub; tests swap them for fakes.
type Ingestor struct {
	Logger *logrus.Logger

	ResolveProvider func(ctx context.Context, number int) (*models.Provider, error)
	ResolveMember   func(ctx context.Context, number int) (*models.Member, error)
	ResolveService  func(ctx context.Context, code int) (*models.ProviderService, error)
	Commit          func(ctx context.Context, tx *models.Transaction) error
	Publish         func(ctx context.Context, event config.NotificationEvent) (string, error)
	ParkFailed      func(ctx context.Context, event config.NotificationEvent, publishErr error) error
}

func NewIngestor(db *gorm.DB, logger *logrus.Logger) *Ingestor {
	providers := repository.New[models.Provider, *models.Provider](db)
	members := repository.New[models.Member, *models.Member](db)
	services := repository.New[models.ProviderService, *models.ProviderService](db)
	transactions := repository.New[models.Transaction, *models.Transaction](db)

	return &Ingestor{
		Logger: logger,
		ResolveProvider: func(ctx context.Context, number int) (*models.Provider, error) {
			return providers.First(ctx, "number", strconv.Itoa(number))
		},
		ResolveMember: func(ctx context.Context, number int) (*models.Member, error) {
			return members.First(ctx, "number", strconv.Itoa(number))
		},
		ResolveService: func(ctx context.Context, code int) (*models.ProviderService, error) {
			return services.First(ctx, "code", strconv.Itoa(code))
		},
		Commit: func(ctx context.Context, tx *models.Transaction) error {
			_, err := transactions.Add(ctx, tx)
			return err
		},
		Publish: config.PublishNotification,
		ParkFailed: func(ctx context.Context, event config.NotificationEvent, publishErr error) error {
			msg := publishErr.Error()
			record := models.NotificationOutboxRecord{
				ChannelKey:       event.ChannelKey,
				ReferenceId:      event.ReferenceId,
				ReferenceType:    event.ReferenceType,
				Payload:          event.Payload,
				OccurredAt:       event.OccurredAt,
				PublishStatus:    models.OutboxPublishStatusPending,
				LastPublishError: &msg,
				CorrelationId:    event.CorrelationId,
			}
			return db.WithContext(ctx).Create(&record).Error
		},
	}
}

// Submit drives one submission through the state machine:
// Received -> ProviderValidated -> MemberValidated -> ServiceValidated ->
// Committed -> Notified, with Rejected terminal from any validation step.
// Nothing is committed unless all three references resolve, and nothing is
// published unless the commit happened first.
func (ing *Ingestor) Submit(ctx context.Context, input models.NewTransaction) (*SubmitResult, error) {
	result := &SubmitResult{State: StateReceived}

	serviceDate, err := input.ParsedServiceDate()
	if err != nil {
		return nil, err
	}

	provider, err := ing.ResolveProvider(ctx, input.ProviderNumber)
	if err != nil {
		return ing.reject(result, "provider", err)
	}
	result.State = StateProviderValidated

	member, err := ing.ResolveMember(ctx, input.MemberNumber)
	if err != nil {
		return ing.reject(result, "member", err)
	}
	result.State = StateMemberValidated

	service, err := ing.ResolveService(ctx, input.ServiceCode)
	if err != nil {
		return ing.reject(result, "service", err)
	}
	result.State = StateServiceValidated

	// Commit is the irrevocable step; honor cancellation before it, never
	// after.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	correlationId, _ := utils.GetCorrelationIdFromContext(ctx)
	if correlationId == "" {
		correlationId = uuid.NewString()
	}
	terminalId, _ := utils.GetTerminalIdFromContext(ctx)

	tx := &models.Transaction{
		ProviderId:     provider.ID,
		MemberId:       member.ID,
		ServiceId:      service.ID,
		ServiceDate:    serviceDate,
		ServiceComment: input.ServiceComment,
		Status:         models.TransactionStatusCommitted,
		TerminalId:     terminalId,
		CorrelationId:  correlationId,
	}
	if err := ing.Commit(ctx, tx); err != nil {
		return nil, utils.Classify(err)
	}
	result.State = StateCommitted
	result.Transaction = tx

	ing.notify(ctx, result, tx)
	return result, nil
}

func (ing *Ingestor) reject(result *SubmitResult, reference string, err error) (*SubmitResult, error) {
	if repository.IsNotFound(err) {
		result.State = StateRejected
		result.UnresolvedReference = reference
		return result, nil
	}
	// Store unavailability and the like are failures, not rejections.
	return nil, utils.Classify(err)
}

// notify publishes the committed transaction. The commit already happened:
// a publish failure degrades the response and parks an outbox record, it
// never rolls back or re-commits.
func (ing *Ingestor) notify(ctx context.Context, result *SubmitResult, tx *models.Transaction) {
	// The notification must still be attempted when the caller goes away
	// after commit.
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	payload, err := utils.MarshalToJSON(tx)
	if err != nil {
		config.LogError(ing.Logger, "workflow", "notify", "marshal transaction", tx.ID, err)
		result.Degraded = true
		return
	}
	event := config.NotificationEvent{
		ChannelKey:    TransactionChannelKey,
		ReferenceId:   tx.ID,
		ReferenceType: transactionReferenceType,
		OccurredAt:    time.Now().UTC(),
		Payload:       []byte(payload),
		CorrelationId: tx.CorrelationId,
	}

	if _, err := ing.Publish(notifyCtx, event); err != nil {
		config.LogError(ing.Logger, "workflow", "notify", "publish", tx.ID, errors.Join(utils.ErrorNotificationFailed, err))
		result.Degraded = true

		// Misconfigured channels cannot succeed on retry; do not park them.
		if errors.Is(err, config.ErrChannelNotConfigured) {
			return
		}
		if parkErr := ing.ParkFailed(notifyCtx, event, err); parkErr != nil {
			config.LogError(ing.Logger, "workflow", "notify", "park outbox record", tx.ID, parkErr)
		}
		return
	}
	result.State = StateNotified
}
