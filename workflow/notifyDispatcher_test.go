package workflow

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mkbenefits/benefits_backend/config"
	"github.com/mkbenefits/benefits_backend/models"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDispatcherDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm open error: %v", err)
	}
	return db, mock
}

func newTestDispatcher(db *gorm.DB) *NotifyDispatcher {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	d := NewNotifyDispatcher(db, quiet)
	d.DispatcherID = "test-dispatcher"
	return d
}

func pendingOutboxRow(id, attempts int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "channel_key", "reference_id", "reference_type",
		"publish_status", "publish_attempts", "correlation_id",
	}).AddRow(id, TransactionChannelKey, 1001, "TX",
		models.OutboxPublishStatusPending, attempts, "corr-1")
}

func emptyOutboxRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "channel_key", "reference_id", "reference_type",
		"publish_status", "publish_attempts", "correlation_id",
	})
}

func TestDispatchOncePublishesClaimedRecord(t *testing.T) {
	db, mock := newDispatcherDB(t)
	d := newTestDispatcher(db)

	var published []config.NotificationEvent
	d.Publish = func(ctx context.Context, event config.NotificationEvent) (string, error) {
		published = append(published, event)
		return "msg-42", nil
	}

	// Claim transaction: select eligible rows, mark them PROCESSING.
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `notification_outbox_records` (.+)FOR UPDATE SKIP LOCKED").
		WillReturnRows(pendingOutboxRow(1, 0))
	mock.ExpectExec("UPDATE `notification_outbox_records` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Mark SENT after the publish succeeds.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `notification_outbox_records` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	d.DispatchOnce(context.Background())

	if len(published) != 1 {
		t.Fatalf("expected exactly one publish, got %d", len(published))
	}
	if published[0].ChannelKey != TransactionChannelKey || published[0].ReferenceId != 1001 {
		t.Fatalf("published the wrong event: %+v", published[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestDispatchOnceRequeuesFailedPublish(t *testing.T) {
	db, mock := newDispatcherDB(t)
	d := newTestDispatcher(db)
	d.Publish = func(ctx context.Context, event config.NotificationEvent) (string, error) {
		return "", errors.New("broker unreachable")
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `notification_outbox_records` (.+)FOR UPDATE SKIP LOCKED").
		WillReturnRows(pendingOutboxRow(1, 0))
	mock.ExpectExec("UPDATE `notification_outbox_records` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Mark FAILED with a retry schedule.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `notification_outbox_records` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	d.DispatchOnce(context.Background())

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestDispatchOnceDeadLettersPoisonRecords(t *testing.T) {
	db, mock := newDispatcherDB(t)
	d := newTestDispatcher(db)
	d.MaxAttempts = 3

	publishes := 0
	d.Publish = func(ctx context.Context, event config.NotificationEvent) (string, error) {
		publishes++
		return "msg", nil
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `notification_outbox_records` (.+)FOR UPDATE SKIP LOCKED").
		WillReturnRows(pendingOutboxRow(1, 3))
	// A record past MaxAttempts is marked DEAD during the claim.
	mock.ExpectExec("UPDATE `notification_outbox_records` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	d.DispatchOnce(context.Background())

	if publishes != 0 {
		t.Fatalf("a dead-lettered record must not be published, got %d publishes", publishes)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestDispatchOnceIdleWhenOutboxEmpty(t *testing.T) {
	db, mock := newDispatcherDB(t)
	d := newTestDispatcher(db)

	publishes := 0
	d.Publish = func(ctx context.Context, event config.NotificationEvent) (string, error) {
		publishes++
		return "msg", nil
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `notification_outbox_records` (.+)FOR UPDATE SKIP LOCKED").
		WillReturnRows(emptyOutboxRows())
	mock.ExpectCommit()

	d.DispatchOnce(context.Background())

	if publishes != 0 {
		t.Fatalf("expected no publishes on an empty outbox, got %d", publishes)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	db, mock := newDispatcherDB(t)
	d := newTestDispatcher(db)
	d.PollInterval = time.Millisecond
	d.Publish = func(ctx context.Context, event config.NotificationEvent) (string, error) {
		return "msg", nil
	}
	mock.MatchExpectationsInOrder(false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}
