package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func quietLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMailer(rdb *redis.Client) *Mailer {
	return NewMailer(rdb, "smtp.test.com", 587, "test@example.com", "password", "noreply@cutclub.com.br", quietLog())
}

// newDeadSMTPMailer points at a port nothing listens on so sends fail fast.
func newDeadSMTPMailer(rdb *redis.Client) *Mailer {
	return NewMailer(rdb, "127.0.0.1", 1, "", "", "noreply@cutclub.com.br", quietLog())
}

func TestEnqueue(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.Regexp().ExpectLPush("emails", `.*client@example\.com.*`).SetVal(1)

	m := newTestMailer(db)
	m.Enqueue(ctx, "client@example.com", "João", "Olá", "Corpo do email")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnqueue_RedisDownNeverBlocks(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.Regexp().ExpectLPush("emails", `.*`).SetErr(assert.AnError)

	m := newTestMailer(db)
	m.Enqueue(ctx, "client@example.com", "João", "Olá", "Corpo do email")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingConfirmed(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.Regexp().ExpectLPush("emails", `.*Agendamento confirmado.*`).SetVal(1)

	m := newTestMailer(db)
	m.BookingConfirmed(ctx, "client@example.com", "João", "Rafa", time.Now().Add(48*time.Hour))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingCanceled(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.Regexp().ExpectLPush("emails", `.*Agendamento cancelado.*`).SetVal(1)

	m := newTestMailer(db)
	m.BookingCanceled(ctx, "client@example.com", "João", time.Now().Add(48*time.Hour))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionStarted(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.Regexp().ExpectLPush("emails", `.*Assinatura ativa.*`).SetVal(1)

	m := newTestMailer(db)
	m.SubscriptionStarted(ctx, "client@example.com", "João", "Clube Premium")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueLength(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.ExpectLLen("emails").SetVal(5)

	m := newTestMailer(db)
	assert.Equal(t, int64(5), m.QueueLength(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessNext_RequeuesOnSendFailure(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	payload, _ := json.Marshal(EmailJob{To: "client@example.com", Subject: "Olá", Body: "x"})

	mock.ExpectBRPop(2*time.Second, "emails").SetVal([]string{"emails", string(payload)})
	mock.Regexp().ExpectLLen("emails").SetVal(0)
	mock.Regexp().ExpectLPush("emails", `.*"tries":1.*`).SetVal(1)

	m := newDeadSMTPMailer(db)
	m.processNext(ctx)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessNext_GivesUpAfterMaxTries(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	payload, _ := json.Marshal(EmailJob{To: "client@example.com", Subject: "Olá", Body: "x", Tries: 2})

	mock.ExpectBRPop(2*time.Second, "emails").SetVal([]string{"emails", string(payload)})
	mock.Regexp().ExpectLLen("emails").SetVal(0)
	mock.Regexp().ExpectLPush("emails:failed", `.*client@example\.com.*`).SetVal(1)

	m := newDeadSMTPMailer(db)
	m.processNext(ctx)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessNext_DropsUnparsableJob(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.ExpectBRPop(2*time.Second, "emails").SetVal([]string{"emails", "not json"})

	m := newTestMailer(db)
	m.processNext(ctx)

	assert.NoError(t, mock.ExpectationsWereMet())
}
