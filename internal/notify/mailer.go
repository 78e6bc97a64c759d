package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"gopkg.in/gomail.v2"

	"github.com/cutclub/cutclub-backend/internal/metrics"
)

const (
	emailQueue  = "emails"
	failedQueue = "emails:failed"

	maxTries = 3
)

type EmailJob struct {
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

// Mailer queues mail on redis and drains the queue in a background worker.
// Enqueueing is fire-and-forget: a full or unreachable queue never blocks a
// booking.
type Mailer struct {
	redis  *redis.Client
	dialer *gomail.Dialer
	from   string
	log    *slog.Logger
}

func NewMailer(
	rdb *redis.Client,
	host string,
	port int,
	user string,
	pass string,
	from string,
	log *slog.Logger,
) *Mailer {
	return &Mailer{
		redis:  rdb,
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   from,
		log:    log,
	}
}

func (m *Mailer) Enqueue(ctx context.Context, to, name, subject, body string) {
	job := EmailJob{
		To:      to,
		Name:    name,
		Subject: subject,
		Body:    body,
		Created: time.Now(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		m.log.Error("email job marshal failed", "err", err)
		return
	}

	if err := m.redis.LPush(ctx, emailQueue, string(data)).Err(); err != nil {
		m.log.Error("email enqueue failed", "to", to, "err", err)
		return
	}

	m.log.Info("email queued", "to", to, "subject", subject)
}

// Worker drains the queue until ctx is canceled.
func (m *Mailer) Worker(ctx context.Context) {
	m.log.Info("email worker started")

	for {
		select {
		case <-ctx.Done():
			m.log.Info("email worker stopped")
			return
		default:
			m.processNext(ctx)
		}
	}
}

func (m *Mailer) processNext(ctx context.Context) {
	result, err := m.redis.BRPop(ctx, 2*time.Second, emailQueue).Result()
	if err != nil {
		return
	}

	var job EmailJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		m.log.Error("bad email job, dropping", "err", err)
		return
	}

	job.Tries++
	metrics.EmailQueueLength.Set(float64(m.QueueLength(ctx)))

	if err := m.sendNow(job); err != nil {
		m.log.Error("email send failed", "to", job.To, "attempt", job.Tries, "err", err)

		if job.Tries < maxTries {
			data, _ := json.Marshal(job)
			m.redis.LPush(context.Background(), emailQueue, string(data))
		} else {
			m.saveFailed(job, err)
			metrics.RecordEmail("failed")
		}
		return
	}

	metrics.RecordEmail("sent")
	m.log.Info("email sent", "to", job.To)
}

func (m *Mailer) sendNow(job EmailJob) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", job.To)
	msg.SetHeader("Subject", job.Subject)
	msg.SetBody("text/plain", job.Body)

	return m.dialer.DialAndSend(msg)
}

func (m *Mailer) saveFailed(job EmailJob, sendErr error) {
	failed := map[string]any{
		"job":   job,
		"error": sendErr.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	m.redis.LPush(context.Background(), failedQueue, string(data))

	m.log.Error("email moved to failed queue", "to", job.To)
}

func (m *Mailer) QueueLength(ctx context.Context) int64 {
	n, _ := m.redis.LLen(ctx, emailQueue).Result()
	return n
}

// ===============================
// Domain messages
// ===============================

func (m *Mailer) BookingConfirmed(ctx context.Context, to, name, barber string, when time.Time) {
	body := fmt.Sprintf(`Olá %s,

Seu horário está garantido!

Barbeiro: %s
Quando: %s

Até lá!

- Equipe CutClub`, name, barber, when.Format("02/01/2006 às 15:04"))

	m.Enqueue(ctx, to, name, "Agendamento confirmado - CutClub", body)
}

func (m *Mailer) BookingCanceled(ctx context.Context, to, name string, when time.Time) {
	body := fmt.Sprintf(`Olá %s,

Seu agendamento de %s foi cancelado.

Se não foi você, fale com a gente.

- Equipe CutClub`, name, when.Format("02/01/2006 às 15:04"))

	m.Enqueue(ctx, to, name, "Agendamento cancelado - CutClub", body)
}

func (m *Mailer) SubscriptionStarted(ctx context.Context, to, name, plan string) {
	body := fmt.Sprintf(`Olá %s,

Sua assinatura do plano %s está ativa. Bons cortes!

- Equipe CutClub`, name, plan)

	m.Enqueue(ctx, to, name, "Assinatura ativa - CutClub", body)
}
