package mailer

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []string
	err  error
	boom bool
}

func (m *recordingMailer) Send(_ context.Context, to, subject, _ string) error {
	if m.boom {
		panic("smtp client is nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to+": "+subject)
	return m.err
}

func TestNotifierDeliversAsync(t *testing.T) {
	mail := &recordingMailer{}
	notifier := NewNotifier(mail, zap.NewNop())

	notifier.Enqueue("a@example.com", "Welcome", "<p>hi</p>")
	notifier.Enqueue("b@example.com", "Welcome", "<p>hi</p>")
	notifier.Wait()

	assert.ElementsMatch(t, []string{"a@example.com: Welcome", "b@example.com: Welcome"}, mail.sent)
}

func TestNotifierSwallowsSendErrors(t *testing.T) {
	mail := &recordingMailer{err: errors.New("connection refused")}
	notifier := NewNotifier(mail, zap.NewNop())

	notifier.Enqueue("a@example.com", "Welcome", "<p>hi</p>")
	notifier.Wait()
	// Reaching here without a panic or error is the contract: delivery
	// failures never propagate to the caller.
	assert.Len(t, mail.sent, 1)
}

func TestNotifierRecoversFromPanic(t *testing.T) {
	mail := &recordingMailer{boom: true}
	notifier := NewNotifier(mail, zap.NewNop())

	notifier.Enqueue("a@example.com", "Welcome", "<p>hi</p>")
	notifier.Wait()
	assert.Empty(t, mail.sent)
}

func TestEnrollmentConfirmationBodyEscapesInput(t *testing.T) {
	body := EnrollmentConfirmationBody("Priya <script>", 150, "order_abc", "pay_123", []string{"Go <b>Basics</b>"})
	require.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&#8377;150")
	assert.Contains(t, body, "pay_123")
	assert.Contains(t, body, "Go &lt;b&gt;Basics&lt;/b&gt;")
}

func TestPaymentFailedBody(t *testing.T) {
	body := PaymentFailedBody("Priya", 150, "order_abc", "Card declined")
	assert.Contains(t, body, "Card declined")
	assert.Contains(t, body, "order_abc")
	assert.Contains(t, body, "&#8377;150")
}
