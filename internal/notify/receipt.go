// Package notify turns domain events into e-mails.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"

	"go.uber.org/zap"

	"github.com/example/rentalhub/internal/models"
	"github.com/example/rentalhub/pkg/messagequeue"
)

// Sender delivers one e-mail. Implemented by mailer.Mailer.
type Sender interface {
	Send(recipient, subject, body string) error
}

// ReceiptSubject is the subject line of payment receipts.
const ReceiptSubject = "Your Rentalhub payment receipt"

var receiptTemplate = template.Must(template.New("receipt").Parse(`<html><body>
<p>Hi {{if .Name}}{{.Name}}{{else}}there{{end}},</p>
<p>We received your payment of <strong>${{printf "%.2f" .Amount}}</strong>.</p>
<p>Transaction ID: {{.TransactionID}}<br>Verified: {{.VerifiedAt.Format "02 Jan 2006 15:04 MST"}}</p>
<p>Full listing details, contacts and maps are now unlocked on your account.</p>
</body></html>`))

// RenderReceipt renders the receipt body for event.
func RenderReceipt(event models.PaymentVerifiedEvent) (string, error) {
	var buf bytes.Buffer
	if err := receiptTemplate.Execute(&buf, event); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ReceiptHandler decodes PaymentVerifiedEvent messages and e-mails a receipt. Events without
// a recipient are acknowledged and skipped; malformed bodies and send failures are rejected.
func ReceiptHandler(sender Sender, logger *zap.Logger) messagequeue.Handler {
	return func(ctx context.Context, body []byte) error {
		var event models.PaymentVerifiedEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return fmt.Errorf("decode payment event: %w", err)
		}
		if event.Email == "" {
			logger.Warn("Payment event has no e-mail; skipping receipt",
				zap.String("transactionID", event.TransactionID), zap.String("userID", event.UserID))
			return nil
		}

		html, err := RenderReceipt(event)
		if err != nil {
			return fmt.Errorf("render receipt: %w", err)
		}
		if err := sender.Send(event.Email, ReceiptSubject, html); err != nil {
			return err
		}
		logger.Info("Sent payment receipt",
			zap.String("transactionID", event.TransactionID), zap.String("userID", event.UserID))
		return nil
	}
}
