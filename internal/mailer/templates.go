package mailer

import (
	"fmt"
	"html"
	"strings"
)

const (
	SubjectEnrollmentConfirmed = "Course Purchase & Enrollment Confirmation - StudyHub"
	SubjectPaymentFailed       = "Payment Failed - StudyHub"
)

// EnrollmentConfirmationBody renders the purchase confirmation message.
// Amount is in whole rupees.
func EnrollmentConfirmationBody(name string, amount int64, orderID, paymentID string, courseTitles []string) string {
	var items strings.Builder
	for _, title := range courseTitles {
		items.WriteString("<li>" + html.EscapeString(title) + "</li>")
	}
	return fmt.Sprintf(`<html><body>
<h2>Payment Successful!</h2>
<p>Dear %s,</p>
<p>Thank you for your purchase. Your payment has been processed and your enrollment is complete.</p>
<p><b>Amount Paid:</b> &#8377;%d<br>
<b>Order ID:</b> %s<br>
<b>Payment ID:</b> %s</p>
<p><b>Your enrolled courses:</b></p>
<ul>%s</ul>
<p>You can start learning immediately from your dashboard.</p>
<p>- The StudyHub Team</p>
</body></html>`,
		html.EscapeString(name), amount, html.EscapeString(orderID), html.EscapeString(paymentID), items.String())
}

// PaymentFailedBody renders the failure notice. Amount is in whole rupees.
func PaymentFailedBody(name string, amount int64, orderID, reason string) string {
	return fmt.Sprintf(`<html><body>
<h2>Payment Failed</h2>
<p>Dear %s,</p>
<p>We're sorry, but your payment could not be processed.</p>
<p><b>Amount:</b> &#8377;%d<br>
<b>Order ID:</b> %s<br>
<b>Reason:</b> %s</p>
<p>Your cart items are still saved. You can complete the purchase anytime.</p>
<p>- The StudyHub Team</p>
</body></html>`,
		html.EscapeString(name), amount, html.EscapeString(orderID), html.EscapeString(reason))
}
