package notify

import (
	"context"

	"antidote/internal/domain"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	"gorm.io/gorm"
)

// Notifier sends FCM pushes to clinic devices. A nil Notifier is valid and
// drops every message, so the server runs fine without Firebase credentials.
type Notifier struct {
	client *messaging.Client
}

// NewNotifier initializes the Firebase app and messaging client. An empty
// credentials path falls back to application default credentials.
func NewNotifier(ctx context.Context, credsPath string) (*Notifier, error) {
	var app *firebase.App
	var err error
	if credsPath != "" {
		app, err = firebase.NewApp(ctx, nil, option.WithCredentialsFile(credsPath))
	} else {
		app, err = firebase.NewApp(ctx, nil)
	}
	if err != nil {
		return nil, err
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, err
	}
	return &Notifier{client: client}, nil
}

// NotifyNewLead pushes a "new lead" alert to every registered device of the
// clinic. Best effort: failures are logged, never returned to the request path.
func (n *Notifier) NotifyNewLead(ctx context.Context, db *gorm.DB, lead *domain.Lead) {
	if n == nil || n.client == nil {
		return
	}
	var devices []domain.ClinicDevice
	if err := db.Where("clinic_id = ?", lead.ClinicID).Find(&devices).Error; err != nil {
		logrus.WithField("clinic_id", lead.ClinicID).Errorf("failed to load clinic devices: %v", err)
		return
	}
	for _, d := range devices {
		msg := &messaging.Message{
			Token: d.Token,
			Notification: &messaging.Notification{
				Title: "New lead received",
				Body:  lead.PatientName + " is interested in your services",
			},
			Data: map[string]string{
				"lead_reference": lead.Reference,
				"lead_status":    lead.Status,
			},
		}
		if _, err := n.client.Send(ctx, msg); err != nil {
			logrus.WithFields(logrus.Fields{
				"clinic_id": lead.ClinicID,
				"token":     d.Token,
			}).Warnf("FCM send failed: %v", err)
		}
	}
}
