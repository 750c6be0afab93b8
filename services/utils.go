package services

import (
	"context"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/getsentry/sentry-go"
	"gorm.io/gorm"

	"wardrobeapi/logging"
	"wardrobeapi/models"
)

// Notifier delivers push notifications to a user's registered devices.
type Notifier interface {
	SendNotification(ctx context.Context, userID uint, title string, message string, customData map[string]string)
}

type FirebaseNotifier struct {
	app *firebase.App
	db  *gorm.DB
}

func NewFirebaseNotifier(app *firebase.App, db *gorm.DB) *FirebaseNotifier {
	return &FirebaseNotifier{app: app, db: db}
}

func stringMapToInterfaceMap(stringMap map[string]string) map[string]interface{} {
	interfaceMap := make(map[string]interface{})
	for key, value := range stringMap {
		interfaceMap[key] = value
	}
	return interfaceMap
}

func (n *FirebaseNotifier) SendNotification(ctx context.Context, userID uint, title string, message string, customData map[string]string) {
	logger := logging.FromContext(ctx).With("user_id", userID, "title", title)
	if n.app == nil {
		logger.Debug("push skipped, firebase is not configured")
		return
	}

	var user models.UserAccount
	if err := n.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		logger.Error("push skipped, user lookup failed", "error", err)
		return
	}
	if !user.ReceiveNotifications {
		return
	}

	var tokens []models.UserPushToken
	if err := n.db.WithContext(ctx).Where("user_account_id = ? and active = ?", userID, true).Find(&tokens).Error; err != nil {
		logger.Error("push token lookup failed", "error", err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	client, err := n.app.Messaging(ctx)
	if err != nil {
		logger.Error("firebase messaging client failed", "error", err)
		sentry.CaptureException(err)
		return
	}

	var iosCustomData map[string]interface{}
	if customData != nil {
		iosCustomData = stringMapToInterfaceMap(customData)
	}
	messages := make([]*messaging.Message, 0, len(tokens))
	for _, token := range tokens {
		msg := &messaging.Message{
			Notification: &messaging.Notification{
				Title: title,
				Body:  message,
			},
			Token: token.Token,
		}
		if token.Platform == models.PlatformIOS {
			msg.APNS = &messaging.APNSConfig{
				Payload: &messaging.APNSPayload{
					Aps: &messaging.Aps{
						ContentAvailable: true,
						Alert:            &messaging.ApsAlert{Title: title, Body: message},
						Sound:            "default",
					},
					CustomData: iosCustomData,
				},
			}
		} else {
			msg.Android = &messaging.AndroidConfig{
				Notification: &messaging.AndroidNotification{
					Priority:  messaging.AndroidNotificationPriority(messaging.PriorityMax),
					ChannelID: "wardrobe-high-priority",
				},
				Data: customData,
			}
		}
		messages = append(messages, msg)
	}

	br, err := client.SendEach(ctx, messages)
	if err != nil {
		logger.Error("push send failed", "error", err)
		sentry.CaptureException(err)
		return
	}
	logger.Info("push sent", "success", br.SuccessCount, "failures", br.FailureCount)
}
