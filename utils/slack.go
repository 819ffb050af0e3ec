package utils

import (
	"errors"
	"time"

	resty "github.com/go-resty/resty/v2"
)

const (
	AlertNotification = 0
	InfoNotification  = 1
)

type SlackRequestBody struct {
	Text string `json:"text"`
}

// SlackNotifier posts to the 'Incoming Webhook' urls setup in Slack Apps.
// An empty webhook url disables that notification type.
type SlackNotifier struct {
	alertWebhookURL string
	infoWebhookURL  string
	client          *resty.Client
}

func NewSlackNotifier(alertWebhookURL string, infoWebhookURL string) *SlackNotifier {
	return &SlackNotifier{
		alertWebhookURL: alertWebhookURL,
		infoWebhookURL:  infoWebhookURL,
		client:          resty.New().SetTimeout(10 * time.Second),
	}
}

// SendSlackNotification accepts some text and posts it to the webhook of the given type
func (s *SlackNotifier) SendSlackNotification(msg string, notiType int) error {
	if s == nil {
		return nil
	}

	var webhookURL string
	if notiType == AlertNotification {
		webhookURL = s.alertWebhookURL
	} else if notiType == InfoNotification {
		webhookURL = s.infoWebhookURL
	} else {
		return errors.New("Notification type is not supported")
	}
	if webhookURL == "" {
		return nil
	}

	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(SlackRequestBody{Text: msg}).
		Post(webhookURL)
	if err != nil {
		return err
	}
	if resp.String() != "ok" {
		return errors.New("Non-ok response returned from Slack")
	}
	return nil
}
