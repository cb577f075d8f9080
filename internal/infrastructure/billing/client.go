package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/patient-provisioning/internal/domain/entity"
)

// Client talks to the billing service over HTTP. Every call carries a
// bounded timeout; the caller decides what a failure means (the
// provisioning flow treats it as best-effort).
type Client struct {
	httpClient *resty.Client
	logger     *logrus.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{httpClient: client, logger: logger}
}

type createAccountRequest struct {
	PatientID string `json:"patient_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
}

// CreateAccount opens a billing account for a persisted patient.
func (c *Client) CreateAccount(ctx context.Context, patientID, name, email string) (*entity.BillingAccount, error) {
	var account entity.BillingAccount
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(createAccountRequest{PatientID: patientID, Name: name, Email: email}).
		SetResult(&account).
		Post("/billing-accounts")

	if err != nil {
		return nil, fmt.Errorf("billing service call failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("billing service returned %s", resp.Status())
	}

	c.logger.WithFields(logrus.Fields{
		"patient_id": patientID,
		"account_id": account.AccountID,
		"status":     account.Status,
	}).Info("billing account created")

	return &account, nil
}
