package service_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coldreach/outreach-backend/internal/model"
	"github.com/coldreach/outreach-backend/internal/queue"
	"github.com/coldreach/outreach-backend/internal/service"
)

func TestActivationHandlerExpandsCampaign(t *testing.T) {
	repo := &fakeCampaignRepo{campaign: draftCampaign()}
	exp := newExpander(repo, testContacts(2), []model.Sender{{ID: 1, TenantID: 1}}, introSteps())
	handler := service.ActivationHandler(exp)

	require.NoError(t, handler(queue.ActivationEvent{CampaignID: 1}))
	assert.Len(t, repo.activated, 2)
}

func TestActivationHandlerDecodesRawJSON(t *testing.T) {
	repo := &fakeCampaignRepo{campaign: draftCampaign()}
	exp := newExpander(repo, testContacts(1), []model.Sender{{ID: 1, TenantID: 1}}, introSteps())
	handler := service.ActivationHandler(exp)

	require.NoError(t, handler(json.RawMessage(`{"campaign_id":1}`)))
	assert.Len(t, repo.activated, 1)
}

// Precondition failures can never succeed on redelivery; returning an error
// would nack the event into an endless requeue loop, so the handler must
// swallow them.
func TestActivationHandlerDropsEmptySequence(t *testing.T) {
	repo := &fakeCampaignRepo{campaign: draftCampaign()}
	exp := newExpander(repo, testContacts(2), []model.Sender{{ID: 1, TenantID: 1}}, nil)
	handler := service.ActivationHandler(exp)

	assert.NoError(t, handler(queue.ActivationEvent{CampaignID: 1}))
	assert.Nil(t, repo.activated)
}

func TestActivationHandlerDropsDuplicateActivation(t *testing.T) {
	c := draftCampaign()
	c.Status = model.CampaignStatusActive
	repo := &fakeCampaignRepo{campaign: c}
	exp := newExpander(repo, testContacts(1), []model.Sender{{ID: 1, TenantID: 1}}, introSteps())
	handler := service.ActivationHandler(exp)

	assert.NoError(t, handler(queue.ActivationEvent{CampaignID: 1}))
	assert.Nil(t, repo.activated)
}

func TestActivationHandlerDropsUnknownCampaign(t *testing.T) {
	exp := newExpander(&fakeCampaignRepo{}, testContacts(1), []model.Sender{{ID: 1, TenantID: 1}}, introSteps())
	handler := service.ActivationHandler(exp)

	assert.NoError(t, handler(queue.ActivationEvent{CampaignID: 42}))
}

func TestActivationHandlerDropsMalformedPayloads(t *testing.T) {
	exp := newExpander(&fakeCampaignRepo{campaign: draftCampaign()}, nil, nil, nil)
	handler := service.ActivationHandler(exp)

	assert.NoError(t, handler(json.RawMessage(`{not json`)))
	assert.NoError(t, handler(42))
}

func TestActivationHandlerReturnsStorageErrorsForRequeue(t *testing.T) {
	repo := &fakeCampaignRepo{campaign: draftCampaign(), activateErr: errors.New("db down")}
	exp := newExpander(repo, testContacts(1), []model.Sender{{ID: 1, TenantID: 1}}, introSteps())
	handler := service.ActivationHandler(exp)

	err := handler(queue.ActivationEvent{CampaignID: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}
