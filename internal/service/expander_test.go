package service_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coldreach/outreach-backend/internal/config"
	appErrors "github.com/coldreach/outreach-backend/internal/errors"
	"github.com/coldreach/outreach-backend/internal/model"
	"github.com/coldreach/outreach-backend/internal/service"
)

// --- Fakes for the expander ---

type fakeCampaignRepo struct {
	campaign    *model.Campaign
	activated   []*model.SendJob
	activateErr error
}

func (f *fakeCampaignRepo) Create(c *model.Campaign) error { return nil }

func (f *fakeCampaignRepo) GetByID(id int64) (*model.Campaign, error) {
	if f.campaign == nil || f.campaign.ID != id {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	return f.campaign, nil
}

func (f *fakeCampaignRepo) UpdateStatus(id int64, status string) error {
	f.campaign.Status = status
	return nil
}

func (f *fakeCampaignRepo) ListCampaigns(offset, limit int, status string) ([]*model.Campaign, int, error) {
	return nil, 0, nil
}

func (f *fakeCampaignRepo) ActivateWithJobs(campaignID int64, jobs []*model.SendJob) error {
	if f.activateErr != nil {
		return f.activateErr
	}
	f.activated = jobs
	f.campaign.Status = model.CampaignStatusActive
	return nil
}

func (f *fakeCampaignRepo) GetStats(campaignID int64) (map[string]int, error) {
	return map[string]int{}, nil
}

type fakeContactList struct {
	contacts []model.Contact
}

func (f *fakeContactList) GetByID(id int64) (*model.Contact, error) {
	for i := range f.contacts {
		if f.contacts[i].ID == id {
			return &f.contacts[i], nil
		}
	}
	return nil, nil
}

func (f *fakeContactList) ListByCampaign(campaignID int64) ([]model.Contact, error) {
	return f.contacts, nil
}

type fakeSenderList struct {
	senders []model.Sender
}

func (f *fakeSenderList) GetByID(id int64) (*model.Sender, error) {
	for i := range f.senders {
		if f.senders[i].ID == id {
			return &f.senders[i], nil
		}
	}
	return nil, nil
}

func (f *fakeSenderList) ListByTenant(tenantID int64) ([]model.Sender, error) {
	return f.senders, nil
}

type fakeSequenceSteps struct {
	steps []model.SequenceStep
}

func (f *fakeSequenceSteps) ListSteps(sequenceID int64) ([]model.SequenceStep, error) {
	return f.steps, nil
}

func (f *fakeSequenceSteps) GetStep(stepID int64) (*model.SequenceStep, error) {
	for i := range f.steps {
		if f.steps[i].ID == stepID {
			return &f.steps[i], nil
		}
	}
	return nil, nil
}

func (f *fakeSequenceSteps) NextStep(sequenceID int64, afterStepNumber int) (*model.SequenceStep, error) {
	for i := range f.steps {
		if f.steps[i].StepNumber > afterStepNumber {
			return &f.steps[i], nil
		}
	}
	return nil, nil
}

// --- Test setup helpers ---

var testFooter = config.FooterConfig{
	PhysicalAddress: "1 Test Way, Testville",
	UnsubscribeURL:  "https://example.test/unsubscribe",
}

func newExpander(campaigns *fakeCampaignRepo, contacts []model.Contact, senders []model.Sender, steps []model.SequenceStep) *service.Expander {
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	return &service.Expander{
		CampaignRepo: campaigns,
		ContactRepo:  &fakeContactList{contacts: contacts},
		SenderRepo:   &fakeSenderList{senders: senders},
		SequenceRepo: &fakeSequenceSteps{steps: steps},
		Footer:       testFooter,
		Now:          func() time.Time { return base },
	}
}

func draftCampaign() *model.Campaign {
	return &model.Campaign{ID: 1, TenantID: 1, Name: "Test", SequenceID: 7, Status: model.CampaignStatusDraft}
}

func introSteps() []model.SequenceStep {
	return []model.SequenceStep{
		{ID: 10, SequenceID: 7, StepNumber: 1, DelayDays: 0,
			Subject: "Quick question, {{firstName}}",
			Body:    "Hi {{firstName}}, how is {{companyName}} doing?"},
		{ID: 11, SequenceID: 7, StepNumber: 2, DelayDays: 3,
			Subject: "Following up, {{firstName}}",
			Body:    "Bumping this, {{firstName}}."},
	}
}

func testContacts(n int) []model.Contact {
	contacts := make([]model.Contact, 0, n)
	names := []string{"Alice", "Bob", "Carol", "Dan", "Eva", "Frank"}
	for i := 0; i < n; i++ {
		contacts = append(contacts, model.Contact{
			ID:        int64(i + 1),
			TenantID:  1,
			Email:     names[i%len(names)] + "@example.test",
			FirstName: names[i%len(names)],
			Company:   "Acme",
		})
	}
	return contacts
}

// --- Tests ---

func TestActivateCampaignCreatesOneJobPerContact(t *testing.T) {
	repo := &fakeCampaignRepo{campaign: draftCampaign()}
	exp := newExpander(repo, testContacts(5),
		[]model.Sender{{ID: 1, TenantID: 1, Email: "amy@x.test", DisplayName: "Amy"}},
		introSteps())

	require.NoError(t, exp.ActivateCampaign(1))
	require.Len(t, repo.activated, 5)
	assert.Equal(t, model.CampaignStatusActive, repo.campaign.Status)

	for i, job := range repo.activated {
		assert.Equal(t, int64(i+1), job.ContactID)
		assert.Equal(t, model.JobStatusQueued, job.Status)
		assert.Equal(t, int64(10), job.StepID, "all jobs target the first step")
	}
}

func TestActivateCampaignStaggersSendTimes(t *testing.T) {
	repo := &fakeCampaignRepo{campaign: draftCampaign()}
	exp := newExpander(repo, testContacts(6),
		[]model.Sender{{ID: 1, TenantID: 1}},
		introSteps())

	require.NoError(t, exp.ActivateCampaign(1))
	require.Len(t, repo.activated, 6)

	prev := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	for i, job := range repo.activated {
		gap := job.SendAt.Sub(prev)
		assert.GreaterOrEqual(t, gap, 90*time.Second, "gap before job %d too small", i)
		assert.LessOrEqual(t, gap, 300*time.Second, "gap before job %d too large", i)
		prev = job.SendAt
	}
}

func TestActivateCampaignJitterIsCumulative(t *testing.T) {
	repo := &fakeCampaignRepo{campaign: draftCampaign()}
	exp := newExpander(repo, testContacts(3),
		[]model.Sender{{ID: 1, TenantID: 1}},
		introSteps())
	exp.Jitter = func() time.Duration { return 100 * time.Second }

	require.NoError(t, exp.ActivateCampaign(1))
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	for i, job := range repo.activated {
		assert.Equal(t, base.Add(time.Duration(i+1)*100*time.Second), job.SendAt)
	}
}

func TestActivateCampaignEmptySequence(t *testing.T) {
	repo := &fakeCampaignRepo{campaign: draftCampaign()}
	exp := newExpander(repo, testContacts(2), []model.Sender{{ID: 1, TenantID: 1}}, nil)

	err := exp.ActivateCampaign(1)
	require.ErrorIs(t, err, appErrors.ErrEmptySequence)
	assert.Nil(t, repo.activated, "no jobs may be written before the precondition check")
	assert.Equal(t, model.CampaignStatusDraft, repo.campaign.Status)
}

func TestActivateCampaignRejectsActiveCampaign(t *testing.T) {
	c := draftCampaign()
	c.Status = model.CampaignStatusActive
	repo := &fakeCampaignRepo{campaign: c}
	exp := newExpander(repo, testContacts(1), []model.Sender{{ID: 1, TenantID: 1}}, introSteps())

	err := exp.ActivateCampaign(1)
	var invalid *appErrors.ErrInvalidCampaignStatus
	require.ErrorAs(t, err, &invalid)
	assert.Nil(t, repo.activated)
}

func TestActivateCampaignNoSenders(t *testing.T) {
	repo := &fakeCampaignRepo{campaign: draftCampaign()}
	exp := newExpander(repo, testContacts(1), nil, introSteps())

	require.ErrorIs(t, exp.ActivateCampaign(1), appErrors.ErrNoSenderForOwner)
}

func TestActivateCampaignRendersAndFooters(t *testing.T) {
	repo := &fakeCampaignRepo{campaign: draftCampaign()}
	contacts := []model.Contact{{ID: 1, TenantID: 1, Email: "alice@x.test", FirstName: "Alice", Company: "Acme"}}
	exp := newExpander(repo, contacts,
		[]model.Sender{{ID: 1, TenantID: 1, DisplayName: "Amy"}},
		introSteps())

	require.NoError(t, exp.ActivateCampaign(1))
	require.Len(t, repo.activated, 1)

	job := repo.activated[0]
	assert.Equal(t, "Quick question, Alice", job.Subject)
	assert.True(t, strings.HasPrefix(job.Body, "Hi Alice, how is Acme doing?"))
	assert.Contains(t, job.Body, "Sent by Amy")
	assert.Contains(t, job.Body, testFooter.PhysicalAddress)
	assert.Contains(t, job.Body, testFooter.UnsubscribeURL)
}

func TestActivateCampaignRoundRobinSenders(t *testing.T) {
	repo := &fakeCampaignRepo{campaign: draftCampaign()}
	senders := []model.Sender{{ID: 1, TenantID: 1}, {ID: 2, TenantID: 1}}
	exp := newExpander(repo, testContacts(4), senders, introSteps())
	exp.Picker = &service.RoundRobinPicker{}

	require.NoError(t, exp.ActivateCampaign(1))
	require.Len(t, repo.activated, 4)
	assert.Equal(t, int64(1), repo.activated[0].SenderID)
	assert.Equal(t, int64(2), repo.activated[1].SenderID)
	assert.Equal(t, int64(1), repo.activated[2].SenderID)
	assert.Equal(t, int64(2), repo.activated[3].SenderID)
}
