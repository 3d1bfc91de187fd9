package businessflow_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/usbest/usbest-backend/app/dto"
	businessflow "github.com/usbest/usbest-backend/business_flow"
	"github.com/usbest/usbest-backend/models"
	testingutil "github.com/usbest/usbest-backend/testing"
	"go.uber.org/zap"
)

func newConsoleFlow(env *testEnv) businessflow.AdvertiserConsoleFlow {
	return businessflow.NewAdvertiserConsoleFlow(
		env.adRepo,
		env.commentRepo,
		env.ugcRepo,
		env.campaignRepo,
		env.applicantRepo,
		nil,
		zap.NewNop(),
	)
}

func TestGetConsole(t *testing.T) {
	ctx := context.Background()

	t.Run("ListsOwnParticipationInEveryStatus", func(t *testing.T) {
		env := newTestEnv(t)
		flow := newConsoleFlow(env)

		active := env.createAd(t, 1)
		paused := env.createAd(t, 1, testingutil.WithStatus(models.AdStatusPaused))
		draft := env.createAd(t, 1, testingutil.WithStatus(models.AdStatusDraft))
		foreign := env.createAd(t, 2)

		_, err := env.fixtures.CreateTestComment(active.ID, 10, "pending", models.ParticipationStatusPending)
		require.NoError(t, err)
		_, err = env.fixtures.CreateTestComment(paused.ID, 11, "approved", models.ParticipationStatusApproved)
		require.NoError(t, err)
		_, err = env.fixtures.CreateTestComment(foreign.ID, 12, "not mine", models.ParticipationStatusPending)
		require.NoError(t, err)

		_, err = env.fixtures.CreateTestUGC(active.ID, 10, models.ParticipationStatusPending, 0)
		require.NoError(t, err)
		_, err = env.fixtures.CreateTestUGC(active.ID, 11, models.ParticipationStatusRejected, 0)
		require.NoError(t, err)
		_, err = env.fixtures.CreateTestUGC(foreign.ID, 12, models.ParticipationStatusPending, 0)
		require.NoError(t, err)

		open, err := env.fixtures.CreateTestCampaign(active.ID, 5, nil)
		require.NoError(t, err)
		closed, err := env.fixtures.CreateTestCampaign(paused.ID, 3, nil)
		require.NoError(t, err)
		require.NoError(t, env.db.DB.Model(closed).Update("status", models.TesterCampaignStatusClosed).Error)
		_, err = env.fixtures.CreateTestCampaign(foreign.ID, 3, nil)
		require.NoError(t, err)
		for _, userID := range []uint{21, 22} {
			_, err = env.fixtures.CreateTestApplicant(open.ID, userID, models.ApplicantStatusPending)
			require.NoError(t, err)
		}

		resp, err := flow.GetConsole(ctx, &dto.AdvertiserConsoleRequest{AdvertiserID: 1})
		require.NoError(t, err)

		assert.Equal(t, dto.ConsoleMetrics{
			TotalAds:        3,
			ActiveAds:       1,
			PendingComments: 1,
			PendingUGC:      1,
			OpenCampaigns:   1,
		}, resp.Metrics)

		adIDs := make([]uint, 0, len(resp.Ads))
		for _, ad := range resp.Ads {
			adIDs = append(adIDs, ad.ID)
		}
		assert.ElementsMatch(t, []uint{active.ID, paused.ID, draft.ID}, adIDs)

		assert.Len(t, resp.RecentComments, 2)
		require.Len(t, resp.RecentUGC, 2)
		statuses := []string{resp.RecentUGC[0].Status, resp.RecentUGC[1].Status}
		assert.ElementsMatch(t, []string{"pending", "rejected"}, statuses)

		require.Len(t, resp.Campaigns, 2)
		for _, c := range resp.Campaigns {
			if c.ID == open.ID {
				assert.Equal(t, int64(2), c.Applied)
				assert.Equal(t, int64(3), c.RemainingSpots)
			}
		}
	})

	t.Run("ScopedToOneOwnedAd", func(t *testing.T) {
		env := newTestEnv(t)
		flow := newConsoleFlow(env)
		first := env.createAd(t, 1)
		second := env.createAd(t, 1)
		_, err := env.fixtures.CreateTestComment(first.ID, 10, "one", models.ParticipationStatusPending)
		require.NoError(t, err)
		_, err = env.fixtures.CreateTestComment(second.ID, 10, "two", models.ParticipationStatusPending)
		require.NoError(t, err)

		resp, err := flow.GetConsole(ctx, &dto.AdvertiserConsoleRequest{AdvertiserID: 1, AdID: second.ID})
		require.NoError(t, err)
		require.Len(t, resp.Ads, 1)
		assert.Equal(t, second.ID, resp.Ads[0].ID)
		require.Len(t, resp.RecentComments, 1)
		assert.Equal(t, "two", resp.RecentComments[0].Content)

		_, err = flow.GetConsole(ctx, &dto.AdvertiserConsoleRequest{AdvertiserID: 2, AdID: second.ID})
		assert.True(t, businessflow.IsNotAdOwner(err))

		_, err = flow.GetConsole(ctx, &dto.AdvertiserConsoleRequest{AdvertiserID: 1, AdID: 9999})
		assert.True(t, businessflow.IsNotFound(err))
	})

	t.Run("EmptyForAdvertiserWithoutAds", func(t *testing.T) {
		env := newTestEnv(t)
		flow := newConsoleFlow(env)
		other := env.createAd(t, 2)
		_, err := env.fixtures.CreateTestComment(other.ID, 10, "elsewhere", models.ParticipationStatusPending)
		require.NoError(t, err)

		resp, err := flow.GetConsole(ctx, &dto.AdvertiserConsoleRequest{AdvertiserID: 1})
		require.NoError(t, err)
		assert.Empty(t, resp.Ads)
		assert.Empty(t, resp.RecentComments)
		assert.Empty(t, resp.RecentUGC)
		assert.Empty(t, resp.Campaigns)
		assert.Zero(t, resp.Metrics.PendingComments)
	})

	t.Run("RequiresAdvertiser", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := newConsoleFlow(env).GetConsole(ctx, &dto.AdvertiserConsoleRequest{})
		assert.True(t, businessflow.IsUnauthorized(err))
	})
}

func TestListCampaignApplicants(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	flow := newConsoleFlow(env)
	ad := env.createAd(t, 1)
	campaign, err := env.fixtures.CreateTestCampaign(ad.ID, 10, nil)
	require.NoError(t, err)
	pending, err := env.fixtures.CreateTestApplicant(campaign.ID, 31, models.ApplicantStatusPending)
	require.NoError(t, err)
	_, err = env.fixtures.CreateTestApplicant(campaign.ID, 32, models.ApplicantStatusSelected)
	require.NoError(t, err)

	all, err := flow.ListCampaignApplicants(ctx, &dto.ListCampaignApplicantsRequest{AdvertiserID: 1, CampaignID: campaign.ID})
	require.NoError(t, err)
	assert.Len(t, all.Applicants, 2)
	assert.Equal(t, int64(2), all.Campaign.Applied)

	onlyPending, err := flow.ListCampaignApplicants(ctx, &dto.ListCampaignApplicantsRequest{AdvertiserID: 1, CampaignID: campaign.ID, Status: "pending"})
	require.NoError(t, err)
	require.Len(t, onlyPending.Applicants, 1)
	assert.Equal(t, pending.ID, onlyPending.Applicants[0].ID)

	_, err = flow.ListCampaignApplicants(ctx, &dto.ListCampaignApplicantsRequest{AdvertiserID: 1, CampaignID: campaign.ID, Status: "winner"})
	assert.True(t, businessflow.IsValidation(err))

	_, err = flow.ListCampaignApplicants(ctx, &dto.ListCampaignApplicantsRequest{AdvertiserID: 2, CampaignID: campaign.ID})
	assert.True(t, businessflow.IsNotAdOwner(err))

	_, err = flow.ListCampaignApplicants(ctx, &dto.ListCampaignApplicantsRequest{AdvertiserID: 1, CampaignID: 9999})
	assert.True(t, businessflow.IsNotFound(err))
}
