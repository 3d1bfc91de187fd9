package businessflow_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/usbest/usbest-backend/app/dto"
	businessflow "github.com/usbest/usbest-backend/business_flow"
	"github.com/usbest/usbest-backend/models"
	testingutil "github.com/usbest/usbest-backend/testing"
	"go.uber.org/zap"
)

func newAdFlow(env *testEnv, cache businessflow.AdCache) businessflow.AdFlow {
	return businessflow.NewAdFlow(
		env.adRepo,
		env.commentRepo,
		env.ugcRepo,
		env.surveyRepo,
		env.answerRepo,
		env.applicantRepo,
		cache,
		zap.NewNop(),
	)
}

func TestListAdsPagination(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	flow := newAdFlow(env, nil)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var ids []uint
	for i := 0; i < 5; i++ {
		ad := env.createAd(t, 1, testingutil.WithCreatedAt(base.Add(time.Duration(i)*time.Minute)))
		ids = append(ids, ad.ID)
	}
	env.createAd(t, 1, testingutil.WithStatus(models.AdStatusPaused), testingutil.WithCreatedAt(base.Add(time.Hour)))

	first, err := flow.ListAds(ctx, &dto.ListAdsRequest{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Ads, 2)
	assert.Equal(t, ids[4], first.Ads[0].ID)
	assert.Equal(t, ids[3], first.Ads[1].ID)
	require.NotNil(t, first.NextCursor)

	second, err := flow.ListAds(ctx, &dto.ListAdsRequest{Limit: 2, Cursor: *first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Ads, 2)
	assert.Equal(t, ids[2], second.Ads[0].ID)
	assert.Equal(t, ids[1], second.Ads[1].ID)
	require.NotNil(t, second.NextCursor)

	last, err := flow.ListAds(ctx, &dto.ListAdsRequest{Limit: 2, Cursor: *second.NextCursor})
	require.NoError(t, err)
	require.Len(t, last.Ads, 1)
	assert.Equal(t, ids[0], last.Ads[0].ID)
	assert.Nil(t, last.NextCursor)

	_, err = flow.ListAds(ctx, &dto.ListAdsRequest{Cursor: "yesterday"})
	require.Error(t, err)
	assert.True(t, businessflow.IsValidation(err))
}

func TestListPublicParticipation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	flow := newAdFlow(env, nil)
	ad := env.createAd(t, 1)

	_, err := env.fixtures.CreateTestComment(ad.ID, 1, "hidden", models.ParticipationStatusPending)
	require.NoError(t, err)
	approved, err := env.fixtures.CreateTestComment(ad.ID, 2, "visible", models.ParticipationStatusApproved)
	require.NoError(t, err)
	pinned, err := env.fixtures.CreateTestComment(ad.ID, 3, "pinned", models.ParticipationStatusAdopted)
	require.NoError(t, err)
	require.NoError(t, env.commentRepo.SetPinned(ctx, pinned.ID, true))

	comments, err := flow.ListComments(ctx, ad.ID)
	require.NoError(t, err)
	require.Len(t, comments.Comments, 2)
	assert.Equal(t, pinned.ID, comments.Comments[0].ID)
	assert.Equal(t, approved.ID, comments.Comments[1].ID)

	low, err := env.fixtures.CreateTestUGC(ad.ID, 4, models.ParticipationStatusApproved, 0.2)
	require.NoError(t, err)
	high, err := env.fixtures.CreateTestUGC(ad.ID, 5, models.ParticipationStatusApproved, 0.9)
	require.NoError(t, err)
	_, err = env.fixtures.CreateTestUGC(ad.ID, 6, models.ParticipationStatusRejected, 1.0)
	require.NoError(t, err)

	ugc, err := flow.ListUGC(ctx, ad.ID)
	require.NoError(t, err)
	require.Len(t, ugc.Items, 2)
	assert.Equal(t, high.ID, ugc.Items[0].ID)
	assert.Equal(t, low.ID, ugc.Items[1].ID)

	_, err = flow.ListComments(ctx, 9999)
	assert.True(t, businessflow.IsNotFound(err))
}

func TestGetSurveyAndParticipation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	flow := newAdFlow(env, nil)
	ad := env.createAd(t, 1)

	_, err := flow.GetSurvey(ctx, ad.ID)
	assert.True(t, businessflow.IsNotFound(err))

	survey, err := env.fixtures.CreateTestSurvey(ad.ID, "First?", "Second?")
	require.NoError(t, err)

	resp, err := flow.GetSurvey(ctx, ad.ID)
	require.NoError(t, err)
	assert.Equal(t, survey.ID, resp.Survey.ID)
	require.Len(t, resp.Survey.Questions, 2)
	assert.Equal(t, "First?", resp.Survey.Questions[0].QuestionText)
	assert.Equal(t, []string{"yes", "no"}, resp.Survey.Questions[0].Options)

	_, err = env.fixtures.CreateTestComment(ad.ID, 7, "mine", models.ParticipationStatusPending)
	require.NoError(t, err)
	_, err = env.fixtures.CreateTestComment(ad.ID, 8, "not mine", models.ParticipationStatusPending)
	require.NoError(t, err)
	campaign, err := env.fixtures.CreateTestCampaign(ad.ID, 5, nil)
	require.NoError(t, err)
	_, err = env.fixtures.CreateTestApplicant(campaign.ID, 7, models.ApplicantStatusPending)
	require.NoError(t, err)

	mine, err := flow.GetMyParticipation(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, mine.Comments, 1)
	assert.Empty(t, mine.UGC)
	assert.Empty(t, mine.SurveyAnswers)
	assert.Len(t, mine.Applications, 1)

	_, err = flow.GetMyParticipation(ctx, 0)
	assert.True(t, businessflow.IsUnauthorized(err))
}

type memoryAdCache struct {
	ads  map[uint]models.Ad
	hits int
	sets int
}

func (c *memoryAdCache) Get(ctx context.Context, adID uint) (*models.Ad, bool) {
	ad, ok := c.ads[adID]
	if !ok {
		return nil, false
	}
	c.hits++
	return &ad, true
}

func (c *memoryAdCache) Set(ctx context.Context, ad *models.Ad) {
	c.sets++
	c.ads[ad.ID] = *ad
}

func TestAdLookupsGoThroughCache(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	cache := &memoryAdCache{ads: map[uint]models.Ad{}}
	flow := newAdFlow(env, cache)
	ad := env.createAd(t, 1)

	_, err := flow.GetAd(ctx, ad.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)
	assert.Zero(t, cache.hits)

	got, err := flow.GetAd(ctx, ad.ID)
	require.NoError(t, err)
	assert.Equal(t, ad.Title, got.Ad.Title)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, 1, cache.hits)

	_, err = flow.GetAd(ctx, 9999)
	assert.True(t, businessflow.IsNotFound(err))
	assert.Equal(t, 1, cache.sets)
}
