package businessflow_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/usbest/usbest-backend/app/dto"
	businessflow "github.com/usbest/usbest-backend/business_flow"
	"github.com/usbest/usbest-backend/models"
	"github.com/usbest/usbest-backend/repository"
	testingutil "github.com/usbest/usbest-backend/testing"
	"github.com/usbest/usbest-backend/utils"
	"go.uber.org/zap"
)

func newParticipationFlow(env *testEnv, exposureRepo repository.AdExposureRepository) businessflow.ParticipationFlow {
	if exposureRepo == nil {
		exposureRepo = env.exposureRepo
	}
	return businessflow.NewParticipationFlow(
		env.adRepo,
		env.commentRepo,
		env.ugcRepo,
		env.surveyRepo,
		env.answerRepo,
		exposureRepo,
		nil,
		env.db.DB,
		zap.NewNop(),
	)
}

func TestRecordComment(t *testing.T) {
	ctx := context.Background()

	t.Run("RecordsPendingCommentWithExposure", func(t *testing.T) {
		env := newTestEnv(t)
		flow := newParticipationFlow(env, nil)
		ad := env.createAd(t, 1)

		resp, err := flow.RecordComment(ctx, &dto.CreateCommentRequest{
			AdID:    ad.ID,
			UserID:  42,
			Content: "  Love the lime flavour  ",
		}, nil)
		require.NoError(t, err)

		assert.Equal(t, "Love the lime flavour", resp.Comment.Content)
		assert.Equal(t, string(models.ParticipationStatusPending), resp.Comment.Status)
		assert.False(t, resp.Comment.IsPinned)
		require.Len(t, resp.SideEffects, 1)
		assert.Equal(t, dto.SideEffectExposure, resp.SideEffects[0].Name)
		assert.True(t, resp.SideEffects[0].OK)

		stored, err := env.commentRepo.ByID(ctx, resp.Comment.ID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, uint(42), stored.UserID)

		exposures, err := env.exposureRepo.ByFilter(ctx, models.AdExposureFilter{AdID: &ad.ID}, "", 0, 0)
		require.NoError(t, err)
		require.Len(t, exposures, 1)
		assert.Equal(t, models.ParticipationComment, exposures[0].Source)
	})

	t.Run("ValidationErrors", func(t *testing.T) {
		env := newTestEnv(t)
		flow := newParticipationFlow(env, nil)
		ad := env.createAd(t, 1)

		cases := []struct {
			name    string
			content string
			code    string
		}{
			{"Empty", "", "INVALID_CONTENT"},
			{"Whitespace", "   \n\t", "INVALID_CONTENT"},
			{"TooLong", strings.Repeat("ã", utils.MaxCommentLength+1), "CONTENT_TOO_LONG"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := flow.RecordComment(ctx, &dto.CreateCommentRequest{AdID: ad.ID, UserID: 7, Content: tc.content}, nil)
				require.Error(t, err)
				assert.True(t, businessflow.IsValidation(err))
				assert.Equal(t, tc.code, businessflow.ErrorCode(err))
			})
		}

		assert.Zero(t, env.count(t, &models.Comment{}))
		assert.Zero(t, env.count(t, &models.AdExposure{}))
	})

	t.Run("ExactlyMaxLengthIsAccepted", func(t *testing.T) {
		env := newTestEnv(t)
		flow := newParticipationFlow(env, nil)
		ad := env.createAd(t, 1)

		_, err := flow.RecordComment(ctx, &dto.CreateCommentRequest{
			AdID:    ad.ID,
			UserID:  7,
			Content: strings.Repeat("a", utils.MaxCommentLength),
		}, nil)
		require.NoError(t, err)
	})

	t.Run("AnonymousUserIsUnauthorized", func(t *testing.T) {
		env := newTestEnv(t)
		flow := newParticipationFlow(env, nil)
		ad := env.createAd(t, 1)

		_, err := flow.RecordComment(ctx, &dto.CreateCommentRequest{AdID: ad.ID, Content: "hello"}, nil)
		require.Error(t, err)
		assert.True(t, businessflow.IsUnauthorized(err))
	})

	t.Run("ParentMustBelongToSameAd", func(t *testing.T) {
		env := newTestEnv(t)
		flow := newParticipationFlow(env, nil)
		ad := env.createAd(t, 1)
		other := env.createAd(t, 1)

		parent, err := env.fixtures.CreateTestComment(other.ID, 3, "elsewhere", models.ParticipationStatusApproved)
		require.NoError(t, err)

		_, err = flow.RecordComment(ctx, &dto.CreateCommentRequest{AdID: ad.ID, UserID: 7, Content: "reply", ParentID: &parent.ID}, nil)
		require.Error(t, err)
		assert.True(t, businessflow.IsValidation(err))
		assert.Equal(t, "INVALID_PARENT", businessflow.ErrorCode(err))

		missing := uint(9999)
		_, err = flow.RecordComment(ctx, &dto.CreateCommentRequest{AdID: ad.ID, UserID: 7, Content: "reply", ParentID: &missing}, nil)
		assert.True(t, businessflow.IsValidation(err))

		sibling, err := env.fixtures.CreateTestComment(ad.ID, 3, "first", models.ParticipationStatusApproved)
		require.NoError(t, err)
		resp, err := flow.RecordComment(ctx, &dto.CreateCommentRequest{AdID: ad.ID, UserID: 7, Content: "reply", ParentID: &sibling.ID}, nil)
		require.NoError(t, err)
		require.NotNil(t, resp.Comment.ParentID)
		assert.Equal(t, sibling.ID, *resp.Comment.ParentID)
	})

	t.Run("ExposureFailureDoesNotFailComment", func(t *testing.T) {
		env := newTestEnv(t)
		flow := newParticipationFlow(env, failingExposureRepo{env.exposureRepo})
		ad := env.createAd(t, 1)

		resp, err := flow.RecordComment(ctx, &dto.CreateCommentRequest{AdID: ad.ID, UserID: 7, Content: "still saved"}, nil)
		require.NoError(t, err)
		require.Len(t, resp.SideEffects, 1)
		assert.False(t, resp.SideEffects[0].OK)
		assert.Contains(t, resp.SideEffects[0].Error, errStoreUnavailable.Error())

		assert.Equal(t, int64(1), env.count(t, &models.Comment{}))
		assert.Zero(t, env.count(t, &models.AdExposure{}))
	})
}

func TestParticipationGating(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name string
		opts []testingutil.AdOption
	}{
		{"Paused", []testingutil.AdOption{testingutil.WithStatus(models.AdStatusPaused)}},
		{"Draft", []testingutil.AdOption{testingutil.WithStatus(models.AdStatusDraft)}},
		{"CapabilitiesOff", []testingutil.AdOption{testingutil.WithCapabilities(false, false, false, false)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			flow := newParticipationFlow(env, nil)
			ad := env.createAd(t, 1, tc.opts...)
			_, err := env.fixtures.CreateTestSurvey(ad.ID, "Would you buy it?")
			require.NoError(t, err)

			_, err = flow.RecordComment(ctx, &dto.CreateCommentRequest{AdID: ad.ID, UserID: 7, Content: "hi"}, nil)
			assert.True(t, businessflow.IsNotFound(err), "comment: %v", err)

			_, err = flow.RecordUGC(ctx, &dto.CreateUGCRequest{AdID: ad.ID, UserID: 7, MediaURL: "https://cdn.example.com/u.jpg", Type: "image"}, nil)
			assert.True(t, businessflow.IsNotFound(err), "ugc: %v", err)

			_, err = flow.RecordSurveyAnswers(ctx, &dto.SubmitSurveyAnswersRequest{
				AdID:    ad.ID,
				UserID:  7,
				Answers: []dto.SurveyAnswerInput{{QuestionID: 1, AnswerOptions: []string{"yes"}}},
			}, nil)
			assert.True(t, businessflow.IsNotFound(err), "survey: %v", err)

			assert.Zero(t, env.count(t, &models.Comment{}))
			assert.Zero(t, env.count(t, &models.UGCItem{}))
			assert.Zero(t, env.count(t, &models.SurveyAnswer{}))
			assert.Zero(t, env.count(t, &models.AdExposure{}))
		})
	}

	t.Run("SingleCapabilityOnlyOpensItsKind", func(t *testing.T) {
		env := newTestEnv(t)
		flow := newParticipationFlow(env, nil)
		ad := env.createAd(t, 1, testingutil.WithCapabilities(false, true, false, false))

		_, err := flow.RecordComment(ctx, &dto.CreateCommentRequest{AdID: ad.ID, UserID: 7, Content: "hi"}, nil)
		assert.True(t, businessflow.IsNotFound(err))
		assert.Equal(t, "PARTICIPATION_UNAVAILABLE", businessflow.ErrorCode(err))

		_, err = flow.RecordUGC(ctx, &dto.CreateUGCRequest{AdID: ad.ID, UserID: 7, MediaURL: "https://cdn.example.com/u.jpg", Type: "image"}, nil)
		assert.NoError(t, err)
	})

	t.Run("MissingAd", func(t *testing.T) {
		env := newTestEnv(t)
		flow := newParticipationFlow(env, nil)

		_, err := flow.RecordComment(ctx, &dto.CreateCommentRequest{AdID: 404, UserID: 7, Content: "hi"}, nil)
		assert.True(t, businessflow.IsNotFound(err))
	})

	t.Run("CachedAdDoesNotOutliveCapabilityChange", func(t *testing.T) {
		env := newTestEnv(t)
		cache := &memoryAdCache{ads: map[uint]models.Ad{}}
		participation := businessflow.NewParticipationFlow(env.adRepo, env.commentRepo, env.ugcRepo, env.surveyRepo, env.answerRepo, env.exposureRepo, cache, env.db.DB, zap.NewNop())
		tester := businessflow.NewTesterFlow(env.adRepo, env.campaignRepo, env.applicantRepo, env.reportRepo, env.exposureRepo, env.auditRepo, cache, env.db.DB, zap.NewNop())
		reads := newAdFlow(env, cache)

		ad := env.createAd(t, 1)
		_, err := env.fixtures.CreateTestCampaign(ad.ID, 10, nil)
		require.NoError(t, err)

		_, err = participation.RecordComment(ctx, &dto.CreateCommentRequest{AdID: ad.ID, UserID: 7, Content: "first"}, nil)
		require.NoError(t, err)
		_, err = reads.GetAd(ctx, ad.ID)
		require.NoError(t, err)
		require.Contains(t, cache.ads, ad.ID)

		require.NoError(t, env.db.DB.Model(&models.Ad{}).Where("id = ?", ad.ID).
			Updates(map[string]any{"has_comments": false, "has_tester": false, "status": models.AdStatusPaused}).Error)

		_, err = participation.RecordComment(ctx, &dto.CreateCommentRequest{AdID: ad.ID, UserID: 7, Content: "second"}, nil)
		assert.Equal(t, "PARTICIPATION_UNAVAILABLE", businessflow.ErrorCode(err))
		assert.Equal(t, int64(1), env.count(t, &models.Comment{}))

		_, err = apply(tester, ad.ID, 7)
		assert.True(t, businessflow.IsNotFound(err))
		assert.Zero(t, env.count(t, &models.TesterApplicant{}))

		assert.Equal(t, models.AdStatusPaused, cache.ads[ad.ID].Status)
	})
}

func TestRecordUGC(t *testing.T) {
	ctx := context.Background()

	t.Run("RecordsPendingItem", func(t *testing.T) {
		env := newTestEnv(t)
		flow := newParticipationFlow(env, nil)
		ad := env.createAd(t, 1)

		thumb := "https://cdn.example.com/ugc/7/thumb.jpg"
		resp, err := flow.RecordUGC(ctx, &dto.CreateUGCRequest{
			AdID:         ad.ID,
			UserID:       7,
			MediaURL:     " https://cdn.example.com/ugc/7/clip.mp4 ",
			ThumbnailURL: &thumb,
			Type:         "video",
		}, nil)
		require.NoError(t, err)

		assert.Equal(t, "https://cdn.example.com/ugc/7/clip.mp4", resp.UGC.MediaURL)
		assert.Equal(t, "video", resp.UGC.Type)
		assert.Equal(t, string(models.ParticipationStatusPending), resp.UGC.Status)
		assert.False(t, resp.UGC.PRBadge)
		assert.Zero(t, resp.UGC.QualityScore)
		require.NotNil(t, resp.UGC.ThumbnailURL)
		assert.Equal(t, thumb, *resp.UGC.ThumbnailURL)
		assert.Equal(t, int64(1), env.count(t, &models.AdExposure{}))
	})

	t.Run("EmptyMediaURLWritesNothing", func(t *testing.T) {
		env := newTestEnv(t)
		flow := newParticipationFlow(env, nil)
		ad := env.createAd(t, 1)

		for _, url := range []string{"", "   "} {
			_, err := flow.RecordUGC(ctx, &dto.CreateUGCRequest{AdID: ad.ID, UserID: 7, MediaURL: url, Type: "image"}, nil)
			require.Error(t, err)
			assert.True(t, businessflow.IsValidation(err))
			assert.Equal(t, "INVALID_MEDIA_URL", businessflow.ErrorCode(err))
		}

		assert.Zero(t, env.count(t, &models.UGCItem{}))
		assert.Zero(t, env.count(t, &models.AdExposure{}))
	})

	t.Run("UnknownTypeIsRejected", func(t *testing.T) {
		env := newTestEnv(t)
		flow := newParticipationFlow(env, nil)
		ad := env.createAd(t, 1)

		_, err := flow.RecordUGC(ctx, &dto.CreateUGCRequest{AdID: ad.ID, UserID: 7, MediaURL: "https://cdn.example.com/a.gif", Type: "audio"}, nil)
		require.Error(t, err)
		assert.True(t, businessflow.IsValidation(err))
		assert.Equal(t, "INVALID_UGC_TYPE", businessflow.ErrorCode(err))
		assert.Zero(t, env.count(t, &models.UGCItem{}))
	})
}

func TestRecordSurveyAnswers(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*testEnv, businessflow.ParticipationFlow, *models.Ad, *models.Survey) {
		env := newTestEnv(t)
		flow := newParticipationFlow(env, nil)
		ad := env.createAd(t, 1)
		survey, err := env.fixtures.CreateTestSurvey(ad.ID, "Would you buy it?", "What would you change?")
		require.NoError(t, err)
		require.Len(t, survey.Questions, 2)
		return env, flow, ad, survey
	}

	t.Run("ResubmissionOverwrites", func(t *testing.T) {
		env, flow, ad, survey := setup(t)
		q1 := survey.Questions[0].ID

		first, err := flow.RecordSurveyAnswers(ctx, &dto.SubmitSurveyAnswersRequest{
			AdID:    ad.ID,
			UserID:  7,
			Answers: []dto.SurveyAnswerInput{{QuestionID: q1, AnswerOptions: []string{"no"}}},
		}, nil)
		require.NoError(t, err)
		require.Len(t, first.Answers, 1)
		assert.Equal(t, survey.ID, first.SurveyID)

		second, err := flow.RecordSurveyAnswers(ctx, &dto.SubmitSurveyAnswersRequest{
			AdID:    ad.ID,
			UserID:  7,
			Answers: []dto.SurveyAnswerInput{{QuestionID: q1, AnswerOptions: []string{"yes"}}},
		}, nil)
		require.NoError(t, err)
		require.Len(t, second.Answers, 1)
		assert.Equal(t, []string{"yes"}, second.Answers[0].AnswerOptions)

		rows, err := env.answerRepo.ByFilter(ctx, models.SurveyAnswerFilter{SurveyID: &survey.ID, UserID: utils.ToPtr(uint(7))}, "", 0, 0)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.JSONEq(t, `["yes"]`, string(rows[0].AnswerOptions))
	})

	t.Run("LastDuplicateInBatchWins", func(t *testing.T) {
		env, flow, ad, survey := setup(t)
		q1, q2 := survey.Questions[0].ID, survey.Questions[1].ID

		resp, err := flow.RecordSurveyAnswers(ctx, &dto.SubmitSurveyAnswersRequest{
			AdID:   ad.ID,
			UserID: 7,
			Answers: []dto.SurveyAnswerInput{
				{QuestionID: q1, AnswerOptions: []string{"no"}},
				{QuestionID: q2, AnswerText: utils.ToPtr("Less sugar")},
				{QuestionID: q1, AnswerOptions: []string{"yes"}},
			},
		}, nil)
		require.NoError(t, err)
		require.Len(t, resp.Answers, 2)
		require.Len(t, resp.SideEffects, 1)
		assert.Equal(t, int64(1), env.count(t, &models.AdExposure{}))

		byQuestion := map[uint]dto.SurveyAnswerItem{}
		for _, a := range resp.Answers {
			byQuestion[a.QuestionID] = a
		}
		assert.Equal(t, []string{"yes"}, byQuestion[q1].AnswerOptions)
		require.NotNil(t, byQuestion[q2].AnswerText)
		assert.Equal(t, "Less sugar", *byQuestion[q2].AnswerText)
		assert.Equal(t, int64(2), env.count(t, &models.SurveyAnswer{}))
	})

	t.Run("ValidationErrors", func(t *testing.T) {
		env, flow, ad, survey := setup(t)
		q1 := survey.Questions[0].ID

		cases := []struct {
			name    string
			answers []dto.SurveyAnswerInput
			code    string
		}{
			{"NoAnswers", nil, "NO_ANSWERS"},
			{"ZeroQuestion", []dto.SurveyAnswerInput{{AnswerText: utils.ToPtr("x")}}, "INVALID_ANSWER"},
			{"NoContent", []dto.SurveyAnswerInput{{QuestionID: q1}}, "INVALID_ANSWER"},
			{"BlankText", []dto.SurveyAnswerInput{{QuestionID: q1, AnswerText: utils.ToPtr("  ")}}, "INVALID_ANSWER"},
			{"ForeignQuestion", []dto.SurveyAnswerInput{{QuestionID: q1 + 100, AnswerOptions: []string{"yes"}}}, "INVALID_QUESTION"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := flow.RecordSurveyAnswers(ctx, &dto.SubmitSurveyAnswersRequest{AdID: ad.ID, UserID: 7, Answers: tc.answers}, nil)
				require.Error(t, err)
				assert.True(t, businessflow.IsValidation(err))
				assert.Equal(t, tc.code, businessflow.ErrorCode(err))
			})
		}
		assert.Zero(t, env.count(t, &models.SurveyAnswer{}))
	})

	t.Run("NoActiveSurvey", func(t *testing.T) {
		env := newTestEnv(t)
		flow := newParticipationFlow(env, nil)
		ad := env.createAd(t, 1)

		_, err := flow.RecordSurveyAnswers(ctx, &dto.SubmitSurveyAnswersRequest{
			AdID:    ad.ID,
			UserID:  7,
			Answers: []dto.SurveyAnswerInput{{QuestionID: 1, AnswerOptions: []string{"yes"}}},
		}, nil)
		require.Error(t, err)
		assert.True(t, businessflow.IsNotFound(err))
		assert.Equal(t, "SURVEY_NOT_FOUND", businessflow.ErrorCode(err))
	})
}
