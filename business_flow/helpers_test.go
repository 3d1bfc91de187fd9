package businessflow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/usbest/usbest-backend/config"
	"github.com/usbest/usbest-backend/models"
	"github.com/usbest/usbest-backend/repository"
	testingutil "github.com/usbest/usbest-backend/testing"
)

var errStoreUnavailable = errors.New("store unavailable")

// testEnv bundles a fresh database with real repositories
type testEnv struct {
	db       *testingutil.TestDB
	fixtures *testingutil.TestFixtures

	adRepo        repository.AdRepository
	commentRepo   repository.CommentRepository
	ugcRepo       repository.UGCRepository
	surveyRepo    repository.SurveyRepository
	answerRepo    repository.SurveyAnswerRepository
	campaignRepo  repository.TesterCampaignRepository
	applicantRepo repository.TesterApplicantRepository
	reportRepo    repository.TesterReportRepository
	rewardRepo    repository.RewardRepository
	exposureRepo  repository.AdExposureRepository
	auditRepo     repository.AuditLogRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tdb := testingutil.NewTestDB(t)
	return &testEnv{
		db:            tdb,
		fixtures:      testingutil.NewTestFixtures(tdb),
		adRepo:        repository.NewAdRepository(tdb.DB),
		commentRepo:   repository.NewCommentRepository(tdb.DB),
		ugcRepo:       repository.NewUGCRepository(tdb.DB),
		surveyRepo:    repository.NewSurveyRepository(tdb.DB),
		answerRepo:    repository.NewSurveyAnswerRepository(tdb.DB),
		campaignRepo:  repository.NewTesterCampaignRepository(tdb.DB),
		applicantRepo: repository.NewTesterApplicantRepository(tdb.DB),
		reportRepo:    repository.NewTesterReportRepository(tdb.DB),
		rewardRepo:    repository.NewRewardRepository(tdb.DB),
		exposureRepo:  repository.NewAdExposureRepository(tdb.DB),
		auditRepo:     repository.NewAuditLogRepository(tdb.DB),
	}
}

func (e *testEnv) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.DB.Model(model).Count(&n).Error)
	return n
}

func (e *testEnv) createAd(t *testing.T, advertiserID uint, opts ...testingutil.AdOption) *models.Ad {
	t.Helper()
	ad, err := e.fixtures.CreateTestAd(advertiserID, opts...)
	require.NoError(t, err)
	return ad
}

func testRewardConfig() config.RewardConfig {
	return config.RewardConfig{
		Type:         models.RewardTypeCoupon,
		CommentValue: "COMMENT_ADOPTION_REWARD",
		UGCValue:     "UGC_ADOPTION_REWARD",
	}
}

type failingExposureRepo struct {
	repository.AdExposureRepository
}

func (failingExposureRepo) Save(ctx context.Context, exposure *models.AdExposure) error {
	return errStoreUnavailable
}

type failingRewardRepo struct {
	repository.RewardRepository
}

func (failingRewardRepo) Save(ctx context.Context, reward *models.Reward) error {
	return errStoreUnavailable
}

type failingReportRepo struct {
	repository.TesterReportRepository
}

func (failingReportRepo) Save(ctx context.Context, report *models.TesterReport) error {
	return errStoreUnavailable
}
