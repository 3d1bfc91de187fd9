package businessflow_test

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/usbest/usbest-backend/app/dto"
	businessflow "github.com/usbest/usbest-backend/business_flow"
	"github.com/usbest/usbest-backend/models"
	"github.com/usbest/usbest-backend/repository"
	testingutil "github.com/usbest/usbest-backend/testing"
	"github.com/usbest/usbest-backend/utils"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func newTesterFlow(env *testEnv, reportRepo repository.TesterReportRepository) businessflow.TesterFlow {
	if reportRepo == nil {
		reportRepo = env.reportRepo
	}
	return businessflow.NewTesterFlow(
		env.adRepo,
		env.campaignRepo,
		env.applicantRepo,
		reportRepo,
		env.exposureRepo,
		env.auditRepo,
		nil,
		env.db.DB,
		zap.NewNop(),
	)
}

func apply(flow businessflow.TesterFlow, adID, userID uint) (*dto.ApplyTesterResponse, error) {
	return flow.Apply(context.Background(), &dto.ApplyTesterRequest{
		AdID:            adID,
		UserID:          userID,
		ApplicationData: map[string]any{"household_size": 3},
	}, nil)
}

func TestApply(t *testing.T) {
	ctx := context.Background()

	t.Run("CapacityTwoScenario", func(t *testing.T) {
		env := newTestEnv(t)
		flow := newTesterFlow(env, nil)
		ad := env.createAd(t, 1)
		campaign, err := env.fixtures.CreateTestCampaign(ad.ID, 2, nil)
		require.NoError(t, err)

		a, err := apply(flow, ad.ID, 101)
		require.NoError(t, err)
		assert.Equal(t, string(models.ApplicantStatusPending), a.Applicant.Status)
		assert.Equal(t, campaign.ID, a.Applicant.CampaignID)
		assert.EqualValues(t, 3, a.Applicant.ApplicationData["household_size"])
		require.Len(t, a.SideEffects, 1)
		assert.True(t, a.SideEffects[0].OK)

		_, err = apply(flow, ad.ID, 102)
		require.NoError(t, err)

		_, err = apply(flow, ad.ID, 103)
		require.Error(t, err)
		assert.True(t, businessflow.IsCapacity(err))
		assert.Equal(t, "CAMPAIGN_FULL", businessflow.ErrorCode(err))

		_, err = apply(flow, ad.ID, 101)
		require.Error(t, err)
		assert.True(t, businessflow.IsDuplicate(err))
		assert.Equal(t, "ALREADY_APPLIED", businessflow.ErrorCode(err))

		assert.Equal(t, int64(2), env.count(t, &models.TesterApplicant{}))
	})

	t.Run("SecondApplicationIsDuplicate", func(t *testing.T) {
		env := newTestEnv(t)
		flow := newTesterFlow(env, nil)
		ad := env.createAd(t, 1)
		_, err := env.fixtures.CreateTestCampaign(ad.ID, 10, nil)
		require.NoError(t, err)

		_, err = apply(flow, ad.ID, 7)
		require.NoError(t, err)
		_, err = apply(flow, ad.ID, 7)
		require.Error(t, err)
		assert.True(t, businessflow.IsDuplicate(err))
		assert.Equal(t, int64(1), env.count(t, &models.TesterApplicant{}))
	})

	t.Run("ConcurrentApplicationsNeverExceedCapacity", func(t *testing.T) {
		env := newTestEnv(t)
		flow := newTesterFlow(env, nil)
		ad := env.createAd(t, 1)
		const capacity = 5
		campaign, err := env.fixtures.CreateTestCampaign(ad.ID, capacity, nil)
		require.NoError(t, err)

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			accepted int
			full     int
			other    []error
		)
		for i := 0; i < capacity+5; i++ {
			wg.Add(1)
			go func(userID uint) {
				defer wg.Done()
				_, err := apply(flow, ad.ID, userID)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					accepted++
				case businessflow.IsCapacity(err):
					full++
				default:
					other = append(other, err)
				}
			}(uint(1000 + i))
		}
		wg.Wait()

		assert.Empty(t, other)
		assert.Equal(t, capacity, accepted)
		assert.Equal(t, 5, full)

		n, err := env.applicantRepo.Count(ctx, models.TesterApplicantFilter{CampaignID: &campaign.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(capacity), n)
	})

	t.Run("NoOpenCampaign", func(t *testing.T) {
		env := newTestEnv(t)
		flow := newTesterFlow(env, nil)

		noCampaign := env.createAd(t, 1)
		expired := env.createAd(t, 1)
		_, err := env.fixtures.CreateTestCampaign(expired.ID, 5, utils.ToPtr(time.Now().UTC().Add(-time.Hour)))
		require.NoError(t, err)
		disabled := env.createAd(t, 1, testingutil.WithCapabilities(true, true, true, false))
		_, err = env.fixtures.CreateTestCampaign(disabled.ID, 5, nil)
		require.NoError(t, err)

		for _, adID := range []uint{noCampaign.ID, expired.ID, disabled.ID, 9999} {
			_, err := apply(flow, adID, 7)
			require.Error(t, err)
			assert.True(t, businessflow.IsNotFound(err))
			assert.Equal(t, "NO_OPEN_CAMPAIGN", businessflow.ErrorCode(err))
		}
		assert.Zero(t, env.count(t, &models.TesterApplicant{}))
	})

	t.Run("FutureDeadlineIsOpen", func(t *testing.T) {
		env := newTestEnv(t)
		flow := newTesterFlow(env, nil)
		ad := env.createAd(t, 1)
		_, err := env.fixtures.CreateTestCampaign(ad.ID, 5, utils.ToPtr(time.Now().UTC().Add(24*time.Hour)))
		require.NoError(t, err)

		_, err = apply(flow, ad.ID, 7)
		assert.NoError(t, err)
	})

	t.Run("AnonymousUserIsUnauthorized", func(t *testing.T) {
		env := newTestEnv(t)
		flow := newTesterFlow(env, nil)

		_, err := apply(flow, 1, 0)
		assert.True(t, businessflow.IsUnauthorized(err))
	})
}

func TestSubmitReport(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T, failReports bool, status models.ApplicantStatus) (*testEnv, businessflow.TesterFlow, *models.TesterApplicant) {
		env := newTestEnv(t)
		var reportRepo repository.TesterReportRepository
		if failReports {
			reportRepo = failingReportRepo{env.reportRepo}
		}
		flow := newTesterFlow(env, reportRepo)
		ad := env.createAd(t, 1)
		campaign, err := env.fixtures.CreateTestCampaign(ad.ID, 5, nil)
		require.NoError(t, err)
		applicant, err := env.fixtures.CreateTestApplicant(campaign.ID, 7, status)
		require.NoError(t, err)
		return env, flow, applicant
	}

	t.Run("CompletesSelectedApplication", func(t *testing.T) {
		env, flow, applicant := setup(t, false, models.ApplicantStatusSelected)

		resp, err := flow.SubmitReport(ctx, &dto.SubmitTesterReportRequest{
			UserID:    7,
			Content:   "Tastes great chilled, too fizzy warm.",
			MediaURLs: []string{"https://cdn.example.com/ugc/7/fridge.jpg"},
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, applicant.ID, resp.Report.ApplicantID)
		assert.Equal(t, []string{"https://cdn.example.com/ugc/7/fridge.jpg"}, resp.Report.MediaURLs)
		assert.Equal(t, string(models.ApplicantStatusCompleted), resp.Applicant.Status)

		stored, err := env.applicantRepo.ByID(ctx, applicant.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ApplicantStatusCompleted, stored.Status)

		report, err := env.reportRepo.ByApplicantID(ctx, applicant.ID)
		require.NoError(t, err)
		require.NotNil(t, report)
		assert.Equal(t, models.StringList{"https://cdn.example.com/ugc/7/fridge.jpg"}, report.MediaURLs)
	})

	t.Run("NoSelectedApplication", func(t *testing.T) {
		env, flow, applicant := setup(t, false, models.ApplicantStatusPending)

		_, err := flow.SubmitReport(ctx, &dto.SubmitTesterReportRequest{UserID: 7, Content: "report"}, nil)
		require.Error(t, err)
		assert.True(t, businessflow.IsNotFound(err))
		assert.Equal(t, "NO_SELECTED_APPLICATION", businessflow.ErrorCode(err))

		_, err = flow.SubmitReport(ctx, &dto.SubmitTesterReportRequest{UserID: 8, ApplicantID: &applicant.ID, Content: "report"}, nil)
		assert.True(t, businessflow.IsNotFound(err))
		assert.Zero(t, env.count(t, &models.TesterReport{}))
	})

	t.Run("SecondReportIsRejected", func(t *testing.T) {
		_, flow, applicant := setup(t, false, models.ApplicantStatusSelected)

		_, err := flow.SubmitReport(ctx, &dto.SubmitTesterReportRequest{UserID: 7, ApplicantID: &applicant.ID, Content: "first"}, nil)
		require.NoError(t, err)
		_, err = flow.SubmitReport(ctx, &dto.SubmitTesterReportRequest{UserID: 7, ApplicantID: &applicant.ID, Content: "second"}, nil)
		assert.True(t, businessflow.IsNotFound(err))
	})

	t.Run("ReportFailureKeepsApplicantSelected", func(t *testing.T) {
		env, flow, applicant := setup(t, true, models.ApplicantStatusSelected)

		_, err := flow.SubmitReport(ctx, &dto.SubmitTesterReportRequest{UserID: 7, Content: "report"}, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, errStoreUnavailable)
		assert.Equal(t, "SUBMIT_REPORT_FAILED", businessflow.ErrorCode(err))

		stored, err := env.applicantRepo.ByID(ctx, applicant.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ApplicantStatusSelected, stored.Status)
		assert.Zero(t, env.count(t, &models.TesterReport{}))
	})

	t.Run("EmptyContent", func(t *testing.T) {
		_, flow, _ := setup(t, false, models.ApplicantStatusSelected)

		_, err := flow.SubmitReport(ctx, &dto.SubmitTesterReportRequest{UserID: 7, Content: "  "}, nil)
		assert.True(t, businessflow.IsValidation(err))
	})
}

func TestSelectApplicant(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	flow := newTesterFlow(env, nil)
	ad := env.createAd(t, 1)
	campaign, err := env.fixtures.CreateTestCampaign(ad.ID, 5, nil)
	require.NoError(t, err)
	applicant, err := env.fixtures.CreateTestApplicant(campaign.ID, 7, models.ApplicantStatusPending)
	require.NoError(t, err)

	t.Run("OtherAdvertiserIsRejected", func(t *testing.T) {
		_, err := flow.SelectApplicant(ctx, &dto.SelectApplicantRequest{AdvertiserID: 2, ApplicantID: applicant.ID}, nil)
		require.Error(t, err)
		assert.True(t, businessflow.IsNotAdOwner(err))
	})

	t.Run("OwnerSelectsPendingApplicant", func(t *testing.T) {
		resp, err := flow.SelectApplicant(ctx, &dto.SelectApplicantRequest{AdvertiserID: 1, ApplicantID: applicant.ID}, businessflow.NewClientMetadata("10.0.0.1", "test-agent"))
		require.NoError(t, err)
		assert.Equal(t, string(models.ApplicantStatusSelected), resp.Applicant.Status)
		require.Len(t, resp.SideEffects, 1)
		assert.True(t, resp.SideEffects[0].OK)

		logs, err := env.auditRepo.ListByTarget(ctx, "tester_applicant", applicant.ID)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, models.AuditActionApplicantSelected, logs[0].Action)
	})

	t.Run("SelectingTwiceConflicts", func(t *testing.T) {
		_, err := flow.SelectApplicant(ctx, &dto.SelectApplicantRequest{AdvertiserID: 1, ApplicantID: applicant.ID}, nil)
		require.Error(t, err)
		assert.True(t, businessflow.IsConflict(err))
		assert.Equal(t, "APPLICANT_NOT_PENDING", businessflow.ErrorCode(err))
	})

	t.Run("MissingApplicant", func(t *testing.T) {
		_, err := flow.SelectApplicant(ctx, &dto.SelectApplicantRequest{AdvertiserID: 1, ApplicantID: 9999}, nil)
		assert.True(t, businessflow.IsNotFound(err))
	})
}

func TestGetOpenCampaignAndExport(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	flow := newTesterFlow(env, nil)
	ad := env.createAd(t, 1)
	campaign, err := env.fixtures.CreateTestCampaign(ad.ID, 3, nil)
	require.NoError(t, err)
	for _, userID := range []uint{7, 8} {
		_, err := apply(flow, ad.ID, userID)
		require.NoError(t, err)
	}

	t.Run("DerivedCounts", func(t *testing.T) {
		resp, err := flow.GetOpenCampaign(ctx, ad.ID)
		require.NoError(t, err)
		assert.Equal(t, campaign.ID, resp.Campaign.ID)
		assert.Equal(t, int64(2), resp.Campaign.Applied)
		assert.Equal(t, int64(1), resp.Campaign.RemainingSpots)
	})

	t.Run("ExportWorkbook", func(t *testing.T) {
		resp, err := flow.ExportApplicants(ctx, &dto.ExportApplicantsRequest{AdvertiserID: 1, CampaignID: campaign.ID})
		require.NoError(t, err)
		assert.Equal(t, 2, resp.Rows)
		assert.Contains(t, resp.FileName, ".xlsx")

		xl, err := excelize.OpenReader(bytes.NewReader(resp.Content))
		require.NoError(t, err)
		defer xl.Close()

		rows, err := xl.GetRows("applicants")
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, []string{"id", "user_id", "status", "application_data", "created_at"}, rows[0])
		assert.Equal(t, "7", rows[1][1])
		assert.Equal(t, "pending", rows[1][2])
	})

	t.Run("ExportRequiresOwnership", func(t *testing.T) {
		_, err := flow.ExportApplicants(ctx, &dto.ExportApplicantsRequest{AdvertiserID: 99, CampaignID: campaign.ID})
		assert.True(t, businessflow.IsUnauthorized(err))
	})

	t.Run("ListMyApplications", func(t *testing.T) {
		resp, err := flow.ListMyApplications(ctx, 7)
		require.NoError(t, err)
		require.Len(t, resp.Applications, 1)
		assert.Equal(t, campaign.ID, resp.Applications[0].CampaignID)
	})
}
