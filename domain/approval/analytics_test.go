package approval_test

import (
	"snagline/account"
	"snagline/bizerror"
	"snagline/domain/approval"
	"snagline/testinfra"
	"testing"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func TestQueryPortfolio(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should be restricted to developers", func(t *testing.T) {
		defer viewsTestTeardown(t, testDatabase)
		viewsTestSetup(t, &testDatabase)

		_, err := approval.QueryPortfolio(testinfra.BuildSecCtx(10, account.RoleBuilder))
		Expect(err).To(Equal(bizerror.ErrForbidden))
	})

	t.Run("should roll up per building with most waiting and urgent work first", func(t *testing.T) {
		defer viewsTestTeardown(t, testDatabase)
		viewsTestSetup(t, &testDatabase)

		overview, err := approval.QueryPortfolio(testinfra.BuildSecCtx(10, account.RoleDeveloper))
		Expect(err).To(BeNil())
		Expect(overview.TotalBuildings).To(Equal(2))
		Expect(overview.TotalWorkOrders).To(Equal(6))
		Expect(overview.AwaitingApproval).To(Equal(2))
		Expect(overview.UrgentItems).To(Equal(1))
		Expect(overview.CompletionRate).To(BeNumerically("~", 100.0/6.0, 0.01))

		Expect(len(overview.Buildings)).To(Equal(2))
		alpha := overview.Buildings[0]
		Expect(alpha.BuildingName).To(Equal("Alpha Tower"))
		Expect(alpha.TotalWorkOrders).To(Equal(4))
		Expect(alpha.Pending).To(Equal(1))
		Expect(alpha.InProgress).To(Equal(1))
		Expect(alpha.WaitingApproval).To(Equal(1))
		Expect(alpha.Approved).To(Equal(1))
		Expect(alpha.UrgentCount).To(Equal(1))
		Expect(alpha.CompletionPct).To(BeNumerically("~", 25.0, 0.01))

		beacon := overview.Buildings[1]
		Expect(beacon.BuildingName).To(Equal("Beacon Court"))
		Expect(beacon.TotalWorkOrders).To(Equal(2))
		Expect(beacon.WaitingApproval).To(Equal(1))
		Expect(beacon.UrgentCount).To(Equal(0))
	})
}

func TestQueryBuildingStats(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should separate derived rejected from plain in_progress", func(t *testing.T) {
		defer viewsTestTeardown(t, testDatabase)
		viewsTestSetup(t, &testDatabase)

		stats, err := approval.QueryBuildingStats(2, testinfra.BuildSecCtx(10, account.RoleDeveloper))
		Expect(err).To(BeNil())
		Expect(stats.TotalItems).To(Equal(2))
		Expect(stats.WaitingApproval).To(Equal(1))
		Expect(stats.Rejected).To(Equal(1))
		Expect(stats.InProgress).To(Equal(0))
		Expect(stats.AffectedUnits).To(Equal(2))
		Expect(stats.TradesInvolved).To(Equal(2))
		Expect(stats.CompletionRate).To(Equal(0.0))
	})

	t.Run("should compute completion over all items", func(t *testing.T) {
		defer viewsTestTeardown(t, testDatabase)
		viewsTestSetup(t, &testDatabase)

		stats, err := approval.QueryBuildingStats(1, testinfra.BuildSecCtx(10, account.RoleDeveloper))
		Expect(err).To(BeNil())
		Expect(stats.TotalItems).To(Equal(4))
		Expect(stats.Approved).To(Equal(1))
		Expect(stats.InProgress).To(Equal(1))
		Expect(stats.Rejected).To(Equal(0))
		Expect(stats.CompletionRate).To(BeNumerically("~", 25.0, 0.01))
	})
}

func TestQueryBuildingWorkOrders(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should order attention-needing statuses first", func(t *testing.T) {
		defer viewsTestTeardown(t, testDatabase)
		viewsTestSetup(t, &testDatabase)

		details, err := approval.QueryBuildingWorkOrders(1, testinfra.BuildSecCtx(10, account.RoleDeveloper))
		Expect(err).To(BeNil())

		ids := []types.ID{}
		for _, d := range details {
			ids = append(ids, d.ID)
		}
		Expect(ids).To(Equal([]types.ID{11, 15, 16, 13}))
	})
}

func TestListBuildings(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should list buildings with work orders by name", func(t *testing.T) {
		defer viewsTestTeardown(t, testDatabase)
		viewsTestSetup(t, &testDatabase)

		refs, err := approval.ListBuildings(testinfra.BuildSecCtx(10, account.RoleDeveloper))
		Expect(err).To(BeNil())
		Expect(refs).To(Equal([]approval.BuildingRef{{ID: 1, Name: "Alpha Tower"}, {ID: 2, Name: "Beacon Court"}}))
	})
}

func TestQueryTradeAnalytics(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should aggregate per trade, busiest first", func(t *testing.T) {
		defer viewsTestTeardown(t, testDatabase)
		viewsTestSetup(t, &testDatabase)

		rows, err := approval.QueryTradeAnalytics(testinfra.BuildSecCtx(10, account.RoleDeveloper))
		Expect(err).To(BeNil())
		Expect(len(rows)).To(Equal(5))

		Expect(rows[0].Trade).To(Equal("Plumbing"))
		Expect(rows[0].Total).To(Equal(2))
		Expect(rows[0].UrgentPct).To(BeNumerically("~", 50.0, 0.01))

		byTrade := map[string]approval.TradeStats{}
		for _, row := range rows {
			byTrade[row.Trade] = row
		}
		Expect(byTrade["Painting"].Approved).To(Equal(1))
		Expect(byTrade["Painting"].CompletionPct).To(BeNumerically("~", 100.0, 0.01))
		Expect(byTrade["Tiling"].Waiting).To(Equal(0))
		Expect(byTrade["Electrical"].Waiting).To(Equal(1))
	})
}

func TestQueryApprovalTimeline(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should group approvals per day, newest day first", func(t *testing.T) {
		defer viewsTestTeardown(t, testDatabase)
		viewsTestSetup(t, &testDatabase)

		points, err := approval.QueryApprovalTimeline(testinfra.BuildSecCtx(10, account.RoleDeveloper))
		Expect(err).To(BeNil())
		Expect(len(points)).To(Equal(3))
		Expect(points[0].Date).To(Equal("2025-03-14"))
		Expect(points[0].ApprovedCount).To(Equal(0))
		Expect(points[1].Date).To(Equal("2025-03-12"))
		Expect(points[1].ApprovedCount).To(Equal(1))
		Expect(points[2].Date).To(Equal("2025-03-10"))
		Expect(points[2].ApprovedCount).To(Equal(0))
	})
}
