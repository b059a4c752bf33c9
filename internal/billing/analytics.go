package billing

import (
	"context"
	"sort"
	"time"

	"mandi-app/internal/models"

	"gorm.io/gorm"
)

// Period bounds an analytics query by bill creation time. Zero values mean
// unbounded.
type Period struct {
	From time.Time
	To   time.Time
}

type OverviewStats struct {
	TotalBills            int64   `json:"total_bills"`
	PaidBills             int64   `json:"paid_bills"`
	UnpaidBills           int64   `json:"unpaid_bills"`
	TotalBilledAmount     int64   `json:"total_billed_amount"`
	PaidAmount            int64   `json:"paid_amount"`
	UnpaidBilledAmount    int64   `json:"unpaid_billed_amount"`
	TotalCommissionEarned int64   `json:"total_commission_earned"`
	PaymentRate           float64 `json:"payment_rate"`
	AvgBillAmount         int64   `json:"avg_bill_amount"`
}

// UnbilledSnapshot is the forward-looking value of sold lots not yet billed,
// distinct from the historical bill totals above.
type UnbilledSnapshot struct {
	Count  int64 `json:"count"`
	Amount int64 `json:"amount"`
}

type AgingBucket struct {
	Range  string `json:"range"`
	Count  int64  `json:"count"`
	Amount int64  `json:"amount"`
}

type FarmerRank struct {
	FarmerID   uint   `json:"farmer_id"`
	FarmerName string `json:"farmer_name"`
	BillCount  int64  `json:"bill_count"`
	NetPayable int64  `json:"net_payable"`
}

type ProductRank struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	BillCount   int64  `json:"bill_count"`
	NetPayable  int64  `json:"net_payable"`
}

type MethodStats struct {
	Method     string  `json:"method"`
	Count      int64   `json:"count"`
	Amount     int64   `json:"amount"`
	Percentage float64 `json:"percentage"`
}

type TrendPoint struct {
	Date      string `json:"date"`
	BillCount int64  `json:"bill_count"`
	Amount    int64  `json:"amount"`
}

type OverviewResult struct {
	Overview       OverviewStats    `json:"overview"`
	Unbilled       UnbilledSnapshot `json:"unbilled"`
	AgingAnalysis  []AgingBucket    `json:"aging_analysis"`
	TopFarmers     []FarmerRank     `json:"top_farmers"`
	TopProducts    []ProductRank    `json:"top_products"`
	PaymentMethods []MethodStats    `json:"payment_methods"`
	Trends         []TrendPoint     `json:"trends"`
}

// AnalyticsAggregator computes read-only statistics over the current ledger
// state. Nothing here mutates the store, and every figure is recomputed per
// query; no aggregate is authoritative state of its own.
type AnalyticsAggregator struct {
	db   *gorm.DB
	topN int
	now  func() time.Time
}

func NewAnalyticsAggregator(db *gorm.DB, topN int) *AnalyticsAggregator {
	if topN <= 0 {
		topN = 5
	}
	return &AnalyticsAggregator{db: db, topN: topN, now: time.Now}
}

// Overview computes the full dashboard for the period. Any error fails the
// whole call; a cancelled context never surfaces a partial result.
func (a *AnalyticsAggregator) Overview(ctx context.Context, period Period) (*OverviewResult, error) {
	db := a.db.WithContext(ctx)

	query := db.Preload("Farmer").Preload("Product")
	if !period.From.IsZero() {
		query = query.Where("created_at >= ?", period.From)
	}
	if !period.To.IsZero() {
		query = query.Where("created_at <= ?", period.To)
	}

	var bills []models.Bill
	if err := query.Find(&bills).Error; err != nil {
		return nil, NewPersistenceError("failed to fetch bills")
	}

	unbilled, err := a.unbilledSnapshot(db)
	if err != nil {
		return nil, err
	}

	result := &OverviewResult{
		Overview:       overviewStats(bills),
		Unbilled:       unbilled,
		AgingAnalysis:  agingAnalysis(bills, a.now()),
		TopFarmers:     topFarmers(bills, a.topN),
		TopProducts:    topProducts(bills, a.topN),
		PaymentMethods: paymentMethods(bills),
		Trends:         trends(bills, period, a.now()),
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func overviewStats(bills []models.Bill) OverviewStats {
	var stats OverviewStats
	for _, b := range bills {
		stats.TotalBills++
		stats.TotalBilledAmount += b.GrossAmount
		stats.TotalCommissionEarned += b.CommissionAmt // Commission accrues at generation, not payment
		if b.PaymentStatus == models.PaymentStatusPaid {
			stats.PaidBills++
			stats.PaidAmount += b.NetPayable
		} else {
			stats.UnpaidBills++
			stats.UnpaidBilledAmount += b.NetPayable
		}
	}
	if stats.TotalBills > 0 {
		stats.PaymentRate = 100 * float64(stats.PaidBills) / float64(stats.TotalBills)
		stats.AvgBillAmount = RoundMoney(float64(stats.TotalBilledAmount) / float64(stats.TotalBills))
	}
	return stats
}

func (a *AnalyticsAggregator) unbilledSnapshot(db *gorm.DB) (UnbilledSnapshot, error) {
	var items []models.AuctionItem
	err := db.Where("buyer_id IS NOT NULL AND rate IS NOT NULL AND bill_id IS NULL").Find(&items).Error
	if err != nil {
		return UnbilledSnapshot{}, NewPersistenceError("failed to fetch unbilled items")
	}

	snapshot := UnbilledSnapshot{Count: int64(len(items))}
	for _, item := range items {
		snapshot.Amount += ItemAmount(item.Quantity, *item.Rate)
	}
	return snapshot, nil
}

func agingAnalysis(bills []models.Bill, now time.Time) []AgingBucket {
	buckets := []AgingBucket{
		{Range: "0-7"},
		{Range: "8-14"},
		{Range: "15-30"},
		{Range: ">30"},
	}

	for _, b := range bills {
		if b.PaymentStatus != models.PaymentStatusUnpaid {
			continue
		}
		days := int(now.Sub(b.CreatedAt).Hours() / 24)
		var idx int
		switch {
		case days <= 7:
			idx = 0
		case days <= 14:
			idx = 1
		case days <= 30:
			idx = 2
		default:
			idx = 3
		}
		buckets[idx].Count++
		buckets[idx].Amount += b.NetPayable
	}
	return buckets
}

func topFarmers(bills []models.Bill, topN int) []FarmerRank {
	byFarmer := map[uint]*FarmerRank{}
	for _, b := range bills {
		rank, ok := byFarmer[b.FarmerID]
		if !ok {
			rank = &FarmerRank{FarmerID: b.FarmerID}
			if b.Farmer != nil {
				rank.FarmerName = b.Farmer.Name
			}
			byFarmer[b.FarmerID] = rank
		}
		rank.BillCount++
		rank.NetPayable += b.NetPayable
	}

	ranks := make([]FarmerRank, 0, len(byFarmer))
	for _, r := range byFarmer {
		ranks = append(ranks, *r)
	}
	// Net payable desc, then bill count desc, then id asc for determinism.
	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].NetPayable != ranks[j].NetPayable {
			return ranks[i].NetPayable > ranks[j].NetPayable
		}
		if ranks[i].BillCount != ranks[j].BillCount {
			return ranks[i].BillCount > ranks[j].BillCount
		}
		return ranks[i].FarmerID < ranks[j].FarmerID
	})
	if len(ranks) > topN {
		ranks = ranks[:topN]
	}
	return ranks
}

func topProducts(bills []models.Bill, topN int) []ProductRank {
	byProduct := map[uint]*ProductRank{}
	for _, b := range bills {
		rank, ok := byProduct[b.ProductID]
		if !ok {
			rank = &ProductRank{ProductID: b.ProductID}
			if b.Product != nil {
				rank.ProductName = b.Product.Name
			}
			byProduct[b.ProductID] = rank
		}
		rank.BillCount++
		rank.NetPayable += b.NetPayable
	}

	ranks := make([]ProductRank, 0, len(byProduct))
	for _, r := range byProduct {
		ranks = append(ranks, *r)
	}
	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].NetPayable != ranks[j].NetPayable {
			return ranks[i].NetPayable > ranks[j].NetPayable
		}
		if ranks[i].BillCount != ranks[j].BillCount {
			return ranks[i].BillCount > ranks[j].BillCount
		}
		return ranks[i].ProductID < ranks[j].ProductID
	})
	if len(ranks) > topN {
		ranks = ranks[:topN]
	}
	return ranks
}

func paymentMethods(bills []models.Bill) []MethodStats {
	byMethod := map[string]*MethodStats{}
	var paidTotal int64

	for _, b := range bills {
		if b.PaymentStatus != models.PaymentStatusPaid || b.PaymentMethod == nil {
			continue
		}
		stats, ok := byMethod[*b.PaymentMethod]
		if !ok {
			stats = &MethodStats{Method: *b.PaymentMethod}
			byMethod[*b.PaymentMethod] = stats
		}
		stats.Count++
		stats.Amount += b.NetPayable
		paidTotal += b.NetPayable
	}

	methods := make([]MethodStats, 0, len(byMethod))
	for _, m := range byMethod {
		if paidTotal > 0 {
			m.Percentage = 100 * float64(m.Amount) / float64(paidTotal)
		}
		methods = append(methods, *m)
	}
	sort.Slice(methods, func(i, j int) bool {
		if methods[i].Amount != methods[j].Amount {
			return methods[i].Amount > methods[j].Amount
		}
		return methods[i].Method < methods[j].Method
	})
	return methods
}

// trends is a per-day series over the period, defaulting to the last 7 days.
func trends(bills []models.Bill, period Period, now time.Time) []TrendPoint {
	from := period.From
	to := period.To
	if to.IsZero() {
		to = now
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -6)
	}

	byDay := map[string]*TrendPoint{}
	for _, b := range bills {
		day := b.CreatedAt.Format("2006-01-02")
		point, ok := byDay[day]
		if !ok {
			point = &TrendPoint{Date: day}
			byDay[day] = point
		}
		point.BillCount++
		point.Amount += b.NetPayable
	}

	points := []TrendPoint{}
	for d := from; !d.After(to) && len(points) < 90; d = d.AddDate(0, 0, 1) {
		day := d.Format("2006-01-02")
		if point, ok := byDay[day]; ok {
			points = append(points, *point)
		} else {
			points = append(points, TrendPoint{Date: day})
		}
	}
	return points
}
