package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"buildnchill-shop/internal/logger"
	"buildnchill-shop/internal/models"
	"buildnchill-shop/internal/utils"
)

// TopProductLimit caps the best-seller list on the dashboard.
const TopProductLimit = 5

// SeriesDays is the length of the daily revenue series.
const SeriesDays = 7

// UnnamedProduct labels paid orders that carry no product name.
const UnnamedProduct = "Ẩn danh"

// OrderFact is the slice of an order the dashboard needs
type OrderFact struct {
	CreatedAt time.Time `bun:"created_at" json:"created_at"`
	Price     *int64    `bun:"price" json:"price"`
	Status    string    `bun:"status" json:"status"`
	Delivered bool      `bun:"delivered" json:"delivered"`
	Product   string    `bun:"product" json:"product"`
}

// FactFromOrder projects a full order row
func FactFromOrder(o models.Order) OrderFact {
	return OrderFact{CreatedAt: o.CreatedAt, Price: o.Price, Status: o.Status, Delivered: o.Delivered, Product: o.Product}
}

func (f OrderFact) order() models.Order {
	return models.Order{CreatedAt: f.CreatedAt, Price: f.Price, Status: f.Status, Delivered: f.Delivered, Product: f.Product}
}

// ProductCount represents how many paid orders a product has
type ProductCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DailyRevenue represents one bucket of the 7-day series
type DailyRevenue struct {
	Label    string `json:"date"`
	FullDate string `json:"full_date"`
	Revenue  int64  `json:"revenue"`
}

// DashboardStats represents the admin dashboard summary
type DashboardStats struct {
	MonthlyOrders  int            `json:"monthly_orders"`
	YearlyOrders   int            `json:"yearly_orders"`
	TotalOrders    int            `json:"total_orders"`
	MonthlyRevenue int64          `json:"monthly_revenue"`
	YearlyRevenue  int64          `json:"yearly_revenue"`
	TotalRevenue   int64          `json:"total_revenue"`
	PendingOrders  int            `json:"pending_orders"`
	TopProducts    []ProductCount `json:"top_products"`
	DailyRevenue   []DailyRevenue `json:"daily_revenue"`
}

// Compute folds the full order set into dashboard statistics. Calendar
// windows and day buckets use now's location.
func Compute(orders []OrderFact, now time.Time) DashboardStats {
	loc := now.Location()
	year, month, _ := now.Date()

	today := utils.StartOfDay(now)
	series := make([]DailyRevenue, SeriesDays)
	bucket := make(map[string]int, SeriesDays)
	for i := range series {
		day := today.AddDate(0, 0, i-(SeriesDays-1))
		key := day.Format("2006-01-02")
		series[i] = DailyRevenue{Label: day.Format("02/01"), FullDate: key}
		bucket[key] = i
	}

	stats := DashboardStats{TopProducts: []ProductCount{}}
	counts := map[string]int{}
	var names []string // first-seen order

	for _, f := range orders {
		o := f.order()
		created := f.CreatedAt.In(loc)
		cy, cm, _ := created.Date()
		inYear := cy == year
		inMonth := inYear && cm == month

		stats.TotalOrders++
		if inYear {
			stats.YearlyOrders++
		}
		if inMonth {
			stats.MonthlyOrders++
		}
		if f.Status == models.OrderStatusPaid && !f.Delivered {
			stats.PendingOrders++
		}

		if !o.IsPaid() {
			continue
		}
		price := o.PriceValue()
		stats.TotalRevenue += price
		if inYear {
			stats.YearlyRevenue += price
		}
		if inMonth {
			stats.MonthlyRevenue += price
		}
		if i, ok := bucket[created.Format("2006-01-02")]; ok {
			series[i].Revenue += price
		}

		name := f.Product
		if name == "" {
			name = UnnamedProduct
		}
		if _, seen := counts[name]; !seen {
			names = append(names, name)
		}
		counts[name]++
	}

	for _, name := range names {
		stats.TopProducts = append(stats.TopProducts, ProductCount{Name: name, Count: counts[name]})
	}
	sort.SliceStable(stats.TopProducts, func(i, j int) bool {
		return stats.TopProducts[i].Count > stats.TopProducts[j].Count
	})
	if len(stats.TopProducts) > TopProductLimit {
		stats.TopProducts = stats.TopProducts[:TopProductLimit]
	}
	stats.DailyRevenue = series
	return stats
}

// FactLoader reads every order the dashboard folds over
type FactLoader interface {
	OrderFacts(ctx context.Context) ([]OrderFact, error)
}

// Service serves dashboard statistics
type Service struct {
	DB       FactLoader
	Logger   *logger.Logger
	Location *time.Location
	now      func() time.Time
}

// NewService creates a new analytics service
func NewService(db FactLoader, log *logger.Logger) *Service {
	return &Service{DB: db, Logger: log, Location: time.Local, now: time.Now}
}

// Dashboard never fails: a load error yields zero statistics.
func (s *Service) Dashboard(ctx context.Context) DashboardStats {
	now := s.now().In(s.Location)
	facts, err := s.DB.OrderFacts(ctx)
	if err != nil {
		s.Logger.Warn("ANALYTICS", fmt.Sprintf("Dashboard load failed, showing zeros: %v", err))
		facts = nil
	}
	return Compute(facts, now)
}
