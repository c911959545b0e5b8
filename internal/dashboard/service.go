package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/assetdesk/assetdesk-backend/internal/products"
	"github.com/assetdesk/assetdesk-backend/internal/stock"
	pkgerrors "github.com/assetdesk/assetdesk-backend/pkg/errors"
	"github.com/assetdesk/assetdesk-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	recentActivityLimit    = 5
	recentTransactionLimit = 10
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type lowStockSource interface {
	LowStock(ctx context.Context) ([]products.LowStockRow, error)
}

// SummaryCounts is the headline number row of the dashboard.
type SummaryCounts struct {
	Products    int64 `json:"products"`
	Assigned    int64 `json:"assigned"`
	Categories  int64 `json:"categories"`
	Branches    int64 `json:"branches"`
	Employees   int64 `json:"employees"`
}

// TrendPoint is one day in the weekly assignment trend, Sunday first.
type TrendPoint struct {
	Date  string `json:"date"`
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// Activity is one row in the recent activity feed.
type Activity struct {
	AssignmentID uuid.UUID `json:"assignmentId"`
	ProductName  string    `json:"productName"`
	EmployeeName string    `json:"employeeName"`
	AssignedAt   time.Time `json:"assignedAt"`
}

// Summary is the payload behind the main dashboard screen.
type Summary struct {
	Counts               SummaryCounts   `json:"counts"`
	WeeklyTrend          []TrendPoint    `json:"weeklyTrend"`
	RecentActivities     []Activity      `json:"recentActivities"`
	CategoryDistribution []CategoryCount `json:"categoryDistribution"`
}

// TransactionRow is one entry of the recent stock movement feed.
type TransactionRow struct {
	ID          uuid.UUID `json:"id"`
	Type        string    `json:"type"`
	Reason      string    `json:"reason"`
	Reference   string    `json:"reference"`
	ProductName string    `json:"productName"`
	CreatedAt   time.Time `json:"createdAt"`
}

// StockSummary is the payload behind the stock overview screen.
type StockSummary struct {
	TotalProducts      int64                    `json:"totalProducts"`
	TotalInventory     int64                    `json:"totalInventory"`
	StockByStatus      map[string]int64         `json:"stockByStatus"`
	LowStockCount      int                      `json:"lowStockCount"`
	LowStockProducts   []products.LowStockRow   `json:"lowStockProducts"`
	RecentTransactions []TransactionRow         `json:"recentTransactions"`
}

// Service aggregates cross-module reads for the dashboard screens.
type Service interface {
	Summary(ctx context.Context) (*Summary, error)
	StockSummary(ctx context.Context) (*StockSummary, error)
}

type service struct {
	repo     Repository
	lowStock lowStockSource
	stock    stock.Service
	tx       txRunner
	now      func() time.Time
}

// NewService wires the dashboard service.
func NewService(repo Repository, lowStock lowStockSource, stockSvc stock.Service, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("dashboard repository required")
	}
	if lowStock == nil {
		return nil, fmt.Errorf("low stock source required")
	}
	if stockSvc == nil {
		return nil, fmt.Errorf("stock service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{
		repo:     repo,
		lowStock: lowStock,
		stock:    stockSvc,
		tx:       tx,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// weekWindow returns the [Sunday 00:00, next Sunday) window containing now.
func weekWindow(now time.Time) (time.Time, time.Time) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start := day.AddDate(0, 0, -int(day.Weekday()))
	return start, start.AddDate(0, 0, 7)
}

func (s *service) Summary(ctx context.Context) (*Summary, error) {
	summary := &Summary{}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		if summary.Counts.Products, err = repo.CountProducts(ctx); err != nil {
			return err
		}
		if summary.Counts.Assigned, err = repo.CountOpenAssignments(ctx); err != nil {
			return err
		}
		if summary.Counts.Categories, err = repo.CountCategories(ctx); err != nil {
			return err
		}
		if summary.Counts.Branches, err = repo.CountBranches(ctx); err != nil {
			return err
		}
		if summary.Counts.Employees, err = repo.CountEmployees(ctx); err != nil {
			return err
		}

		weekStart, weekEnd := weekWindow(s.now())
		times, err := repo.AssignmentTimesBetween(ctx, weekStart, weekEnd)
		if err != nil {
			return err
		}
		buckets := make([]int64, 7)
		for _, at := range times {
			offset := int(at.In(weekStart.Location()).Sub(weekStart).Hours() / 24)
			if offset >= 0 && offset < 7 {
				buckets[offset]++
			}
		}
		summary.WeeklyTrend = make([]TrendPoint, 7)
		for i := 0; i < 7; i++ {
			date := weekStart.AddDate(0, 0, i)
			summary.WeeklyTrend[i] = TrendPoint{
				Date:  date.Format("2006-01-02"),
				Day:   date.Weekday().String()[:3],
				Count: buckets[i],
			}
		}

		recent, err := repo.RecentAssignments(ctx, recentActivityLimit)
		if err != nil {
			return err
		}
		summary.RecentActivities = make([]Activity, 0, len(recent))
		for _, a := range recent {
			activity := Activity{AssignmentID: a.ID, AssignedAt: a.AssignedAt}
			if a.Product != nil {
				activity.ProductName = a.Product.Name
			}
			if a.Employee != nil {
				activity.EmployeeName = a.Employee.Name
			}
			summary.RecentActivities = append(summary.RecentActivities, activity)
		}

		if summary.CategoryDistribution, err = repo.CategoryDistribution(ctx); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build dashboard summary")
	}
	return summary, nil
}

func (s *service) StockSummary(ctx context.Context) (*StockSummary, error) {
	summary := &StockSummary{}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		if summary.TotalProducts, err = repo.CountProducts(ctx); err != nil {
			return err
		}
		if summary.TotalInventory, err = repo.CountUnits(ctx); err != nil {
			return err
		}

		byStatus, err := repo.UnitCountsByStatus(ctx)
		if err != nil {
			return err
		}
		summary.StockByStatus = make(map[string]int64, len(byStatus))
		for status, count := range byStatus {
			summary.StockByStatus[status.String()] = count
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build stock summary")
	}

	low, err := s.lowStock.LowStock(ctx)
	if err != nil {
		return nil, err
	}
	summary.LowStockProducts = low
	summary.LowStockCount = len(low)

	entries, _, err := s.stock.List(ctx, stock.ListQuery{
		Pagination: pagination.Params{Page: 1, Limit: recentTransactionLimit},
	})
	if err != nil {
		return nil, err
	}
	summary.RecentTransactions = make([]TransactionRow, 0, len(entries))
	for _, entry := range entries {
		row := TransactionRow{
			ID:        entry.ID,
			Type:      entry.Type.String(),
			Reason:    entry.Reason,
			Reference: entry.Reference,
			CreatedAt: entry.CreatedAt,
		}
		if entry.InventoryUnit != nil && entry.InventoryUnit.Product != nil {
			row.ProductName = entry.InventoryUnit.Product.Name
		}
		summary.RecentTransactions = append(summary.RecentTransactions, row)
	}
	return summary, nil
}
