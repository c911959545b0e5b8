package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/assetdesk/assetdesk-backend/api/controllers"
	"github.com/assetdesk/assetdesk-backend/api/middleware"
	"github.com/assetdesk/assetdesk-backend/internal/assignments"
	authsvc "github.com/assetdesk/assetdesk-backend/internal/auth"
	"github.com/assetdesk/assetdesk-backend/internal/dashboard"
	"github.com/assetdesk/assetdesk-backend/internal/employees"
	inventorysvc "github.com/assetdesk/assetdesk-backend/internal/inventory"
	"github.com/assetdesk/assetdesk-backend/internal/orgs"
	productsvc "github.com/assetdesk/assetdesk-backend/internal/products"
	stocksvc "github.com/assetdesk/assetdesk-backend/internal/stock"
	userssvc "github.com/assetdesk/assetdesk-backend/internal/users"
	"github.com/assetdesk/assetdesk-backend/pkg/auth/session"
	"github.com/assetdesk/assetdesk-backend/pkg/config"
	"github.com/assetdesk/assetdesk-backend/pkg/enums"
	"github.com/assetdesk/assetdesk-backend/pkg/logger"
	"github.com/assetdesk/assetdesk-backend/pkg/metrics"
)

// Services bundles everything the router hands to controllers.
type Services struct {
	Auth        authsvc.Service
	Users       userssvc.Service
	Products    productsvc.Service
	Inventory   inventorysvc.Service
	Stock       stocksvc.Service
	Assignments assignments.Service
	Employees   employees.Service
	Orgs        orgs.Service
	Dashboard   dashboard.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisP controllers.Pinger,
	sessions session.AccessSessionChecker,
	httpMetrics *metrics.HTTPMetrics,
	metricsHandler http.Handler,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.CORS(cfg.App.CORSOrigins),
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
	)

	writers := middleware.RequireRoles(logg, enums.UserRoleAdmin, enums.UserRoleManager)
	admins := middleware.RequireRoles(logg, enums.UserRoleAdmin)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	// Label scans land here without a login.
	r.Get("/api/public/assignments/{assignmentID}", controllers.PublicAssignmentLookup(svcs.Assignments, logg))
	r.Get("/api/public/inventory/{unitID}", controllers.PublicUnitLookup(svcs.Inventory, logg))

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.Login(svcs.Auth, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessions, logg))
			r.Post("/logout", controllers.Logout(svcs.Auth, logg))
			r.Get("/me", controllers.Me(svcs.Users, logg))
			r.With(admins).Post("/register", controllers.CreateUser(svcs.Users, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))

		r.Route("/users", func(r chi.Router) {
			r.Use(admins)
			r.Post("/", controllers.CreateUser(svcs.Users, logg))
			r.Get("/", controllers.ListUsers(svcs.Users, logg))
			r.Get("/{userID}", controllers.GetUser(svcs.Users, logg))
			r.Patch("/{userID}/role", controllers.ChangeUserRole(svcs.Users, logg))
			r.Patch("/{userID}/password", controllers.ChangeUserPassword(svcs.Users, logg))
			r.Delete("/{userID}", controllers.DeleteUser(svcs.Users, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(svcs.Products, logg))
			r.Get("/low-stock", controllers.LowStockProducts(svcs.Products, logg))
			r.Get("/{productID}", controllers.GetProduct(svcs.Products, logg))
			r.Get("/{productID}/stock", controllers.ProductStockCounts(svcs.Inventory, logg))
			r.Get("/{productID}/inventory/available", controllers.AvailableUnits(svcs.Inventory, logg))
			r.Get("/{productID}/assignments", controllers.ListProductAssignments(svcs.Assignments, logg))

			r.Group(func(r chi.Router) {
				r.Use(writers)
				r.Post("/", controllers.CreateProduct(svcs.Products, logg))
				r.Put("/{productID}", controllers.UpdateProduct(svcs.Products, logg))
				r.Delete("/{productID}", controllers.DeleteProduct(svcs.Products, logg))
				r.Post("/{productID}/units", controllers.AddUnits(svcs.Inventory, logg))
			})
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", controllers.ListUnits(svcs.Inventory, logg))
			r.Get("/{unitID}", controllers.GetUnit(svcs.Inventory, logg))
			r.Get("/{unitID}/transactions", controllers.ListUnitTransactions(svcs.Stock, logg))

			r.Group(func(r chi.Router) {
				r.Use(writers)
				r.Post("/bulk-delete", controllers.BulkDeleteUnits(svcs.Inventory, logg))
				r.Put("/{unitID}", controllers.UpdateUnit(svcs.Inventory, logg))
				r.Post("/{unitID}/retire", controllers.RetireUnit(svcs.Inventory, logg))
				r.Delete("/{unitID}", controllers.DeleteUnit(svcs.Inventory, logg))
			})
		})

		r.Get("/stock/transactions", controllers.ListStockTransactions(svcs.Stock, logg))

		r.Route("/assignments", func(r chi.Router) {
			r.Get("/active", controllers.ListActiveAssignments(svcs.Assignments, logg))
			r.Get("/history", controllers.ListAssignmentHistory(svcs.Assignments, logg))
			r.Get("/analytics", controllers.AssignmentAnalytics(svcs.Assignments, logg))
			r.Get("/{assignmentID}", controllers.GetAssignment(svcs.Assignments, logg))

			r.Group(func(r chi.Router) {
				r.Use(writers)
				r.Post("/", controllers.CreateAssignment(svcs.Assignments, logg))
				r.Post("/{assignmentID}/return", controllers.ReturnAssignment(svcs.Assignments, logg))
				r.Patch("/{assignmentID}", controllers.UpdateAssignment(svcs.Assignments, logg))
			})
		})

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", controllers.ListEmployees(svcs.Employees, logg))
			r.Get("/{employeeID}", controllers.GetEmployee(svcs.Employees, logg))
			r.Get("/{employeeID}/assignments", controllers.ListEmployeeAssignments(svcs.Assignments, logg))

			r.Group(func(r chi.Router) {
				r.Use(writers)
				r.Post("/", controllers.CreateEmployee(svcs.Employees, logg))
				r.Put("/{employeeID}", controllers.UpdateEmployee(svcs.Employees, logg))
				r.Delete("/{employeeID}", controllers.DeleteEmployee(svcs.Employees, logg))
			})
		})

		r.Route("/branches", func(r chi.Router) {
			r.Get("/", controllers.ListBranches(svcs.Orgs, logg))
			r.Get("/{branchID}", controllers.GetBranch(svcs.Orgs, logg))

			r.Group(func(r chi.Router) {
				r.Use(writers)
				r.Post("/", controllers.CreateBranch(svcs.Orgs, logg))
				r.Put("/{branchID}", controllers.UpdateBranch(svcs.Orgs, logg))
				r.Delete("/{branchID}", controllers.DeleteBranch(svcs.Orgs, logg))
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.ListCategories(svcs.Orgs, logg))
			r.Get("/{categoryID}", controllers.GetCategory(svcs.Orgs, logg))

			r.Group(func(r chi.Router) {
				r.Use(writers)
				r.Post("/", controllers.CreateCategory(svcs.Orgs, logg))
				r.Put("/{categoryID}", controllers.UpdateCategory(svcs.Orgs, logg))
				r.Delete("/{categoryID}", controllers.DeleteCategory(svcs.Orgs, logg))
			})
		})

		r.Route("/departments", func(r chi.Router) {
			r.Get("/", controllers.ListDepartments(svcs.Orgs, logg))
			r.Get("/{departmentID}", controllers.GetDepartment(svcs.Orgs, logg))

			r.Group(func(r chi.Router) {
				r.Use(writers)
				r.Post("/", controllers.CreateDepartment(svcs.Orgs, logg))
				r.Put("/{departmentID}", controllers.UpdateDepartment(svcs.Orgs, logg))
				r.Delete("/{departmentID}", controllers.DeleteDepartment(svcs.Orgs, logg))
			})
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/summary", controllers.DashboardSummary(svcs.Dashboard, logg))
			r.Get("/stock-summary", controllers.StockSummary(svcs.Dashboard, logg))
		})
	})

	return r
}
