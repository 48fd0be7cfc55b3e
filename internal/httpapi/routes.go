package httpapi

import (
	"fmt"

	"warehouse-dashboard/internal/session"

	"github.com/gin-gonic/gin"
)

// pages maps each guarded navigation path to its page model.
func (h Handlers) pages() map[string]gin.HandlerFunc {
	return map[string]gin.HandlerFunc{
		"/register":                           h.form,
		"/companies":                          h.Companies,
		"/new-company/:bossId":                h.NewCompany,
		"/company-update":                     h.CompanyUpdate,
		"/employee-register":                  h.EmployeeRegister,
		"/add-store":                          h.AddStore,
		"/stores":                             h.Stores,
		"/boss-dashboard":                     h.BossDashboard,
		"/company-detail":                     h.CompanyDetail,
		"/store-employees":                    h.StoreEmployees,
		"/store":                              h.StoreDashboard,
		"/product-list":                       h.Products,
		"/product-list/category/:categoryId":  h.ProductsByCategory,
		"/product-details/:productId":         h.ProductDetails,
		"/add-product":                        h.AddProduct,
		"/transactions/:productId":            h.Transactions,
		"/add-transaction/:productId":         h.AddTransaction,
		"/transaction-details/:transactionId": h.TransactionDetails,
		"/categories":                         h.Categories,
		"/profile":                            h.Profile,
		"/edit-profile":                       h.Profile,
		"/notifications":                      h.Notifications,
		"/settings":                           h.form,
	}
}

// Register wires every route. Every page path must have a rule in the policy.
func Register(r *gin.Engine, h Handlers) error {
	r.GET("/healthz", h.Healthz)
	if h.Metrics != nil {
		r.GET("/metrics", h.Metrics.Handler())
	}

	s := r.Group("/")
	s.Use(session.Middleware(h.Sessions, h.Cookie))

	guard := func(path string) (gin.HandlerFunc, error) {
		g, err := h.Policy.Guard(path, h.onDenied)
		if err != nil {
			return nil, fmt.Errorf("register %s: %w", path, err)
		}
		return g, nil
	}

	s.GET("/", h.Home)
	s.GET("/login", h.LoginPage)
	s.POST("/login", h.Login)
	s.POST("/logout", h.Logout)

	api := s.Group("/api")
	{
		api.GET("/me", h.Me)
		api.GET("/nav", h.Nav)
		api.GET("/language", h.GetLanguage)
		api.PUT("/language", h.SetLanguage)
		api.GET("/notice", h.Notice)
		api.GET("/selection", h.GetSelection)
		api.DELETE("/selection", h.ClearSelection)
	}

	for path, handler := range h.pages() {
		g, err := guard(path)
		if err != nil {
			return err
		}
		s.GET(path, g, handler)
	}

	// Actions, reads and writes alike, reuse the guard of the page they are triggered from.
	actions := []struct {
		method, path, page string
		handler            gin.HandlerFunc
	}{
		{"POST", "/stores/:storeId/select", "/stores", h.SelectStore},
		{"POST", "/companies/:companyId/select", "/companies", h.SelectCompany},
		{"POST", "/settings/telegram-link", "/settings", h.TelegramLink},
		{"GET", "/api/notifications/top", "/notifications", h.TopNotifications},
		{"PUT", "/api/notifications/:notificationId/seen", "/notifications", h.MarkNotificationSeen},
		{"GET", "/api/profile/photo", "/profile", h.UserPhoto},

		{"POST", "/register", "/register", h.RegisterBoss},
		{"POST", "/new-company/:bossId", "/new-company/:bossId", h.CreateCompany},
		{"PUT", "/company-update", "/company-update", h.UpdateCompany},
		{"POST", "/employee-register", "/employee-register", h.RegisterEmployee},
		{"POST", "/add-store", "/add-store", h.CreateStore},
		{"GET", "/api/stores/:storeId", "/stores", h.StoreRecord},
		{"PUT", "/stores/:storeId", "/stores", h.UpdateStore},
		{"DELETE", "/stores/:storeId", "/stores", h.DeleteStore},
		{"PUT", "/store-employees/:userId", "/store-employees", h.UpdateMember},
		{"POST", "/add-product", "/add-product", h.CreateProduct},
		{"PUT", "/product-details/:productId", "/product-details/:productId", h.UpdateProduct},
		{"DELETE", "/product-details/:productId", "/product-details/:productId", h.DeleteProduct},
		{"GET", "/product-details/:productId/fields", "/product-details/:productId", h.ProductFields},
		{"DELETE", "/product-details/:productId/fields/:fieldId", "/product-details/:productId", h.DeleteProductField},
		{"POST", "/add-transaction/:productId", "/add-transaction/:productId", h.CreateTransaction},
		{"POST", "/categories", "/categories", h.CreateCategory},
		{"PUT", "/edit-profile", "/edit-profile", h.UpdateProfile},
	}
	for _, a := range actions {
		g, err := guard(a.page)
		if err != nil {
			return err
		}
		s.Handle(a.method, a.path, g, a.handler)
	}

	return nil
}
