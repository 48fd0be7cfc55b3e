package httpapi

import (
	"net/http"

	"warehouse-dashboard/internal/i18n"
	"warehouse-dashboard/internal/rbac"
	"warehouse-dashboard/internal/selection"
	"warehouse-dashboard/internal/upstream"

	"github.com/gin-gonic/gin"
)

// Guarded page models. Each handler runs behind the route guard of the same path.

func respond[T any](h Handlers, c *gin.Context, v T, err error, empty T) {
	if err != nil {
		h.fail(c, err, empty)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": v})
}

// noScope renders a page whose store or company could not be resolved.
func (h Handlers) noScope(c *gin.Context, empty any, key string) {
	c.JSON(http.StatusOK, gin.H{"data": empty, "notice": i18n.T(h.lang(c), key)})
}

// storeScope resolves the effective store, writing the empty page when there is none.
func (h Handlers) storeScope(c *gin.Context, empty any) (int64, bool) {
	snap, err := h.snapshot(c)
	if err != nil {
		h.storeFailure(c, err)
		return 0, false
	}
	id, ok := selection.EffectiveStore(h.claims(c), snap)
	if !ok {
		h.noScope(c, empty, i18n.KeyNoStoreSelected)
		return 0, false
	}
	return id, true
}

func (h Handlers) companyScope(c *gin.Context, empty any) (int64, bool) {
	snap, err := h.snapshot(c)
	if err != nil {
		h.storeFailure(c, err)
		return 0, false
	}
	id, ok := selection.EffectiveCompany(h.claims(c), snap)
	if !ok {
		h.noScope(c, empty, i18n.KeyCompanyIDError)
		return 0, false
	}
	return id, true
}

// form is the model of a page that only needs the caller's identity.
func (h Handlers) form(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"user": h.claims(c), "language": h.lang(c)}})
}

func (h Handlers) Companies(c *gin.Context) {
	v, err := h.API.Companies(c.Request.Context())
	respond(h, c, v, err, []upstream.Company{})
}

func (h Handlers) NewCompany(c *gin.Context) {
	bossID, ok := paramID(c, "bossId")
	if !ok {
		return
	}
	v, err := h.API.User(c.Request.Context(), bossID)
	respond(h, c, v, err, upstream.User{})
}

type companyDetail struct {
	Company upstream.Company `json:"company"`
	Stores  []upstream.Store `json:"stores"`
}

func (h Handlers) CompanyDetail(c *gin.Context) {
	id, ok := h.companyScope(c, nil)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	comp, err := h.API.Company(ctx, id)
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	stores, err := h.API.StoresByCompany(ctx, id)
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	if stores == nil {
		stores = []upstream.Store{}
	}
	c.JSON(http.StatusOK, gin.H{"data": companyDetail{Company: comp, Stores: stores}})
}

func (h Handlers) CompanyUpdate(c *gin.Context) {
	id, ok := h.companyScope(c, nil)
	if !ok {
		return
	}
	v, err := h.API.Company(c.Request.Context(), id)
	respond(h, c, v, err, upstream.Company{})
}

// Stores lists the stores of the effective company: the assigned one for a BOSS, the
// selected one for an ADMIN. An ADMIN with no company selected sees every store.
func (h Handlers) Stores(c *gin.Context) {
	snap, err := h.snapshot(c)
	if err != nil {
		h.storeFailure(c, err)
		return
	}
	cl := h.claims(c)
	ctx := c.Request.Context()
	id, ok := selection.EffectiveCompany(cl, snap)
	if !ok {
		if rbac.Role(cl.PrimaryRole()) == rbac.RoleAdmin {
			v, err := h.API.AllStores(ctx)
			respond(h, c, v, err, []upstream.Store{})
			return
		}
		h.noScope(c, []upstream.Store{}, i18n.KeyCompanyIDError)
		return
	}
	v, err := h.API.StoresByCompany(ctx, id)
	respond(h, c, v, err, []upstream.Store{})
}

func (h Handlers) AddStore(c *gin.Context) {
	id, ok := h.companyScope(c, nil)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"companyId": id}})
}

func (h Handlers) EmployeeRegister(c *gin.Context) {
	id, ok := h.companyScope(c, []upstream.Store{})
	if !ok {
		return
	}
	v, err := h.API.StoresByCompany(c.Request.Context(), id)
	respond(h, c, v, err, []upstream.Store{})
}

// BossDashboard shows the caller's own stores. An ADMIN with a selected company sees that
// company owner's dashboard.
func (h Handlers) BossDashboard(c *gin.Context) {
	owner, err := h.owner(c)
	if err != nil {
		h.storeFailure(c, err)
		return
	}
	v, err := h.Dashboards.Boss(c.Request.Context(), owner)
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": v})
}

func (h Handlers) StoreDashboard(c *gin.Context) {
	id, ok := h.storeScope(c, nil)
	if !ok {
		return
	}
	v, err := h.Dashboards.Store(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": v})
}

func (h Handlers) StoreEmployees(c *gin.Context) {
	id, ok := h.storeScope(c, []upstream.User{})
	if !ok {
		return
	}
	ctx := c.Request.Context()
	var (
		v   []upstream.User
		err error
	)
	if roles := c.QueryArray("roles"); len(roles) > 0 {
		v, err = h.API.UsersByStoreWithRoles(ctx, id, roles...)
	} else {
		v, err = h.API.UsersByStore(ctx, id)
	}
	respond(h, c, v, err, []upstream.User{})
}

func (h Handlers) Products(c *gin.Context) {
	id, ok := h.storeScope(c, []upstream.Product{})
	if !ok {
		return
	}
	v, err := h.API.ProductsByStore(c.Request.Context(), id)
	respond(h, c, v, err, []upstream.Product{})
}

func (h Handlers) ProductsByCategory(c *gin.Context) {
	id, ok := paramID(c, "categoryId")
	if !ok {
		return
	}
	v, err := h.API.ProductsByCategory(c.Request.Context(), id)
	respond(h, c, v, err, []upstream.Product{})
}

func (h Handlers) ProductDetails(c *gin.Context) {
	id, ok := paramID(c, "productId")
	if !ok {
		return
	}
	v, err := h.API.Product(c.Request.Context(), id)
	respond(h, c, v, err, upstream.Product{})
}

type productFormModel struct {
	Store      upstream.Store      `json:"store"`
	Categories []upstream.Category `json:"categories"`
}

// AddProduct is the new product form: the target store and its categories.
func (h Handlers) AddProduct(c *gin.Context) {
	id, ok := h.storeScope(c, nil)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	st, err := h.API.Store(ctx, id)
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	cats, err := h.API.StoreCategories(ctx, id)
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	if cats == nil {
		cats = []upstream.Category{}
	}
	c.JSON(http.StatusOK, gin.H{"data": productFormModel{Store: st, Categories: cats}})
}

func (h Handlers) Transactions(c *gin.Context) {
	id, ok := paramID(c, "productId")
	if !ok {
		return
	}
	v, err := h.API.TransactionsByProduct(c.Request.Context(), id)
	respond(h, c, v, err, []upstream.Transaction{})
}

func (h Handlers) AddTransaction(c *gin.Context) {
	id, ok := paramID(c, "productId")
	if !ok {
		return
	}
	v, err := h.API.Product(c.Request.Context(), id)
	respond(h, c, v, err, upstream.Product{})
}

func (h Handlers) TransactionDetails(c *gin.Context) {
	id, ok := paramID(c, "transactionId")
	if !ok {
		return
	}
	v, err := h.API.Transaction(c.Request.Context(), id)
	respond(h, c, v, err, upstream.Transaction{})
}

func (h Handlers) Categories(c *gin.Context) {
	id, ok := h.storeScope(c, []upstream.CategorySummary{})
	if !ok {
		return
	}
	v, err := h.API.CategorySummaries(c.Request.Context(), id)
	respond(h, c, v, err, []upstream.CategorySummary{})
}

func (h Handlers) Profile(c *gin.Context) {
	v, err := h.API.User(c.Request.Context(), h.claims(c).UserID)
	respond(h, c, v, err, upstream.User{})
}

func (h Handlers) Notifications(c *gin.Context) {
	v, err := h.API.Notifications(c.Request.Context(), h.claims(c).UserID)
	respond(h, c, v, err, []upstream.Notification{})
}

func (h Handlers) TopNotifications(c *gin.Context) {
	v, err := h.API.Top3Notifications(c.Request.Context(), h.claims(c).UserID)
	respond(h, c, v, err, []upstream.Notification{})
}

func (h Handlers) MarkNotificationSeen(c *gin.Context) {
	id, ok := paramID(c, "notificationId")
	if !ok {
		return
	}
	if err := h.API.MarkNotificationSeen(c.Request.Context(), id); err != nil {
		h.fail(c, err, nil)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h Handlers) UserPhoto(c *gin.Context) {
	blob, err := h.API.UserPhoto(c.Request.Context(), h.claims(c).UserID)
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	c.Data(http.StatusOK, blob.ContentType, blob.Data)
}

// TelegramLink returns the pairing URL for the caller's account.
func (h Handlers) TelegramLink(c *gin.Context) {
	lang := h.lang(c)
	link, err := h.API.TelegramLink(c.Request.Context(), h.claims(c).UserID)
	if err != nil {
		if upstream.IsSessionExpired(err) {
			h.fail(c, err, nil)
			return
		}
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": i18n.T(lang, i18n.KeyFailedToGetTelegramLink), "data": nil})
		return
	}
	if link == "" {
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": i18n.T(lang, i18n.KeyFailedToGetTelegramLink), "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"url": link}, "notice": i18n.T(lang, i18n.KeyTelegramPairingLinkOpened)})
}
