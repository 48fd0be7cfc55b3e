package httpapi

import (
	"errors"
	"net/http"

	"warehouse-dashboard/internal/auth"
	"warehouse-dashboard/internal/i18n"
	"warehouse-dashboard/internal/rbac"
	"warehouse-dashboard/internal/selection"
	"warehouse-dashboard/internal/upstream"
	"warehouse-dashboard/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Write actions take form posts (multipart when a file is attached) and forward them to the
// warehouse API. Each runs behind the guard of the page that submits it.

// bindForm binds the request form into req, answering 400 when required fields are missing.
func (h Handlers) bindForm(c *gin.Context, req any) bool {
	if err := c.ShouldBind(req); err != nil {
		logger.FromGin(c).Debug("invalid form", "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": i18n.T(h.lang(c), i18n.KeyInvalidForm)})
		return false
	}
	return true
}

// formFile opens the optional "file" part. release must be called once the upstream call is done.
func (h Handlers) formFile(c *gin.Context) (file *upstream.FilePart, release func(), ok bool) {
	fh, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, func() {}, true
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": i18n.T(h.lang(c), i18n.KeyInvalidForm)})
		return nil, nil, false
	}
	f, err := fh.Open()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": i18n.T(h.lang(c), i18n.KeyInvalidForm)})
		return nil, nil, false
	}
	return &upstream.FilePart{Name: fh.Filename, Content: f}, func() { _ = f.Close() }, true
}

// requireScope resolves the store or company a write applies to. Unlike pages, a write
// without a scope is a client error.
func (h Handlers) requireScope(c *gin.Context, resolve func(auth.Claims, selection.Snapshot) (int64, bool), key string) (int64, bool) {
	snap, err := h.snapshot(c)
	if err != nil {
		h.storeFailure(c, err)
		return 0, false
	}
	id, ok := resolve(h.claims(c), snap)
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": i18n.T(h.lang(c), key)})
		return 0, false
	}
	return id, true
}

// owner is the user whose company the caller works in: the caller itself, or for an ADMIN the
// owner of the selected company when there is one.
func (h Handlers) owner(c *gin.Context) (int64, error) {
	cl := h.claims(c)
	if rbac.Role(cl.PrimaryRole()) != rbac.RoleAdmin {
		return cl.UserID, nil
	}
	snap, err := h.snapshot(c)
	if err != nil {
		return 0, err
	}
	if snap.Company != nil && snap.Company.UserID > 0 {
		return snap.Company.UserID, nil
	}
	return cl.UserID, nil
}

func created[T any](h Handlers, c *gin.Context, v T, err error) {
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": v})
}

func updated[T any](h Handlers, c *gin.Context, v T, err error) {
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": v})
}

func (h Handlers) deleted(c *gin.Context, err error) {
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	c.Status(http.StatusNoContent)
}

// Stores

type storeForm struct {
	Name         string `form:"name" binding:"required"`
	Address      string `form:"address"`
	Description  string `form:"description"`
	StorePhoneNo string `form:"storePhoneNo"`
}

func (h Handlers) storeInput(c *gin.Context, req storeForm) (upstream.StoreInput, bool) {
	companyID, ok := h.requireScope(c, selection.EffectiveCompany, i18n.KeyCompanyIDError)
	if !ok {
		return upstream.StoreInput{}, false
	}
	ownerID, err := h.owner(c)
	if err != nil {
		h.storeFailure(c, err)
		return upstream.StoreInput{}, false
	}
	return upstream.StoreInput{
		Name:         req.Name,
		Address:      req.Address,
		Description:  req.Description,
		StorePhoneNo: req.StorePhoneNo,
		CompanyID:    companyID,
		UserID:       ownerID,
	}, true
}

func (h Handlers) CreateStore(c *gin.Context) {
	var req storeForm
	if !h.bindForm(c, &req) {
		return
	}
	in, ok := h.storeInput(c, req)
	if !ok {
		return
	}
	file, release, ok := h.formFile(c)
	if !ok {
		return
	}
	defer release()
	v, err := h.API.AddStore(c.Request.Context(), in, file)
	created(h, c, v, err)
}

func (h Handlers) UpdateStore(c *gin.Context) {
	storeID, ok := paramID(c, "storeId")
	if !ok {
		return
	}
	var req storeForm
	if !h.bindForm(c, &req) {
		return
	}
	in, ok := h.storeInput(c, req)
	if !ok {
		return
	}
	file, release, ok := h.formFile(c)
	if !ok {
		return
	}
	defer release()
	v, err := h.API.UpdateStore(c.Request.Context(), storeID, in, file)
	updated(h, c, v, err)
}

func (h Handlers) DeleteStore(c *gin.Context) {
	storeID, ok := paramID(c, "storeId")
	if !ok {
		return
	}
	h.deleted(c, h.API.DeleteStore(c.Request.Context(), storeID))
}

// StoreRecord is the edit form model of one store.
func (h Handlers) StoreRecord(c *gin.Context) {
	storeID, ok := paramID(c, "storeId")
	if !ok {
		return
	}
	v, err := h.API.Store(c.Request.Context(), storeID)
	respond(h, c, v, err, upstream.Store{})
}

// Companies

type companyForm struct {
	Name        string `form:"name" binding:"required"`
	Description string `form:"description"`
	TaxLevel    string `form:"taxLevel"`
}

func (h Handlers) CreateCompany(c *gin.Context) {
	bossID, ok := paramID(c, "bossId")
	if !ok {
		return
	}
	var req companyForm
	if !h.bindForm(c, &req) {
		return
	}
	file, release, ok := h.formFile(c)
	if !ok {
		return
	}
	defer release()
	v, err := h.API.AddCompany(c.Request.Context(), upstream.CompanyInput{
		Name:        req.Name,
		Description: req.Description,
		TaxLevel:    req.TaxLevel,
		UserID:      bossID,
	}, file)
	created(h, c, v, err)
}

func (h Handlers) UpdateCompany(c *gin.Context) {
	var req companyForm
	if !h.bindForm(c, &req) {
		return
	}
	companyID, ok := h.requireScope(c, selection.EffectiveCompany, i18n.KeyCompanyIDError)
	if !ok {
		return
	}
	ownerID, err := h.owner(c)
	if err != nil {
		h.storeFailure(c, err)
		return
	}
	file, release, ok := h.formFile(c)
	if !ok {
		return
	}
	defer release()
	v, err := h.API.UpdateCompany(c.Request.Context(), companyID, upstream.CompanyInput{
		Name:        req.Name,
		Description: req.Description,
		TaxLevel:    req.TaxLevel,
		UserID:      ownerID,
	}, file)
	updated(h, c, v, err)
}

// Accounts

type accountForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
	Name     string `form:"name" binding:"required"`
	Surname  string `form:"surname" binding:"required"`
	Email    string `form:"email"`
	PhoneNo  string `form:"phoneNo"`
}

func (r accountForm) input(role string) upstream.AccountInput {
	return upstream.AccountInput{
		Username: r.Username,
		Password: r.Password,
		Name:     r.Name,
		Surname:  r.Surname,
		Email:    r.Email,
		PhoneNo:  r.PhoneNo,
		Role:     role,
	}
}

func (h Handlers) addAccount(c *gin.Context, in upstream.AccountInput) {
	file, release, ok := h.formFile(c)
	if !ok {
		return
	}
	defer release()
	v, err := h.API.AddAccount(c.Request.Context(), in, file)
	created(h, c, v, err)
}

// RegisterBoss creates a BOSS account. The company is created afterwards from /new-company.
func (h Handlers) RegisterBoss(c *gin.Context) {
	var req accountForm
	if !h.bindForm(c, &req) {
		return
	}
	h.addAccount(c, req.input(string(rbac.RoleBoss)))
}

type employeeForm struct {
	accountForm
	Role    string `form:"role" binding:"required,oneof=EMPLOYEE MANAGER"`
	StoreID int64  `form:"storeId"`
}

// RegisterEmployee creates an EMPLOYEE or MANAGER in one of the owner's stores. Without an
// explicit storeId the effective store is used.
func (h Handlers) RegisterEmployee(c *gin.Context) {
	var req employeeForm
	if !h.bindForm(c, &req) {
		return
	}
	in := req.input(req.Role)
	in.StoreID = req.StoreID
	if in.StoreID <= 0 {
		id, ok := h.requireScope(c, selection.EffectiveStore, i18n.KeyNoStoreSelected)
		if !ok {
			return
		}
		in.StoreID = id
	}
	ownerID, err := h.owner(c)
	if err != nil {
		h.storeFailure(c, err)
		return
	}
	in.OwnerID = ownerID
	h.addAccount(c, in)
}

type profileForm struct {
	Name    string `form:"name" binding:"required"`
	Surname string `form:"surname" binding:"required"`
	Email   string `form:"email"`
	PhoneNo string `form:"phoneNo"`
}

func (r profileForm) input() upstream.UserInput {
	return upstream.UserInput{Name: r.Name, Surname: r.Surname, Email: r.Email, PhoneNo: r.PhoneNo}
}

// UpdateProfile edits the caller's own account; the role is never changed here.
func (h Handlers) UpdateProfile(c *gin.Context) {
	var req profileForm
	if !h.bindForm(c, &req) {
		return
	}
	file, release, ok := h.formFile(c)
	if !ok {
		return
	}
	defer release()
	v, err := h.API.UpdateUser(c.Request.Context(), h.claims(c).UserID, req.input(), file)
	updated(h, c, v, err)
}

type memberForm struct {
	profileForm
	Role string `form:"role" binding:"required,oneof=EMPLOYEE MANAGER"`
}

// UpdateMember changes a store member's details and role from the team page.
func (h Handlers) UpdateMember(c *gin.Context) {
	userID, ok := paramID(c, "userId")
	if !ok {
		return
	}
	var req memberForm
	if !h.bindForm(c, &req) {
		return
	}
	in := req.input()
	in.Role = req.Role
	v, err := h.API.UpdateUser(c.Request.Context(), userID, in, nil)
	updated(h, c, v, err)
}

// Catalog

type categoryForm struct {
	Name string `form:"name" binding:"required"`
}

func (h Handlers) CreateCategory(c *gin.Context) {
	var req categoryForm
	if !h.bindForm(c, &req) {
		return
	}
	storeID, ok := h.requireScope(c, selection.EffectiveStore, i18n.KeyNoStoreSelected)
	if !ok {
		return
	}
	v, err := h.API.AddCategory(c.Request.Context(), upstream.CategoryInput{Name: req.Name, StoreID: storeID})
	created(h, c, v, err)
}

// productForm pairs fieldName[i] with fieldFeature[i] into product fields. A form without
// fieldName leaves the product's fields as they are.
type productForm struct {
	Name          string   `form:"name" binding:"required"`
	Model         string   `form:"model"`
	ProductCode   string   `form:"productCode"`
	CategoryID    int64    `form:"categoryId" binding:"required"`
	FieldNames    []string `form:"fieldName"`
	FieldFeatures []string `form:"fieldFeature"`
}

func (r productForm) fields() []upstream.ProductField {
	if len(r.FieldNames) == 0 {
		return nil
	}
	out := make([]upstream.ProductField, 0, len(r.FieldNames))
	for i, name := range r.FieldNames {
		if name == "" {
			continue
		}
		f := upstream.ProductField{Name: name}
		if i < len(r.FieldFeatures) {
			f.Feature = r.FieldFeatures[i]
		}
		out = append(out, f)
	}
	return out
}

func (h Handlers) productInput(c *gin.Context) (upstream.ProductInput, bool) {
	var req productForm
	if !h.bindForm(c, &req) {
		return upstream.ProductInput{}, false
	}
	storeID, ok := h.requireScope(c, selection.EffectiveStore, i18n.KeyNoStoreSelected)
	if !ok {
		return upstream.ProductInput{}, false
	}
	return upstream.ProductInput{
		Name:        req.Name,
		Model:       req.Model,
		ProductCode: req.ProductCode,
		CategoryID:  req.CategoryID,
		StoreID:     storeID,
		Fields:      req.fields(),
	}, true
}

func (h Handlers) CreateProduct(c *gin.Context) {
	in, ok := h.productInput(c)
	if !ok {
		return
	}
	file, release, ok := h.formFile(c)
	if !ok {
		return
	}
	defer release()
	v, err := h.API.AddProduct(c.Request.Context(), in, file)
	created(h, c, v, err)
}

// UpdateProduct replaces the product and its field list.
func (h Handlers) UpdateProduct(c *gin.Context) {
	productID, ok := paramID(c, "productId")
	if !ok {
		return
	}
	in, ok := h.productInput(c)
	if !ok {
		return
	}
	file, release, ok := h.formFile(c)
	if !ok {
		return
	}
	defer release()
	v, err := h.API.UpdateProduct(c.Request.Context(), productID, in, file)
	updated(h, c, v, err)
}

func (h Handlers) DeleteProduct(c *gin.Context) {
	productID, ok := paramID(c, "productId")
	if !ok {
		return
	}
	h.deleted(c, h.API.DeleteProduct(c.Request.Context(), productID))
}

func (h Handlers) ProductFields(c *gin.Context) {
	productID, ok := paramID(c, "productId")
	if !ok {
		return
	}
	v, err := h.API.ProductFields(c.Request.Context(), productID)
	respond(h, c, v, err, []upstream.ProductField{})
}

func (h Handlers) DeleteProductField(c *gin.Context) {
	if _, ok := paramID(c, "productId"); !ok {
		return
	}
	fieldID, ok := paramID(c, "fieldId")
	if !ok {
		return
	}
	h.deleted(c, h.API.DeleteProductField(c.Request.Context(), fieldID))
}

type transactionForm struct {
	IsBuying bool    `form:"isBuying"`
	Quantity int64   `form:"quantity" binding:"required,gt=0"`
	Price    float64 `form:"price" binding:"gte=0"`
	FullName string  `form:"fullName"`
	Phone    string  `form:"phone"`
	Address  string  `form:"address"`
	Date     string  `form:"date" binding:"required"`
}

func (h Handlers) CreateTransaction(c *gin.Context) {
	productID, ok := paramID(c, "productId")
	if !ok {
		return
	}
	var req transactionForm
	if !h.bindForm(c, &req) {
		return
	}
	file, release, ok := h.formFile(c)
	if !ok {
		return
	}
	defer release()
	v, err := h.API.AddTransaction(c.Request.Context(), upstream.TransactionInput{
		ProductID: productID,
		IsBuying:  req.IsBuying,
		Quantity:  req.Quantity,
		Price:     req.Price,
		FullName:  req.FullName,
		Phone:     req.Phone,
		Address:   req.Address,
		Date:      req.Date,
	}, file)
	created(h, c, v, err)
}
