package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

func id(v int64) string { return strconv.FormatInt(v, 10) }

// Login exchanges credentials for a bearer token. It sends no token and a 403 here is an
// ordinary rejection, not a session expiry.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	body, ct, err := jsonBody(map[string]string{"username": username, "password": password})
	if err != nil {
		return "", err
	}
	rep, err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/account/login",
		body:        body,
		contentType: ct,
		anonymous:   true,
	})
	if err != nil {
		return "", err
	}
	tok := unquote(rep.body)
	if tok == "" {
		return "", &StatusError{Status: http.StatusOK, Message: "empty token"}
	}
	return tok, nil
}

// Stores

func (c *Client) Store(ctx context.Context, storeID int64) (Store, error) {
	var out Store
	return out, c.get(ctx, "/store/getStoreById/"+id(storeID), &out)
}

func (c *Client) AllStores(ctx context.Context) ([]Store, error) {
	var out []Store
	return out, c.get(ctx, "/store/allStore", &out)
}

func (c *Client) StoresByCompany(ctx context.Context, companyID int64) ([]Store, error) {
	var out []Store
	return out, c.get(ctx, "/store/getStoreByCompanyId/"+id(companyID), &out)
}

func (c *Client) Top3StoresByProfit(ctx context.Context, ownerID int64) ([]StoreProfit, error) {
	var out []StoreProfit
	return out, c.get(ctx, "/store/top3StoresByProfit/"+id(ownerID), &out)
}

// Top5Products lists the most profitable products, or the least when top is false.
func (c *Client) Top5Products(ctx context.Context, storeID int64, top bool) ([]ProductProfit, error) {
	var out []ProductProfit
	path := fmt.Sprintf("/store/%d/top5MostProfitableProducts?top=%t", storeID, top)
	return out, c.get(ctx, path, &out)
}

func (c *Client) AddStore(ctx context.Context, in StoreInput, file *FilePart) (Store, error) {
	var out Store
	return out, c.sendMultipart(ctx, http.MethodPost, "/store/addStore", "storeDTO", in, file, &out)
}

func (c *Client) UpdateStore(ctx context.Context, storeID int64, in StoreInput, file *FilePart) (Store, error) {
	var out Store
	dto := struct {
		StoreInput
		ID int64 `json:"id"`
	}{in, storeID}
	return out, c.sendMultipart(ctx, http.MethodPut, "/store/updateStore/"+id(storeID), "storeDTO", dto, file, &out)
}

func (c *Client) DeleteStore(ctx context.Context, storeID int64) error {
	return c.remove(ctx, "/store/deleteStore/"+id(storeID))
}

// Companies

func (c *Client) Companies(ctx context.Context) ([]Company, error) {
	var out []Company
	return out, c.get(ctx, "/company/getall", &out)
}

func (c *Client) Company(ctx context.Context, companyID int64) (Company, error) {
	var out Company
	return out, c.get(ctx, "/company/getById/"+id(companyID), &out)
}

func (c *Client) AddCompany(ctx context.Context, in CompanyInput, file *FilePart) (Company, error) {
	var out Company
	return out, c.sendForm(ctx, http.MethodPost, "/company/addCompany", in.form(), file, &out)
}

func (c *Client) UpdateCompany(ctx context.Context, companyID int64, in CompanyInput, file *FilePart) (Company, error) {
	f := in.form()
	f.Del("userId")
	f.Set("id", id(companyID))
	f.Set("user.id", formID(in.UserID))
	var out Company
	return out, c.sendForm(ctx, http.MethodPut, "/company/update/"+id(companyID), f, file, &out)
}

// Categories

func (c *Client) CategorySummaries(ctx context.Context, storeID int64) ([]CategorySummary, error) {
	var out []CategorySummary
	return out, c.get(ctx, "/category/getall/summaries/"+id(storeID), &out)
}

func (c *Client) StoreCategories(ctx context.Context, storeID int64) ([]Category, error) {
	var out []Category
	return out, c.get(ctx, "/category/store/"+id(storeID)+"/categories", &out)
}

func (c *Client) Top5Categories(ctx context.Context, storeID int64) ([]CategorySummary, error) {
	var out []CategorySummary
	return out, c.get(ctx, "/category/top5CategoriesByProfit/"+id(storeID), &out)
}

func (c *Client) AddCategory(ctx context.Context, in CategoryInput) (Category, error) {
	var out Category
	return out, c.send(ctx, http.MethodPost, "/category/add", in, &out)
}

// Products

func (c *Client) ProductsByStore(ctx context.Context, storeID int64) ([]Product, error) {
	var out []Product
	return out, c.get(ctx, "/product/store/"+id(storeID), &out)
}

func (c *Client) ProductsByCategory(ctx context.Context, categoryID int64) ([]Product, error) {
	var out []Product
	return out, c.get(ctx, "/product/category/"+id(categoryID), &out)
}

func (c *Client) Product(ctx context.Context, productID int64) (Product, error) {
	var out Product
	return out, c.get(ctx, "/product/getProductById/"+id(productID), &out)
}

// AddProduct creates the product, then attaches its fields. A failure attaching fields is
// returned with the created product.
func (c *Client) AddProduct(ctx context.Context, in ProductInput, file *FilePart) (Product, error) {
	var out Product
	if err := c.sendForm(ctx, http.MethodPost, "/product/addProduct", in.form(), file, &out); err != nil {
		return Product{}, err
	}
	if len(in.Fields) == 0 {
		return out, nil
	}
	fields, err := c.AddProductFields(ctx, out.ID, in.Fields)
	if err != nil {
		return out, fmt.Errorf("add fields of product %d: %w", out.ID, err)
	}
	out.ProductFields = fields
	return out, nil
}

func (c *Client) UpdateProduct(ctx context.Context, productID int64, in ProductInput, file *FilePart) (Product, error) {
	var out Product
	if err := c.sendForm(ctx, http.MethodPut, "/product/updateProduct/"+id(productID), in.form(), file, &out); err != nil {
		return Product{}, err
	}
	if in.Fields == nil {
		return out, nil
	}
	fields, err := c.UpdateProductFields(ctx, productID, in.Fields)
	if err != nil {
		return out, fmt.Errorf("update fields of product %d: %w", productID, err)
	}
	out.ProductFields = fields
	return out, nil
}

func (c *Client) DeleteProduct(ctx context.Context, productID int64) error {
	return c.remove(ctx, "/product/deleteProduct/"+id(productID))
}

// Product fields

func (c *Client) ProductFields(ctx context.Context, productID int64) ([]ProductField, error) {
	var out []ProductField
	return out, c.get(ctx, "/productField/product/"+id(productID), &out)
}

func (c *Client) AddProductFields(ctx context.Context, productID int64, fields []ProductField) ([]ProductField, error) {
	var out []ProductField
	return out, c.send(ctx, http.MethodPost, "/productField/addProductFields/"+id(productID), fields, &out)
}

// UpdateProductFields replaces the fields of a product.
func (c *Client) UpdateProductFields(ctx context.Context, productID int64, fields []ProductField) ([]ProductField, error) {
	var out []ProductField
	return out, c.send(ctx, http.MethodPut, "/productField/updateProductField/"+id(productID), fields, &out)
}

func (c *Client) DeleteProductField(ctx context.Context, fieldID int64) error {
	return c.remove(ctx, "/productField/deleteProductField/"+id(fieldID))
}

// Transactions

func (c *Client) Transaction(ctx context.Context, transactionID int64) (Transaction, error) {
	var out Transaction
	return out, c.get(ctx, "/transaction/getTransactionById/"+id(transactionID), &out)
}

func (c *Client) TransactionsByProduct(ctx context.Context, productID int64) ([]Transaction, error) {
	var out []Transaction
	return out, c.get(ctx, "/transaction/product/"+id(productID), &out)
}

func (c *Client) DailyTotals(ctx context.Context, storeID int64) ([]DailyTotal, error) {
	var out []DailyTotal
	return out, c.get(ctx, "/transaction/daily-totals/"+id(storeID), &out)
}

func (c *Client) AddTransaction(ctx context.Context, in TransactionInput, file *FilePart) (Transaction, error) {
	var out Transaction
	return out, c.sendForm(ctx, http.MethodPost, "/transaction/addTransaction", in.form(), file, &out)
}

// Users

// AddAccount registers a user with its login credentials.
func (c *Client) AddAccount(ctx context.Context, in AccountInput, file *FilePart) (User, error) {
	var out User
	return out, c.sendForm(ctx, http.MethodPost, "/account/addAccount", in.form(), file, &out)
}

func (c *Client) UpdateUser(ctx context.Context, userID int64, in UserInput, file *FilePart) (User, error) {
	var out User
	return out, c.sendForm(ctx, http.MethodPut, "/user/updateUser/"+id(userID), in.form(userID), file, &out)
}

func (c *Client) UsersByStore(ctx context.Context, storeID int64) ([]User, error) {
	var out []User
	return out, c.get(ctx, "/user/store/"+id(storeID), &out)
}

// UsersByStoreWithRoles filters a store's users to the given role tags.
func (c *Client) UsersByStoreWithRoles(ctx context.Context, storeID int64, roles ...string) ([]User, error) {
	q := url.Values{}
	for _, r := range roles {
		q.Add("roles", strings.TrimSpace(r))
	}
	var out []User
	return out, c.get(ctx, "/storeWithRole/"+id(storeID)+"?"+q.Encode(), &out)
}

func (c *Client) User(ctx context.Context, userID int64) (User, error) {
	var out User
	return out, c.get(ctx, "/user/getUserById/"+id(userID), &out)
}

func (c *Client) Top3Employees(ctx context.Context, ownerID int64) ([]EmployeeProfit, error) {
	var out []EmployeeProfit
	return out, c.get(ctx, "/user/top3EmployeesByStoreProfit/"+id(ownerID), &out)
}

// UserPhoto downloads a user's resource file.
func (c *Client) UserPhoto(ctx context.Context, userID int64) (Blob, error) {
	rep, err := c.do(ctx, request{method: http.MethodGet, path: "/user/downloadResourceFile/" + id(userID)})
	if err != nil {
		return Blob{}, err
	}
	ct := rep.contentType
	if ct == "" {
		ct = http.DetectContentType(rep.body)
	}
	return Blob{ContentType: ct, Data: rep.body}, nil
}

// Notifications

func (c *Client) Top3Notifications(ctx context.Context, userID int64) ([]Notification, error) {
	var out []Notification
	return out, c.get(ctx, "/notification/user/"+id(userID)+"/top3", &out)
}

func (c *Client) Notifications(ctx context.Context, userID int64) ([]Notification, error) {
	var out []Notification
	return out, c.get(ctx, "/notification/user/"+id(userID), &out)
}

func (c *Client) MarkNotificationSeen(ctx context.Context, notificationID int64) error {
	return c.send(ctx, http.MethodPut, "/notification/markNotification/"+id(notificationID), struct{}{}, nil)
}

// Telegram

// TelegramLink returns the URL that pairs the user's Telegram account.
func (c *Client) TelegramLink(ctx context.Context, userID int64) (string, error) {
	rep, err := c.do(ctx, request{method: http.MethodGet, path: "/api/telegram/linkUser/" + id(userID)})
	if err != nil {
		return "", err
	}
	return unquote(rep.body), nil
}
