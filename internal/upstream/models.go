package upstream

import (
	"encoding/json"
	"net/url"
	"strconv"
)

// Warehouse API records. Only fields the dashboard uses are typed; resource files stay raw.

type UserRef struct {
	ID       int64  `json:"id"`
	Username string `json:"username,omitempty"`
	Name     string `json:"name,omitempty"`
	Surname  string `json:"surname,omitempty"`
}

type Company struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	TaxLevel     json.Number     `json:"taxLevel,omitempty"`
	User         *UserRef        `json:"user,omitempty"`
	Stores       []Store         `json:"stores,omitempty"`
	ResourceFile json.RawMessage `json:"resourceFile,omitempty"`
}

// OwnerID is the owning user's id, 0 when the record carries none.
func (c Company) OwnerID() int64 {
	if c.User == nil {
		return 0
	}
	return c.User.ID
}

type Store struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Address      string          `json:"address,omitempty"`
	Description  string          `json:"description,omitempty"`
	StorePhoneNo string          `json:"storePhoneNo,omitempty"`
	CompanyID    int64           `json:"companyId,omitempty"`
	ResourceFile json.RawMessage `json:"resourceFile,omitempty"`
}

type StoreInput struct {
	Name         string `json:"name"`
	Address      string `json:"address,omitempty"`
	Description  string `json:"description,omitempty"`
	StorePhoneNo string `json:"storePhoneNo,omitempty"`
	CompanyID    int64  `json:"companyId"`
	UserID       int64  `json:"userId,omitempty"`
}

type StoreProfit struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	TotalProfit float64 `json:"totalProfit"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type CategoryInput struct {
	Name    string `json:"name"`
	StoreID int64  `json:"storeId"`
}

type CategorySummary struct {
	CategoryID   int64   `json:"categoryId"`
	CategoryName string  `json:"categoryName"`
	ProductCount int64   `json:"productCount"`
	TotalProfit  float64 `json:"totalProfit"`
}

type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Model         string          `json:"model,omitempty"`
	ProductCode   string          `json:"productCode,omitempty"`
	CurrentStock  int64           `json:"currentStock"`
	Profit        float64         `json:"profit"`
	Category      *Category       `json:"category,omitempty"`
	ProductFields []ProductField  `json:"productFields,omitempty"`
	ResourceFile  json.RawMessage `json:"resourceFile,omitempty"`
}

type ProductProfit struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Profit float64 `json:"profit"`
}

type Transaction struct {
	ID       int64    `json:"id"`
	IsBuying bool     `json:"isBuying"`
	Quantity int64    `json:"quantity"`
	Price    float64  `json:"price"`
	FullName string   `json:"fullName,omitempty"`
	Phone    string   `json:"phone,omitempty"`
	Address  string   `json:"address,omitempty"`
	Date     string   `json:"date"`
	Product  *Product `json:"product,omitempty"`
}

type DailyTotal struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}

type User struct {
	ID               int64           `json:"id"`
	Username         string          `json:"username,omitempty"`
	Name             string          `json:"name"`
	Surname          string          `json:"surname"`
	Email            string          `json:"email,omitempty"`
	PhoneNo          string          `json:"phoneNo,omitempty"`
	Role             string          `json:"role,omitempty"`
	Roles            []string        `json:"roles,omitempty"`
	TelegramID       string          `json:"telegramId,omitempty"`
	TelegramLinkTime string          `json:"telegramLinkTime,omitempty"`
	ResourceFile     json.RawMessage `json:"resourceFile,omitempty"`
}

type EmployeeProfit struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Surname     string  `json:"surname"`
	TotalProfit float64 `json:"totalProfit"`
}

type Notification struct {
	ID                int64  `json:"id"`
	Subject           string `json:"subject"`
	Description       string `json:"description"`
	NotificationLevel string `json:"notificationLevel,omitempty"`
	IsSeen            bool   `json:"isSeen"`
	RecordDate        string `json:"recordDate,omitempty"`
}

// Blob is a binary resource such as a user photo.
type Blob struct {
	ContentType string
	Data        []byte
}

// ProductField is a free-form feature attached to a product.
type ProductField struct {
	ID      int64  `json:"id,omitempty"`
	Name    string `json:"name"`
	Feature string `json:"feature"`
}

// Write inputs. Multipart inputs are sent as flat form fields.

type CompanyInput struct {
	Name        string
	Description string
	TaxLevel    string
	UserID      int64
}

func (in CompanyInput) form() url.Values {
	return url.Values{
		"name":        {in.Name},
		"description": {in.Description},
		"taxLevel":    {in.TaxLevel},
		"userId":      {formID(in.UserID)},
	}
}

type ProductInput struct {
	Name        string
	Model       string
	ProductCode string
	CategoryID  int64
	StoreID     int64
	Fields      []ProductField
}

func (in ProductInput) form() url.Values {
	return url.Values{
		"name":          {in.Name},
		"model":         {in.Model},
		"productCode":   {in.ProductCode},
		"productFields": {""},
		"transactions":  {""},
		"category":      {formID(in.CategoryID)},
		"store":         {formID(in.StoreID)},
	}
}

type TransactionInput struct {
	ProductID int64
	IsBuying  bool
	Quantity  int64
	Price     float64
	FullName  string
	Phone     string
	Address   string
	Date      string
}

func (in TransactionInput) form() url.Values {
	return url.Values{
		"product":  {formID(in.ProductID)},
		"isBuying": {strconv.FormatBool(in.IsBuying)},
		"quantity": {strconv.FormatInt(in.Quantity, 10)},
		"price":    {strconv.FormatFloat(in.Price, 'f', -1, 64)},
		"fullName": {in.FullName},
		"phone":    {in.Phone},
		"address":  {in.Address},
		"date":     {in.Date},
	}
}

// AccountInput registers a user. StoreID is empty for a BOSS, who owns a company instead.
type AccountInput struct {
	Username string
	Password string
	Name     string
	Surname  string
	Email    string
	PhoneNo  string
	Role     string
	OwnerID  int64
	StoreID  int64
}

func (in AccountInput) form() url.Values {
	return url.Values{
		"username":   {in.Username},
		"password":   {in.Password},
		"name":       {in.Name},
		"surname":    {in.Surname},
		"email":      {in.Email},
		"phoneNo":    {in.PhoneNo},
		"roles":      {in.Role},
		"isTelegram": {"false"},
		"ownerId":    {formID(in.OwnerID)},
		"storeIds":   {formID(in.StoreID)},
	}
}

type UserInput struct {
	Name    string
	Surname string
	Email   string
	PhoneNo string
	// Role is optional; empty keeps the current one.
	Role string
}

func (in UserInput) form(userID int64) url.Values {
	v := url.Values{
		"id":      {formID(userID)},
		"name":    {in.Name},
		"surname": {in.Surname},
		"email":   {in.Email},
		"phoneNo": {in.PhoneNo},
	}
	if in.Role != "" {
		v.Set("roles", in.Role)
	}
	return v
}

// formID renders an id form value; zero is sent empty.
func formID(v int64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatInt(v, 10)
}
