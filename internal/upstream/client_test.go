package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"warehouse-dashboard/internal/auth"
	"warehouse-dashboard/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", WithLogger(logger.Discard()))
}

func ctxWithToken(tok string) context.Context {
	return auth.WithIdentity(context.Background(), "sid", tok, auth.Anonymous{})
}

func TestClient_SendsBearerAndJSONHeaders(t *testing.T) {
	var gotAuth, gotCT, gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCT = r.Header.Get("Content-Type")
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(Category{ID: 5, Name: "Tools"})
	})

	cat, err := c.AddCategory(ctxWithToken("abc"), CategoryInput{Name: "Tools", StoreID: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), cat.ID)
	assert.Equal(t, "Bearer abc", gotAuth)
	assert.Equal(t, "application/json", gotCT)
	assert.Equal(t, "/category/add", gotPath)
}

func TestClient_MultipartCarriesDTOAndFile(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
		require.NoError(t, r.ParseMultipartForm(1<<20))

		dto := r.MultipartForm.Value["storeDTO"]
		require.Len(t, dto, 1)
		var in StoreInput
		require.NoError(t, json.Unmarshal([]byte(dto[0]), &in))
		assert.Equal(t, "Depot", in.Name)

		f, _, err := r.FormFile("file")
		require.NoError(t, err)
		b, _ := io.ReadAll(f)
		assert.Equal(t, "png-bytes", string(b))

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(Store{ID: 9, Name: in.Name})
	})

	st, err := c.AddStore(ctxWithToken("abc"), StoreInput{Name: "Depot", CompanyID: 1},
		&FilePart{Name: "logo.png", Content: strings.NewReader("png-bytes")})
	require.NoError(t, err)
	assert.Equal(t, int64(9), st.ID)
}

func TestClient_403InvokesHookAndReturnsSessionExpired(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	var calls atomic.Int32
	c.OnDenied(func(ctx context.Context) {
		calls.Add(1)
		assert.Equal(t, "abc", auth.Token(ctx))
	})

	_, err := c.Companies(ctxWithToken("abc"))
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.True(t, IsSessionExpired(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_OtherStatusesAreStatusErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"store not found"}`))
	})
	c.OnDenied(func(ctx context.Context) { t.Fatalf("hook must not run for 404") })

	_, err := c.Store(ctxWithToken("abc"), 3)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Status)
	assert.Equal(t, "store not found", se.Message)
}

func TestClient_NoResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New(url, WithLogger(logger.Discard()))
	_, err := c.AllStores(ctxWithToken("abc"))
	assert.ErrorIs(t, err, ErrNoResponse)
}

func TestClient_RequestSetupFailure(t *testing.T) {
	c := New("http://exa mple.com", WithLogger(logger.Discard()))
	_, err := c.AllStores(ctxWithToken("abc"))
	assert.ErrorIs(t, err, ErrRequestSetup)
}

func TestLogin_AnonymousAndUnquoted(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("Bad credentials"))
			return
		}
		_, _ = w.Write([]byte(`"tok.en.value"` + "\n"))
	})
	c.OnDenied(func(ctx context.Context) { t.Fatalf("login must bypass the denial hook") })

	tok, err := c.Login(context.Background(), "u", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok.en.value", tok)

	_, err = c.Login(context.Background(), "u", "wrong")
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "Bad credentials", se.Message)
	assert.NotErrorIs(t, err, ErrSessionExpired)
}

func TestClient_Top5ProductsQuery(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`[{"id":1,"name":"p","profit":-2.5}]`))
	})

	out, err := c.Top5Products(ctxWithToken("abc"), 4, false)
	require.NoError(t, err)
	assert.Equal(t, "top=false", gotQuery)
	require.Len(t, out, 1)
	assert.Equal(t, -2.5, out[0].Profit)
}

func TestClient_TelegramLinkAndPhoto(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/telegram/linkUser/7":
			_, _ = w.Write([]byte("https://t.me/bot?start=xyz"))
		case "/user/downloadResourceFile/7":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	link, err := c.TelegramLink(ctxWithToken("abc"), 7)
	require.NoError(t, err)
	assert.Equal(t, "https://t.me/bot?start=xyz", link)

	blob, err := c.UserPhoto(ctxWithToken("abc"), 7)
	require.NoError(t, err)
	assert.Equal(t, "image/png", blob.ContentType)
	assert.Len(t, blob.Data, 4)
}

func TestClient_AddProductSendsFormThenFields(t *testing.T) {
	var calls []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		switch r.URL.Path {
		case "/product/addProduct":
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "Drill", r.FormValue("name"))
			assert.Equal(t, "4", r.FormValue("category"))
			assert.Equal(t, "2", r.FormValue("store"))
			_, _, err := r.FormFile("file")
			assert.NoError(t, err)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":9,"name":"Drill"}`))
		case "/productField/addProductFields/9":
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			var fields []ProductField
			require.NoError(t, json.NewDecoder(r.Body).Decode(&fields))
			require.Len(t, fields, 1)
			fields[0].ID = 30
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(fields)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	p, err := c.AddProduct(ctxWithToken("abc"), ProductInput{
		Name:       "Drill",
		CategoryID: 4,
		StoreID:    2,
		Fields:     []ProductField{{Name: "Power", Feature: "800W"}},
	}, &FilePart{Name: "drill.jpg", Content: strings.NewReader("jpg")})
	require.NoError(t, err)
	assert.Equal(t, int64(9), p.ID)
	require.Len(t, p.ProductFields, 1)
	assert.Equal(t, int64(30), p.ProductFields[0].ID)
	assert.Equal(t, []string{"POST /product/addProduct", "POST /productField/addProductFields/9"}, calls)
}

func TestClient_UpdateCompanyCarriesIDAndOwner(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/company/update/3", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "3", r.FormValue("id"))
		assert.Equal(t, "21", r.FormValue("user.id"))
		assert.Empty(t, r.MultipartForm.Value["userId"])
		_, _ = w.Write([]byte(`{"id":3,"name":"Acme"}`))
	})

	comp, err := c.UpdateCompany(ctxWithToken("abc"), 3, CompanyInput{Name: "Acme", UserID: 21}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Acme", comp.Name)
}

func TestClient_StoreUpdateAndDelete(t *testing.T) {
	var seen []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodPut {
			require.NoError(t, r.ParseMultipartForm(1<<20))
			var dto struct {
				ID   int64  `json:"id"`
				Name string `json:"name"`
			}
			require.NoError(t, json.Unmarshal([]byte(r.FormValue("storeDTO")), &dto))
			assert.Equal(t, int64(5), dto.ID)
			_, _ = w.Write([]byte(`{"id":5,"name":"Depot"}`))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	ctx := ctxWithToken("abc")

	st, err := c.UpdateStore(ctx, 5, StoreInput{Name: "Depot", CompanyID: 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Depot", st.Name)
	require.NoError(t, c.DeleteStore(ctx, 5))
	require.NoError(t, c.DeleteProduct(ctx, 6))
	require.NoError(t, c.DeleteProductField(ctx, 7))

	assert.Equal(t, []string{
		"PUT /store/updateStore/5",
		"DELETE /store/deleteStore/5",
		"DELETE /product/deleteProduct/6",
		"DELETE /productField/deleteProductField/7",
	}, seen)
}

func TestClient_UsersByStoreWithRolesQuery(t *testing.T) {
	var gotPath string
	var gotRoles []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRoles = r.URL.Query()["roles"]
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := c.UsersByStoreWithRoles(ctxWithToken("abc"), 4, "EMPLOYEE", " MANAGER")
	require.NoError(t, err)
	assert.Equal(t, "/storeWithRole/4", gotPath)
	assert.Equal(t, []string{"EMPLOYEE", "MANAGER"}, gotRoles)
}

func TestClient_UpdateUserRoleIsOptional(t *testing.T) {
	var withRole, withoutRole string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		if r.URL.Path == "/user/updateUser/8" {
			withRole = r.FormValue("roles")
		} else {
			withoutRole = r.FormValue("roles")
			assert.Empty(t, r.MultipartForm.Value["roles"])
		}
		_, _ = w.Write([]byte(`{"id":1}`))
	})
	ctx := ctxWithToken("abc")

	_, err := c.UpdateUser(ctx, 8, UserInput{Name: "A", Surname: "B", Role: "MANAGER"}, nil)
	require.NoError(t, err)
	_, err = c.UpdateUser(ctx, 1, UserInput{Name: "A", Surname: "B"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "MANAGER", withRole)
	assert.Empty(t, withoutRole)
}
