package httpapi

import (
	"errors"
	"net/http"

	"warehouse-dashboard/internal/auth"
	"warehouse-dashboard/internal/i18n"
	"warehouse-dashboard/internal/rbac"
	"warehouse-dashboard/internal/session"
	"warehouse-dashboard/pkg/logger"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// LoginPage is the login screen model. A pending notice is consumed here.
func (h Handlers) LoginPage(c *gin.Context) {
	ctx := c.Request.Context()
	notice, ok, err := h.Sessions.PopNotice(ctx, h.sid(c))
	if err != nil {
		logger.FromGin(c).Warn("pop notice failed", "err", err)
	}
	var n *string
	if ok {
		n = &notice
	}
	_, authenticated := auth.ClaimsOf(auth.Current(ctx))
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"language":      h.lang(c),
		"notice":        n,
		"authenticated": authenticated,
	}})
}

func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
		return
	}

	lang := h.lang(c)
	sess, err := h.Sessions.Login(c.Request.Context(), h.sid(c), req.Username, req.Password)
	if err != nil {
		var rej *session.RejectedError
		switch {
		case errors.As(err, &rej):
			msg := rej.Message
			if msg == "" {
				msg = i18n.T(lang, i18n.KeyLoginRejected)
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
		case errors.Is(err, session.ErrNoResponse):
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, gin.H{"error": i18n.T(lang, i18n.KeyLoginNoResponse)})
		case errors.Is(err, session.ErrRequestSetup):
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": i18n.T(lang, i18n.KeyLoginSetup)})
		default:
			h.storeFailure(c, err)
		}
		return
	}

	cl, _ := auth.ClaimsOf(sess)
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"user": cl, "redirect": rbac.HomePath}})
}

func (h Handlers) Logout(c *gin.Context) {
	if err := h.Sessions.Logout(c.Request.Context(), h.sid(c)); err != nil {
		h.storeFailure(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, session.LoginPath)
}

// Home is the main page. It renders for anonymous callers too, since denied navigation lands here.
func (h Handlers) Home(c *gin.Context) {
	s := auth.Current(c.Request.Context())
	var user *auth.Claims
	if cl, ok := auth.ClaimsOf(s); ok {
		user = &cl
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"authenticated": user != nil,
		"user":          user,
		"language":      h.lang(c),
		"menu":          h.menu(c, s),
	}})
}

func (h Handlers) Me(c *gin.Context) {
	cl, ok := auth.ClaimsOf(auth.Current(c.Request.Context()))
	if !ok {
		c.JSON(http.StatusOK, gin.H{"authenticated": false, "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true, "data": cl})
}

type menuEntry struct {
	rbac.MenuItem
	Label string `json:"label"`
}

func (h Handlers) menu(c *gin.Context, s auth.Session) []menuEntry {
	lang := h.lang(c)
	items := rbac.Menu(s)
	out := make([]menuEntry, 0, len(items))
	for _, it := range items {
		out = append(out, menuEntry{MenuItem: it, Label: i18n.T(lang, it.Key)})
	}
	return out
}

func (h Handlers) Nav(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.menu(c, auth.Current(c.Request.Context()))})
}

func (h Handlers) GetLanguage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"language": h.lang(c)}})
}

type languageRequest struct {
	Language string `json:"language" binding:"required"`
}

func (h Handlers) SetLanguage(c *gin.Context) {
	var req languageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "language required"})
		return
	}
	if err := h.Sessions.SetLanguage(c.Request.Context(), h.sid(c), req.Language); err != nil {
		if errors.Is(err, session.ErrUnsupportedLanguage) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "language must be en or tr"})
			return
		}
		h.storeFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"language": req.Language}})
}

// Notice pops the one-shot notice.
func (h Handlers) Notice(c *gin.Context) {
	msg, ok, err := h.Sessions.PopNotice(c.Request.Context(), h.sid(c))
	if err != nil {
		h.storeFailure(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{"data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": msg})
}
