package clinic

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/clinicq/auth"
)

const defaultRedirect = "/room/panel"

// TokenIssuer signs a tenant id into a cookie value.
type TokenIssuer interface {
	Issue(customerID string) (string, error)
}

// CookieHandler sets the tenant cookie. With a nil issuer the raw customer id
// is stored.
type CookieHandler struct {
	cfg    auth.Config
	issuer TokenIssuer
}

func NewCookieHandler(cfg auth.Config, issuer TokenIssuer) *CookieHandler {
	cfg.ApplyDefaults()
	return &CookieHandler{cfg: cfg, issuer: issuer}
}

func (h *CookieHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/cookie/create/", h.create)
}

func (h *CookieHandler) create(c *gin.Context) {
	customerID := strings.TrimSpace(c.Query("customer_id"))
	if customerID == "" {
		c.String(http.StatusForbidden, "Invalid customer_id")
		return
	}

	value, maxAge := customerID, 0
	if h.issuer != nil {
		token, err := h.issuer.Issue(customerID)
		if err != nil {
			c.String(http.StatusInternalServerError, "could not issue cookie")
			return
		}
		value, maxAge = token, int(h.cfg.TokenTTL.Seconds())
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.CookieName, value, maxAge, "/", "", h.cfg.Secure, true)
	c.Redirect(http.StatusFound, localRedirect(c.Query("redirect_to")))
}

// localRedirect only allows same-site absolute paths.
func localRedirect(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return defaultRedirect
	}
	return target
}
