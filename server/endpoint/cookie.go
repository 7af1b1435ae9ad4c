package endpoint

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CookieConfig names the token cookies and their scope.
type CookieConfig struct {
	// AccessName is the access token cookie (default: "token").
	AccessName string `yaml:"access_name" mapstructure:"access_name"`

	// RefreshName is the refresh token cookie (default: "refresh_token").
	RefreshName string `yaml:"refresh_name" mapstructure:"refresh_name"`

	// Domain scopes both cookies. Empty means host-only.
	Domain string `yaml:"domain" mapstructure:"domain"`

	// Secure restricts the cookies to HTTPS.
	Secure bool `yaml:"secure" mapstructure:"secure"`
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *CookieConfig) ApplyDefaults() {
	if c.AccessName == "" {
		c.AccessName = "token"
	}
	if c.RefreshName == "" {
		c.RefreshName = "refresh_token"
	}
}

// Validate checks the configuration.
func (c *CookieConfig) Validate() error {
	if c.AccessName == c.RefreshName {
		return fmt.Errorf("access_name and refresh_name must differ (both %q)", c.AccessName)
	}
	for _, name := range []string{c.AccessName, c.RefreshName} {
		if name == "" || strings.ContainsAny(name, " \t;,=") {
			return fmt.Errorf("invalid cookie name %q", name)
		}
	}
	return nil
}

// setCookie writes a session cookie (no Max-Age) holding value.
func (c *CookieConfig) setCookie(ctx *gin.Context, name, value string) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(name, value, 0, "/", c.Domain, c.Secure, true)
}

// clearCookie overwrites name with an empty, already expired cookie.
func (c *CookieConfig) clearCookie(ctx *gin.Context, name string) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(name, "", -1, "/", c.Domain, c.Secure, true)
}
