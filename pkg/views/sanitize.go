package views

import (
	"html"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-attestform/pkg/wallet"
)

// User strings (field names, values, ids) are never sanitized here: templates
// autoescape them so the page shows exactly what is stored. bluemonday only
// guards markup the views build themselves from configuration.

var (
	linkPolicyOnce sync.Once
	linkPolicy     *bluemonday.Policy
)

// explorerLinkPolicy allows a single anchor with an http(s) href. Explorer
// URLs come from chain descriptors, which may be loaded from a YAML file.
func explorerLinkPolicy() *bluemonday.Policy {
	linkPolicyOnce.Do(func() {
		p := bluemonday.NewPolicy()
		p.AllowAttrs("href").OnElements("a")
		p.AllowAttrs("class", "title").OnElements("a")
		p.AllowURLSchemes("http", "https")
		p.RequireParseableURLs(true)
		linkPolicy = p
	})
	return linkPolicy
}

// walletLink renders the connected address as a link to the chain explorer.
// It returns "" when the wallet is disconnected or the chain has no explorer.
func walletLink(v wallet.ControlView) string {
	if !v.Connected || v.ExplorerURL == "" {
		return ""
	}
	raw := `<a class="wallet-address" href="` + html.EscapeString(v.ExplorerURL) +
		`" title="` + html.EscapeString(v.Address) + `">` +
		html.EscapeString(v.DisplayAddress) + `</a>`
	return explorerLinkPolicy().Sanitize(raw)
}
