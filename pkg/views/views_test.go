package views_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-attestform/pkg/chain"
	"github.com/goliatone/go-attestform/pkg/views"
	"github.com/goliatone/go-attestform/pkg/wallet"
	"github.com/goliatone/go-attestform/pkg/workflow"
)

func newRenderer(t *testing.T, options ...views.Option) *views.Renderer {
	t.Helper()
	r, err := views.New(options...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func disconnectedWallet(t *testing.T) wallet.ControlView {
	t.Helper()
	conn, err := wallet.NewConnection(chain.NewDefaultRegistry())
	if err != nil {
		t.Fatalf("wallet: %v", err)
	}
	return conn.View()
}

func render(t *testing.T, r *views.Renderer, name string, page views.Page) string {
	t.Helper()
	var buf bytes.Buffer
	if err := r.Render(&buf, name, page); err != nil {
		t.Fatalf("render %s: %v", name, err)
	}
	return buf.String()
}

func assertContains(t *testing.T, html string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(html, fragment) {
			t.Fatalf("expected output to contain %q\n%s", fragment, html)
		}
	}
}

func assertNotContains(t *testing.T, html string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if strings.Contains(html, fragment) {
			t.Fatalf("expected output not to contain %q\n%s", fragment, html)
		}
	}
}

func TestHome(t *testing.T) {
	r := newRenderer(t)
	html := render(t, r, views.PageHome, views.Page{Path: "/", Wallet: disconnectedWallet(t)})

	assertContains(t, html,
		`<nav class="navbar"`,
		`<a href="/" class="brand">DeciReport</a>`,
		`data-show-balance="false"`,
		`Connect Wallet`,
		`Report Your`,
		`Incidents`,
		`<a class="button" href="/a">Get Started</a>`,
		`<link rel="stylesheet" href="/assets/app.css">`,
	)
}

func TestNotFound_RendersNavbarOnly(t *testing.T) {
	r := newRenderer(t)
	html := render(t, r, views.PageNotFound, views.Page{Path: "/missing", Wallet: disconnectedWallet(t)})

	assertContains(t, html, `<nav class="navbar"`, `<main class="app">`, `data-page="notfound"`)
	assertNotContains(t, html, "Report Your", "Schema Management", "<section")
}

func TestAttest_FieldListAndBusyState(t *testing.T) {
	r := newRenderer(t)
	view := workflow.View{
		SchemaName:  workflow.DefaultSchemaName,
		PendingType: "uint256",
		Types:       []string{"uint256", "string"},
		Fields: []workflow.FieldView{
			{ID: "f1", Name: "age", Type: "uint256", Label: "age (uint256)"},
		},
		Actions: map[workflow.Action]workflow.ActionView{
			workflow.ActionCreateSchema: {Busy: true},
			workflow.ActionFetchSchema:  {Message: workflow.MessageFetchSchemaFailed},
		},
	}
	html := render(t, r, views.PageAttest, views.Page{Path: "/a", Wallet: disconnectedWallet(t), Workflow: view})

	assertContains(t, html,
		"Schema Management",
		`placeholder="Field name"`,
		`<option value="uint256" selected>uint256</option>`,
		`<span>age (uint256)</span>`,
		`action="/a/fields/f1/delete"`,
		`value="create_schema" disabled aria-busy="true">Creating Schema...</button>`,
		`value="fetch_schema">Fetch Schema</button>`,
		"Failed to fetch schema. Please try again.",
	)
	assertNotContains(t, html, `action="/a/attestations"`)
}

func TestAttest_ValueForm(t *testing.T) {
	r := newRenderer(t)
	view := workflow.View{
		SchemaID: "abc",
		Inputs: []workflow.ValueInput{
			{Name: "field1", Type: "string", Label: "field1:"},
		},
		Actions: map[workflow.Action]workflow.ActionView{
			workflow.ActionCreateAttestation: {Message: workflow.MessageCreateAttestationFailed},
		},
	}
	html := render(t, r, views.PageAttest, views.Page{Path: "/a", Workflow: view})

	assertContains(t, html,
		`placeholder="Schema ID" value="abc"`,
		`>field1:</label>`,
		`name="value.field1" value=""`,
		`value="create_attestation">Create Attestation</button>`,
		"Failed to create attestation. Please try again.",
	)
}

func TestAttest_EscapesUserStrings(t *testing.T) {
	r := newRenderer(t)
	view := workflow.View{
		Fields: []workflow.FieldView{
			{ID: "f1", Name: "Disk & CPU", Type: "string", Label: "Disk & CPU (string)"},
			{ID: "f2", Name: "<b>severity</b>", Type: "uint8", Label: "<b>severity</b> (uint8)"},
		},
		SchemaID: "abc",
		Inputs: []workflow.ValueInput{
			{Name: "cost<usd>", Type: "uint256", Label: "cost<usd>:"},
			{Name: "note", Type: "string", Label: "note:", Value: `"><img src=x onerror=alert(1)>`},
		},
	}
	html := render(t, r, views.PageAttest, views.Page{Workflow: view})

	assertContains(t, html,
		"<span>Disk &amp; CPU (string)</span>",
		"<span>&lt;b&gt;severity&lt;/b&gt; (uint8)</span>",
		`aria-label="Remove &lt;b&gt;severity&lt;/b&gt;"`,
		">cost&lt;usd&gt;:</label>",
		`name="value.cost&lt;usd&gt;"`,
		`value="&quot;&gt;&lt;img src=x onerror=alert(1)&gt;"`,
	)
	assertNotContains(t, html, "&amp;amp;", "<b>severity", "<img", "<span>severity (uint8)</span>")
}

func TestWalletLink_DropsUnsafeExplorerURL(t *testing.T) {
	r := newRenderer(t)
	view := wallet.ControlView{
		Connected:      true,
		Label:          "0x71C7...976F",
		Address:        "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
		DisplayAddress: "0x71C7...976F",
		ExplorerURL:    "javascript:alert(1)",
	}
	html := render(t, r, views.PageHome, views.Page{Wallet: view})

	assertContains(t, html, "0x71C7...976F", `action="/wallet/disconnect"`)
	assertNotContains(t, html, "javascript:")
}

func TestConnectedWallet(t *testing.T) {
	conn, err := wallet.NewConnection(chain.NewDefaultRegistry())
	if err != nil {
		t.Fatalf("wallet: %v", err)
	}
	if err := conn.Connect("0x71C7656EC7ab88b098defB751B7401B5f6d8976F"); err != nil {
		t.Fatalf("connect: %v", err)
	}

	r := newRenderer(t)
	html := render(t, r, views.PageHome, views.Page{Wallet: conn.View()})

	assertContains(t, html,
		"0x71C7...976F",
		`action="/wallet/disconnect"`,
		`<option value="11155420" selected>OP Sepolia</option>`,
		`<option value="80002">Polygon Amoy</option>`,
		`href="https://optimism-sepolia.blockscout.com/address/0x71C7656EC7ab88b098defB751B7401B5f6d8976F"`,
		`data-show-balance="false"`,
	)
	assertNotContains(t, html, `action="/wallet/connect"`)
}

func TestThemeVariant(t *testing.T) {
	light := render(t, newRenderer(t), views.PageHome, views.Page{})
	assertContains(t, light, "--background: #f5f5f4;", `data-variant="light"`)

	dark := render(t, newRenderer(t, views.WithTheme("", "dark")), views.PageHome, views.Page{})
	assertContains(t, dark, "--background: #1c1917;", "--accent: #fb923c;", `data-variant="dark"`)
}

func TestNew_UnknownTheme(t *testing.T) {
	if _, err := views.New(views.WithTheme("missing", "")); !errors.Is(err, views.ErrUnknownTheme) {
		t.Fatalf("expected ErrUnknownTheme, got %v", err)
	}
	if _, err := views.New(views.WithTheme("", "sepia")); !errors.Is(err, views.ErrUnknownTheme) {
		t.Fatalf("expected ErrUnknownTheme for variant, got %v", err)
	}
}

func TestRendererConfig(t *testing.T) {
	selector, err := views.NewStaticSelector(views.Manifest())
	if err != nil {
		t.Fatalf("selector: %v", err)
	}
	selection, err := selector.Select(views.DefaultTheme, "dark")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	cfg := views.RendererConfig(selection)
	if cfg.Theme != views.DefaultTheme || cfg.Variant != "dark" {
		t.Fatalf("unexpected selection %s/%s", cfg.Theme, cfg.Variant)
	}
	if cfg.Tokens["text"] != "#fafaf9" || cfg.CSSVars["--text"] != "#fafaf9" {
		t.Fatalf("variant tokens not applied: %v", cfg.Tokens)
	}
	if cfg.Tokens["accent"] != "#fb923c" {
		t.Fatalf("base tokens lost: %v", cfg.Tokens)
	}
	if got := cfg.AssetURL("app.stylesheet"); got != "/assets/app.css" {
		t.Fatalf("asset url: %q", got)
	}
	if got := cfg.AssetURL("missing"); got != "" {
		t.Fatalf("expected empty url for unknown asset, got %q", got)
	}
	if views.RendererConfig(nil) != nil {
		t.Fatalf("expected nil config for nil selection")
	}
}

func TestAssetsEmbedded(t *testing.T) {
	data, err := fsReadFile("app.css")
	if err != nil {
		t.Fatalf("read asset: %v", err)
	}
	if !bytes.Contains(data, []byte("var(--background)")) {
		t.Fatalf("stylesheet does not use theme variables")
	}
}
