package security

// In-memory client registry for the token endpoint (replace with DB/config
// later). Storefront verify/create endpoints are public; these clients are
// the back-office and the reconciliation tooling.
type Client struct {
	ID      string
	Secret  string
	Perms   []string // e.g. {"orders.read"}
	Enabled bool
}

var Clients = map[string]Client{
	"backoffice-dashboard": {ID: "backoffice-dashboard", Secret: "backoffice-secret", Perms: []string{"orders.read", "orders.write"}, Enabled: true},
	"svc-reconciler":       {ID: "svc-reconciler", Secret: "reconciler-secret", Perms: []string{"orders.read"}, Enabled: true},
	"svc-analytics":        {ID: "svc-analytics", Secret: "analytics-secret", Perms: []string{"orders.read"}, Enabled: true},
}
