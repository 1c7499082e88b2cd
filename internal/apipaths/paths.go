package apipaths

// Backend contract paths. The session client calls them on our own origin and the
// default forwarding table relays them to the backend verbatim.

const (
	CSRFCookie = "/sanctum/csrf-cookie"
	Login      = "/login"
	Logout     = "/logout"
	User       = "/api/user"
	Projects   = "/api/projects"
)

// Forwarding prefixes
const (
	ProxyAlias = "/api/proxy"
	API        = "/api"
	Sanctum    = "/sanctum"
)
