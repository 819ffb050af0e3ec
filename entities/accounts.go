package entities

// RandomAccountsRes is the API gateway envelope returned by the account discovery endpoint.
// Body is itself a JSON encoded array of address strings.
type RandomAccountsRes struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}
