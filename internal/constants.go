package internal

const (
	COOKIE_ACCESS_TOKEN_NAME = "mf_access_token"
)
