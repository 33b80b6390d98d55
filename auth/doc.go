// Package auth resolves the calling user from a signed bearer token.
//
// Tokens are HMAC or RSA/ECDSA signed JWTs (see auth/jwt) carrying Claims:
// the user id, tenant (school) id and role. The server's auth middleware
// validates the token through a TokenValidator and stores the Claims in the
// request context, where handlers read them with FromContext.
//
//	auth:
//	  jwt:
//	    secret: "change-me"
//	    issuer: "montessa"
//	    access_token_ttl: "15m"
package auth
