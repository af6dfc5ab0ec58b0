// Package auth acquires and refreshes the bearer token used to
// authenticate against the CUSS2 platform.
//
// The platform's token endpoint implements the OAuth2 client-credentials
// grant: a form-encoded POST with client_id, client_secret and
// grant_type=client_credentials, answered with a JSON body carrying
// access_token, expires_in and token_type.
//
// A 401 or 403 response is an authentication failure and is never
// retried; it surfaces as *AuthenticationError. Any other failure is a
// transport problem and subject to the caller's retry policy.
package auth
