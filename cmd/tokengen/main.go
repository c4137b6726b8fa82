// Package main provides a CLI tool for generating test tokens for the
// taskhive API. Tokens are signed with the dev key and will NOT work against
// a production deployment.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskhive/internal/token"
)

const (
	// Matches config.FromEnv when JWT_SIGNING_KEY is not set.
	devSigningKey = "dev-secret-key-change-in-production"

	defaultAccessTTL  = 30 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

type tokenOutput struct {
	Token     string `json:"token"`
	Type      string `json:"type"`
	Subject   string `json:"subject"`
	ExpiresIn string `json:"expires_in"`
	Usage     string `json:"usage"`
}

func main() {
	accessCmd := flag.NewFlagSet("access", flag.ExitOnError)
	accessSubject := accessCmd.String("subject", "", "Account ID (UUID). Generated if empty.")
	accessScopes := accessCmd.String("scopes", "", "Comma-separated scopes")
	accessTTL := accessCmd.Duration("ttl", defaultAccessTTL, "Token time-to-live")
	accessJSON := accessCmd.Bool("json", false, "Output as JSON")

	refreshCmd := flag.NewFlagSet("refresh", flag.ExitOnError)
	refreshSubject := refreshCmd.String("subject", "", "Account ID (UUID). Generated if empty.")
	refreshJSON := refreshCmd.Bool("json", false, "Output as JSON")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	signingKey := os.Getenv("JWT_SIGNING_KEY")
	if signingKey == "" {
		signingKey = devSigningKey
	}
	svc := token.New(signingKey, defaultAccessTTL, defaultRefreshTTL)

	switch os.Args[1] {
	case "access":
		accessCmd.Parse(os.Args[2:]) //nolint:errcheck // ExitOnError
		subject := orNewUUID(*accessSubject)
		var scopes []string
		if *accessScopes != "" {
			scopes = strings.Split(*accessScopes, ",")
		}
		tok, err := svc.IssueAccessTokenWithTTL(subject, *accessTTL, scopes...)
		fail(err)
		emit(tokenOutput{
			Token:     tok,
			Type:      "access",
			Subject:   subject,
			ExpiresIn: accessTTL.String(),
			Usage:     "Authorization: Bearer <token>",
		}, *accessJSON)
	case "refresh":
		refreshCmd.Parse(os.Args[2:]) //nolint:errcheck // ExitOnError
		subject := orNewUUID(*refreshSubject)
		tok, err := svc.IssueRefreshToken(subject)
		fail(err)
		emit(tokenOutput{
			Token:     tok,
			Type:      "refresh",
			Subject:   subject,
			ExpiresIn: defaultRefreshTTL.String(),
			Usage:     `POST /auth/refresh {"refresh_token": "<token>"}`,
		}, *refreshJSON)
	default:
		usage()
		os.Exit(2)
	}
}

func orNewUUID(s string) string {
	if s != "" {
		return s
	}
	return uuid.NewString()
}

func fail(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func emit(out tokenOutput, asJSON bool) {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		fail(enc.Encode(out))
		return
	}
	fmt.Printf("%s token for %s (expires in %s):\n%s\n", out.Type, out.Subject, out.ExpiresIn, out.Token)
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: tokengen <access|refresh> [flags]

Generate signed test tokens using the dev signing key (override with
JWT_SIGNING_KEY).

  tokengen access -subject <uuid> -scopes tasks:read,tasks:write -ttl 15m
  tokengen refresh -subject <uuid> -json`)
}
