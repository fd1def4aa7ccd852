package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"nftmarket/core/events"
	"nftmarket/core/types"
	"nftmarket/gateway/middleware"
)

const secretEnv = "MARKET_HMAC_SECRET"

func main() {
	if err := run(os.Args[1:], os.Stdout, newSecretSource(secretEnv)); err != nil {
		fmt.Fprintln(os.Stderr, "marketctl:", err)
		os.Exit(1)
	}
}

type secretGetter interface {
	Get() (string, error)
}

func run(args []string, out io.Writer, secrets secretGetter) error {
	if len(args) == 0 {
		return errors.New("usage: marketctl <token|address> [flags]")
	}
	switch args[0] {
	case "token":
		return runToken(args[1:], out, secrets)
	case "address":
		return runAddress(args[1:], out)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func runToken(args []string, out io.Writer, secrets secretGetter) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	subject := fs.String("sub", "", "account the token authenticates (hex or bech32)")
	issuer := fs.String("iss", "marketd", "issuer claim")
	audience := fs.String("aud", "marketd", "audience claim")
	ttl := fs.Duration("ttl", time.Hour, "token lifetime")
	admin := fs.Bool("admin", false, "grant the force-operation scope")
	if err := fs.Parse(args); err != nil {
		return err
	}
	account, err := types.ParseAddress(*subject)
	if err != nil {
		return fmt.Errorf("-sub: %w", err)
	}
	if *ttl <= 0 {
		return errors.New("-ttl must be positive")
	}
	secret, err := secrets.Get()
	if err != nil {
		return err
	}
	signed, err := issueToken(secret, account, *issuer, *audience, *ttl, *admin, time.Now())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, signed)
	return err
}

func issueToken(secret string, account [20]byte, issuer, audience string, ttl time.Duration, admin bool, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub": events.FormatAddress(account),
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	if strings.TrimSpace(issuer) != "" {
		claims["iss"] = issuer
	}
	if strings.TrimSpace(audience) != "" {
		claims["aud"] = audience
	}
	if admin {
		claims["scope"] = middleware.ScopeAdmin
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// runAddress prints both encodings of an account.
func runAddress(args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.New("usage: marketctl address <hex|bech32>")
	}
	account, err := types.ParseAddress(args[0])
	if err != nil {
		return err
	}
	encoded, err := types.EncodeBech32(account)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "hex:    %s\nbech32: %s\n", events.FormatAddress(account), encoded)
	return err
}
