package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/tokend/internal/jwt"
)

func newTokenCmd(f *rootFlags) *cobra.Command {
	tok := &cobra.Command{Use: "token", Short: "Utilidades sobre tokens emitidos"}
	tok.AddCommand(newTokenVerifyCmd(f), newTokenDecodeCmd(), newTokenRequestCmd())
	return tok
}

func newTokenVerifyCmd(f *rootFlags) *cobra.Command {
	var leeway time.Duration
	cmd := &cobra.Command{
		Use:   "verify [token]",
		Short: "Verifica firma, exp e iss con la clave configurada e imprime los claims",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := tokenArg(cmd, args)
			if err != nil {
				return err
			}
			cfg, err := f.load()
			if err != nil {
				return err
			}
			signer, ephemeral, err := jwt.LoadSigner(jwt.SignerConfig{
				Alg:        cfg.Signing.Alg,
				KeyFile:    cfg.Signing.KeyFile,
				KID:        cfg.Signing.KID,
				HMACSecret: cfg.Signing.HMACSecret,
			})
			if err != nil {
				return err
			}
			if ephemeral {
				return errors.New("signing.key_file is not set: an ephemeral key cannot verify tokens from a running server")
			}
			set, err := jwt.Verify(raw, signer.VerificationKey(), jwt.VerifyOptions{
				Algorithms: []string{signer.Algorithm()},
				Issuer:     cfg.Token.Issuer,
				Leeway:     leeway,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), set)
		},
	}
	cmd.Flags().DurationVar(&leeway, "leeway", 0, "tolerancia de reloj para exp/iat")
	return cmd
}

func newTokenDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode [token]",
		Short: "Imprime header y claims sin verificar la firma",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := tokenArg(cmd, args)
			if err != nil {
				return err
			}
			t, _, err := jwtv5.NewParser().ParseUnverified(raw, jwtv5.MapClaims{})
			if err != nil {
				return err
			}
			set, err := jwt.DecodePayload(raw)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := printJSON(out, t.Header); err != nil {
				return err
			}
			return printJSON(out, set)
		},
	}
}

// newTokenRequestCmd hace un POST form al token endpoint de un servidor en marcha.
func newTokenRequestCmd() *cobra.Command {
	var (
		baseURL      string
		grantType    string
		clientID     string
		clientSecret string
		params       []string
		timeout      time.Duration
	)
	cmd := &cobra.Command{
		Use:   "request",
		Short: "Pide un token a un tokend en marcha (ej: --grant-type password -p username=alice -p password=...)",
		RunE: func(cmd *cobra.Command, args []string) error {
			form := url.Values{}
			if grantType != "" {
				form.Set("grant_type", grantType)
			}
			if clientID != "" && clientSecret == "" {
				form.Set("client_id", clientID)
			}
			for _, p := range params {
				k, v, ok := strings.Cut(p, "=")
				if !ok || k == "" {
					return fmt.Errorf("invalid param %q (want key=value)", p)
				}
				form.Add(k, v)
			}

			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, baseURL, strings.NewReader(form.Encode()))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			req.Header.Set("Accept", "application/json")
			if clientSecret != "" {
				req.SetBasicAuth(url.QueryEscape(clientID), url.QueryEscape(clientSecret))
			}

			resp, err := (&http.Client{Timeout: timeout}).Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
			if err != nil {
				return err
			}

			var pretty bytes.Buffer
			if json.Indent(&pretty, body, "", "  ") == nil {
				body = pretty.Bytes()
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "HTTP %d\n", resp.StatusCode)
			fmt.Fprintln(cmd.OutOrStdout(), string(body))
			if resp.StatusCode >= 300 {
				return fmt.Errorf("token request failed: %s", resp.Status)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&baseURL, "url", envOr("TOKEND_URL", "http://localhost:8080/connect/token"), "URL del token endpoint (env TOKEND_URL)")
	cmd.Flags().StringVar(&grantType, "grant-type", "password", "grant_type")
	cmd.Flags().StringVar(&clientID, "client-id", "", "client_id")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "si se indica, el cliente se autentica con Basic")
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "parámetro extra key=value (repetible)")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "timeout del request")
	return cmd
}

// tokenArg toma el token del argumento o de stdin.
func tokenArg(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return strings.TrimSpace(args[0]), nil
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading token: %w", err)
	}
	raw := strings.TrimSpace(line)
	if raw == "" {
		return "", errors.New("empty token")
	}
	return raw, nil
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
